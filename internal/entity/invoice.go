package entity

import (
	"time"

	"github.com/google/uuid"
)

// Invoice is one extracted invoice. Optional fields are pointers; a nil
// value means the extraction did not produce the field.
type Invoice struct {
	ID            uuid.UUID   `json:"id"`
	SerialNumber  *string     `json:"serialNumber"`
	Date          *string     `json:"date"`
	CustomerName  *string     `json:"customerName"`
	TotalAmount   *float64    `json:"totalAmount"`
	Tax           *float64    `json:"tax"`
	CustomerID    uuid.UUID   `json:"customerId"`
	ProductIDs    []uuid.UUID `json:"productIds"`
	MissingFields []string    `json:"missingFields"`
	SourceFileID  uuid.UUID   `json:"sourceFileId"`
	LastEditedAt  *time.Time  `json:"lastEditedAt"`
}

// InvoiceTrackedFields are the field names consulted for missingFields,
// in declaration order. Identifier and foreign-key fields are excluded.
var InvoiceTrackedFields = []string{"serialNumber", "date", "customerName", "totalAmount", "tax"}

// RecomputeMissingFields rebuilds MissingFields from current values.
// Must be called after every value mutation.
func (inv *Invoice) RecomputeMissingFields() {
	m := make([]string, 0, len(InvoiceTrackedFields))
	for _, f := range InvoiceTrackedFields {
		if isMissing(inv.trackedValue(f)) {
			m = append(m, f)
		}
	}
	inv.MissingFields = m
}

func (inv *Invoice) trackedValue(field string) any {
	switch field {
	case "serialNumber":
		return strVal(inv.SerialNumber)
	case "date":
		return strVal(inv.Date)
	case "customerName":
		return strVal(inv.CustomerName)
	case "totalAmount":
		return numVal(inv.TotalAmount)
	case "tax":
		return numVal(inv.Tax)
	}
	return nil
}
