package entity

import (
	"time"

	"github.com/google/uuid"
)

// Customer is created fresh per extraction; there is no deduplication by
// name or phone, so two files from the same buyer yield two customers.
type Customer struct {
	ID                  uuid.UUID   `json:"id"`
	Name                *string     `json:"name"`
	Phone               *string     `json:"phone"`
	TotalPurchaseAmount *float64    `json:"totalPurchaseAmount"`
	InvoiceIDs          []uuid.UUID `json:"invoiceIds"`
	MissingFields       []string    `json:"missingFields"`
	LastEditedAt        *time.Time  `json:"lastEditedAt"`
}

// CustomerTrackedFields are the field names consulted for missingFields.
var CustomerTrackedFields = []string{"name", "phone", "totalPurchaseAmount"}

// RecomputeMissingFields rebuilds MissingFields from current values.
func (c *Customer) RecomputeMissingFields() {
	m := make([]string, 0, len(CustomerTrackedFields))
	for _, f := range CustomerTrackedFields {
		if isMissing(c.trackedValue(f)) {
			m = append(m, f)
		}
	}
	c.MissingFields = m
}

func (c *Customer) trackedValue(field string) any {
	switch field {
	case "name":
		return strVal(c.Name)
	case "phone":
		return strVal(c.Phone)
	case "totalPurchaseAmount":
		return numVal(c.TotalPurchaseAmount)
	}
	return nil
}
