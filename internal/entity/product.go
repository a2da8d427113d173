package entity

import (
	"time"

	"github.com/google/uuid"
)

// Product is one invoice line item, created in the same normalization
// step as its parent invoice (index-preserving).
type Product struct {
	ID            uuid.UUID  `json:"id"`
	Name          *string    `json:"name"`
	Quantity      *float64   `json:"quantity"`
	UnitPrice     *float64   `json:"unitPrice"`
	Tax           *float64   `json:"tax"`
	PriceWithTax  *float64   `json:"priceWithTax"`
	InvoiceID     uuid.UUID  `json:"invoiceId"`
	MissingFields []string   `json:"missingFields"`
	LastEditedAt  *time.Time `json:"lastEditedAt"`
}

// ProductTrackedFields are the field names consulted for missingFields.
var ProductTrackedFields = []string{"name", "quantity", "unitPrice", "tax", "priceWithTax"}

// RecomputeMissingFields rebuilds MissingFields from current values.
func (p *Product) RecomputeMissingFields() {
	m := make([]string, 0, len(ProductTrackedFields))
	for _, f := range ProductTrackedFields {
		if isMissing(p.trackedValue(f)) {
			m = append(m, f)
		}
	}
	p.MissingFields = m
}

func (p *Product) trackedValue(field string) any {
	switch field {
	case "name":
		return strVal(p.Name)
	case "quantity":
		return numVal(p.Quantity)
	case "unitPrice":
		return numVal(p.UnitPrice)
	case "tax":
		return numVal(p.Tax)
	case "priceWithTax":
		return numVal(p.PriceWithTax)
	}
	return nil
}
