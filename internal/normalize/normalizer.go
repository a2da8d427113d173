// Package normalize turns a sanitized structured document into the
// linked Invoice/Customer/Product entity graph.
package normalize

import (
	"github.com/google/uuid"

	"github.com/docuflow/invoice-extractor/internal/entity"
	"github.com/docuflow/invoice-extractor/internal/llm"
)

// Result is everything one normalization call produces. The caller
// commits all three pieces together; Normalize itself performs no I/O.
type Result struct {
	Invoice  *entity.Invoice
	Customer *entity.Customer
	Products []*entity.Product
}

// Normalize assigns fresh ids, links foreign keys, and computes
// missingFields for every entity. Ids are generated here and nowhere
// else; they are globally unique and never reused, so results from
// concurrent calls never collide.
func Normalize(doc *llm.Document, sourceFileID uuid.UUID) *Result {
	invoiceID := uuid.New()
	customerID := uuid.New()
	productIDs := make([]uuid.UUID, len(doc.Products))
	for i := range doc.Products {
		productIDs[i] = uuid.New()
	}

	declared := make(map[string]struct{}, len(doc.MissingFields))
	for _, f := range doc.MissingFields {
		declared[f] = struct{}{}
	}

	customer := &entity.Customer{
		ID:                  customerID,
		Name:                doc.Customer.Name,
		Phone:               doc.Customer.Phone,
		TotalPurchaseAmount: doc.Customer.TotalPurchaseAmount,
		InvoiceIDs:          []uuid.UUID{invoiceID},
		MissingFields: missingOf(declared,
			presence{"name", doc.Customer.Name == nil},
			presence{"phone", doc.Customer.Phone == nil},
			presence{"totalPurchaseAmount", doc.Customer.TotalPurchaseAmount == nil},
		),
	}

	products := make([]*entity.Product, len(doc.Products))
	for i, p := range doc.Products {
		products[i] = &entity.Product{
			ID:           productIDs[i],
			Name:         p.Name,
			Quantity:     p.Quantity,
			UnitPrice:    p.UnitPrice,
			Tax:          p.Tax,
			PriceWithTax: p.PriceWithTax,
			InvoiceID:    invoiceID,
			MissingFields: missingOf(declared,
				presence{"name", p.Name == nil},
				presence{"quantity", p.Quantity == nil},
				presence{"unitPrice", p.UnitPrice == nil},
				presence{"tax", p.Tax == nil},
				presence{"priceWithTax", p.PriceWithTax == nil},
			),
		}
	}

	date := doc.Invoice.Date
	if date != nil {
		if iso, ok := NormalizeDate(*date); ok {
			date = &iso
		}
	}

	invoice := &entity.Invoice{
		ID:           invoiceID,
		SerialNumber: doc.Invoice.SerialNumber,
		Date:         date,
		CustomerName: doc.Invoice.CustomerName,
		TotalAmount:  doc.Invoice.TotalAmount,
		Tax:          doc.Invoice.Tax,
		CustomerID:   customerID,
		ProductIDs:   productIDs,
		SourceFileID: sourceFileID,
		MissingFields: missingOf(declared,
			presence{"serialNumber", doc.Invoice.SerialNumber == nil},
			presence{"date", date == nil},
			presence{"customerName", doc.Invoice.CustomerName == nil},
			presence{"totalAmount", doc.Invoice.TotalAmount == nil},
			presence{"tax", doc.Invoice.Tax == nil},
		),
	}

	return &Result{Invoice: invoice, Customer: customer, Products: products}
}

type presence struct {
	name    string
	missing bool
}

// missingOf unions locally observed nulls with the upstream-declared
// missing list, restricted to tracked fields and in tracked order. A
// sanitization-rejected expression shows up here as a local null, so it
// surfaces as missing rather than as a silent zero.
func missingOf(declared map[string]struct{}, fields ...presence) []string {
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if f.missing {
			out = append(out, f.name)
			continue
		}
		if _, ok := declared[f.name]; ok {
			out = append(out, f.name)
		}
	}
	return out
}
