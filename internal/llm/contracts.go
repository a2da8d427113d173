package llm

import (
	"context"
	"encoding/json"
)

// DocumentExtractor is the structuring capability the pipeline depends on:
// raw text in, untrusted structured document out. The returned bytes are
// the service's JSON payload, unparsed and unverified; callers must run
// them through ValidateDocument and SanitizeDocument before use.
type DocumentExtractor interface {
	ExtractDocument(ctx context.Context, text string) (json.RawMessage, error)
}

// Document is the sanitized, typed form of the structuring service's
// output. Nil fields were absent, null, empty, or rejected by sanitization.
type Document struct {
	Invoice       InvoiceFields
	Products      []ProductFields
	Customer      CustomerFields
	MissingFields []string
}

type InvoiceFields struct {
	SerialNumber *string
	Date         *string
	CustomerName *string
	TotalAmount  *float64
	Tax          *float64
}

type ProductFields struct {
	Name         *string
	Quantity     *float64
	UnitPrice    *float64
	Tax          *float64
	PriceWithTax *float64
}

type CustomerFields struct {
	Name                *string
	Phone               *string
	TotalPurchaseAmount *float64
}
