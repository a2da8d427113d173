package llm

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// reOperators matches any arithmetic operator character. A generative
// structuring service sometimes emits unevaluated expressions like
// "11486.11 + 11486.11" in numeric fields; those must be refused, never
// evaluated.
var reOperators = regexp.MustCompile(`[+\-*/]`)

// SanitizeNumeric coerces an untrusted value into a number or nil.
// Rules, in order: null/empty string -> nil; finite number -> unchanged;
// string containing an operator character -> nil; otherwise numeric
// parse of the trimmed string, nil if unparseable. Never panics.
func SanitizeNumeric(value any) *float64 {
	switch t := value.(type) {
	case nil:
		return nil
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return nil
		}
		return &t
	case int:
		f := float64(t)
		return &f
	case json.Number:
		return SanitizeNumeric(t.String())
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return nil
		}
		if reOperators.MatchString(s) {
			return nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return nil
		}
		return &f
	default:
		return nil
	}
}

// SanitizeDocument decodes the untrusted payload and applies numeric
// sanitization to every declared numeric field of the invoice, each
// product, and the customer. String fields keep their values; empty
// strings become nil so downstream missing-field computation sees them
// as absent. Call only after ValidateDocument reported a valid shape.
func SanitizeDocument(raw []byte) (*Document, error) {
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("sanitize: decode: %w", err)
	}

	doc := &Document{}

	inv := asObject(m["invoice"])
	doc.Invoice = InvoiceFields{
		SerialNumber: sanitizeString(inv["serialNumber"]),
		Date:         sanitizeString(inv["date"]),
		CustomerName: sanitizeString(inv["customerName"]),
		TotalAmount:  SanitizeNumeric(inv["totalAmount"]),
		Tax:          SanitizeNumeric(inv["tax"]),
	}

	if prods, ok := m["products"].([]any); ok {
		doc.Products = make([]ProductFields, 0, len(prods))
		for _, p := range prods {
			po := asObject(p)
			doc.Products = append(doc.Products, ProductFields{
				Name:         sanitizeString(po["name"]),
				Quantity:     SanitizeNumeric(po["quantity"]),
				UnitPrice:    SanitizeNumeric(po["unitPrice"]),
				Tax:          SanitizeNumeric(po["tax"]),
				PriceWithTax: SanitizeNumeric(po["priceWithTax"]),
			})
		}
	}

	cust := asObject(m["customer"])
	doc.Customer = CustomerFields{
		Name:                sanitizeString(cust["name"]),
		Phone:               sanitizeString(cust["phone"]),
		TotalPurchaseAmount: SanitizeNumeric(cust["totalPurchaseAmount"]),
	}

	if mf, ok := m["missingFields"].([]any); ok {
		for _, f := range mf {
			if s, ok := f.(string); ok && s != "" {
				doc.MissingFields = append(doc.MissingFields, s)
			}
		}
	}

	return doc, nil
}

func asObject(v any) map[string]any {
	if o, ok := v.(map[string]any); ok {
		return o
	}
	return map[string]any{}
}

// sanitizeString keeps string values as-is (empty -> nil) and renders
// stray numbers in string positions rather than dropping them.
func sanitizeString(v any) *string {
	switch t := v.(type) {
	case string:
		if t == "" {
			return nil
		}
		return &t
	case float64:
		s := strconv.FormatFloat(t, 'f', -1, 64)
		return &s
	default:
		return nil
	}
}
