package llm

import (
	"math"
	"testing"
)

func TestSanitizeNumericRejectsExpressions(t *testing.T) {
	// Any string containing an operator character must come back nil,
	// never evaluated.
	inputs := []string{
		"11486.11 + 11486.11",
		"100+50",
		"10*5",
		"100/2",
		"5 - 3",
		"-42.5", // leading minus counts as an operator too
		"1e3+2",
	}
	for _, in := range inputs {
		if got := SanitizeNumeric(in); got != nil {
			t.Errorf("SanitizeNumeric(%q) = %v, want nil", in, *got)
		}
	}
}

func TestSanitizeNumeric(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want *float64
	}{
		{"nil", nil, nil},
		{"empty string", "", nil},
		{"whitespace string", "   ", nil},
		{"finite number", 42.5, f(42.5)},
		{"zero", 0.0, f(0)},
		{"int", 7, f(7)},
		{"numeric string", "42.5", f(42.5)},
		{"padded numeric string", "  150 ", f(150)},
		{"unparseable string", "5 units", nil},
		{"bool", true, nil},
		{"object", map[string]any{"a": 1}, nil},
		{"NaN", math.NaN(), nil},
		{"Inf", math.Inf(1), nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SanitizeNumeric(tt.in)
			switch {
			case got == nil && tt.want == nil:
			case got == nil || tt.want == nil:
				t.Fatalf("SanitizeNumeric(%v) = %v, want %v", tt.in, ptr(got), ptr(tt.want))
			case *got != *tt.want:
				t.Fatalf("SanitizeNumeric(%v) = %v, want %v", tt.in, *got, *tt.want)
			}
		})
	}
}

func TestSanitizeDocument(t *testing.T) {
	raw := []byte(`{
		"invoice": {"serialNumber": "INV-1", "date": "12 Nov 2024", "customerName": "Acme",
			"totalAmount": "100+50", "tax": 15},
		"products": [{"name": "Widget", "quantity": 2, "unitPrice": 25, "tax": 5, "priceWithTax": 55}],
		"customer": {"name": "Acme", "phone": null, "totalPurchaseAmount": 150},
		"missingFields": ["phone"]
	}`)

	doc, err := SanitizeDocument(raw)
	if err != nil {
		t.Fatal(err)
	}
	if doc.Invoice.TotalAmount != nil {
		t.Errorf("invoice.totalAmount = %v, want nil (expression rejected)", *doc.Invoice.TotalAmount)
	}
	if doc.Invoice.Tax == nil || *doc.Invoice.Tax != 15 {
		t.Errorf("invoice.tax = %v, want 15", ptr(doc.Invoice.Tax))
	}
	if doc.Invoice.SerialNumber == nil || *doc.Invoice.SerialNumber != "INV-1" {
		t.Errorf("invoice.serialNumber = %v, want INV-1", doc.Invoice.SerialNumber)
	}
	if len(doc.Products) != 1 {
		t.Fatalf("products len = %d, want 1", len(doc.Products))
	}
	p := doc.Products[0]
	if p.Quantity == nil || *p.Quantity != 2 || p.PriceWithTax == nil || *p.PriceWithTax != 55 {
		t.Errorf("product numerics not preserved: %+v", p)
	}
	if doc.Customer.Phone != nil {
		t.Errorf("customer.phone = %v, want nil", *doc.Customer.Phone)
	}
	if doc.Customer.TotalPurchaseAmount == nil || *doc.Customer.TotalPurchaseAmount != 150 {
		t.Errorf("customer.totalPurchaseAmount = %v, want 150", ptr(doc.Customer.TotalPurchaseAmount))
	}
	if len(doc.MissingFields) != 1 || doc.MissingFields[0] != "phone" {
		t.Errorf("missingFields = %v, want [phone]", doc.MissingFields)
	}
}

func TestSanitizeDocumentNumberInStringField(t *testing.T) {
	raw := []byte(`{
		"invoice": {"serialNumber": 12345},
		"products": [],
		"customer": {},
		"missingFields": []
	}`)
	doc, err := SanitizeDocument(raw)
	if err != nil {
		t.Fatal(err)
	}
	if doc.Invoice.SerialNumber == nil || *doc.Invoice.SerialNumber != "12345" {
		t.Errorf("serialNumber = %v, want \"12345\"", doc.Invoice.SerialNumber)
	}
}

func TestTruncateText(t *testing.T) {
	if got := TruncateText("short", 6000); got != "short" {
		t.Errorf("short text must pass through, got %q", got)
	}
	long := make([]byte, 7000)
	for i := range long {
		long[i] = 'a'
	}
	got := TruncateText(string(long), 6000)
	if len(got) != 6000+len(TruncationSentinel) {
		t.Errorf("truncated len = %d, want %d", len(got), 6000+len(TruncationSentinel))
	}
	if got[len(got)-len(TruncationSentinel):] != TruncationSentinel {
		t.Error("sentinel not appended")
	}
}

func f(v float64) *float64 { return &v }

func ptr(p *float64) any {
	if p == nil {
		return nil
	}
	return *p
}
