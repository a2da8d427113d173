package normalize

import (
	"slices"
	"testing"

	"github.com/google/uuid"

	"github.com/docuflow/invoice-extractor/internal/llm"
)

func str(s string) *string   { return &s }
func num(f float64) *float64 { return &f }

func sampleDoc() *llm.Document {
	return &llm.Document{
		Invoice: llm.InvoiceFields{
			SerialNumber: str("INV-001"),
			Date:         str("2024-11-12"),
			CustomerName: str("Acme Corp"),
			TotalAmount:  num(118.0),
			Tax:          num(18.0),
		},
		Products: []llm.ProductFields{
			{Name: str("Widget"), Quantity: num(2), UnitPrice: num(50), Tax: num(18), PriceWithTax: num(118)},
		},
		Customer: llm.CustomerFields{
			Name:                str("Acme Corp"),
			Phone:               nil,
			TotalPurchaseAmount: num(118.0),
		},
		MissingFields: []string{"phone"},
	}
}

func TestNormalizeLinksEntities(t *testing.T) {
	fileID := uuid.New()
	res := Normalize(sampleDoc(), fileID)

	if res.Invoice.SourceFileID != fileID {
		t.Errorf("sourceFileID = %v, want %v", res.Invoice.SourceFileID, fileID)
	}
	if res.Invoice.CustomerID != res.Customer.ID {
		t.Errorf("invoice.customerID = %v, want customer id %v", res.Invoice.CustomerID, res.Customer.ID)
	}
	if len(res.Customer.InvoiceIDs) != 1 || res.Customer.InvoiceIDs[0] != res.Invoice.ID {
		t.Errorf("customer.invoiceIDs = %v, want [%v]", res.Customer.InvoiceIDs, res.Invoice.ID)
	}
	if len(res.Invoice.ProductIDs) != len(res.Products) {
		t.Fatalf("productIDs len = %d, want %d", len(res.Invoice.ProductIDs), len(res.Products))
	}
	for i, p := range res.Products {
		if p.InvoiceID != res.Invoice.ID {
			t.Errorf("products[%d].invoiceID = %v, want %v", i, p.InvoiceID, res.Invoice.ID)
		}
		if res.Invoice.ProductIDs[i] != p.ID {
			t.Errorf("invoice.productIDs[%d] = %v, want %v", i, res.Invoice.ProductIDs[i], p.ID)
		}
	}
}

func TestNormalizePreservesProductOrder(t *testing.T) {
	doc := sampleDoc()
	doc.Products = []llm.ProductFields{
		{Name: str("first")},
		{Name: str("second")},
		{Name: str("third")},
	}
	res := Normalize(doc, uuid.New())
	for i, want := range []string{"first", "second", "third"} {
		if got := *res.Products[i].Name; got != want {
			t.Errorf("products[%d].name = %q, want %q", i, got, want)
		}
	}
}

func TestNormalizeFreshIDs(t *testing.T) {
	doc := sampleDoc()
	a := Normalize(doc, uuid.New())
	b := Normalize(doc, uuid.New())
	if a.Invoice.ID == b.Invoice.ID {
		t.Error("two calls produced the same invoice id")
	}
	if a.Customer.ID == b.Customer.ID {
		t.Error("two calls produced the same customer id")
	}
	if a.Products[0].ID == b.Products[0].ID {
		t.Error("two calls produced the same product id")
	}
}

func TestNormalizeMissingFieldsUnion(t *testing.T) {
	doc := sampleDoc()
	doc.Invoice.Tax = nil
	doc.MissingFields = []string{"phone", "serialNumber", "notATrackedField"}
	res := Normalize(doc, uuid.New())

	// tax is locally null, serialNumber is upstream-declared; order
	// follows the tracked-field order.
	want := []string{"serialNumber", "tax"}
	if !slices.Equal(res.Invoice.MissingFields, want) {
		t.Errorf("invoice.missingFields = %v, want %v", res.Invoice.MissingFields, want)
	}
	if !slices.Equal(res.Customer.MissingFields, []string{"phone"}) {
		t.Errorf("customer.missingFields = %v, want [phone]", res.Customer.MissingFields)
	}
	if len(res.Products[0].MissingFields) != 0 {
		t.Errorf("products[0].missingFields = %v, want empty", res.Products[0].MissingFields)
	}
}

func TestNormalizeDateRewritten(t *testing.T) {
	doc := sampleDoc()
	doc.Invoice.Date = str("12 Nov 2024")
	res := Normalize(doc, uuid.New())
	if got := *res.Invoice.Date; got != "2024-11-12" {
		t.Errorf("date = %q, want 2024-11-12", got)
	}

	doc.Invoice.Date = str("sometime last week")
	res = Normalize(doc, uuid.New())
	if got := *res.Invoice.Date; got != "sometime last week" {
		t.Errorf("unparseable date = %q, want original preserved", got)
	}
}

func TestNormalizeDate(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"2024-11-12", "2024-11-12", true},
		{"12 Nov 2024", "2024-11-12", true},
		{"12 November 2024", "2024-11-12", true},
		{"Nov 12, 2024", "2024-11-12", true},
		{"12/11/2024", "2024-11-12", true},
		{"3/4/2024", "2024-04-03", true}, // day first
		{"2024/11/12", "2024-11-12", true},
		{"12-11-2024", "2024-11-12", true},
		{"  2024-11-12  ", "2024-11-12", true},
		{"", "", false},
		{"n/a", "", false},
		{"31/02/2024", "", false},
	}
	for _, tc := range cases {
		got, ok := NormalizeDate(tc.in)
		if ok != tc.ok || got != tc.want {
			t.Errorf("NormalizeDate(%q) = (%q, %v), want (%q, %v)", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}
