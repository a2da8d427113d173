package llm

import (
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// shapeSchema checks presence and type of the three required top-level
// objects. Field-level content is deliberately left loose: wrongly typed
// or expression-bearing values are handled by sanitization, not rejection.
const shapeSchema = `{
	"type": "object",
	"required": ["invoice", "products", "customer"],
	"properties": {
		"invoice":  {"type": "object"},
		"products": {"type": "array"},
		"customer": {"type": "object"}
	}
}`

var compiledShape = jsonschema.MustCompileString("document.json", shapeSchema)

// Declared numeric fields per top-level object, scanned for disguised
// arithmetic expressions.
var (
	invoiceNumericFields  = []string{"totalAmount", "tax"}
	productNumericFields  = []string{"quantity", "unitPrice", "tax", "priceWithTax"}
	customerNumericFields = []string{"totalPurchaseAmount"}
)

// ValidationResult carries the outcome of validating one untrusted
// structured document. Violations are collected exhaustively, in order,
// so callers can present a complete diagnostic rather than the first
// problem found.
type ValidationResult struct {
	Valid      bool
	Violations []string
}

// ValidateDocument checks the shape of the untrusted document and scans
// declared numeric fields for arithmetic-expression strings. Shape
// problems (missing/non-object invoice or customer, non-array products)
// mark the document invalid; expression violations are recorded but do
// not invalidate, since sanitization resolves them to null.
func ValidateDocument(raw []byte) ValidationResult {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return ValidationResult{Violations: []string{"response is not valid JSON: " + err.Error()}}
	}
	m, ok := v.(map[string]any)
	if !ok {
		return ValidationResult{Violations: []string{"response is not a JSON object"}}
	}

	var violations []string
	shapeOK := true
	if err := compiledShape.Validate(v); err != nil {
		shapeOK = false
		if ve, isVE := err.(*jsonschema.ValidationError); isVE {
			violations = append(violations, flattenCauses(ve)...)
		} else {
			violations = append(violations, err.Error())
		}
	}

	// missingFields is optional but, when present, must be an array.
	if mf, present := m["missingFields"]; present {
		if _, isArr := mf.([]any); !isArr {
			violations = append(violations, "missingFields is not an array")
		}
	}

	violations = append(violations, scanExpressions(m)...)

	return ValidationResult{Valid: shapeOK, Violations: violations}
}

// flattenCauses walks the validation error tree and reports every leaf
// with its instance path.
func flattenCauses(ve *jsonschema.ValidationError) []string {
	if len(ve.Causes) == 0 {
		loc := ve.InstanceLocation
		if loc == "" {
			loc = "/"
		}
		return []string{fmt.Sprintf("%s: %s", loc, ve.Message)}
	}
	var out []string
	for _, c := range ve.Causes {
		out = append(out, flattenCauses(c)...)
	}
	return out
}

// scanExpressions records one violation per declared numeric field whose
// string value contains an arithmetic operator character.
func scanExpressions(m map[string]any) []string {
	var out []string

	scan := func(obj map[string]any, path string, fields []string) {
		for _, f := range fields {
			if s, ok := obj[f].(string); ok && reOperators.MatchString(s) {
				out = append(out, fmt.Sprintf("%s.%s contains arithmetic expression: %q", path, f, s))
			}
		}
	}

	if inv, ok := m["invoice"].(map[string]any); ok {
		scan(inv, "invoice", invoiceNumericFields)
	}
	if prods, ok := m["products"].([]any); ok {
		for i, p := range prods {
			if po, ok := p.(map[string]any); ok {
				scan(po, fmt.Sprintf("products[%d]", i), productNumericFields)
			}
		}
	}
	if cust, ok := m["customer"].(map[string]any); ok {
		scan(cust, "customer", customerNumericFields)
	}
	return out
}
