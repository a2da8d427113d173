package llm

import "strings"

// TruncationSentinel is appended whenever input text is cut, so the
// service and any downstream auditor know information was dropped. The
// truncation is lossy and one-way; there is no chunk-and-merge.
const TruncationSentinel = "\n\n[... text truncated due to length ...]"

// TruncateText bounds text to max bytes, appending the sentinel when
// anything was cut. max <= 0 disables truncation.
func TruncateText(text string, max int) string {
	if max <= 0 || len(text) <= max {
		return text
	}
	return text[:max] + TruncationSentinel
}

// BuildPrompt composes the fixed extraction contract around the (already
// truncated) document text. The contract pins the output shape and bans
// the known failure modes of generative structuring: unevaluated
// arithmetic, unparsed dates, and unit-suffixed quantities.
func BuildPrompt(text string) string {
	parts := []string{
		"You are an AI system that extracts structured invoice data from raw text.",
		"",
		"**CRITICAL RULES - READ CAREFULLY:**",
		"",
		"1. **Numbers Only**: ALL numeric fields (totalAmount, tax, quantity, unitPrice, priceWithTax, totalPurchaseAmount) MUST be final calculated numbers. NEVER use mathematical expressions like \"11486.11 + 11486.11 + 3139.33\". Calculate the sum and return the final number.",
		"",
		"2. **Date Formatting**: Parse dates to YYYY-MM-DD format. Examples:",
		"   - \"12 Nov 2024\" -> \"2024-11-12\"",
		"   - \"November 12, 2024\" -> \"2024-11-12\"",
		"   - \"12/11/2024\" -> \"2024-11-12\"",
		"",
		"3. **Required Fields**: These fields are REQUIRED for each entity:",
		"   - Invoice: serialNumber, date, customerName, totalAmount, tax",
		"   - Product: name, quantity, unitPrice, tax, priceWithTax",
		"   - Customer: name, phone, totalPurchaseAmount",
		"",
		"4. **Missing Values**: If a field is not found in the text, set it to null and add the field name to the missingFields array.",
		"",
		"**Output Format (Valid JSON ONLY):**",
		"",
		`{`,
		`  "invoice": {`,
		`    "serialNumber": string | null,`,
		`    "date": string | null,`,
		`    "customerName": string | null,`,
		`    "totalAmount": number | null,`,
		`    "tax": number | null`,
		`  },`,
		`  "products": [`,
		`    {`,
		`      "name": string | null,`,
		`      "quantity": number | null,`,
		`      "unitPrice": number | null,`,
		`      "tax": number | null,`,
		`      "priceWithTax": number | null`,
		`    }`,
		`  ],`,
		`  "customer": {`,
		`    "name": string | null,`,
		`    "phone": string | null,`,
		`    "totalPurchaseAmount": number | null`,
		`  },`,
		`  "missingFields": string[]`,
		`}`,
		"",
		"**Examples:**",
		"",
		"WRONG: \"tax\": 11486.11 + 11486.11 + 3139.33",
		"RIGHT: \"tax\": 26111.55",
		"",
		"WRONG: \"date\": \"12 Nov 2024\"",
		"RIGHT: \"date\": \"2024-11-12\"",
		"",
		"WRONG: \"quantity\": \"5 units\"",
		"RIGHT: \"quantity\": 5",
		"",
		"**Invoice Text:**",
		text,
		"",
		"**Remember**: Return ONLY valid JSON. No markdown code blocks, no explanations, no comments. All numbers must be calculated final values, not expressions.",
	}
	return strings.Join(parts, "\n")
}
