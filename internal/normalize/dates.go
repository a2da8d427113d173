package normalize

import (
	"strings"
	"time"
)

// dateLayouts are tried in order. The day-first form is listed before
// any month-first form: invoices in the wild overwhelmingly use
// DD/MM/YYYY and an ambiguous 03/04/2024 must resolve day-first.
var dateLayouts = []string{
	"2006-01-02",
	"2 Jan 2006",
	"2 January 2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"02/01/2006",
	"2/1/2006",
	"2006/01/02",
	"02-01-2006",
}

// NormalizeDate best-effort parses a date string and returns it in
// ISO 8601 (YYYY-MM-DD). The second return is false when no known
// layout matches; callers keep the original string in that case rather
// than dropping the value.
func NormalizeDate(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("2006-01-02"), true
		}
	}
	return "", false
}
