package extract

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// SpreadsheetExtractor renders every sheet of an XLS/XLSX workbook as
// pipe-delimited text with normalized headers, the layout the
// structuring prompt was tuned on.
type SpreadsheetExtractor struct {
	logger *slog.Logger
}

func NewSpreadsheetExtractor(logger *slog.Logger) *SpreadsheetExtractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &SpreadsheetExtractor{logger: logger}
}

func (e *SpreadsheetExtractor) Extract(ctx context.Context, path string, _ ProgressFunc) (TextExtractionResult, error) {
	start := time.Now()

	f, err := excelize.OpenFile(path)
	if err != nil {
		e.logger.Error("extract.spreadsheet.open_failed", "path", path, "error", err)
		return TextExtractionResult{}, fmt.Errorf("open workbook: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			e.logger.Warn("extract.spreadsheet.close_error", "path", path, "error", cerr)
		}
	}()

	var b strings.Builder
	sheets := f.GetSheetList()
	for _, sheet := range sheets {
		if err := ctx.Err(); err != nil {
			return TextExtractionResult{}, err
		}
		rows, err := f.GetRows(sheet)
		if err != nil {
			return TextExtractionResult{}, fmt.Errorf("read sheet %q: %w", sheet, err)
		}
		if len(rows) == 0 {
			continue
		}

		fmt.Fprintf(&b, "\n=== Sheet: %s ===\n", sheet)

		headers := make([]string, len(rows[0]))
		for i, h := range rows[0] {
			headers[i] = normalizeHeader(h)
		}
		b.WriteString(strings.Join(headers, " | "))
		b.WriteByte('\n')
		b.WriteString(strings.Repeat("-", 50))
		b.WriteByte('\n')

		for _, row := range rows[1:] {
			cells := make([]string, len(row))
			for i, cell := range row {
				if cell == "" {
					cells[i] = "N/A"
				} else {
					cells[i] = cell
				}
			}
			b.WriteString(strings.Join(cells, " | "))
			b.WriteByte('\n')
		}
	}

	res := TextExtractionResult{
		Text:     strings.TrimSpace(b.String()),
		Pages:    len(sheets),
		Method:   "spreadsheet",
		Duration: time.Since(start),
	}
	e.logger.Debug("extract.spreadsheet.ok", "path", path, "sheets", len(sheets), "bytes", len(res.Text))
	return res, nil
}

var reHeaderSpace = strings.NewReplacer(" ", "_")

func normalizeHeader(h string) string {
	h = strings.ToLower(strings.TrimSpace(h))
	return reHeaderSpace.Replace(strings.Join(strings.Fields(h), " "))
}
