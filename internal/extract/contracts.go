package extract

import (
	"context"
	"time"

	"github.com/docuflow/invoice-extractor/constants"
)

// ProgressFunc receives fractional sub-progress (0.0-1.0) from a backend
// that reports it (currently only OCR). May be nil.
type ProgressFunc func(fraction float64)

// TextExtractor is stage 1: file -> raw text.
type TextExtractor interface {
	Extract(ctx context.Context, path string, progress ProgressFunc) (TextExtractionResult, error)
}

type TextExtractionResult struct {
	Text     string
	Pages    int
	Method   string // "pdf-text" | "image-ocr" | "spreadsheet"
	Duration time.Duration
	Warnings []string
}

// AdapterSet bundles one extractor per supported file format.
type AdapterSet struct {
	PDF         TextExtractor
	Image       TextExtractor
	Spreadsheet TextExtractor
}

// For returns the extractor for a classified format.
func (a AdapterSet) For(format constants.FileFormat) (TextExtractor, bool) {
	switch format {
	case constants.PDF:
		return a.PDF, a.PDF != nil
	case constants.IMAGE:
		return a.Image, a.Image != nil
	case constants.SPREADSHEET:
		return a.Spreadsheet, a.Spreadsheet != nil
	}
	return nil, false
}
