package extract

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// PDFConfig configures the PDF text extractor.
type PDFConfig struct {
	Pdftotext string // binary name or absolute path; "" -> "pdftotext"
}

// PDFExtractor extracts embedded text from a PDF. The document is first
// checked with pdfcpu (corrupt uploads fail here, before any subprocess
// runs), then handed to pdftotext.
type PDFExtractor struct {
	cfg    PDFConfig
	runner Runner
	logger *slog.Logger
}

func NewPDFExtractor(cfg PDFConfig, logger *slog.Logger) *PDFExtractor {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Pdftotext == "" {
		cfg.Pdftotext = "pdftotext"
	}
	return &PDFExtractor{cfg: cfg, runner: execRunner{}, logger: logger}
}

func (e *PDFExtractor) Extract(ctx context.Context, path string, _ ProgressFunc) (TextExtractionResult, error) {
	start := time.Now()

	pages, err := api.PageCountFile(path)
	if err != nil {
		e.logger.Error("extract.pdf.invalid", "path", path, "error", err)
		return TextExtractionResult{}, fmt.Errorf("invalid pdf: %w", err)
	}

	// pdftotext -layout -enc UTF-8 -eol unix <path> -
	out, errb, err := e.runner.Run(ctx, e.cfg.Pdftotext, "-layout", "-enc", "UTF-8", "-eol", "unix", path, "-")
	if err != nil {
		return TextExtractionResult{Warnings: []string{string(errb)}}, fmt.Errorf("pdftotext: %w", err)
	}

	res := TextExtractionResult{
		Text:     NormalizeText(string(out)),
		Pages:    pages,
		Method:   "pdf-text",
		Duration: time.Since(start),
	}
	e.logger.Debug("extract.pdf.ok", "path", path, "pages", pages, "bytes", len(res.Text))
	return res, nil
}
