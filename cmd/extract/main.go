// extract runs the invoice pipeline over a directory of documents and
// writes the results to an XLSX workbook. It is the batch counterpart
// of extractd: same pipeline, no HTTP surface.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"mime"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/docuflow/invoice-extractor/constants"
	"github.com/docuflow/invoice-extractor/internal/common"
	"github.com/docuflow/invoice-extractor/internal/entity"
	"github.com/docuflow/invoice-extractor/internal/export"
	"github.com/docuflow/invoice-extractor/internal/extract"
	"github.com/docuflow/invoice-extractor/internal/llm"
	"github.com/docuflow/invoice-extractor/internal/pipeline"
	"github.com/docuflow/invoice-extractor/internal/repository"
)

func printError(format string, args ...interface{}) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

func main() {
	var (
		dir      = flag.String("dir", "", "directory of invoice documents to process (required)")
		out      = flag.String("out", "", "output XLSX path (defaults to <dir>/../invoices.xlsx)")
		parallel = flag.Int("parallel", 4, "number of files processed concurrently")
	)
	flag.Parse()

	if *dir == "" {
		printError("Error: --dir is required\n")
		os.Exit(1)
	}
	if *out == "" {
		*out = filepath.Join(filepath.Dir(*dir), "invoices.xlsx")
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		printError("Error: %v\n", err)
		os.Exit(1)
	}

	inputs, err := collectFiles(*dir)
	if err != nil {
		printError("Error: %v\n", err)
		os.Exit(1)
	}
	if len(inputs) == 0 {
		printError("No supported documents found in %s\n", *dir)
		os.Exit(1)
	}

	store := repository.NewMemoryStore()
	if err := registerInputs(store, inputs); err != nil {
		printError("Error: %v\n", err)
		os.Exit(1)
	}
	adapters := extract.AdapterSet{
		PDF:         extract.NewPDFExtractor(extract.PDFConfig{Pdftotext: cfg.Extract.Pdftotext}, logger),
		Image:       extract.NewImageExtractor(extract.ImageConfig{Tesseract: cfg.Extract.Tesseract, Language: cfg.Extract.OCRLanguage}, logger),
		Spreadsheet: extract.NewSpreadsheetExtractor(logger),
	}
	llmClient := llm.NewClient(llm.Config{
		BaseURL:       cfg.LLM.BaseURL,
		APIKey:        cfg.LLM.APIKey,
		Model:         cfg.LLM.Model,
		Temperature:   cfg.LLM.Temperature,
		MaxTextLength: cfg.LLM.MaxTextLength,
	}, nil, logger)
	orch := pipeline.NewOrchestrator(store, adapters, llmClient, nil, logger)

	start := time.Now()
	g, ctx := errgroup.WithContext(context.Background())
	g.SetLimit(*parallel)
	for _, in := range inputs {
		in := in
		g.Go(func() error {
			// failures land on the file record; the batch keeps going
			if err := orch.Process(ctx, in); err != nil {
				logger.Error("file failed", "name", in.Name, "error", err)
			}
			return nil
		})
	}
	_ = g.Wait()

	ok, failed := 0, 0
	for _, f := range store.ListFiles() {
		if f.Status == constants.FileStatusCompleted {
			ok++
		} else {
			failed++
		}
	}
	fmt.Printf("Processed %d files in %s: %d ok, %d failed\n", len(inputs), time.Since(start).Round(time.Millisecond), ok, failed)

	data, err := export.NewService(store, logger).ExportInvoicesXLSX()
	if err != nil {
		printError("Error: export: %v\n", err)
		os.Exit(1)
	}
	if err := os.WriteFile(*out, data, 0o644); err != nil {
		printError("Error: write %s: %v\n", *out, err)
		os.Exit(1)
	}
	fmt.Printf("Wrote %s\n", *out)
	if failed > 0 {
		os.Exit(1)
	}
}

// collectFiles registers every supported document under dir and returns
// the pipeline inputs for them.
func collectFiles(dir string) ([]pipeline.FileInput, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var inputs []pipeline.FileInput
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		mimeType := constants.NormalizeMIME(mime.TypeByExtension(filepath.Ext(e.Name())))
		if _, ok := constants.AllowedMIMETypes[mimeType]; !ok {
			continue
		}
		info, err := e.Info()
		if err != nil {
			return nil, err
		}
		inputs = append(inputs, pipeline.FileInput{
			ID:       uuid.New(),
			Name:     e.Name(),
			MIMEType: mimeType,
			Path:     filepath.Join(dir, e.Name()),
			Size:     info.Size(),
		})
	}
	return inputs, nil
}

// registerInputs inserts file records so the pipeline has something to
// track status against.
func registerInputs(store repository.Store, inputs []pipeline.FileInput) error {
	for _, in := range inputs {
		f := &entity.UploadedFile{
			ID:         in.ID,
			Name:       in.Name,
			MIMEType:   in.MIMEType,
			Size:       in.Size,
			Status:     constants.FileStatusQueued,
			UploadedAt: time.Now().UTC(),
		}
		if err := store.InsertFile(f); err != nil {
			return err
		}
	}
	return nil
}
