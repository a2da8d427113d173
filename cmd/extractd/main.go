// extractd is the invoice extraction daemon: HTTP upload surface in
// front of an asynchronous extraction pipeline.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/docuflow/invoice-extractor/internal/async"
	"github.com/docuflow/invoice-extractor/internal/common"
	"github.com/docuflow/invoice-extractor/internal/export"
	"github.com/docuflow/invoice-extractor/internal/extract"
	"github.com/docuflow/invoice-extractor/internal/llm"
	"github.com/docuflow/invoice-extractor/internal/pipeline"
	"github.com/docuflow/invoice-extractor/internal/repository"
	"github.com/docuflow/invoice-extractor/internal/server"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error("config invalid", "error", err)
		os.Exit(1)
	}

	store := repository.NewMemoryStore()

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

	progress := pipeline.NewProgressBroadcaster()
	orch := pipeline.NewOrchestrator(store, adapters, llmClient, progress, logger)
	queue := async.NewPipelineQueue(orch, logger,
		async.WithWorkers(cfg.Pipeline.Workers),
		async.WithQueueSize(cfg.Pipeline.QueueSize),
	)

	uploadDir := cfg.Server.UploadDir
	if err := os.MkdirAll(uploadDir, 0o755); err != nil {
		logger.Error("upload dir", "path", uploadDir, "error", err)
		os.Exit(1)
	}

	handler := server.NewHandler(store,
		func(in pipeline.FileInput) { _ = queue.Enqueue(context.Background(), in) },
		progress,
		export.NewService(store, logger),
		uploadDir,
		logger,
	)
	srv := server.New(cfg.Server.Addr, handler.Routes(), logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errCh:
		if err != nil {
			logger.Error("server failed", "error", err)
			os.Exit(1)
		}
		return
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown", "error", err)
	}
	queue.Shutdown(shutdownCtx)
	logger.Info("bye")
}
