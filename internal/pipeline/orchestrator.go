// Package pipeline drives uploaded files through classification, text
// extraction, structuring, validation, sanitization and normalization.
package pipeline

import (
	"context"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/docuflow/invoice-extractor/constants"
	"github.com/docuflow/invoice-extractor/internal/classify"
	"github.com/docuflow/invoice-extractor/internal/extract"
	"github.com/docuflow/invoice-extractor/internal/llm"
	"github.com/docuflow/invoice-extractor/internal/normalize"
	"github.com/docuflow/invoice-extractor/internal/repository"
)

// Stage progress bands. Extraction owns up to 60, with the OCR
// sub-path spread across 30..60; structuring ends at 80.
const (
	progressExtractStart = 10
	progressOCRBase      = 30
	progressOCRSpan      = 30
	progressTextDone     = 60
	progressAIDone       = 80
	progressDone         = 100
)

// FileInput is everything the orchestrator needs to process one file.
type FileInput struct {
	ID       uuid.UUID
	Name     string
	MIMEType string
	Path     string
	Size     int64
}

// Orchestrator runs the per-file state machine. One Process call per
// file submission; there is no retry of a failed stage.
type Orchestrator struct {
	store     repository.Store
	adapters  extract.AdapterSet
	extractor llm.DocumentExtractor
	progress  *ProgressBroadcaster
	logger    *slog.Logger
}

func NewOrchestrator(store repository.Store, adapters extract.AdapterSet, extractor llm.DocumentExtractor, progress *ProgressBroadcaster, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	if progress == nil {
		progress = NewProgressBroadcaster()
	}
	return &Orchestrator{
		store:     store,
		adapters:  adapters,
		extractor: extractor,
		progress:  progress,
		logger:    logger,
	}
}

// Progress exposes the broadcaster for subscribers.
func (o *Orchestrator) Progress() *ProgressBroadcaster { return o.progress }

// Process drives one file from Queued to a terminal state. The returned
// error, if any, is a *ClassifiedError already recorded on the file;
// failures never propagate to other files.
func (o *Orchestrator) Process(ctx context.Context, in FileInput) error {
	log := o.logger.With("file_id", in.ID, "name", in.Name)
	log.Info("pipeline.file.start", "mime", in.MIMEType, "size", in.Size)

	// progress freezes at its last reported value on failure
	lastProgress := 0

	format := classify.DetectFileType(constants.NormalizeMIME(in.MIMEType))
	if format == constants.UNSUPPORTED {
		return o.fail(log, in.ID, ErrUnsupportedType)
	}
	adapter, ok := o.adapters.For(format)
	if !ok {
		return o.fail(log, in.ID, ErrUnsupportedType)
	}

	o.report(in.ID, constants.FileStatusExtracting, progressExtractStart, &lastProgress)

	onOCR := func(fraction float64) {
		p := progressOCRBase + int(fraction*progressOCRSpan)
		o.report(in.ID, constants.FileStatusExtracting, p, &lastProgress)
	}
	result, err := adapter.Extract(ctx, in.Path, onOCR)
	if err != nil {
		return o.fail(log, in.ID, err)
	}
	if strings.TrimSpace(result.Text) == "" {
		return o.fail(log, in.ID, ErrEmptyExtraction)
	}
	log.Info("pipeline.extract.ok", "method", result.Method, "pages", result.Pages, "chars", len(result.Text), "duration", result.Duration)

	o.report(in.ID, constants.FileStatusAIExtracting, progressTextDone, &lastProgress)

	raw, err := o.extractor.ExtractDocument(ctx, result.Text)
	if err != nil {
		return o.fail(log, in.ID, err)
	}

	vr := llm.ValidateDocument(raw)
	if !vr.Valid {
		return o.fail(log, in.ID, &InvalidDocumentError{Violations: vr.Violations})
	}
	if len(vr.Violations) > 0 {
		log.Warn("pipeline.validate.violations", "count", len(vr.Violations), "violations", vr.Violations)
	}

	o.report(in.ID, constants.FileStatusNormalizing, progressAIDone, &lastProgress)

	doc, err := llm.SanitizeDocument(raw)
	if err != nil {
		return o.fail(log, in.ID, err)
	}
	res := normalize.Normalize(doc, in.ID)

	// commit order: referenced entities before the invoice that links them
	if err := o.store.InsertCustomer(res.Customer); err != nil {
		return o.fail(log, in.ID, err)
	}
	if err := o.store.InsertProducts(res.Products); err != nil {
		return o.fail(log, in.ID, err)
	}
	if err := o.store.InsertInvoice(res.Invoice); err != nil {
		return o.fail(log, in.ID, err)
	}

	p := progressDone
	_, err = o.store.UpdateFileStatus(in.ID, repository.FileStatusUpdate{
		Status:     constants.FileStatusCompleted,
		Progress:   &p,
		InvoiceIDs: []uuid.UUID{res.Invoice.ID},
	})
	if err != nil {
		log.Error("pipeline.file.status_update_failed", "error", err)
	}
	o.progress.Publish(ProgressEvent{FileID: in.ID, Status: constants.FileStatusCompleted, Progress: progressDone})
	log.Info("pipeline.file.completed", "invoice_id", res.Invoice.ID, "products", len(res.Products))
	return nil
}

// report moves the file forward; progress for one file never decreases.
func (o *Orchestrator) report(fileID uuid.UUID, status constants.FileStatus, progress int, last *int) {
	if progress < *last {
		progress = *last
	}
	*last = progress
	p := progress
	if _, err := o.store.UpdateFileStatus(fileID, repository.FileStatusUpdate{Status: status, Progress: &p}); err != nil {
		o.logger.Error("pipeline.file.status_update_failed", "file_id", fileID, "error", err)
	}
	o.progress.Publish(ProgressEvent{FileID: fileID, Status: status, Progress: progress})
}

// fail classifies the stage error and parks the file in Failed with its
// progress frozen. No entities are committed for a failed file.
func (o *Orchestrator) fail(log *slog.Logger, fileID uuid.UUID, cause error) error {
	ce := Classify(cause)
	log.Error("pipeline.file.failed", "category", ce.Category, "message", ce.Message, "cause", cause)
	f, err := o.store.UpdateFileStatus(fileID, repository.FileStatusUpdate{
		Status: constants.FileStatusFailed,
		Error:  &ce.Message,
	})
	progress := 0
	if err != nil {
		log.Error("pipeline.file.status_update_failed", "error", err)
	} else {
		progress = f.Progress
	}
	msg := ce.Message
	o.progress.Publish(ProgressEvent{FileID: fileID, Status: constants.FileStatusFailed, Progress: progress, Error: &msg})
	return ce
}
