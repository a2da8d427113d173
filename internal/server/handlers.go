// Package server exposes the upload, read, edit and export surface over
// HTTP.
package server

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/docuflow/invoice-extractor/constants"
	"github.com/docuflow/invoice-extractor/internal/entity"
	"github.com/docuflow/invoice-extractor/internal/export"
	"github.com/docuflow/invoice-extractor/internal/pipeline"
	"github.com/docuflow/invoice-extractor/internal/repository"
)

// Handler carries the dependencies of every route. enqueue hands an
// accepted file to the worker pool.
type Handler struct {
	store    repository.Store
	enqueue  func(in pipeline.FileInput)
	progress *pipeline.ProgressBroadcaster
	exporter *export.Service
	uploads  string
	logger   *slog.Logger
}

// NewHandler wires the routes' dependencies. uploadDir must exist and
// be writable; submitted files are staged there for the pipeline.
func NewHandler(store repository.Store, enqueue func(in pipeline.FileInput), progress *pipeline.ProgressBroadcaster, exporter *export.Service, uploadDir string, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		store:    store,
		enqueue:  enqueue,
		progress: progress,
		exporter: exporter,
		uploads:  uploadDir,
		logger:   logger,
	}
}

// Routes builds the router.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/healthz", h.health)

	r.Route("/api", func(r chi.Router) {
		r.Post("/files", h.uploadFile)
		r.Get("/files", h.listFiles)
		r.Get("/files/{id}", h.getFile)
		r.Get("/events", h.streamEvents)

		r.Get("/invoices", h.listInvoices)
		r.Get("/invoices/{id}", h.getInvoice)
		r.Patch("/invoices/{id}", h.patchInvoice)
		r.Delete("/invoices/{id}", h.deleteInvoice)
		r.Delete("/invoices/{id}/products", h.deleteInvoiceProducts)

		r.Get("/products", h.listProducts)
		r.Get("/products/{id}", h.getProduct)
		r.Patch("/products/{id}", h.patchProduct)

		r.Get("/customers", h.listCustomers)
		r.Get("/customers/{id}", h.getCustomer)
		r.Patch("/customers/{id}", h.patchCustomer)

		r.Get("/export.xlsx", h.exportXLSX)
	})

	return r
}

func (h *Handler) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) uploadFile(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, constants.MaxFileSize+1<<20)
	if err := r.ParseMultipartForm(constants.MaxFileSize); err != nil {
		writeError(w, http.StatusBadRequest, "malformed multipart body")
		return
	}
	part, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing file field")
		return
	}
	defer part.Close()

	mime := constants.NormalizeMIME(header.Header.Get("Content-Type"))
	if _, ok := constants.AllowedMIMETypes[mime]; !ok {
		writeError(w, http.StatusUnsupportedMediaType, fmt.Sprintf("unsupported file type %q", mime))
		return
	}
	if header.Size > constants.MaxFileSize {
		writeError(w, http.StatusRequestEntityTooLarge, "file exceeds the 10 MiB limit")
		return
	}

	id := uuid.New()
	dst := filepath.Join(h.uploads, id.String()+filepath.Ext(header.Filename))
	out, err := os.Create(dst)
	if err != nil {
		h.logger.Error("http.upload.stage_failed", "error", err)
		writeError(w, http.StatusInternalServerError, "could not store upload")
		return
	}
	n, err := io.Copy(out, part)
	closeErr := out.Close()
	if err != nil || closeErr != nil {
		os.Remove(dst)
		h.logger.Error("http.upload.stage_failed", "copy_error", err, "close_error", closeErr)
		writeError(w, http.StatusInternalServerError, "could not store upload")
		return
	}

	f := &entity.UploadedFile{
		ID:         id,
		Name:       header.Filename,
		MIMEType:   mime,
		Size:       n,
		Status:     constants.FileStatusQueued,
		UploadedAt: time.Now().UTC(),
	}
	if err := h.store.InsertFile(f); err != nil {
		os.Remove(dst)
		writeStoreError(w, err)
		return
	}

	h.enqueue(pipeline.FileInput{
		ID:       id,
		Name:     header.Filename,
		MIMEType: mime,
		Path:     dst,
		Size:     n,
	})
	h.logger.Info("http.upload.accepted", "file_id", id, "name", header.Filename, "mime", mime, "size", n)
	writeJSON(w, http.StatusAccepted, f)
}

func (h *Handler) listFiles(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.store.ListFiles())
}

func (h *Handler) getFile(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	f, err := h.store.GetFile(id)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, f)
}

// streamEvents pushes pipeline progress as server-sent events until the
// client goes away.
func (h *Handler) streamEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}
	events, cancel := h.progress.Subscribe()
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case ev, open := <-events:
			if !open {
				return
			}
			payload, err := json.Marshal(ev)
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "data: %s\n\n", payload)
			flusher.Flush()
		}
	}
}

func (h *Handler) listInvoices(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.store.ListInvoices())
}

func (h *Handler) getInvoice(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	inv, err := h.store.GetInvoice(id)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, inv)
}

func (h *Handler) patchInvoice(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var body map[string]json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	var patch repository.InvoicePatch
	var err error
	if patch.SerialNumber, err = strField(body, "serialNumber"); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if patch.Date, err = strField(body, "date"); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if patch.CustomerName, err = strField(body, "customerName"); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if patch.TotalAmount, err = numField(body, "totalAmount"); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if patch.Tax, err = numField(body, "tax"); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	inv, err := h.store.UpdateInvoice(id, patch)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, inv)
}

func (h *Handler) deleteInvoice(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.store.DeleteInvoice(id); err != nil {
		writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) deleteInvoiceProducts(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	n, err := h.store.DeleteProductsByInvoice(id)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"deleted": n})
}

func (h *Handler) listProducts(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.store.ListProducts())
}

func (h *Handler) getProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	p, err := h.store.GetProduct(id)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *Handler) patchProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var body map[string]json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	var patch repository.ProductPatch
	var err error
	if patch.Name, err = strField(body, "name"); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if patch.Quantity, err = numField(body, "quantity"); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if patch.UnitPrice, err = numField(body, "unitPrice"); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if patch.Tax, err = numField(body, "tax"); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if patch.PriceWithTax, err = numField(body, "priceWithTax"); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	p, err := h.store.UpdateProduct(id, patch)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *Handler) listCustomers(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.store.ListCustomers())
}

func (h *Handler) getCustomer(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	c, err := h.store.GetCustomer(id)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *Handler) patchCustomer(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var body map[string]json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	var patch repository.CustomerPatch
	var err error
	if patch.Name, err = strField(body, "name"); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if patch.Phone, err = strField(body, "phone"); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if patch.TotalPurchaseAmount, err = numField(body, "totalPurchaseAmount"); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	c, err := h.store.UpdateCustomer(id, patch)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *Handler) exportXLSX(w http.ResponseWriter, _ *http.Request) {
	data, err := h.exporter.ExportInvoicesXLSX()
	if err != nil {
		h.logger.Error("http.export.failed", "error", err)
		writeError(w, http.StatusInternalServerError, "export failed")
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="invoices.xlsx"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return uuid.Nil, false
	}
	return id, true
}

// strField reads an optional string-or-null field from a patch body.
// A missing key yields nil (field untouched); explicit null yields a
// non-nil pointer to a nil value (field cleared).
func strField(body map[string]json.RawMessage, key string) (**string, error) {
	raw, ok := body[key]
	if !ok {
		return nil, nil
	}
	var v *string
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("field %q must be a string or null", key)
	}
	return &v, nil
}

func numField(body map[string]json.RawMessage, key string) (**float64, error) {
	raw, ok := body[key]
	if !ok {
		return nil, nil
	}
	var v *float64
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("field %q must be a number or null", key)
	}
	return &v, nil
}
