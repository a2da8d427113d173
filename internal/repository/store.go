// Package repository defines the storage contracts the pipeline and the
// HTTP layer depend on, plus the in-memory implementation.
package repository

import (
	"github.com/google/uuid"

	"github.com/docuflow/invoice-extractor/constants"
	"github.com/docuflow/invoice-extractor/internal/entity"
)

// FileStatusUpdate carries one atomic status transition for a file.
// Nil pointers leave the corresponding field untouched.
type FileStatusUpdate struct {
	Status     constants.FileStatus
	Progress   *int
	Error      *string
	InvoiceIDs []uuid.UUID
}

// InvoicePatch is a partial edit to an invoice. Fields use a
// double-pointer so the caller can distinguish "not edited" (outer nil)
// from "set to null" (outer non-nil, inner nil).
type InvoicePatch struct {
	SerialNumber **string
	Date         **string
	CustomerName **string
	TotalAmount  **float64
	Tax          **float64
}

// ProductPatch mirrors InvoicePatch for products.
type ProductPatch struct {
	Name         **string
	Quantity     **float64
	UnitPrice    **float64
	Tax          **float64
	PriceWithTax **float64
}

// CustomerPatch mirrors InvoicePatch for customers.
type CustomerPatch struct {
	Name                **string
	Phone               **string
	TotalPurchaseAmount **float64
}

// FileRegistry tracks uploaded files and their pipeline status.
type FileRegistry interface {
	InsertFile(f *entity.UploadedFile) error
	GetFile(id uuid.UUID) (*entity.UploadedFile, error)
	ListFiles() []*entity.UploadedFile
	UpdateFileStatus(id uuid.UUID, upd FileStatusUpdate) (*entity.UploadedFile, error)
}

// EntityStore holds the extracted invoice graph. Inserts are performed
// by the pipeline after a successful extraction; updates and deletes
// come from the edit surface.
type EntityStore interface {
	InsertInvoice(inv *entity.Invoice) error
	InsertProducts(ps []*entity.Product) error
	InsertCustomer(c *entity.Customer) error

	GetInvoice(id uuid.UUID) (*entity.Invoice, error)
	GetProduct(id uuid.UUID) (*entity.Product, error)
	GetCustomer(id uuid.UUID) (*entity.Customer, error)

	ListInvoices() []*entity.Invoice
	ListProducts() []*entity.Product
	ListCustomers() []*entity.Customer

	UpdateInvoice(id uuid.UUID, patch InvoicePatch) (*entity.Invoice, error)
	UpdateProduct(id uuid.UUID, patch ProductPatch) (*entity.Product, error)
	UpdateCustomer(id uuid.UUID, patch CustomerPatch) (*entity.Customer, error)

	DeleteInvoice(id uuid.UUID) error
	DeleteProductsByInvoice(invoiceID uuid.UUID) (int, error)
}

// Store is the full storage surface.
type Store interface {
	FileRegistry
	EntityStore
}
