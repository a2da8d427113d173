package repository

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/docuflow/invoice-extractor/internal/common"
	"github.com/docuflow/invoice-extractor/internal/entity"
)

// MemoryStore keeps everything in process memory. State does not
// survive a restart; that is acceptable for this service, which treats
// extraction results as re-derivable from the source files.
type MemoryStore struct {
	mu sync.RWMutex

	files     map[uuid.UUID]*entity.UploadedFile
	fileOrder []uuid.UUID

	invoices     map[uuid.UUID]*entity.Invoice
	invoiceOrder []uuid.UUID

	products     map[uuid.UUID]*entity.Product
	productOrder []uuid.UUID

	customers     map[uuid.UUID]*entity.Customer
	customerOrder []uuid.UUID
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		files:     make(map[uuid.UUID]*entity.UploadedFile),
		invoices:  make(map[uuid.UUID]*entity.Invoice),
		products:  make(map[uuid.UUID]*entity.Product),
		customers: make(map[uuid.UUID]*entity.Customer),
	}
}

func (s *MemoryStore) InsertFile(f *entity.UploadedFile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.files[f.ID]; exists {
		return fmt.Errorf("file %s: %w", f.ID, common.ErrInvalidInput)
	}
	cp := *f
	s.files[f.ID] = &cp
	s.fileOrder = append(s.fileOrder, f.ID)
	return nil
}

func (s *MemoryStore) GetFile(id uuid.UUID) (*entity.UploadedFile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	f, ok := s.files[id]
	if !ok {
		return nil, fmt.Errorf("file %s: %w", id, common.ErrNotFound)
	}
	cp := *f
	return &cp, nil
}

func (s *MemoryStore) ListFiles() []*entity.UploadedFile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*entity.UploadedFile, 0, len(s.fileOrder))
	for _, id := range s.fileOrder {
		cp := *s.files[id]
		out = append(out, &cp)
	}
	return out
}

func (s *MemoryStore) UpdateFileStatus(id uuid.UUID, upd FileStatusUpdate) (*entity.UploadedFile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.files[id]
	if !ok {
		return nil, fmt.Errorf("file %s: %w", id, common.ErrNotFound)
	}
	f.Status = upd.Status
	if upd.Progress != nil {
		f.Progress = *upd.Progress
	}
	if upd.Error != nil {
		f.Error = upd.Error
	}
	if upd.InvoiceIDs != nil {
		f.ExtractedInvoiceIDs = upd.InvoiceIDs
	}
	cp := *f
	return &cp, nil
}

func (s *MemoryStore) InsertInvoice(inv *entity.Invoice) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.invoices[inv.ID]; exists {
		return fmt.Errorf("invoice %s: %w", inv.ID, common.ErrInvalidInput)
	}
	cp := *inv
	s.invoices[inv.ID] = &cp
	s.invoiceOrder = append(s.invoiceOrder, inv.ID)
	return nil
}

func (s *MemoryStore) InsertProducts(ps []*entity.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range ps {
		if _, exists := s.products[p.ID]; exists {
			return fmt.Errorf("product %s: %w", p.ID, common.ErrInvalidInput)
		}
	}
	for _, p := range ps {
		cp := *p
		s.products[p.ID] = &cp
		s.productOrder = append(s.productOrder, p.ID)
	}
	return nil
}

func (s *MemoryStore) InsertCustomer(c *entity.Customer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.customers[c.ID]; exists {
		return fmt.Errorf("customer %s: %w", c.ID, common.ErrInvalidInput)
	}
	cp := *c
	s.customers[c.ID] = &cp
	s.customerOrder = append(s.customerOrder, c.ID)
	return nil
}

func (s *MemoryStore) GetInvoice(id uuid.UUID) (*entity.Invoice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	inv, ok := s.invoices[id]
	if !ok {
		return nil, fmt.Errorf("invoice %s: %w", id, common.ErrNotFound)
	}
	cp := *inv
	return &cp, nil
}

func (s *MemoryStore) GetProduct(id uuid.UUID) (*entity.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.products[id]
	if !ok {
		return nil, fmt.Errorf("product %s: %w", id, common.ErrNotFound)
	}
	cp := *p
	return &cp, nil
}

func (s *MemoryStore) GetCustomer(id uuid.UUID) (*entity.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.customers[id]
	if !ok {
		return nil, fmt.Errorf("customer %s: %w", id, common.ErrNotFound)
	}
	cp := *c
	return &cp, nil
}

func (s *MemoryStore) ListInvoices() []*entity.Invoice {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*entity.Invoice, 0, len(s.invoiceOrder))
	for _, id := range s.invoiceOrder {
		cp := *s.invoices[id]
		out = append(out, &cp)
	}
	return out
}

func (s *MemoryStore) ListProducts() []*entity.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*entity.Product, 0, len(s.productOrder))
	for _, id := range s.productOrder {
		cp := *s.products[id]
		out = append(out, &cp)
	}
	return out
}

func (s *MemoryStore) ListCustomers() []*entity.Customer {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*entity.Customer, 0, len(s.customerOrder))
	for _, id := range s.customerOrder {
		cp := *s.customers[id]
		out = append(out, &cp)
	}
	return out
}

func (s *MemoryStore) UpdateInvoice(id uuid.UUID, patch InvoicePatch) (*entity.Invoice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	inv, ok := s.invoices[id]
	if !ok {
		return nil, fmt.Errorf("invoice %s: %w", id, common.ErrNotFound)
	}
	if patch.SerialNumber != nil {
		inv.SerialNumber = *patch.SerialNumber
	}
	if patch.Date != nil {
		inv.Date = *patch.Date
	}
	if patch.CustomerName != nil {
		inv.CustomerName = *patch.CustomerName
	}
	if patch.TotalAmount != nil {
		inv.TotalAmount = *patch.TotalAmount
	}
	if patch.Tax != nil {
		inv.Tax = *patch.Tax
	}
	inv.RecomputeMissingFields()
	now := time.Now().UTC()
	inv.LastEditedAt = &now
	cp := *inv
	return &cp, nil
}

func (s *MemoryStore) UpdateProduct(id uuid.UUID, patch ProductPatch) (*entity.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[id]
	if !ok {
		return nil, fmt.Errorf("product %s: %w", id, common.ErrNotFound)
	}
	if patch.Name != nil {
		p.Name = *patch.Name
	}
	if patch.Quantity != nil {
		p.Quantity = *patch.Quantity
	}
	if patch.UnitPrice != nil {
		p.UnitPrice = *patch.UnitPrice
	}
	if patch.Tax != nil {
		p.Tax = *patch.Tax
	}
	if patch.PriceWithTax != nil {
		p.PriceWithTax = *patch.PriceWithTax
	}
	p.RecomputeMissingFields()
	now := time.Now().UTC()
	p.LastEditedAt = &now
	cp := *p
	return &cp, nil
}

func (s *MemoryStore) UpdateCustomer(id uuid.UUID, patch CustomerPatch) (*entity.Customer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.customers[id]
	if !ok {
		return nil, fmt.Errorf("customer %s: %w", id, common.ErrNotFound)
	}
	if patch.Name != nil {
		c.Name = *patch.Name
	}
	if patch.Phone != nil {
		c.Phone = *patch.Phone
	}
	if patch.TotalPurchaseAmount != nil {
		c.TotalPurchaseAmount = *patch.TotalPurchaseAmount
	}
	c.RecomputeMissingFields()
	now := time.Now().UTC()
	c.LastEditedAt = &now
	cp := *c
	return &cp, nil
}

// DeleteInvoice removes only the invoice record. Products and the
// customer keep their references; dangling ids are the caller's
// concern, matching the non-cascading delete semantics of the edit
// surface.
func (s *MemoryStore) DeleteInvoice(id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.invoices[id]; !ok {
		return fmt.Errorf("invoice %s: %w", id, common.ErrNotFound)
	}
	delete(s.invoices, id)
	s.invoiceOrder = removeID(s.invoiceOrder, id)
	return nil
}

// DeleteProductsByInvoice removes every product belonging to the given
// invoice and returns how many were removed. The invoice's ProductIDs
// list is trimmed to match when the invoice still exists.
func (s *MemoryStore) DeleteProductsByInvoice(invoiceID uuid.UUID) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for id, p := range s.products {
		if p.InvoiceID == invoiceID {
			delete(s.products, id)
			s.productOrder = removeID(s.productOrder, id)
			removed++
		}
	}
	if inv, ok := s.invoices[invoiceID]; ok {
		inv.ProductIDs = nil
	}
	return removed, nil
}

func removeID(ids []uuid.UUID, id uuid.UUID) []uuid.UUID {
	for i, v := range ids {
		if v == id {
			return append(ids[:i], ids[i+1:]...)
		}
	}
	return ids
}
