// Package export produces XLSX workbooks from the extracted entity graph.
package export

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/docuflow/invoice-extractor/internal/entity"
	"github.com/docuflow/invoice-extractor/internal/repository"
)

// Service is a tiny façade over the store that produces XLSX bytes.
type Service struct {
	store  repository.EntityStore
	logger *slog.Logger
}

func NewService(store repository.EntityStore, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: store, logger: logger}
}

// ExportInvoicesXLSX returns a workbook with one row per invoice,
// joined against its customer. Missing fields render as empty cells and
// the missingFields column lists them so the gap is visible in the
// export, not silently blank.
func (s *Service) ExportInvoicesXLSX() ([]byte, error) {
	start := time.Now()

	invoices := s.store.ListInvoices()

	f := excelize.NewFile()
	const sheet = "Invoices"
	if index, _ := f.GetSheetIndex(sheet); index == -1 {
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, err
		}
	}
	activeIndex, _ := f.GetSheetIndex(sheet)
	f.SetActiveSheet(activeIndex)

	headers := []string{
		"Serial Number",
		"Date",
		"Customer Name",
		"Customer Phone",
		"Total Amount",
		"Tax",
		"Products",
		"Missing Fields",
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	row := 2
	for _, inv := range invoices {
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(sheet, cell, v)
		}

		phone := ""
		customerName := strOr(inv.CustomerName, "")
		if cust, err := s.store.GetCustomer(inv.CustomerID); err == nil {
			phone = strOr(cust.Phone, "")
			if customerName == "" {
				customerName = strOr(cust.Name, "")
			}
		}

		write(1, strOr(inv.SerialNumber, ""))
		write(2, strOr(inv.Date, ""))
		write(3, customerName)
		write(4, phone)
		writeNum(write, 5, inv.TotalAmount)
		writeNum(write, 6, inv.Tax)
		write(7, s.productSummary(inv))
		write(8, strings.Join(inv.MissingFields, ", "))

		row++
	}

	_ = f.SetColWidth(sheet, "A", "A", 16)
	_ = f.SetColWidth(sheet, "B", "B", 12)
	_ = f.SetColWidth(sheet, "C", "C", 28)
	_ = f.SetColWidth(sheet, "D", "D", 16)
	_ = f.SetColWidth(sheet, "E", "F", 14)
	_ = f.SetColWidth(sheet, "G", "G", 48)
	_ = f.SetColWidth(sheet, "H", "H", 32)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"rows", len(invoices),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

func (s *Service) productSummary(inv *entity.Invoice) string {
	parts := make([]string, 0, len(inv.ProductIDs))
	for _, id := range inv.ProductIDs {
		p, err := s.store.GetProduct(id)
		if err != nil {
			continue
		}
		name := strOr(p.Name, "?")
		if p.Quantity != nil {
			parts = append(parts, fmt.Sprintf("%s x%v", name, *p.Quantity))
		} else {
			parts = append(parts, name)
		}
	}
	return strings.Join(parts, "; ")
}

func strOr(p *string, fallback string) string {
	if p == nil {
		return fallback
	}
	return *p
}

func writeNum(write func(int, any), col int, v *float64) {
	if v == nil {
		write(col, "")
		return
	}
	write(col, *v)
}
