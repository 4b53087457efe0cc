// Package export renders report data as downloadable documents.
package export

import (
	"bytes"
	"fmt"
	"time"

	appcollections "github.com/motoshop/backend/internal/application/collections"
	"github.com/motoshop/backend/internal/domain/collections"
	"github.com/xuri/excelize/v2"
)

const (
	standingsSheet = "Clientes financiados"
	xlsxMIME       = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	sheetDate      = "2006-01-02"
)

var standingsHeaders = []string{
	"Cliente",
	"Documento",
	"Venta",
	"Monto total",
	"Monto con intereses",
	"Total pagado",
	"Saldo pendiente",
	"Mora",
	"Cuotas pagadas",
	"Cuotas restantes",
	"Próxima cuota",
	"Vencimiento",
	"Días vencido",
	"Último pago",
}

// XLSXStandingsExporter writes client standings to a single-sheet workbook
type XLSXStandingsExporter struct{}

// NewXLSXStandingsExporter creates the exporter
func NewXLSXStandingsExporter() *XLSXStandingsExporter {
	return &XLSXStandingsExporter{}
}

// ContentType returns the XLSX MIME type
func (e *XLSXStandingsExporter) ContentType() string { return xlsxMIME }

// Extension returns the file extension without dot
func (e *XLSXStandingsExporter) Extension() string { return "xlsx" }

// Export renders standings. Money columns are numeric with two decimals,
// dates are plain YYYY-MM-DD text, and the last row holds the totals.
func (e *XLSXStandingsExporter) Export(standings []collections.ClientStanding, cutoff time.Time) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(standingsSheet)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("failed to drop default sheet: %w", err)
	}

	if err := f.SetCellValue(standingsSheet, "A1", "Corte: "+cutoff.Format(sheetDate)); err != nil {
		return nil, err
	}
	if err := f.SetSheetRow(standingsSheet, "A2", &standingsHeaders); err != nil {
		return nil, fmt.Errorf("failed to write headers: %w", err)
	}

	money, err := f.NewStyle(&excelize.Style{NumFmt: 4}) // #,##0.00
	if err != nil {
		return nil, err
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(standingsSheet, "A2", "N2", bold); err != nil {
		return nil, err
	}

	totals := make([]float64, 5)
	row := 3
	for _, s := range standings {
		values := []any{
			s.ClientName,
			s.ClientDocument,
			s.SaleID.String(),
			s.TotalAmount.Round(2).InexactFloat64(),
			s.AmountWithInterest.Round(2).InexactFloat64(),
			s.TotalPaid.Round(2).InexactFloat64(),
			s.Outstanding.Round(2).InexactFloat64(),
			s.TotalLateFees.Round(2).InexactFloat64(),
			s.InstallmentsPaid,
			s.InstallmentsLeft,
		}
		if s.Next != nil {
			values = append(values, s.Next.Number, s.Next.DueDate.Format(sheetDate), s.Next.DaysOverdue)
		} else {
			values = append(values, "", "", 0)
		}
		if s.LastPaymentAt != nil {
			values = append(values, s.LastPaymentAt.Format(sheetDate))
		} else {
			values = append(values, "")
		}

		cell, _ := excelize.CoordinatesToCellName(1, row)
		if err := f.SetSheetRow(standingsSheet, cell, &values); err != nil {
			return nil, fmt.Errorf("failed to write row %d: %w", row, err)
		}
		for i := range totals {
			totals[i] += values[3+i].(float64)
		}
		row++
	}

	totalRow := []any{"Total", "", ""}
	for _, t := range totals {
		totalRow = append(totalRow, t)
	}
	cell, _ := excelize.CoordinatesToCellName(1, row)
	if err := f.SetSheetRow(standingsSheet, cell, &totalRow); err != nil {
		return nil, fmt.Errorf("failed to write totals: %w", err)
	}
	if err := f.SetCellStyle(standingsSheet, cell, fmt.Sprintf("H%d", row), bold); err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(standingsSheet, "D3", fmt.Sprintf("H%d", row), money); err != nil {
		return nil, err
	}
	if err := f.SetColWidth(standingsSheet, "A", "A", 32); err != nil {
		return nil, err
	}
	if err := f.SetColWidth(standingsSheet, "C", "C", 38); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

var _ appcollections.StandingsExporter = (*XLSXStandingsExporter)(nil)
