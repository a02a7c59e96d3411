// Package export renders sale and expense listings as XLSX workbooks.
// Column headers and cell formats match the spreadsheets the back office
// already consumes, so they are fixed here rather than configurable.
package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"sales-register/internal/core"
)

const dateLayout = "02/01/2006"

var salesHeader = []string{"Fecha", "Cliente", "Producto", "Cantidad", "Total", "Estado"}

var expensesHeader = []string{"Fecha", "Categoría", "Descripción", "Monto"}

// WriteSales writes a one-sheet workbook of sales to w. Rows follow the
// input order; quantity carries its unit suffix and Estado is rendered
// as DEUDA or PAGADO.
func WriteSales(w io.Writer, sales []core.Sale) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := "Ventas"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if err := writeRow(f, sheet, 1, toAny(salesHeader)); err != nil {
		return err
	}
	for i, s := range sales {
		row := []any{
			s.Date.Format(dateLayout),
			s.ClientName,
			s.ProductName,
			fmt.Sprintf("%d%s", s.Quantity, s.Unit),
			s.Total.String(),
			statusLabel(s.PaymentStatus),
		}
		if err := writeRow(f, sheet, i+2, row); err != nil {
			return err
		}
	}
	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// WriteExpenses writes a one-sheet workbook of expenses to w.
func WriteExpenses(w io.Writer, expenses []core.Expense) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := "Gastos"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if err := writeRow(f, sheet, 1, toAny(expensesHeader)); err != nil {
		return err
	}
	for i, e := range expenses {
		row := []any{
			e.Date.Format(dateLayout),
			string(e.Category),
			e.Description,
			e.Amount.String(),
		}
		if err := writeRow(f, sheet, i+2, row); err != nil {
			return err
		}
	}
	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func statusLabel(s core.PaymentStatus) string {
	if s == core.Debt {
		return "DEUDA"
	}
	return "PAGADO"
}

func writeRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return fmt.Errorf("row %d: %w", row, err)
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("row %d: %w", row, err)
	}
	return nil
}

func toAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}
