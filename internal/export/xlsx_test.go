package export_test

import (
	"bytes"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"sales-register/internal/core"
	"sales-register/internal/export"
)

func TestWriteSales(t *testing.T) {
	sales := []core.Sale{
		{
			Date:          time.Date(2024, 1, 2, 9, 0, 0, 0, time.UTC),
			ClientName:    "Juan Perez",
			ProductName:   "Cemento",
			Quantity:      2,
			Unit:          core.UnitTonne,
			Total:         decimal.NewFromInt(100),
			PaymentStatus: core.Debt,
		},
		{
			Date:          time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC),
			ClientName:    "Ana Gomez",
			ProductName:   "Cal",
			Quantity:      3,
			Unit:          core.UnitEach,
			Total:         decimal.NewFromInt(45),
			PaymentStatus: core.Paid,
		},
	}

	var buf bytes.Buffer
	require.NoError(t, export.WriteSales(&buf, sales))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Ventas")
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, []string{"Fecha", "Cliente", "Producto", "Cantidad", "Total", "Estado"}, rows[0])
	assert.Equal(t, []string{"02/01/2024", "Juan Perez", "Cemento", "2TN", "100", "DEUDA"}, rows[1])
	assert.Equal(t, []string{"01/01/2024", "Ana Gomez", "Cal", "3U", "45", "PAGADO"}, rows[2])
}

func TestWriteExpenses(t *testing.T) {
	expenses := []core.Expense{
		{
			Date:        time.Date(2024, 2, 15, 0, 0, 0, 0, time.UTC),
			Category:    core.ExpenseRent,
			Description: "Alquiler del local",
			Amount:      decimal.NewFromInt(1200),
		},
	}

	var buf bytes.Buffer
	require.NoError(t, export.WriteExpenses(&buf, expenses))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Gastos")
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, []string{"Fecha", "Categoría", "Descripción", "Monto"}, rows[0])
	assert.Equal(t, []string{"15/02/2024", "Alquiler", "Alquiler del local", "1200"}, rows[1])
}

func TestWriteSales_EmptyStillHasHeader(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, export.WriteSales(&buf, nil))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Ventas")
	require.NoError(t, err)
	require.Len(t, rows, 1)
}
