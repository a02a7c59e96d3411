package core_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sales-register/internal/core"
)

func saleAt(ts string, client, product string, status core.PaymentStatus) core.Sale {
	date, err := time.Parse(time.RFC3339, ts)
	if err != nil {
		panic(err)
	}
	return core.Sale{
		ClientName:    client,
		ProductName:   product,
		PaymentStatus: status,
		Date:          date,
		Total:         decimal.NewFromInt(10),
	}
}

func TestGroupByDay_BucketsByCivilDate(t *testing.T) {
	agg := core.NewHistoryAggregator(time.UTC)

	// Input arrives newest first, as the store lists it.
	sales := []core.Sale{
		saleAt("2024-01-02T09:00:00Z", "Ana", "Cal", core.Paid),
		saleAt("2024-01-02T08:00:00Z", "Juan", "Cemento", core.Paid),
		saleAt("2024-01-01T10:00:00Z", "Maria", "Arena", core.Paid),
	}

	days := agg.GroupByDay(sales)
	require.Len(t, days, 2)

	assert.Equal(t, "2024-01-02", days[0].Key)
	require.Len(t, days[0].Sales, 2)
	assert.Equal(t, "Ana", days[0].Sales[0].ClientName)
	assert.Equal(t, "Juan", days[0].Sales[1].ClientName)

	assert.Equal(t, "2024-01-01", days[1].Key)
	require.Len(t, days[1].Sales, 1)
	assert.Equal(t, "Maria", days[1].Sales[0].ClientName)
}

func TestGroupByDay_UsesConfiguredLocation(t *testing.T) {
	// UTC−3: 01:00Z on Jan 2 is still Jan 1 locally.
	loc := time.FixedZone("AR", -3*60*60)
	agg := core.NewHistoryAggregator(loc)

	days := agg.GroupByDay([]core.Sale{
		saleAt("2024-01-02T01:00:00Z", "Ana", "Cal", core.Paid),
		saleAt("2024-01-01T12:00:00Z", "Juan", "Cemento", core.Paid),
	})
	require.Len(t, days, 1)
	assert.Equal(t, "2024-01-01", days[0].Key)
	assert.Len(t, days[0].Sales, 2)
}

func TestGroupByDay_OrdersDaysNewestFirst(t *testing.T) {
	agg := core.NewHistoryAggregator(time.UTC)

	// Deliberately shuffled input: bucket order must come from timestamps,
	// not arrival order.
	days := agg.GroupByDay([]core.Sale{
		saleAt("2024-01-01T10:00:00Z", "Maria", "Arena", core.Paid),
		saleAt("2024-01-03T08:00:00Z", "Ana", "Cal", core.Paid),
		saleAt("2024-01-02T09:00:00Z", "Juan", "Cemento", core.Paid),
	})
	require.Len(t, days, 3)
	assert.Equal(t, []string{"2024-01-03", "2024-01-02", "2024-01-01"},
		[]string{days[0].Key, days[1].Key, days[2].Key})
}

func TestFilter(t *testing.T) {
	agg := core.NewHistoryAggregator(time.UTC)
	sales := []core.Sale{
		saleAt("2024-01-02T09:00:00Z", "Juan Perez", "Cemento", core.Debt),
		saleAt("2024-01-02T08:00:00Z", "Ana Gomez", "Cal", core.Paid),
		saleAt("2024-01-01T10:00:00Z", "Maria Lopez", "Cemento", core.Paid),
	}

	tests := []struct {
		name        string
		filter      core.SaleFilter
		wantClients []string
	}{
		{"zero filter passes all", core.SaleFilter{}, []string{"Juan Perez", "Ana Gomez", "Maria Lopez"}},
		{"client substring", core.SaleFilter{Term: "juan"}, []string{"Juan Perez"}},
		{"product substring", core.SaleFilter{Term: "cemen"}, []string{"Juan Perez", "Maria Lopez"}},
		{"debt only", core.SaleFilter{DebtOnly: true}, []string{"Juan Perez"}},
		{"term and debt combined", core.SaleFilter{Term: "cemento", DebtOnly: true}, []string{"Juan Perez"}},
		{"no match", core.SaleFilter{Term: "ladrillo"}, []string{}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := agg.Filter(sales, tc.filter)
			clients := make([]string, 0, len(got))
			for _, s := range got {
				clients = append(clients, s.ClientName)
			}
			assert.Equal(t, tc.wantClients, clients)
		})
	}
}

func TestTotals_SplitsByPaymentStatus(t *testing.T) {
	agg := core.NewHistoryAggregator(time.UTC)
	paid, debt := agg.Totals([]core.Sale{
		{Total: decimal.NewFromInt(30), PaymentStatus: core.Paid},
		{Total: decimal.NewFromInt(20), PaymentStatus: core.Debt},
		{Total: decimal.NewFromInt(5), PaymentStatus: core.Paid},
	})
	assert.True(t, paid.Equal(decimal.NewFromInt(35)), "paid = %s", paid)
	assert.True(t, debt.Equal(decimal.NewFromInt(20)), "debt = %s", debt)
}
