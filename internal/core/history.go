package core

import (
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DayBucket groups the sales of one civil day. Key is the civil date in
// the aggregator's location, formatted 2006-01-02. Sales keep the order
// they arrived in.
type DayBucket struct {
	Date  time.Time
	Key   string
	Sales []Sale
}

// SaleFilter narrows the history listing. Term matches the client or
// product name as a case-insensitive substring; DebtOnly keeps unpaid
// sales. Both conditions must hold when both are set.
type SaleFilter struct {
	Term     string
	DebtOnly bool
}

// HistoryAggregator shapes flat sale listings into the per-day view the
// history screen renders. It is a pure read-side component; it never
// writes to the store.
type HistoryAggregator struct {
	loc *time.Location
}

// NewHistoryAggregator builds an aggregator bucketing by civil date in
// loc. A nil loc falls back to time.Local.
func NewHistoryAggregator(loc *time.Location) *HistoryAggregator {
	if loc == nil {
		loc = time.Local
	}
	return &HistoryAggregator{loc: loc}
}

// Filter applies f to sales, preserving order. A zero filter returns the
// input unchanged.
func (h *HistoryAggregator) Filter(sales []Sale, f SaleFilter) []Sale {
	term := strings.ToLower(strings.TrimSpace(f.Term))
	if term == "" && !f.DebtOnly {
		return sales
	}
	out := make([]Sale, 0, len(sales))
	for _, s := range sales {
		if term != "" &&
			!strings.Contains(strings.ToLower(s.ClientName), term) &&
			!strings.Contains(strings.ToLower(s.ProductName), term) {
			continue
		}
		if f.DebtOnly && s.PaymentStatus != Debt {
			continue
		}
		out = append(out, s)
	}
	return out
}

// GroupByDay buckets sales by civil date. Buckets come back ordered by
// their newest sale, most recent first; within a bucket the input order
// is preserved. Two timestamps on the same calendar day land in the same
// bucket regardless of hour.
func (h *HistoryAggregator) GroupByDay(sales []Sale) []DayBucket {
	index := make(map[string]int)
	buckets := make([]DayBucket, 0)
	for _, s := range sales {
		local := s.Date.In(h.loc)
		key := local.Format("2006-01-02")
		i, ok := index[key]
		if !ok {
			day := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, h.loc)
			index[key] = len(buckets)
			buckets = append(buckets, DayBucket{Date: day, Key: key})
			i = len(buckets) - 1
		}
		buckets[i].Sales = append(buckets[i].Sales, s)
	}
	sort.SliceStable(buckets, func(a, b int) bool {
		return newestIn(buckets[a]).After(newestIn(buckets[b]))
	})
	return buckets
}

// Totals sums sale totals per payment status across the given sales.
func (h *HistoryAggregator) Totals(sales []Sale) (paid, debt decimal.Decimal) {
	for _, s := range sales {
		if s.PaymentStatus == Debt {
			debt = debt.Add(s.Total)
		} else {
			paid = paid.Add(s.Total)
		}
	}
	return paid, debt
}

func newestIn(b DayBucket) time.Time {
	var newest time.Time
	for _, s := range b.Sales {
		if s.Date.After(newest) {
			newest = s.Date
		}
	}
	return newest
}
