package analytics

import (
	"slices"
	"strings"
	"time"

	"github.com/dvloznov/finsight/internal/domain"
	"github.com/shopspring/decimal"
)

const (
	// OthersCategory collects the tail of the category chart.
	OthersCategory = "Others"

	maxChartCategories = 6
	topChartCategories = 5

	// Expense ranges longer than this many days are charted per month.
	longRangeDays = 60
)

// CategoryAmount is one slice of the spending-by-category chart.
type CategoryAmount struct {
	Name  string          `json:"name"`
	Value decimal.Decimal `json:"value"`
}

// SpendingByCategory sums expenses per category, largest first. With more
// than six categories the tail beyond the top five is folded into "Others".
func SpendingByCategory(txs []domain.Transaction) []CategoryAmount {
	totals := newCategoryTotals()
	for _, tx := range txs {
		if tx.IsExpense() {
			totals.add(tx.CategoryOrDefault(), tx.Amount)
		}
	}

	out := make([]CategoryAmount, 0, len(totals.order))
	for _, c := range totals.order {
		out = append(out, CategoryAmount{Name: c, Value: totals.sums[c]})
	}
	slices.SortStableFunc(out, func(a, b CategoryAmount) int {
		return b.Value.Cmp(a.Value)
	})

	if len(out) <= maxChartCategories {
		return out
	}

	others := decimal.Zero
	for _, c := range out[topChartCategories:] {
		others = others.Add(c.Value)
	}
	return append(out[:topChartCategories:topChartCategories], CategoryAmount{Name: OthersCategory, Value: others})
}

// TrendView is the bucket size of a spending trend.
type TrendView string

const (
	TrendDaily   TrendView = "Daily"
	TrendMonthly TrendView = "Monthly"
)

// TrendPoint is one bucket of the spending trend.
type TrendPoint struct {
	Period string          `json:"period"`
	Amount decimal.Decimal `json:"amount"`
}

// Trend is the spending-over-time series.
type Trend struct {
	View   TrendView    `json:"view"`
	Points []TrendPoint `json:"points"`
}

// SpendingTrend buckets expenses per day (YYYY-MM-DD), or per month
// (YYYY-MM) when the dated expenses span more than 60 days. Buckets are in
// ascending order. Undated expenses are skipped.
func SpendingTrend(txs []domain.Transaction) Trend {
	type dated struct {
		at     time.Time
		amount decimal.Decimal
	}

	var expenses []dated
	var first, last time.Time
	for _, tx := range txs {
		if !tx.IsExpense() {
			continue
		}
		t, ok := ParseDate(tx.Date)
		if !ok {
			continue
		}
		if len(expenses) == 0 || t.Before(first) {
			first = t
		}
		if len(expenses) == 0 || t.After(last) {
			last = t
		}
		expenses = append(expenses, dated{at: t, amount: tx.Amount})
	}

	if len(expenses) == 0 {
		return Trend{View: TrendDaily, Points: []TrendPoint{}}
	}

	view := TrendDaily
	key := dayKey
	if last.Sub(first) > longRangeDays*24*time.Hour {
		view = TrendMonthly
		key = monthKey
	}

	sums := make(map[string]decimal.Decimal)
	for _, e := range expenses {
		k := key(e.at)
		sums[k] = sums[k].Add(e.amount)
	}

	points := make([]TrendPoint, 0, len(sums))
	for k, v := range sums {
		points = append(points, TrendPoint{Period: k, Amount: v})
	}
	slices.SortFunc(points, func(a, b TrendPoint) int {
		return strings.Compare(a.Period, b.Period)
	})

	return Trend{View: view, Points: points}
}
