package analytics

import (
	"github.com/dvloznov/finsight/internal/domain"
	"github.com/shopspring/decimal"
)

// NoTopCategory is reported when no expense category has a positive total.
const NoTopCategory = "N/A"

// Summarize computes income, expense, net savings and the top expense
// category for a transaction set. Categories are ranked in first-seen
// order, so on a tie the category that reached the maximum first wins.
func Summarize(txs []domain.Transaction) domain.Summary {
	income := decimal.Zero
	expense := decimal.Zero
	totals := newCategoryTotals()

	for _, tx := range txs {
		if tx.IsIncome() {
			income = income.Add(tx.Amount)
			continue
		}
		expense = expense.Add(tx.Amount)
		totals.add(tx.CategoryOrDefault(), tx.Amount)
	}

	top := NoTopCategory
	best := decimal.Zero
	for _, c := range totals.order {
		if v := totals.sums[c]; v.GreaterThan(best) {
			best = v
			top = c
		}
	}

	return domain.Summary{
		TotalIncome:        income,
		TotalExpense:       expense,
		NetSavings:         income.Sub(expense),
		TopExpenseCategory: top,
	}
}

// categoryTotals sums amounts per category and remembers first-seen order.
type categoryTotals struct {
	order []string
	sums  map[string]decimal.Decimal
}

func newCategoryTotals() *categoryTotals {
	return &categoryTotals{sums: make(map[string]decimal.Decimal)}
}

func (c *categoryTotals) add(category string, amount decimal.Decimal) {
	cur, ok := c.sums[category]
	if !ok {
		c.order = append(c.order, category)
	}
	c.sums[category] = cur.Add(amount)
}
