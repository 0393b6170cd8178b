package fees

import (
	"github.com/dvloznov/finsight/internal/domain"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// CategoryAmount is one row of the fee breakdown.
type CategoryAmount struct {
	Category string          `json:"category"`
	Amount   decimal.Decimal `json:"amount"`
}

// Report is the fee analysis of a transaction set.
type Report struct {
	TotalFees      decimal.Decimal  `json:"totalFees"`
	AvoidableTotal decimal.Decimal  `json:"avoidableTotal"`
	Breakdown      []CategoryAmount `json:"feeBreakdown"`
	TotalExpense   decimal.Decimal  `json:"totalExpense"`
	FeePercentage  decimal.Decimal  `json:"feePercentage"`
	HasFees        bool             `json:"hasFees"`
}

// Analyze computes the fee report with the standard classifier.
func Analyze(txs []domain.Transaction) Report {
	return NewClassifier().Analyze(txs)
}

// Analyze computes fee totals, the avoidable subtotal, a per-category
// breakdown in first-seen order and the share of all expenses that went to
// fees. Negative amounts are ignored. The result depends only on txs.
func (c *Classifier) Analyze(txs []domain.Transaction) Report {
	r := Report{
		TotalFees:      decimal.Zero,
		AvoidableTotal: decimal.Zero,
		Breakdown:      []CategoryAmount{},
		TotalExpense:   decimal.Zero,
		FeePercentage:  decimal.Zero,
	}

	index := make(map[string]int)
	for _, tx := range txs {
		if tx.Amount.IsNegative() {
			continue
		}
		if tx.IsExpense() {
			r.TotalExpense = r.TotalExpense.Add(tx.Amount)
		}
		if !c.IsFee(tx) {
			continue
		}

		r.HasFees = true
		r.TotalFees = r.TotalFees.Add(tx.Amount)
		if c.IsAvoidableCategory(tx.Category) {
			r.AvoidableTotal = r.AvoidableTotal.Add(tx.Amount)
		}

		i, ok := index[tx.Category]
		if !ok {
			i = len(r.Breakdown)
			index[tx.Category] = i
			r.Breakdown = append(r.Breakdown, CategoryAmount{Category: tx.Category, Amount: decimal.Zero})
		}
		r.Breakdown[i].Amount = r.Breakdown[i].Amount.Add(tx.Amount)
	}

	if r.TotalExpense.IsPositive() {
		r.FeePercentage = r.TotalFees.Div(r.TotalExpense).Mul(hundred)
	}
	return r
}
