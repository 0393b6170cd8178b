package domain

import (
	"github.com/shopspring/decimal"
)

// Impact ranks a savings opportunity.
type Impact string

const (
	ImpactHigh   Impact = "HIGH"
	ImpactMedium Impact = "MEDIUM"
	ImpactLow    Impact = "LOW"
)

// ParseImpact maps free text to an Impact, defaulting to LOW.
func ParseImpact(s string) Impact {
	switch Impact(normalizeToken(s)) {
	case ImpactHigh:
		return ImpactHigh
	case ImpactMedium:
		return ImpactMedium
	default:
		return ImpactLow
	}
}

// SavingsOpportunity is model-generated advice. It is advisory only.
type SavingsOpportunity struct {
	Title                   string          `json:"title"`
	Description             string          `json:"description"`
	EstimatedMonthlySavings decimal.Decimal `json:"estimatedMonthlySavings"`
	Impact                  Impact          `json:"impact"`
}

// Summary holds totals derived from a transaction set.
// NetSavings is always TotalIncome - TotalExpense.
type Summary struct {
	TotalIncome        decimal.Decimal `json:"totalIncome"`
	TotalExpense       decimal.Decimal `json:"totalExpense"`
	NetSavings         decimal.Decimal `json:"netSavings"`
	TopExpenseCategory string          `json:"topExpenseCategory"`
}

// FinancialAnalysis is the structured result of analysing one statement,
// or of aggregating several.
type FinancialAnalysis struct {
	StatementPeriod      string               `json:"statementPeriod,omitempty"`
	Transactions         []Transaction        `json:"transactions"`
	Summary              Summary              `json:"summary"`
	SavingsOpportunities []SavingsOpportunity `json:"savingsOpportunities"`
	SpendingHabits       []string             `json:"spendingHabits"`
}

// UnmarshalJSON decodes leniently: missing arrays become empty, malformed
// entries are defaulted or dropped.
func (a *FinancialAnalysis) UnmarshalJSON(data []byte) error {
	raw, err := decodeObject(data)
	if err != nil {
		return err
	}
	*a = DecodeAnalysis(raw)
	return nil
}

// SavedReport is one analysed statement attached to an account.
type SavedReport struct {
	ID           string            `json:"id"`
	AccountID    string            `json:"accountId"`
	FileName     string            `json:"fileName"`
	AnalysisDate string            `json:"analysisDate"`
	Data         FinancialAnalysis `json:"data"`
}
