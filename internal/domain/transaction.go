package domain

import (
	"github.com/shopspring/decimal"
)

func init() {
	// Amounts are plain JSON numbers in the persisted blob and API payloads.
	decimal.MarshalJSONWithoutQuotes = true
}

// TransactionType is the direction of a transaction.
type TransactionType string

const (
	TransactionTypeIncome  TransactionType = "INCOME"
	TransactionTypeExpense TransactionType = "EXPENSE"
)

// ParseTransactionType maps free text to a TransactionType.
// Anything that is not recognisably income is an expense.
func ParseTransactionType(s string) TransactionType {
	switch normalizeToken(s) {
	case "INCOME", "CREDIT":
		return TransactionTypeIncome
	default:
		return TransactionTypeExpense
	}
}

// Transaction represents one transaction extracted from a statement.
// Transactions are never edited in place; they live inside a SavedReport.
// AccountID and AccountName are filled in by aggregation.
type Transaction struct {
	Date        string          `json:"date"` // ISO date as returned by the model, usually YYYY-MM-DD
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"` // non-negative; direction comes from Type
	Category    string          `json:"category"`
	Type        TransactionType `json:"type"`
	AccountID   string          `json:"accountId,omitempty"`
	AccountName string          `json:"accountName,omitempty"`
}

// IsIncome reports whether the transaction is money in.
func (t Transaction) IsIncome() bool {
	return t.Type == TransactionTypeIncome
}

// IsExpense reports whether the transaction counts as spend.
func (t Transaction) IsExpense() bool {
	return !t.IsIncome()
}

// CategoryOrDefault returns the category, or "Uncategorized" when empty.
func (t Transaction) CategoryOrDefault() string {
	if t.Category == "" {
		return UncategorizedCategory
	}
	return t.Category
}

// UncategorizedCategory is the bucket for transactions without a category.
const UncategorizedCategory = "Uncategorized"
