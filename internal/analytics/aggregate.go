package analytics

import (
	"slices"
	"time"

	"github.com/dvloznov/finsight/internal/domain"
	"github.com/shopspring/decimal"
)

const (
	// PeriodNoData titles the analysis of zero reports.
	PeriodNoData = "No Data"
	// PeriodUnifiedView titles the analysis of all accounts.
	PeriodUnifiedView = "Unified View"
	// PeriodAccountView titles a per-account analysis whose account is gone.
	PeriodAccountView = "Account View"
)

// EmptyAnalysis is the canonical analysis of zero reports.
func EmptyAnalysis() domain.FinancialAnalysis {
	return domain.FinancialAnalysis{
		StatementPeriod: PeriodNoData,
		Transactions:    []domain.Transaction{},
		Summary: domain.Summary{
			TotalIncome:        decimal.Zero,
			TotalExpense:       decimal.Zero,
			NetSavings:         decimal.Zero,
			TopExpenseCategory: NoTopCategory,
		},
		SavingsOpportunities: []domain.SavingsOpportunity{},
		SpendingHabits:       []string{},
	}
}

// Aggregate merges reports into one unified analysis.
//
// Transactions are annotated with their report's account, then sorted by
// date descending. The sort is stable: same-day transactions keep report
// order, and undated transactions go last. The summary is recomputed from
// the merged transactions. Opportunities are merged and ranked by
// estimated monthly savings; habits are merged with exact de-duplication.
func Aggregate(reports []domain.SavedReport, accounts []domain.Account) domain.FinancialAnalysis {
	if len(reports) == 0 {
		return EmptyAnalysis()
	}

	names := make(map[string]string, len(accounts))
	for _, a := range accounts {
		names[a.ID] = a.Name
	}

	var merged []datedTransaction
	for _, r := range reports {
		name, ok := names[r.AccountID]
		if !ok || name == "" {
			name = domain.UnknownAccountName
		}
		for _, tx := range r.Data.Transactions {
			tx.AccountID = r.AccountID
			tx.AccountName = name
			t, ok := ParseDate(tx.Date)
			merged = append(merged, datedTransaction{tx: tx, at: t, dated: ok})
		}
	}
	slices.SortStableFunc(merged, compareDateDesc)

	txs := make([]domain.Transaction, len(merged))
	for i, m := range merged {
		txs[i] = m.tx
	}

	return domain.FinancialAnalysis{
		StatementPeriod:      PeriodUnifiedView,
		Transactions:         txs,
		Summary:              Summarize(txs),
		SavingsOpportunities: mergeOpportunities(reports),
		SpendingHabits:       mergeHabits(reports),
	}
}

// AggregateAccount aggregates only the reports of one account and titles
// the result with the account's name.
func AggregateAccount(reports []domain.SavedReport, accounts []domain.Account, accountID string) domain.FinancialAnalysis {
	var own []domain.SavedReport
	for _, r := range reports {
		if r.AccountID == accountID {
			own = append(own, r)
		}
	}

	a := Aggregate(own, accounts)
	if acc, ok := domain.FindAccount(accounts, accountID); ok && acc.Name != "" {
		a.StatementPeriod = acc.Name
	} else {
		a.StatementPeriod = PeriodAccountView
	}
	return a
}

type datedTransaction struct {
	tx    domain.Transaction
	at    time.Time
	dated bool
}

func compareDateDesc(a, b datedTransaction) int {
	switch {
	case a.dated && b.dated:
		return b.at.Compare(a.at)
	case a.dated:
		return -1
	case b.dated:
		return 1
	default:
		return 0
	}
}

func mergeOpportunities(reports []domain.SavedReport) []domain.SavingsOpportunity {
	out := []domain.SavingsOpportunity{}
	for _, r := range reports {
		for _, o := range r.Data.SavingsOpportunities {
			if o.Title == "" {
				continue
			}
			out = append(out, o)
		}
	}
	slices.SortStableFunc(out, func(a, b domain.SavingsOpportunity) int {
		return b.EstimatedMonthlySavings.Cmp(a.EstimatedMonthlySavings)
	})
	return out
}

func mergeHabits(reports []domain.SavedReport) []string {
	out := []string{}
	seen := make(map[string]struct{})
	for _, r := range reports {
		for _, h := range r.Data.SpendingHabits {
			if h == "" {
				continue
			}
			if _, ok := seen[h]; ok {
				continue
			}
			seen[h] = struct{}{}
			out = append(out, h)
		}
	}
	return out
}
