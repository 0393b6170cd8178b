package analytics

import (
	"testing"

	"github.com/dvloznov/finsight/internal/domain"
	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func expense(date, category, amount string) domain.Transaction {
	return domain.Transaction{Date: date, Description: category, Category: category, Amount: dec(amount), Type: domain.TransactionTypeExpense}
}

func income(date, amount string) domain.Transaction {
	return domain.Transaction{Date: date, Description: "Salary", Category: "Salary", Amount: dec(amount), Type: domain.TransactionTypeIncome}
}

func report(id, accountID string, txs ...domain.Transaction) domain.SavedReport {
	return domain.SavedReport{
		ID:        id,
		AccountID: accountID,
		Data:      domain.FinancialAnalysis{Transactions: txs},
	}
}

func TestAggregate_NoReports(t *testing.T) {
	got := Aggregate(nil, nil)

	if got.StatementPeriod != PeriodNoData {
		t.Errorf("StatementPeriod = %q, want %q", got.StatementPeriod, PeriodNoData)
	}
	if !got.Summary.NetSavings.IsZero() || !got.Summary.TotalIncome.IsZero() || !got.Summary.TotalExpense.IsZero() {
		t.Errorf("expected zero sums, got %+v", got.Summary)
	}
	if got.Summary.TopExpenseCategory != NoTopCategory {
		t.Errorf("TopExpenseCategory = %q, want %q", got.Summary.TopExpenseCategory, NoTopCategory)
	}
	if len(got.Transactions) != 0 || len(got.SavingsOpportunities) != 0 || len(got.SpendingHabits) != 0 {
		t.Error("expected empty lists")
	}
}

func TestAggregate_TwoReports(t *testing.T) {
	accounts := []domain.Account{{ID: "a1", Name: "HDFC Card"}, {ID: "a2", Name: "SBI Savings"}}
	reports := []domain.SavedReport{
		report("r1", "a1", expense("2024-01-10", "Late Payment Fee", "100")),
		report("r2", "a2", expense("2024-01-12", "Groceries", "50"), income("2024-01-01", "500")),
	}

	got := Aggregate(reports, accounts)

	if got.StatementPeriod != PeriodUnifiedView {
		t.Errorf("StatementPeriod = %q", got.StatementPeriod)
	}
	if !got.Summary.TotalExpense.Equal(dec("150")) {
		t.Errorf("TotalExpense = %s, want 150", got.Summary.TotalExpense)
	}
	if !got.Summary.NetSavings.Equal(got.Summary.TotalIncome.Sub(got.Summary.TotalExpense)) {
		t.Errorf("NetSavings = %s, want income - expense", got.Summary.NetSavings)
	}
	if got.Summary.TopExpenseCategory != "Late Payment Fee" {
		t.Errorf("TopExpenseCategory = %q", got.Summary.TopExpenseCategory)
	}

	wantDates := []string{"2024-01-12", "2024-01-10", "2024-01-01"}
	for i, d := range wantDates {
		if got.Transactions[i].Date != d {
			t.Errorf("Transactions[%d].Date = %s, want %s", i, got.Transactions[i].Date, d)
		}
	}
	if got.Transactions[0].AccountName != "SBI Savings" || got.Transactions[1].AccountID != "a1" {
		t.Errorf("transactions not annotated: %+v", got.Transactions[:2])
	}
}

func TestAggregate_UnknownAccount(t *testing.T) {
	got := Aggregate([]domain.SavedReport{report("r1", "deleted", expense("2024-02-01", "Dining", "10"))}, nil)
	if got.Transactions[0].AccountName != domain.UnknownAccountName {
		t.Errorf("AccountName = %q, want %q", got.Transactions[0].AccountName, domain.UnknownAccountName)
	}
}

func TestAggregate_SameDayKeepsReportOrder(t *testing.T) {
	reports := []domain.SavedReport{
		report("r1", "a", expense("2024-03-01", "First", "1"), expense("bad-date", "Undated", "1")),
		report("r2", "b", expense("2024-03-01", "Second", "1"), expense("2024-03-02", "Later", "1")),
	}

	got := Aggregate(reports, nil)

	want := []string{"Later", "First", "Second", "Undated"}
	for i, w := range want {
		if got.Transactions[i].Category != w {
			t.Errorf("Transactions[%d] = %q, want %q", i, got.Transactions[i].Category, w)
		}
	}
}

func TestAggregate_OpportunitiesAndHabits(t *testing.T) {
	r1 := report("r1", "a")
	r1.Data.SavingsOpportunities = []domain.SavingsOpportunity{
		{Title: "Cancel gym", EstimatedMonthlySavings: dec("200")},
		{Title: "", EstimatedMonthlySavings: dec("9999")},
	}
	r1.Data.SpendingHabits = []string{"Eats out often", "Weekend spender"}

	r2 := report("r2", "a")
	r2.Data.SavingsOpportunities = []domain.SavingsOpportunity{{Title: "Switch plan", EstimatedMonthlySavings: dec("450")}}
	r2.Data.SpendingHabits = []string{"eats out often", "Eats out often"}

	got := Aggregate([]domain.SavedReport{r1, r2}, nil)

	if len(got.SavingsOpportunities) != 2 {
		t.Fatalf("len(SavingsOpportunities) = %d, want 2", len(got.SavingsOpportunities))
	}
	if got.SavingsOpportunities[0].Title != "Switch plan" {
		t.Errorf("first opportunity = %q, want highest savings first", got.SavingsOpportunities[0].Title)
	}

	wantHabits := []string{"Eats out often", "Weekend spender", "eats out often"}
	if len(got.SpendingHabits) != len(wantHabits) {
		t.Fatalf("SpendingHabits = %v, want %v", got.SpendingHabits, wantHabits)
	}
	for i := range wantHabits {
		if got.SpendingHabits[i] != wantHabits[i] {
			t.Errorf("SpendingHabits[%d] = %q, want %q", i, got.SpendingHabits[i], wantHabits[i])
		}
	}
}

func TestAggregateAccount(t *testing.T) {
	accounts := []domain.Account{{ID: "a1", Name: "HDFC Card"}}
	reports := []domain.SavedReport{
		report("r1", "a1", expense("2024-01-10", "Dining", "10")),
		report("r2", "a2", expense("2024-01-11", "Travel", "20")),
	}

	got := AggregateAccount(reports, accounts, "a1")
	if got.StatementPeriod != "HDFC Card" {
		t.Errorf("StatementPeriod = %q", got.StatementPeriod)
	}
	if len(got.Transactions) != 1 || !got.Summary.TotalExpense.Equal(dec("10")) {
		t.Errorf("unexpected aggregate: %+v", got.Summary)
	}

	gone := AggregateAccount(reports, accounts, "a2")
	if gone.StatementPeriod != PeriodAccountView {
		t.Errorf("StatementPeriod = %q, want %q", gone.StatementPeriod, PeriodAccountView)
	}
}

func TestSummarize(t *testing.T) {
	tests := []struct {
		name    string
		txs     []domain.Transaction
		wantTop string
	}{
		{
			name:    "income only",
			txs:     []domain.Transaction{income("2024-01-01", "100")},
			wantTop: NoTopCategory,
		},
		{
			name:    "tie keeps first seen",
			txs:     []domain.Transaction{expense("2024-01-02", "Rent", "50"), expense("2024-01-01", "Dining", "50")},
			wantTop: "Rent",
		},
		{
			name:    "empty category is uncategorized",
			txs:     []domain.Transaction{expense("2024-01-02", "", "80"), expense("2024-01-01", "Dining", "50")},
			wantTop: domain.UncategorizedCategory,
		},
		{
			name:    "zero expenses have no top",
			txs:     []domain.Transaction{expense("2024-01-02", "Dining", "0")},
			wantTop: NoTopCategory,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Summarize(tt.txs)
			if got.TopExpenseCategory != tt.wantTop {
				t.Errorf("TopExpenseCategory = %q, want %q", got.TopExpenseCategory, tt.wantTop)
			}
			if !got.NetSavings.Equal(got.TotalIncome.Sub(got.TotalExpense)) {
				t.Errorf("NetSavings = %s, want income - expense", got.NetSavings)
			}
		})
	}
}
