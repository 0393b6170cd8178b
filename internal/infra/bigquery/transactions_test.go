package bigquery

import (
	"testing"
	"time"

	"github.com/dvloznov/finsight/internal/domain"
	"github.com/dvloznov/finsight/internal/fees"
	"github.com/shopspring/decimal"
)

func testReport() (domain.Account, domain.SavedReport) {
	account := domain.Account{ID: "acc1", Name: "HDFC Regalia", Type: domain.AccountTypeCreditCard}
	report := domain.SavedReport{
		ID:           "rep1",
		AccountID:    "acc1",
		FileName:     "march.pdf",
		AnalysisDate: "2024-04-01T09:30:00Z",
		Data: domain.FinancialAnalysis{
			StatementPeriod: "March 2024",
			Transactions: []domain.Transaction{
				{Date: "2024-03-02", Description: "Grocer", Amount: decimal.RequireFromString("120.50"), Category: "Food", Type: domain.TransactionTypeExpense},
				{Date: "garbage", Description: "Late fee", Amount: decimal.NewFromInt(30), Category: "Late Payment Fee", Type: domain.TransactionTypeExpense},
				{Date: "2024-03-28", Description: "Salary", Amount: decimal.NewFromInt(1000), Category: "", Type: domain.TransactionTypeIncome},
			},
			Summary: domain.Summary{
				TotalIncome:        decimal.NewFromInt(1000),
				TotalExpense:       decimal.RequireFromString("150.50"),
				NetSavings:         decimal.RequireFromString("849.50"),
				TopExpenseCategory: "Food",
			},
		},
	}
	return account, report
}

func TestNewTransactionRows(t *testing.T) {
	account, report := testReport()
	now := time.Date(2024, 4, 2, 0, 0, 0, 0, time.UTC)

	rows := NewTransactionRows(account, report, fees.NewClassifier(), now)
	if len(rows) != 3 {
		t.Fatalf("len(rows) = %d, want 3", len(rows))
	}

	first := rows[0]
	if first.TransactionID != "rep1:1" || first.StatementLineNo != 1 {
		t.Errorf("first id = %q, line = %d", first.TransactionID, first.StatementLineNo)
	}
	if !first.TransactionDate.Valid || first.TransactionDate.Date.String() != "2024-03-02" {
		t.Errorf("first date = %+v", first.TransactionDate)
	}
	if first.Amount.FloatString(2) != "120.50" {
		t.Errorf("first amount = %s", first.Amount.FloatString(2))
	}
	if first.IsFee || first.AccountName.StringVal != "HDFC Regalia" || !first.CreatedTS.Equal(now) {
		t.Errorf("first row = %+v", first)
	}

	fee := rows[1]
	if fee.TransactionDate.Valid || fee.RawDate != "garbage" {
		t.Errorf("unparsable date should stay raw: %+v", fee.TransactionDate)
	}
	if !fee.IsFee || !fee.IsAvoidable {
		t.Errorf("late payment fee: IsFee=%v IsAvoidable=%v", fee.IsFee, fee.IsAvoidable)
	}

	income := rows[2]
	if income.Direction != "INCOME" || income.CategoryName.Valid {
		t.Errorf("income row = %+v", income)
	}
}

func TestNewReportRow(t *testing.T) {
	account, report := testReport()
	now := time.Date(2024, 4, 2, 0, 0, 0, 0, time.UTC)

	row := NewReportRow(account, report, fees.NewClassifier(), now)

	if row.ReportID != "rep1" || row.AccountType != "CREDIT_CARD" || row.TransactionCount != 3 {
		t.Errorf("row = %+v", row)
	}
	if row.TotalFees.FloatString(2) != "30.00" {
		t.Errorf("TotalFees = %s, want 30.00", row.TotalFees.FloatString(2))
	}
	if row.NetSavings.FloatString(2) != "849.50" {
		t.Errorf("NetSavings = %s", row.NetSavings.FloatString(2))
	}
	if !row.AnalysisTS.Valid || row.AnalysisTS.Timestamp.Hour() != 9 {
		t.Errorf("AnalysisTS = %+v", row.AnalysisTS)
	}
	if row.StatementPeriod.StringVal != "March 2024" || row.TopExpenseCategory.StringVal != "Food" {
		t.Errorf("row strings = %+v", row)
	}
}

func TestNewReportRow_BadAnalysisDate(t *testing.T) {
	account, report := testReport()
	report.AnalysisDate = "yesterday"
	row := NewReportRow(account, report, fees.NewClassifier(), time.Now())
	if row.AnalysisTS.Valid {
		t.Errorf("AnalysisTS should be null, got %+v", row.AnalysisTS)
	}
}

func TestSchemasInfer(t *testing.T) {
	e, err := NewExporterWithClient(nil, "finsight")
	if err != nil {
		t.Fatalf("NewExporterWithClient: %v", err)
	}
	if len(e.reportSchema) == 0 || len(e.transactionSchema) == 0 {
		t.Error("schemas should not be empty")
	}
}
