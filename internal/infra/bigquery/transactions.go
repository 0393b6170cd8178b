package bigquery

import (
	"fmt"
	"math/big"
	"time"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/civil"
	"github.com/dvloznov/finsight/internal/analytics"
	"github.com/dvloznov/finsight/internal/domain"
	"github.com/dvloznov/finsight/internal/fees"
	"github.com/shopspring/decimal"
)

// TransactionRow is one row of <dataset>.transactions.
type TransactionRow struct {
	TransactionID string `bigquery:"transaction_id"` // REQUIRED, <report_id>:<line_no>
	ReportID      string `bigquery:"report_id"`      // REQUIRED
	AccountID     string `bigquery:"account_id"`     // REQUIRED

	AccountName bigquery.NullString `bigquery:"account_name"` // NULLABLE

	TransactionDate bigquery.NullDate `bigquery:"transaction_date"` // NULLABLE, unparsable dates stay in raw_date
	RawDate         string            `bigquery:"raw_date"`         // REQUIRED STRING

	Amount    *big.Rat `bigquery:"amount"`    // REQUIRED NUMERIC, always >= 0
	Direction string   `bigquery:"direction"` // REQUIRED, INCOME or EXPENSE

	Description  string              `bigquery:"description"`   // REQUIRED STRING
	CategoryName bigquery.NullString `bigquery:"category_name"` // NULLABLE

	IsFee       bool `bigquery:"is_fee"`
	IsAvoidable bool `bigquery:"is_avoidable"`

	StatementLineNo int64 `bigquery:"statement_line_no"`

	CreatedTS time.Time `bigquery:"created_ts"` // REQUIRED
}

// ReportRow is one row of <dataset>.reports.
type ReportRow struct {
	ReportID    string `bigquery:"report_id"`
	AccountID   string `bigquery:"account_id"`
	AccountName string `bigquery:"account_name"`
	AccountType string `bigquery:"account_type"`
	FileName    string `bigquery:"file_name"`

	StatementPeriod bigquery.NullString    `bigquery:"statement_period"`
	AnalysisTS      bigquery.NullTimestamp `bigquery:"analysis_ts"`

	TotalIncome        *big.Rat            `bigquery:"total_income"`
	TotalExpense       *big.Rat            `bigquery:"total_expense"`
	NetSavings         *big.Rat            `bigquery:"net_savings"`
	TotalFees          *big.Rat            `bigquery:"total_fees"`
	TopExpenseCategory bigquery.NullString `bigquery:"top_expense_category"`
	TransactionCount   int64               `bigquery:"transaction_count"`

	ExportedTS time.Time `bigquery:"exported_ts"`
}

func transactionID(reportID string, lineNo int) string {
	return fmt.Sprintf("%s:%d", reportID, lineNo)
}

// NewTransactionRows maps every transaction of a report to a row. Line
// numbers start at 1 in statement order.
func NewTransactionRows(account domain.Account, report domain.SavedReport, classifier *fees.Classifier, now time.Time) []*TransactionRow {
	rows := make([]*TransactionRow, 0, len(report.Data.Transactions))
	for i, tx := range report.Data.Transactions {
		lineNo := i + 1
		row := &TransactionRow{
			TransactionID:   transactionID(report.ID, lineNo),
			ReportID:        report.ID,
			AccountID:       report.AccountID,
			AccountName:     nullString(account.Name),
			RawDate:         tx.Date,
			Amount:          toRat(tx.Amount),
			Direction:       string(tx.Type),
			Description:     tx.Description,
			CategoryName:    nullString(tx.Category),
			IsFee:           classifier.IsFee(tx),
			IsAvoidable:     classifier.IsAvoidable(tx),
			StatementLineNo: int64(lineNo),
			CreatedTS:       now,
		}
		if t, ok := analytics.ParseDate(tx.Date); ok {
			row.TransactionDate = bigquery.NullDate{Date: civil.DateOf(t), Valid: true}
		}
		rows = append(rows, row)
	}
	return rows
}

// NewReportRow summarises a report for the reports table.
func NewReportRow(account domain.Account, report domain.SavedReport, classifier *fees.Classifier, now time.Time) *ReportRow {
	summary := report.Data.Summary
	feeReport := classifier.Analyze(report.Data.Transactions)

	row := &ReportRow{
		ReportID:           report.ID,
		AccountID:          report.AccountID,
		AccountName:        account.Name,
		AccountType:        string(account.Type),
		FileName:           report.FileName,
		StatementPeriod:    nullString(report.Data.StatementPeriod),
		TotalIncome:        toRat(summary.TotalIncome),
		TotalExpense:       toRat(summary.TotalExpense),
		NetSavings:         toRat(summary.NetSavings),
		TotalFees:          toRat(feeReport.TotalFees),
		TopExpenseCategory: nullString(summary.TopExpenseCategory),
		TransactionCount:   int64(len(report.Data.Transactions)),
		ExportedTS:         now,
	}
	if t, err := time.Parse(time.RFC3339, report.AnalysisDate); err == nil {
		row.AnalysisTS = bigquery.NullTimestamp{Timestamp: t.UTC(), Valid: true}
	}
	return row
}

// toRat converts to the NUMERIC representation. NUMERIC keeps 9 decimal
// places; amounts are rounded to that.
func toRat(d decimal.Decimal) *big.Rat {
	return d.Round(9).Rat()
}

func nullString(s string) bigquery.NullString {
	return bigquery.NullString{StringVal: s, Valid: s != ""}
}
