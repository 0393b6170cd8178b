package pipeline

import (
	"context"

	"github.com/dvloznov/finsight/internal/domain"
	"github.com/dvloznov/finsight/internal/gcsuploader"
)

// StorageService is an interface for Cloud Storage operations.
type StorageService = gcsuploader.StorageService

// StatementAnalyzer turns a PDF statement into a structured analysis.
// *ai.Client implements it.
type StatementAnalyzer interface {
	AnalyzeStatement(ctx context.Context, pdf []byte) (domain.FinancialAnalysis, error)
}

// ReportStore persists analysed statements. *store.Repository implements it.
type ReportStore interface {
	SaveReport(ctx context.Context, accountID string, analysis domain.FinancialAnalysis, fileName string) (domain.SavedReport, error)
	Accounts(ctx context.Context) []domain.Account
}

// ReportSink receives every saved report, e.g. an analytics warehouse.
type ReportSink interface {
	Name() string
	ExportReport(ctx context.Context, account domain.Account, report domain.SavedReport) error
}

// ReportRemover is implemented by sinks that can forget a deleted report.
type ReportRemover interface {
	RemoveReport(ctx context.Context, reportID string) error
}
