package jobs

import (
	"context"
	"errors"
	"testing"

	"github.com/dvloznov/finsight/internal/domain"
	"github.com/dvloznov/finsight/internal/pipeline"
	"github.com/dvloznov/finsight/internal/store"
)

type fakeAnalyzer struct {
	err error
}

func (f fakeAnalyzer) AnalyzeStatement(context.Context, []byte) (domain.FinancialAnalysis, error) {
	return domain.FinancialAnalysis{Transactions: []domain.Transaction{}}, f.err
}

type otherJob struct{}

func (otherJob) GetID() string { return "x" }
func (otherJob) GetType() JobType { return "other" }
func (otherJob) GetStatus() JobStatus { return JobStatusPending }

func TestAnalyzeStatementHandler(t *testing.T) {
	ctx := context.Background()
	repo := store.NewRepository(store.NewMemoryBlobStore())

	handler := NewAnalyzeStatementHandler(pipeline.Deps{Analyzer: fakeAnalyzer{}, Store: repo})
	job := &AnalyzeStatementJob{JobID: "j1", AccountID: "acc", FileName: "a.pdf", PDF: []byte("%PDF")}

	if err := handler(ctx, job); err != nil {
		t.Fatalf("handler: %v", err)
	}
	reports := repo.Reports(ctx, "acc")
	if len(reports) != 1 || job.ReportID != reports[0].ID {
		t.Errorf("ReportID = %q, reports = %+v", job.ReportID, reports)
	}
}

func TestAnalyzeStatementHandler_Errors(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("analysis failed")
	repo := store.NewRepository(store.NewMemoryBlobStore())
	handler := NewAnalyzeStatementHandler(pipeline.Deps{Analyzer: fakeAnalyzer{err: boom}, Store: repo})

	job := &AnalyzeStatementJob{JobID: "j1", AccountID: "acc", PDF: []byte("%PDF")}
	if err := handler(ctx, job); !errors.Is(err, boom) {
		t.Errorf("err = %v, want %v", err, boom)
	}
	if job.ReportID != "" {
		t.Error("failed job should not carry a report id")
	}

	if err := handler(ctx, otherJob{}); err == nil {
		t.Error("unknown job type should fail")
	}
}

func TestParseJobStatus(t *testing.T) {
	if s, ok := ParseJobStatus("failed"); !ok || s != JobStatusFailed {
		t.Errorf("ParseJobStatus(failed) = %q, %v", s, ok)
	}
	for _, s := range []string{"done", "retrying"} {
		if _, ok := ParseJobStatus(s); ok {
			t.Errorf("ParseJobStatus(%q) should not parse", s)
		}
	}
}
