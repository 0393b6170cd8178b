package pipeline_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/dvloznov/finsight/internal/ai"
	"github.com/dvloznov/finsight/internal/domain"
	"github.com/dvloznov/finsight/internal/events"
	"github.com/dvloznov/finsight/internal/pipeline"
	"github.com/dvloznov/finsight/internal/store"
	"github.com/shopspring/decimal"
)

// MockAnalyzer is a mock implementation of StatementAnalyzer for testing.
type MockAnalyzer struct {
	AnalyzeFunc func(ctx context.Context, pdf []byte) (domain.FinancialAnalysis, error)
	calls       int
}

func (m *MockAnalyzer) AnalyzeStatement(ctx context.Context, pdf []byte) (domain.FinancialAnalysis, error) {
	m.calls++
	if m.AnalyzeFunc != nil {
		return m.AnalyzeFunc(ctx, pdf)
	}
	return testAnalysis(), nil
}

// MockStorageService is a mock implementation of StorageService for testing.
type MockStorageService struct {
	FetchFromGCSFunc func(ctx context.Context, gcsURI string) ([]byte, error)
	uploads          map[string][]byte
}

func (m *MockStorageService) FetchFromGCS(ctx context.Context, gcsURI string) ([]byte, error) {
	if m.FetchFromGCSFunc != nil {
		return m.FetchFromGCSFunc(ctx, gcsURI)
	}
	return []byte("%PDF-mock"), nil
}

func (m *MockStorageService) UploadBytes(_ context.Context, bucket, object string, data []byte) (string, error) {
	if m.uploads == nil {
		m.uploads = map[string][]byte{}
	}
	uri := "gs://" + bucket + "/" + object
	m.uploads[uri] = data
	return uri, nil
}

// MockSink records exported reports.
type MockSink struct {
	name    string
	err     error
	mu      sync.Mutex
	got     []domain.SavedReport
	account []domain.Account
	removed []string
}

func (m *MockSink) Name() string { return m.name }

func (m *MockSink) ExportReport(_ context.Context, account domain.Account, report domain.SavedReport) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.got = append(m.got, report)
	m.account = append(m.account, account)
	return m.err
}

func (m *MockSink) RemoveReport(_ context.Context, reportID string) error {
	m.removed = append(m.removed, reportID)
	return m.err
}

// MockPublisher records events.
type MockPublisher struct {
	events []events.Event
	err    error
}

func (m *MockPublisher) Publish(_ context.Context, e events.Event) error {
	m.events = append(m.events, e)
	return m.err
}

func testAnalysis() domain.FinancialAnalysis {
	txs := []domain.Transaction{
		{Date: "2024-01-05", Description: "Salary", Amount: decimal.NewFromInt(2000), Category: "Salary", Type: domain.TransactionTypeIncome},
		{Date: "2024-01-06", Description: "Rent", Amount: decimal.NewFromInt(900), Category: "Housing", Type: domain.TransactionTypeExpense},
	}
	return domain.FinancialAnalysis{
		StatementPeriod: "January 2024",
		Transactions:    txs,
		Summary: domain.Summary{
			TotalIncome:        decimal.NewFromInt(2000),
			TotalExpense:       decimal.NewFromInt(900),
			NetSavings:         decimal.NewFromInt(1100),
			TopExpenseCategory: "Housing",
		},
	}
}

func newRepo(t *testing.T) (*store.Repository, domain.Account) {
	t.Helper()
	repo := store.NewRepository(store.NewMemoryBlobStore())
	acc, err := repo.CreateAccount(context.Background(), "Main", domain.AccountTypeBank)
	if err != nil {
		t.Fatalf("CreateAccount: %v", err)
	}
	return repo, acc
}

func TestAnalyzeStatement_FullPipeline(t *testing.T) {
	ctx := context.Background()
	repo, acc := newRepo(t)
	storage := &MockStorageService{}
	bq := &MockSink{name: "bigquery"}
	notion := &MockSink{name: "notion"}
	pub := &MockPublisher{}

	deps := pipeline.Deps{
		Analyzer:      &MockAnalyzer{},
		Store:         repo,
		Storage:       storage,
		ArchiveBucket: "archive",
		Sinks:         []pipeline.ReportSink{bq, notion},
		Publisher:     pub,
	}

	report, err := pipeline.AnalyzeStatement(ctx, deps, pipeline.Request{
		AccountID: acc.ID,
		FileName:  "jan.pdf",
		PDF:       []byte("%PDF-1.7"),
	})
	if err != nil {
		t.Fatalf("AnalyzeStatement: %v", err)
	}

	if report.ID == "" || report.AccountID != acc.ID || report.FileName != "jan.pdf" {
		t.Errorf("report = %+v", report)
	}
	if got := repo.Reports(ctx, acc.ID); len(got) != 1 || got[0].ID != report.ID {
		t.Errorf("stored reports = %+v", got)
	}

	if len(storage.uploads) != 1 {
		t.Errorf("uploads = %d, want 1", len(storage.uploads))
	}
	for uri := range storage.uploads {
		if !strings.HasPrefix(uri, "gs://archive/statements/"+acc.ID+"/") || !strings.HasSuffix(uri, "_jan.pdf") {
			t.Errorf("archive uri = %q", uri)
		}
	}

	for _, sink := range []*MockSink{bq, notion} {
		if len(sink.got) != 1 || sink.got[0].ID != report.ID {
			t.Errorf("%s exported %d reports", sink.name, len(sink.got))
		}
		if sink.account[0].Name != "Main" {
			t.Errorf("%s account = %+v", sink.name, sink.account[0])
		}
	}

	if len(pub.events) != 1 || pub.events[0].Type != events.ReportSaved || pub.events[0].ReportID != report.ID {
		t.Errorf("events = %+v", pub.events)
	}
}

func TestAnalyzeStatement_AnalysisFailureSavesNothing(t *testing.T) {
	ctx := context.Background()
	repo, acc := newRepo(t)
	sink := &MockSink{name: "bigquery"}
	pub := &MockPublisher{}
	analyzer := &MockAnalyzer{
		AnalyzeFunc: func(context.Context, []byte) (domain.FinancialAnalysis, error) {
			return domain.FinancialAnalysis{}, ai.ErrAnalysisFailed
		},
	}

	_, err := pipeline.AnalyzeStatement(ctx, pipeline.Deps{
		Analyzer:  analyzer,
		Store:     repo,
		Sinks:     []pipeline.ReportSink{sink},
		Publisher: pub,
	}, pipeline.Request{AccountID: acc.ID, FileName: "bad.pdf", PDF: []byte("x")})

	if !errors.Is(err, ai.ErrAnalysisFailed) {
		t.Fatalf("err = %v, want ErrAnalysisFailed", err)
	}
	if !strings.Contains(err.Error(), "pipeline step 3 failed") {
		t.Errorf("err = %v, want step number", err)
	}
	if analyzer.calls != 1 {
		t.Errorf("analyzer called %d times, want 1", analyzer.calls)
	}
	if got := repo.Reports(ctx, ""); len(got) != 0 {
		t.Errorf("reports saved after failure: %d", len(got))
	}
	if len(sink.got) != 0 {
		t.Error("sink should not see a failed analysis")
	}
	if len(pub.events) != 1 || pub.events[0].Type != events.AnalysisFailed || pub.events[0].FileName != "bad.pdf" {
		t.Errorf("events = %+v", pub.events)
	}
}

func TestAnalyzeStatement_RequiresAccount(t *testing.T) {
	analyzer := &MockAnalyzer{}
	_, err := pipeline.AnalyzeStatement(context.Background(), pipeline.Deps{Analyzer: analyzer}, pipeline.Request{PDF: []byte("x")})
	if !errors.Is(err, pipeline.ErrNoAccount) {
		t.Errorf("err = %v, want ErrNoAccount", err)
	}
	if analyzer.calls != 0 {
		t.Error("analyzer should not run")
	}
}

func TestAnalyzeStatement_SinkFailureKeepsReport(t *testing.T) {
	ctx := context.Background()
	repo, acc := newRepo(t)
	good := &MockSink{name: "notion"}
	bad := &MockSink{name: "bigquery", err: errors.New("quota exceeded")}

	report, err := pipeline.AnalyzeStatement(ctx, pipeline.Deps{
		Analyzer: &MockAnalyzer{},
		Store:    repo,
		Sinks:    []pipeline.ReportSink{good, bad},
	}, pipeline.Request{AccountID: acc.ID, PDF: []byte("x"), FileName: "a.pdf"})
	if err != nil {
		t.Fatalf("AnalyzeStatement: %v", err)
	}
	if len(repo.Reports(ctx, acc.ID)) != 1 || len(good.got) != 1 || report.ID == "" {
		t.Error("report should be saved and exported to the healthy sink")
	}
}

func TestFetchStatementStep(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	local := filepath.Join(dir, "feb.pdf")
	if err := os.WriteFile(local, []byte("%PDF-local"), 0o600); err != nil {
		t.Fatal(err)
	}
	empty := filepath.Join(dir, "empty.pdf")
	if err := os.WriteFile(empty, nil, 0o600); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name         string
		state        pipeline.PipelineState
		storage      pipeline.StorageService
		wantBytes    string
		wantFileName string
		wantErr      bool
	}{
		{
			name:         "local file",
			state:        pipeline.PipelineState{Source: local},
			wantBytes:    "%PDF-local",
			wantFileName: "feb.pdf",
		},
		{
			name:         "gcs uri",
			state:        pipeline.PipelineState{Source: "gs://b/statements/mar.pdf"},
			storage:      &MockStorageService{},
			wantBytes:    "%PDF-mock",
			wantFileName: "mar.pdf",
		},
		{
			name:         "bytes already present",
			state:        pipeline.PipelineState{PDFBytes: []byte("inline"), FileName: "up.pdf"},
			wantBytes:    "inline",
			wantFileName: "up.pdf",
		},
		{
			name:    "gcs without storage",
			state:   pipeline.PipelineState{Source: "gs://b/x.pdf"},
			wantErr: true,
		},
		{
			name:    "missing file",
			state:   pipeline.PipelineState{Source: filepath.Join(dir, "nope.pdf")},
			wantErr: true,
		},
		{
			name:    "empty file",
			state:   pipeline.PipelineState{Source: empty},
			wantErr: true,
		},
		{
			name:    "nothing",
			state:   pipeline.PipelineState{},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state := tt.state
			err := (&pipeline.FetchStatementStep{Storage: tt.storage}).Execute(ctx, &state)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if string(state.PDFBytes) != tt.wantBytes || state.FileName != tt.wantFileName {
				t.Errorf("bytes = %q, file = %q", state.PDFBytes, state.FileName)
			}
		})
	}
}

func TestArchiveStatementStep_SkipsGCSSource(t *testing.T) {
	storage := &MockStorageService{}
	state := &pipeline.PipelineState{Source: "gs://in/a.pdf", PDFBytes: []byte("x")}

	step := &pipeline.ArchiveStatementStep{Storage: storage, Bucket: "archive"}
	if err := step.Execute(context.Background(), state); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if len(storage.uploads) != 0 || state.ArchiveURI != "gs://in/a.pdf" {
		t.Errorf("uploads = %d, ArchiveURI = %q", len(storage.uploads), state.ArchiveURI)
	}
}

func TestExportReport(t *testing.T) {
	a := &MockSink{name: "a"}
	b := &MockSink{name: "b", err: errors.New("down")}

	errs := pipeline.ExportReport(context.Background(), []pipeline.ReportSink{a, b}, domain.Account{ID: "x"}, domain.SavedReport{ID: "r"})
	if len(errs) != 1 || errs["b"] == nil {
		t.Errorf("errs = %v", errs)
	}

	if errs := pipeline.ExportReport(context.Background(), []pipeline.ReportSink{a}, domain.Account{}, domain.SavedReport{}); errs != nil {
		t.Errorf("errs = %v, want nil", errs)
	}
}

func TestRemoveReport(t *testing.T) {
	remover := &MockSink{name: "notion"}
	failing := &MockSink{name: "other", err: errors.New("nope")}

	if err := pipeline.RemoveReport(context.Background(), []pipeline.ReportSink{remover}, "r1"); err != nil {
		t.Fatalf("RemoveReport: %v", err)
	}
	if len(remover.removed) != 1 || remover.removed[0] != "r1" {
		t.Errorf("removed = %v", remover.removed)
	}

	err := pipeline.RemoveReport(context.Background(), []pipeline.ReportSink{failing}, "r1")
	if err == nil || !strings.Contains(err.Error(), "other") {
		t.Errorf("err = %v", err)
	}
}
