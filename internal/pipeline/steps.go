package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dvloznov/finsight/internal/domain"
	"github.com/dvloznov/finsight/internal/events"
	"github.com/dvloznov/finsight/internal/gcsuploader"
	"github.com/dvloznov/finsight/internal/logger"
)

// ErrNoStatement is returned when a state carries neither bytes nor a source.
var ErrNoStatement = errors.New("no statement to analyze")

// PipelineStep represents a single step in the statement pipeline.
type PipelineStep interface {
	Execute(ctx context.Context, state *PipelineState) error
}

// PipelineState holds the shared state across all pipeline steps.
type PipelineState struct {
	// Inputs. Source is a local path or a gs:// URI; it is ignored when
	// PDFBytes is already set (HTTP uploads).
	AccountID string
	Source    string
	FileName  string
	PDFBytes  []byte

	// Outputs.
	ArchiveURI string
	Analysis   domain.FinancialAnalysis
	Report     domain.SavedReport
	ExportErrs map[string]error
}

// Step 1: FetchStatementStep loads the PDF from disk or GCS.
type FetchStatementStep struct {
	Storage StorageService
}

func (s *FetchStatementStep) Execute(ctx context.Context, state *PipelineState) error {
	if len(state.PDFBytes) > 0 {
		return nil
	}
	if state.Source == "" {
		return ErrNoStatement
	}

	var (
		data []byte
		err  error
	)
	if gcsuploader.IsGCSURI(state.Source) {
		if s.Storage == nil {
			return fmt.Errorf("FetchStatement: %s: no storage configured", state.Source)
		}
		data, err = s.Storage.FetchFromGCS(ctx, state.Source)
		if state.FileName == "" {
			state.FileName = gcsuploader.ExtractFilenameFromGCSURI(state.Source)
		}
	} else {
		data, err = os.ReadFile(state.Source)
		if state.FileName == "" {
			state.FileName = filepath.Base(state.Source)
		}
	}
	if err != nil {
		return fmt.Errorf("FetchStatement: %w", err)
	}
	if len(data) == 0 {
		return fmt.Errorf("FetchStatement: %s: %w", state.Source, ErrNoStatement)
	}

	state.PDFBytes = data
	return nil
}

// Step 2: ArchiveStatementStep copies the PDF to the archive bucket.
// It does nothing without a bucket or when the statement already lives in GCS.
type ArchiveStatementStep struct {
	Storage StorageService
	Bucket  string
	Now     func() time.Time
}

func (s *ArchiveStatementStep) Execute(ctx context.Context, state *PipelineState) error {
	if s.Bucket == "" || s.Storage == nil {
		return nil
	}
	if gcsuploader.IsGCSURI(state.Source) {
		state.ArchiveURI = state.Source
		return nil
	}

	now := time.Now
	if s.Now != nil {
		now = s.Now
	}

	object := gcsuploader.ArchiveObjectName(state.AccountID, state.FileName, now())
	uri, err := s.Storage.UploadBytes(ctx, s.Bucket, object, state.PDFBytes)
	if err != nil {
		return fmt.Errorf("ArchiveStatement: %w", err)
	}
	state.ArchiveURI = uri
	return nil
}

// Step 3: AnalyzeStatementStep sends the PDF to the model.
type AnalyzeStatementStep struct {
	Analyzer StatementAnalyzer
}

func (s *AnalyzeStatementStep) Execute(ctx context.Context, state *PipelineState) error {
	analysis, err := s.Analyzer.AnalyzeStatement(ctx, state.PDFBytes)
	if err != nil {
		return err
	}
	state.Analysis = analysis
	return nil
}

// Step 4: SaveReportStep stores the analysis as a new report.
type SaveReportStep struct {
	Store ReportStore
}

func (s *SaveReportStep) Execute(ctx context.Context, state *PipelineState) error {
	report, err := s.Store.SaveReport(ctx, state.AccountID, state.Analysis, state.FileName)
	if err != nil {
		return fmt.Errorf("SaveReport: %w", err)
	}
	state.Report = report
	return nil
}

// Step 5: ExportReportStep pushes the saved report to every sink. Sink
// failures are recorded on the state and logged; the report stays saved.
type ExportReportStep struct {
	Store ReportStore
	Sinks []ReportSink
}

func (s *ExportReportStep) Execute(ctx context.Context, state *PipelineState) error {
	if len(s.Sinks) == 0 {
		return nil
	}

	account := findAccount(s.Store.Accounts(ctx), state.Report.AccountID)
	state.ExportErrs = ExportReport(ctx, s.Sinks, account, state.Report)

	log := logger.FromContext(ctx)
	for name, err := range state.ExportErrs {
		log.Warn().Err(err).Str("sink", name).Str("report_id", state.Report.ID).Msg("Report export failed")
	}
	return nil
}

// Step 6: PublishReportStep announces the new report.
type PublishReportStep struct {
	Publisher events.Publisher
}

func (s *PublishReportStep) Execute(ctx context.Context, state *PipelineState) error {
	if s.Publisher == nil {
		return nil
	}

	e := events.New(events.ReportSaved)
	e.AccountID = state.Report.AccountID
	e.ReportID = state.Report.ID
	e.FileName = state.Report.FileName

	if err := s.Publisher.Publish(ctx, e); err != nil {
		log := logger.FromContext(ctx)
		log.Warn().Err(err).Str("report_id", state.Report.ID).Msg("Failed to publish report event")
	}
	return nil
}

// Pipeline executes a sequence of steps in order.
type Pipeline struct {
	steps []PipelineStep
}

// NewPipeline creates a new pipeline with the given steps.
func NewPipeline(steps ...PipelineStep) *Pipeline {
	return &Pipeline{steps: steps}
}

// Execute runs all steps in the pipeline sequentially.
func (p *Pipeline) Execute(ctx context.Context, state *PipelineState) error {
	for i, step := range p.steps {
		if err := step.Execute(ctx, state); err != nil {
			return fmt.Errorf("pipeline step %d failed: %w", i+1, err)
		}
	}
	return nil
}

func findAccount(accounts []domain.Account, id string) domain.Account {
	if a, ok := domain.FindAccount(accounts, id); ok {
		return a
	}
	return domain.Account{ID: id, Name: domain.UnknownAccountName}
}
