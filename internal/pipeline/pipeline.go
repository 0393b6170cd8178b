// Package pipeline runs an uploaded statement through analysis, storage and
// export.
package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/dvloznov/finsight/internal/domain"
	"github.com/dvloznov/finsight/internal/events"
	"github.com/dvloznov/finsight/internal/logger"
)

// ErrNoAccount is returned for a request without an account id.
var ErrNoAccount = errors.New("account id is required")

// Deps are the collaborators of the statement pipeline. Storage, Sinks and
// Publisher are optional.
type Deps struct {
	Analyzer      StatementAnalyzer
	Store         ReportStore
	Storage       StorageService
	ArchiveBucket string
	Sinks         []ReportSink
	Publisher     events.Publisher
}

// Request describes one statement to analyse. Either PDF or Source must be
// set.
type Request struct {
	AccountID string
	Source    string
	FileName  string
	PDF       []byte
}

// NewStatementPipeline creates the standard 6-step pipeline:
// fetch, archive, analyse, save, export, publish.
func NewStatementPipeline(deps Deps) *Pipeline {
	return NewPipeline(
		&FetchStatementStep{Storage: deps.Storage},
		&ArchiveStatementStep{Storage: deps.Storage, Bucket: deps.ArchiveBucket},
		&AnalyzeStatementStep{Analyzer: deps.Analyzer},
		&SaveReportStep{Store: deps.Store},
		&ExportReportStep{Store: deps.Store, Sinks: deps.Sinks},
		&PublishReportStep{Publisher: deps.Publisher},
	)
}

// AnalyzeStatement processes a single statement and returns the saved
// report. Nothing is saved when analysis fails; the failure is published
// as an analysis.failed event.
func AnalyzeStatement(ctx context.Context, deps Deps, req Request) (domain.SavedReport, error) {
	if req.AccountID == "" {
		return domain.SavedReport{}, fmt.Errorf("AnalyzeStatement: %w", ErrNoAccount)
	}

	log := logger.FromContext(ctx).With().
		Str("account_id", req.AccountID).
		Str("source", req.Source).
		Str("file_name", req.FileName).
		Logger()
	ctx = logger.WithContext(ctx, log)

	state := &PipelineState{
		AccountID: req.AccountID,
		Source:    req.Source,
		FileName:  req.FileName,
		PDFBytes:  req.PDF,
	}

	log.Info().Msg("Starting statement analysis")

	if err := NewStatementPipeline(deps).Execute(ctx, state); err != nil {
		log.Error().Err(err).Msg("Statement analysis failed")
		publishFailure(ctx, deps.Publisher, state, err)
		return domain.SavedReport{}, fmt.Errorf("AnalyzeStatement: %w", err)
	}

	log.Info().
		Str("report_id", state.Report.ID).
		Int("transactions", len(state.Report.Data.Transactions)).
		Str("archive_uri", state.ArchiveURI).
		Msg("Statement analysis completed")

	return state.Report, nil
}

func publishFailure(ctx context.Context, p events.Publisher, state *PipelineState, cause error) {
	if p == nil {
		return
	}
	e := events.New(events.AnalysisFailed)
	e.AccountID = state.AccountID
	e.FileName = state.FileName
	e.Error = cause.Error()
	if err := p.Publish(ctx, e); err != nil {
		log := logger.FromContext(ctx)
		log.Warn().Err(err).Msg("Failed to publish failure event")
	}
}
