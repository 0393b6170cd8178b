// Package notionsync mirrors report transactions into a Notion database.
package notionsync

import (
	"context"
	"fmt"

	"github.com/dvloznov/finsight/internal/domain"
	"github.com/dvloznov/finsight/internal/fees"
	"github.com/dvloznov/finsight/internal/logger"
)

// Syncer writes one Notion page per transaction, keyed by transaction id.
type Syncer struct {
	pages      PageStore
	classifier *fees.Classifier
	dryRun     bool
}

// NewSyncer returns a Syncer writing to the given transactions database.
func NewSyncer(pages PageStore) *Syncer {
	return &Syncer{
		pages:      pages,
		classifier: fees.NewClassifier(),
	}
}

// WithDryRun makes the syncer log what it would do without writing.
func (s *Syncer) WithDryRun(dryRun bool) *Syncer {
	s.dryRun = dryRun
	return s
}

// Name identifies the sink in logs.
func (s *Syncer) Name() string {
	return "notion"
}

// ExportReport creates pages for the report's transactions and updates
// the ones that already exist. Pages whose transaction is no longer in
// the report are archived. Individual page failures are logged and
// skipped; the last one is returned.
func (s *Syncer) ExportReport(ctx context.Context, account domain.Account, report domain.SavedReport) error {
	log := logger.FromContext(ctx).With().Str("report_id", report.ID).Bool("dry_run", s.dryRun).Logger()

	pages, err := s.pages.ReportPages(ctx, report.ID)
	if err != nil {
		return fmt.Errorf("ExportReport: %w", err)
	}

	existing := make(map[string]string, len(pages))
	for _, p := range pages {
		if id := extractTransactionID(p); id != "" {
			existing[id] = string(p.ID)
		}
	}

	var created, updated, archived int
	var lastErr error
	valid := make(map[string]bool, len(report.Data.Transactions))

	for i, tx := range report.Data.Transactions {
		line := i + 1
		txID := TransactionID(report.ID, line)
		valid[txID] = true

		props := TransactionToNotionProperties(account, report, line, tx, s.classifier.IsFee(tx))
		pageID, ok := existing[txID]

		switch {
		case s.dryRun:
			log.Info().Str("transaction_id", txID).Bool("exists", ok).Msg("[DRY RUN] Would write Notion page")
		case ok:
			if err := s.pages.UpdatePage(ctx, pageID, props); err != nil {
				log.Warn().Err(err).Str("transaction_id", txID).Str("page_id", pageID).Msg("Failed to update Notion page")
				lastErr = err
				continue
			}
			updated++
		default:
			if _, err := s.pages.CreatePage(ctx, props); err != nil {
				log.Warn().Err(err).Str("transaction_id", txID).Msg("Failed to create Notion page")
				lastErr = err
				continue
			}
			created++
		}
	}

	for txID, pageID := range existing {
		if valid[txID] || s.dryRun {
			continue
		}
		if err := s.pages.ArchivePage(ctx, pageID); err != nil {
			log.Warn().Err(err).Str("page_id", pageID).Msg("Failed to archive stale Notion page")
			lastErr = err
			continue
		}
		archived++
	}

	log.Info().
		Int("created", created).
		Int("updated", updated).
		Int("archived", archived).
		Int("total", len(report.Data.Transactions)).
		Msg("Notion sync completed")

	if lastErr != nil {
		return fmt.Errorf("ExportReport: some pages failed: %w", lastErr)
	}
	return nil
}

// RemoveReport archives every page that belongs to reportID.
func (s *Syncer) RemoveReport(ctx context.Context, reportID string) error {
	log := logger.FromContext(ctx)

	pages, err := s.pages.ReportPages(ctx, reportID)
	if err != nil {
		return fmt.Errorf("RemoveReport: %w", err)
	}

	for _, p := range pages {
		if s.dryRun {
			log.Info().Str("page_id", string(p.ID)).Msg("[DRY RUN] Would archive Notion page")
			continue
		}
		if err := s.pages.ArchivePage(ctx, string(p.ID)); err != nil {
			return fmt.Errorf("RemoveReport: %w", err)
		}
	}

	log.Info().Str("report_id", reportID).Int("pages", len(pages)).Msg("Archived report pages in Notion")
	return nil
}
