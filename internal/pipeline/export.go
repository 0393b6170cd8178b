package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/dvloznov/finsight/internal/domain"
	"golang.org/x/sync/errgroup"
)

// ExportReport sends report to every sink concurrently. It returns the
// failures keyed by sink name, or nil when every sink succeeded.
func ExportReport(ctx context.Context, sinks []ReportSink, account domain.Account, report domain.SavedReport) map[string]error {
	var (
		mu   sync.Mutex
		errs map[string]error
		g    errgroup.Group
	)

	for _, sink := range sinks {
		g.Go(func() error {
			if err := sink.ExportReport(ctx, account, report); err != nil {
				mu.Lock()
				if errs == nil {
					errs = make(map[string]error)
				}
				errs[sink.Name()] = err
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	return errs
}

// RemoveReport tells every sink that supports it to drop reportID.
func RemoveReport(ctx context.Context, sinks []ReportSink, reportID string) error {
	var errs []error
	for _, sink := range sinks {
		r, ok := sink.(ReportRemover)
		if !ok {
			continue
		}
		if err := r.RemoveReport(ctx, reportID); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", sink.Name(), err))
		}
	}
	return errors.Join(errs...)
}
