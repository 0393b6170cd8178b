package jobs

import (
	"context"
	"fmt"

	"github.com/dvloznov/finsight/internal/logger"
	"github.com/dvloznov/finsight/internal/pipeline"
)

// NewAnalyzeStatementHandler returns the handler workers run for
// statement analysis jobs. On success the job carries the new report id.
func NewAnalyzeStatementHandler(deps pipeline.Deps) JobHandler {
	return func(ctx context.Context, job Job) error {
		j, ok := job.(*AnalyzeStatementJob)
		if !ok {
			return fmt.Errorf("analyze statement handler: unexpected job type %s", job.GetType())
		}

		ctx = logger.WithContext(ctx, logger.FromContext(ctx).With().Str("job_id", j.JobID).Logger())

		report, err := pipeline.AnalyzeStatement(ctx, deps, pipeline.Request{
			AccountID: j.AccountID,
			Source:    j.Source,
			FileName:  j.FileName,
			PDF:       j.PDF,
		})
		if err != nil {
			return err
		}

		j.ReportID = report.ID
		return nil
	}
}
