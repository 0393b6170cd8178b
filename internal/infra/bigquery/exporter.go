// Package bigquery exports saved reports to BigQuery for ad-hoc analysis.
package bigquery

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"cloud.google.com/go/bigquery"
	"github.com/dvloznov/finsight/internal/domain"
	"github.com/dvloznov/finsight/internal/fees"
	"github.com/dvloznov/finsight/internal/logger"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

const (
	reportsTable      = "reports"
	transactionsTable = "transactions"
)

// Exporter writes reports and their transactions with one shared client.
type Exporter struct {
	client     *bigquery.Client
	datasetID  string
	classifier *fees.Classifier
	now        func() time.Time

	reportSchema      bigquery.Schema
	transactionSchema bigquery.Schema
}

// NewExporter creates a BigQuery client for projectID.
func NewExporter(ctx context.Context, projectID, datasetID string, opts ...option.ClientOption) (*Exporter, error) {
	client, err := bigquery.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("NewExporter: creating client: %w", err)
	}

	e, err := NewExporterWithClient(client, datasetID)
	if err != nil {
		client.Close()
		return nil, err
	}
	return e, nil
}

// NewExporterWithClient uses an existing client. Close will close it.
func NewExporterWithClient(client *bigquery.Client, datasetID string) (*Exporter, error) {
	reportSchema, err := bigquery.InferSchema(ReportRow{})
	if err != nil {
		return nil, fmt.Errorf("NewExporter: infer reports schema: %w", err)
	}
	transactionSchema, err := bigquery.InferSchema(TransactionRow{})
	if err != nil {
		return nil, fmt.Errorf("NewExporter: infer transactions schema: %w", err)
	}

	return &Exporter{
		client:            client,
		datasetID:         datasetID,
		classifier:        fees.NewClassifier(),
		now:               time.Now,
		reportSchema:      reportSchema,
		transactionSchema: transactionSchema,
	}, nil
}

// Name identifies the sink in logs.
func (e *Exporter) Name() string {
	return "bigquery"
}

// Close closes the BigQuery client connection.
func (e *Exporter) Close() error {
	if e.client != nil {
		return e.client.Close()
	}
	return nil
}

// EnsureTables creates the dataset and both tables when they do not exist.
func (e *Exporter) EnsureTables(ctx context.Context) error {
	ds := e.client.Dataset(e.datasetID)
	if err := ds.Create(ctx, &bigquery.DatasetMetadata{}); err != nil && !isAlreadyExists(err) {
		return fmt.Errorf("EnsureTables: create dataset %s: %w", e.datasetID, err)
	}

	tables := []struct {
		name   string
		schema bigquery.Schema
		field  string
	}{
		{reportsTable, e.reportSchema, "exported_ts"},
		{transactionsTable, e.transactionSchema, "created_ts"},
	}
	for _, t := range tables {
		md := &bigquery.TableMetadata{
			Schema: t.schema,
			TimePartitioning: &bigquery.TimePartitioning{
				Type:  bigquery.MonthPartitioningType,
				Field: t.field,
			},
		}
		if err := ds.Table(t.name).Create(ctx, md); err != nil && !isAlreadyExists(err) {
			return fmt.Errorf("EnsureTables: create table %s: %w", t.name, err)
		}
	}
	return nil
}

// ExportReport inserts the report's transactions and then its summary row.
// A report that is already in the reports table is skipped.
func (e *Exporter) ExportReport(ctx context.Context, account domain.Account, report domain.SavedReport) error {
	log := logger.FromContext(ctx)

	exported, err := e.ReportExported(ctx, report.ID)
	if err != nil {
		return fmt.Errorf("ExportReport: %w", err)
	}
	if exported {
		log.Debug().Str("report_id", report.ID).Msg("Report already in BigQuery, skipping")
		return nil
	}

	now := e.now().UTC()
	txRows := NewTransactionRows(account, report, e.classifier, now)
	if err := e.InsertTransactions(ctx, txRows); err != nil {
		return fmt.Errorf("ExportReport: %w", err)
	}

	// Written last so a partial export is retried as a whole.
	row := NewReportRow(account, report, e.classifier, now)
	saver := &bigquery.StructSaver{Schema: e.reportSchema, InsertID: row.ReportID, Struct: row}
	if err := e.client.Dataset(e.datasetID).Table(reportsTable).Inserter().Put(ctx, saver); err != nil {
		return fmt.Errorf("ExportReport: inserting report row: %w", err)
	}

	log.Info().
		Str("report_id", report.ID).
		Int("transactions", len(txRows)).
		Msg("Exported report to BigQuery")
	return nil
}

// InsertTransactions inserts a batch of TransactionRow. Rows carry their
// transaction id as insert id, so a retried batch is deduplicated.
func (e *Exporter) InsertTransactions(ctx context.Context, rows []*TransactionRow) error {
	if len(rows) == 0 {
		return nil
	}

	savers := make([]*bigquery.StructSaver, 0, len(rows))
	for _, r := range rows {
		savers = append(savers, &bigquery.StructSaver{Schema: e.transactionSchema, InsertID: r.TransactionID, Struct: r})
	}

	inserter := e.client.Dataset(e.datasetID).Table(transactionsTable).Inserter()
	if err := inserter.Put(ctx, savers); err != nil {
		return fmt.Errorf("InsertTransactions: inserting rows: %w", err)
	}
	return nil
}

// ReportExported reports whether reportID is already in the reports table.
func (e *Exporter) ReportExported(ctx context.Context, reportID string) (bool, error) {
	q := e.client.Query(fmt.Sprintf(
		"SELECT COUNT(1) AS n FROM `%s.%s.%s` WHERE report_id = @report_id",
		e.client.Project(), e.datasetID, reportsTable,
	))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "report_id", Value: reportID},
	}

	it, err := q.Read(ctx)
	if err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("ReportExported: query read: %w", err)
	}

	var row struct {
		N int64 `bigquery:"n"`
	}
	err = it.Next(&row)
	if err == iterator.Done {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("ReportExported: iter next: %w", err)
	}
	return row.N > 0, nil
}

func isAlreadyExists(err error) bool {
	var gerr *googleapi.Error
	return errors.As(err, &gerr) && gerr.Code == http.StatusConflict
}

func isNotFound(err error) bool {
	var gerr *googleapi.Error
	return errors.As(err, &gerr) && gerr.Code == http.StatusNotFound
}
