// Package app wires configuration into the services shared by the API
// server and the CLI.
package app

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/storage"
	"github.com/dvloznov/finsight/internal/ai"
	"github.com/dvloznov/finsight/internal/config"
	"github.com/dvloznov/finsight/internal/events"
	"github.com/dvloznov/finsight/internal/gcsuploader"
	infraBQ "github.com/dvloznov/finsight/internal/infra/bigquery"
	"github.com/dvloznov/finsight/internal/logger"
	"github.com/dvloznov/finsight/internal/notionsync"
	"github.com/dvloznov/finsight/internal/offers"
	"github.com/dvloznov/finsight/internal/pipeline"
	"github.com/dvloznov/finsight/internal/store"
)

// ErrAnalysisDisabled is returned by features that need GEMINI_API_KEY.
var ErrAnalysisDisabled = errors.New("GEMINI_API_KEY is not set")

// App holds the long-lived clients. Optional collaborators are nil when
// their configuration is absent.
type App struct {
	Config    *config.Config
	Repo      *store.Repository
	AI        *ai.Client
	Catalog   *offers.CardCatalog
	Uploader  *gcsuploader.Uploader
	Sinks     []pipeline.ReportSink
	Publisher events.Publisher

	closers []func() error
}

// New builds every configured service. On error, whatever was opened is
// closed again.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	a := &App{Config: cfg, Publisher: events.NopPublisher{}}
	if err := a.init(ctx); err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

func (a *App) init(ctx context.Context) error {
	log := logger.FromContext(ctx)
	cfg := a.Config

	if cfg.StoreBackend == config.BackendGCS || cfg.ArchiveBucket != "" {
		client, err := storage.NewClient(ctx)
		if err != nil {
			return fmt.Errorf("app: storage client: %w", err)
		}
		a.Uploader = gcsuploader.NewUploaderWithClient(client)
		a.closers = append(a.closers, a.Uploader.Close)
	}

	blobs, err := a.openBlobStore(ctx)
	if err != nil {
		return err
	}
	a.Repo = store.NewRepository(blobs, store.WithKey(cfg.StoreKey))
	log.Info().Str("backend", cfg.StoreBackend).Str("key", cfg.StoreKey).Msg("Opened store")

	if cfg.AnalysisEnabled() {
		client, err := ai.NewClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			return fmt.Errorf("app: %w", err)
		}
		a.AI = client

		catalog, err := offers.NewCardCatalog(client, cfg.OfferCacheTTL)
		if err != nil {
			return fmt.Errorf("app: %w", err)
		}
		a.Catalog = catalog
		a.closers = append(a.closers, func() error { catalog.Close(); return nil })
	} else {
		log.Warn().Msg("GEMINI_API_KEY not set; statement analysis and offers are disabled")
	}

	if cfg.BigQueryProject != "" {
		exporter, err := infraBQ.NewExporter(ctx, cfg.BigQueryProject, cfg.BigQueryDataset)
		if err != nil {
			return fmt.Errorf("app: %w", err)
		}
		a.closers = append(a.closers, exporter.Close)
		if err := exporter.EnsureTables(ctx); err != nil {
			log.Warn().Err(err).Msg("Could not ensure BigQuery tables")
		}
		a.Sinks = append(a.Sinks, exporter)
	}

	if cfg.NotionToken != "" && cfg.NotionDatabase != "" {
		a.Sinks = append(a.Sinks, notionsync.NewSyncer(notionsync.NewDatabaseClient(cfg.NotionToken, cfg.NotionDatabase)))
	}

	if cfg.AMQPURL != "" {
		pub, err := events.NewAMQPPublisher(cfg.AMQPURL, cfg.AMQPExchange)
		if err != nil {
			return fmt.Errorf("app: %w", err)
		}
		a.Publisher = pub
		a.closers = append(a.closers, pub.Close)
	}

	return nil
}

func (a *App) openBlobStore(ctx context.Context) (store.BlobStore, error) {
	cfg := a.Config
	switch cfg.StoreBackend {
	case config.BackendMemory:
		return store.NewMemoryBlobStore(), nil
	case config.BackendSQLite:
		s, err := store.NewSQLiteBlobStore(cfg.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("app: %w", err)
		}
		a.closers = append(a.closers, s.Close)
		return s, nil
	case config.BackendPostgres:
		s, err := store.NewPostgresBlobStore(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("app: %w", err)
		}
		a.closers = append(a.closers, s.Close)
		return s, nil
	case config.BackendGCS:
		return store.NewGCSBlobStore(a.Uploader.Client(), cfg.GCSBucket, "finsight"), nil
	default:
		return nil, fmt.Errorf("app: unknown store backend %q", cfg.StoreBackend)
	}
}

// RequireAI returns ErrAnalysisDisabled when no Gemini client is configured.
func (a *App) RequireAI() error {
	if a.AI == nil {
		return ErrAnalysisDisabled
	}
	return nil
}

// PipelineDeps returns the statement pipeline collaborators.
func (a *App) PipelineDeps() pipeline.Deps {
	deps := pipeline.Deps{
		Store:         a.Repo,
		ArchiveBucket: a.Config.ArchiveBucket,
		Sinks:         a.Sinks,
		Publisher:     a.Publisher,
	}
	if a.AI != nil {
		deps.Analyzer = a.AI
	}
	if a.Uploader != nil {
		deps.Storage = gcsuploader.NewGCSStorageService(a.Uploader)
	}
	return deps
}

// Close releases clients in reverse order of creation.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
