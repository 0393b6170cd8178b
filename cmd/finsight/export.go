package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/dvloznov/finsight/internal/auth"
	"github.com/dvloznov/finsight/internal/config"
	"github.com/dvloznov/finsight/internal/domain"
	infraBQ "github.com/dvloznov/finsight/internal/infra/bigquery"
	"github.com/dvloznov/finsight/internal/logger"
	"github.com/dvloznov/finsight/internal/pipeline"
	"github.com/dvloznov/finsight/internal/store"
	"github.com/rs/zerolog"
)

func runExport(cfg *config.Config, log zerolog.Logger, args []string) {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	accountID := fs.String("account", "", "Only reports of this account")
	fs.Parse(args)

	ctx, services := openApp(cfg, log)
	defer services.Close()

	if len(services.Sinks) == 0 {
		log.Fatal().Msg("No export sinks configured (set BIGQUERY_PROJECT or NOTION_TOKEN and NOTION_DATABASE_ID)")
	}

	data := services.Repo.Load(ctx)
	reports := data.ReportsForAccount(*accountID)

	failed := 0
	for _, r := range reports {
		account, ok := domain.FindAccount(data.Accounts, r.AccountID)
		if !ok {
			account = domain.Account{ID: r.AccountID, Name: domain.UnknownAccountName}
		}

		errs := pipeline.ExportReport(ctx, services.Sinks, account, r)
		for sink, err := range errs {
			log.Error().Err(err).Str("sink", sink).Str("report_id", r.ID).Msg("Export failed")
		}
		if len(errs) > 0 {
			failed++
			continue
		}
		fmt.Printf("Exported %s (%s, %d transactions)\n", r.ID, r.FileName, len(r.Data.Transactions))
	}

	if failed > 0 {
		log.Fatal().Msgf("%d of %d reports failed to export", failed, len(reports))
	}
	fmt.Printf("Exported %d report(s).\n", len(reports))
}

// runMigrate prepares storage without starting anything else: the
// configured SQL store's schema and, when configured, the BigQuery tables.
func runMigrate(cfg *config.Config, log zerolog.Logger, args []string) {
	fs := flag.NewFlagSet("migrate", flag.ExitOnError)
	fs.Parse(args)

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}
	ctx := logger.WithContext(context.Background(), log)

	switch cfg.StoreBackend {
	case config.BackendSQLite:
		s, err := store.NewSQLiteBlobStore(cfg.SQLiteDBPath)
		if err != nil {
			log.Fatal().Err(err).Msg("SQLite migration failed")
		}
		s.Close()
		fmt.Printf("SQLite schema is up to date (%s)\n", cfg.SQLiteDBPath)
	case config.BackendPostgres:
		s, err := store.NewPostgresBlobStore(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatal().Err(err).Msg("Postgres migration failed")
		}
		s.Close()
		fmt.Println("Postgres schema is up to date")
	default:
		fmt.Printf("Store backend %q needs no schema\n", cfg.StoreBackend)
	}

	if cfg.BigQueryProject == "" {
		return
	}
	exporter, err := infraBQ.NewExporter(ctx, cfg.BigQueryProject, cfg.BigQueryDataset)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create BigQuery client")
	}
	defer exporter.Close()

	if err := exporter.EnsureTables(ctx); err != nil {
		log.Fatal().Err(err).Msg("BigQuery migration failed")
	}
	fmt.Printf("BigQuery tables are up to date (%s.%s)\n", cfg.BigQueryProject, cfg.BigQueryDataset)
}

func runHashPassword(log zerolog.Logger, args []string) {
	fs := flag.NewFlagSet("hash-password", flag.ExitOnError)
	password := fs.String("password", "", "Password to hash (read from stdin when empty)")
	fs.Parse(args)

	if *password == "" {
		fmt.Fprint(os.Stderr, "Password: ")
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil && line == "" {
			log.Fatal().Err(err).Msg("Failed to read password")
		}
		*password = strings.TrimRight(line, "\r\n")
	}
	if *password == "" {
		log.Fatal().Msg("Password must not be empty")
	}

	hash, err := auth.HashPassword(*password)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to hash password")
	}
	fmt.Println(hash)
}
