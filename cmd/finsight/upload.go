package main

import (
	"context"
	"flag"
	"fmt"
	"sync"
	"time"

	"github.com/dvloznov/finsight/internal/config"
	"github.com/dvloznov/finsight/internal/domain"
	"github.com/dvloznov/finsight/internal/pipeline"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// analysisTimeout bounds a single statement analysis.
const analysisTimeout = 5 * time.Minute

func runUpload(cfg *config.Config, log zerolog.Logger, args []string) {
	fs := flag.NewFlagSet("upload", flag.ExitOnError)
	accountID := fs.String("account", "", "Account the reports belong to (required)")
	archive := fs.Bool("archive", false, "Copy each PDF to ARCHIVE_BUCKET before analysis")
	parallel := fs.Int("parallel", 2, "Statements analysed at the same time")
	fs.Parse(args)

	files := fs.Args()
	if *accountID == "" || len(files) == 0 {
		log.Fatal().Msg("Usage: finsight upload -account ID [-archive] FILE...")
	}
	if *archive && cfg.ArchiveBucket == "" {
		log.Fatal().Msg("-archive needs ARCHIVE_BUCKET")
	}

	ctx, services := openApp(cfg, log)
	defer services.Close()

	if err := services.RequireAI(); err != nil {
		log.Fatal().Err(err).Msg("Statement analysis is unavailable")
	}
	if _, ok := domain.FindAccount(services.Repo.Accounts(ctx), *accountID); !ok {
		log.Fatal().Str("account_id", *accountID).Msg("Account not found")
	}

	deps := services.PipelineDeps()
	if !*archive {
		deps.ArchiveBucket = ""
	}

	var (
		mu     sync.Mutex
		failed []string
		g      errgroup.Group
	)
	g.SetLimit(max(*parallel, 1))

	for _, file := range files {
		g.Go(func() error {
			fctx, cancel := context.WithTimeout(ctx, analysisTimeout)
			defer cancel()

			report, err := pipeline.AnalyzeStatement(fctx, deps, pipeline.Request{
				AccountID: *accountID,
				Source:    file,
			})
			if err != nil {
				// one bad statement does not stop the others
				mu.Lock()
				failed = append(failed, file)
				mu.Unlock()
				return nil
			}
			fmt.Printf("%s: report %s, %d transactions\n", file, report.ID, len(report.Data.Transactions))
			return nil
		})
	}
	_ = g.Wait()

	if len(failed) > 0 {
		log.Fatal().Strs("files", failed).Msgf("%d of %d statements failed", len(failed), len(files))
	}
	fmt.Printf("Analysed %d statement(s).\n", len(files))
}
