package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dvloznov/finsight/internal/api"
	"github.com/dvloznov/finsight/internal/api/handlers"
	"github.com/dvloznov/finsight/internal/app"
	"github.com/dvloznov/finsight/internal/auth"
	"github.com/dvloznov/finsight/internal/config"
	"github.com/dvloznov/finsight/internal/jobs"
	"github.com/dvloznov/finsight/internal/jobs/inmemory"
	"github.com/dvloznov/finsight/internal/logger"
	"github.com/dvloznov/finsight/internal/offers"
)

func main() {
	cfg := config.Load()

	port := flag.String("port", cfg.Port, "HTTP server port (or set PORT env)")
	flag.Parse()

	log := logger.NewWithLevel(cfg.LogLevel, cfg.LogJSON)

	if err := cfg.ValidateServer(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	ctx := logger.WithContext(context.Background(), log)

	services, err := app.New(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize services")
	}
	defer services.Close()

	authn := auth.NewAuthenticator(cfg.AuthUsername, cfg.AuthPasswordHash, cfg.JWTSecret, cfg.TokenTTL)

	// Initialize job infrastructure
	jobStore := inmemory.NewStore()
	jobQueue := inmemory.NewQueue(cfg.QueueSize, cfg.WorkerCount, jobStore)

	workerCtx, cancelWorker := context.WithCancel(logger.WithContext(ctx, logger.WithComponent(log, "worker")))
	defer cancelWorker()

	if err := jobQueue.Start(workerCtx, jobs.NewAnalyzeStatementHandler(services.PipelineDeps())); err != nil {
		log.Fatal().Err(err).Msg("Failed to start job workers")
	}

	// nil pointers must not reach the handlers as non-nil interfaces
	var (
		catalog handlers.CardSearcher
		fetcher offers.Fetcher
	)
	if services.Catalog != nil {
		catalog = services.Catalog
	}
	if services.AI != nil {
		fetcher = services.AI
	}

	router := api.NewRouter(api.Handlers{
		Auth:      handlers.NewAuthHandler(authn, log),
		Accounts:  handlers.NewAccountsHandler(services.Repo, services.Sinks, services.Publisher, log),
		Reports:   handlers.NewReportsHandler(services.Repo, jobQueue, services.Sinks, services.Publisher, services.RequireAI() == nil, log),
		Jobs:      handlers.NewJobsHandler(jobStore, log),
		Dashboard: handlers.NewDashboardHandler(services.Repo, log),
		Cards:     handlers.NewCardsHandler(services.Repo, catalog, log),
		Offers:    handlers.NewOffersHandler(services.Repo, fetcher, log),
	}, authn, log)

	server := &http.Server{
		Addr:         ":" + *port,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 90 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("port", *port).Str("store", cfg.StoreBackend).Msg("Starting API server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	// Stop job queue and wait for in-flight analyses
	if err := jobQueue.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error stopping job queue")
	}
	cancelWorker()

	log.Info().Msg("Server exited")
}
