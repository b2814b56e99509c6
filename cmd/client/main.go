package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/mkhalin/family-expenses/internal/adapter"
	"github.com/mkhalin/family-expenses/internal/cache"
	"github.com/mkhalin/family-expenses/internal/config"
	"github.com/mkhalin/family-expenses/internal/httpx"
	"github.com/mkhalin/family-expenses/internal/logger"
	"github.com/mkhalin/family-expenses/internal/service"
	"github.com/mkhalin/family-expenses/internal/store"
	"github.com/mkhalin/family-expenses/internal/workers"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func main() {
	printBuildInfo()

	log := logger.NewLogger("expenses-client")
	cfg, err := config.GetClientConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("error getting configs")
	}

	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGTERM,
		syscall.SIGINT,
		syscall.SIGQUIT,
	)
	defer stop()

	// Outbound stack, innermost first: response cache below the
	// retrying client, so every attempt benefits from cached reads.
	cacheTransport := cache.NewTransport(cfg.Cache, http.DefaultTransport, cache.NewStore(), log)
	restClient := httpx.NewClient(cfg.Adapter, httpx.NewDedupTable(), cacheTransport, log)
	serverAdapter := adapter.NewHTTPServerAdapter(restClient, log)

	db, err := store.NewConnectSQLite(ctx, cfg.Replica, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error opening local replica")
	}

	localStorage := store.NewLocalStorage(db, log)
	services := service.NewClientServices(localStorage, serverAdapter, cfg.Sync, log)

	background := workers.NewWorkers(&syncJobWorker{job: services.SyncJob})
	background.Run(ctx)

	<-ctx.Done()
	background.Stop()
	log.Info().Msg("client shut down gracefully")
}

// syncJobWorker adapts the periodic sync job to the workers contract.
type syncJobWorker struct {
	job service.ClientSyncJob
}

func (w *syncJobWorker) Run(ctx context.Context) { w.job.Start(ctx) }
func (w *syncJobWorker) Stop()                   { w.job.Stop() }

func printBuildInfo() {
	if buildVersion == "" {
		buildVersion = "N/A"
	}

	if buildDate == "" {
		buildDate = "N/A"
	}

	if buildCommit == "" {
		buildCommit = "N/A"
	}

	fmt.Printf("Build version: %s\n", buildVersion)
	fmt.Printf("Build date: %s\n", buildDate)
	fmt.Printf("Build commit: %s\n", buildCommit)
}
