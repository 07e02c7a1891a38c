package main

// novel-sync imports the upstream novel catalog into the local database.
// Run it from cron or by hand after standing up a fresh environment.

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"novelhub/database"
	"novelhub/internal/config"
	"novelhub/internal/ingestion/catalog"
	"novelhub/internal/microservices/http-api/repository"
)

func main() {
	maxPages := flag.Int("pages", 0, "maximum catalog pages to import (0 = all)")
	source := flag.String("source", "catalog", "source tag stored on imported novels")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, "could not load config:", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	db, err := database.ConnectDB(cfg, logger)
	if err != nil {
		logger.Error("database connection failed", "error", err)
		os.Exit(1)
	}

	client := catalog.NewClient(cfg.CatalogAPIURL, cfg.CatalogRPS, cfg.CatalogTimeout)
	novelRepo := repository.NewNovelRepository(db)
	syncService := catalog.NewSyncService(client, novelRepo, cfg.CatalogWorkers, *source, logger)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	start := time.Now()
	stats, err := syncService.Sync(ctx, *maxPages)
	if err != nil {
		logger.Error("catalog sync failed", "error", err, "pages_done", stats.Pages)
		os.Exit(1)
	}

	logger.Info("catalog sync complete",
		"pages", stats.Pages,
		"imported", stats.Imported,
		"failed", stats.Failed,
		"took", time.Since(start).Round(time.Millisecond))
}
