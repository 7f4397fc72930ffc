package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"idanlev/carwatch/config"
	"idanlev/carwatch/internal/monitor"
	"idanlev/carwatch/logger"
	apperrors "idanlev/carwatch/pkg/errors"
	"idanlev/carwatch/services/cache"
	"idanlev/carwatch/services/fetcher"
	"idanlev/carwatch/services/notifier"
	"idanlev/carwatch/services/snapshot"

	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables
	godotenv.Load()

	// Initialize logger first
	logger.Init()
	log := logger.Default

	// Load and validate configuration
	cfg := config.LoadConfig()
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(apperrors.NewConfiguration("invalid configuration", err)).Msg("Startup aborted")
	}

	log.Info().
		Str("environment", cfg.Environment).
		Str("fetcher", cfg.Fetcher).
		Str("snapshot_backend", cfg.SnapshotBackend).
		Msg("Starting carwatch")

	// One check per invocation; the scheduler (cron/CI) owns the cadence.
	// The signal handler lets a stuck fetch be interrupted cleanly.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		log.Warn().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	notify := notifier.NewTelegramNotifier(cfg.TelegramBotToken, cfg.TelegramChatID)

	targets, err := monitor.ParseTargets(cfg.TargetSpec, monitor.Mode(cfg.DefaultMode))
	if err != nil {
		cerr := apperrors.NewConfiguration("failed to parse monitored targets", err)
		log.Error().Err(cerr).Msg("Startup aborted")
		// Best-effort diagnostic so a broken deployment is noticed
		notify.Notify(ctx, monitor.FormatFailureMessage(cerr))
		os.Exit(1)
	}

	store := newSnapshotStore(ctx, cfg)
	defer store.Close()

	fetch := newFetcher(cfg)
	defer fetch.Close()

	log.Info().Int("target_count", len(targets)).Msg("Parsed monitored targets")

	driver := monitor.NewDriver(fetch, store, notify, cfg.TargetDelay)

	start := time.Now()
	summary := driver.Run(ctx, targets)

	log.Info().
		Dur("elapsed", time.Since(start)).
		Int("new", summary.NewCount).
		Int("initialized", summary.InitializedCount).
		Int("errors", summary.ErrorCount).
		Msg("carwatch finished")
}

// newSnapshotStore builds the configured snapshot persistence backend.
func newSnapshotStore(ctx context.Context, cfg *config.Config) snapshot.Store {
	if cfg.SnapshotBackend == "redis" {
		logger.Info("Using Redis snapshot store at %s (DB: %d)", cfg.RedisAddr, cfg.RedisDB)
		return snapshot.NewRedisStore(ctx, cfg.RedisAddr, cfg.RedisDB, cfg.RedisKeyPrefix)
	}

	logger.Info("Using file snapshot store at %s", cfg.StorageFile)
	return snapshot.NewFileStore(cfg.StorageFile)
}

// newFetcher builds the configured page fetcher.
func newFetcher(cfg *config.Config) fetcher.Fetcher {
	if cfg.Fetcher == "browser" {
		logger.Info("Using browser fetcher")
		return fetcher.NewBrowserFetcher(cfg.BrowserURL, cfg.FetchTimeout)
	}

	var cacheSvc cache.CacheService
	if cfg.MemcacheAddr != "" {
		cacheSvc = cache.NewMemcacheService(cfg.MemcacheAddr)
		logger.Info("Rate-limit guard enabled via Memcache at %s", cfg.MemcacheAddr)
	}

	logger.Info("Using HTTP fetcher")
	return fetcher.NewHTTPFetcher(cacheSvc, cfg.FetchBlockTime)
}
