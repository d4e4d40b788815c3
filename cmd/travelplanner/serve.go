package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ahmetcoskunkizilkaya/travel-assistant/internal/config"
	"github.com/ahmetcoskunkizilkaya/travel-assistant/internal/database"
	"github.com/ahmetcoskunkizilkaya/travel-assistant/internal/llm"
	"github.com/ahmetcoskunkizilkaya/travel-assistant/internal/logging"
	"github.com/ahmetcoskunkizilkaya/travel-assistant/internal/places"
	"github.com/ahmetcoskunkizilkaya/travel-assistant/internal/server"
	"github.com/ahmetcoskunkizilkaya/travel-assistant/internal/store"
	"github.com/getsentry/sentry-go"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the API server",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func requireSecrets(cfg *config.Config) error {
	if cfg.JWTSecret == "" {
		return errors.New("JWT_SECRET environment variable is required")
	}
	if cfg.DBPassword == "" {
		return errors.New("DB_PASSWORD environment variable is required")
	}
	return nil
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg := config.Load()
	stdout := logging.Setup(cfg.LogLevel)

	if err := requireSecrets(cfg); err != nil {
		slog.Error("invalid configuration", "error", err)
		return err
	}

	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			EnableTracing:    true,
			TracesSampleRate: 0.2,
			Environment:      cfg.AppEnv,
		}); err != nil {
			slog.Error("sentry init failed", "error", err)
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	db, err := database.Open(cfg)
	if err != nil {
		slog.Error("database connection failed", "error", err)
		return err
	}
	defer func() {
		if err := database.Close(db); err != nil {
			slog.Error("database close error", "error", err)
		}
	}()

	pingCtx, cancel := context.WithTimeout(cmd.Context(), 5*time.Second)
	err = database.Ping(pingCtx, db)
	cancel()
	if err != nil {
		slog.Error("database ping failed", "error", err)
		return err
	}

	if err := database.Migrate(db); err != nil {
		slog.Error("migration failed", "error", err)
		return err
	}

	if cfg.SeedDemoUser {
		if err := database.SeedDemoUser(cmd.Context(), store.NewUsers(db)); err != nil {
			slog.Error("demo user seed failed", "error", err)
			return err
		}
	}

	// ERROR+ records are also batched into system_logs.
	pgLogHandler := logging.NewPGHandler(db)
	logger := slog.New(logging.NewMultiHandler(stdout, pgLogHandler))
	slog.SetDefault(logger)

	cleanupDone := make(chan struct{})
	logging.StartCleanup(db, cfg.LogRetentionDays, cleanupDone)

	finder, closeFinder, err := newFinder(cfg)
	if err != nil {
		slog.Error("places cache init failed", "error", err)
		return err
	}
	defer closeFinder()

	if cfg.DeepSeekAPIKey == "" {
		slog.Warn("DEEPSEEK_API_KEY is not set, plan generation will fail upstream")
	}

	app, err := server.New(server.Deps{
		Config:    cfg,
		DB:        db,
		Generator: llm.NewClient(cfg.DeepSeekAPIURL, cfg.DeepSeekAPIKey, cfg.DeepSeekModel, cfg.AITimeout),
		Places:    finder,
		Logger:    logger,
		AccessLog: true,
	})
	if err != nil {
		return err
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	listenErr := make(chan error, 1)
	go func() {
		slog.Info("server starting", "port", cfg.Port, "env", cfg.AppEnv, "fallback", cfg.GenerationFallback)
		listenErr <- app.Listen(":" + cfg.Port)
	}()

	select {
	case <-quit:
	case err := <-listenErr:
		if err != nil {
			slog.Error("server failed to start", "error", err)
			close(cleanupDone)
			pgLogHandler.Stop()
			return err
		}
	}
	slog.Info("shutting down server...")

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		slog.Error("server shutdown error", "error", err)
	}
	close(cleanupDone)
	pgLogHandler.Stop()

	slog.Info("server stopped")
	return nil
}

// newFinder builds the place finder chain. Without an AMap key enrichment is
// disabled and a nil Finder is returned.
func newFinder(cfg *config.Config) (places.Finder, func(), error) {
	noop := func() {}
	if cfg.AMapAPIKey == "" {
		slog.Warn("AMAP_API_KEY is not set, location enrichment disabled")
		return nil, noop, nil
	}

	amap := places.NewAMapClient(cfg.AMapAPIURL, cfg.AMapAPIKey, cfg.MapsTimeout)

	switch cfg.PlacesCache {
	case config.CacheMemory:
		return places.NewCachedFinder(amap, places.NewMemoryCache(cfg.PlacesCacheTTL)), noop, nil
	case config.CacheRedis:
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := rdb.Ping(ctx).Err(); err != nil {
			_ = rdb.Close()
			return nil, noop, fmt.Errorf("redis ping %s: %w", cfg.RedisAddr, err)
		}
		closeRedis := func() {
			if err := rdb.Close(); err != nil {
				slog.Error("redis close error", "error", err)
			}
		}
		return places.NewCachedFinder(amap, places.NewRedisCache(rdb, cfg.PlacesCacheTTL)), closeRedis, nil
	case config.CacheOff, "":
		return amap, noop, nil
	default:
		return nil, noop, fmt.Errorf("unknown PLACES_CACHE %q", cfg.PlacesCache)
	}
}
