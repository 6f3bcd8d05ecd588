package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"vidfetch-backend/internal/config"
	"vidfetch-backend/internal/database"
	"vidfetch-backend/internal/extractor"
	"vidfetch-backend/internal/handlers"
	xlog "vidfetch-backend/internal/log"
	"vidfetch-backend/internal/middleware"
	"vidfetch-backend/internal/repository"
	"vidfetch-backend/internal/router"
	"vidfetch-backend/internal/services"
	"vidfetch-backend/internal/websocket"
)

const shutdownTimeout = 30 * time.Second

func main() {
	// ──── Step 1: Load Environment Variables ────
	cfg := config.Load()

	xlog.Configure(xlog.Config{
		Level:   cfg.LogLevel,
		Service: "vidfetch",
		Pretty:  cfg.Env == "development",
	})
	logger := xlog.WithComponent("server")

	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid configuration")
	}
	logger.Info().Str("env", cfg.Env).Msg("configuration loaded")

	// ──── Step 2: Open History Store ────
	history, pubsubClient, closeHistory, err := openHistory(cfg)
	if err != nil {
		logger.Fatal().Err(err).Str(xlog.FieldBackend, cfg.HistoryBackend).Msg("history store unavailable")
	}
	defer closeHistory()
	logger.Info().Str(xlog.FieldBackend, cfg.HistoryBackend).Msg("history store ready")

	// ──── Step 3: Load Analytics ────
	analytics, err := services.LoadAnalytics(cfg.StatsFile)
	if err != nil {
		logger.Fatal().Err(err).Str(xlog.FieldPath, cfg.StatsFile).Msg("failed to load stats")
	}

	// ──── Step 4: Initialize Services ────
	ytdlp := extractor.NewYtDlp(extractor.Options{
		Binary:          cfg.YtDlpPath,
		InfoTimeout:     cfg.ExtractorInfoTimeout,
		DownloadTimeout: cfg.ExtractorDownloadTimeout,
		MaxConcurrent:   cfg.ExtractorMaxConcurrent,
	})
	youtubeService := services.NewYouTubeService(ytdlp)
	downloader := services.NewDownloader(ytdlp)

	// The stats gate is only installed when an admin password exists.
	tokenAuth := middleware.NewAdminAuth(cfg.JWTSecret)
	var adminGate *middleware.AdminAuth
	if cfg.AdminEnabled() {
		adminGate = tokenAuth
	} else {
		logger.Warn().Msg("no admin password configured, /api/admin/stats is public")
	}

	// ──── Step 5: Initialize Handlers ────
	wsHub := websocket.NewHub(pubsubClient)
	defer wsHub.Close()

	adminHandler, err := handlers.NewAdminHandler(cfg.AdminPassword, cfg.AdminPasswordHash, tokenAuth, tokenAuth.TTL, analytics)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize admin handler")
	}

	r := router.New(
		router.Config{
			APIRateLimit:       cfg.APIRateLimit,
			APIRateWindow:      cfg.APIRateWindow,
			DownloadRateLimit:  cfg.DownloadRateLimit,
			DownloadRateWindow: cfg.DownloadRateWindow,
			StaticDir:          cfg.StaticDir,
			AllowedOrigins:     cfg.AllowedOrigins(),
			TrustProxy:         cfg.TrustProxy,
		},
		handlers.NewVideoHandler(youtubeService, analytics),
		handlers.NewDownloadHandler(downloader, history, wsHub, analytics, cfg.UploadsDir),
		handlers.NewHistoryHandler(history),
		adminHandler,
		adminGate,
		analytics,
		wsHub,
	)

	// ──── Step 6: Start Retention Sweeper ────
	sweeper := services.NewRetentionSweeper(cfg.UploadsDir, cfg.RetentionTTL, cfg.RetentionInterval)
	sweeper.Start()

	// ──── Step 7: Start HTTP Server ────
	server := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		// Downloads hold the response open while the extractor runs.
		WriteTimeout: cfg.ExtractorDownloadTimeout + time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info().Str("addr", server.Addr).Msg("vidfetch backend ready")
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		return wsHub.Run(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info().Msg("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	err = g.Wait()
	sweeper.Stop()
	if flushErr := analytics.Flush(); flushErr != nil {
		logger.Error().Err(flushErr).Msg("failed to flush stats")
	}
	if err != nil {
		logger.Error().Err(err).Msg("server stopped with error")
		closeHistory()
		os.Exit(1)
	}
	logger.Info().Msg("server stopped")
}

// openHistory builds the configured history store. The returned Redis client
// is non-nil only for the redis backend and relays websocket events.
func openHistory(cfg *config.Config) (repository.HistoryRepository, *redis.Client, func(), error) {
	switch cfg.HistoryBackend {
	case config.HistoryPostgres:
		pool, err := database.NewPostgresPool(cfg.DatabaseURL)
		if err != nil {
			return nil, nil, nil, err
		}
		if err := database.RunMigrations(pool, database.PostgresMigrations()); err != nil {
			pool.Close()
			return nil, nil, nil, err
		}
		return repository.NewPostgresHistoryRepo(pool), nil, pool.Close, nil

	case config.HistoryRedis:
		clients, err := database.NewRedisClients(cfg.RedisURL)
		if err != nil {
			return nil, nil, nil, err
		}
		return repository.NewRedisHistoryRepo(clients.Data), clients.PubSub, clients.Close, nil

	case config.HistorySQLite:
		db, err := database.OpenSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, nil, nil, err
		}
		return repository.NewSQLiteHistoryRepo(db), nil, func() { _ = db.Close() }, nil

	default:
		return repository.NewMemoryHistoryRepo(), nil, func() {}, nil
	}
}
