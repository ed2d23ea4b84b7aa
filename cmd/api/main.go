// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Command api is the entry point for the shelfsync HTTP API server.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration from environment variables.
//  3. Connect to PostgreSQL (pgxpool).
//  4. Connect to Redis.
//  5. Run database migrations (idempotent).
//  6. Build the language filter and the enabled provider adapters.
//  7. Wire HTTP handlers.
//  8. Start HTTP server with graceful shutdown.
//
// No business logic lives here. All wiring is explicit constructor injection.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/taibuivan/shelfsync/internal/api"
	"github.com/taibuivan/shelfsync/internal/core/author"
	"github.com/taibuivan/shelfsync/internal/core/library"
	"github.com/taibuivan/shelfsync/internal/core/rating"
	"github.com/taibuivan/shelfsync/internal/core/series"
	"github.com/taibuivan/shelfsync/internal/core/taxonomy"
	"github.com/taibuivan/shelfsync/internal/external"
	dexsync "github.com/taibuivan/shelfsync/internal/integration/mangadex"
	musync "github.com/taibuivan/shelfsync/internal/integration/mangaupdates"
	"github.com/taibuivan/shelfsync/internal/integration/runlock"
	"github.com/taibuivan/shelfsync/internal/platform/config"
	"github.com/taibuivan/shelfsync/internal/platform/constants"
	"github.com/taibuivan/shelfsync/internal/platform/middleware"
	"github.com/taibuivan/shelfsync/internal/platform/migration"
	pgstore "github.com/taibuivan/shelfsync/internal/platform/postgres"
	redisstore "github.com/taibuivan/shelfsync/internal/platform/redis"
	"github.com/taibuivan/shelfsync/internal/platform/sec"
)

func main() {
	// ── 1. Logger ──────────────────────────────────────────────────────────
	// Initialize first so that subsequent startup errors are structured JSON.
	log := newLogger(slog.LevelInfo)
	log.Info("[shelfsync] service_initializing")

	// ── 2. Configuration ──────────────────────────────────────────────────
	cfg, err := config.Load()
	must(log, err, "load configuration")

	if cfg.Debug {
		log = newLogger(slog.LevelDebug)
		log.Debug("debug_logging_enabled")
	}

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
		slog.Any("title_languages", cfg.TitleLanguages),
	)

	// Misconfiguration should fail fast rather than hang.
	startupCtx, startupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer startupCancel()

	// ── 3. PostgreSQL ─────────────────────────────────────────────────────
	pool, err := pgstore.NewPool(startupCtx, cfg.DatabaseURL, log)
	must(log, err, "connect to postgres")
	defer func() {
		log.Info("closing_postgres_pool")
		pool.Close()
	}()

	// ── 4. Redis ──────────────────────────────────────────────────────────
	rdb, err := redisstore.NewClient(startupCtx, cfg.RedisURL, log)
	must(log, err, "connect to redis")
	defer func() {
		log.Info("closing_redis_client")
		if cerr := rdb.Close(); cerr != nil {
			log.Error("redis_close_failed", slog.Any("error", cerr))
		}
	}()

	// ── 5. Migrations ─────────────────────────────────────────────────────
	must(log, migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, log), "run migrations")

	// ── 6. Core services ──────────────────────────────────────────────────
	titles := external.TitleFilter(cfg, pool, rdb, log)
	fetchers := external.Fetchers(cfg, titles, log)

	authorService := author.NewService(author.NewPostgresRepository(pool), log)
	seriesService := series.NewService(series.NewPostgresRepository(pool), authorService, log, fetchers...)
	libraryService := library.NewService(library.NewPostgresRepository(pool), log)
	ratingService := rating.NewService(rating.NewPostgresRepository(pool), log)

	// ── 7. Admin token verification ───────────────────────────────────────
	// Admin routes stay closed (401) without a public key.
	var verifier middleware.TokenVerifier
	if cfg.JWTPubKeyPath != "" {
		tokenVerifier, err := sec.NewTokenVerifier(cfg.JWTPubKeyPath, cfg.JWTIssuer)
		must(log, err, "load jwt public key")
		verifier = tokenVerifier
	} else {
		log.Warn("admin_routes_disabled", slog.String("reason", "JWT_PUBLIC_KEY_PATH is empty"))
	}

	// ── 8. Handlers ───────────────────────────────────────────────────────
	enabled := make([]string, 0, len(fetchers))
	for _, p := range seriesService.Providers() {
		enabled = append(enabled, string(p))
	}

	liveness, readiness := api.NewHealthHandlers([]api.Check{
		{Name: "postgres", Ping: func(ctx context.Context) error { return pgstore.Ping(ctx, pool) }},
		{Name: "redis", Ping: func(ctx context.Context) error { return redisstore.Ping(ctx, rdb) }},
	}, enabled, log)

	handlers := api.Handlers{
		Liveness:  liveness,
		Readiness: readiness,
		Series:    series.NewHandler(seriesService),
		Authors:   author.NewHandler(authorService),
		Taxonomy:  taxonomy.NewHandler(),
		Library:   library.NewHandler(libraryService),
		Ratings:   rating.NewHandler(ratingService),
	}

	locker := runlock.RedisLocker{Locker: redisstore.NewLocker(rdb)}
	if cfg.HasMangaDexAccount() {
		account := external.MangaDexAccount(cfg, log)
		syncer := dexsync.NewSyncer(account, seriesService, libraryService, locker,
			log.With(slog.String("job", "mangadex_sync")))
		ratings := dexsync.NewRatingsSyncer(account, ratingService, locker,
			log.With(slog.String("job", "mangadex_ratings")))
		handlers.MangaDexSync = dexsync.NewHandler(syncer, ratings)
	}
	if cfg.HasMangaUpdatesAccount() {
		account, lists := external.MangaUpdatesAccount(cfg, log)
		syncer := musync.NewSyncer(account, lists, seriesService, libraryService, ratingService, locker,
			log.With(slog.String("job", "mangaupdates_sync")))
		handlers.MangaUpdatesSync = musync.NewHandler(syncer)
	}

	// ── 9. HTTP Server ────────────────────────────────────────────────────
	serverCtx, serverCancel := context.WithCancel(context.Background())
	defer serverCancel()

	server := api.NewServer(serverCtx, cfg, log, verifier, handlers)

	// ── 10. Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Block until OS signal or server error.
	select {
	case sig := <-quit:
		log.Info("shutdown_signal_received", slog.String("signal", sig.String()))
	case err := <-serverErr:
		log.Error("server_startup_failed", slog.Any("error", err))
	}

	log.Info("server_shutting_down", slog.Duration("timeout", constants.ShutdownTimeout))

	if err := server.Shutdown(constants.ShutdownTimeout); err != nil {
		log.Error("shutdown_failed", slog.Any("error", err))
		os.Exit(1)
	}

	log.Info("server_stopped_cleanly")
}

func newLogger(level slog.Level) *slog.Logger {
	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})).
		With(slog.String("app", constants.AppName))
	slog.SetDefault(log)
	return log
}

// must logs a structured fatal error and terminates the process if err is non-nil.
// It is limited to startup wiring.
func must(log *slog.Logger, err error, step string) {
	if err != nil {
		log.Error("startup_failure",
			slog.String("step", step),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
}
