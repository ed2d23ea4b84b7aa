// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/taibuivan/shelfsync/internal/core/author"
	"github.com/taibuivan/shelfsync/internal/core/library"
	"github.com/taibuivan/shelfsync/internal/core/rating"
	"github.com/taibuivan/shelfsync/internal/core/series"
	"github.com/taibuivan/shelfsync/internal/external"
	dexsync "github.com/taibuivan/shelfsync/internal/integration/mangadex"
	musync "github.com/taibuivan/shelfsync/internal/integration/mangaupdates"
	"github.com/taibuivan/shelfsync/internal/integration/runlock"
	"github.com/taibuivan/shelfsync/internal/platform/config"
	"github.com/taibuivan/shelfsync/internal/platform/constants"
	"github.com/taibuivan/shelfsync/internal/platform/migration"
	pgstore "github.com/taibuivan/shelfsync/internal/platform/postgres"
	redisstore "github.com/taibuivan/shelfsync/internal/platform/redis"
)

// runTimeout stays below the lock TTL so a run never outlives its lock.
const runTimeout = 25 * time.Minute

// # Commands

var mangadexCmd = &cobra.Command{
	Use:   "mangadex",
	Short: "Copy MangaDex reading statuses into the library",
	Long:  `Import the titles the MangaDex account follows and write their reading status.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(cmd.Context(), "mangadex_sync", func(ctx context.Context, env *jobEnv) error {
			if !env.cfg.HasMangaDexAccount() {
				return errMangaDexAccount
			}
			syncer := dexsync.NewSyncer(external.MangaDexAccount(env.cfg, env.log), env.series, env.library, env.locker, env.log)

			report, err := syncer.Run(ctx)
			env.log.Info("mangadex_sync_report",
				slog.Int("followed", report.Followed),
				slog.Int("updated", report.Updated),
				slog.Int("imported", report.Imported),
				slog.Any("skipped", report.Skipped),
			)
			return err
		})
	},
}

var mangadexRatingsCmd = &cobra.Command{
	Use:   "mangadex-ratings",
	Short: "Store the ratings of the followed MangaDex titles",
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(cmd.Context(), "mangadex_ratings", func(ctx context.Context, env *jobEnv) error {
			if !env.cfg.HasMangaDexAccount() {
				return errMangaDexAccount
			}
			syncer := dexsync.NewRatingsSyncer(external.MangaDexAccount(env.cfg, env.log), env.ratings, env.locker, env.log)

			result, err := syncer.Run(ctx)
			if err != nil {
				return err
			}
			env.log.Info("mangadex_ratings_report",
				slog.Int("created", result.Created),
				slog.Int("updated", result.Updated),
				slog.Int("unchanged", result.Unchanged),
				slog.Any("not_exist", result.NotExist),
			)
			return nil
		})
	},
}

var mangaupdatesCmd = &cobra.Command{
	Use:   "mangaupdates",
	Short: "Two-way sync of the MangaUpdates reading lists",
	Long:  `Pull newer list moves into the library, push newer library statuses to the lists and store the list ratings.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(cmd.Context(), "mangaupdates_sync", func(ctx context.Context, env *jobEnv) error {
			if !env.cfg.HasMangaUpdatesAccount() {
				return errors.New("MANGAUPDATES_USERNAME and MANGAUPDATES_PASSWORD are required and MangaUpdates must be enabled")
			}
			account, lists := external.MangaUpdatesAccount(env.cfg, env.log)
			syncer := musync.NewSyncer(account, lists, env.series, env.library, env.ratings, env.locker, env.log)

			report, err := syncer.Run(ctx)
			env.log.Info("mangaupdates_sync_report",
				slog.Int("listed", report.Listed),
				slog.Int("pulled", report.Pulled),
				slog.Int("pushed", report.Pushed),
				slog.Int("imported", report.Imported),
				slog.Any("skipped", report.Skipped),
			)
			return err
		})
	},
}

var errMangaDexAccount = errors.New("MANGADEX_USERNAME, MANGADEX_PASSWORD, MANGADEX_CLIENT_ID and MANGADEX_CLIENT_SECRET are required")

// # Bootstrap

// jobEnv is what every job needs once the stores are connected.
type jobEnv struct {
	cfg     *config.Config
	log     *slog.Logger
	series  *series.Service
	library *library.Service
	ratings *rating.Service
	locker  runlock.Locker
}

// run connects the stores, runs job under [runTimeout] and logs its outcome.
func run(ctx context.Context, job string, body func(ctx context.Context, env *jobEnv) error) error {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil)).
		With(slog.String("app", constants.AppName), slog.String("job", job))
	slog.SetDefault(log)

	ctx, cancel := context.WithTimeout(ctx, runTimeout)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		return startupFailure(log, "load configuration", err)
	}

	pool, err := pgstore.NewPool(ctx, cfg.DatabaseURL, log)
	if err != nil {
		return startupFailure(log, "connect to postgres", err)
	}
	defer pool.Close()

	rdb, err := redisstore.NewClient(ctx, cfg.RedisURL, log)
	if err != nil {
		return startupFailure(log, "connect to redis", err)
	}
	defer rdb.Close()

	if err := migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, log); err != nil {
		return startupFailure(log, "run migrations", err)
	}

	started := time.Now()
	err = body(ctx, newRuntime(cfg, pool, rdb, log))
	if err != nil {
		log.Error(job+"_failed", slog.Any("error", err), slog.Duration("took", time.Since(started)))
		return err
	}
	log.Info(job+"_done", slog.Duration("took", time.Since(started)))
	return nil
}

func newRuntime(cfg *config.Config, pool *pgxpool.Pool, rdb goredis.UniversalClient, log *slog.Logger) *jobEnv {
	authorService := author.NewService(author.NewPostgresRepository(pool), log)

	return &jobEnv{
		cfg: cfg,
		log: log,
		series: series.NewService(
			series.NewPostgresRepository(pool),
			authorService,
			log,
			external.Fetchers(cfg, external.TitleFilter(cfg, pool, rdb, log), log)...,
		),
		library: library.NewService(library.NewPostgresRepository(pool), log),
		ratings: rating.NewService(rating.NewPostgresRepository(pool), log),
		locker:  runlock.RedisLocker{Locker: redisstore.NewLocker(rdb)},
	}
}

func startupFailure(log *slog.Logger, step string, err error) error {
	log.Error("startup_failure", slog.String("step", step), slog.Any("error", err))
	return err
}
