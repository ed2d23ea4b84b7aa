// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package external builds the provider adapters enabled in the configuration.

Each adapter lives in its own sub-package and owns an [upstream.Client] with
the shared timeout and retry policy, so one slow provider never consumes the
rate budget of another.
*/
package external

import (
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/taibuivan/shelfsync/internal/core/langfilter"
	"github.com/taibuivan/shelfsync/internal/core/series"
	"github.com/taibuivan/shelfsync/internal/external/bato"
	"github.com/taibuivan/shelfsync/internal/external/mangadex"
	"github.com/taibuivan/shelfsync/internal/external/mangaupdates"
	"github.com/taibuivan/shelfsync/internal/external/myanimelist"
	"github.com/taibuivan/shelfsync/internal/external/webtoon"
	dexsync "github.com/taibuivan/shelfsync/internal/integration/mangadex"
	musync "github.com/taibuivan/shelfsync/internal/integration/mangaupdates"
	"github.com/taibuivan/shelfsync/internal/platform/config"
	"github.com/taibuivan/shelfsync/internal/platform/upstream"
)

var _ mangadex.LegacyResolver = (*mangaupdates.Client)(nil)

// Policy derives the outbound policy from the configuration.
func Policy(cfg *config.Config) upstream.Policy {
	policy := upstream.DefaultPolicy()
	policy.Timeout = cfg.ProviderTimeout
	policy.Retries = cfg.ProviderRetries
	policy.Backoff = cfg.ProviderBackoff
	return policy
}

// Fetchers returns one adapter per enabled provider. titles filters the
// alternate titles of the adapters that need language detection.
func Fetchers(cfg *config.Config, titles series.TitleFilter, logger *slog.Logger) []series.Fetcher {
	policy := Policy(cfg)
	providers := cfg.Providers
	languages := cfg.TitleLanguages

	client := func(p series.Provider) *upstream.Client {
		return upstream.New(p.Name(), policy)
	}
	scoped := func(p series.Provider) *slog.Logger {
		return logger.With(slog.String("provider", string(p)))
	}

	var fetchers []series.Fetcher
	var dexOptions []mangadex.Option
	if providers.MangaUpdatesEnabled {
		updates := mangaupdates.New(client(series.MangaUpdates),
			providers.MangaUpdatesAPIURL, providers.MangaUpdatesWebURL, titles, languages, scoped(series.MangaUpdates))
		fetchers = append(fetchers, updates)
		dexOptions = append(dexOptions, mangadex.WithLegacyResolver(updates))
	}
	if providers.MangaDexEnabled {
		fetchers = append(fetchers, mangadex.New(client(series.MangaDex),
			providers.MangaDexAPIURL, providers.MangaDexCoverURL, languages, scoped(series.MangaDex), dexOptions...))
	}
	if providers.MyAnimeListEnabled {
		fetchers = append(fetchers, myanimelist.New(client(series.MyAnimeList),
			providers.MyAnimeListAPIURL, providers.MyAnimeListClientID, scoped(series.MyAnimeList)))
	}
	if providers.BatoEnabled {
		fetchers = append(fetchers, bato.New(client(series.Bato),
			providers.BatoScheme, titles, languages, scoped(series.Bato)))
	}
	if providers.WebtoonEnabled {
		fetchers = append(fetchers, webtoon.New(client(series.Webtoon),
			providers.WebtoonAPIURL, scoped(series.Webtoon)))
	}

	for _, fetcher := range fetchers {
		logger.Info("provider_enabled", slog.String("provider", string(fetcher.Provider())))
	}
	return fetchers
}

// TitleFilter builds the language filter with the detection cache named by
// LANGUAGE_CACHE.
func TitleFilter(cfg *config.Config, pool *pgxpool.Pool, rdb redis.UniversalClient, logger *slog.Logger) *langfilter.Filter {
	var cache langfilter.Cache = langfilter.NewRedisCache(rdb)
	if cfg.LanguageCache == "postgres" {
		cache = langfilter.NewPostgresCache(pool)
	}

	detector := langfilter.NewHTTPDetector(
		upstream.New("Language detection", Policy(cfg)),
		cfg.LanguageDetectURL,
		cfg.LanguageDetectAPIKey,
	)

	logger.Info("language_filter_ready", slog.String("cache", cfg.LanguageCache))
	return langfilter.New(cache, detector, logger)
}

// MangaDexAccount returns the client of the configured MangaDex account.
// Callers check [config.Config.HasMangaDexAccount] first.
func MangaDexAccount(cfg *config.Config, logger *slog.Logger) *dexsync.Client {
	return dexsync.New(
		upstream.New("MangaDex", Policy(cfg)),
		cfg.Providers.MangaDexAPIURL,
		cfg.MangaDexAuthURL,
		dexsync.Credentials{
			Username:     cfg.MangaDexUsername,
			Password:     cfg.MangaDexPassword,
			ClientID:     cfg.MangaDexClientID,
			ClientSecret: cfg.MangaDexClientSecret,
		},
		logger,
	)
}

// MangaUpdatesAccount returns the list client of the configured MangaUpdates
// account and its list ids. Callers check [config.Config.HasMangaUpdatesAccount] first.
func MangaUpdatesAccount(cfg *config.Config, logger *slog.Logger) (*musync.Client, musync.Lists) {
	client := musync.New(
		upstream.New("MangaUpdates", Policy(cfg)),
		cfg.Providers.MangaUpdatesAPIURL,
		musync.Credentials{Username: cfg.MangaUpdatesUsername, Password: cfg.MangaUpdatesPassword},
		logger,
	)
	return client, musync.Lists(cfg.MangaUpdatesLists)
}
