// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package external_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/shelfsync/internal/core/series"
	"github.com/taibuivan/shelfsync/internal/external"
	musync "github.com/taibuivan/shelfsync/internal/integration/mangaupdates"
	"github.com/taibuivan/shelfsync/internal/platform/config"
)

type acceptAll struct{}

func (acceptAll) AltTitles(_ context.Context, candidates, _ []string) ([]string, error) {
	return candidates, nil
}

/*
TestFetchers builds exactly the enabled adapters.
*/
func TestFetchers(t *testing.T) {
	tests := []struct {
		name      string
		providers config.Providers
		want      []series.Provider
	}{
		{"none", config.Providers{}, nil},
		{
			"defaults",
			config.Providers{MangaUpdatesEnabled: true, MangaDexEnabled: true, BatoEnabled: true, WebtoonEnabled: true},
			[]series.Provider{series.MangaUpdates, series.MangaDex, series.Bato, series.Webtoon},
		},
		{
			"myanimelist_only",
			config.Providers{MyAnimeListEnabled: true, MyAnimeListClientID: "id"},
			[]series.Provider{series.MyAnimeList},
		},
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &config.Config{Providers: tt.providers, TitleLanguages: []string{"en"}, ProviderRetries: 3}

			var got []series.Provider
			for _, fetcher := range external.Fetchers(cfg, acceptAll{}, logger) {
				got = append(got, fetcher.Provider())
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPolicy(t *testing.T) {
	cfg := &config.Config{ProviderTimeout: 5 * time.Second, ProviderRetries: 2, ProviderBackoff: time.Second}

	policy := external.Policy(cfg)

	assert.Equal(t, 5*time.Second, policy.Timeout)
	assert.Equal(t, 2, policy.Retries)
	assert.Equal(t, time.Second, policy.Backoff)
	assert.Positive(t, policy.RPS)
}

func TestMangaUpdatesAccount(t *testing.T) {
	cfg := &config.Config{
		ProviderRetries:      3,
		MangaUpdatesUsername: "reader",
		MangaUpdatesPassword: "secret",
		MangaUpdatesLists:    config.MangaUpdatesLists{Reading: 0, PlanToRead: 1, Completed: 2, Dropped: 3, OnHold: 104},
	}

	client, lists := external.MangaUpdatesAccount(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))

	assert.NotNil(t, client)
	assert.Equal(t, musync.Lists{Reading: 0, PlanToRead: 1, Completed: 2, Dropped: 3, OnHold: 104}, lists)
}
