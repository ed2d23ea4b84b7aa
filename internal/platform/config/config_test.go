// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package config_test

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/shelfsync/internal/platform/config"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("DATABASE_URL", "postgres://shelfsync@localhost/shelfsync")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
}

/*
TestLoad_Defaults checks the values used when only the required variables are set.
*/
func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, []string{"en"}, cfg.TitleLanguages)
	assert.Equal(t, "redis", cfg.LanguageCache)
	assert.Equal(t, 10*time.Second, cfg.ProviderTimeout)
	assert.Equal(t, 3, cfg.ProviderRetries)
	assert.True(t, cfg.Providers.MangaDexEnabled)
	assert.False(t, cfg.Providers.MyAnimeListEnabled)
	assert.False(t, cfg.HasMangaDexAccount())
	assert.False(t, cfg.HasMangaUpdatesAccount())
}

func TestLoad_MissingRequired(t *testing.T) {
	// Setenv first so the variables are restored after the test.
	setRequired(t)
	require.NoError(t, os.Unsetenv("DATABASE_URL"))

	_, err := config.Load()
	assert.Error(t, err)
}

/*
TestLoad_Invalid checks the cross-field rules of Validate.
*/
func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"mal_without_client_id", map[string]string{"MYANIMELIST_ENABLED": "true"}},
		{"unknown_cache", map[string]string{"LANGUAGE_CACHE": "memcached"}},
		{"zero_retries", map[string]string{"PROVIDER_RETRIES": "0"}},
		{"bad_language", map[string]string{"TITLE_LANGUAGES": "en,not a tag"}},
		{"shared_mu_list", map[string]string{"MANGAUPDATES_LIST_DROPPED": "0"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequired(t)
			for key, value := range tt.env {
				t.Setenv(key, value)
			}

			_, err := config.Load()
			assert.Error(t, err)
		})
	}
}

func TestLoad_MangaDexAccount(t *testing.T) {
	setRequired(t)
	t.Setenv("MANGADEX_USERNAME", "reader")
	t.Setenv("MANGADEX_PASSWORD", "secret")
	t.Setenv("MANGADEX_CLIENT_ID", "personal-client")
	t.Setenv("MANGADEX_CLIENT_SECRET", "client-secret")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.True(t, cfg.HasMangaDexAccount())
}

func TestLoad_MangaUpdatesAccount(t *testing.T) {
	setRequired(t)
	t.Setenv("MANGAUPDATES_USERNAME", "reader")
	t.Setenv("MANGAUPDATES_PASSWORD", "secret")
	t.Setenv("MANGAUPDATES_LIST_ON_HOLD", "101")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.True(t, cfg.HasMangaUpdatesAccount())
	assert.Equal(t, config.MangaUpdatesLists{Reading: 0, PlanToRead: 1, Completed: 2, Dropped: 3, OnHold: 101}, cfg.MangaUpdatesLists)

	t.Setenv("MANGAUPDATES_ENABLED", "false")
	cfg, err = config.Load()
	require.NoError(t, err)
	assert.False(t, cfg.HasMangaUpdatesAccount())
}

/*
TestNormalizeLanguages checks canonicalisation of TITLE_LANGUAGES.
*/
func TestNormalizeLanguages(t *testing.T) {
	tests := []struct {
		name  string
		input []string
		want  []string
	}{
		{"empty", nil, []string{"en"}},
		{"adds_default", []string{"ja"}, []string{"en", "ja"}},
		{"dedupes", []string{"en", " ja ", "ja"}, []string{"en", "ja"}},
		{"canonical_case", []string{"PT-br"}, []string{"en", "pt-BR"}},
		{"skips_blank", []string{"", " "}, []string{"en"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := config.NormalizeLanguages(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
