// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package config handles application-wide settings and environment parsing.

It leverages 'caarlos0/env' to map OS environment variables into a strongly-typed
Go struct, providing early validation and default values.

Usage:

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal(err)
	}

Architecture:

  - Immutability: Once loaded, configuration is read-only and passed by pointer.
  - Integrations: Provider toggles and credentials live here instead of a mutable
    settings map, so adapters can be built and tested without a running server.
*/
package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/samber/lo"
	"golang.org/x/text/language"
)

// DefaultTitleLanguage is always part of the accepted title languages.
const DefaultTitleLanguage = "en"

// # Configuration Schema

// Config holds all runtime configuration for the shelfsync binaries.
type Config struct {

	// Server settings
	ServerPort  string `env:"SERVER_PORT"  envDefault:"8080"`
	Environment string `env:"ENVIRONMENT"  envDefault:"development"`
	Debug       bool   `env:"DEBUG"        envDefault:"false"`

	// Relational Database (PostgreSQL)
	DatabaseURL   string `env:"DATABASE_URL,required"`
	MigrationPath string `env:"MIGRATION_PATH" envDefault:"./data/migrations"`

	// Key-Value Cache (Redis)
	RedisURL string `env:"REDIS_URL,required"`

	// JWTPubKeyPath verifies admin tokens issued by the account service.
	// Admin endpoints stay closed when it is empty.
	JWTPubKeyPath string `env:"JWT_PUBLIC_KEY_PATH"`
	JWTIssuer     string `env:"JWT_ISSUER" envDefault:"yomira.app"`

	// Cross-Origin Resource Sharing
	ExtraOrigins string `env:"EXTRA_ORIGINS"`

	// Alternate titles in these languages are kept on top of the series' native language.
	TitleLanguages []string `env:"TITLE_LANGUAGES" envSeparator:"," envDefault:"en"`

	// Language detection
	LanguageCache        string `env:"LANGUAGE_CACHE"          envDefault:"redis"`
	LanguageDetectURL    string `env:"LANGUAGE_DETECT_URL"     envDefault:"http://localhost:5000"`
	LanguageDetectAPIKey string `env:"LANGUAGE_DETECT_API_KEY"`

	// Outbound provider calls
	ProviderTimeout time.Duration `env:"PROVIDER_TIMEOUT" envDefault:"10s"`
	ProviderRetries int           `env:"PROVIDER_RETRIES" envDefault:"3"`
	ProviderBackoff time.Duration `env:"PROVIDER_BACKOFF" envDefault:"2s"`

	Providers Providers

	// MangaDex account used by the list synchronisation job
	MangaDexUsername     string `env:"MANGADEX_USERNAME"`
	MangaDexPassword     string `env:"MANGADEX_PASSWORD"`
	MangaDexClientID     string `env:"MANGADEX_CLIENT_ID"`
	MangaDexClientSecret string `env:"MANGADEX_CLIENT_SECRET"`
	MangaDexAuthURL      string `env:"MANGADEX_AUTH_URL" envDefault:"https://auth.mangadex.org/realms/mangadex/protocol/openid-connect/token"`

	// MangaUpdates account used by the two-way list synchronisation
	MangaUpdatesUsername string `env:"MANGAUPDATES_USERNAME"`
	MangaUpdatesPassword string `env:"MANGAUPDATES_PASSWORD"`
	MangaUpdatesLists    MangaUpdatesLists
}

// MangaUpdatesLists holds the list id of each reading status. The defaults are
// the lists every MangaUpdates account starts with.
type MangaUpdatesLists struct {
	Reading    int `env:"MANGAUPDATES_LIST_READING"      envDefault:"0"`
	PlanToRead int `env:"MANGAUPDATES_LIST_PLAN_TO_READ" envDefault:"1"`
	Completed  int `env:"MANGAUPDATES_LIST_COMPLETED"    envDefault:"2"`
	Dropped    int `env:"MANGAUPDATES_LIST_DROPPED"      envDefault:"3"`
	OnHold     int `env:"MANGAUPDATES_LIST_ON_HOLD"      envDefault:"4"`
}

// Providers toggles each provider integration and allows overriding base URLs.
type Providers struct {
	MangaUpdatesEnabled bool   `env:"MANGAUPDATES_ENABLED" envDefault:"true"`
	MangaUpdatesAPIURL  string `env:"MANGAUPDATES_API_URL" envDefault:"https://api.mangaupdates.com/v1"`
	MangaUpdatesWebURL  string `env:"MANGAUPDATES_WEB_URL" envDefault:"https://www.mangaupdates.com"`

	MangaDexEnabled  bool   `env:"MANGADEX_ENABLED"   envDefault:"true"`
	MangaDexAPIURL   string `env:"MANGADEX_API_URL"   envDefault:"https://api.mangadex.org"`
	MangaDexCoverURL string `env:"MANGADEX_COVER_URL" envDefault:"https://uploads.mangadex.org/covers"`

	MyAnimeListEnabled  bool   `env:"MYANIMELIST_ENABLED"   envDefault:"false"`
	MyAnimeListAPIURL   string `env:"MYANIMELIST_API_URL"   envDefault:"https://api.myanimelist.net/v2"`
	MyAnimeListClientID string `env:"MAL_CLIENT_ID"`

	BatoEnabled bool `env:"BATO_ENABLED" envDefault:"true"`
	// BatoScheme lets tests point the mirror rotation at plain-HTTP servers.
	BatoScheme string `env:"BATO_SCHEME" envDefault:"https"`

	WebtoonEnabled bool   `env:"WEBTOON_ENABLED" envDefault:"true"`
	WebtoonAPIURL  string `env:"WEBTOON_API_URL" envDefault:"https://global.apis.naver.com/lineWebtoon/webtoon"`
}

// # Configuration Loading

// Load parses environment variables into a [Config] struct and validates it.
func Load() (*Config, error) {
	cfg := &Config{}

	// This will fail if any field marked with 'required' is missing.
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate enforces the rules that span several fields and canonicalises
// TitleLanguages in place.
func (c *Config) Validate() error {
	languages, err := NormalizeLanguages(c.TitleLanguages)
	if err != nil {
		return err
	}
	c.TitleLanguages = languages

	if c.Providers.MyAnimeListEnabled && c.Providers.MyAnimeListClientID == "" {
		return errors.New("config: MAL_CLIENT_ID is required when MYANIMELIST_ENABLED is true")
	}

	switch c.LanguageCache {
	case "redis", "postgres":
	default:
		return fmt.Errorf("config: LANGUAGE_CACHE must be redis or postgres, got %q", c.LanguageCache)
	}

	lists := c.MangaUpdatesLists
	ids := []int{lists.Reading, lists.PlanToRead, lists.Completed, lists.Dropped, lists.OnHold}
	if len(lo.Uniq(ids)) != len(ids) {
		return errors.New("config: MANGAUPDATES_LIST_* must name five different lists")
	}

	if c.ProviderRetries < 1 {
		return errors.New("config: PROVIDER_RETRIES must be at least 1")
	}

	return nil
}

// HasMangaDexAccount reports whether every credential of the sync job is set.
func (c *Config) HasMangaDexAccount() bool {
	return c.MangaDexUsername != "" && c.MangaDexPassword != "" &&
		c.MangaDexClientID != "" && c.MangaDexClientSecret != ""
}

// HasMangaUpdatesAccount reports whether the list synchronisation can log in.
func (c *Config) HasMangaUpdatesAccount() bool {
	return c.Providers.MangaUpdatesEnabled && c.MangaUpdatesUsername != "" && c.MangaUpdatesPassword != ""
}

// IsDevelopment reports whether the server is running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction reports whether the server is running in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// NormalizeLanguages validates each code as a BCP 47 tag, drops duplicates and
// makes sure [DefaultTitleLanguage] is present.
func NormalizeLanguages(codes []string) ([]string, error) {
	result := []string{DefaultTitleLanguage}

	for _, raw := range codes {
		code := strings.TrimSpace(raw)
		if code == "" {
			continue
		}

		tag, err := language.Parse(code)
		if err != nil {
			return nil, fmt.Errorf("config: invalid title language %q: %w", code, err)
		}

		canonical := tag.String()
		if !slices.Contains(result, canonical) {
			result = append(result, canonical)
		}
	}

	return result, nil
}
