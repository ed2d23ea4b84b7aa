// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package mangadex is the MangaDex provider adapter.

A single request with author, artist and cover_art expansions carries
everything a record needs. MangaDex also links to other providers, which makes
it the main source of discovered identifiers.
*/
package mangadex

import (
	"context"
	"log/slog"
	"maps"
	"net/url"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/taibuivan/shelfsync/internal/core/series"
	"github.com/taibuivan/shelfsync/internal/core/taxonomy"
	"github.com/taibuivan/shelfsync/internal/external/webtoon"
	"github.com/taibuivan/shelfsync/internal/platform/apperr"
	"github.com/taibuivan/shelfsync/internal/platform/upstream"
)

var (
	muLinkPattern  = regexp.MustCompile(`^[0-9a-z]+$`)
	digitsPattern  = regexp.MustCompile(`^[0-9]+$`)
	titlePathRegex = regexp.MustCompile(`/title/([0-9a-fA-F-]{36})`)
)

// LegacyResolver maps a decimal MangaUpdates identifier to its base-36 form.
// It is satisfied by [*mangaupdates.Client].
type LegacyResolver interface {
	ResolveLegacyID(ctx context.Context, legacy string) (string, error)
}

// Client fetches manga from the MangaDex API.
type Client struct {
	api       *upstream.Client
	apiURL    string
	coverURL  string
	languages []string
	legacy    LegacyResolver
	logger    *slog.Logger
}

// Option customizes a [Client].
type Option func(*Client)

// WithLegacyResolver resolves decimal MangaUpdates links instead of dropping them.
func WithLegacyResolver(resolver LegacyResolver) Option {
	return func(client *Client) { client.legacy = resolver }
}

// New builds an adapter. languages are the configured title languages.
func New(api *upstream.Client, apiURL, coverURL string, languages []string, logger *slog.Logger, options ...Option) *Client {
	client := &Client{
		api:       api,
		apiURL:    strings.TrimRight(apiURL, "/"),
		coverURL:  strings.TrimRight(coverURL, "/"),
		languages: languages,
		logger:    logger,
	}
	for _, option := range options {
		option(client)
	}
	return client
}

func (client *Client) Provider() series.Provider { return series.MangaDex }

type mangaResponse struct {
	Data *struct {
		ID         string `json:"id"`
		Attributes struct {
			Title                  map[string]string   `json:"title"`
			AltTitles              []map[string]string `json:"altTitles"`
			Description            map[string]string   `json:"description"`
			Links                  map[string]string   `json:"links"`
			OriginalLanguage       string              `json:"originalLanguage"`
			PublicationDemographic string              `json:"publicationDemographic"`
			Status                 string              `json:"status"`
			Year                   *int                `json:"year"`
			ContentRating          string              `json:"contentRating"`
			Tags                   []struct {
				ID string `json:"id"`
			} `json:"tags"`
			UpdatedAt string `json:"updatedAt"`
		} `json:"attributes"`
		Relationships []struct {
			ID         string `json:"id"`
			Type       string `json:"type"`
			Attributes *struct {
				Name     string `json:"name"`
				FileName string `json:"fileName"`
			} `json:"attributes"`
		} `json:"relationships"`
	} `json:"data"`
}

/*
FetchSeries loads one manga by UUID.

Description: The type and the native title languages derive from the original
language. Alternate titles are already tagged by language on MangaDex, so they
are kept by tag without detection. Links to MangaUpdates, MyAnimeList and the
official English Webtoon become discovered identifiers.
*/
func (client *Client) FetchSeries(ctx context.Context, id string) (*series.Record, error) {
	if err := uuid.Validate(id); err != nil {
		return nil, apperr.ValidationError("Invalid MangaDex identifier", apperr.FieldError{
			Field:   "dex",
			Message: "Must be a UUID",
		})
	}

	query := url.Values{"includes[]": {"author", "artist", "cover_art"}}
	var payload mangaResponse
	err := client.api.GetJSON(ctx, client.apiURL+"/manga/"+id+"?"+query.Encode(), nil, &payload, func() error {
		switch {
		case payload.Data == nil:
			return client.api.Malformed("data missing")
		case pickTitle(payload.Data.Attributes.Title) == "":
			return client.api.Malformed("title missing")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	attributes := payload.Data.Attributes

	tags := make([]string, 0, len(attributes.Tags))
	for _, tag := range attributes.Tags {
		tags = append(tags, tag.ID)
	}
	normalized := taxonomy.MangaDex(taxonomy.Input{
		Tags:             tags,
		OriginalLanguage: attributes.OriginalLanguage,
		Demographic:      attributes.PublicationDemographic,
		ContentRating:    attributes.ContentRating,
	})

	title := pickTitle(attributes.Title)

	accepted := append([]string{"en"}, client.languages...)
	accepted = append(accepted, normalized.Languages...)
	altTitles := []string{}
	for _, entry := range attributes.AltTitles {
		for _, lang := range sortedKeys(entry) {
			alt := strings.TrimSpace(entry[lang])
			if alt != "" && alt != title && slices.Contains(accepted, lang) && !slices.Contains(altTitles, alt) {
				altTitles = append(altTitles, alt)
			}
		}
	}

	var authors []series.Contribution
	var coverFile string
	for _, relation := range payload.Data.Relationships {
		switch relation.Type {
		case "author", "artist":
			role, _ := series.ParseRole(relation.Type)
			contribution := series.Contribution{Role: role, IDs: series.IDs{series.MangaDex: relation.ID}}
			if relation.Attributes != nil {
				contribution.Name = relation.Attributes.Name
			}
			authors = append(authors, contribution)
		case "cover_art":
			if relation.Attributes != nil {
				coverFile = relation.Attributes.FileName
			}
		}
	}

	record := &series.Record{
		Provider:    series.MangaDex,
		IDs:         client.discoveredIDs(ctx, id, attributes.Links),
		Title:       title,
		AltTitles:   altTitles,
		Type:        normalized.Type,
		Description: attributes.Description["en"],
		Genres:      normalized.Genres,
		OneShot:     normalized.OneShot,
		Authors:     series.MergeAuthorTypes(authors),
		Year:        attributes.Year,
		Status:      attributes.Status,
	}
	if coverFile != "" {
		record.ThumbnailURL = client.coverURL + "/" + id + "/" + coverFile + ".256.jpg"
	}
	if updated, err := time.Parse(time.RFC3339, attributes.UpdatedAt); err == nil {
		updated = updated.UTC()
		record.ProviderTimestamp = &updated
	}

	return record, nil
}

// discoveredIDs turns the links block into identifiers of other providers.
// A link that cannot be trusted is dropped; it never fails the fetch.
func (client *Client) discoveredIDs(ctx context.Context, id string, links map[string]string) series.IDs {
	ids := series.IDs{series.MangaDex: id}

	if mu := strings.ToLower(strings.TrimSpace(links["mu"])); mu != "" {
		switch {
		case digitsPattern.MatchString(mu):
			if resolved, ok := client.resolveLegacy(ctx, id, mu); ok {
				ids[series.MangaUpdates] = resolved
			}
		case muLinkPattern.MatchString(mu):
			ids[series.MangaUpdates] = mu
		}
	}

	if mal := strings.TrimSpace(links["mal"]); digitsPattern.MatchString(mal) {
		ids[series.MyAnimeList] = mal
	}

	if engtl := links["engtl"]; strings.Contains(engtl, "webtoons.com") {
		if line, ok := webtoon.IDFromURL(engtl); ok {
			ids[series.Webtoon] = line
		}
	}

	return ids
}

// resolveLegacy follows the MangaUpdates redirect of a decimal link.
func (client *Client) resolveLegacy(ctx context.Context, id, legacy string) (string, bool) {
	if client.legacy == nil {
		client.logger.Debug("mangadex_legacy_mu_link_ignored",
			slog.String("dex", id),
			slog.String("mu", legacy),
		)
		return "", false
	}

	resolved, err := client.legacy.ResolveLegacyID(ctx, legacy)
	if err != nil {
		client.logger.Warn("mangadex_legacy_mu_link_unresolved",
			slog.String("dex", id),
			slog.String("mu", legacy),
			slog.Any("error", err),
		)
		return "", false
	}
	return resolved, true
}

// pickTitle prefers English, then the first language alphabetically.
func pickTitle(titles map[string]string) string {
	if title := strings.TrimSpace(titles["en"]); title != "" {
		return title
	}
	for _, lang := range sortedKeys(titles) {
		if title := strings.TrimSpace(titles[lang]); title != "" {
			return title
		}
	}
	return ""
}

func sortedKeys(values map[string]string) []string {
	return slices.Sorted(maps.Keys(values))
}

// ExtractID parses a mangadex.org/title/{uuid} URL.
func (client *Client) ExtractID(_ context.Context, rawURL string) (string, error) {
	parsed, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || !(parsed.Hostname() == "mangadex.org" || strings.HasSuffix(parsed.Hostname(), ".mangadex.org")) {
		return "", series.UnsupportedURL(series.MangaDex)
	}

	match := titlePathRegex.FindStringSubmatch(parsed.Path)
	if match == nil || uuid.Validate(match[1]) != nil {
		return "", series.UnsupportedURL(series.MangaDex)
	}
	return strings.ToLower(match[1]), nil
}
