// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package mangaupdates is the MangaUpdates provider adapter.

Series are identified by the base-36 form used in site URLs ("vy4abhh"); the
API expects the decimal form. Legacy numeric links ("series.html?id=N") are
resolved by following the site's redirect.
*/
package mangaupdates

import (
	"context"
	"log/slog"
	"net/url"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/taibuivan/shelfsync/internal/core/series"
	"github.com/taibuivan/shelfsync/internal/core/taxonomy"
	"github.com/taibuivan/shelfsync/internal/external/webtoon"
	"github.com/taibuivan/shelfsync/internal/platform/apperr"
	"github.com/taibuivan/shelfsync/internal/platform/upstream"
)

// anthologyAuthor is the pseudo-author MangaUpdates credits on anthologies.
const anthologyAuthor = "3316twv"

var webtoonLinkPattern = regexp.MustCompile(`(https?://)?www\.webtoons\.com\S*`)

// Client fetches series from the MangaUpdates v1 API.
type Client struct {
	api       *upstream.Client
	apiURL    string
	webURL    string
	titles    series.TitleFilter
	languages []string
	logger    *slog.Logger
}

// New builds an adapter. languages are the configured title languages, kept on
// top of the native languages of each series type.
func New(api *upstream.Client, apiURL, webURL string, titles series.TitleFilter, languages []string, logger *slog.Logger) *Client {
	return &Client{
		api:       api,
		apiURL:    strings.TrimRight(apiURL, "/"),
		webURL:    strings.TrimRight(webURL, "/"),
		titles:    titles,
		languages: languages,
		logger:    logger,
	}
}

func (client *Client) Provider() series.Provider { return series.MangaUpdates }

type seriesResponse struct {
	SeriesID    int64  `json:"series_id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Type        string `json:"type"`
	Year        string `json:"year"`
	Status      string `json:"status"`
	Associated  []struct {
		Title string `json:"title"`
	} `json:"associated"`
	Genres []struct {
		Genre string `json:"genre"`
	} `json:"genres"`
	Categories []taxonomy.Category `json:"categories"`
	Authors    []struct {
		Name     string `json:"name"`
		AuthorID int64  `json:"author_id"`
		Type     string `json:"type"`
	} `json:"authors"`
	Image struct {
		URL struct {
			Original string `json:"original"`
		} `json:"url"`
	} `json:"image"`
	LastUpdated *struct {
		Timestamp int64 `json:"timestamp"`
	} `json:"last_updated"`
}

/*
FetchSeries loads one series by its base-36 identifier.

Description: Genres merge the MangaUpdates genres with the categories the
community voted for. Alternate titles pass through the language filter with the
configured languages plus the native languages of the series type.
*/
func (client *Client) FetchSeries(ctx context.Context, id string) (*series.Record, error) {
	number, err := strconv.ParseInt(id, 36, 64)
	if err != nil {
		return nil, apperr.ValidationError("Invalid MangaUpdates identifier", apperr.FieldError{
			Field:   "mu",
			Message: "Must be a base-36 series identifier",
		})
	}

	var payload seriesResponse
	err = client.api.GetJSON(ctx, client.apiURL+"/series/"+strconv.FormatInt(number, 10), nil, &payload, func() error {
		if payload.Title == "" {
			return client.api.Malformed("series title missing")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	tags := make([]string, 0, len(payload.Genres))
	for _, genre := range payload.Genres {
		tags = append(tags, genre.Genre)
	}
	normalized := taxonomy.MangaUpdates(taxonomy.Input{
		Tags:       tags,
		Categories: payload.Categories,
		MediaType:  payload.Type,
	})

	candidates := make([]string, 0, len(payload.Associated))
	for _, associated := range payload.Associated {
		candidates = append(candidates, associated.Title)
	}
	accepted := append(slices.Clone(client.languages), normalized.Languages...)
	altTitles, err := client.titles.AltTitles(ctx, candidates, accepted)
	if err != nil {
		return nil, err
	}

	authors := make([]series.Contribution, 0, len(payload.Authors))
	anthology := false
	for _, author := range payload.Authors {
		role, ok := series.ParseRole(author.Type)
		if !ok {
			role = series.RoleAuthor
		}
		contribution := series.Contribution{Name: author.Name, Role: role}
		if author.AuthorID > 0 {
			authorID := strconv.FormatInt(author.AuthorID, 36)
			contribution.IDs = series.IDs{series.MangaUpdates: authorID}
			anthology = anthology || authorID == anthologyAuthor
		}
		authors = append(authors, contribution)
	}

	ids := series.IDs{series.MangaUpdates: id}
	if link := webtoonLinkPattern.FindString(payload.Title); link != "" {
		if !strings.HasPrefix(link, "http") {
			link = "https://" + link
		}
		if lineID, ok := webtoon.IDFromURL(link); ok {
			ids[series.Webtoon] = lineID
		}
	}

	record := &series.Record{
		Provider:     series.MangaUpdates,
		IDs:          ids,
		Title:        payload.Title,
		AltTitles:    altTitles,
		Type:         normalized.Type,
		Description:  payload.Description,
		Genres:       normalized.Genres,
		OneShot:      normalized.OneShot || anthology,
		Authors:      series.MergeAuthorTypes(authors),
		ThumbnailURL: payload.Image.URL.Original,
		Status:       payload.Status,
	}
	if year, err := strconv.Atoi(payload.Year); err == nil {
		record.Year = &year
	}
	if payload.LastUpdated != nil && payload.LastUpdated.Timestamp > 0 {
		updated := time.Unix(payload.LastUpdated.Timestamp, 0).UTC()
		record.ProviderTimestamp = &updated
	}

	return record, nil
}

// # Identifiers

/*
ExtractID parses a MangaUpdates series URL.

Description: Current URLs carry the base-36 identifier in their path. Legacy
"series.html?id=N" links are requested once and the identifier is read from the
URL the site redirects to.
*/
func (client *Client) ExtractID(ctx context.Context, rawURL string) (string, error) {
	if id, ok := IDFromURL(rawURL); ok {
		return id, nil
	}

	parsed, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || !isSiteHost(parsed.Hostname()) || !strings.HasSuffix(parsed.Path, "/series.html") {
		return "", series.UnsupportedURL(series.MangaUpdates)
	}

	legacy := parsed.Query().Get("id")
	if _, err := strconv.ParseUint(legacy, 10, 64); err != nil {
		return "", series.UnsupportedURL(series.MangaUpdates)
	}
	return client.ResolveLegacyID(ctx, legacy)
}

// ResolveLegacyID maps an old decimal site identifier to the base-36 one.
func (client *Client) ResolveLegacyID(ctx context.Context, legacy string) (string, error) {
	var id string
	_, err := client.api.DoParse(ctx, upstream.Get(client.webURL+"/series.html?id="+url.QueryEscape(legacy), nil),
		func(response *upstream.Response) error {
			var ok bool
			if id, ok = idFromPath(response.FinalURL.Path); !ok {
				return client.api.Malformed("legacy id " + legacy + " did not redirect to a series")
			}
			return nil
		})
	if err != nil {
		return "", err
	}

	client.logger.Debug("mangaupdates_legacy_id_resolved",
		slog.String("legacy", legacy),
		slog.String("id", id),
	)
	return id, nil
}

// IDFromURL reads the base-36 identifier of a "/series/{id}/slug" URL. It does
// not handle legacy links, which need a request.
func IDFromURL(rawURL string) (string, bool) {
	parsed, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || !isSiteHost(parsed.Hostname()) {
		return "", false
	}
	return idFromPath(parsed.Path)
}

func idFromPath(path string) (string, bool) {
	_, rest, found := strings.Cut(path, "/series/")
	if !found {
		return "", false
	}
	id, _, _ := strings.Cut(rest, "/")
	id = strings.ToLower(id)
	if id == "" {
		return "", false
	}
	if _, err := strconv.ParseInt(id, 36, 64); err != nil {
		return "", false
	}
	return id, true
}

func isSiteHost(host string) bool {
	return host == "mangaupdates.com" || strings.HasSuffix(host, ".mangaupdates.com")
}
