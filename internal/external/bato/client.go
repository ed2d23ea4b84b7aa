// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package bato is the Bato.to provider adapter.

Bato.to has no API and rotates between many mirror domains, any of which may be
blocked or down. Every fetch walks the mirrors in a fresh random order and tries
each one at most once before giving up. The series page is scraped with goquery.
*/
package bato

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"regexp"
	"slices"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/samber/lo"
	"github.com/samber/lo/mutable"

	"github.com/taibuivan/shelfsync/internal/core/series"
	"github.com/taibuivan/shelfsync/internal/core/taxonomy"
	"github.com/taibuivan/shelfsync/internal/external/mangaupdates"
	"github.com/taibuivan/shelfsync/internal/external/webtoon"
	"github.com/taibuivan/shelfsync/internal/platform/apperr"
	"github.com/taibuivan/shelfsync/internal/platform/upstream"
)

// Mirrors are the known Bato.to domains.
var Mirrors = []string{
	"dto.to", "fto.to", "hto.to", "jto.to", "mto.to", "wto.to",
	"batocomic.com", "batocomic.net", "batocomic.org", "batotoo.com", "batotwo.com", "battwo.com",
	"comiko.net", "comiko.org", "readtoto.com", "readtoto.net", "readtoto.org",
	"xbato.com", "xbato.net", "xbato.org", "zbato.com", "zbato.net", "zbato.org",
	"bato.to", "mangatoto.com", "mangatoto.net", "mangatoto.org",
}

// notFoundBody is what every mirror serves for an unknown series, sometimes with status 200.
const notFoundBody = "404 Page Not Found (1)"

var (
	titleNoise   = regexp.MustCompile(`(?i)\([^()]*\)|\{[^{}]*\}|\[[^\]]*\]|«[^»]*»|〘[^〙]*〙|「[^」]*」|『[^』]*』|≪[^≫]*≫|﹛[^﹜]*﹜|〖[^〖〗]*〗|𖤍.+?𖤍|《[^》]*》|⌜.+?⌝|⟨[^⟩]*⟩|/ ?Official`)
	linkPattern  = regexp.MustCompile(`https?://\S+`)
	pathPattern  = regexp.MustCompile(`/(title|series)/(\d+)`)
	digitPattern = regexp.MustCompile(`^[0-9]+$`)
)

// Client scrapes series pages from the Bato.to mirrors.
type Client struct {
	api       *upstream.Client
	scheme    string
	mirrors   []string
	titles    series.TitleFilter
	languages []string
	logger    *slog.Logger
}

// Option customises a [Client].
type Option func(*Client)

// WithMirrors replaces the mirror list (tests, newly found domains).
func WithMirrors(hosts ...string) Option {
	return func(client *Client) { client.mirrors = hosts }
}

// New builds an adapter. scheme is "https" outside tests.
func New(api *upstream.Client, scheme string, titles series.TitleFilter, languages []string, logger *slog.Logger, options ...Option) *Client {
	client := &Client{
		api:       api,
		scheme:    scheme,
		mirrors:   Mirrors,
		titles:    titles,
		languages: languages,
		logger:    logger,
	}
	for _, option := range options {
		option(client)
	}
	return client
}

func (client *Client) Provider() series.Provider { return series.Bato }

// # Fetching

/*
FetchSeries loads one series page.

Description: Mirrors are shuffled per call and each is requested once, without
the retry loop other providers use. The not-found page ends the walk
immediately; any other failure, a page that does not parse included, moves on
to the next mirror.

Returns:
  - NotFound when a mirror reports the series as unknown.
  - UpstreamUnavailable when every mirror failed.
*/
func (client *Client) FetchSeries(ctx context.Context, id string) (*series.Record, error) {
	if !digitPattern.MatchString(id) {
		return nil, apperr.ValidationError("Invalid Bato.to identifier", apperr.FieldError{
			Field:   "bato",
			Message: "Must be numeric",
		})
	}

	order := slices.Clone(client.mirrors)
	mutable.Shuffle(order)

	var lastErr error
	for _, mirror := range order {
		pageURL := fmt.Sprintf("%s://%s/series/%s", client.scheme, mirror, id)
		response, err := client.api.Once(ctx, upstream.Get(pageURL, nil))

		if response != nil && strings.TrimSpace(string(response.Body)) == notFoundBody {
			return nil, apperr.NotFound("Bato.to entry")
		}
		if err == nil {
			record, parseErr := client.parse(ctx, id, response.Body)
			if !apperr.HasCode(parseErr, apperr.CodeUpstreamUnavailable) {
				return record, parseErr
			}
			err = parseErr
		}
		if ctx.Err() != nil {
			return nil, apperr.UpstreamUnavailable(client.api.Provider(), ctx.Err())
		}

		client.logger.Debug("bato_mirror_failed",
			slog.String("mirror", mirror),
			slog.Any("error", upstream.Unwrap(err)),
		)
		lastErr = err
	}

	if lastErr == nil {
		lastErr = errors.New("no mirror configured")
	}
	return nil, apperr.UpstreamUnavailable(client.api.Provider(),
		fmt.Errorf("all %d mirrors failed, last: %w", len(order), upstream.Unwrap(lastErr)))
}

func (client *Client) parse(ctx context.Context, id string, body []byte) (*series.Record, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, client.api.Malformed(err.Error())
	}

	info := doc.Find("div#mainer div.container-fluid").First()
	if info.Length() == 0 {
		return nil, client.api.Malformed("series info block missing")
	}

	title := CleanTitle(info.Find("h3").First().Text())
	if title == "" {
		return nil, client.api.Malformed("series title missing")
	}

	var authors []series.Contribution
	var tags []string
	var originalLanguage string
	info.Find("div.attr-item").Each(func(_ int, item *goquery.Selection) {
		label := strings.ToLower(strings.TrimSpace(item.Find("b").First().Text()))
		if label == "" {
			label = strings.ToLower(strings.TrimSpace(item.Text()))
		}
		value := item.Find("span").First()

		switch {
		case strings.Contains(label, "author"):
			authors = append(authors, linkNames(value, series.RoleAuthor)...)
		case strings.Contains(label, "artist"):
			authors = append(authors, linkNames(value, series.RoleArtist)...)
		case strings.Contains(label, "genres"):
			value.Find("span, u, b").Each(func(_ int, genre *goquery.Selection) {
				if text := strings.TrimSpace(genre.Text()); text != "" {
					tags = append(tags, text)
				}
			})
		case strings.Contains(label, "original language"):
			originalLanguage = strings.TrimSpace(value.Text())
		}
	})

	normalized := taxonomy.Bato(taxonomy.Input{Tags: tags, OriginalLanguage: originalLanguage})

	var candidates []string
	if aliases := strings.TrimSpace(doc.Find("div.pb-2.alias-set.line-b-f").First().Text()); aliases != "" {
		candidates = lo.Map(strings.Split(aliases, "/"), func(alias string, _ int) string {
			return strings.TrimSpace(alias)
		})
	}
	accepted := append(slices.Clone(normalized.Languages), client.languages...)
	altTitles, err := client.titles.AltTitles(ctx, candidates, accepted)
	if err != nil {
		return nil, err
	}

	description := strings.TrimSpace(info.Find("div.limit-html").First().Text())
	thumbnail, _ := doc.Find("div.attr-cover img").First().Attr("src")

	return &series.Record{
		Provider:     series.Bato,
		IDs:          client.discoveredIDs(doc, id),
		Title:        title,
		AltTitles:    altTitles,
		Type:         normalized.Type,
		Description:  strings.ReplaceAll(description, "\n\n", "\n"),
		Genres:       normalized.Genres,
		OneShot:      normalized.OneShot,
		Authors:      series.MergeAuthorTypes(authors),
		ThumbnailURL: thumbnail,
	}, nil
}

func linkNames(value *goquery.Selection, role series.Role) []series.Contribution {
	var people []series.Contribution
	value.Find("a").Each(func(_ int, link *goquery.Selection) {
		if name := strings.TrimSpace(link.Text()); name != "" {
			people = append(people, series.Contribution{Name: name, Role: role})
		}
	})
	return people
}

// discoveredIDs reads the MangaUpdates and Webtoon links of the "Extra Info" block.
func (client *Client) discoveredIDs(doc *goquery.Document, id string) series.IDs {
	ids := series.IDs{series.Bato: id}

	heading := doc.Find("h5.mt-3.text-muted").FilterFunction(func(_ int, h5 *goquery.Selection) bool {
		return strings.TrimSpace(h5.Text()) == "Extra Info:"
	}).First()
	if heading.Length() == 0 {
		return ids
	}

	extra := heading.NextAllFiltered("div").First().Text()
	for _, link := range linkPattern.FindAllString(extra, -1) {
		parsed, err := url.Parse(link)
		if err != nil {
			continue
		}
		switch parsed.Hostname() {
		case "www.mangaupdates.com":
			if mu, ok := mangaupdates.IDFromURL(link); ok {
				ids[series.MangaUpdates] = mu
			} else {
				client.logger.Debug("bato_mu_link_ignored", slog.String("bato", id), slog.String("link", link))
			}
		case "www.webtoons.com":
			if line, ok := webtoon.IDFromURL(link); ok {
				ids[series.Webtoon] = line
			}
		}
	}

	return ids
}

// CleanTitle strips bracketed notes and "/Official" suffixes from a page title.
func CleanTitle(raw string) string {
	return strings.TrimSpace(titleNoise.ReplaceAllString(strings.TrimSpace(raw), ""))
}

// # Identifiers

// ExtractID parses a series or title URL on any of the [Mirrors].
func (client *Client) ExtractID(_ context.Context, rawURL string) (string, error) {
	parsed, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || !slices.Contains(Mirrors, parsed.Hostname()) {
		return "", series.UnsupportedURL(series.Bato)
	}

	match := pathPattern.FindStringSubmatch(parsed.Path)
	if match == nil {
		return "", series.UnsupportedURL(series.Bato)
	}
	return match[2], nil
}
