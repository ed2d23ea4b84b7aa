// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package webtoon is the Line Webtoon provider adapter.

Line Webtoon keeps originals and canvas (challenge) series in two numbering
spaces, so identifiers carry a namespace prefix: "o:95" or "c:123456".
*/
package webtoon

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"regexp"
	"strings"

	"github.com/taibuivan/shelfsync/internal/core/series"
	"github.com/taibuivan/shelfsync/internal/core/taxonomy"
	"github.com/taibuivan/shelfsync/internal/platform/apperr"
	"github.com/taibuivan/shelfsync/internal/platform/upstream"
)

const (
	Original  = "o"
	Challenge = "c"
)

var titleNoPattern = regexp.MustCompile(`title_?[nN]o=(\d+)`)

// Client fetches series from the Line Webtoon app API.
type Client struct {
	api     *upstream.Client
	baseURL string
	logger  *slog.Logger
}

// New builds an adapter calling the API at baseURL.
func New(api *upstream.Client, baseURL string, logger *slog.Logger) *Client {
	return &Client{api: api, baseURL: strings.TrimRight(baseURL, "/"), logger: logger}
}

func (client *Client) Provider() series.Provider { return series.Webtoon }

type titleInfoResponse struct {
	Message struct {
		Result struct {
			TitleInfo *struct {
				Title             string `json:"title"`
				WritingAuthorName string `json:"writingAuthorName"`
				PictureAuthorName string `json:"pictureAuthorName"`
				Synopsis          string `json:"synopsis"`
				RepresentGenre    string `json:"representGenre"`
				Thumbnail         string `json:"thumbnail"`
			} `json:"titleInfo"`
		} `json:"result"`
	} `json:"message"`
}

// FetchSeries loads one title. Canvas titles use the challenge endpoint.
func (client *Client) FetchSeries(ctx context.Context, id string) (*series.Record, error) {
	namespace, number, ok := strings.Cut(id, ":")
	if !ok || (namespace != Original && namespace != Challenge) {
		return nil, apperr.ValidationError("Invalid Line Webtoon identifier", apperr.FieldError{
			Field:   "line",
			Message: "Must look like o:123 or c:123",
		})
	}

	endpoint := "/titleInfo.json"
	if namespace == Challenge {
		endpoint = "/challengeTitleInfo.json"
	}
	query := url.Values{
		"titleNo":     {number},
		"serviceZone": {"GLOBAL"},
		"language":    {"en"},
		"platform":    {"APP_ANDROID"},
	}

	var payload titleInfoResponse
	err := client.api.GetJSON(ctx, client.baseURL+endpoint+"?"+query.Encode(), nil, &payload, func() error {
		if info := payload.Message.Result.TitleInfo; info == nil || info.Title == "" {
			return client.api.Malformed("titleInfo missing")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	info := payload.Message.Result.TitleInfo

	normalized := taxonomy.Webtoon(taxonomy.Input{Tags: []string{info.RepresentGenre}})

	record := &series.Record{
		Provider:    series.Webtoon,
		IDs:         series.IDs{series.Webtoon: id},
		Title:       info.Title,
		AltTitles:   []string{},
		Type:        normalized.Type,
		Description: info.Synopsis,
		Genres:      normalized.Genres,
		Authors:     credits(info.WritingAuthorName, info.PictureAuthorName),
	}
	if info.Thumbnail != "" {
		record.ThumbnailURL = "line://" + info.Thumbnail
	}

	client.logger.Debug("webtoon_series_fetched", slog.String("id", id))
	return record, nil
}

func credits(writer, artist string) []series.Contribution {
	writer, artist = strings.TrimSpace(writer), strings.TrimSpace(artist)
	switch {
	case writer == "" && artist == "":
		return []series.Contribution{}
	case writer == artist:
		return []series.Contribution{{Name: writer, Role: series.RoleBoth}}
	case artist == "":
		return []series.Contribution{{Name: writer, Role: series.RoleAuthor}}
	case writer == "":
		return []series.Contribution{{Name: artist, Role: series.RoleArtist}}
	}
	return []series.Contribution{
		{Name: writer, Role: series.RoleAuthor},
		{Name: artist, Role: series.RoleArtist},
	}
}

// ExtractID parses a webtoons.com link.
func (client *Client) ExtractID(_ context.Context, rawURL string) (string, error) {
	if id, ok := IDFromURL(rawURL); ok {
		return id, nil
	}
	return "", series.UnsupportedURL(series.Webtoon)
}

// IDFromURL reads title_no (or titleNo) from a webtoons.com URL. Canvas and
// challenge paths map to the "c" namespace.
func IDFromURL(rawURL string) (string, bool) {
	parsed, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || !strings.HasSuffix(parsed.Hostname(), "webtoons.com") {
		return "", false
	}

	match := titleNoPattern.FindStringSubmatch(parsed.RawQuery)
	if match == nil {
		return "", false
	}

	namespace := Original
	if strings.Contains(parsed.Path, "/canvas/") || strings.Contains(parsed.Path, "/challenge/") {
		namespace = Challenge
	}
	return fmt.Sprintf("%s:%s", namespace, match[1]), true
}
