// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package myanimelist is the MyAnimeList provider adapter (API v2, client-id auth).
package myanimelist

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/taibuivan/shelfsync/internal/core/series"
	"github.com/taibuivan/shelfsync/internal/core/taxonomy"
	"github.com/taibuivan/shelfsync/internal/platform/apperr"
	"github.com/taibuivan/shelfsync/internal/platform/upstream"
)

const fields = "alternative_titles,start_date,synopsis,updated_at,media_type,genres," +
	"num_volumes,num_chapters,authors{first_name,last_name}"

var mangaPathPattern = regexp.MustCompile(`^/manga/(\d+)`)

// roles maps MyAnimeList credit labels.
var roles = map[string]series.Role{
	"Story & Art": series.RoleBoth,
	"Story":       series.RoleAuthor,
	"Art":         series.RoleArtist,
}

// Client fetches manga from the MyAnimeList API.
type Client struct {
	api      *upstream.Client
	apiURL   string
	clientID string
	logger   *slog.Logger
}

// New builds an adapter authenticating with clientID.
func New(api *upstream.Client, apiURL, clientID string, logger *slog.Logger) *Client {
	return &Client{api: api, apiURL: strings.TrimRight(apiURL, "/"), clientID: clientID, logger: logger}
}

func (client *Client) Provider() series.Provider { return series.MyAnimeList }

type mangaResponse struct {
	ID                int    `json:"id"`
	Title             string `json:"title"`
	Synopsis          string `json:"synopsis"`
	MediaType         string `json:"media_type"`
	StartDate         string `json:"start_date"`
	UpdatedAt         string `json:"updated_at"`
	NumVolumes        int    `json:"num_volumes"`
	NumChapters       int    `json:"num_chapters"`
	AlternativeTitles struct {
		Synonyms []string `json:"synonyms"`
		En       string   `json:"en"`
		Ja       string   `json:"ja"`
	} `json:"alternative_titles"`
	MainPicture *struct {
		Medium string `json:"medium"`
	} `json:"main_picture"`
	Genres []struct {
		Name string `json:"name"`
	} `json:"genres"`
	Authors []struct {
		Node struct {
			ID        int    `json:"id"`
			FirstName string `json:"first_name"`
			LastName  string `json:"last_name"`
		} `json:"node"`
		Role string `json:"role"`
	} `json:"authors"`
}

// FetchSeries loads one manga by its numeric identifier.
func (client *Client) FetchSeries(ctx context.Context, id string) (*series.Record, error) {
	if _, err := strconv.ParseUint(id, 10, 64); err != nil {
		return nil, apperr.ValidationError("Invalid MyAnimeList identifier", apperr.FieldError{
			Field:   "mal",
			Message: "Must be numeric",
		})
	}

	headers := map[string]string{"X-MAL-CLIENT-ID": client.clientID}
	query := url.Values{"fields": {fields}}

	var payload mangaResponse
	err := client.api.GetJSON(ctx, client.apiURL+"/manga/"+id+"?"+query.Encode(), headers, &payload, func() error {
		if payload.Title == "" {
			return client.api.Malformed("title missing")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	tags := make([]string, 0, len(payload.Genres))
	for _, genre := range payload.Genres {
		tags = append(tags, genre.Name)
	}
	normalized := taxonomy.MyAnimeList(taxonomy.Input{Tags: tags, MediaType: payload.MediaType})

	altTitles := []string{}
	candidates := append(payload.AlternativeTitles.Synonyms, payload.AlternativeTitles.En, payload.AlternativeTitles.Ja)
	for _, candidate := range candidates {
		if alt := strings.TrimSpace(candidate); alt != "" && alt != payload.Title && !lo.Contains(altTitles, alt) {
			altTitles = append(altTitles, alt)
		}
	}

	authors := make([]series.Contribution, 0, len(payload.Authors))
	for _, author := range payload.Authors {
		role, known := roles[author.Role]
		if !known {
			client.logger.Debug("myanimelist_unknown_role",
				slog.String("mal", id),
				slog.String("role", author.Role),
			)
			role = series.RoleAuthor
		}
		contribution := series.Contribution{
			Name: strings.TrimSpace(author.Node.FirstName + " " + author.Node.LastName),
			Role: role,
		}
		if author.Node.ID > 0 {
			contribution.IDs = series.IDs{series.MyAnimeList: strconv.Itoa(author.Node.ID)}
		}
		authors = append(authors, contribution)
	}

	record := &series.Record{
		Provider:    series.MyAnimeList,
		IDs:         series.IDs{series.MyAnimeList: id},
		Title:       payload.Title,
		AltTitles:   altTitles,
		Type:        normalized.Type,
		Description: payload.Synopsis,
		Genres:      normalized.Genres,
		OneShot:     normalized.OneShot,
		Authors:     series.MergeAuthorTypes(authors),
		Status:      volumeStatus(payload.NumVolumes, payload.NumChapters),
	}
	if payload.MainPicture != nil {
		record.ThumbnailURL = payload.MainPicture.Medium
	}
	if len(payload.StartDate) >= 4 {
		if year, err := strconv.Atoi(payload.StartDate[:4]); err == nil {
			record.Year = &year
		}
	}
	if updated, err := time.Parse(time.RFC3339, payload.UpdatedAt); err == nil {
		updated = updated.UTC()
		record.ProviderTimestamp = &updated
	}

	return record, nil
}

// volumeStatus renders "12 Volumes, 100 Chapters (Complete)". MyAnimeList only
// reports counts once a series has ended.
func volumeStatus(volumes, chapters int) string {
	var parts []string
	if volumes > 0 {
		parts = append(parts, fmt.Sprintf("%d Volumes", volumes))
	}
	if chapters > 0 {
		parts = append(parts, fmt.Sprintf("%d Chapters", chapters))
	}
	if len(parts) == 0 {
		return ""
	}
	return strings.Join(parts, ", ") + " (Complete)"
}

// ExtractID parses a myanimelist.net/manga/{id} URL.
func (client *Client) ExtractID(_ context.Context, rawURL string) (string, error) {
	parsed, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || !(parsed.Hostname() == "myanimelist.net" || strings.HasSuffix(parsed.Hostname(), ".myanimelist.net")) {
		return "", series.UnsupportedURL(series.MyAnimeList)
	}
	match := mangaPathPattern.FindStringSubmatch(parsed.Path)
	if match == nil {
		return "", series.UnsupportedURL(series.MyAnimeList)
	}
	return match[1], nil
}
