// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package mangadex_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/shelfsync/internal/core/series"
	"github.com/taibuivan/shelfsync/internal/external/mangadex"
	"github.com/taibuivan/shelfsync/internal/platform/apperr"
	"github.com/taibuivan/shelfsync/internal/platform/upstream"
)

const dexID = "8573d280-7f60-411d-b146-c97dca3c62f2"

const mangaPayload = `{"result":"ok","data":{
	"id":"8573d280-7f60-411d-b146-c97dca3c62f2",
	"attributes":{
		"title":{"ja-ro":"Kimetsu no Yaiba","en":"Demon Slayer"},
		"altTitles":[{"ja":"鬼滅の刃"},{"ko":"귀멸의 칼날"},{"en":"Blade of Demon Destruction"},{"en":"Demon Slayer"}],
		"description":{"en":"Tanjiro sets out to cure his sister.","fr":"..."},
		"links":{"mu":"uy8ap3r","mal":"96792","engtl":"https://www.viz.com/demon-slayer"},
		"originalLanguage":"ja",
		"publicationDemographic":"shounen",
		"status":"completed",
		"year":2016,
		"contentRating":"safe",
		"tags":[{"id":"391b0423-d847-456f-aff0-8b0cfc03066b"},{"id":"unknown-tag"}],
		"updatedAt":"2024-03-01T10:20:30+00:00"
	},
	"relationships":[
		{"id":"a1","type":"author","attributes":{"name":"Gotouge Koyoharu"}},
		{"id":"a1","type":"artist","attributes":{"name":"Gotouge Koyoharu"}},
		{"id":"c1","type":"cover_art","attributes":{"fileName":"cover.jpg"}}
	]}}`

func newClient(url string, logger *slog.Logger) *mangadex.Client {
	api := upstream.New("MangaDex", upstream.Policy{Timeout: time.Second, Retries: 1})
	return mangadex.New(api, url, "https://uploads.mangadex.org/covers", []string{"en"}, logger)
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

/*
TestClient_FetchSeries maps a MangaDex manga with its expansions.
*/
func TestClient_FetchSeries(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/manga/"+dexID, r.URL.Path)
		assert.Equal(t, []string{"author", "artist", "cover_art"}, r.URL.Query()["includes[]"])
		_, _ = w.Write([]byte(mangaPayload))
	}))
	defer server.Close()

	record, err := newClient(server.URL, quietLogger()).FetchSeries(context.Background(), dexID)
	require.NoError(t, err)

	assert.Equal(t, series.IDs{
		series.MangaDex:     dexID,
		series.MangaUpdates: "uy8ap3r",
		series.MyAnimeList:  "96792",
	}, record.IDs)
	assert.Equal(t, "Demon Slayer", record.Title)
	assert.Equal(t, series.TypeManga, record.Type)
	assert.Equal(t, []string{"鬼滅の刃", "Blade of Demon Destruction"}, record.AltTitles)
	assert.Equal(t, []string{"Shounen", "Action"}, record.Genres)
	assert.Equal(t, "Tanjiro sets out to cure his sister.", record.Description)
	assert.Equal(t, "https://uploads.mangadex.org/covers/"+dexID+"/cover.jpg.256.jpg", record.ThumbnailURL)
	require.NotNil(t, record.Year)
	assert.Equal(t, 2016, *record.Year)
	require.NotNil(t, record.ProviderTimestamp)
	assert.Equal(t, time.Date(2024, 3, 1, 10, 20, 30, 0, time.UTC), *record.ProviderTimestamp)

	assert.Equal(t, []series.Contribution{
		{Name: "Gotouge Koyoharu", Role: series.RoleBoth, IDs: series.IDs{series.MangaDex: "a1"}},
	}, record.Authors)
}

// legacyResolver answers decimal MangaUpdates ids from a fixed table.
type legacyResolver struct {
	known map[string]string
	calls []string
}

func (r *legacyResolver) ResolveLegacyID(_ context.Context, legacy string) (string, error) {
	r.calls = append(r.calls, legacy)
	if id, ok := r.known[legacy]; ok {
		return id, nil
	}
	return "", apperr.UpstreamUnavailable("MangaUpdates", errors.New("no redirect"))
}

/*
TestClient_FetchSeries_Links checks which links become identifiers.
*/
func TestClient_FetchSeries_Links(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"data":{"id":"x","attributes":{
			"title":{"ko":"나 혼자만 레벨업"},
			"links":{"mu":"153440","mal":"not-a-number","engtl":"https://www.webtoons.com/en/action/solo-leveling/list?title_no=3162"},
			"originalLanguage":"ko"},"relationships":[]}}`))
	}))
	defer server.Close()

	tests := []struct {
		name     string
		resolver *legacyResolver
		want     series.IDs
	}{
		{
			name: "legacy_mu_without_resolver",
			want: series.IDs{series.MangaDex: dexID, series.Webtoon: "o:3162"},
		},
		{
			name:     "legacy_mu_resolved",
			resolver: &legacyResolver{known: map[string]string{"153440": "2sm8cva"}},
			want:     series.IDs{series.MangaDex: dexID, series.Webtoon: "o:3162", series.MangaUpdates: "2sm8cva"},
		},
		{
			name:     "legacy_mu_unresolvable",
			resolver: &legacyResolver{known: map[string]string{}},
			want:     series.IDs{series.MangaDex: dexID, series.Webtoon: "o:3162"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := upstream.New("MangaDex", upstream.Policy{Timeout: time.Second, Retries: 1})
			var options []mangadex.Option
			if tt.resolver != nil {
				options = append(options, mangadex.WithLegacyResolver(tt.resolver))
			}
			client := mangadex.New(api, server.URL, "https://uploads.mangadex.org/covers", []string{"en"}, quietLogger(), options...)

			record, err := client.FetchSeries(context.Background(), dexID)
			require.NoError(t, err)

			assert.Equal(t, tt.want, record.IDs)
			assert.Equal(t, "나 혼자만 레벨업", record.Title)
			assert.Equal(t, series.TypeManhwa, record.Type)
			assert.Empty(t, record.ThumbnailURL)
			assert.Nil(t, record.ProviderTimestamp)
			if tt.resolver != nil {
				assert.Equal(t, []string{"153440"}, tt.resolver.calls)
			}
		})
	}
}

/*
TestClient_FetchSeries_CurrentMULinkSkipsResolver keeps a base-36 link as is.
*/
func TestClient_FetchSeries_CurrentMULinkSkipsResolver(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(mangaPayload))
	}))
	defer server.Close()

	resolver := &legacyResolver{}
	api := upstream.New("MangaDex", upstream.Policy{Timeout: time.Second, Retries: 1})
	client := mangadex.New(api, server.URL, "https://uploads.mangadex.org/covers", []string{"en"}, quietLogger(),
		mangadex.WithLegacyResolver(resolver))

	record, err := client.FetchSeries(context.Background(), dexID)
	require.NoError(t, err)
	assert.Equal(t, "uy8ap3r", record.IDs[series.MangaUpdates])
	assert.Empty(t, resolver.calls)
}

/*
TestClient_FetchSeries_Errors classifies failures.
*/
func TestClient_FetchSeries_Errors(t *testing.T) {
	tests := []struct {
		name     string
		id       string
		status   int
		body     string
		wantCode string
	}{
		{"invalid_uuid", "vy4abhh", http.StatusOK, ``, apperr.CodeValidation},
		{"not_found", dexID, http.StatusNotFound, `{"result":"error"}`, apperr.CodeNotFound},
		{"no_data", dexID, http.StatusOK, `{"result":"ok"}`, apperr.CodeUpstreamUnavailable},
		{"no_title", dexID, http.StatusOK, `{"data":{"id":"x","attributes":{"title":{}}}}`, apperr.CodeUpstreamUnavailable},
		{"rate_limited", dexID, http.StatusTooManyRequests, ``, apperr.CodeUpstreamUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			_, err := newClient(server.URL, quietLogger()).FetchSeries(context.Background(), tt.id)
			require.Error(t, err)
			assert.True(t, apperr.HasCode(err, tt.wantCode), "got %v", err)
		})
	}
}

/*
TestClient_ExtractID parses title URLs.
*/
func TestClient_ExtractID(t *testing.T) {
	client := newClient("http://unused", quietLogger())

	id, err := client.ExtractID(context.Background(), "https://mangadex.org/title/8573D280-7F60-411D-B146-C97DCA3C62F2/demon-slayer")
	require.NoError(t, err)
	assert.Equal(t, dexID, id)

	_, err = client.ExtractID(context.Background(), "https://mangadex.org/chapter/8573d280-7f60-411d-b146-c97dca3c62f2")
	assert.True(t, apperr.HasCode(err, apperr.CodeValidation))

	_, err = client.ExtractID(context.Background(), "https://bato.to/title/8573d280-7f60-411d-b146-c97dca3c62f2")
	assert.True(t, apperr.HasCode(err, apperr.CodeValidation))
}
