// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package webtoon_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/shelfsync/internal/core/series"
	"github.com/taibuivan/shelfsync/internal/external/webtoon"
	"github.com/taibuivan/shelfsync/internal/platform/apperr"
	"github.com/taibuivan/shelfsync/internal/platform/upstream"
)

const titleInfo = `{"message":{"type":"response","result":{"titleInfo":{
	"title":"Tower of God","writingAuthorName":"SIU","pictureAuthorName":"SIU",
	"synopsis":"What do you desire?","representGenre":"FANTASY","thumbnail":"/20150407_20/tog.jpg"}}}}`

func newClient(url string) *webtoon.Client {
	api := upstream.New("Line Webtoon", upstream.Policy{Timeout: time.Second, Retries: 1})
	return webtoon.New(api, url, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

/*
TestClient_FetchSeries maps the title info of an original.
*/
func TestClient_FetchSeries(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/titleInfo.json", r.URL.Path)
		assert.Equal(t, "95", r.URL.Query().Get("titleNo"))
		assert.Equal(t, "GLOBAL", r.URL.Query().Get("serviceZone"))
		_, _ = w.Write([]byte(titleInfo))
	}))
	defer server.Close()

	record, err := newClient(server.URL).FetchSeries(context.Background(), "o:95")
	require.NoError(t, err)

	assert.Equal(t, series.IDs{series.Webtoon: "o:95"}, record.IDs)
	assert.Equal(t, "Tower of God", record.Title)
	assert.Equal(t, []string{"Webtoon", "Fantasy"}, record.Genres)
	assert.Equal(t, "line:///20150407_20/tog.jpg", record.ThumbnailURL)
	assert.Equal(t, []series.Contribution{{Name: "SIU", Role: series.RoleBoth}}, record.Authors)
}

/*
TestClient_FetchSeries_Challenge uses the canvas endpoint and splits credits.
*/
func TestClient_FetchSeries_Challenge(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/challengeTitleInfo.json", r.URL.Path)
		_, _ = w.Write([]byte(`{"message":{"result":{"titleInfo":{"title":"Canvas","writingAuthorName":"A","pictureAuthorName":"B","representGenre":"DRAMA"}}}}`))
	}))
	defer server.Close()

	record, err := newClient(server.URL).FetchSeries(context.Background(), "c:1234")
	require.NoError(t, err)
	assert.Equal(t, []series.Contribution{
		{Name: "A", Role: series.RoleAuthor},
		{Name: "B", Role: series.RoleArtist},
	}, record.Authors)
	assert.Empty(t, record.ThumbnailURL)
}

/*
TestClient_FetchSeries_Errors classifies upstream failures.
*/
func TestClient_FetchSeries_Errors(t *testing.T) {
	tests := []struct {
		name     string
		id       string
		status   int
		body     string
		wantCode string
	}{
		{"bad_namespace", "x:1", http.StatusOK, titleInfo, apperr.CodeValidation},
		{"not_found", "o:1", http.StatusNotFound, ``, apperr.CodeNotFound},
		{"empty_result", "o:1", http.StatusOK, `{"message":{"result":{}}}`, apperr.CodeUpstreamUnavailable},
		{"garbage", "o:1", http.StatusOK, `<html>`, apperr.CodeUpstreamUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			_, err := newClient(server.URL).FetchSeries(context.Background(), tt.id)
			require.Error(t, err)
			assert.True(t, apperr.HasCode(err, tt.wantCode), "got %v", err)
		})
	}
}

/*
TestIDFromURL covers both query spellings and the canvas namespace.
*/
func TestIDFromURL(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want string
		ok   bool
	}{
		{"original", "https://www.webtoons.com/en/fantasy/tower-of-god/list?title_no=95", "o:95", true},
		{"camel_case", "https://www.webtoons.com/en/fantasy/tower-of-god/list?titleNo=95&page=2", "o:95", true},
		{"canvas", "https://www.webtoons.com/en/canvas/my-story/list?title_no=123456", "c:123456", true},
		{"challenge", "https://m.webtoons.com/en/challenge/my-story/list?title_no=7", "c:7", true},
		{"other_host", "https://mangadex.org/title/x?title_no=95", "", false},
		{"no_number", "https://www.webtoons.com/en/genre", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := webtoon.IDFromURL(tt.url)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := newClient("http://unused").ExtractID(context.Background(), "https://bato.to/series/1")
	assert.True(t, apperr.HasCode(err, apperr.CodeValidation))
}
