// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package langfilter_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/shelfsync/internal/core/langfilter"
	"github.com/taibuivan/shelfsync/internal/platform/apperr"
	"github.com/taibuivan/shelfsync/internal/platform/upstream"
)

func testClient() *upstream.Client {
	return upstream.New("LibreTranslate", upstream.Policy{Timeout: time.Second, Retries: 2})
}

/*
TestHTTPDetector_Detect scales the confidence and sends the key.
*/
func TestHTTPDetector_Detect(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/detect", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "Kimetsu no Yaiba", body["q"])
		assert.Equal(t, "secret", body["api_key"])

		_, _ = w.Write([]byte(`[{"language":"ja","confidence":81.0},{"language":"en","confidence":12.0}]`))
	}))
	defer server.Close()

	detector := langfilter.NewHTTPDetector(testClient(), server.URL+"/", "secret")
	detection, err := detector.Detect(context.Background(), "Kimetsu no Yaiba")
	require.NoError(t, err)

	assert.Equal(t, "ja", detection.Language)
	assert.InDelta(t, 0.81, detection.Confidence, 1e-9)
	assert.True(t, detection.Confident())
}

/*
TestHTTPDetector_Failures covers empty answers and upstream errors.
*/
func TestHTTPDetector_Failures(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantCode string
		wantLang string
	}{
		{"no_candidates", http.StatusOK, `[]`, "", langfilter.Unknown},
		{"malformed", http.StatusOK, `{"error":"x"}`, apperr.CodeUpstreamUnavailable, ""},
		{"server_error", http.StatusInternalServerError, `oops`, apperr.CodeUpstreamUnavailable, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			detector := langfilter.NewHTTPDetector(testClient(), server.URL, "")
			detection, err := detector.Detect(context.Background(), "x")

			if tt.wantCode != "" {
				require.Error(t, err)
				assert.True(t, apperr.HasCode(err, tt.wantCode))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantLang, detection.Language)
			assert.False(t, detection.Confident())
		})
	}
}
