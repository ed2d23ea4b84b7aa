// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package middleware_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/taibuivan/shelfsync/internal/platform/apperr"
	"github.com/taibuivan/shelfsync/internal/platform/middleware"
	"github.com/taibuivan/shelfsync/internal/platform/respond"
)

/*
TestRateLimitWith_RejectsWithRetryAfter answers 429 in the standard error
envelope once a client's bucket is empty, leaving other clients untouched.
*/
func TestRateLimitWith_RejectsWithRetryAfter(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	handler := middleware.RateLimitWith(ctx, rate.Every(time.Minute), 1)(
		http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			writer.WriteHeader(http.StatusNoContent)
		}))

	call := func(ip string) *httptest.ResponseRecorder {
		request := httptest.NewRequest(http.MethodGet, "/api/v1/series", nil)
		request.Header.Set("X-Real-IP", ip)
		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, request)
		return recorder
	}

	assert.Equal(t, http.StatusNoContent, call("10.0.0.1").Code)

	rejected := call("10.0.0.1")
	require.Equal(t, http.StatusTooManyRequests, rejected.Code)

	var envelope respond.ErrorEnvelope
	require.NoError(t, json.Unmarshal(rejected.Body.Bytes(), &envelope))
	assert.Equal(t, apperr.CodeRateLimited, envelope.Code)

	retryAfter, err := strconv.Atoi(rejected.Header().Get("Retry-After"))
	require.NoError(t, err)
	assert.InDelta(t, 60, retryAfter, 1)

	assert.Equal(t, http.StatusNoContent, call("10.0.0.2").Code)
}

func TestRealIP(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		remote  string
		want    string
	}{
		{"real_ip_header", map[string]string{"X-Real-IP": "1.1.1.1"}, "9.9.9.9:1234", "1.1.1.1"},
		{"forwarded_first_hop", map[string]string{"X-Forwarded-For": " 2.2.2.2, 3.3.3.3"}, "9.9.9.9:1234", "2.2.2.2"},
		{"remote_addr", nil, "9.9.9.9:1234", "9.9.9.9"},
		{"remote_without_port", nil, "9.9.9.9", "9.9.9.9"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			request := httptest.NewRequest(http.MethodGet, "/", nil)
			request.RemoteAddr = tt.remote
			for name, value := range tt.headers {
				request.Header.Set(name, value)
			}
			assert.Equal(t, tt.want, middleware.RealIP(request))
		})
	}
}
