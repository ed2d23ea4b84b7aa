// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package ctxutil_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/shelfsync/internal/platform/ctxutil"
	"github.com/taibuivan/shelfsync/internal/platform/sec"
)

/*
TestContext_RequestID verifies that Request IDs can be injected and retrieved.
*/
func TestContext_RequestID(t *testing.T) {
	ctx := context.Background()

	assert.Empty(t, ctxutil.GetRequestID(ctx))

	ctx = ctxutil.WithRequestID(ctx, "req-42")
	assert.Equal(t, "req-42", ctxutil.GetRequestID(ctx))
}

/*
TestContext_Logger verifies the request logger and both fallbacks.
*/
func TestContext_Logger(t *testing.T) {
	ctx := context.Background()
	service := slog.New(slog.NewTextHandler(io.Discard, nil))
	request := slog.New(slog.NewJSONHandler(io.Discard, nil))

	// 1. Nothing in context
	assert.Equal(t, slog.Default(), ctxutil.GetLogger(ctx))
	assert.Equal(t, service, ctxutil.LoggerOr(ctx, service))
	assert.Equal(t, slog.Default(), ctxutil.LoggerOr(ctx, nil))

	// 2. Request logger wins
	ctx = ctxutil.WithLogger(ctx, request)
	assert.Equal(t, request, ctxutil.GetLogger(ctx))
	assert.Equal(t, request, ctxutil.LoggerOr(ctx, service))
}

/*
TestContext_AuthUser verifies that AuthClaims can be stored in context.
*/
func TestContext_AuthUser(t *testing.T) {
	ctx := context.Background()
	assert.Nil(t, ctxutil.GetAuthUser(ctx))

	ctx = ctxutil.WithAuthUser(ctx, &sec.AuthClaims{UserID: "user-123", Role: string(sec.RoleAdmin)})
	retrieved := ctxutil.GetAuthUser(ctx)

	if assert.NotNil(t, retrieved) {
		assert.Equal(t, "user-123", retrieved.UserID)
		assert.Equal(t, "admin", retrieved.Role)
	}
}
