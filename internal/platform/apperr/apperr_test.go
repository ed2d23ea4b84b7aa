// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package apperr_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/shelfsync/internal/platform/apperr"
)

/*
TestStatus checks the HTTP status carried by each constructor and the
fallback for foreign errors.
*/
func TestStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not_found", apperr.NotFound("Series"), http.StatusNotFound},
		{"validation", apperr.ValidationError("bad"), http.StatusBadRequest},
		{"identity_conflict", apperr.IdentityConflict("clash", "mu: a != b"), http.StatusConflict},
		{"merge_required", apperr.MergeRequired("a", "b"), http.StatusConflict},
		{"upstream", apperr.UpstreamUnavailable("MangaDex", errors.New("timeout")), http.StatusBadGateway},
		{"internal", apperr.Internal(errors.New("boom")), http.StatusInternalServerError},
		{"wrapped", fmt.Errorf("import: %w", apperr.NotFound("Series")), http.StatusNotFound},
		{"foreign", errors.New("plain"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, apperr.Status(tt.err))
		})
	}
}

func TestMergeRequired_CarriesIDs(t *testing.T) {
	err := apperr.MergeRequired("id-1", "id-2")

	assert.True(t, apperr.HasCode(err, apperr.CodeMergeRequired))
	assert.False(t, apperr.HasCode(err, apperr.CodeIdentityConflict))
	assert.Equal(t, []string{"id-1", "id-2"}, err.Conflicts)
}

func TestUpstreamUnavailable_HidesCause(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	err := apperr.UpstreamUnavailable("Bato.to", cause)

	assert.Equal(t, "Failed to fetch details from Bato.to", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.Nil(t, apperr.As(errors.New("plain")))
}
