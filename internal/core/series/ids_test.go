// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package series_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/shelfsync/internal/core/series"
	"github.com/taibuivan/shelfsync/internal/platform/apperr"
)

/*
TestIDs_Validate checks the per-provider identifier syntax.
*/
func TestIDs_Validate(t *testing.T) {
	tests := []struct {
		name    string
		ids     series.IDs
		isValid bool
	}{
		{"mu_base36", series.IDs{series.MangaUpdates: "vy4abhh"}, true},
		{"mu_uppercase", series.IDs{series.MangaUpdates: "VY4ABHH"}, false},
		{"dex_uuid", series.IDs{series.MangaDex: "8573d280-7f60-411d-b146-c97dca3c62f2"}, true},
		{"dex_not_uuid", series.IDs{series.MangaDex: "8573d280"}, false},
		{"mal_digits", series.IDs{series.MyAnimeList: "2"}, true},
		{"mal_letters", series.IDs{series.MyAnimeList: "two"}, false},
		{"bato_digits", series.IDs{series.Bato: "81514"}, true},
		{"line_original", series.IDs{series.Webtoon: "o:95"}, true},
		{"line_canvas", series.IDs{series.Webtoon: "c:700001"}, true},
		{"line_bare", series.IDs{series.Webtoon: "95"}, false},
		{"unknown_tag", series.IDs{"anilist": "1"}, false},
		{"empty", series.IDs{}, false},
		{"only_blank_values", series.IDs{series.MangaUpdates: ""}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.ids.Validate()
			if tt.isValid {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, apperr.HasCode(err, apperr.CodeValidation))
		})
	}
}

/*
TestIDs_Absorb covers the identity rule: adopt, ignore equal, refuse different.
*/
func TestIDs_Absorb(t *testing.T) {
	known := series.IDs{series.MangaUpdates: "abc", series.MangaDex: "8573d280-7f60-411d-b146-c97dca3c62f2"}

	t.Run("adopts_unset_tag", func(t *testing.T) {
		out, err := known.Absorb(series.IDs{series.MyAnimeList: "2"})
		require.NoError(t, err)
		assert.Equal(t, "2", out[series.MyAnimeList])
		assert.NotContains(t, known, series.MyAnimeList, "receiver must not be modified")
	})

	t.Run("equal_value_is_noop", func(t *testing.T) {
		out, err := known.Absorb(series.IDs{series.MangaUpdates: "abc"})
		require.NoError(t, err)
		assert.True(t, out.Equal(known))
	})

	t.Run("different_value_conflicts", func(t *testing.T) {
		out, err := known.Absorb(series.IDs{series.MangaUpdates: "xyz"})
		require.Error(t, err)

		ae := apperr.As(err)
		require.NotNil(t, ae)
		assert.Equal(t, apperr.CodeIdentityConflict, ae.Code)
		assert.Equal(t, []string{"mu: abc != xyz"}, ae.Conflicts)
		assert.Equal(t, "abc", out[series.MangaUpdates], "conflicting value must not be adopted")
	})
}

/*
TestIDs_Keys returns tags in priority order regardless of map iteration.
*/
func TestIDs_Keys(t *testing.T) {
	ids := series.IDs{series.Webtoon: "o:1", series.Bato: "2", series.MangaUpdates: "a", series.MyAnimeList: ""}
	assert.Equal(t, []series.Provider{series.MangaUpdates, series.Bato, series.Webtoon}, ids.Keys())
}

/*
TestParseRole accepts the spellings used by the providers.
*/
func TestParseRole(t *testing.T) {
	tests := []struct {
		raw  string
		want series.Role
		ok   bool
	}{
		{"author", series.RoleAuthor, true},
		{"Artist", series.RoleArtist, true},
		{"Story & Art", series.RoleBoth, true},
		{"BOTH", series.RoleBoth, true},
		{"editor", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, ok := series.ParseRole(tt.raw)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
