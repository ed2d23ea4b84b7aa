// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package series_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/shelfsync/internal/core/series"
	"github.com/taibuivan/shelfsync/internal/platform/apperr"
)

// fixture returns a distinctive record for provider p.
func fixture(p series.Provider) *series.Record {
	stamp := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	record := &series.Record{
		Provider:          p,
		IDs:               series.IDs{p: "1"},
		Title:             "Title " + string(p),
		AltTitles:         []string{"Alt " + string(p), "Shared alt", "Title mu"},
		Type:              series.TypeManhwa,
		Description:       "Description " + string(p),
		Genres:            []string{"Genre " + string(p), "Action"},
		ProviderTimestamp: &stamp,
	}
	if p.AuthorCapable() {
		record.Authors = []series.Contribution{{Name: "Kim", Role: series.RoleBoth, IDs: series.IDs{p: "k-" + string(p)}}}
	} else {
		record.Authors = []series.Contribution{{Name: "Kim", Role: series.RoleBoth}}
	}
	return record
}

// subsets enumerates every non-empty subset of providers.
func subsets() [][]series.Provider {
	var out [][]series.Provider
	for mask := 1; mask < 1<<len(series.Priority); mask++ {
		var subset []series.Provider
		for i, p := range series.Priority {
			if mask&(1<<i) != 0 {
				subset = append(subset, p)
			}
		}
		out = append(out, subset)
	}
	return out
}

func perProvider(providers []series.Provider) map[series.Provider]*series.Record {
	records := map[series.Provider]*series.Record{}
	for _, p := range providers {
		records[p] = fixture(p)
	}
	return records
}

/*
TestMerge_PriorityInvariant: for every provider subset the highest-priority
provider supplies title, type and description.
*/
func TestMerge_PriorityInvariant(t *testing.T) {
	for _, subset := range subsets() {
		primary := subset[0]
		records := perProvider(subset)
		records[primary].Type = series.TypeManga

		merged, err := series.Merge(records, series.IDs{primary: "1"}, nil)
		require.NoError(t, err)

		assert.Equal(t, primary, merged.Primary, "subset %v", subset)
		assert.Equal(t, "Title "+string(primary), merged.Title)
		assert.Equal(t, "Description "+string(primary), merged.Description)
		assert.Equal(t, series.TypeManga, merged.Type)
	}
}

/*
TestMerge_GenreUnion: no secondary genre is lost and none appears twice.
*/
func TestMerge_GenreUnion(t *testing.T) {
	for _, subset := range subsets() {
		records := perProvider(subset)
		merged, err := series.Merge(records, series.IDs{}, nil)
		require.NoError(t, err)

		seen := map[string]bool{}
		for _, genre := range merged.Genres {
			assert.False(t, seen[genre], "duplicate genre %q in %v", genre, subset)
			seen[genre] = true
		}
		for _, record := range records {
			for _, genre := range record.Genres {
				assert.True(t, seen[genre], "genre %q lost in %v", genre, subset)
			}
		}
		assert.Equal(t, "Genre "+string(subset[0]), merged.Genres[0], "primary genres come first")
	}
}

/*
TestMerge_Idempotent: identical input yields byte-identical output.
*/
func TestMerge_Idempotent(t *testing.T) {
	providers := series.Priority
	ids := series.IDs{series.MangaUpdates: "1", series.MangaDex: "1"}

	first, err := series.Merge(perProvider(providers), ids, nil)
	require.NoError(t, err)
	firstJSON, err := json.Marshal(first)
	require.NoError(t, err)

	for range 20 {
		again, err := series.Merge(perProvider(providers), ids, nil)
		require.NoError(t, err)
		againJSON, err := json.Marshal(again)
		require.NoError(t, err)
		assert.Equal(t, string(firstJSON), string(againJSON))
	}
}

/*
TestMerge_AltTitles: the primary title never shows up as an alternate title.
*/
func TestMerge_AltTitles(t *testing.T) {
	records := perProvider([]series.Provider{series.MangaUpdates, series.MangaDex})

	merged, err := series.Merge(records, series.IDs{}, nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"Alt mu", "Shared alt", "Alt dex"}, merged.AltTitles)
}

/*
TestMerge_Authors: authors of MangaDex and MyAnimeList are folded in and merged
by role; authors of other secondaries are ignored.
*/
func TestMerge_Authors(t *testing.T) {
	records := perProvider([]series.Provider{series.MangaUpdates, series.MangaDex, series.Bato})

	merged, err := series.Merge(records, series.IDs{}, nil)
	require.NoError(t, err)

	require.Len(t, merged.Authors, 1)
	assert.Equal(t, series.IDs{series.MangaUpdates: "k-mu", series.MangaDex: "k-dex"}, merged.Authors[0].IDs)
	assert.Len(t, merged.Timestamps, 3)
}

/*
TestMerge_DoesNotMutateInput checks records stay untouched.
*/
func TestMerge_DoesNotMutateInput(t *testing.T) {
	records := perProvider([]series.Provider{series.MangaDex, series.MyAnimeList})

	_, err := series.Merge(records, series.IDs{}, nil)
	require.NoError(t, err)

	assert.Equal(t, fixture(series.MangaDex), records[series.MangaDex])
	assert.Equal(t, fixture(series.MyAnimeList), records[series.MyAnimeList])
}

/*
TestMerge_Empty refuses to invent a record.
*/
func TestMerge_Empty(t *testing.T) {
	_, err := series.Merge(map[series.Provider]*series.Record{}, series.IDs{}, nil)
	assert.Equal(t, http.StatusNotFound, apperr.Status(err))
}

/*
TestFailureFrom ranks provider failures 502 > 404 > 500.
*/
func TestFailureFrom(t *testing.T) {
	down := apperr.UpstreamUnavailable("MangaDex", errors.New("timeout"))
	missing := apperr.NotFound("MangaUpdates entry")
	broken := errors.New("boom")

	tests := []struct {
		name string
		errs []error
		want int
	}{
		{"all_timeouts", []error{down, down}, http.StatusBadGateway},
		{"not_found_then_down", []error{missing, down}, http.StatusBadGateway},
		{"not_found_and_unknown", []error{broken, missing}, http.StatusNotFound},
		{"unknown_only", []error{broken}, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, apperr.Status(series.FailureFrom(tt.errs)))
		})
	}
}
