// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package series_test

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/shelfsync/internal/core/series"
)

/*
TestMergeAuthorTypes collapses one person credited twice into role Both.
*/
func TestMergeAuthorTypes(t *testing.T) {
	tests := []struct {
		name    string
		authors []series.Contribution
		want    []series.Contribution
	}{
		{
			name: "same_id_two_roles",
			authors: []series.Contribution{
				{Name: "ONE", Role: series.RoleAuthor, IDs: series.IDs{series.MangaUpdates: "a1"}},
				{Name: "Murata", Role: series.RoleArtist, IDs: series.IDs{series.MangaUpdates: "b2"}},
				{Name: "ONE", Role: series.RoleArtist, IDs: series.IDs{series.MangaUpdates: "a1"}},
			},
			want: []series.Contribution{
				{Name: "ONE", Role: series.RoleBoth, IDs: series.IDs{series.MangaUpdates: "a1"}},
				{Name: "Murata", Role: series.RoleArtist, IDs: series.IDs{series.MangaUpdates: "b2"}},
			},
		},
		{
			name: "same_role_twice_stays",
			authors: []series.Contribution{
				{Name: "ONE", Role: series.RoleAuthor, IDs: series.IDs{series.MangaDex: "x"}},
				{Name: "ONE", Role: series.RoleAuthor, IDs: series.IDs{series.MangaDex: "x"}},
			},
			want: []series.Contribution{
				{Name: "ONE", Role: series.RoleAuthor, IDs: series.IDs{series.MangaDex: "x"}},
			},
		},
		{
			name: "keyed_by_name_without_ids",
			authors: []series.Contribution{
				{Name: "Kim", Role: series.RoleAuthor},
				{Name: "Lee", Role: series.RoleArtist},
				{Name: "Kim", Role: series.RoleArtist},
			},
			want: []series.Contribution{
				{Name: "Kim", Role: series.RoleBoth, IDs: series.IDs{}},
				{Name: "Lee", Role: series.RoleArtist, IDs: series.IDs{}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, series.MergeAuthorTypes(tt.authors))
		})
	}
}

/*
TestMergeAuthorIDs unions the identifiers of one person seen by several providers.
*/
func TestMergeAuthorIDs(t *testing.T) {
	authors := []series.Contribution{
		{Name: "ONE", Role: series.RoleBoth, IDs: series.IDs{series.MangaUpdates: "a1"}},
		{Name: "ONE", Role: series.RoleBoth, IDs: series.IDs{series.MangaDex: "d1"}},
		{Name: "One", Role: series.RoleBoth, IDs: series.IDs{series.MyAnimeList: "9"}},
	}

	merged := series.MergeAuthorIDs(authors, 3, nil)

	assert.Equal(t, []series.Contribution{{
		Name: "ONE",
		Role: series.RoleBoth,
		IDs:  series.IDs{series.MangaUpdates: "a1", series.MangaDex: "d1", series.MyAnimeList: "9"},
	}}, merged)
}

/*
TestMergeAuthorIDs_GroupLargerThanSources keeps distinct people apart.
*/
func TestMergeAuthorIDs_GroupLargerThanSources(t *testing.T) {
	authors := []series.Contribution{
		{Name: "A", Role: series.RoleAuthor, IDs: series.IDs{series.MangaUpdates: "a"}},
		{Name: "B", Role: series.RoleAuthor, IDs: series.IDs{series.MangaUpdates: "b"}},
		{Name: "C", Role: series.RoleAuthor, IDs: series.IDs{series.MangaDex: "c"}},
		{Name: "D", Role: series.RoleArtist, IDs: series.IDs{series.MangaUpdates: "d"}},
		{Name: "D", Role: series.RoleArtist, IDs: series.IDs{series.MangaDex: "d"}},
	}

	merged := series.MergeAuthorIDs(authors, 2, nil)

	assert.Len(t, merged, 4)
	assert.Equal(t, series.IDs{series.MangaUpdates: "d", series.MangaDex: "d"}, merged[3].IDs)
}

/*
TestMergeAuthorIDs_ConflictReturnsInput is the partial-merge-on-conflict policy:
the list comes back unmerged and a warning is logged.
*/
func TestMergeAuthorIDs_ConflictReturnsInput(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&logs, nil))

	authors := []series.Contribution{
		{Name: "Kim", Role: series.RoleAuthor, IDs: series.IDs{series.MyAnimeList: "1"}},
		{Name: "Kim", Role: series.RoleAuthor, IDs: series.IDs{series.MyAnimeList: "2"}},
		{Name: "Lee", Role: series.RoleArtist, IDs: series.IDs{series.MangaDex: "x"}},
		{Name: "Lee", Role: series.RoleArtist, IDs: series.IDs{series.MangaUpdates: "y"}},
	}

	merged := series.MergeAuthorIDs(authors, 2, logger)

	assert.Equal(t, authors, merged)
	assert.Contains(t, logs.String(), `"level":"WARN"`)
	assert.Contains(t, logs.String(), "author_id_merge_conflict")
}
