// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package series_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/shelfsync/internal/core/series"
	"github.com/taibuivan/shelfsync/internal/platform/apperr"
)

const dexID = "8573d280-7f60-411d-b146-c97dca3c62f2"

// # Fakes

type fakeFetcher struct {
	provider series.Provider
	record   *series.Record
	err      error
	calls    []string
}

func (f *fakeFetcher) Provider() series.Provider { return f.provider }

func (f *fakeFetcher) FetchSeries(_ context.Context, id string) (*series.Record, error) {
	f.calls = append(f.calls, id)
	if f.err != nil {
		return nil, f.err
	}
	return f.record, nil
}

type txKey struct{}

// fakeRepository stages the authors of a unit of work and keeps them only when
// the unit succeeds.
type fakeRepository struct {
	matches   []string
	upserted  *series.Series
	upsertErr error
	authors   *stagingAuthors
}

func (r *fakeRepository) FindSeriesByAnyID(context.Context, series.IDs) ([]string, error) {
	return r.matches, nil
}

func (r *fakeRepository) UpsertMergedRecord(ctx context.Context, s *series.Series) (string, error) {
	if ctx.Value(txKey{}) == nil {
		return "", errors.New("upsert outside a transaction")
	}
	if r.upsertErr != nil {
		return "", r.upsertErr
	}
	r.upserted = s
	return s.ID, nil
}

func (r *fakeRepository) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	err := fn(context.WithValue(ctx, txKey{}, true))
	if r.authors != nil {
		if err != nil {
			r.authors.pending = nil
		} else {
			r.authors.created = append(r.authors.created, r.authors.pending...)
			r.authors.pending = nil
		}
	}
	return err
}

func (r *fakeRepository) GetSeries(context.Context, string) (*series.Series, error) {
	return nil, apperr.NotFound("Series")
}

func (r *fakeRepository) ListSeries(context.Context, series.Filter, int, int) ([]*series.Series, int, error) {
	return nil, 0, nil
}

type fakeAuthors struct{}

func (fakeAuthors) ResolveCredits(_ context.Context, authors []series.Contribution) ([]series.Credit, error) {
	credits := make([]series.Credit, len(authors))
	for i, author := range authors {
		credits[i] = series.Credit{AuthorID: "author-" + author.Name, Role: author.Role}
	}
	return credits, nil
}

// stagingAuthors creates one author per contribution inside the caller's transaction.
type stagingAuthors struct {
	pending []string
	created []string
}

func (a *stagingAuthors) ResolveCredits(ctx context.Context, authors []series.Contribution) ([]series.Credit, error) {
	if ctx.Value(txKey{}) == nil {
		return nil, errors.New("authors resolved outside a transaction")
	}
	credits := make([]series.Credit, len(authors))
	for i, author := range authors {
		a.pending = append(a.pending, author.Name)
		credits[i] = series.Credit{AuthorID: "author-" + author.Name, Role: author.Role}
	}
	return credits, nil
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func dexRecord(discovered series.IDs) *series.Record {
	ids := series.IDs{series.MangaDex: dexID}
	for p, v := range discovered {
		ids[p] = v
	}
	return &series.Record{
		Provider: series.MangaDex,
		IDs:      ids,
		Title:    "Dex title",
		Type:     series.TypeManga,
		Genres:   []string{"Action", "isekai"},
		Authors:  []series.Contribution{{Name: "Kim", Role: series.RoleAuthor, IDs: series.IDs{series.MangaDex: "a"}}},
	}
}

func muRecord() *series.Record {
	return &series.Record{
		Provider:  series.MangaUpdates,
		IDs:       series.IDs{series.MangaUpdates: "vy4abhh"},
		Title:     "MU title",
		AltTitles: []string{"Dex title", "MU title"},
		Type:      series.TypeManhwa,
		Genres:    []string{"Action", "Drama"},
	}
}

// # Reconcile

/*
TestService_Reconcile_DexOnly: discovered foreign ids join the result but are
not fetched without follow.
*/
func TestService_Reconcile_DexOnly(t *testing.T) {
	dex := &fakeFetcher{provider: series.MangaDex, record: dexRecord(series.IDs{series.MangaUpdates: "vy4abhh"})}
	mu := &fakeFetcher{provider: series.MangaUpdates, record: muRecord()}
	service := series.NewService(&fakeRepository{}, fakeAuthors{}, quietLogger(), dex, mu)

	result, err := service.Reconcile(context.Background(), series.IDs{series.MangaDex: dexID}, false)
	require.NoError(t, err)

	assert.Equal(t, series.IDs{series.MangaDex: dexID, series.MangaUpdates: "vy4abhh"}, result.Record.IDs)
	assert.Equal(t, series.TypeManga, result.Record.Type)
	assert.Empty(t, mu.calls)
	assert.Equal(t, []series.Outcome{{Provider: series.MangaDex, Status: http.StatusOK}}, result.Outcomes)
}

/*
TestService_Reconcile_Follow also fetches identifiers discovered on the way.
*/
func TestService_Reconcile_Follow(t *testing.T) {
	dex := &fakeFetcher{provider: series.MangaDex, record: dexRecord(series.IDs{series.MangaUpdates: "vy4abhh"})}
	mu := &fakeFetcher{provider: series.MangaUpdates, record: muRecord()}
	service := series.NewService(&fakeRepository{}, fakeAuthors{}, quietLogger(), dex, mu)

	result, err := service.Reconcile(context.Background(), series.IDs{series.MangaDex: dexID}, true)
	require.NoError(t, err)

	assert.Equal(t, []string{"vy4abhh"}, mu.calls)
	assert.Equal(t, series.MangaUpdates, result.Record.Primary)
}

/*
TestService_Reconcile_MuAndDex: MangaUpdates is primary and MangaDex genres are appended.
*/
func TestService_Reconcile_MuAndDex(t *testing.T) {
	dex := &fakeFetcher{provider: series.MangaDex, record: dexRecord(nil)}
	mu := &fakeFetcher{provider: series.MangaUpdates, record: muRecord()}
	service := series.NewService(&fakeRepository{}, fakeAuthors{}, quietLogger(), dex, mu)

	result, err := service.Reconcile(context.Background(),
		series.IDs{series.MangaUpdates: "vy4abhh", series.MangaDex: dexID}, false)
	require.NoError(t, err)

	record := result.Record
	assert.Equal(t, "MU title", record.Title)
	assert.Equal(t, series.TypeManhwa, record.Type)
	assert.Equal(t, []string{"Action", "Drama", "isekai"}, record.Genres)
	assert.Equal(t, []string{"Dex title"}, record.AltTitles)
	assert.Len(t, result.Outcomes, 2)
}

/*
TestService_Reconcile_IdentityConflict: a discovered id that differs from a
known one aborts the reconciliation.
*/
func TestService_Reconcile_IdentityConflict(t *testing.T) {
	dex := &fakeFetcher{provider: series.MangaDex, record: dexRecord(series.IDs{series.MangaUpdates: "xyz"})}
	service := series.NewService(&fakeRepository{}, fakeAuthors{}, quietLogger(), dex)

	_, err := service.Reconcile(context.Background(),
		series.IDs{series.MangaUpdates: "abc", series.MangaDex: dexID}, false)

	require.Error(t, err)
	assert.True(t, apperr.HasCode(err, apperr.CodeIdentityConflict))
}

/*
TestService_Reconcile_AllTimeouts surfaces 502, not 404 or 500.
*/
func TestService_Reconcile_AllTimeouts(t *testing.T) {
	timeout := apperr.UpstreamUnavailable("MangaDex", context.DeadlineExceeded)
	dex := &fakeFetcher{provider: series.MangaDex, err: timeout}
	mu := &fakeFetcher{provider: series.MangaUpdates, err: apperr.NotFound("MangaUpdates entry")}
	service := series.NewService(&fakeRepository{}, fakeAuthors{}, quietLogger(), dex, mu)

	_, err := service.Reconcile(context.Background(),
		series.IDs{series.MangaUpdates: "abc", series.MangaDex: dexID}, false)

	assert.Equal(t, http.StatusBadGateway, apperr.Status(err))
}

/*
TestService_Reconcile_PartialSuccess returns a record when one provider answered.
*/
func TestService_Reconcile_PartialSuccess(t *testing.T) {
	dex := &fakeFetcher{provider: series.MangaDex, err: apperr.UpstreamUnavailable("MangaDex", errors.New("503"))}
	mu := &fakeFetcher{provider: series.MangaUpdates, record: muRecord()}
	service := series.NewService(&fakeRepository{}, fakeAuthors{}, quietLogger(), dex, mu)

	result, err := service.Reconcile(context.Background(),
		series.IDs{series.MangaUpdates: "vy4abhh", series.MangaDex: dexID}, false)
	require.NoError(t, err)

	assert.Equal(t, "MU title", result.Record.Title)
	assert.Contains(t, result.Outcomes, series.Outcome{Provider: series.MangaDex, Status: http.StatusBadGateway})
}

/*
TestService_Reconcile_ValidatesFirst: malformed ids never reach a provider.
*/
func TestService_Reconcile_ValidatesFirst(t *testing.T) {
	dex := &fakeFetcher{provider: series.MangaDex, record: dexRecord(nil)}
	service := series.NewService(&fakeRepository{}, fakeAuthors{}, quietLogger(), dex)

	_, err := service.Reconcile(context.Background(), series.IDs{series.MangaDex: "not-a-uuid"}, false)

	assert.True(t, apperr.HasCode(err, apperr.CodeValidation))
	assert.Empty(t, dex.calls)
}

/*
TestService_Reconcile_DisabledProvider reports skipped providers and refuses a
request with nothing to fetch.
*/
func TestService_Reconcile_DisabledProvider(t *testing.T) {
	mu := &fakeFetcher{provider: series.MangaUpdates, record: muRecord()}
	service := series.NewService(&fakeRepository{}, fakeAuthors{}, quietLogger(), mu)

	result, err := service.Reconcile(context.Background(),
		series.IDs{series.MangaUpdates: "vy4abhh", series.MyAnimeList: "2"}, false)
	require.NoError(t, err)
	assert.Contains(t, result.Outcomes, series.Outcome{Provider: series.MyAnimeList, Skipped: true})

	_, err = service.Reconcile(context.Background(), series.IDs{series.MyAnimeList: "2"}, false)
	assert.True(t, apperr.HasCode(err, apperr.CodeValidation))
}

// # Lookup & Import

/*
TestService_FindByAnyID maps 0, 1 and several matches to their outcomes.
*/
func TestService_FindByAnyID(t *testing.T) {
	tests := []struct {
		name    string
		matches []string
		code    string
	}{
		{"none", nil, apperr.CodeNotFound},
		{"one", []string{"s1"}, ""},
		{"several", []string{"s1", "s2"}, apperr.CodeMergeRequired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := series.NewService(&fakeRepository{matches: tt.matches}, fakeAuthors{}, quietLogger())

			id, err := service.FindByAnyID(context.Background(), series.IDs{series.MangaUpdates: "abc"})
			if tt.code == "" {
				require.NoError(t, err)
				assert.Equal(t, "s1", id)
				return
			}
			assert.True(t, apperr.HasCode(err, tt.code))
			if tt.code == apperr.CodeMergeRequired {
				assert.Equal(t, tt.matches, apperr.As(err).Conflicts)
			}
		})
	}
}

/*
TestService_Import inserts unknown series and updates known ones.
*/
func TestService_Import(t *testing.T) {
	mu := &fakeFetcher{provider: series.MangaUpdates, record: muRecord()}

	t.Run("insert", func(t *testing.T) {
		repo := &fakeRepository{}
		service := series.NewService(repo, fakeAuthors{}, quietLogger(), mu)

		result, err := service.Import(context.Background(), series.IDs{series.MangaUpdates: "vy4abhh"}, false)
		require.NoError(t, err)

		assert.True(t, result.Created)
		assert.Equal(t, "mu-title", repo.upserted.Slug)
		assert.Len(t, repo.upserted.ID, 36)
	})

	t.Run("update", func(t *testing.T) {
		repo := &fakeRepository{matches: []string{"existing"}}
		service := series.NewService(repo, fakeAuthors{}, quietLogger(), mu)

		result, err := service.Import(context.Background(), series.IDs{series.MangaUpdates: "vy4abhh"}, false)
		require.NoError(t, err)

		assert.False(t, result.Created)
		assert.Equal(t, "existing", result.ID)
	})

	t.Run("merge_required", func(t *testing.T) {
		repo := &fakeRepository{matches: []string{"a", "b"}}
		service := series.NewService(repo, fakeAuthors{}, quietLogger(), mu)

		_, err := service.Import(context.Background(), series.IDs{series.MangaUpdates: "vy4abhh"}, false)
		assert.True(t, apperr.HasCode(err, apperr.CodeMergeRequired))
		assert.Nil(t, repo.upserted)
	})
}

/*
TestService_Import_Atomic commits the authors created for the credits together
with the series, and drops them when the series write fails.
*/
func TestService_Import_Atomic(t *testing.T) {
	tests := []struct {
		name        string
		upsertErr   error
		wantCreated []string
	}{
		{"committed", nil, []string{"Kim"}},
		{"identity_conflict", apperr.IdentityConflict("MangaDex id already stored", "other"), nil},
		{"database_down", apperr.Internal(errors.New("connection reset")), nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dex := &fakeFetcher{provider: series.MangaDex, record: dexRecord(nil)}
			authors := &stagingAuthors{}
			repo := &fakeRepository{upsertErr: tt.upsertErr, authors: authors}
			service := series.NewService(repo, authors, quietLogger(), dex)

			result, err := service.Import(context.Background(), series.IDs{series.MangaDex: dexID}, false)

			assert.Equal(t, tt.wantCreated, authors.created)
			if tt.upsertErr != nil {
				assert.ErrorIs(t, err, tt.upsertErr)
				assert.Nil(t, result)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, []series.Credit{{AuthorID: "author-Kim", Role: series.RoleAuthor}}, repo.upserted.Credits)
		})
	}
}

// # URL extraction

type fakeExtractor struct {
	fakeFetcher
	host string
	err  error
}

func (f *fakeExtractor) ExtractID(_ context.Context, rawURL string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	if rawURL != f.host {
		return "", series.UnsupportedURL(f.provider)
	}
	return "id-from-" + f.host, nil
}

/*
TestService_ExtractID asks every enabled extractor in priority order and
stops on the first that owns the URL.
*/
func TestService_ExtractID(t *testing.T) {
	mu := &fakeExtractor{fakeFetcher: fakeFetcher{provider: series.MangaUpdates}, host: "mu-url"}
	dex := &fakeExtractor{fakeFetcher: fakeFetcher{provider: series.MangaDex}, host: "dex-url"}
	service := series.NewService(&fakeRepository{}, fakeAuthors{}, quietLogger(), dex, mu)

	tests := []struct {
		name     string
		url      string
		provider series.Provider
		wantCode string
	}{
		{"mangaupdates", "mu-url", series.MangaUpdates, ""},
		{"mangadex", "dex-url", series.MangaDex, ""},
		{"unknown", "https://example.com/series/1", "", apperr.CodeValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider, id, err := service.ExtractID(context.Background(), tt.url)
			if tt.wantCode != "" {
				assert.True(t, apperr.HasCode(err, tt.wantCode))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.provider, provider)
			assert.Equal(t, "id-from-"+tt.url, id)
		})
	}
}

func TestService_ExtractID_UpstreamFailure(t *testing.T) {
	mu := &fakeExtractor{
		fakeFetcher: fakeFetcher{provider: series.MangaUpdates},
		err:         apperr.UpstreamUnavailable("MangaUpdates", errors.New("timeout")),
	}
	service := series.NewService(&fakeRepository{}, fakeAuthors{}, quietLogger(), mu)

	_, _, err := service.ExtractID(context.Background(), "https://www.mangaupdates.com/series.html?id=1")
	assert.Equal(t, http.StatusBadGateway, apperr.Status(err))
}
