// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package mangadex_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/shelfsync/internal/core/library"
	"github.com/taibuivan/shelfsync/internal/core/series"
	"github.com/taibuivan/shelfsync/internal/integration/mangadex"
	"github.com/taibuivan/shelfsync/internal/integration/runlock"
	"github.com/taibuivan/shelfsync/internal/platform/apperr"
	"github.com/taibuivan/shelfsync/internal/platform/redis"
)

// # Fakes

type staticSource struct {
	statuses map[string]library.Status
	err      error
}

func (s staticSource) Statuses(context.Context) (map[string]library.Status, error) {
	return s.statuses, s.err
}

// fakeImporter knows the stored series by MangaDex id.
type fakeImporter struct {
	stored    map[string]string
	importErr map[string]error
	imported  []string
}

func (f *fakeImporter) FindByAnyID(_ context.Context, ids series.IDs) (string, error) {
	if id, found := f.stored[ids.Get(series.MangaDex)]; found {
		return id, nil
	}
	return "", apperr.NotFound("Series")
}

func (f *fakeImporter) Import(_ context.Context, ids series.IDs, follow bool) (*series.ImportResult, error) {
	dexID := ids.Get(series.MangaDex)
	if err := f.importErr[dexID]; err != nil {
		return nil, err
	}
	f.imported = append(f.imported, dexID)
	return &series.ImportResult{ID: "series-" + dexID, Created: follow}, nil
}

type fakeWriter struct {
	written map[string]library.Status
}

func (f *fakeWriter) SetStatus(_ context.Context, seriesID string, status library.Status, source library.Source) (*library.Entry, error) {
	if source != library.SourceMangaDex {
		return nil, errors.New("unexpected source")
	}
	f.written[seriesID] = status
	return &library.Entry{SeriesID: seriesID, Status: status, Source: source}, nil
}

type fakeLocker struct {
	held     bool
	released int
}

func (f *fakeLocker) Acquire(context.Context, string, time.Duration) (runlock.Releaser, error) {
	if f.held {
		return nil, redis.ErrLockHeld
	}
	f.held = true
	return f, nil
}

func (f *fakeLocker) Release(context.Context) error {
	f.held = false
	f.released++
	return nil
}

// # Run

/*
TestSyncer_Run updates stored titles, imports unknown ones and skips the rest.
*/
func TestSyncer_Run(t *testing.T) {
	source := staticSource{statuses: map[string]library.Status{
		"dex-stored":  library.StatusReading,
		"dex-new":     library.StatusPlanToRead,
		"dex-merge":   library.StatusDropped,
		"dex-offline": library.StatusCompleted,
	}}
	importer := &fakeImporter{
		stored: map[string]string{"dex-stored": "s1"},
		importErr: map[string]error{
			"dex-merge":   apperr.MergeRequired("s2", "s3"),
			"dex-offline": apperr.UpstreamUnavailable("MangaDex", errors.New("timeout")),
		},
	}
	writer := &fakeWriter{written: map[string]library.Status{}}
	locker := &fakeLocker{}

	report, err := mangadex.NewSyncer(source, importer, writer, locker, quietLogger()).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, mangadex.Report{
		Followed: 4,
		Updated:  2,
		Imported: 1,
		Skipped:  []string{"dex-merge", "dex-offline"},
	}, report)
	assert.Equal(t, map[string]library.Status{
		"s1":             library.StatusReading,
		"series-dex-new": library.StatusPlanToRead,
	}, writer.written)
	assert.Equal(t, []string{"dex-new"}, importer.imported)
	assert.Equal(t, 1, locker.released)
}

/*
TestSyncer_Run_LockHeld refuses a second concurrent run.
*/
func TestSyncer_Run_LockHeld(t *testing.T) {
	locker := &fakeLocker{held: true}
	syncer := mangadex.NewSyncer(staticSource{}, &fakeImporter{}, &fakeWriter{}, locker, quietLogger())

	_, err := syncer.Run(context.Background())

	assert.True(t, apperr.HasCode(err, apperr.CodeConflict))
	assert.Zero(t, locker.released)
}

/*
TestSyncer_Run_SourceFailure aborts the run and still releases the lock.
*/
func TestSyncer_Run_SourceFailure(t *testing.T) {
	locker := &fakeLocker{}
	source := staticSource{err: apperr.UpstreamUnavailable("MangaDex", errors.New("refused"))}
	syncer := mangadex.NewSyncer(source, &fakeImporter{}, &fakeWriter{}, locker, quietLogger())

	_, err := syncer.Run(context.Background())

	assert.True(t, apperr.HasCode(err, apperr.CodeUpstreamUnavailable))
	assert.False(t, locker.held)
}
