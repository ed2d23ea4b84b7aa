// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package runlock_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/shelfsync/internal/integration/runlock"
	"github.com/taibuivan/shelfsync/internal/platform/apperr"
	"github.com/taibuivan/shelfsync/internal/platform/redis"
)

type fakeLocker struct {
	err         error
	ttl         time.Duration
	releasedErr error
	released    bool
}

func (f *fakeLocker) Acquire(_ context.Context, _ string, ttl time.Duration) (runlock.Releaser, error) {
	f.ttl = ttl
	if f.err != nil {
		return nil, f.err
	}
	return f, nil
}

func (f *fakeLocker) Release(ctx context.Context) error {
	f.releasedErr = ctx.Err()
	f.released = true
	return nil
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestHold_Refused(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code string
	}{
		{"held", redis.ErrLockHeld, apperr.CodeConflict},
		{"redis_down", errors.New("dial tcp: connection refused"), apperr.CodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runlock.Hold(context.Background(), &fakeLocker{err: tt.err}, "job", "busy", quietLogger())
			assert.True(t, apperr.HasCode(err, tt.code))
		})
	}
}

/*
TestHold_ReleaseAfterCancel unlocks even when the run's context is gone.
*/
func TestHold_ReleaseAfterCancel(t *testing.T) {
	locker := &fakeLocker{}
	ctx, cancel := context.WithCancel(context.Background())

	release, err := runlock.Hold(ctx, locker, "job", "busy", quietLogger())
	require.NoError(t, err)
	assert.Equal(t, runlock.TTL, locker.ttl)

	cancel()
	release()

	assert.True(t, locker.released)
	assert.NoError(t, locker.releasedErr)
}
