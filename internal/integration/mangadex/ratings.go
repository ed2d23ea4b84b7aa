// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package mangadex

import (
	"context"
	"log/slog"
	"slices"

	"github.com/samber/lo"

	"github.com/taibuivan/shelfsync/internal/core/rating"
	"github.com/taibuivan/shelfsync/internal/core/series"
	"github.com/taibuivan/shelfsync/internal/integration/runlock"
)

// RatingSource reads the followed titles and their ratings. [*Client] is one.
type RatingSource interface {
	StatusSource
	Statistics(ctx context.Context, ids []string) ([]rating.Score, error)
	UserRatings(ctx context.Context, ids []string) ([]rating.UserScore, error)
}

// RatingWriter is satisfied by [*rating.Service].
type RatingWriter interface {
	UpdateRatings(ctx context.Context, batch rating.Batch) (*rating.Result, error)
}

// RatingsSyncer copies the ratings of followed titles into the rating store.
type RatingsSyncer struct {
	source RatingSource
	writer RatingWriter
	locker runlock.Locker
	logger *slog.Logger
}

func NewRatingsSyncer(source RatingSource, writer RatingWriter, locker runlock.Locker, logger *slog.Logger) *RatingsSyncer {
	return &RatingsSyncer{source: source, writer: writer, locker: locker, logger: logger}
}

/*
Run stores the community and personal ratings of every followed title.

Description: Titles that are not stored yet come back in NotExist; the status
synchronisation imports them and the next run rates them.

Returns:
  - *rating.Result: What the batch changed
  - error: Conflict when another run holds the lock, or the failure to read MangaDex
*/
func (syncer *RatingsSyncer) Run(ctx context.Context) (*rating.Result, error) {
	release, err := runlock.Hold(ctx, syncer.locker, ratingsLockName, "A MangaDex rating synchronisation is already running", syncer.logger)
	if err != nil {
		return nil, err
	}
	defer release()

	statuses, err := syncer.source.Statuses(ctx)
	if err != nil {
		return nil, err
	}
	ids := lo.Keys(statuses)
	slices.Sort(ids)

	batch := rating.Batch{Provider: series.MangaDex}
	if batch.Scores, err = syncer.source.Statistics(ctx, ids); err != nil {
		return nil, err
	}
	if batch.UserScores, err = syncer.source.UserRatings(ctx, ids); err != nil {
		return nil, err
	}

	if len(batch.Scores) == 0 && len(batch.UserScores) == 0 {
		syncer.logger.Info("mangadex_ratings_empty", slog.Int("followed", len(ids)))
		return &rating.Result{NotExist: []string{}}, nil
	}
	return syncer.writer.UpdateRatings(ctx, batch)
}

var _ RatingSource = (*Client)(nil)
