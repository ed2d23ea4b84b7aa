// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package mangaupdates

import (
	"context"
	"log/slog"
	"slices"
	"strings"

	"github.com/samber/lo"

	"github.com/taibuivan/shelfsync/internal/core/library"
	"github.com/taibuivan/shelfsync/internal/core/rating"
	"github.com/taibuivan/shelfsync/internal/core/series"
	"github.com/taibuivan/shelfsync/internal/integration/runlock"
	"github.com/taibuivan/shelfsync/internal/platform/apperr"
)

const lockName = "mangaupdates_sync"

// # Collaborators

// ListSource reads and edits the reading lists. [*Client] is one.
type ListSource interface {
	ListSeries(ctx context.Context, listID int) ([]Item, error)
	AddSeries(ctx context.Context, id string, listID int) error
	MoveSeries(ctx context.Context, id string, listID int) error
}

// SeriesImporter is satisfied by [*series.Service].
type SeriesImporter interface {
	FindByAnyID(ctx context.Context, ids series.IDs) (string, error)
	Import(ctx context.Context, ids series.IDs, follow bool) (*series.ImportResult, error)
}

// Library is satisfied by [*library.Service].
type Library interface {
	LinkedEntries(ctx context.Context, p string) ([]*library.Linked, error)
	SetStatus(ctx context.Context, seriesID string, status library.Status, source library.Source) (*library.Entry, error)
}

// RatingWriter is satisfied by [*rating.Service].
type RatingWriter interface {
	UpdateRatings(ctx context.Context, batch rating.Batch) (*rating.Result, error)
}

// Lists holds the list id of each reading status. Re-reading has no list of
// its own and shares the reading one.
type Lists struct {
	Reading    int
	PlanToRead int
	Completed  int
	Dropped    int
	OnHold     int
}

func (lists Lists) ids() []int {
	return []int{lists.Reading, lists.PlanToRead, lists.Completed, lists.Dropped, lists.OnHold}
}

func (lists Lists) listOf(status library.Status) int {
	switch status {
	case library.StatusPlanToRead:
		return lists.PlanToRead
	case library.StatusCompleted:
		return lists.Completed
	case library.StatusDropped:
		return lists.Dropped
	case library.StatusOnHold:
		return lists.OnHold
	}
	return lists.Reading
}

func (lists Lists) statusOf(listID int) library.Status {
	switch listID {
	case lists.PlanToRead:
		return library.StatusPlanToRead
	case lists.Completed:
		return library.StatusCompleted
	case lists.Dropped:
		return library.StatusDropped
	case lists.OnHold:
		return library.StatusOnHold
	}
	return library.StatusReading
}

// # Synchronisation

// Report summarises one run.
type Report struct {
	Listed   int            `json:"listed"`
	Pulled   int            `json:"pulled"`
	Pushed   int            `json:"pushed"`
	Imported int            `json:"imported"`
	Skipped  []string       `json:"skipped"`
	Ratings  *rating.Result `json:"ratings,omitempty"`
}

// Syncer keeps the MangaUpdates lists and the library in step.
type Syncer struct {
	source  ListSource
	lists   Lists
	series  SeriesImporter
	library Library
	ratings RatingWriter
	locker  runlock.Locker
	logger  *slog.Logger
}

func NewSyncer(source ListSource, lists Lists, importer SeriesImporter, store Library, ratings RatingWriter,
	locker runlock.Locker, logger *slog.Logger) *Syncer {
	return &Syncer{
		source:  source,
		lists:   lists,
		series:  importer,
		library: store,
		ratings: ratings,
		locker:  locker,
		logger:  logger,
	}
}

/*
Run performs one two-way synchronisation.

Description: A series on the same list as its library status is left alone.
Otherwise the more recent side wins: a list entry added after the library entry
was written pulls its status into the library, an older one is moved to the
list of the library status. Listed series that are not stored are imported;
library entries of series missing from every list are added to MangaUpdates.
Ratings read from the lists are stored last. A series that fails is skipped and
reported; it does not stop the run.

Returns:
  - Report: Counts and the skipped MangaUpdates ids
  - error: Conflict when another run holds the lock, or the failure to read the lists
*/
func (syncer *Syncer) Run(ctx context.Context) (Report, error) {
	release, err := runlock.Hold(ctx, syncer.locker, lockName, "A MangaUpdates synchronisation is already running", syncer.logger)
	if err != nil {
		return Report{}, err
	}
	defer release()

	remote := make(map[string]Item)
	for _, listID := range syncer.lists.ids() {
		items, err := syncer.source.ListSeries(ctx, listID)
		if err != nil {
			return Report{}, err
		}
		for _, item := range items {
			remote[item.ID] = item
		}
	}

	linked, err := syncer.library.LinkedEntries(ctx, string(series.MangaUpdates))
	if err != nil {
		return Report{}, err
	}
	local := lo.KeyBy(linked, func(entry *library.Linked) string { return entry.ProviderID })

	report := Report{Listed: len(remote), Skipped: []string{}}

	ids := lo.Keys(remote)
	slices.Sort(ids)
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		if err := syncer.reconcile(ctx, remote[id], local[id], &report); err != nil {
			syncer.skip(&report, id, err)
		}
	}

	for _, entry := range linked {
		if _, listed := remote[entry.ProviderID]; listed {
			continue
		}
		if err := syncer.source.AddSeries(ctx, entry.ProviderID, syncer.lists.listOf(entry.Status)); err != nil {
			syncer.skip(&report, entry.ProviderID, err)
			continue
		}
		report.Pushed++
	}

	report.Ratings, err = syncer.storeRatings(ctx, lo.Values(remote))

	syncer.logger.Info("mangaupdates_sync_finished",
		slog.Int("listed", report.Listed),
		slog.Int("pulled", report.Pulled),
		slog.Int("pushed", report.Pushed),
		slog.Int("imported", report.Imported),
		slog.Int("skipped", len(report.Skipped)),
	)
	return report, err
}

// reconcile settles one listed series against its library entry, nil when the
// series is not stored yet.
func (syncer *Syncer) reconcile(ctx context.Context, item Item, entry *library.Linked, report *Report) error {
	listed := syncer.lists.statusOf(item.ListID)

	switch {
	case entry == nil:
		seriesID, imported, err := syncer.resolve(ctx, item.ID)
		if err != nil {
			return err
		}
		if _, err := syncer.library.SetStatus(ctx, seriesID, listed, library.SourceMangaUpdates); err != nil {
			return err
		}
		if imported {
			report.Imported++
		}
		report.Pulled++

	case syncer.lists.listOf(entry.Status) == item.ListID:
		// In step.

	case item.Added.After(entry.UpdatedAt):
		if _, err := syncer.library.SetStatus(ctx, entry.SeriesID, listed, library.SourceMangaUpdates); err != nil {
			return err
		}
		report.Pulled++

	default:
		if err := syncer.source.MoveSeries(ctx, item.ID, syncer.lists.listOf(entry.Status)); err != nil {
			return err
		}
		report.Pushed++
	}
	return nil
}

// resolve returns the stored series of muID, importing it when unknown.
func (syncer *Syncer) resolve(ctx context.Context, muID string) (string, bool, error) {
	ids := series.IDs{series.MangaUpdates: muID}

	seriesID, err := syncer.series.FindByAnyID(ctx, ids)
	switch {
	case err == nil:
		return seriesID, false, nil
	case !apperr.HasCode(err, apperr.CodeNotFound):
		return "", false, err
	}

	result, err := syncer.series.Import(ctx, ids, true)
	if err != nil {
		return "", false, err
	}
	return result.ID, result.Created, nil
}

func (syncer *Syncer) skip(report *Report, id string, err error) {
	code := apperr.CodeInternal
	if ae := apperr.As(err); ae != nil {
		code = ae.Code
	}
	syncer.logger.Warn("mangaupdates_sync_series_skipped",
		slog.String("id", id),
		slog.String("code", code),
		slog.Any("error", err),
	)
	report.Skipped = append(report.Skipped, id)
}

// storeRatings writes the list ratings as one batch. List metadata carries no
// vote count. Values outside the rating scale are dropped.
func (syncer *Syncer) storeRatings(ctx context.Context, items []Item) (*rating.Result, error) {
	slices.SortFunc(items, func(a, b Item) int { return strings.Compare(a.ID, b.ID) })

	batch := rating.Batch{Provider: series.MangaUpdates}
	for _, item := range items {
		if item.Rating != nil && *item.Rating >= 0 && *item.Rating <= rating.MaxRating {
			batch.Scores = append(batch.Scores, rating.Score{ID: item.ID, Rating: *item.Rating})
		}
		if item.UserRating != nil && *item.UserRating >= rating.MinUserRating && *item.UserRating <= rating.MaxRating {
			batch.UserScores = append(batch.UserScores, rating.UserScore{ID: item.ID, Rating: *item.UserRating})
		}
	}
	if len(batch.Scores) == 0 && len(batch.UserScores) == 0 {
		return nil, nil
	}

	result, err := syncer.ratings.UpdateRatings(ctx, batch)
	if err != nil {
		syncer.logger.Error("mangaupdates_ratings_failed", slog.Any("error", err))
		return nil, err
	}
	return result, nil
}
