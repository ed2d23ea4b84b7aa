// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package mangadex

import (
	"context"
	"log/slog"
	"slices"

	"github.com/samber/lo"

	"github.com/taibuivan/shelfsync/internal/core/library"
	"github.com/taibuivan/shelfsync/internal/core/series"
	"github.com/taibuivan/shelfsync/internal/integration/runlock"
	"github.com/taibuivan/shelfsync/internal/platform/apperr"
)

// Run locks, see [runlock.Hold].
const (
	lockName        = "mangadex_sync"
	ratingsLockName = "mangadex_ratings"
)

// # Collaborators

// StatusSource lists the followed titles of the account.
type StatusSource interface {
	Statuses(ctx context.Context) (map[string]library.Status, error)
}

// SeriesImporter is satisfied by [*series.Service].
type SeriesImporter interface {
	FindByAnyID(ctx context.Context, ids series.IDs) (string, error)
	Import(ctx context.Context, ids series.IDs, follow bool) (*series.ImportResult, error)
}

// StatusWriter is satisfied by [*library.Service].
type StatusWriter interface {
	SetStatus(ctx context.Context, seriesID string, status library.Status, source library.Source) (*library.Entry, error)
}

// # Synchronisation

// Report summarises one run.
type Report struct {
	Followed int      `json:"followed"`
	Updated  int      `json:"updated"`
	Imported int      `json:"imported"`
	Skipped  []string `json:"skipped"`
}

// Syncer copies MangaDex reading statuses into the library.
type Syncer struct {
	source  StatusSource
	series  SeriesImporter
	library StatusWriter
	locker  runlock.Locker
	logger  *slog.Logger
}

func NewSyncer(source StatusSource, importer SeriesImporter, writer StatusWriter, locker runlock.Locker, logger *slog.Logger) *Syncer {
	return &Syncer{
		source:  source,
		series:  importer,
		library: writer,
		locker:  locker,
		logger:  logger,
	}
}

/*
Run performs one synchronisation.

Description: Followed titles already stored get their status written. Unknown
titles are reconciled from their MangaDex id, following discovered identifiers,
and imported first. A title whose identifiers match several stored series, or
whose reconciliation fails, is skipped and reported; it does not stop the run.

Returns:
  - Report: Counts and the skipped MangaDex ids
  - error: Conflict when another run holds the lock, or the failure to read the follow list
*/
func (syncer *Syncer) Run(ctx context.Context) (Report, error) {
	release, err := runlock.Hold(ctx, syncer.locker, lockName, "A MangaDex synchronisation is already running", syncer.logger)
	if err != nil {
		return Report{}, err
	}
	defer release()

	statuses, err := syncer.source.Statuses(ctx)
	if err != nil {
		return Report{}, err
	}

	report := Report{Followed: len(statuses), Skipped: []string{}}
	ids := lo.Keys(statuses)
	slices.Sort(ids)

	for _, dexID := range ids {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		seriesID, imported, err := syncer.resolve(ctx, dexID)
		if err != nil {
			syncer.logger.Warn("mangadex_sync_title_skipped",
				slog.String("id", dexID),
				slog.String("code", codeOf(err)),
				slog.Any("error", err),
			)
			report.Skipped = append(report.Skipped, dexID)
			continue
		}
		if imported {
			report.Imported++
		}

		if _, err := syncer.library.SetStatus(ctx, seriesID, statuses[dexID], library.SourceMangaDex); err != nil {
			syncer.logger.Warn("mangadex_sync_status_failed",
				slog.String("id", dexID),
				slog.String("series_id", seriesID),
				slog.Any("error", err),
			)
			report.Skipped = append(report.Skipped, dexID)
			continue
		}
		report.Updated++
	}

	syncer.logger.Info("mangadex_sync_finished",
		slog.Int("followed", report.Followed),
		slog.Int("updated", report.Updated),
		slog.Int("imported", report.Imported),
		slog.Int("skipped", len(report.Skipped)),
	)
	return report, nil
}

// resolve returns the stored series of dexID, importing it when unknown.
func (syncer *Syncer) resolve(ctx context.Context, dexID string) (string, bool, error) {
	ids := series.IDs{series.MangaDex: dexID}

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

func codeOf(err error) string {
	if ae := apperr.As(err); ae != nil {
		return ae.Code
	}
	return apperr.CodeInternal
}
