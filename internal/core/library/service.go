// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package library

import (
	"context"
	"log/slog"

	"github.com/taibuivan/shelfsync/internal/platform/apperr"
	"github.com/taibuivan/shelfsync/pkg/uuidv7"
)

// # Service Layer

// Service reads and writes library entries.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

// NewService constructs a library [Service].
func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

func (service *Service) ListEntries(ctx context.Context, filter Filter, limit, offset int) ([]*Entry, int, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, 0, invalidStatus()
	}
	return service.repo.ListEntries(ctx, filter, limit, offset)
}

func (service *Service) GetEntry(ctx context.Context, seriesID string) (*Entry, error) {
	return service.repo.GetEntry(ctx, seriesID)
}

/*
SetStatus records the reading status of a stored series.

Returns:
  - *Entry: The written entry
  - error: ValidationError for an unknown status, NotFound when the series is not stored
*/
func (service *Service) SetStatus(ctx context.Context, seriesID string, status Status, source Source) (*Entry, error) {
	if !status.Valid() {
		return nil, invalidStatus()
	}

	written := &Entry{
		ID:       uuidv7.New(),
		SeriesID: seriesID,
		Status:   status,
		Source:   source,
	}
	if err := service.repo.UpsertEntry(ctx, written); err != nil {
		return nil, err
	}

	service.logger.Info("library_entry_written",
		slog.String("series_id", seriesID),
		slog.String("status", string(status)),
		slog.String("source", string(source)),
	)
	return written, nil
}

// LinkedEntries lists the entries a provider list synchronisation can push.
func (service *Service) LinkedEntries(ctx context.Context, p string) ([]*Linked, error) {
	return service.repo.LinkedEntries(ctx, p)
}

func (service *Service) RemoveEntry(ctx context.Context, seriesID string) error {
	return service.repo.DeleteEntry(ctx, seriesID)
}

func invalidStatus() error {
	return apperr.ValidationError("Unknown reading status", apperr.FieldError{
		Field:   FieldStatus,
		Message: "Must be one of: reading, plan_to_read, completed, dropped, on_hold, re_reading",
	})
}
