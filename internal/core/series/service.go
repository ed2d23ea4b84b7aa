// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package series

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/taibuivan/shelfsync/internal/platform/apperr"
	"github.com/taibuivan/shelfsync/pkg/slug"
	"github.com/taibuivan/shelfsync/pkg/uuidv7"
)

// # Collaborators

// Fetcher is implemented by every provider adapter.
type Fetcher interface {
	Provider() Provider
	FetchSeries(ctx context.Context, id string) (*Record, error)
}

// Extractor is implemented by adapters able to parse a shared URL into an identifier.
type Extractor interface {
	Provider() Provider
	ExtractID(ctx context.Context, rawURL string) (string, error)
}

// UnsupportedURL is returned by an [Extractor] for URLs of another provider.
func UnsupportedURL(p Provider) error {
	return apperr.ValidationError("Not a "+p.Name()+" URL", apperr.FieldError{
		Field:   "url",
		Message: "Does not point to a " + p.Name() + " series",
	})
}

// TitleFilter keeps the alternate titles whose detected language is accepted.
type TitleFilter interface {
	AltTitles(ctx context.Context, candidates, accepted []string) ([]string, error)
}

// AuthorResolver maps contributions to stored authors, creating the missing ones.
type AuthorResolver interface {
	ResolveCredits(ctx context.Context, authors []Contribution) ([]Credit, error)
}

// # Service Layer

// Service runs reconciliations and persists their results.
type Service struct {
	fetchers map[Provider]Fetcher
	repo     Repository
	authors  AuthorResolver
	logger   *slog.Logger
}

// NewService constructs a [Service]. Only the providers with a fetcher are
// queried; identifiers of the others are reported as skipped.
func NewService(repo Repository, authors AuthorResolver, logger *slog.Logger, fetchers ...Fetcher) *Service {
	byProvider := make(map[Provider]Fetcher, len(fetchers))
	for _, fetcher := range fetchers {
		byProvider[fetcher.Provider()] = fetcher
	}

	return &Service{
		fetchers: byProvider,
		repo:     repo,
		authors:  authors,
		logger:   logger,
	}
}

// Providers returns the providers that can be queried, in priority order.
func (service *Service) Providers() []Provider {
	var enabled []Provider
	for _, p := range Priority {
		if service.fetchers[p] != nil {
			enabled = append(enabled, p)
		}
	}
	return enabled
}

// # Reconciliation

/*
Reconcile fetches every known provider entry and merges the results.

Description: Identifiers are validated before any request is made. Providers
are queried one after another in [FetchOrder]. Identifiers discovered in the
MangaDex, Bato.to and MangaUpdates records are folded into the working set and
a disagreement aborts the call with an identity conflict. When follow is false
only the identifiers known at call time are fetched; when true, discovered
identifiers are fetched as well.

Returns:
  - *Reconciliation: The merged record and the status observed per provider
  - error: ValidationError, IdentityConflict, or the most informative provider failure
*/
func (service *Service) Reconcile(ctx context.Context, known IDs, follow bool) (*Reconciliation, error) {
	if err := known.Validate(); err != nil {
		return nil, err
	}

	enabled := false
	for _, p := range known.Keys() {
		enabled = enabled || service.fetchers[p] != nil
	}
	if !enabled {
		return nil, apperr.ValidationError("None of the given providers is enabled")
	}

	resolved := known.Clone()
	records := map[Provider]*Record{}
	tried := map[Provider]bool{}

	var outcomes []Outcome
	var failures []error

	for {
		progressed := false

		for _, p := range FetchOrder {
			id := known[p]
			if follow {
				id = resolved[p]
			}
			if id == "" || tried[p] {
				continue
			}
			tried[p] = true
			progressed = true

			fetcher := service.fetchers[p]
			if fetcher == nil {
				outcomes = append(outcomes, Outcome{Provider: p, Skipped: true})
				continue
			}

			record, err := fetcher.FetchSeries(ctx, id)
			if err != nil {
				service.logger.Warn("provider_fetch_failed",
					slog.String("provider", string(p)),
					slog.String("id", id),
					slog.Any("error", err),
				)
				outcomes = append(outcomes, Outcome{Provider: p, Status: apperr.Status(err)})
				failures = append(failures, err)
				continue
			}

			outcomes = append(outcomes, Outcome{Provider: p, Status: http.StatusOK})
			records[p] = record

			if p.discoversIDs() {
				if resolved, err = resolved.Absorb(record.IDs); err != nil {
					service.logger.Warn("identity_conflict",
						slog.String("provider", string(p)),
						slog.Any("conflicts", apperr.As(err).Conflicts),
					)
					return nil, err
				}
			}
		}

		if !follow || !progressed {
			break
		}
	}

	if len(records) == 0 {
		return nil, FailureFrom(failures)
	}

	merged, err := Merge(records, resolved, service.logger)
	if err != nil {
		return nil, err
	}

	service.logger.Info("series_reconciled",
		slog.String("primary", string(merged.Primary)),
		slog.Any("ids", merged.IDs),
		slog.Int("providers", len(records)),
	)

	return &Reconciliation{Record: merged, Outcomes: outcomes}, nil
}

// # Lookup

// FindByAnyID returns the internal id of the stored series owning any of ids.
// Several matches mean the store already holds duplicates and is reported as
// MERGE_REQUIRED with the competing ids.
func (service *Service) FindByAnyID(ctx context.Context, ids IDs) (string, error) {
	if err := ids.Validate(); err != nil {
		return "", err
	}

	matches, err := service.repo.FindSeriesByAnyID(ctx, ids)
	if err != nil {
		return "", err
	}

	switch len(matches) {
	case 0:
		return "", apperr.NotFound("Series")
	case 1:
		return matches[0], nil
	default:
		return "", apperr.MergeRequired(matches...)
	}
}

// GetSeries returns one stored series with its credits.
func (service *Service) GetSeries(ctx context.Context, id string) (*Series, error) {
	return service.repo.GetSeries(ctx, id)
}

// ListSeries returns a page of stored series and the total count.
func (service *Service) ListSeries(ctx context.Context, filter Filter, limit, offset int) ([]*Series, int, error) {
	return service.repo.ListSeries(ctx, filter, limit, offset)
}

// ExtractID finds the provider owning rawURL and returns its identifier.
func (service *Service) ExtractID(ctx context.Context, rawURL string) (Provider, string, error) {
	for _, p := range Priority {
		extractor, ok := service.fetchers[p].(Extractor)
		if !ok {
			continue
		}

		id, err := extractor.ExtractID(ctx, rawURL)
		switch {
		case err == nil:
			return p, id, nil
		case !apperr.HasCode(err, apperr.CodeValidation):
			return "", "", err
		}
	}

	return "", "", apperr.ValidationError("Unsupported URL", apperr.FieldError{
		Field:   "url",
		Message: "Must point to a series on an enabled provider",
	})
}

// # Import

// ImportResult describes the row written by [Service.Import].
type ImportResult struct {
	ID       string    `json:"id"`
	Created  bool      `json:"created"`
	Record   *Merged   `json:"record"`
	Outcomes []Outcome `json:"outcomes"`
}

/*
Import reconciles ids and stores the merged record.

Description: The merged identifier set is looked up first. No match inserts a
new series, one match updates it, several matches abort with MERGE_REQUIRED.
Credited authors are resolved to stored authors in the same transaction as the
write, so a rejected write leaves no new author behind.
*/
func (service *Service) Import(ctx context.Context, known IDs, follow bool) (*ImportResult, error) {
	reconciliation, err := service.Reconcile(ctx, known, follow)
	if err != nil {
		return nil, err
	}
	record := reconciliation.Record

	matches, err := service.repo.FindSeriesByAnyID(ctx, record.IDs)
	if err != nil {
		return nil, err
	}
	if len(matches) > 1 {
		return nil, apperr.MergeRequired(matches...)
	}

	result := &ImportResult{Record: record, Outcomes: reconciliation.Outcomes}

	stored := &Series{Merged: *record}
	if len(matches) == 1 {
		stored.ID = matches[0]
	} else {
		stored.ID = uuidv7.New()
		stored.Slug = slug.From(record.Title)
		result.Created = true
	}

	// Authors created for the credits must not outlive a failed series write.
	err = service.repo.InTx(ctx, func(ctx context.Context) error {
		credits, err := service.authors.ResolveCredits(ctx, record.Authors)
		if err != nil {
			return err
		}
		stored.Credits = credits

		result.ID, err = service.repo.UpsertMergedRecord(ctx, stored)
		return err
	})
	if err != nil {
		return nil, err
	}

	service.logger.Info("series_imported",
		slog.String("series_id", result.ID),
		slog.Bool("created", result.Created),
	)
	return result, nil
}
