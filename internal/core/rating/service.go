// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package rating

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/samber/lo"

	"github.com/taibuivan/shelfsync/internal/core/series"
	"github.com/taibuivan/shelfsync/internal/platform/validate"
)

// # Service Layer

// Service validates and stores rating batches.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

// NewService constructs a rating [Service].
func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

func (service *Service) ListRatings(ctx context.Context, seriesID string) ([]*Rating, error) {
	if err := new(validate.Validator).UUID(FieldSeriesID, seriesID).Err(); err != nil {
		return nil, err
	}
	return service.repo.ListRatings(ctx, seriesID)
}

/*
UpdateRatings stores one provider's ratings.

Description: The whole batch is validated first; one bad entry rejects it.
Provider ids are then mapped to stored series and every rating of a stored
series is written in one transaction. Rows whose values did not change keep
their timestamp.

Returns:
  - *Result: Created, updated and unchanged counts plus the unknown ids
  - error: ValidationError for a malformed batch
*/
func (service *Service) UpdateRatings(ctx context.Context, batch Batch) (*Result, error) {
	if err := validateBatch(batch); err != nil {
		return nil, err
	}

	ids := lo.Uniq(append(
		lo.Map(batch.Scores, func(score Score, _ int) string { return score.ID }),
		lo.Map(batch.UserScores, func(score UserScore, _ int) string { return score.ID })...,
	))
	stored, err := service.repo.SeriesByProviderID(ctx, batch.Provider, ids)
	if err != nil {
		return nil, err
	}

	result := &Result{NotExist: lo.Filter(ids, func(id string, _ int) bool {
		_, found := stored[id]
		return !found
	})}
	slices.Sort(result.NotExist)

	err = service.repo.InTx(ctx, func(ctx context.Context) error {
		for _, score := range batch.Scores {
			seriesID, found := stored[score.ID]
			if !found {
				continue
			}
			change, err := service.repo.UpsertScore(ctx, seriesID, batch.Provider, score)
			if err != nil {
				return err
			}
			result.count(change)
		}

		for _, score := range batch.UserScores {
			seriesID, found := stored[score.ID]
			if !found {
				continue
			}
			change, err := service.repo.UpsertUserScore(ctx, seriesID, batch.Provider, score)
			if err != nil {
				return err
			}
			result.count(change)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	service.logger.Info("ratings_updated",
		slog.String("provider", string(batch.Provider)),
		slog.Int("created", result.Created),
		slog.Int("updated", result.Updated),
		slog.Int("unchanged", result.Unchanged),
		slog.Int("not_exist", len(result.NotExist)),
	)
	return result, nil
}

func validateBatch(batch Batch) error {
	if !kept(batch.Provider) {
		var v validate.Validator
		return v.OneOf(FieldProvider, string(batch.Provider), lo.Map(Providers, func(p series.Provider, _ int) string {
			return string(p)
		})...).Err()
	}
	if len(batch.Scores) == 0 && len(batch.UserScores) == 0 {
		return validate.RequiredError(FieldRatings, "At least one rating is required")
	}

	var v validate.Validator
	for i, score := range batch.Scores {
		field := fmt.Sprintf("%s[%d]", FieldRatings, i)
		v.Required(field+".id", score.ID).
			Custom(field+".rating", score.Rating < 0 || score.Rating > MaxRating,
				fmt.Sprintf("Must be between 0 and %g", MaxRating)).
			Range(field+".votes", score.Votes, 0, MaxVotes)
	}
	for i, score := range batch.UserScores {
		field := fmt.Sprintf("%s[%d]", FieldUserRatings, i)
		v.Required(field+".id", score.ID).
			Custom(field+".rating", score.Rating < MinUserRating || score.Rating > MaxRating,
				fmt.Sprintf("Must be between %g and %g", MinUserRating, MaxRating))
	}
	return v.Err()
}
