// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package rating

import (
	"context"

	"github.com/taibuivan/shelfsync/internal/core/series"
)

// Repository persists ratings.
type Repository interface {
	// SeriesByProviderID maps the provider ids of stored series to their
	// internal id. Unknown ids are absent from the map.
	SeriesByProviderID(ctx context.Context, p series.Provider, ids []string) (map[string]string, error)

	// UpsertScore writes a community rating; an identical row is left untouched.
	UpsertScore(ctx context.Context, seriesID string, p series.Provider, score Score) (Change, error)

	// UpsertUserScore writes the owner's rating; an identical row is left untouched.
	UpsertUserScore(ctx context.Context, seriesID string, p series.Provider, score UserScore) (Change, error)

	ListRatings(ctx context.Context, seriesID string) ([]*Rating, error)

	InTx(ctx context.Context, fn func(ctx context.Context) error) error
}
