// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package rating

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/shelfsync/internal/core/series"
	"github.com/taibuivan/shelfsync/internal/platform/database/schema"
	"github.com/taibuivan/shelfsync/internal/platform/dberr"
	"github.com/taibuivan/shelfsync/internal/platform/postgres"
)

// # Repository Implementation

// PostgresRepository implements [Repository] using pgx.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

var (
	table       = schema.LibraryRating
	seriesTable = schema.LibrarySeries
)

func (repository *PostgresRepository) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return postgres.InTx(ctx, repository.pool, fn)
}

func (repository *PostgresRepository) SeriesByProviderID(ctx context.Context, p series.Provider, ids []string) (map[string]string, error) {
	column := seriesTable.IDColumns()[string(p)]
	query := fmt.Sprintf(`SELECT %[1]s, %[2]s FROM %[3]s WHERE %[1]s = ANY($1)`, column, seriesTable.ID, seriesTable.Table)

	rows, err := postgres.Conn(ctx, repository.pool).Query(ctx, query, ids)
	if err != nil {
		return nil, dberr.Wrap(err, "find_rated_series")
	}
	defer rows.Close()

	stored := make(map[string]string, len(ids))
	for rows.Next() {
		var providerID, seriesID string
		if err := rows.Scan(&providerID, &seriesID); err != nil {
			return nil, dberr.Wrap(err, "scan_rated_series")
		}
		stored[providerID] = seriesID
	}
	return stored, dberr.Wrap(rows.Err(), "find_rated_series")
}

/*
UpsertScore writes the community rating of one series.

Description: xmax is zero only on a freshly inserted row, which tells an insert
from an update. The WHERE clause of the conflict branch skips identical values,
in which case no row comes back.
*/
func (repository *PostgresRepository) UpsertScore(ctx context.Context, seriesID string, p series.Provider, score Score) (Change, error) {
	query := fmt.Sprintf(`
		INSERT INTO %[1]s AS r (%[2]s, %[3]s, %[4]s, %[5]s, %[6]s)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (%[2]s, %[3]s) DO UPDATE
		SET %[4]s = EXCLUDED.%[4]s, %[5]s = EXCLUDED.%[5]s, %[6]s = NOW()
		WHERE r.%[4]s IS DISTINCT FROM EXCLUDED.%[4]s OR r.%[5]s IS DISTINCT FROM EXCLUDED.%[5]s
		RETURNING (xmax = 0)`,
		table.Table, table.SeriesID, table.Provider, table.Rating, table.Votes, table.UpdatedAt,
	)

	return repository.upsert(ctx, "upsert_rating", query, seriesID, string(p), score.Rating, score.Votes)
}

func (repository *PostgresRepository) UpsertUserScore(ctx context.Context, seriesID string, p series.Provider, score UserScore) (Change, error) {
	query := fmt.Sprintf(`
		INSERT INTO %[1]s AS r (%[2]s, %[3]s, %[4]s, %[5]s)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (%[2]s, %[3]s) DO UPDATE
		SET %[4]s = EXCLUDED.%[4]s, %[5]s = NOW()
		WHERE r.%[4]s IS DISTINCT FROM EXCLUDED.%[4]s
		RETURNING (xmax = 0)`,
		table.Table, table.SeriesID, table.Provider, table.UserRating, table.UpdatedAt,
	)

	return repository.upsert(ctx, "upsert_user_rating", query, seriesID, string(p), score.Rating)
}

func (repository *PostgresRepository) upsert(ctx context.Context, action, query string, args ...any) (Change, error) {
	var inserted bool
	err := postgres.Conn(ctx, repository.pool).QueryRow(ctx, query, args...).Scan(&inserted)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return Unchanged, nil
	case err != nil:
		return Unchanged, dberr.Wrap(err, action)
	case inserted:
		return Created, nil
	}
	return Updated, nil
}

func (repository *PostgresRepository) ListRatings(ctx context.Context, seriesID string) ([]*Rating, error) {
	query := fmt.Sprintf(`
		SELECT %s, %s, %s, %s, %s, %s FROM %s
		WHERE %s = $1
		ORDER BY %s`,
		table.SeriesID, table.Provider, table.Rating, table.Votes, table.UserRating, table.UpdatedAt, table.Table,
		table.SeriesID, table.Provider,
	)

	rows, err := postgres.Conn(ctx, repository.pool).Query(ctx, query, seriesID)
	if err != nil {
		return nil, dberr.Wrap(err, "list_ratings")
	}

	ratings, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*Rating, error) {
		result := &Rating{}
		err := row.Scan(&result.SeriesID, &result.Provider, &result.Rating, &result.Votes,
			&result.UserRating, &result.UpdatedAt)
		return result, err
	})
	if err != nil {
		return nil, dberr.Wrap(err, "list_ratings")
	}
	return ratings, nil
}
