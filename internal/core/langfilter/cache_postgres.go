// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package langfilter

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/shelfsync/internal/platform/database/schema"
	"github.com/taibuivan/shelfsync/internal/platform/dberr"
)

// PostgresCache stores detections in the title language table.
type PostgresCache struct {
	pool *pgxpool.Pool
}

// NewPostgresCache constructs a [PostgresCache].
func NewPostgresCache(pool *pgxpool.Pool) *PostgresCache {
	return &PostgresCache{pool: pool}
}

func (cache *PostgresCache) Get(ctx context.Context, title string) (Detection, bool, error) {
	table := schema.LibraryTitleLanguage
	query := fmt.Sprintf(`SELECT %s, %s, %s FROM %s WHERE %s = $1`,
		table.Language, table.Confidence, table.DetectedAt, table.Table, table.Title)

	var detection Detection
	err := cache.pool.QueryRow(ctx, query, title).Scan(
		&detection.Language, &detection.Confidence, &detection.DetectedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Detection{}, false, nil
		}
		return Detection{}, false, dberr.Wrap(err, "get_title_language")
	}

	return detection, true, nil
}

// PutIfAbsent inserts the detection unless the title is already known.
func (cache *PostgresCache) PutIfAbsent(ctx context.Context, title string, detection Detection) error {
	table := schema.LibraryTitleLanguage
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (%s) DO NOTHING`,
		table.Table, table.Title, table.Language, table.Confidence, table.DetectedAt,
		table.Title)

	if _, err := cache.pool.Exec(ctx, query, title, detection.Language, detection.Confidence, detection.DetectedAt); err != nil {
		return dberr.Wrap(err, "put_title_language")
	}
	return nil
}
