// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package library

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/shelfsync/internal/platform/apperr"
	"github.com/taibuivan/shelfsync/internal/platform/database/schema"
	"github.com/taibuivan/shelfsync/internal/platform/dberr"
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
	entry  = schema.LibraryEntry
	series = schema.LibrarySeries
)

// selectEntry joins the series title onto every entry.
var selectEntry = fmt.Sprintf(`
	SELECT e.%s, e.%s, s.%s, e.%s, e.%s, e.%s, e.%s
	FROM %s e
	JOIN %s s ON s.%s = e.%s`,
	entry.ID, entry.SeriesID, series.Title, entry.Status, entry.Source, entry.CreatedAt, entry.UpdatedAt,
	entry.Table, series.Table, series.ID, entry.SeriesID,
)

func scanEntry(row pgx.Row) (*Entry, error) {
	result := &Entry{}
	err := row.Scan(&result.ID, &result.SeriesID, &result.Title, &result.Status,
		&result.Source, &result.CreatedAt, &result.UpdatedAt)
	return result, err
}

func (repository *PostgresRepository) ListEntries(ctx context.Context, filter Filter, limit, offset int) ([]*Entry, int, error) {
	var clauses []string
	var args []any
	if filter.Status != "" {
		args = append(args, string(filter.Status))
		clauses = append(clauses, fmt.Sprintf("e.%s = $%d", entry.Status, len(args)))
	}
	if filter.Source != "" {
		args = append(args, string(filter.Source))
		clauses = append(clauses, fmt.Sprintf("e.%s = $%d", entry.Source, len(args)))
	}

	where := ""
	if len(clauses) > 0 {
		where = " WHERE " + strings.Join(clauses, " AND ")
	}

	var total int
	countQuery := fmt.Sprintf(`SELECT count(*) FROM %s e%s`, entry.Table, where)
	if err := repository.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, dberr.Wrap(err, "count_entries")
	}

	query := fmt.Sprintf(`%s%s ORDER BY e.%s DESC LIMIT $%d OFFSET $%d`,
		selectEntry, where, entry.UpdatedAt, len(args)+1, len(args)+2)

	rows, err := repository.pool.Query(ctx, query, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, dberr.Wrap(err, "list_entries")
	}

	entries, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*Entry, error) {
		return scanEntry(row)
	})
	if err != nil {
		return nil, 0, dberr.Wrap(err, "list_entries")
	}

	return entries, total, nil
}

func (repository *PostgresRepository) GetEntry(ctx context.Context, seriesID string) (*Entry, error) {
	query := fmt.Sprintf(`%s WHERE e.%s = $1`, selectEntry, entry.SeriesID)

	result, err := scanEntry(repository.pool.QueryRow(ctx, query, seriesID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("Library entry")
	}
	if err != nil {
		return nil, dberr.Wrap(err, "get_entry")
	}
	return result, nil
}

/*
UpsertEntry writes the status of one series.

Description: The UNIQUE constraint on seriesid turns a second write into an
update. A series id that does not exist violates the foreign key and is
reported as NotFound.
*/
func (repository *PostgresRepository) UpsertEntry(ctx context.Context, value *Entry) error {
	query := fmt.Sprintf(`
		INSERT INTO %[1]s (%[2]s, %[3]s, %[4]s, %[5]s, %[6]s, %[7]s)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		ON CONFLICT (%[3]s) DO UPDATE
		SET %[4]s = EXCLUDED.%[4]s, %[5]s = EXCLUDED.%[5]s, %[7]s = NOW()
		RETURNING %[2]s, %[6]s, %[7]s`,
		entry.Table, entry.ID, entry.SeriesID, entry.Status, entry.Source, entry.CreatedAt, entry.UpdatedAt,
	)

	err := repository.pool.QueryRow(ctx, query, value.ID, value.SeriesID, string(value.Status), string(value.Source)).
		Scan(&value.ID, &value.CreatedAt, &value.UpdatedAt)
	if dberr.IsForeignKeyViolation(err) {
		return apperr.NotFound("Series")
	}
	return dberr.Wrap(err, "upsert_entry")
}

func (repository *PostgresRepository) DeleteEntry(ctx context.Context, seriesID string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`, entry.Table, entry.SeriesID)

	tag, err := repository.pool.Exec(ctx, query, seriesID)
	if err != nil {
		return dberr.Wrap(err, "delete_entry")
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("Library entry")
	}
	return nil
}

func (repository *PostgresRepository) LinkedEntries(ctx context.Context, p string) ([]*Linked, error) {
	column, known := series.IDColumns()[p]
	if !known {
		return nil, apperr.ValidationError("Unknown provider", apperr.FieldError{Field: "provider", Message: p})
	}
	query := fmt.Sprintf(`
		SELECT e.%s, e.%s, s.%s, e.%s, e.%s, e.%s, e.%s, s.%s
		FROM %s e
		JOIN %s s ON s.%s = e.%s
		WHERE s.%s IS NOT NULL
		ORDER BY e.%s`,
		entry.ID, entry.SeriesID, series.Title, entry.Status, entry.Source, entry.CreatedAt, entry.UpdatedAt, column,
		entry.Table, series.Table, series.ID, entry.SeriesID,
		column, entry.UpdatedAt,
	)

	rows, err := repository.pool.Query(ctx, query)
	if err != nil {
		return nil, dberr.Wrap(err, "list_linked_entries")
	}

	linked, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*Linked, error) {
		result := &Linked{}
		err := row.Scan(&result.ID, &result.SeriesID, &result.Title, &result.Status,
			&result.Source, &result.CreatedAt, &result.UpdatedAt, &result.ProviderID)
		return result, err
	})
	if err != nil {
		return nil, dberr.Wrap(err, "list_linked_entries")
	}
	return linked, nil
}

