// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package series provides the PostgreSQL implementation of the series store.

Every provider identifier lives in its own UNIQUE column, so a second series
claiming the same identifier is rejected by the database and surfaces as an
identity conflict rather than an overwrite.
*/
package series

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/shelfsync/internal/platform/apperr"
	"github.com/taibuivan/shelfsync/internal/platform/database/schema"
	"github.com/taibuivan/shelfsync/internal/platform/dberr"
	"github.com/taibuivan/shelfsync/internal/platform/postgres"
	"github.com/taibuivan/shelfsync/pkg/pointer"
)

// # PostgreSQL Repository

// PostgresRepository implements [Repository] using pgx.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository constructs a PostgreSQL backed series store.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

var table = schema.LibrarySeries

// InTx runs fn in one transaction joined by every store reading its context.
func (repository *PostgresRepository) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return postgres.InTx(ctx, repository.pool, fn)
}

// idColumn returns the column of a provider tag.
func idColumn(p Provider) string {
	return table.IDColumns()[string(p)]
}

// FindSeriesByAnyID returns every series owning at least one identifier of ids.
func (repository *PostgresRepository) FindSeriesByAnyID(ctx context.Context, ids IDs) ([]string, error) {
	var clauses []string
	var args []any

	for _, p := range ids.Keys() {
		args = append(args, ids[p])
		clauses = append(clauses, fmt.Sprintf("%s = $%d", idColumn(p), len(args)))
	}
	if len(clauses) == 0 {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s ORDER BY %s`,
		table.ID, table.Table, strings.Join(clauses, " OR "), table.CreatedAt)

	rows, err := postgres.Conn(ctx, repository.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, dberr.Wrap(err, "find series by id")
	}

	matches, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, dberr.Wrap(err, "scan series ids")
	}
	return matches, nil
}

/*
UpsertMergedRecord writes a series row and replaces its credits.

Description: Runs in one transaction. When the row already exists its stored
identifiers are locked and folded with the new ones under the identity rule, so
an identifier is never replaced by a different value.
*/
func (repository *PostgresRepository) UpsertMergedRecord(ctx context.Context, series *Series) (string, error) {
	err := pgx.BeginFunc(ctx, postgres.Conn(ctx, repository.pool), func(tx pgx.Tx) error {
		ids, err := lockIDs(ctx, tx, series.ID)
		if err != nil {
			return err
		}
		if ids, err = ids.Absorb(series.IDs); err != nil {
			return err
		}

		timestamps, err := json.Marshal(series.Timestamps)
		if err != nil {
			return fmt.Errorf("encode timestamps: %w", err)
		}

		query := fmt.Sprintf(`
			INSERT INTO %[1]s AS s (%[2]s, %[3]s, %[4]s, %[5]s, %[6]s, %[7]s, %[8]s, %[9]s, %[10]s, %[11]s, %[12]s, %[13]s,
				%[14]s, %[15]s, %[16]s, %[17]s, %[18]s, %[19]s)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
			ON CONFLICT (%[2]s) DO UPDATE SET
				%[4]s = EXCLUDED.%[4]s, %[5]s = EXCLUDED.%[5]s, %[6]s = EXCLUDED.%[6]s,
				%[7]s = EXCLUDED.%[7]s, %[8]s = EXCLUDED.%[8]s, %[9]s = EXCLUDED.%[9]s,
				%[10]s = EXCLUDED.%[10]s, %[11]s = EXCLUDED.%[11]s, %[12]s = EXCLUDED.%[12]s,
				%[13]s = EXCLUDED.%[13]s, %[14]s = EXCLUDED.%[14]s, %[15]s = EXCLUDED.%[15]s,
				%[16]s = EXCLUDED.%[16]s, %[17]s = EXCLUDED.%[17]s, %[18]s = EXCLUDED.%[18]s,
				%[19]s = s.%[19]s || EXCLUDED.%[19]s, %[20]s = NOW()`,
			table.Table,
			table.ID, table.Slug, table.Title, table.AltTitles, table.Type, table.Description,
			table.Genres, table.IsOneShot, table.Year, table.ThumbnailURL, table.Status, table.PrimaryProvider,
			table.IDMu, table.IDDex, table.IDMal, table.IDBato, table.IDLine,
			table.Timestamps, table.UpdatedAt,
		)

		_, err = tx.Exec(ctx, query,
			series.ID, series.Slug, series.Title, series.AltTitles, string(series.Type), series.Description,
			series.Genres, series.OneShot, series.Year, series.ThumbnailURL, series.Status, string(series.Primary),
			pointer.OrNil(ids[MangaUpdates]), pointer.OrNil(ids[MangaDex]), pointer.OrNil(ids[MyAnimeList]),
			pointer.OrNil(ids[Bato]), pointer.OrNil(ids[Webtoon]),
			timestamps,
		)
		if err != nil {
			return dberr.Wrap(err, "upsert series")
		}

		return replaceCredits(ctx, tx, series.ID, series.Credits)
	})
	if err != nil {
		return "", err
	}

	return series.ID, nil
}

// lockIDs returns the stored identifiers of id, or an empty set for a new row.
func lockIDs(ctx context.Context, tx pgx.Tx, id string) (IDs, error) {
	query := fmt.Sprintf(`SELECT %s, %s, %s, %s, %s FROM %s WHERE %s = $1 FOR UPDATE`,
		table.IDMu, table.IDDex, table.IDMal, table.IDBato, table.IDLine, table.Table, table.ID)

	var mu, dex, mal, bato, line *string
	err := tx.QueryRow(ctx, query, id).Scan(&mu, &dex, &mal, &bato, &line)
	if errors.Is(err, pgx.ErrNoRows) {
		return IDs{}, nil
	}
	if err != nil {
		return nil, dberr.Wrap(err, "lock series ids")
	}

	return idsFrom(mu, dex, mal, bato, line), nil
}

func replaceCredits(ctx context.Context, tx pgx.Tx, seriesID string, credits []Credit) error {
	link := schema.LibrarySeriesAuthor

	deleteQuery := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`, link.Table, link.SeriesID)
	if _, err := tx.Exec(ctx, deleteQuery, seriesID); err != nil {
		return dberr.Wrap(err, "clear credits")
	}

	// The same person credited twice keeps a single row with role Both.
	insertQuery := fmt.Sprintf(`
		INSERT INTO %[1]s AS sa (%[2]s, %[3]s, %[4]s) VALUES ($1, $2, $3)
		ON CONFLICT (%[2]s, %[3]s) DO UPDATE SET
			%[4]s = CASE WHEN sa.%[4]s = EXCLUDED.%[4]s THEN EXCLUDED.%[4]s ELSE '%[5]s' END`,
		link.Table, link.SeriesID, link.AuthorID, link.Role, RoleBoth)

	batch := &pgx.Batch{}
	for _, credit := range credits {
		batch.Queue(insertQuery, seriesID, credit.AuthorID, string(credit.Role))
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return dberr.Wrap(err, "insert credits")
	}
	return nil
}

// # Reads

func selectColumns(alias string) string {
	columns := table.Columns()
	for i, column := range columns {
		columns[i] = alias + "." + column
	}
	return strings.Join(columns, ", ")
}

// creditsSubquery aggregates the credits of series row s into a JSON array.
func creditsSubquery() string {
	link, author := schema.LibrarySeriesAuthor, schema.LibraryAuthor
	return fmt.Sprintf(`COALESCE((
			SELECT json_agg(json_build_object('author_id', a.%s, 'name', a.%s, 'role', sa.%s) ORDER BY a.%s)
			FROM %s sa JOIN %s a ON a.%s = sa.%s
			WHERE sa.%s = s.%s
		), '[]')`,
		author.ID, author.Name, link.Role, author.Name,
		link.Table, author.Table, author.ID, link.AuthorID,
		link.SeriesID, table.ID,
	)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSeries(row scanner, extra ...any) (*Series, error) {
	series := &Series{}
	var seriesType, primary string
	var mu, dex, mal, bato, line *string
	var timestamps, credits []byte

	dest := []any{
		&series.ID, &series.Slug, &series.Title, &series.AltTitles, &seriesType, &series.Description,
		&series.Genres, &series.OneShot, &series.Year, &series.ThumbnailURL, &series.Status, &primary,
		&mu, &dex, &mal, &bato, &line,
		&timestamps, &series.CreatedAt, &series.UpdatedAt,
		&credits,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}

	series.Type = Type(seriesType)
	series.Primary = Provider(primary)
	series.IDs = idsFrom(mu, dex, mal, bato, line)

	series.Timestamps = map[Provider]time.Time{}
	if err := json.Unmarshal(timestamps, &series.Timestamps); err != nil {
		return nil, fmt.Errorf("decode timestamps: %w", err)
	}
	if err := json.Unmarshal(credits, &series.Credits); err != nil {
		return nil, fmt.Errorf("decode credits: %w", err)
	}

	return series, nil
}

// GetSeries returns one series with its credits.
func (repository *PostgresRepository) GetSeries(ctx context.Context, id string) (*Series, error) {
	query := fmt.Sprintf(`SELECT %s, %s FROM %s s WHERE s.%s = $1`,
		selectColumns("s"), creditsSubquery(), table.Table, table.ID)

	series, err := scanSeries(postgres.Conn(ctx, repository.pool).QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("Series")
	}
	if err != nil {
		return nil, dberr.Wrap(err, "get series")
	}
	return series, nil
}

// ListSeries returns a filtered page of series ordered by title.
func (repository *PostgresRepository) ListSeries(ctx context.Context, filter Filter, limit, offset int) ([]*Series, int, error) {
	var builder strings.Builder
	var args []any

	builder.WriteString(fmt.Sprintf(`SELECT %s, %s, COUNT(*) OVER() AS total FROM %s s WHERE TRUE`,
		selectColumns("s"), creditsSubquery(), table.Table))

	if filter.Query != "" {
		args = append(args, "%"+strings.ToLower(filter.Query)+"%")
		builder.WriteString(fmt.Sprintf(` AND (lower(s.%s) LIKE $%d OR EXISTS (
			SELECT 1 FROM unnest(s.%s) alt WHERE lower(alt) LIKE $%d))`,
			table.Title, len(args), table.AltTitles, len(args)))
	}
	if filter.Type != "" {
		args = append(args, string(filter.Type))
		builder.WriteString(fmt.Sprintf(` AND s.%s = $%d`, table.Type, len(args)))
	}
	if len(filter.Genres) > 0 {
		args = append(args, filter.Genres)
		builder.WriteString(fmt.Sprintf(` AND s.%s @> $%d`, table.Genres, len(args)))
	}

	args = append(args, limit, offset)
	builder.WriteString(fmt.Sprintf(` ORDER BY lower(s.%s), s.%s LIMIT $%d OFFSET $%d`,
		table.Title, table.ID, len(args)-1, len(args)))

	rows, err := postgres.Conn(ctx, repository.pool).Query(ctx, builder.String(), args...)
	if err != nil {
		return nil, 0, dberr.Wrap(err, "list series")
	}
	defer rows.Close()

	var list []*Series
	var total int
	for rows.Next() {
		series, err := scanSeries(rows, &total)
		if err != nil {
			return nil, 0, dberr.Wrap(err, "scan series")
		}
		list = append(list, series)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, dberr.Wrap(err, "iterate series")
	}

	return list, total, nil
}

// # Helpers

func idsFrom(mu, dex, mal, bato, line *string) IDs {
	ids := IDs{}
	for p, value := range map[Provider]*string{
		MangaUpdates: mu, MangaDex: dex, MyAnimeList: mal, Bato: bato, Webtoon: line,
	} {
		if value := pointer.Val(value); value != "" {
			ids[p] = value
		}
	}
	return ids
}
