// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package author

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/shelfsync/internal/core/series"
	"github.com/taibuivan/shelfsync/internal/platform/apperr"
	"github.com/taibuivan/shelfsync/internal/platform/database/schema"
	"github.com/taibuivan/shelfsync/internal/platform/dberr"
	"github.com/taibuivan/shelfsync/internal/platform/postgres"
	"github.com/taibuivan/shelfsync/pkg/pointer"
)

// PostgresRepository implements [Repository] using pgx. Every method joins the
// transaction carried by its context, see [postgres.InTx].
type PostgresRepository struct {
	db *pgxpool.Pool
}

func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

var table = schema.LibraryAuthor

// providers lists the identifier columns in scan order.
var providers = []series.Provider{series.MangaUpdates, series.MangaDex, series.MyAnimeList}

func idColumn(p series.Provider) string {
	return table.IDColumns()[string(p)]
}

var selectColumns = strings.Join([]string{
	table.ID, table.Name, table.IDMu, table.IDDex, table.IDMal, table.CreatedAt, table.UpdatedAt,
}, ", ")

func scanAuthor(row pgx.Row) (*Author, error) {
	author := &Author{}
	var mu, dex, mal *string
	if err := row.Scan(&author.ID, &author.Name, &mu, &dex, &mal, &author.CreatedAt, &author.UpdatedAt); err != nil {
		return nil, err
	}

	author.IDs = series.IDs{}
	for i, value := range []*string{mu, dex, mal} {
		if value := pointer.Val(value); value != "" {
			author.IDs[providers[i]] = value
		}
	}
	return author, nil
}

func (repository *PostgresRepository) collect(ctx context.Context, action, query string, args ...any) ([]*Author, error) {
	rows, err := postgres.Conn(ctx, repository.db).Query(ctx, query, args...)
	if err != nil {
		return nil, dberr.Wrap(err, action)
	}

	authors, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*Author, error) {
		return scanAuthor(row)
	})
	if err != nil {
		return nil, dberr.Wrap(err, action)
	}
	return authors, nil
}

func (repository *PostgresRepository) ListAuthors(ctx context.Context, filter Filter, limit, offset int) ([]*Author, int, error) {
	where := "TRUE"
	args := []any{}
	if filter.Query != "" {
		args = append(args, "%"+strings.ToLower(filter.Query)+"%")
		where = fmt.Sprintf("lower(%s) LIKE $1", table.Name)
	}

	var total int
	countQuery := fmt.Sprintf(`SELECT count(*) FROM %s WHERE %s`, table.Table, where)
	if err := postgres.Conn(ctx, repository.db).QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, dberr.Wrap(err, "count_authors")
	}

	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s ORDER BY %s ASC, %s LIMIT $%d OFFSET $%d`,
		selectColumns, table.Table, where, table.Name, table.ID, len(args)+1, len(args)+2)
	authors, err := repository.collect(ctx, "list_authors", query, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, err
	}
	return authors, total, nil
}

func (repository *PostgresRepository) GetAuthor(ctx context.Context, id string) (*Author, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`, selectColumns, table.Table, table.ID)

	author, err := scanAuthor(postgres.Conn(ctx, repository.db).QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("Author")
	}
	if err != nil {
		return nil, dberr.Wrap(err, "get_author")
	}
	return author, nil
}

func (repository *PostgresRepository) FindByAnyID(ctx context.Context, ids series.IDs) ([]*Author, error) {
	var clauses []string
	var args []any
	for _, p := range providers {
		if value := ids.Get(p); value != "" {
			args = append(args, value)
			clauses = append(clauses, fmt.Sprintf("%s = $%d", idColumn(p), len(args)))
		}
	}
	if len(clauses) == 0 {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s ORDER BY %s`,
		selectColumns, table.Table, strings.Join(clauses, " OR "), table.CreatedAt)
	return repository.collect(ctx, "find_author_by_id", query, args...)
}

func (repository *PostgresRepository) FindByName(ctx context.Context, name string) ([]*Author, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE lower(%s) = lower($1) AND %s IS NULL AND %s IS NULL AND %s IS NULL
		ORDER BY %s`,
		selectColumns, table.Table, table.Name, table.IDMu, table.IDDex, table.IDMal, table.CreatedAt)
	return repository.collect(ctx, "find_author_by_name", query, name)
}

func (repository *PostgresRepository) CreateAuthor(ctx context.Context, author *Author) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		RETURNING %s, %s`,
		table.Table, table.ID, table.Name, table.IDMu, table.IDDex, table.IDMal, table.CreatedAt, table.UpdatedAt,
		table.CreatedAt, table.UpdatedAt,
	)

	err := postgres.Conn(ctx, repository.db).QueryRow(ctx, query, author.ID, author.Name,
		pointer.OrNil(author.IDs.Get(series.MangaUpdates)),
		pointer.OrNil(author.IDs.Get(series.MangaDex)),
		pointer.OrNil(author.IDs.Get(series.MyAnimeList)),
	).Scan(&author.CreatedAt, &author.UpdatedAt)
	return dberr.Wrap(err, "create_author")
}

func (repository *PostgresRepository) UpdateAuthor(ctx context.Context, author *Author) error {
	return updateAuthor(ctx, postgres.Conn(ctx, repository.db), author)
}

// MergeAuthors runs the manual merge in a single transaction. Shared series
// keep one credit whose role becomes Both when the two roles differ.
func (repository *PostgresRepository) MergeAuthors(ctx context.Context, keep *Author, absorbed string) error {
	link := schema.LibrarySeriesAuthor

	return pgx.BeginFunc(ctx, postgres.Conn(ctx, repository.db), func(tx pgx.Tx) error {
		mergeRoles := fmt.Sprintf(`
			UPDATE %[1]s AS k SET %[4]s = '%[5]s'
			FROM %[1]s AS o
			WHERE k.%[3]s = $1 AND o.%[3]s = $2 AND k.%[2]s = o.%[2]s AND k.%[4]s <> o.%[4]s`,
			link.Table, link.SeriesID, link.AuthorID, link.Role, series.RoleBoth)
		if _, err := tx.Exec(ctx, mergeRoles, keep.ID, absorbed); err != nil {
			return dberr.Wrap(err, "merge_author_roles")
		}

		moveCredits := fmt.Sprintf(`
			UPDATE %[1]s AS o SET %[3]s = $1
			WHERE o.%[3]s = $2 AND NOT EXISTS (
				SELECT 1 FROM %[1]s AS k WHERE k.%[3]s = $1 AND k.%[2]s = o.%[2]s
			)`,
			link.Table, link.SeriesID, link.AuthorID)
		if _, err := tx.Exec(ctx, moveCredits, keep.ID, absorbed); err != nil {
			return dberr.Wrap(err, "move_author_credits")
		}

		// Remaining credits of absorbed are duplicates and go with the row.
		deleteQuery := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`, table.Table, table.ID)
		tag, err := tx.Exec(ctx, deleteQuery, absorbed)
		if err != nil {
			return dberr.Wrap(err, "delete_absorbed_author")
		}
		if tag.RowsAffected() == 0 {
			return apperr.NotFound("Author")
		}

		return updateAuthor(ctx, tx, keep)
	})
}

func updateAuthor(ctx context.Context, db postgres.Querier, author *Author) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET %s = $2, %s = $3, %s = $4, %s = $5, %s = NOW()
		WHERE %s = $1
		RETURNING %s`,
		table.Table, table.Name, table.IDMu, table.IDDex, table.IDMal, table.UpdatedAt,
		table.ID, table.UpdatedAt,
	)

	err := db.QueryRow(ctx, query, author.ID, author.Name,
		pointer.OrNil(author.IDs.Get(series.MangaUpdates)),
		pointer.OrNil(author.IDs.Get(series.MangaDex)),
		pointer.OrNil(author.IDs.Get(series.MyAnimeList)),
	).Scan(&author.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return apperr.NotFound("Author")
	}
	return dberr.Wrap(err, "update_author")
}
