// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/shelfsync/internal/platform/ctxkey"
)

// Querier is the part of the pool and of a transaction the stores use.
// Begin on a transaction opens a savepoint, so pgx.BeginFunc nests.
type Querier interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Conn returns the transaction carried by ctx, or pool outside [InTx].
func Conn(ctx context.Context, pool *pgxpool.Pool) Querier {
	if tx, ok := ctx.Value(ctxkey.KeyTx).(pgx.Tx); ok {
		return tx
	}
	return pool
}

// InTx runs fn in one transaction. Stores reached through [Conn] with the
// context fn receives join it. A call inside another InTx opens a savepoint.
func InTx(ctx context.Context, pool *pgxpool.Pool, fn func(ctx context.Context) error) error {
	return pgx.BeginFunc(ctx, Conn(ctx, pool), func(tx pgx.Tx) error {
		return fn(context.WithValue(ctx, ctxkey.KeyTx, tx))
	})
}
