// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package series

import (
	"context"
	"time"
)

// Credit links a stored series to a stored author.
type Credit struct {
	AuthorID string `json:"author_id"`
	Name     string `json:"name,omitempty"`
	Role     Role   `json:"role"`
}

// Series is a merged record as persisted in the library.
type Series struct {
	Merged
	ID        string    `json:"id"`
	Slug      string    `json:"slug"`
	Credits   []Credit  `json:"credits"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Filter narrows [Repository.ListSeries].
type Filter struct {
	Query  string
	Type   Type
	// Genres keeps the series carrying every listed genre.
	Genres []string
}

// Repository is the persistence collaborator of the reconciliation engine.
type Repository interface {
	// FindSeriesByAnyID returns the internal ids of every series owning at least one of ids.
	FindSeriesByAnyID(ctx context.Context, ids IDs) ([]string, error)
	// UpsertMergedRecord writes series and its credits atomically and returns its id.
	UpsertMergedRecord(ctx context.Context, series *Series) (string, error)
	GetSeries(ctx context.Context, id string) (*Series, error)
	ListSeries(ctx context.Context, filter Filter, limit, offset int) ([]*Series, int, error)
	// InTx runs fn in one transaction. The author store joins it through ctx.
	InTx(ctx context.Context, fn func(ctx context.Context) error) error
}
