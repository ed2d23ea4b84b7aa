// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package author

import (
	"context"

	"github.com/taibuivan/shelfsync/internal/core/series"
)

// Repository persists authors and their credits.
type Repository interface {
	ListAuthors(ctx context.Context, filter Filter, limit, offset int) ([]*Author, int, error)
	GetAuthor(ctx context.Context, id string) (*Author, error)

	// FindByAnyID returns every author owning at least one identifier of ids.
	FindByAnyID(ctx context.Context, ids series.IDs) ([]*Author, error)
	// FindByName returns the authors without identifiers named name, ignoring case.
	FindByName(ctx context.Context, name string) ([]*Author, error)

	CreateAuthor(ctx context.Context, author *Author) error
	UpdateAuthor(ctx context.Context, author *Author) error

	// MergeAuthors moves the credits of absorbed to keep, deletes absorbed and
	// stores keep with its unioned identifiers, in one transaction.
	MergeAuthors(ctx context.Context, keep *Author, absorbed string) error
}
