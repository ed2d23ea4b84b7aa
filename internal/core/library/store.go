// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package library

import "context"

// Repository persists library entries.
type Repository interface {
	ListEntries(ctx context.Context, filter Filter, limit, offset int) ([]*Entry, int, error)
	GetEntry(ctx context.Context, seriesID string) (*Entry, error)

	// UpsertEntry inserts the entry of a series or replaces its status and
	// source. entry.ID is only used on insert.
	UpsertEntry(ctx context.Context, entry *Entry) error
	DeleteEntry(ctx context.Context, seriesID string) error

	// LinkedEntries lists every entry whose series has an identifier on the
	// provider tagged p ("mu", "dex").
	LinkedEntries(ctx context.Context, p string) ([]*Linked, error)
}
