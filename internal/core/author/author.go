// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package author stores the people credited on reconciled series.

An author is identified by any of its MangaUpdates, MangaDex or MyAnimeList
identifiers. Imports resolve provider contributions to stored authors, filling
in identifiers as new providers report them; two stored authors found to be the
same person are merged by an administrator.
*/
package author

import (
	"time"

	"github.com/taibuivan/shelfsync/internal/core/series"
)

// Author is a stored person.
type Author struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	IDs       series.IDs `json:"ids"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// Filter holds the parameters for a paginated author search.
type Filter struct {
	Query string // case-insensitive match on name
}

// Global field names for validation
const (
	FieldID    = "id"
	FieldOther = "other"
)
