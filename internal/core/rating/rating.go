// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package rating keeps the community and personal ratings providers publish for
stored series.

Ratings arrive in batches keyed by the provider's own identifier: pushed by an
administrator or pulled by the list synchronisation jobs. Identifiers of series
that are not stored are reported back rather than imported.
*/
package rating

import (
	"slices"
	"time"

	"github.com/taibuivan/shelfsync/internal/core/series"
)

// Providers lists the providers whose ratings are kept.
var Providers = []series.Provider{series.MangaUpdates, series.MangaDex, series.MyAnimeList}

// Bounds of a rating. Every kept provider rates on a ten point scale.
const (
	MaxRating     = 10.0
	MinUserRating = 1.0
	MaxVotes      = 1<<31 - 1
)

// Rating is what one provider says about one stored series.
type Rating struct {
	SeriesID   string          `json:"series_id"`
	Provider   series.Provider `json:"provider"`
	Rating     *float64        `json:"rating,omitempty"`
	Votes      *int            `json:"votes,omitempty"`
	UserRating *float64        `json:"user_rating,omitempty"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// Score is the community rating of one provider entry.
type Score struct {
	ID     string  `json:"id"`
	Rating float64 `json:"rating"`
	Votes  int     `json:"votes"`
}

// UserScore is the account owner's own rating of one provider entry.
type UserScore struct {
	ID     string  `json:"id"`
	Rating float64 `json:"rating"`
}

// Batch is one provider's ratings.
type Batch struct {
	Provider   series.Provider `json:"provider"`
	Scores     []Score         `json:"ratings"`
	UserScores []UserScore     `json:"user_ratings"`
}

// Result counts what a batch changed. NotExist lists the provider ids with no
// stored series, sorted.
type Result struct {
	Created   int      `json:"created"`
	Updated   int      `json:"updated"`
	Unchanged int      `json:"unchanged"`
	NotExist  []string `json:"not_exist"`
}

// Change is the effect of one write.
type Change int

const (
	Unchanged Change = iota
	Created
	Updated
)

func (result *Result) count(change Change) {
	switch change {
	case Created:
		result.Created++
	case Updated:
		result.Updated++
	default:
		result.Unchanged++
	}
}

func kept(p series.Provider) bool {
	return slices.Contains(Providers, p)
}

const (
	FieldSeriesID    = "series_id"
	FieldProvider    = "provider"
	FieldRatings     = "ratings"
	FieldUserRatings = "user_ratings"
)
