// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package library tracks the reading status of stored series.

One entry exists per series. Entries are written by hand through the API or by
the list synchronisation job, which records where the status came from.
*/
package library

import (
	"slices"
	"time"
)

// Status is the reading state of a series.
type Status string

const (
	StatusReading    Status = "reading"
	StatusPlanToRead Status = "plan_to_read"
	StatusCompleted  Status = "completed"
	StatusDropped    Status = "dropped"
	StatusOnHold     Status = "on_hold"
	StatusReReading  Status = "re_reading"
)

// Statuses lists every accepted status.
var Statuses = []Status{
	StatusReading, StatusPlanToRead, StatusCompleted, StatusDropped, StatusOnHold, StatusReReading,
}

// Valid reports whether s is one of [Statuses].
func (s Status) Valid() bool {
	return slices.Contains(Statuses, s)
}

// Source records who wrote an entry.
type Source string

const (
	SourceManual       Source = "manual"
	SourceMangaDex     Source = "mangadex"
	SourceMangaUpdates Source = "mangaupdates"
)

// Entry is the library row of one series.
type Entry struct {
	ID        string    `json:"id"`
	SeriesID  string    `json:"series_id"`
	Title     string    `json:"title,omitempty"`
	Status    Status    `json:"status"`
	Source    Source    `json:"source"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Linked is an entry whose series carries the identifier of one provider.
type Linked struct {
	Entry
	ProviderID string `json:"provider_id"`
}

// Filter narrows a library listing.
type Filter struct {
	Status Status
	Source Source
}

const (
	FieldSeriesID = "series_id"
	FieldStatus   = "status"
)
