// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package series reconciles one logical manga series across several providers.

Architecture:

  - Model: external identifier sets, per-provider normalized records and the merged record.
  - Identity: folding discovered identifiers into a working set, refusing silent overwrites.
  - Merge: priority-ordered primary record plus secondary genres, alternate titles and authors.
  - Service: the reconcile, lookup and import operations consumed by HTTP and the sync job.
*/
package series

import (
	"strings"
	"time"
)

// # Providers

// Provider is the short tag of an external source.
type Provider string

const (
	MangaUpdates Provider = "mu"
	MangaDex     Provider = "dex"
	MyAnimeList  Provider = "mal"
	Bato         Provider = "bato"
	Webtoon      Provider = "line"
)

// Priority is the fixed order used to pick the primary record. The earlier a
// provider appears, the more its curation is trusted for description and genres.
var Priority = []Provider{MangaUpdates, MangaDex, MyAnimeList, Bato, Webtoon}

// FetchOrder queries the providers that link to other providers first.
var FetchOrder = []Provider{MangaDex, Bato, MangaUpdates, MyAnimeList, Webtoon}

var providerNames = map[Provider]string{
	MangaUpdates: "MangaUpdates",
	MangaDex:     "MangaDex",
	MyAnimeList:  "MyAnimeList",
	Bato:         "Bato.to",
	Webtoon:      "Line Webtoon",
}

// Valid reports whether p is one of the five known providers.
func (p Provider) Valid() bool {
	_, found := providerNames[p]
	return found
}

// Name returns the display name of the provider.
func (p Provider) Name() string {
	if name, found := providerNames[p]; found {
		return name
	}
	return string(p)
}

// AuthorCapable reports whether the provider assigns identifiers to people.
func (p Provider) AuthorCapable() bool {
	return p == MangaUpdates || p == MangaDex || p == MyAnimeList
}

// discoversIDs reports whether records of p are trusted to extend the working id set.
func (p Provider) discoversIDs() bool {
	return p == MangaDex || p == Bato || p == MangaUpdates
}

// bringsAuthors reports whether a secondary record of p contributes authors to the merge.
func (p Provider) bringsAuthors() bool {
	return p == MangaDex || p == MyAnimeList
}

// # Vocabulary

// Type is the publication format of a series.
type Type string

const (
	TypeManga      Type = "Manga"
	TypeManhwa     Type = "Manhwa"
	TypeManhua     Type = "Manhua"
	TypeOEL        Type = "OEL"
	TypeVietnamese Type = "Vietnamese"
	TypeMalaysian  Type = "Malaysian"
	TypeIndonesian Type = "Indonesian"
	TypeNovel      Type = "Novel"
	TypeArtbook    Type = "Artbook"
	TypeOther      Type = "Other"
)

// Types lists every publication format.
var Types = []Type{
	TypeManga, TypeManhwa, TypeManhua, TypeOEL, TypeVietnamese,
	TypeMalaysian, TypeIndonesian, TypeNovel, TypeArtbook, TypeOther,
}

// Role is the part a person played in a series.
type Role string

const (
	RoleAuthor Role = "Author"
	RoleArtist Role = "Artist"
	RoleBoth   Role = "Both"
)

// ParseRole accepts provider spellings such as "author", "Artist" or "BOTH".
// The second result is false for anything else.
func ParseRole(raw string) (Role, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "author", "story", "writer":
		return RoleAuthor, true
	case "artist", "art", "illustrator":
		return RoleArtist, true
	case "both", "story & art":
		return RoleBoth, true
	}
	return "", false
}

// # Records

// Contribution is one person credited on a series. Name may be empty when only
// identifiers are known; IDs only ever hold mu, dex or mal.
type Contribution struct {
	Name string `json:"name,omitempty"`
	Role Role   `json:"role"`
	IDs  IDs    `json:"ids,omitempty"`
}

// Record is what one provider adapter returns after normalisation. Records are
// built fresh for every fetch and never modified afterwards.
type Record struct {
	Provider          Provider       `json:"provider"`
	IDs               IDs            `json:"ids"`
	Title             string         `json:"title"`
	AltTitles         []string       `json:"alt_titles"`
	Type              Type           `json:"type"`
	Description       string         `json:"description"`
	Genres            []string       `json:"genres"`
	OneShot           bool           `json:"is_one_shot_or_anthology"`
	Authors           []Contribution `json:"authors"`
	Year              *int           `json:"year,omitempty"`
	ThumbnailURL      string         `json:"thumbnail_url,omitempty"`
	Status            string         `json:"status,omitempty"`
	ProviderTimestamp *time.Time     `json:"provider_timestamp,omitempty"`
}

// Merged is the reconciled series, built once per request and persisted whole.
type Merged struct {
	IDs          IDs                    `json:"ids"`
	Primary      Provider               `json:"primary"`
	Title        string                 `json:"title"`
	AltTitles    []string               `json:"alt_titles"`
	Type         Type                   `json:"type"`
	Description  string                 `json:"description"`
	Genres       []string               `json:"genres"`
	OneShot      bool                   `json:"is_one_shot_or_anthology"`
	Authors      []Contribution         `json:"authors"`
	Year         *int                   `json:"year,omitempty"`
	ThumbnailURL string                 `json:"thumbnail_url,omitempty"`
	Status       string                 `json:"status,omitempty"`
	Timestamps   map[Provider]time.Time `json:"timestamps,omitempty"`
}

// Outcome is the HTTP-like status observed for one provider during a reconciliation.
type Outcome struct {
	Provider Provider `json:"provider"`
	Status   int      `json:"status"`
	Skipped  bool     `json:"skipped,omitempty"`
}

// Reconciliation is the result of [Service.Reconcile].
type Reconciliation struct {
	Record   *Merged   `json:"record"`
	Outcomes []Outcome `json:"outcomes"`
}
