// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package series

import (
	"errors"
	"log/slog"
	"net/http"
	"slices"
	"time"

	"github.com/taibuivan/shelfsync/internal/platform/apperr"
)

// Merge folds the normalized records of several providers into one series.
//
// The first provider of [Priority] present in perProvider is the primary: its
// title, type, description and flags win. The other providers are folded in
// priority order, which keeps the result identical for identical input:
//
//   - MangaDex and MyAnimeList contribute their authors.
//   - Genres and alternate titles are appended when not yet present. An alternate
//     title equal to the primary title is never kept.
//
// When authors came from more than one source they go through [MergeAuthorIDs].
// resolved becomes the identifier set of the result.
func Merge(perProvider map[Provider]*Record, resolved IDs, logger *slog.Logger) (*Merged, error) {
	present := make([]Provider, 0, len(perProvider))
	for _, p := range Priority {
		if perProvider[p] != nil {
			present = append(present, p)
		}
	}
	if len(present) == 0 {
		return nil, apperr.NotFound("Series")
	}

	primary := perProvider[present[0]]
	merged := &Merged{
		IDs:          resolved.Clone(),
		Primary:      primary.Provider,
		Title:        primary.Title,
		Type:         primary.Type,
		Description:  primary.Description,
		OneShot:      primary.OneShot,
		Year:         primary.Year,
		ThumbnailURL: primary.ThumbnailURL,
		Status:       primary.Status,
		Timestamps:   map[Provider]time.Time{},
	}
	merged.Genres = appendUnique(nil, primary.Genres, "")
	merged.AltTitles = appendUnique(nil, primary.AltTitles, primary.Title)
	merged.Authors = slices.Clone(primary.Authors)

	if primary.ProviderTimestamp != nil {
		merged.Timestamps[primary.Provider] = *primary.ProviderTimestamp
	}

	count := 1
	for _, p := range present[1:] {
		secondary := perProvider[p]

		if p.bringsAuthors() {
			merged.Authors = append(merged.Authors, secondary.Authors...)
			count++
		}

		merged.Genres = appendUnique(merged.Genres, secondary.Genres, "")
		merged.AltTitles = appendUnique(merged.AltTitles, secondary.AltTitles, merged.Title)

		if merged.Year == nil && secondary.Year != nil {
			year := *secondary.Year
			merged.Year = &year
		}
		if merged.ThumbnailURL == "" {
			merged.ThumbnailURL = secondary.ThumbnailURL
		}
		if secondary.ProviderTimestamp != nil {
			merged.Timestamps[p] = *secondary.ProviderTimestamp
		}
	}

	if count > 1 {
		merged.Authors = MergeAuthorIDs(merged.Authors, count, logger)
	}

	return merged, nil
}

// appendUnique appends every value of add that is neither empty, equal to
// exclude, nor already in dst.
func appendUnique(dst, add []string, exclude string) []string {
	if dst == nil {
		dst = make([]string, 0, len(add))
	}
	for _, value := range add {
		if value == "" || value == exclude || slices.Contains(dst, value) {
			continue
		}
		dst = append(dst, value)
	}
	return dst
}

// FailureFrom picks the error reported when every provider failed. An
// unavailable provider outranks a missing entry, which outranks anything else:
// "service down" is more actionable than "not found" when both were observed.
func FailureFrom(errs []error) error {
	var notFound error
	for _, err := range errs {
		switch apperr.Status(err) {
		case http.StatusBadGateway:
			return err
		case http.StatusNotFound:
			if notFound == nil {
				notFound = err
			}
		}
	}
	if notFound != nil {
		return notFound
	}
	return apperr.Internal(errors.Join(errs...))
}
