// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package series

import (
	"regexp"
	"slices"

	"github.com/taibuivan/shelfsync/internal/platform/apperr"
	"github.com/taibuivan/shelfsync/internal/platform/validate"
)

var (
	muPattern    = regexp.MustCompile(`^[0-9a-z]+$`)
	digitPattern = regexp.MustCompile(`^[0-9]+$`)
	linePattern  = regexp.MustCompile(`^[oc]:[0-9]+$`)
)

// IDs is the external identifier set of one logical series or author, keyed by
// provider tag. Values are kept in string form even for numeric providers.
type IDs map[Provider]string

// Get returns the identifier for p, or "" when it is unset.
func (ids IDs) Get(p Provider) string {
	return ids[p]
}

// Keys returns the providers present in ids, in priority order.
func (ids IDs) Keys() []Provider {
	keys := make([]Provider, 0, len(ids))
	for _, p := range Priority {
		if ids[p] != "" {
			keys = append(keys, p)
		}
	}
	return keys
}

// Clone returns a copy that does not share storage with ids. Empty values are dropped.
func (ids IDs) Clone() IDs {
	out := make(IDs, len(ids))
	for p, v := range ids {
		if v != "" {
			out[p] = v
		}
	}
	return out
}

// Equal reports whether both sets hold the same non-empty identifiers.
func (ids IDs) Equal(other IDs) bool {
	left, right := ids.Clone(), other.Clone()
	if len(left) != len(right) {
		return false
	}
	for p, v := range left {
		if right[p] != v {
			return false
		}
	}
	return true
}

// Validate checks every identifier against its provider syntax and requires at
// least one entry. It runs before any provider is contacted.
func (ids IDs) Validate() error {
	v := &validate.Validator{}

	present := ids.Keys()
	v.Custom("ids", len(present) == 0, "At least one identifier is required")

	for p, value := range ids {
		field := "ids." + string(p)
		switch p {
		case MangaUpdates:
			v.Pattern(field, value, muPattern, "a lowercase base-36 token")
		case MangaDex:
			v.UUID(field, value)
		case MyAnimeList, Bato:
			v.Pattern(field, value, digitPattern, "a numeric identifier")
		case Webtoon:
			v.Pattern(field, value, linePattern, "o:<digits> or c:<digits>")
		default:
			v.Custom(field, true, "Unknown provider")
		}
	}

	return v.Err()
}

// AuthorIDs keeps only the tags of providers that identify people.
func (ids IDs) AuthorIDs() IDs {
	out := IDs{}
	for p, v := range ids {
		if p.AuthorCapable() && v != "" {
			out[p] = v
		}
	}
	return out
}

// Absorb folds discovered identifiers into a copy of ids. An unset tag adopts
// the new value and an equal value is a no-op. A different value for a tag that
// is already set is an identity conflict, never an overwrite.
func (ids IDs) Absorb(discovered IDs) (IDs, error) {
	out := ids.Clone()

	tags := make([]Provider, 0, len(discovered))
	for p := range discovered {
		tags = append(tags, p)
	}
	slices.Sort(tags)

	for _, p := range tags {
		value := discovered[p]
		if value == "" {
			continue
		}
		current, found := out[p]
		switch {
		case !found:
			out[p] = value
		case current != value:
			return ids, apperr.IdentityConflict(
				"Providers disagree on the "+p.Name()+" identifier",
				string(p)+": "+current+" != "+value,
			)
		}
	}

	return out, nil
}
