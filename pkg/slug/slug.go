// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package slug generates ASCII URL slugs from arbitrary Unicode strings.
//
// Imported series get a slug from their primary title (e.g. "solo-leveling").
// Titles without any Latin letter or digit produce an empty slug.
package slug

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// separators matches every run of characters outside [a-z0-9].
var separators = regexp.MustCompile(`[^a-z0-9]+`)

// From converts s into a lowercase, hyphen-separated ASCII slug.
func From(s string) string {
	// A chained transformer keeps state, so each call builds its own (é → e).
	stripMarks := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(stripMarks, s)
	if err != nil {
		folded = s
	}

	return strings.Trim(separators.ReplaceAllString(strings.ToLower(folded), "-"), "-")
}
