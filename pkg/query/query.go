// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package query parses list-valued URL query parameters.
package query

import (
	"strconv"
	"strings"

	"github.com/samber/lo"
)

// StringSlice splits a comma-separated parameter, trimming every entry and
// dropping the empty and repeated ones. An empty value yields nil.
func StringSlice(value string) []string {
	if value == "" {
		return nil
	}

	entries := lo.Map(strings.Split(value, ","), func(entry string, _ int) string {
		return strings.TrimSpace(entry)
	})
	entries = lo.Uniq(lo.Compact(entries))
	if len(entries) == 0 {
		return nil
	}
	return entries
}

// Int parses value, returning fallback when it is empty or not an integer.
func Int(value string, fallback int) int {
	if n, err := strconv.Atoi(value); err == nil {
		return n
	}
	return fallback
}
