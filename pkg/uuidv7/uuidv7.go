// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package uuidv7 wraps google/uuid to generate time-ordered UUIDv7 values.
//
// Series, authors and library entries are keyed by UUIDv7 so rows sort by
// creation time in their btree indexes.
package uuidv7

import "github.com/google/uuid"

// New generates a new UUIDv7 string. It panics only if the OS random source
// is unavailable.
func New() string {
	id, err := uuid.NewV7()
	if err != nil {
		panic("uuidv7: failed to generate UUID: " + err.Error())
	}

	return id.String()
}
