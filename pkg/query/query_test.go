// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package query_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/shelfsync/pkg/query"
)

/*
TestStringSlice checks the parsing of comma-separated parameters.
*/
func TestStringSlice(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"empty", "", nil},
		{"single", "Action", []string{"Action"}},
		{"trimmed", " Action , Drama ", []string{"Action", "Drama"}},
		{"blank_entries", ",Action,,", []string{"Action"}},
		{"repeated", "Drama,Drama", []string{"Drama"}},
		{"only_commas", ",,", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, query.StringSlice(tt.input))
		})
	}
}

func TestInt(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  int
	}{
		{"number", "42", 42},
		{"negative", "-3", -3},
		{"empty", "", 7},
		{"garbage", "4x", 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, query.Int(tt.input, 7))
		})
	}
}
