// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package slug_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/shelfsync/pkg/slug"
)

func TestFrom(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", "Solo Leveling", "solo-leveling"},
		{"accents", "Café Étrangère", "cafe-etrangere"},
		{"punctuation", "Kaguya-sama: Love is War!", "kaguya-sama-love-is-war"},
		{"digits", "20th Century Boys", "20th-century-boys"},
		{"no_latin", "나 혼자만 레벨업", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, slug.From(tt.input))
		})
	}
}
