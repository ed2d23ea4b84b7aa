// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package pointer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/shelfsync/pkg/pointer"
)

func TestOrNil(t *testing.T) {
	assert.Nil(t, pointer.OrNil(""))
	assert.Nil(t, pointer.OrNil(0))
	assert.Equal(t, "vy4abhh", *pointer.OrNil("vy4abhh"))
}

func TestVal(t *testing.T) {
	assert.Equal(t, "", pointer.Val[string](nil))
	assert.Equal(t, 2024, pointer.Val(pointer.To(2024)))
}
