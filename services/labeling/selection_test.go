// Copyright (C) 2026 Tanager ML (oss@tanagerml.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package labeling

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSelectionToggle(t *testing.T) {
	s := NewSelection()
	assert.True(t, s.Toggle(5))
	assert.True(t, s.Contains(5))
	assert.False(t, s.Toggle(5))
	assert.False(t, s.Contains(5))
	assert.Equal(t, 0, s.Len())
}

func TestSelectionSelectAllIsIdempotent(t *testing.T) {
	s := NewSelection()
	s.Toggle(2)
	s.SelectAll([]int64{1, 2, 3})
	s.SelectAll([]int64{1, 2, 3})
	assert.Equal(t, 3, s.Len())
	assert.Equal(t, []int64{1, 2, 3}, s.IDs())
}

func TestSelectionClear(t *testing.T) {
	s := NewSelection()
	s.SelectAll([]int64{1, 2})
	s.Clear()
	assert.Equal(t, 0, s.Len())
	assert.False(t, s.Contains(1))
}

func TestSelectionIDsSorted(t *testing.T) {
	s := NewSelection()
	s.SelectAll([]int64{9, 3, 7, 1})
	assert.Equal(t, []int64{1, 3, 7, 9}, s.IDs())
}
