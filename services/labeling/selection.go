// Copyright (C) 2026 Tanager ML (oss@tanagerml.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package labeling

import "sort"

// Selection is the checked set of result identifiers for bulk operations.
//
// The set is keyed by identifier, not page position: selecting survives page
// changes by design. Bulk controls must be disabled while the selection is
// empty.
type Selection struct {
	ids map[int64]struct{}
}

// NewSelection returns an empty selection.
func NewSelection() *Selection {
	return &Selection{ids: make(map[int64]struct{})}
}

// Toggle flips one result in or out of the selection and reports whether it
// is now selected.
func (s *Selection) Toggle(id int64) bool {
	if _, ok := s.ids[id]; ok {
		delete(s.ids, id)
		return false
	}
	s.ids[id] = struct{}{}
	return true
}

// Contains reports whether the result is selected.
func (s *Selection) Contains(id int64) bool {
	_, ok := s.ids[id]
	return ok
}

// SelectAll adds every given id (select-all-on-current-page).
func (s *Selection) SelectAll(ids []int64) {
	for _, id := range ids {
		s.ids[id] = struct{}{}
	}
}

// Clear empties the selection.
func (s *Selection) Clear() {
	s.ids = make(map[int64]struct{})
}

// Len returns the number of selected results.
func (s *Selection) Len() int { return len(s.ids) }

// IDs returns the selected identifiers in ascending order.
func (s *Selection) IDs() []int64 {
	out := make([]int64, 0, len(s.ids))
	for id := range s.ids {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
