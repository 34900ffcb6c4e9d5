// Copyright (C) 2026 Tanager ML (oss@tanagerml.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package labeling

// DefaultPageSize is the fixed result page size of the labeling view.
const DefaultPageSize = 12

// FilterState derives the active result subset: label-status filter ×
// iteration filter × page. Status and iteration filters compose as an AND.
//
// Changing any filter resets the page index and the focused-item index to 0
// so a stale index into a now-different result set is never preserved.
type FilterState struct {
	status    StatusFilter
	tagID     *int64
	iteration *int
	page      int
	pageSize  int
	focus     int
}

// NewFilterState returns the default view: all statuses, all iterations,
// first page.
func NewFilterState() *FilterState {
	return &FilterState{status: FilterAll, pageSize: DefaultPageSize}
}

// Status returns the active status filter.
func (f *FilterState) Status() StatusFilter { return f.status }

// TagID returns the tag id when the status filter is FilterTag, nil
// otherwise.
func (f *FilterState) TagID() *int64 { return f.tagID }

// Iteration returns the active iteration filter, nil meaning all.
func (f *FilterState) Iteration() *int { return f.iteration }

// Page returns the zero-based page index.
func (f *FilterState) Page() int { return f.page }

// PageSize returns the fixed page size.
func (f *FilterState) PageSize() int { return f.pageSize }

// Focus returns the focused-item index within the current page.
func (f *FilterState) Focus() int { return f.focus }

// SetStatus activates a non-tag status filter and resets page and focus.
func (f *FilterState) SetStatus(s StatusFilter) {
	f.status = s
	f.tagID = nil
	f.reset()
}

// SetTag activates the specific-tag filter and resets page and focus.
func (f *FilterState) SetTag(tagID int64) {
	f.status = FilterTag
	id := tagID
	f.tagID = &id
	f.reset()
}

// SetIteration narrows the view to one iteration and resets page and focus.
func (f *FilterState) SetIteration(iteration int) {
	n := iteration
	f.iteration = &n
	f.reset()
}

// ClearIteration widens the view back to all iterations and resets page and
// focus.
func (f *FilterState) ClearIteration() {
	f.iteration = nil
	f.reset()
}

func (f *FilterState) reset() {
	f.page = 0
	f.focus = 0
}

// Query produces the exact parameters for the results fetch.
func (f *FilterState) Query() ResultQuery {
	q := ResultQuery{
		Status:   f.status,
		Page:     f.page,
		PageSize: f.pageSize,
	}
	if f.tagID != nil {
		id := *f.tagID
		q.TagID = &id
	}
	if f.iteration != nil {
		n := *f.iteration
		q.Iteration = &n
	}
	return q
}

// PageCount returns the number of pages needed for total results.
func (f *FilterState) PageCount(total int) int {
	if total <= 0 {
		return 1
	}
	return (total + f.pageSize - 1) / f.pageSize
}

// HasNextPage reports whether a page follows the current one given the
// total from the last fetch.
func (f *FilterState) HasNextPage(total int) bool {
	return f.page+1 < f.PageCount(total)
}

// NextPage advances to the following page and resets focus. Returns false
// at the last page.
func (f *FilterState) NextPage(total int) bool {
	if !f.HasNextPage(total) {
		return false
	}
	f.page++
	f.focus = 0
	return true
}

// PrevPage moves to the preceding page and resets focus. Returns false at
// the first page.
func (f *FilterState) PrevPage() bool {
	if f.page == 0 {
		return false
	}
	f.page--
	f.focus = 0
	return true
}

// SetFocus clamps and stores the focused-item index for a page of n items.
func (f *FilterState) SetFocus(i, n int) {
	if n <= 0 {
		f.focus = 0
		return
	}
	if i < 0 {
		i = 0
	}
	if i >= n {
		i = n - 1
	}
	f.focus = i
}
