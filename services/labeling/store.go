// Copyright (C) 2026 Tanager ML (oss@tanagerml.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package labeling

// ResultStore caches the current page of results in fetch order.
//
// The store is a projection of server-shaped data: it never rewrites a
// result on its own. All mutation flows through the Gateway, which owns the
// snapshot/apply/rollback discipline. Derived label status is computed by
// DeriveStatus at read time, never stored.
//
// The store is owned by a single event loop and is deliberately unlocked:
// mutations are synchronous within one callback turn, and concurrent
// network acknowledgements re-enter the owner before touching the cache.
type ResultStore struct {
	results []Result
	byID    map[int64]int
	total   int
}

// NewResultStore returns an empty store.
func NewResultStore() *ResultStore {
	return &ResultStore{byID: make(map[int64]int)}
}

// Replace swaps in a freshly fetched page, discarding the previous one.
func (s *ResultStore) Replace(page ResultPage) {
	s.results = make([]Result, len(page.Results))
	copy(s.results, page.Results)
	s.total = page.Total
	s.byID = make(map[int64]int, len(page.Results))
	for i, r := range page.Results {
		s.byID[r.ID] = i
	}
}

// Get returns a copy of the result with the given id, or false when it is
// not on the current page.
func (s *ResultStore) Get(id int64) (Result, bool) {
	idx, ok := s.byID[id]
	if !ok {
		return Result{}, false
	}
	return s.results[idx], true
}

// At returns a copy of the result at the given page position, or false when
// the index is out of range.
func (s *ResultStore) At(i int) (Result, bool) {
	if i < 0 || i >= len(s.results) {
		return Result{}, false
	}
	return s.results[i], true
}

// Set overwrites the cached result matching r.ID. Returns false when the id
// is not on the current page. Only the Gateway calls this.
func (s *ResultStore) Set(r Result) bool {
	idx, ok := s.byID[r.ID]
	if !ok {
		return false
	}
	s.results[idx] = r
	return true
}

// Len returns the number of results on the current page.
func (s *ResultStore) Len() int { return len(s.results) }

// Total returns the number of results matching the current query across all
// pages.
func (s *ResultStore) Total() int { return s.total }

// Results returns a copy of the current page in order.
func (s *ResultStore) Results() []Result {
	out := make([]Result, len(s.results))
	copy(out, s.results)
	return out
}

// IDs returns the result ids of the current page in order.
func (s *ResultStore) IDs() []int64 {
	out := make([]int64, len(s.results))
	for i, r := range s.results {
		out[i] = r.ID
	}
	return out
}
