// Copyright (C) 2026 Tanager ML (oss@tanagerml.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package labeling

import (
	"context"

	"github.com/google/uuid"
)

// Mutation is one in-flight optimistic label application: the snapshot taken
// at call time plus everything needed to push, acknowledge or roll it back.
//
// The snapshot taken at call start is authoritative for rollback. Under two
// rapid failed mutations on the same result, the second rollback restores
// the first mutation's intermediate state rather than the true original.
// This is a documented trade-off of not serializing acknowledgements, not a
// bug: rapid-fire labeling is a design goal and the progress refetch is the
// reconciliation mechanism.
type Mutation struct {
	// ID correlates the acknowledgement or failure message back to this
	// mutation through the event loop.
	ID uuid.UUID

	// ResultID identifies the mutated result.
	ResultID int64

	// Action is the instruction applied locally and sent to the server.
	Action LabelAction

	// AutoAdvance is true for the three status actions: the view should
	// move focus to the next result after applying. Tag toggles never
	// auto-advance.
	AutoAdvance bool

	// prev is the exact pre-mutation snapshot.
	prev Result
}

// Prev returns the pre-mutation snapshot (for tests and debugging).
func (m *Mutation) Prev() Result { return m.prev }

// Gateway wraps every single-result label change with local cache mutation,
// rollback on error and selective auto-advance.
//
// # Description
//
// Apply rewrites the cache synchronously before any network round trip and
// returns a Mutation handle. Push performs the network call and is safe to
// run off the event loop: it touches only the API client and the mutation
// value. On failure the owner calls Rollback on its own goroutine. Multiple
// mutations may be in flight at once; acknowledgements are deliberately not
// serialized; the last local apply wins for the optimistic view.
//
// On success the caller refreshes only the progress counters, never the
// result list: a full refetch would discard other optimistic updates still
// in flight.
type Gateway struct {
	api       SessionAPI
	store     *ResultStore
	sessionID string
	metrics   *Metrics
}

// NewGateway creates a gateway over the given store and API.
func NewGateway(api SessionAPI, store *ResultStore, sessionID string, metrics *Metrics) *Gateway {
	return &Gateway{api: api, store: store, sessionID: sessionID, metrics: metrics}
}

// Apply validates the target, snapshots it, applies the action to the cache
// and returns the mutation handle. Synchronous; no network.
func (g *Gateway) Apply(resultID int64, action LabelAction) (*Mutation, error) {
	prev, ok := g.store.Get(resultID)
	if !ok {
		return nil, ErrUnknownResult
	}

	next := prev
	action.applyTo(&next)
	g.store.Set(next)
	g.metrics.LabelsApplied.WithLabelValues(action.Kind().String()).Inc()

	return &Mutation{
		ID:          uuid.New(),
		ResultID:    resultID,
		Action:      action,
		AutoAdvance: action.IsStatus(),
		prev:        prev,
	}, nil
}

// ToggleTag applies the tag toggle algorithm to the result's current set and
// delegates to Apply. The outgoing request always carries the full resulting
// set; see labelPayload for the legacy singular field.
func (g *Gateway) ToggleTag(resultID, tagID int64) (*Mutation, error) {
	r, ok := g.store.Get(resultID)
	if !ok {
		return nil, ErrUnknownResult
	}
	return g.Apply(resultID, TagAction(ToggledTagSet(r, tagID)))
}

// Push sends the mutation to the server. It does not touch the store, so it
// may run concurrently with further Apply calls. The caller routes a failure
// back to Rollback on the owning goroutine.
func (g *Gateway) Push(ctx context.Context, m *Mutation) error {
	return g.api.LabelResult(ctx, g.sessionID, m.ResultID, m.Action)
}

// Rollback restores the exact pre-call snapshot captured by Apply. A no-op
// when the result has since left the page cache.
func (g *Gateway) Rollback(m *Mutation) {
	if g.store.Set(m.prev) {
		g.metrics.Rollbacks.Inc()
	}
}
