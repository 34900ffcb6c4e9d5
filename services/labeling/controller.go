// Copyright (C) 2026 Tanager ML (oss@tanagerml.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package labeling

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/tanagerml/tanager/pkg/logging"
)

// AdvanceOutcome reports what Advance did with the focused index.
type AdvanceOutcome int

const (
	// AdvanceMoved means focus moved within the current page.
	AdvanceMoved AdvanceOutcome = iota

	// AdvancePaged means the next page was fetched and focus reset to 0.
	AdvancePaged

	// AdvanceAtEnd means focus was already on the last item of the last
	// page; navigation past the end is a no-op, not an error.
	AdvanceAtEnd
)

// Controller owns the whole client-side state of one session view: the
// result cache, filters, selection set, optimistic gateway and iteration
// orchestrator. It is an explicit state object threaded through the TUI and
// CLI, never ambient globals.
//
// Single-owner: all methods must be called from the owning event loop. The
// only controller work that runs concurrently is Gateway.Push and the fetch
// halves of Refresh, neither of which touches controller state.
type Controller struct {
	api       SessionAPI
	session   *Session
	store     *ResultStore
	filter    *FilterState
	selection *Selection
	gateway   *Gateway
	orch      *Orchestrator
	progress  Progress
	metrics   *Metrics
	log       *logging.Logger
}

// NewController assembles the controller for one session.
func NewController(api SessionAPI, session *Session, log *logging.Logger, metrics *Metrics) *Controller {
	store := NewResultStore()
	filter := NewFilterState()
	return &Controller{
		api:       api,
		session:   session,
		store:     store,
		filter:    filter,
		selection: NewSelection(),
		gateway:   NewGateway(api, store, session.ID, metrics),
		orch:      NewOrchestrator(api, session, filter, metrics),
		metrics:   metrics,
		log:       log,
	}
}

// Session returns the session this controller drives.
func (c *Controller) Session() *Session { return c.session }

// Store returns the result cache.
func (c *Controller) Store() *ResultStore { return c.store }

// Filter returns the filter/pagination state.
func (c *Controller) Filter() *FilterState { return c.filter }

// Selection returns the bulk selection set.
func (c *Controller) Selection() *Selection { return c.selection }

// Gateway returns the optimistic mutation gateway.
func (c *Controller) Gateway() *Gateway { return c.gateway }

// Orchestrator returns the iteration orchestrator.
func (c *Controller) Orchestrator() *Orchestrator { return c.orch }

// API exposes the server boundary for callers that fetch off the event loop
// (TUI commands) and feed the data back through Apply* methods.
func (c *Controller) API() SessionAPI { return c.api }

// Metrics returns the counter set shared by every labeling path.
func (c *Controller) Metrics() *Metrics { return c.metrics }

// Progress returns the last fetched progress counters.
func (c *Controller) Progress() Progress { return c.progress }

// ApplyResults installs a freshly fetched page and clamps focus into it.
func (c *Controller) ApplyResults(page ResultPage) {
	c.store.Replace(page)
	c.filter.SetFocus(c.filter.Focus(), c.store.Len())
}

// ApplyProgress installs freshly fetched progress counters.
func (c *Controller) ApplyProgress(p Progress) { c.progress = p }

// ApplySession installs a freshly polled session snapshot.
func (c *Controller) ApplySession(s Session) { *c.session = s }

// FetchPage fetches the page described by the current filter state and
// installs it.
func (c *Controller) FetchPage(ctx context.Context) error {
	q := c.filter.Query()
	c.log.Debug("fetching results", "query", q.String())
	page, err := c.api.ListResults(ctx, c.session.ID, q)
	if err != nil {
		return err
	}
	c.ApplyResults(*page)
	return nil
}

// FetchProgress fetches and installs the progress counters. This is the
// only refresh performed after a confirmed single-result mutation: a full
// result refetch would discard optimistic updates still in flight.
func (c *Controller) FetchProgress(ctx context.Context) error {
	p, err := c.api.GetProgress(ctx, c.session.ID)
	if err != nil {
		return err
	}
	c.ApplyProgress(*p)
	return nil
}

// Refresh fetches results and progress concurrently and installs both.
func (c *Controller) Refresh(ctx context.Context) error {
	var (
		page *ResultPage
		prog *Progress
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		page, err = c.api.ListResults(gctx, c.session.ID, c.filter.Query())
		return err
	})
	g.Go(func() error {
		var err error
		prog, err = c.api.GetProgress(gctx, c.session.ID)
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}
	c.ApplyResults(*page)
	c.ApplyProgress(*prog)
	return nil
}

// Focused returns the result under the cursor, or false on an empty page.
func (c *Controller) Focused() (Result, bool) {
	return c.store.At(c.filter.Focus())
}

// Advance moves focus to the next result. Within a page it only moves the
// index; at the last item of a non-last page it fetches the next page and
// focuses its first item; at the very end it is a no-op.
func (c *Controller) Advance(ctx context.Context) (AdvanceOutcome, error) {
	if c.filter.Focus() < c.store.Len()-1 {
		c.filter.SetFocus(c.filter.Focus()+1, c.store.Len())
		return AdvanceMoved, nil
	}
	if !c.filter.HasNextPage(c.store.Total()) {
		return AdvanceAtEnd, nil
	}
	c.filter.NextPage(c.store.Total())
	if err := c.FetchPage(ctx); err != nil {
		// Walk the page index back so a retry repeats the same advance.
		c.filter.PrevPage()
		return AdvanceAtEnd, err
	}
	return AdvancePaged, nil
}

// Retreat moves focus to the previous result, fetching the previous page
// when needed. A no-op at the very beginning.
func (c *Controller) Retreat(ctx context.Context) (AdvanceOutcome, error) {
	if c.filter.Focus() > 0 {
		c.filter.SetFocus(c.filter.Focus()-1, c.store.Len())
		return AdvanceMoved, nil
	}
	if !c.filter.PrevPage() {
		return AdvanceAtEnd, nil
	}
	if err := c.FetchPage(ctx); err != nil {
		c.filter.NextPage(c.store.Total())
		return AdvanceAtEnd, err
	}
	c.filter.SetFocus(c.store.Len()-1, c.store.Len())
	return AdvancePaged, nil
}

// SelectPage adds every result on the current page to the selection.
func (c *Controller) SelectPage() {
	c.selection.SelectAll(c.store.IDs())
}

// BulkApply sends one label action for the whole selection.
//
// Unlike the single-item path this is not optimistic: failures across many
// items are too hard to reconcile, so correctness wins over latency. On
// success the selection is cleared and both results and progress are
// refetched; on failure the selection is preserved so the user can retry
// without re-selecting.
func (c *Controller) BulkApply(ctx context.Context, action LabelAction) error {
	if c.selection.Len() == 0 {
		return ErrEmptySelection
	}
	ids := c.selection.IDs()
	c.log.Info("bulk label", "count", len(ids), "action", action.String())
	if err := c.api.LabelResults(ctx, c.session.ID, ids, action); err != nil {
		c.metrics.BulkOps.WithLabelValues("error").Inc()
		return err
	}
	c.metrics.BulkOps.WithLabelValues("ok").Inc()
	c.selection.Clear()
	return c.Refresh(ctx)
}
