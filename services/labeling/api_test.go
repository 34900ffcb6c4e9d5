// Copyright (C) 2026 Tanager ML (oss@tanagerml.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package labeling

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/tanagerml/tanager/pkg/logging"
)

// fakeAPI is a scriptable SessionAPI that counts every call, so tests can
// assert not just outcomes but how many network round trips an operation
// cost.
type fakeAPI struct {
	getSessionFn func(sessionID string) (*Session, error)
	searchFn     func() (*SearchResponse, error)
	iterateFn    func(req IterationRequest) (*IterationResponse, error)
	progressFn   func() (*Progress, error)
	listFn       func(q ResultQuery) (*ResultPage, error)
	labelFn      func(resultID int64, action LabelAction) error
	bulkFn       func(resultIDs []int64, action LabelAction) error
	distFn       func() ([]ScoreDistribution, error)
	deployFn     func(req DeployRequest) (*DeployResponse, error)

	calls       map[string]int
	lastQuery   ResultQuery
	lastBulkIDs []int64
	lastAction  LabelAction
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{calls: make(map[string]int)}
}

func (f *fakeAPI) count(op string) { f.calls[op]++ }

func (f *fakeAPI) GetSession(ctx context.Context, sessionID string) (*Session, error) {
	f.count("get_session")
	if f.getSessionFn != nil {
		return f.getSessionFn(sessionID)
	}
	return &Session{ID: sessionID}, nil
}

func (f *fakeAPI) ExecuteSearch(ctx context.Context, sessionID string) (*SearchResponse, error) {
	f.count("search")
	if f.searchFn != nil {
		return f.searchFn()
	}
	return &SearchResponse{}, nil
}

func (f *fakeAPI) RunIteration(ctx context.Context, sessionID string, req IterationRequest) (*IterationResponse, error) {
	f.count("iterate")
	if f.iterateFn != nil {
		return f.iterateFn(req)
	}
	return &IterationResponse{Iteration: 1}, nil
}

func (f *fakeAPI) GetProgress(ctx context.Context, sessionID string) (*Progress, error) {
	f.count("progress")
	if f.progressFn != nil {
		return f.progressFn()
	}
	return &Progress{}, nil
}

func (f *fakeAPI) ListResults(ctx context.Context, sessionID string, q ResultQuery) (*ResultPage, error) {
	f.count("list")
	f.lastQuery = q
	if f.listFn != nil {
		return f.listFn(q)
	}
	return &ResultPage{}, nil
}

func (f *fakeAPI) LabelResult(ctx context.Context, sessionID string, resultID int64, action LabelAction) error {
	f.count("label")
	f.lastAction = action
	if f.labelFn != nil {
		return f.labelFn(resultID, action)
	}
	return nil
}

func (f *fakeAPI) LabelResults(ctx context.Context, sessionID string, resultIDs []int64, action LabelAction) error {
	f.count("bulk_label")
	f.lastBulkIDs = resultIDs
	f.lastAction = action
	if f.bulkFn != nil {
		return f.bulkFn(resultIDs, action)
	}
	return nil
}

func (f *fakeAPI) GetScoreDistributions(ctx context.Context, sessionID string) ([]ScoreDistribution, error) {
	f.count("distributions")
	if f.distFn != nil {
		return f.distFn()
	}
	return nil, nil
}

func (f *fakeAPI) Deploy(ctx context.Context, sessionID string, req DeployRequest) (*DeployResponse, error) {
	f.count("deploy")
	if f.deployFn != nil {
		return f.deployFn(req)
	}
	return &DeployResponse{ModelID: "model-1"}, nil
}

var _ SessionAPI = (*fakeAPI)(nil)

// newTestMetrics returns metrics on a private registry so parallel tests do
// not collide.
func newTestMetrics() *Metrics {
	return NewMetrics(prometheus.NewRegistry())
}

func newTestLogger() *logging.Logger {
	return logging.New(logging.Config{Quiet: true})
}

// testSession is a two-tag session with search already executed.
func testSession() *Session {
	return &Session{
		ID:   "sess-1",
		Name: "warbler hunt",
		Tags: []Tag{
			{ID: 11, Name: "marsh warbler", Shortcut: 1},
			{ID: 22, Name: "reed warbler", Shortcut: 2},
		},
		Iteration:      0,
		SearchExecuted: true,
		Status:         StatusReady,
	}
}

// resultFixture builds n unlabeled results with ids 1..n.
func resultFixture(n int) []Result {
	out := make([]Result, n)
	for i := range out {
		out[i] = Result{
			ID:         int64(i + 1),
			Score:      float64(i) / float64(n),
			Rank:       i + 1,
			Provenance: ProvenanceEasyPositive,
			Recording: RecordingRef{
				RecordingID: "rec-1",
				StartSec:    float64(i) * 3,
				EndSec:      float64(i)*3 + 3,
			},
		}
	}
	return out
}

func newTestController(t *testing.T, api SessionAPI) *Controller {
	t.Helper()
	return NewController(api, testSession(), newTestLogger(), newTestMetrics())
}
