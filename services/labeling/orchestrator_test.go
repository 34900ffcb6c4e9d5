// Copyright (C) 2026 Tanager ML (oss@tanagerml.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package labeling

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestOrchestrator(api SessionAPI, session *Session) (*Orchestrator, *FilterState) {
	filter := NewFilterState()
	return NewOrchestrator(api, session, filter, newTestMetrics()), filter
}

func validIterationRequest() IterationRequest {
	return IterationRequest{
		LowerBound:  0.4,
		UpperBound:  0.6,
		SampleCount: 20,
		Classifier:  ClassifierLogReg,
		TagIDs:      []int64{11},
	}
}

func TestExecuteSearchTransition(t *testing.T) {
	api := newFakeAPI()
	api.searchFn = func() (*SearchResponse, error) {
		return &SearchResponse{ResultCount: 120}, nil
	}
	session := testSession()
	session.SearchExecuted = false
	session.Status = StatusIdle
	o, _ := newTestOrchestrator(api, session)
	require.Equal(t, PhaseNotExecuted, o.Phase())

	resp, err := o.ExecuteSearch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 120, resp.ResultCount)
	assert.Equal(t, PhaseExecuted, o.Phase())
	assert.Equal(t, 0, session.Iteration)
	assert.Equal(t, StatusRunning, session.Status)
}

// A failed search leaves the session untouched; repeating the action is the
// retry mechanism.
func TestExecuteSearchFailureIsRetriable(t *testing.T) {
	api := newFakeAPI()
	fail := true
	api.searchFn = func() (*SearchResponse, error) {
		if fail {
			return nil, errors.New("boom")
		}
		return &SearchResponse{ResultCount: 7}, nil
	}
	session := testSession()
	session.SearchExecuted = false
	o, _ := newTestOrchestrator(api, session)

	_, err := o.ExecuteSearch(context.Background())
	require.Error(t, err)
	assert.Equal(t, PhaseNotExecuted, o.Phase())
	assert.False(t, session.SearchExecuted)

	fail = false
	_, err = o.ExecuteSearch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, PhaseExecuted, o.Phase())
	assert.Equal(t, 2, api.calls["search"])
}

func TestExecuteSearchRejectsRepeat(t *testing.T) {
	api := newFakeAPI()
	o, _ := newTestOrchestrator(api, testSession())
	_, err := o.ExecuteSearch(context.Background())
	require.Error(t, err)
	assert.Equal(t, 0, api.calls["search"], "repeat must not reach the server")
}

func TestValidateIteration(t *testing.T) {
	o, _ := newTestOrchestrator(newFakeAPI(), testSession())

	cases := []struct {
		name    string
		mutate  func(r *IterationRequest)
		wantErr error
		wantSub string
	}{
		{"valid", func(r *IterationRequest) {}, nil, ""},
		{"no tags", func(r *IterationRequest) { r.TagIDs = nil }, ErrNoTagsIncluded, ""},
		{"unknown tag", func(r *IterationRequest) { r.TagIDs = []int64{99} }, nil, "unknown tag id 99"},
		{"inverted bounds", func(r *IterationRequest) { r.LowerBound, r.UpperBound = 0.8, 0.2 }, nil, "LowerBound"},
		{"lower bound out of range", func(r *IterationRequest) { r.LowerBound = -0.1 }, nil, "LowerBound"},
		{"upper bound out of range", func(r *IterationRequest) { r.UpperBound = 1.5 }, nil, "UpperBound"},
		{"sample count too small", func(r *IterationRequest) { r.SampleCount = 2 }, nil, "SampleCount"},
		{"sample count too large", func(r *IterationRequest) { r.SampleCount = 500 }, nil, "SampleCount"},
		{"bad classifier", func(r *IterationRequest) { r.Classifier = "svm" }, nil, "Classifier"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := validIterationRequest()
			tc.mutate(&req)
			err := o.ValidateIteration(req)
			switch {
			case tc.wantErr != nil:
				assert.ErrorIs(t, err, tc.wantErr)
			case tc.wantSub != "":
				require.Error(t, err)
				assert.True(t, strings.Contains(err.Error(), tc.wantSub),
					"error %q should mention %q", err, tc.wantSub)
			default:
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateIterationRequiresSearch(t *testing.T) {
	session := testSession()
	session.SearchExecuted = false
	o, _ := newTestOrchestrator(newFakeAPI(), session)
	assert.ErrorIs(t, o.ValidateIteration(validIterationRequest()), ErrSearchNotExecuted)
}

// A valid round costs exactly one network call and narrows the view to the
// new iteration; an invalid one costs zero.
func TestRunIterationCallCount(t *testing.T) {
	api := newFakeAPI()
	api.iterateFn = func(req IterationRequest) (*IterationResponse, error) {
		return &IterationResponse{Iteration: 1, NewResults: 20, TotalResults: 140}, nil
	}
	session := testSession()
	o, filter := newTestOrchestrator(api, session)
	filter.NextPage(100)

	resp, err := o.RunIteration(context.Background(), validIterationRequest())
	require.NoError(t, err)
	require.Equal(t, 1, api.calls["iterate"])
	assert.Equal(t, 1, session.Iteration)
	assert.Equal(t, StatusRunning, session.Status)
	assert.Equal(t, 20, resp.NewResults)

	require.NotNil(t, filter.Iteration())
	assert.Equal(t, 1, *filter.Iteration())
	assert.Equal(t, 0, filter.Page(), "committing a round resets pagination")

	bad := validIterationRequest()
	bad.TagIDs = nil
	_, err = o.RunIteration(context.Background(), bad)
	require.ErrorIs(t, err, ErrNoTagsIncluded)
	assert.Equal(t, 1, api.calls["iterate"], "invalid request must not reach the server")
}

func TestRunIterationFailureLeavesSessionUntouched(t *testing.T) {
	api := newFakeAPI()
	api.iterateFn = func(IterationRequest) (*IterationResponse, error) {
		return nil, errors.New("training crashed")
	}
	session := testSession()
	o, filter := newTestOrchestrator(api, session)

	_, err := o.RunIteration(context.Background(), validIterationRequest())
	require.Error(t, err)
	assert.Equal(t, 0, session.Iteration)
	assert.Nil(t, filter.Iteration())
}

func TestDeployGating(t *testing.T) {
	api := newFakeAPI()
	session := testSession()
	session.SearchExecuted = false
	o, _ := newTestOrchestrator(api, session)

	assert.False(t, o.CanDeploy())
	assert.Equal(t, "execute the initial search first", o.DeployLockReason())
	_, err := o.Deploy(context.Background(), DeployRequest{ModelName: "m"})
	assert.ErrorIs(t, err, ErrSearchNotExecuted)

	session.SearchExecuted = true
	assert.False(t, o.CanDeploy(), "iteration 0 is not deployable")
	assert.Equal(t, "run at least one training iteration first", o.DeployLockReason())
	_, err = o.Deploy(context.Background(), DeployRequest{ModelName: "m"})
	assert.ErrorIs(t, err, ErrDeployLocked)
	assert.Equal(t, 0, api.calls["deploy"])

	session.Iteration = 1
	assert.True(t, o.CanDeploy())
	assert.Empty(t, o.DeployLockReason())
}

func TestDeployIsTerminal(t *testing.T) {
	api := newFakeAPI()
	api.deployFn = func(req DeployRequest) (*DeployResponse, error) {
		return &DeployResponse{ModelID: "model-7", ProjectID: "proj-2"}, nil
	}
	session := testSession()
	session.Iteration = 2
	o, _ := newTestOrchestrator(api, session)

	resp, err := o.Deploy(context.Background(), DeployRequest{ModelName: "warblers-v1", CreateProject: true})
	require.NoError(t, err)
	assert.Equal(t, "model-7", resp.ModelID)
	assert.Equal(t, PhaseDeployed, o.Phase())

	_, err = o.Deploy(context.Background(), DeployRequest{ModelName: "warblers-v2"})
	assert.ErrorIs(t, err, ErrDeployLocked)
	assert.Equal(t, 1, api.calls["deploy"])
}

func TestDeployValidatesRequest(t *testing.T) {
	api := newFakeAPI()
	session := testSession()
	session.Iteration = 1
	o, _ := newTestOrchestrator(api, session)

	_, err := o.Deploy(context.Background(), DeployRequest{})
	require.Error(t, err, "empty model name must be rejected")
	assert.Equal(t, 0, api.calls["deploy"])
}
