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
	"fmt"

	"github.com/go-playground/validator/v10"
)

// validate checks struct tags on requests before they leave the client.
var validate = validator.New()

// Phase is the orchestrator's position in the session lifecycle.
type Phase int

const (
	// PhaseNotExecuted means the initial search has not run yet.
	PhaseNotExecuted Phase = iota

	// PhaseExecuted means the search ran; Session.Iteration counts the
	// completed training rounds.
	PhaseExecuted

	// PhaseDeployed is terminal: the session was finalized into a model
	// artifact.
	PhaseDeployed
)

// String returns the phase name.
func (p Phase) String() string {
	switch p {
	case PhaseExecuted:
		return "executed"
	case PhaseDeployed:
		return "deployed"
	default:
		return "not_executed"
	}
}

// Orchestrator drives the session state machine:
//
//	NotExecuted → Executed(0) → Executed(k+1) → … → Deployed
//
// Executing the search is never retried automatically: a failure leaves the
// session in NotExecuted and surfaces as a one-shot error, re-triggerable by
// repeating the action. Each iteration requires a client-side valid request
// (in particular a non-empty tag inclusion set) and produces exactly one
// network call. Deploy is reachable only once iteration >= 1.
type Orchestrator struct {
	api      SessionAPI
	session  *Session
	filter   *FilterState
	metrics  *Metrics
	deployed bool
}

// NewOrchestrator creates the orchestrator for one session view.
func NewOrchestrator(api SessionAPI, session *Session, filter *FilterState, metrics *Metrics) *Orchestrator {
	return &Orchestrator{api: api, session: session, filter: filter, metrics: metrics}
}

// Phase returns the current lifecycle phase.
func (o *Orchestrator) Phase() Phase {
	switch {
	case o.deployed:
		return PhaseDeployed
	case o.session.SearchExecuted:
		return PhaseExecuted
	default:
		return PhaseNotExecuted
	}
}

// ExecuteSearch triggers the NotExecuted → Executed(0) transition. Requires
// only the reference-sound set, which lives server-side with the session.
func (o *Orchestrator) ExecuteSearch(ctx context.Context) (*SearchResponse, error) {
	if o.session.SearchExecuted {
		return nil, fmt.Errorf("search already executed for session %s", o.session.ID)
	}
	resp, err := o.api.ExecuteSearch(ctx, o.session.ID)
	if err != nil {
		// Session stays NotExecuted; the caller may retry the action.
		return nil, err
	}
	o.session.SearchExecuted = true
	o.session.Iteration = 0
	o.session.Status = StatusRunning
	return resp, nil
}

// ValidateIteration runs every client-side check on an iteration request.
// Invalid requests are blocked here and never reach the server.
func (o *Orchestrator) ValidateIteration(req IterationRequest) error {
	if !o.session.SearchExecuted {
		return ErrSearchNotExecuted
	}
	if len(req.TagIDs) == 0 {
		return ErrNoTagsIncluded
	}
	for _, id := range req.TagIDs {
		if _, ok := o.session.TagByID(id); !ok {
			return fmt.Errorf("unknown tag id %d", id)
		}
	}
	if err := validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return fmt.Errorf("invalid iteration request: field %s fails %q", verrs[0].Field(), verrs[0].Tag())
		}
		return fmt.Errorf("invalid iteration request: %w", err)
	}
	return nil
}

// RunIteration validates, issues exactly one network call, and on success
// commits the new round. The convenience path for CLI one-shots; the TUI
// splits validation, network and commit across its event loop.
func (o *Orchestrator) RunIteration(ctx context.Context, req IterationRequest) (*IterationResponse, error) {
	if err := o.ValidateIteration(req); err != nil {
		return nil, err
	}
	resp, err := o.api.RunIteration(ctx, o.session.ID, req)
	if err != nil {
		return nil, err
	}
	o.CommitIteration(resp)
	return resp, nil
}

// CommitIteration applies a successful round: bumps the session iteration to
// the server-returned number, narrows the iteration filter so the user
// immediately sees only the new samples, and resets pagination (SetIteration
// resets page and focus).
func (o *Orchestrator) CommitIteration(resp *IterationResponse) {
	o.session.Iteration = resp.Iteration
	o.session.Status = StatusRunning
	o.filter.SetIteration(resp.Iteration)
	o.metrics.Iterations.Inc()
}

// CanDeploy reports whether the deploy transition is reachable.
func (o *Orchestrator) CanDeploy() bool {
	return o.session.SearchExecuted && o.session.Iteration >= 1 && !o.deployed
}

// DeployLockReason returns the caption for the disabled deploy affordance,
// or "" when deploy is available. Preconditions are surfaced as disabled
// controls with an explanation, never as silent unavailability.
func (o *Orchestrator) DeployLockReason() string {
	switch {
	case o.deployed:
		return "session already deployed"
	case !o.session.SearchExecuted:
		return "execute the initial search first"
	case o.session.Iteration < 1:
		return "run at least one training iteration first"
	default:
		return ""
	}
}

// Deploy finalizes the session into a trained-model artifact and optionally
// an annotation-project artifact. Terminal on success.
func (o *Orchestrator) Deploy(ctx context.Context, req DeployRequest) (*DeployResponse, error) {
	if !o.session.SearchExecuted {
		return nil, ErrSearchNotExecuted
	}
	if !o.CanDeploy() {
		return nil, ErrDeployLocked
	}
	if err := validate.Struct(req); err != nil {
		return nil, fmt.Errorf("invalid deploy request: %w", err)
	}
	resp, err := o.api.Deploy(ctx, o.session.ID, req)
	if err != nil {
		return nil, err
	}
	o.deployed = true
	return resp, nil
}
