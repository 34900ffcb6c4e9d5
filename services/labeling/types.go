// Copyright (C) 2026 Tanager ML (oss@tanagerml.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package labeling implements the client-side session controller for an
// active-learning audio labeling campaign.
//
// # Description
//
// A labeling session is seeded with reference sounds on the Tanager server.
// The server returns similarity-ranked clips; the user assigns tags or the
// special negative/uncertain/skipped statuses, and each iteration retrains a
// lightweight classifier that fetches more informative samples from the
// score-uncertain region.
//
// This package holds the pieces that coordinate that loop on the client:
// the result cache (store.go), the optimistic mutation gateway (gateway.go),
// the filter/pagination engine (filter.go), the bulk selection controller
// (selection.go), the iteration orchestrator (orchestrator.go), and the
// status poller (poller.go). Rendering lives in the tui and charts
// subpackages.
//
// # Thread Safety
//
// Controller state is single-owner by design: it is mutated only from the
// owning event loop (the bubbletea Update loop, or the calling goroutine for
// one-shot CLI commands). Network calls may run concurrently, but they touch
// only the API client and immutable mutation values; their outcomes re-enter
// the owner before any cache mutation happens.
package labeling

import "fmt"

// =============================================================================
// Session
// =============================================================================

// SessionStatus reports whether the server is actively working on a session.
type SessionStatus string

const (
	// StatusIdle means no search has been executed yet.
	StatusIdle SessionStatus = "idle"

	// StatusRunning means a search or training round is in progress
	// server-side. The client polls while a session is running.
	StatusRunning SessionStatus = "running"

	// StatusReady means the most recent round finished and results are
	// available.
	StatusReady SessionStatus = "ready"

	// StatusFailed means the most recent round failed server-side.
	StatusFailed SessionStatus = "failed"
)

// Terminal reports whether the status is a resting state. Polling stops once
// a session reaches a terminal status.
func (s SessionStatus) Terminal() bool {
	return s != StatusRunning
}

// Tag is one target class of the labeling campaign.
type Tag struct {
	// ID is the server-assigned tag identifier.
	ID int64 `json:"id"`

	// Name is the display name (e.g. "marsh warbler").
	Name string `json:"name"`

	// Shortcut is the digit key (0-9) bound to this tag in the labeling
	// view. Zero means no shortcut.
	Shortcut int `json:"shortcut"`
}

// Color returns the tag's stable display color. See TagColor.
func (t Tag) Color() string { return TagColor(t.ID) }

// Session identifies one labeling campaign.
//
// Lifecycle: created once search parameters are submitted; mutated only by
// iteration execution (increments Iteration) and the finalize/deploy
// transition, which is terminal.
type Session struct {
	ID             string        `json:"id"`
	Name           string        `json:"name"`
	Tags           []Tag         `json:"tags"`
	Iteration      int           `json:"iteration"`
	SearchExecuted bool          `json:"search_executed"`
	Status         SessionStatus `json:"status"`
}

// TagByShortcut returns the tag bound to the given digit key, or false when
// no tag claims it.
func (s *Session) TagByShortcut(digit int) (Tag, bool) {
	for _, t := range s.Tags {
		if t.Shortcut == digit {
			return t, true
		}
	}
	return Tag{}, false
}

// TagByID returns the tag with the given identifier, or false.
func (s *Session) TagByID(id int64) (Tag, bool) {
	for _, t := range s.Tags {
		if t.ID == id {
			return t, true
		}
	}
	return Tag{}, false
}

// =============================================================================
// Results
// =============================================================================

// Provenance records how a candidate clip was surfaced.
type Provenance string

const (
	// ProvenanceEasyPositive is a high-confidence nearest-neighbor match to
	// a reference sound.
	ProvenanceEasyPositive Provenance = "easy_positive"

	// ProvenanceBoundary is a candidate near the decision threshold,
	// selected for informativeness.
	ProvenanceBoundary Provenance = "boundary"

	// ProvenanceOthers is a background sample drawn away from the
	// references.
	ProvenanceOthers Provenance = "others"

	// ProvenanceActiveLearning is a sample chosen by uncertainty targeting
	// in iteration >= 1.
	ProvenanceActiveLearning Provenance = "active_learning"
)

// RecordingRef locates a clip inside a source recording. The audio and
// spectrogram endpoints consume it opaquely; see media.go.
type RecordingRef struct {
	RecordingID string  `json:"recording_id"`
	StartSec    float64 `json:"start_sec"`
	EndSec      float64 `json:"end_sec"`
}

// Result is one candidate clip surfaced by the search or by an
// active-learning round.
//
// Label fields mirror the wire shape: the plural AssignedTagIDs set is
// canonical, the singular AssignedTagID survives for older servers, and the
// three status flags are not mutually exclusive with tag assignment in data
// as received. DeriveStatus picks the single display status.
type Result struct {
	ID          int64        `json:"id"`
	Recording   RecordingRef `json:"recording"`
	Score       float64      `json:"score"`
	Percentile  float64      `json:"score_percentile"`
	Metric      string       `json:"metric"`
	Rank        int          `json:"rank"`
	Provenance  Provenance   `json:"provenance"`
	Iteration   int          `json:"iteration"`
	SourceTagID *int64       `json:"source_tag_id,omitempty"`

	AssignedTagIDs []int64 `json:"assigned_tag_ids,omitempty"`
	AssignedTagID  *int64  `json:"assigned_tag_id,omitempty"`
	Negative       bool    `json:"is_negative"`
	Uncertain      bool    `json:"is_uncertain"`
	Skipped        bool    `json:"is_skipped"`
}

// TagSet returns the result's canonical tag-id set. A legacy singular
// assignment is reported as a one-element set; the stored fields are not
// modified.
func (r *Result) TagSet() []int64 {
	if len(r.AssignedTagIDs) > 0 {
		out := make([]int64, len(r.AssignedTagIDs))
		copy(out, r.AssignedTagIDs)
		return out
	}
	if r.AssignedTagID != nil {
		return []int64{*r.AssignedTagID}
	}
	return nil
}

// HasTag reports whether the given tag id is currently assigned.
func (r *Result) HasTag(tagID int64) bool {
	for _, id := range r.TagSet() {
		if id == tagID {
			return true
		}
	}
	return false
}

// ResultPage is one page of results plus the total count matching the query.
type ResultPage struct {
	Results []Result `json:"results"`
	Total   int      `json:"total"`
}

// =============================================================================
// Progress
// =============================================================================

// Progress holds the lightweight per-session label counters. It is refreshed
// after every confirmed mutation instead of refetching the result list, so
// optimistic updates still in flight are never discarded.
type Progress struct {
	PerTag    map[int64]int `json:"per_tag"`
	Negative  int           `json:"negative"`
	Uncertain int           `json:"uncertain"`
	Skipped   int           `json:"skipped"`
	Unlabeled int           `json:"unlabeled"`
	Total     int           `json:"total"`
}

// Labeled returns the number of results carrying any label.
func (p Progress) Labeled() int {
	return p.Total - p.Unlabeled
}

// =============================================================================
// Iterations
// =============================================================================

// Classifier enumerates the model kinds the server can train per round.
type Classifier string

const (
	ClassifierLogReg       Classifier = "logistic_regression"
	ClassifierRandomForest Classifier = "random_forest"
	ClassifierMLP          Classifier = "mlp"
)

// Classifiers lists the supported classifier kinds in display order.
func Classifiers() []Classifier {
	return []Classifier{ClassifierLogReg, ClassifierRandomForest, ClassifierMLP}
}

// IterationRequest asks the server for one more active-learning round.
//
// Validation happens client-side before dispatch: an empty tag inclusion set
// or malformed bounds never reach the server. See Validate.
type IterationRequest struct {
	// LowerBound and UpperBound delimit the score-uncertainty band the
	// round samples from.
	LowerBound float64 `json:"lower_bound" validate:"gte=0,lt=1,ltfield=UpperBound"`
	UpperBound float64 `json:"upper_bound" validate:"gt=0,lte=1"`

	// SampleCount is the requested sample budget for the round.
	SampleCount int `json:"sample_count" validate:"gte=5,lte=100"`

	// Classifier selects the model kind trained for the round.
	Classifier Classifier `json:"classifier" validate:"required,oneof=logistic_regression random_forest mlp"`

	// TagIDs is the subset of target tags included in the round. Must be
	// non-empty.
	TagIDs []int64 `json:"tag_ids" validate:"min=1"`
}

// IterationResponse reports the outcome of a round.
type IterationResponse struct {
	// Iteration is the newly created iteration number.
	Iteration int `json:"iteration"`

	// NewResults is the number of samples the round added.
	NewResults int `json:"new_results"`

	// TotalResults is the session's result count after the round.
	TotalResults int `json:"total_results"`
}

// SearchResponse reports the outcome of the initial similarity search.
type SearchResponse struct {
	ResultCount int `json:"result_count"`
}

// =============================================================================
// Score distributions
// =============================================================================

// ScoreDistribution is the per-(tag, iteration) histogram payload. Read-only:
// fetched on demand and never mutated locally.
type ScoreDistribution struct {
	TagID     int64 `json:"tag_id"`
	Iteration int   `json:"iteration"`

	// BinEdges has len(Counts)+1 entries spanning [0,1].
	BinEdges []float64 `json:"bin_edges"`
	Counts   []int     `json:"counts"`

	// TrainPositive and TrainNegative are optional raw training-point
	// scores rendered as overlay markers.
	TrainPositive []float64 `json:"train_positive,omitempty"`
	TrainNegative []float64 `json:"train_negative,omitempty"`
}

// =============================================================================
// Deploy
// =============================================================================

// DeployRequest finalizes a session into a trained-model artifact and,
// optionally, an annotation-project artifact.
type DeployRequest struct {
	ModelName     string `json:"model_name" validate:"required"`
	CreateProject bool   `json:"create_project"`
}

// DeployResponse identifies the artifacts the server created.
type DeployResponse struct {
	ModelID   string `json:"model_id"`
	ProjectID string `json:"project_id,omitempty"`
}

// =============================================================================
// Queries
// =============================================================================

// StatusFilter selects results by derived label status.
type StatusFilter string

const (
	FilterAll       StatusFilter = "all"
	FilterUnlabeled StatusFilter = "unlabeled"
	FilterNegative  StatusFilter = "negative"
	FilterUncertain StatusFilter = "uncertain"
	FilterSkipped   StatusFilter = "skipped"
	// FilterTag selects results assigned a specific tag; the tag id rides
	// alongside in ResultQuery.TagID.
	FilterTag StatusFilter = "tag"
)

// ResultQuery is the exact parameter set sent to the results endpoint.
// Status/tag and iteration filters compose as an AND.
type ResultQuery struct {
	Status    StatusFilter
	TagID     *int64
	Iteration *int
	Page      int
	PageSize  int
}

// String renders the query for logs.
func (q ResultQuery) String() string {
	s := fmt.Sprintf("status=%s page=%d size=%d", q.Status, q.Page, q.PageSize)
	if q.TagID != nil {
		s += fmt.Sprintf(" tag=%d", *q.TagID)
	}
	if q.Iteration != nil {
		s += fmt.Sprintf(" iteration=%d", *q.Iteration)
	}
	return s
}
