// Copyright (C) 2026 Tanager ML (oss@tanagerml.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package labeling

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// SessionAPI is the Tanager server boundary consumed by the controller. The
// concrete Client implements it; tests substitute fakes.
//
// All persisted state lives behind this interface. Exact routes are an
// implementation detail of the server; only the operation set is contract.
type SessionAPI interface {
	// GetSession fetches the session, including its target tags, current
	// iteration and run status.
	GetSession(ctx context.Context, sessionID string) (*Session, error)

	// ExecuteSearch runs the initial similarity search over the reference
	// sounds. Transitions the session out of NotExecuted on success.
	ExecuteSearch(ctx context.Context, sessionID string) (*SearchResponse, error)

	// RunIteration requests one active-learning round. The request must
	// already be validated; see IterationRequest.
	RunIteration(ctx context.Context, sessionID string, req IterationRequest) (*IterationResponse, error)

	// GetProgress fetches the lightweight per-label counters.
	GetProgress(ctx context.Context, sessionID string) (*Progress, error)

	// ListResults fetches one filtered page of results.
	ListResults(ctx context.Context, sessionID string, q ResultQuery) (*ResultPage, error)

	// LabelResult applies one label action to one result.
	LabelResult(ctx context.Context, sessionID string, resultID int64, action LabelAction) error

	// LabelResults applies one label action to a set of results in a
	// single request.
	LabelResults(ctx context.Context, sessionID string, resultIDs []int64, action LabelAction) error

	// GetScoreDistributions fetches the per-tag per-iteration histogram
	// payloads.
	GetScoreDistributions(ctx context.Context, sessionID string) ([]ScoreDistribution, error)

	// Deploy finalizes the session into a trained-model artifact.
	Deploy(ctx context.Context, sessionID string, req DeployRequest) (*DeployResponse, error)
}

// Client implements SessionAPI over the server's HTTP/JSON API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// ClientOption customizes a Client.
type ClientOption func(*Client)

// WithHTTPClient substitutes the underlying *http.Client (tests, custom
// transports).
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.httpClient = hc }
}

// NewClient creates a client for the Tanager server at baseURL.
//
// # Inputs
//
//   - baseURL: server URL, e.g. "http://localhost:8462"
//   - opts: optional overrides
//
// # Outputs
//
//   - *Client: configured client instance
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the server URL the client talks to.
func (c *Client) BaseURL() string { return c.baseURL }

// GetSession implements SessionAPI.
func (c *Client) GetSession(ctx context.Context, sessionID string) (*Session, error) {
	var s Session
	if err := c.do(ctx, "fetch session", http.MethodGet, c.sessionPath(sessionID, ""), nil, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// ExecuteSearch implements SessionAPI.
func (c *Client) ExecuteSearch(ctx context.Context, sessionID string) (*SearchResponse, error) {
	var resp SearchResponse
	if err := c.do(ctx, "execute search", http.MethodPost, c.sessionPath(sessionID, "/search"), struct{}{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// RunIteration implements SessionAPI.
func (c *Client) RunIteration(ctx context.Context, sessionID string, req IterationRequest) (*IterationResponse, error) {
	var resp IterationResponse
	if err := c.do(ctx, "run iteration", http.MethodPost, c.sessionPath(sessionID, "/iterations"), req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetProgress implements SessionAPI.
func (c *Client) GetProgress(ctx context.Context, sessionID string) (*Progress, error) {
	var p Progress
	if err := c.do(ctx, "fetch progress", http.MethodGet, c.sessionPath(sessionID, "/progress"), nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// ListResults implements SessionAPI.
func (c *Client) ListResults(ctx context.Context, sessionID string, q ResultQuery) (*ResultPage, error) {
	params := url.Values{}
	params.Set("status", string(q.Status))
	params.Set("page", strconv.Itoa(q.Page))
	params.Set("page_size", strconv.Itoa(q.PageSize))
	if q.TagID != nil {
		params.Set("tag_id", strconv.FormatInt(*q.TagID, 10))
	}
	if q.Iteration != nil {
		params.Set("iteration", strconv.Itoa(*q.Iteration))
	}

	var page ResultPage
	path := c.sessionPath(sessionID, "/results") + "?" + params.Encode()
	if err := c.do(ctx, "fetch results", http.MethodGet, path, nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// LabelResult implements SessionAPI.
func (c *Client) LabelResult(ctx context.Context, sessionID string, resultID int64, action LabelAction) error {
	path := c.sessionPath(sessionID, fmt.Sprintf("/results/%d/label", resultID))
	return c.do(ctx, "label result", http.MethodPost, path, action.payload(), nil)
}

// bulkLabelRequest is the wire shape of a bulk label operation: the full
// identifier list plus a single action, applied atomically from the client's
// perspective.
type bulkLabelRequest struct {
	ResultIDs []int64      `json:"result_ids"`
	Action    labelPayload `json:"action"`
}

// LabelResults implements SessionAPI.
func (c *Client) LabelResults(ctx context.Context, sessionID string, resultIDs []int64, action LabelAction) error {
	body := bulkLabelRequest{ResultIDs: resultIDs, Action: action.payload()}
	return c.do(ctx, "bulk label", http.MethodPost, c.sessionPath(sessionID, "/labels"), body, nil)
}

// GetScoreDistributions implements SessionAPI.
func (c *Client) GetScoreDistributions(ctx context.Context, sessionID string) ([]ScoreDistribution, error) {
	var dists []ScoreDistribution
	if err := c.do(ctx, "fetch score distributions", http.MethodGet, c.sessionPath(sessionID, "/distributions"), nil, &dists); err != nil {
		return nil, err
	}
	return dists, nil
}

// Deploy implements SessionAPI.
func (c *Client) Deploy(ctx context.Context, sessionID string, req DeployRequest) (*DeployResponse, error) {
	var resp DeployResponse
	if err := c.do(ctx, "deploy", http.MethodPost, c.sessionPath(sessionID, "/deploy"), req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) sessionPath(sessionID, suffix string) string {
	return "/v1/sessions/" + url.PathEscape(sessionID) + suffix
}

// do runs one JSON round trip. body and out may be nil. Failures come back
// as *APIError with Op set to op.
func (c *Client) do(ctx context.Context, op, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return &APIError{Type: APIErrorInvalidResponse, Op: op, Message: "encode request", Detail: err.Error()}
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return &APIError{Type: APIErrorRejected, Op: op, Message: "build request", Detail: err.Error()}
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return &APIError{Type: APIErrorCancelled, Op: op, Message: "operation cancelled", Detail: err.Error()}
		}
		return &APIError{
			Type:        APIErrorConnectionFailed,
			Op:          op,
			Message:     "cannot reach the Tanager server",
			Detail:      err.Error(),
			Remediation: fmt.Sprintf("Check that the server is running at %s and that TANAGER_SERVER_URL points to it.", c.baseURL),
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return &APIError{Type: APIErrorNotFound, Op: op, Message: "not found", Detail: path}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &APIError{
			Type:    APIErrorRejected,
			Op:      op,
			Message: fmt.Sprintf("server returned %s", resp.Status),
			Detail:  strings.TrimSpace(string(detail)),
		}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &APIError{Type: APIErrorInvalidResponse, Op: op, Message: "decode response", Detail: err.Error()}
	}
	return nil
}

// Compile-time interface check
var _ SessionAPI = (*Client)(nil)
