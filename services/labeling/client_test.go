// Copyright (C) 2026 Tanager ML (oss@tanagerml.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package labeling

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientGetSession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/v1/sessions/sess-1", r.URL.Path)
		json.NewEncoder(w).Encode(Session{
			ID:     "sess-1",
			Name:   "warbler hunt",
			Tags:   []Tag{{ID: 11, Name: "marsh warbler", Shortcut: 1}},
			Status: StatusReady,
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	s, err := c.GetSession(context.Background(), "sess-1")
	require.NoError(t, err)
	assert.Equal(t, "warbler hunt", s.Name)
	require.Len(t, s.Tags, 1)
	assert.Equal(t, 1, s.Tags[0].Shortcut)
}

func TestClientListResultsQueryParams(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/sessions/sess-1/results", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "tag", q.Get("status"))
		assert.Equal(t, "11", q.Get("tag_id"))
		assert.Equal(t, "2", q.Get("iteration"))
		assert.Equal(t, "1", q.Get("page"))
		assert.Equal(t, "12", q.Get("page_size"))
		json.NewEncoder(w).Encode(ResultPage{Results: resultFixture(2), Total: 15})
	}))
	defer srv.Close()

	tagID := int64(11)
	iteration := 2
	c := NewClient(srv.URL)
	page, err := c.ListResults(context.Background(), "sess-1", ResultQuery{
		Status:    FilterTag,
		TagID:     &tagID,
		Iteration: &iteration,
		Page:      1,
		PageSize:  12,
	})
	require.NoError(t, err)
	assert.Equal(t, 15, page.Total)
	assert.Len(t, page.Results, 2)
}

func TestClientListResultsOmitsUnsetFilters(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.False(t, q.Has("tag_id"))
		assert.False(t, q.Has("iteration"))
		json.NewEncoder(w).Encode(ResultPage{})
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	_, err := c.ListResults(context.Background(), "sess-1", ResultQuery{Status: FilterAll, PageSize: 12})
	require.NoError(t, err)
}

// The single-label wire shape: plural set canonical, singular only for a
// one-element set.
func TestClientLabelResultPayload(t *testing.T) {
	var got labelPayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/sessions/sess-1/results/7/label", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	require.NoError(t, c.LabelResult(context.Background(), "sess-1", 7, TagAction([]int64{11})))
	assert.Equal(t, []int64{11}, got.AssignedTagIDs)
	require.NotNil(t, got.AssignedTagID)
	assert.Equal(t, int64(11), *got.AssignedTagID)

	require.NoError(t, c.LabelResult(context.Background(), "sess-1", 7, NegativeAction()))
	assert.True(t, got.Negative)
	assert.Nil(t, got.AssignedTagID)
}

func TestClientBulkLabel(t *testing.T) {
	var got bulkLabelRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/sessions/sess-1/labels", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	err := c.LabelResults(context.Background(), "sess-1", []int64{1, 2, 3}, SkipAction())
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2, 3}, got.ResultIDs)
	assert.True(t, got.Action.Skipped)
}

func TestClientErrorMapping(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/sessions/missing":
			http.NotFound(w, r)
		case "/v1/sessions/bad":
			http.Error(w, "training backend unavailable", http.StatusServiceUnavailable)
		case "/v1/sessions/garbled":
			w.Write([]byte("{not json"))
		}
	}))
	defer srv.Close()
	c := NewClient(srv.URL)
	ctx := context.Background()

	_, err := c.GetSession(ctx, "missing")
	apiErr, ok := AsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, APIErrorNotFound, apiErr.Type)

	_, err = c.GetSession(ctx, "bad")
	apiErr, ok = AsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, APIErrorRejected, apiErr.Type)
	assert.Contains(t, apiErr.Detail, "training backend unavailable")

	_, err = c.GetSession(ctx, "garbled")
	apiErr, ok = AsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, APIErrorInvalidResponse, apiErr.Type)
}

func TestClientConnectionError(t *testing.T) {
	// Reserved port with nothing listening.
	c := NewClient("http://127.0.0.1:1")
	_, err := c.GetSession(context.Background(), "sess-1")
	apiErr, ok := AsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, APIErrorConnectionFailed, apiErr.Type)
	assert.Contains(t, apiErr.Remediation, "TANAGER_SERVER_URL")
}

func TestClientCancelledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	c := NewClient(srv.URL)
	_, err := c.GetSession(ctx, "sess-1")
	apiErr, ok := AsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, APIErrorCancelled, apiErr.Type)
}

func TestMediaURLs(t *testing.T) {
	c := NewClient("http://localhost:8462/")
	ref := RecordingRef{RecordingID: "rec 1", StartSec: 3.5, EndSec: 6.25}

	audio := c.AudioURL(ref)
	assert.Equal(t, "http://localhost:8462/v1/recordings/rec%201/audio?end=6.250&start=3.500", audio)

	spec := c.SpectrogramURL(ref)
	assert.Contains(t, spec, "/spectrogram?")
}
