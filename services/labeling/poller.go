// Copyright (C) 2026 Tanager ML (oss@tanagerml.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package labeling

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// DefaultPollInterval paces session status polls while a round runs
// server-side.
const DefaultPollInterval = 2 * time.Second

// StatusPoller refreshes a session while the server is actively working on
// it. The predicate is re-evaluated after every fetch and polling stops as
// soon as the session reaches a terminal status, so an idle session costs
// zero requests.
type StatusPoller struct {
	api     SessionAPI
	limiter *rate.Limiter
	metrics *Metrics
}

// NewStatusPoller creates a poller with the given interval between polls.
func NewStatusPoller(api SessionAPI, interval time.Duration, metrics *Metrics) *StatusPoller {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &StatusPoller{
		api:     api,
		limiter: rate.NewLimiter(rate.Every(interval), 1),
		metrics: metrics,
	}
}

// ShouldPoll is the conditional-refetch predicate: poll only while the
// session is running.
func ShouldPoll(s *Session) bool {
	return s != nil && s.Status == StatusRunning
}

// PollOnce waits for the pacing budget, fetches the session once and
// reports whether polling should continue. The caller (event loop or
// Wait) decides when to call again.
func (p *StatusPoller) PollOnce(ctx context.Context, sessionID string) (*Session, bool, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, false, err
	}
	p.metrics.PollTicks.Inc()
	s, err := p.api.GetSession(ctx, sessionID)
	if err != nil {
		return nil, false, err
	}
	return s, ShouldPoll(s), nil
}

// Wait polls until the session reaches a terminal status or the context is
// cancelled, returning the final session. Used by CLI one-shots; the TUI
// drives PollOnce from its own tick messages instead.
func (p *StatusPoller) Wait(ctx context.Context, sessionID string) (*Session, error) {
	for {
		s, again, err := p.PollOnce(ctx, sessionID)
		if err != nil {
			return nil, err
		}
		if !again {
			return s, nil
		}
	}
}
