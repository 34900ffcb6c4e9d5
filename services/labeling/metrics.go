// Copyright (C) 2026 Tanager ML (oss@tanagerml.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package labeling

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts controller activity. The chart viewer server exposes the
// registry on /metrics; CLI one-shots register against a private registry
// and simply discard it.
type Metrics struct {
	// LabelsApplied counts optimistic label applications by action kind.
	LabelsApplied *prometheus.CounterVec

	// Rollbacks counts optimistic applications undone after a server
	// failure.
	Rollbacks prometheus.Counter

	// BulkOps counts bulk label operations by outcome ("ok"/"error").
	BulkOps *prometheus.CounterVec

	// Iterations counts successfully executed active-learning rounds.
	Iterations prometheus.Counter

	// PollTicks counts session status polls.
	PollTicks prometheus.Counter
}

// NewMetrics registers the controller metrics on reg and returns them.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		LabelsApplied: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tanager",
			Name:      "labels_applied_total",
			Help:      "Optimistic label applications by action kind.",
		}, []string{"action"}),
		Rollbacks: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "tanager",
			Name:      "label_rollbacks_total",
			Help:      "Optimistic label applications rolled back after a server failure.",
		}),
		BulkOps: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tanager",
			Name:      "bulk_label_operations_total",
			Help:      "Bulk label operations by outcome.",
		}, []string{"outcome"}),
		Iterations: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "tanager",
			Name:      "iterations_total",
			Help:      "Active-learning rounds executed.",
		}),
		PollTicks: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "tanager",
			Name:      "status_polls_total",
			Help:      "Session status poll requests issued.",
		}),
	}
}
