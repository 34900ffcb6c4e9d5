// Copyright (C) 2026 Tanager ML (oss@tanagerml.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package charts

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tanagerml/tanager/pkg/logging"
	"github.com/tanagerml/tanager/services/labeling"
)

// Server serves the distribution page over HTTP, refetching the data on
// every load so a browser refresh tracks the session live.
type Server struct {
	api       labeling.SessionAPI
	sessionID string
	log       *logging.Logger
	registry  *prometheus.Registry
}

// NewServer creates a chart server for one session. registry may carry the
// client metrics; pass a fresh registry when none are collected.
func NewServer(api labeling.SessionAPI, sessionID string, log *logging.Logger, registry *prometheus.Registry) *Server {
	return &Server{api: api, sessionID: sessionID, log: log, registry: registry}
}

// Router builds the gin engine with all routes registered.
//
// Endpoints:
//
//	GET /         - distribution page (HTML)
//	GET /healthz  - liveness probe
//	GET /metrics  - prometheus metrics
func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/", s.handleDistributions)
	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})))
	return router
}

// Run serves until the listener fails.
func (s *Server) Run(addr string) error {
	gin.SetMode(gin.ReleaseMode)
	s.log.Info("chart server listening", "addr", addr, "session_id", s.sessionID)
	return s.Router().Run(addr)
}

func (s *Server) handleDistributions(c *gin.Context) {
	ctx := c.Request.Context()

	session, err := s.api.GetSession(ctx, s.sessionID)
	if err != nil {
		s.log.Error("fetch session for charts", "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	dists, err := s.api.GetScoreDistributions(ctx, s.sessionID)
	if err != nil {
		s.log.Error("fetch distributions for charts", "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	c.Header("Content-Type", "text/html; charset=utf-8")
	if err := WriteHTML(c.Writer, session, dists); err != nil {
		s.log.Error("render distribution page", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
