// Copyright (C) 2026 Tanager ML (oss@tanagerml.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"net/http"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/tanagerml/tanager/cmd/tanager/config"
	"github.com/tanagerml/tanager/pkg/logging"
	"github.com/tanagerml/tanager/pkg/validation"
	"github.com/tanagerml/tanager/services/labeling"
)

// sessionArg validates the positional session id before it is interpolated
// into request paths.
func sessionArg(args []string) (string, error) {
	return validation.SanitizeSessionID(args[0])
}

// newClient builds the API client from the loaded config.
func newClient() *labeling.Client {
	return labeling.NewClient(config.Global.Server.BaseURL,
		labeling.WithHTTPClient(&http.Client{Timeout: config.Global.Server.Timeout()}))
}

// newLogger builds a file logger for the given subcommand. Quiet keeps
// stderr clean for command output; the TUI relies on this because a stray
// log line corrupts the alternate screen.
func newLogger(service string, quiet bool) *logging.Logger {
	return logging.New(logging.Config{
		Level:   logging.ParseLevel(config.Global.Logging.Level),
		LogDir:  config.Global.Logging.Dir,
		Service: service,
		Quiet:   quiet,
	})
}

// newMetrics registers the command's counters on a fresh registry. The CLI
// exposes them only through `charts --serve`; everything else just counts.
func newMetrics() (*labeling.Metrics, *prometheus.Registry) {
	reg := prometheus.NewRegistry()
	return labeling.NewMetrics(reg), reg
}

func stdoutIsTerminal() bool {
	fd := os.Stdout.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
