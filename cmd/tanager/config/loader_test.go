// Copyright (C) 2026 Tanager ML (oss@tanagerml.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestDefaultConfigIsValid(t *testing.T) {
	assert.NoError(t, validate(DefaultConfig()))
}

func TestPartialFileKeepsDefaults(t *testing.T) {
	// A config that only sets the server URL must not zero out the rest.
	cfg := DefaultConfig()
	raw := "server:\n  base_url: http://labeling.lan:9000\n"
	require.NoError(t, yaml.Unmarshal([]byte(raw), &cfg))

	assert.Equal(t, "http://labeling.lan:9000", cfg.Server.BaseURL)
	assert.Equal(t, 30, cfg.Server.TimeoutSeconds)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, 2, cfg.UI.PollIntervalSeconds)
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("TANAGER_SERVER_URL", "http://override:8462/")
	t.Setenv("TANAGER_LOG_DIR", "/tmp/tanager-logs")
	t.Setenv("TANAGER_LOG_LEVEL", "debug")

	cfg := DefaultConfig()
	applyEnv(&cfg)

	assert.Equal(t, "http://override:8462", cfg.Server.BaseURL, "trailing slash is trimmed")
	assert.Equal(t, "/tmp/tanager-logs", cfg.Logging.Dir)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*TanagerConfig)
	}{
		{"missing server url", func(c *TanagerConfig) { c.Server.BaseURL = "" }},
		{"not a url", func(c *TanagerConfig) { c.Server.BaseURL = "localhost" }},
		{"zero timeout", func(c *TanagerConfig) { c.Server.TimeoutSeconds = 0 }},
		{"unknown log level", func(c *TanagerConfig) { c.Logging.Level = "verbose" }},
		{"poll interval too long", func(c *TanagerConfig) { c.UI.PollIntervalSeconds = 120 }},
		{"bad listen addr", func(c *TanagerConfig) { c.Charts.ListenAddr = "not an addr" }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(&cfg)
			err := validate(cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "invalid config")
		})
	}
}

func TestDurationHelpers(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "30s", cfg.Server.Timeout().String())
	assert.Equal(t, "2s", cfg.UI.PollInterval().String())
}
