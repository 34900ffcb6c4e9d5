// Copyright (C) 2026 Tanager ML (oss@tanagerml.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package config

import "time"

// TanagerConfig is the on-disk configuration, read from
// ~/.tanager/tanager.yaml on startup.
type TanagerConfig struct {
	// Server: where the labeling backend lives
	Server ServerConfig `yaml:"server"`

	// Logging: file log destination and verbosity
	Logging LoggingConfig `yaml:"logging"`

	// UI: labeling view behavior
	UI UIConfig `yaml:"ui"`

	// Charts: score distribution rendering
	Charts ChartsConfig `yaml:"charts"`
}

type ServerConfig struct {
	// BaseURL of the labeling server, e.g. http://localhost:8462.
	// Overridable with TANAGER_SERVER_URL.
	BaseURL string `yaml:"base_url" validate:"required,url"`

	// TimeoutSeconds bounds every request the client makes.
	TimeoutSeconds int `yaml:"timeout_seconds" validate:"gte=1,lte=300"`
}

type LoggingConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `yaml:"level" validate:"omitempty,oneof=debug info warn warning error"`

	// Dir is where dated log files are written. Overridable with
	// TANAGER_LOG_DIR. Empty disables file logging.
	Dir string `yaml:"dir"`
}

type UIConfig struct {
	// PollIntervalSeconds paces session status polls while an iteration
	// runs server-side.
	PollIntervalSeconds int `yaml:"poll_interval_seconds" validate:"gte=1,lte=60"`

	// AudioOpener overrides the command used to open audio clips
	// (default: xdg-open on Linux, open on macOS).
	AudioOpener string `yaml:"audio_opener"`
}

type ChartsConfig struct {
	// ListenAddr is the bind address for `tanager charts --serve`.
	ListenAddr string `yaml:"listen_addr" validate:"omitempty,hostname_port"`
}

// Timeout returns the configured client timeout as a duration.
func (c ServerConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// PollInterval returns the configured poll pacing as a duration.
func (c UIConfig) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalSeconds) * time.Second
}

func DefaultConfig() TanagerConfig {
	return TanagerConfig{
		Server: ServerConfig{
			BaseURL:        "http://localhost:8462",
			TimeoutSeconds: 30,
		},
		Logging: LoggingConfig{
			Level: "info",
			Dir:   "~/.tanager/logs",
		},
		UI: UIConfig{
			PollIntervalSeconds: 2,
		},
		Charts: ChartsConfig{
			ListenAddr: "localhost:8470",
		},
	}
}
