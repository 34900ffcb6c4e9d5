// Copyright (C) 2026 Tanager ML (oss@tanagerml.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/lipgloss"
)

var headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))

// styled applies a lipgloss style when stdout is a terminal; scripted
// consumers get plain text.
func styled(style lipgloss.Style, s string) string {
	if !stdoutIsTerminal() {
		return s
	}
	return style.Render(s)
}

// tagStyled colors a tag name with its stable palette color on a terminal.
func tagStyled(name, hexColor string) string {
	if !stdoutIsTerminal() {
		return name
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(hexColor)).Render(name)
}

// CommandResult wraps command output with metadata for --json consumers.
type CommandResult struct {
	Command   string      `json:"command"`
	Timestamp time.Time   `json:"timestamp"`
	Success   bool        `json:"success"`
	Data      interface{} `json:"data,omitempty"`
	Error     string      `json:"error,omitempty"`
}

// writeResult emits either the JSON envelope or the plain-text lines,
// depending on the global --json flag.
func writeResult(w io.Writer, command string, data interface{}, text func(io.Writer)) error {
	if jsonOutput {
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(CommandResult{
			Command:   command,
			Timestamp: time.Now().UTC(),
			Success:   true,
			Data:      data,
		})
	}
	text(w)
	return nil
}

// percent renders a labeled/total ratio, guarding the empty session.
func percent(part, total int) string {
	if total == 0 {
		return "0%"
	}
	return fmt.Sprintf("%.0f%%", 100*float64(part)/float64(total))
}
