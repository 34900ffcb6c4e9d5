// Copyright (C) 2026 Tanager ML (oss@tanagerml.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/tanagerml/tanager/cmd/tanager/config"
	"github.com/tanagerml/tanager/services/labeling"
	"github.com/tanagerml/tanager/services/labeling/tui"
)

func runLabel(cmd *cobra.Command, args []string) error {
	if !stdoutIsTerminal() {
		return fmt.Errorf("the labeling view needs a terminal; use `tanager progress --json` for scripted access")
	}
	sessionID, err := sessionArg(args)
	if err != nil {
		return err
	}

	log := newLogger("label", true)
	defer log.Close()
	client := newClient()
	metrics, _ := newMetrics()

	session, err := client.GetSession(cmd.Context(), sessionID)
	if err != nil {
		return err
	}
	log.Info("opening labeling view", "session_id", session.ID, "name", session.Name)

	ctrl := labeling.NewController(client, session, log, metrics)
	model := tui.New(ctrl, client, log, tui.Config{
		PollInterval: config.Global.UI.PollInterval(),
		AudioOpener:  config.Global.UI.AudioOpener,
	})

	program := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("labeling view failed: %w", err)
	}
	return nil
}
