// Copyright (C) 2026 Tanager ML (oss@tanagerml.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tanagerml/tanager/cmd/tanager/config"
	"github.com/tanagerml/tanager/services/labeling/charts"
)

func runChartsRender(cmd *cobra.Command, args []string) error {
	sessionID, err := sessionArg(args)
	if err != nil {
		return err
	}
	client := newClient()

	session, err := client.GetSession(cmd.Context(), sessionID)
	if err != nil {
		return err
	}
	dists, err := client.GetScoreDistributions(cmd.Context(), sessionID)
	if err != nil {
		return err
	}

	out := os.Stdout
	if chartsOut != "" {
		f, err := os.Create(chartsOut)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", chartsOut, err)
		}
		defer f.Close()
		out = f
	}
	if err := charts.WriteHTML(out, session, dists); err != nil {
		return err
	}
	if chartsOut != "" {
		fmt.Printf("Wrote score distributions for %q to %s\n", session.Name, chartsOut)
	}
	return nil
}

func runChartsServe(cmd *cobra.Command, args []string) error {
	sessionID, err := sessionArg(args)
	if err != nil {
		return err
	}
	log := newLogger("charts", false)
	defer log.Close()

	addr := chartsListen
	if addr == "" {
		addr = config.Global.Charts.ListenAddr
	}
	_, registry := newMetrics()
	server := charts.NewServer(newClient(), sessionID, log, registry)
	fmt.Printf("Serving score distributions for session %s on http://%s\n", sessionID, addr)
	return server.Run(addr)
}
