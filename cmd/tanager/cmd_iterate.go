// Copyright (C) 2026 Tanager ML (oss@tanagerml.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/tanagerml/tanager/cmd/tanager/config"
	"github.com/tanagerml/tanager/services/labeling"
)

// buildIterationRequest assembles the round request from the command flags.
// An empty --tags means every session tag.
func buildIterationRequest(session *labeling.Session) labeling.IterationRequest {
	ids := tagIDs
	if len(ids) == 0 {
		for _, tag := range session.Tags {
			ids = append(ids, tag.ID)
		}
	}
	return labeling.IterationRequest{
		LowerBound:  lowerBound,
		UpperBound:  upperBound,
		SampleCount: sampleCount,
		Classifier:  labeling.Classifier(classifier),
		TagIDs:      ids,
	}
}

func runIterate(cmd *cobra.Command, args []string) error {
	sessionID, err := sessionArg(args)
	if err != nil {
		return err
	}
	log := newLogger("iterate", false)
	defer log.Close()
	client := newClient()
	metrics, _ := newMetrics()

	session, err := client.GetSession(cmd.Context(), sessionID)
	if err != nil {
		return err
	}
	req := buildIterationRequest(session)
	orch := labeling.NewOrchestrator(client, session, labeling.NewFilterState(), metrics)

	resp, err := orch.RunIteration(cmd.Context(), req)
	if err != nil {
		return err
	}
	log.Info("iteration accepted",
		"session_id", sessionID, "iteration", resp.Iteration, "new_results", resp.NewResults)

	if !noWait {
		if !jsonOutput {
			fmt.Printf("Iteration %d accepted, waiting for the round to finish...\n", resp.Iteration)
		}
		poller := labeling.NewStatusPoller(client, config.Global.UI.PollInterval(), metrics)
		final, err := poller.Wait(cmd.Context(), sessionID)
		if err != nil {
			return fmt.Errorf("iteration %d accepted but status polling failed: %w", resp.Iteration, err)
		}
		session = final
	}

	data := struct {
		Iteration    int                    `json:"iteration"`
		NewResults   int                    `json:"new_results"`
		TotalResults int                    `json:"total_results"`
		Status       labeling.SessionStatus `json:"status"`
	}{resp.Iteration, resp.NewResults, resp.TotalResults, session.Status}

	return writeResult(os.Stdout, "iterate", data, func(w io.Writer) {
		fmt.Fprintf(w, "Iteration %d: %d new clips, %d total (%s).\n",
			resp.Iteration, resp.NewResults, resp.TotalResults, session.Status)
	})
}
