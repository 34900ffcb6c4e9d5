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

	"github.com/tanagerml/tanager/services/labeling"
)

func runSearch(cmd *cobra.Command, args []string) error {
	sessionID, err := sessionArg(args)
	if err != nil {
		return err
	}
	log := newLogger("search", false)
	defer log.Close()
	client := newClient()
	metrics, _ := newMetrics()

	session, err := client.GetSession(cmd.Context(), sessionID)
	if err != nil {
		return err
	}
	orch := labeling.NewOrchestrator(client, session, labeling.NewFilterState(), metrics)
	resp, err := orch.ExecuteSearch(cmd.Context())
	if err != nil {
		return err
	}
	log.Info("search executed", "session_id", sessionID, "result_count", resp.ResultCount)

	return writeResult(os.Stdout, "search", resp, func(w io.Writer) {
		fmt.Fprintf(w, "Search executed for %q: %d candidate clips.\n", session.Name, resp.ResultCount)
		fmt.Fprintf(w, "Run `tanager label %s` to start labeling.\n", sessionID)
	})
}

func runProgress(cmd *cobra.Command, args []string) error {
	sessionID, err := sessionArg(args)
	if err != nil {
		return err
	}
	client := newClient()

	session, err := client.GetSession(cmd.Context(), sessionID)
	if err != nil {
		return err
	}
	progress, err := client.GetProgress(cmd.Context(), sessionID)
	if err != nil {
		return err
	}

	data := struct {
		Session  *labeling.Session  `json:"session"`
		Progress *labeling.Progress `json:"progress"`
	}{session, progress}

	return writeResult(os.Stdout, "progress", data, func(w io.Writer) {
		fmt.Fprintf(w, "%s: iteration %d, %s\n",
			styled(headerStyle, session.Name), session.Iteration, session.Status)
		for _, tag := range session.Tags {
			// pad before styling so ANSI codes do not break alignment
			name := fmt.Sprintf("%-24s", tag.Name)
			fmt.Fprintf(w, "  %s %d\n", tagStyled(name, labeling.TagColor(tag.ID)), progress.PerTag[tag.ID])
		}
		fmt.Fprintf(w, "  %-24s %d\n", "negative", progress.Negative)
		fmt.Fprintf(w, "  %-24s %d\n", "uncertain", progress.Uncertain)
		fmt.Fprintf(w, "  %-24s %d\n", "skipped", progress.Skipped)
		fmt.Fprintf(w, "Labeled %d of %d (%s)\n",
			progress.Labeled(), progress.Total, percent(progress.Labeled(), progress.Total))
	})
}

func runDeploy(cmd *cobra.Command, args []string) error {
	sessionID, err := sessionArg(args)
	if err != nil {
		return err
	}
	log := newLogger("deploy", false)
	defer log.Close()
	client := newClient()
	metrics, _ := newMetrics()

	session, err := client.GetSession(cmd.Context(), sessionID)
	if err != nil {
		return err
	}
	orch := labeling.NewOrchestrator(client, session, labeling.NewFilterState(), metrics)
	if reason := orch.DeployLockReason(); reason != "" {
		return fmt.Errorf("deploy unavailable: %s", reason)
	}

	name := deployModelName
	if name == "" {
		name = session.Name
	}
	resp, err := orch.Deploy(cmd.Context(), labeling.DeployRequest{
		ModelName:     name,
		CreateProject: deployCreateProject,
	})
	if err != nil {
		return err
	}
	log.Info("session deployed", "session_id", sessionID, "model_id", resp.ModelID)

	return writeResult(os.Stdout, "deploy", resp, func(w io.Writer) {
		fmt.Fprintf(w, "Deployed model %s as %q.\n", resp.ModelID, name)
		if resp.ProjectID != "" {
			fmt.Fprintf(w, "Created annotation project %s.\n", resp.ProjectID)
		}
	})
}
