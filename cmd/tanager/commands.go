// Copyright (C) 2026 Tanager ML (oss@tanagerml.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"github.com/spf13/cobra"

	"github.com/tanagerml/tanager/cmd/tanager/config"
)

// --- Global Command Variables ---
var (
	serverURL  string // CLI override for server.base_url
	jsonOutput bool

	// iterate flags
	lowerBound  float64
	upperBound  float64
	sampleCount int
	classifier  string
	tagIDs      []int64
	noWait      bool

	// charts flags
	chartsOut    string
	chartsListen string

	// deploy flags
	deployModelName     string
	deployCreateProject bool

	rootCmd = &cobra.Command{
		Use:   "tanager",
		Short: "A cli for active-learning audio labeling sessions",
		Long: `Tanager drives an audio labeling session against a Tanager server:
				execute the initial similarity search, label clips in a fast
				keyboard-driven view, run active-learning iterations, inspect
				score distributions, and deploy the trained model.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := config.Load(); err != nil {
				return err
			}
			if serverURL != "" {
				config.Global.Server.BaseURL = serverURL
			}
			return nil
		},
	}

	labelCmd = &cobra.Command{
		Use:   "label [session-id]",
		Short: "Open the interactive labeling view for a session",
		Args:  cobra.ExactArgs(1),
		RunE:  runLabel, // Defined in cmd_label.go
	}

	searchCmd = &cobra.Command{
		Use:   "search [session-id]",
		Short: "Execute the session's initial similarity search",
		Args:  cobra.ExactArgs(1),
		RunE:  runSearch, // Defined in cmd_session.go
	}

	progressCmd = &cobra.Command{
		Use:   "progress [session-id]",
		Short: "Show per-tag labeling progress for a session",
		Args:  cobra.ExactArgs(1),
		RunE:  runProgress, // Defined in cmd_session.go
	}

	iterateCmd = &cobra.Command{
		Use:   "iterate [session-id]",
		Short: "Run one active-learning iteration",
		Args:  cobra.ExactArgs(1),
		RunE:  runIterate, // Defined in cmd_iterate.go
	}

	chartsCmd = &cobra.Command{
		Use:   "charts",
		Short: "Score distribution histograms",
	}
	chartsRenderCmd = &cobra.Command{
		Use:   "render [session-id]",
		Short: "Render the histogram page to an HTML file",
		Args:  cobra.ExactArgs(1),
		RunE:  runChartsRender, // Defined in cmd_charts.go
	}
	chartsServeCmd = &cobra.Command{
		Use:   "serve [session-id]",
		Short: "Serve the histogram page over HTTP, re-fetching on every load",
		Args:  cobra.ExactArgs(1),
		RunE:  runChartsServe, // Defined in cmd_charts.go
	}

	deployCmd = &cobra.Command{
		Use:   "deploy [session-id]",
		Short: "Deploy the session's trained model",
		Args:  cobra.ExactArgs(1),
		RunE:  runDeploy, // Defined in cmd_session.go
	}
)

// init runs when the Go program starts
func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "",
		"Labeling server URL (overrides config and TANAGER_SERVER_URL)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false,
		"Emit machine-readable JSON instead of text")

	rootCmd.AddCommand(labelCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(progressCmd)

	rootCmd.AddCommand(iterateCmd)
	iterateCmd.Flags().Float64Var(&lowerBound, "lower", 0.4, "Lower score bound of the uncertainty band")
	iterateCmd.Flags().Float64Var(&upperBound, "upper", 0.6, "Upper score bound of the uncertainty band")
	iterateCmd.Flags().IntVar(&sampleCount, "samples", 40, "Sample budget for the round (5-100)")
	iterateCmd.Flags().StringVar(&classifier, "classifier", "logistic_regression",
		"Classifier to train (logistic_regression, random_forest, mlp)")
	iterateCmd.Flags().Int64SliceVar(&tagIDs, "tags", nil,
		"Tag ids to include (default: all session tags)")
	iterateCmd.Flags().BoolVar(&noWait, "no-wait", false,
		"Return as soon as the server accepts the round instead of polling until it finishes")

	rootCmd.AddCommand(chartsCmd)
	chartsCmd.AddCommand(chartsRenderCmd)
	chartsRenderCmd.Flags().StringVarP(&chartsOut, "out", "o", "", "Write the HTML page to this file (default: stdout)")
	chartsCmd.AddCommand(chartsServeCmd)
	chartsServeCmd.Flags().StringVar(&chartsListen, "listen", "", "Listen address (default: charts.listen_addr)")

	rootCmd.AddCommand(deployCmd)
	deployCmd.Flags().StringVar(&deployModelName, "model-name", "", "Name for the deployed model (default: session name)")
	deployCmd.Flags().BoolVar(&deployCreateProject, "create-project", false, "Also create an annotation project from the labeled clips")
}
