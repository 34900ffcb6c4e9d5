// Copyright (C) 2026 Tanager ML (oss@tanagerml.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package tui

import (
	"fmt"
	"strconv"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/tanagerml/tanager/services/labeling"
)

// =============================================================================
// Iteration form
// =============================================================================

// iterationForm collects the parameters for one active-learning round. The
// numeric fields are captured as strings and parsed on submit; per-field
// validators reject unparseable input inline, and the orchestrator
// re-validates the assembled request before dispatch.
type iterationForm struct {
	form *huh.Form

	lower      string
	upper      string
	sampleStr  string
	classifier labeling.Classifier
	tagIDs     []int64
}

func newIterationForm(tags []labeling.Tag) *iterationForm {
	f := &iterationForm{
		lower:      "0.40",
		upper:      "0.60",
		sampleStr:  "20",
		classifier: labeling.ClassifierLogReg,
	}
	// All target tags start included; the user deselects.
	tagOptions := make([]huh.Option[int64], len(tags))
	for i, t := range tags {
		tagOptions[i] = huh.NewOption(t.Name, t.ID).Selected(true)
	}
	classifierOptions := make([]huh.Option[labeling.Classifier], 0, 3)
	for _, c := range labeling.Classifiers() {
		classifierOptions = append(classifierOptions, huh.NewOption(string(c), c))
	}

	f.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Lower score bound").
				Description("Bottom of the uncertainty band, in [0,1)").
				Value(&f.lower).
				Validate(validateUnitInterval),
			huh.NewInput().
				Title("Upper score bound").
				Description("Top of the uncertainty band, in (0,1]").
				Value(&f.upper).
				Validate(validateUnitInterval),
			huh.NewInput().
				Title("Sample count").
				Description("Clips to fetch this round (5-100)").
				Value(&f.sampleStr).
				Validate(validateSampleCount),
			huh.NewSelect[labeling.Classifier]().
				Title("Classifier").
				Options(classifierOptions...).
				Value(&f.classifier),
			huh.NewMultiSelect[int64]().
				Title("Included tags").
				Description("At least one tag must stay included").
				Options(tagOptions...).
				Value(&f.tagIDs),
		),
	)
	return f
}

func (f *iterationForm) Init() tea.Cmd { return f.form.Init() }

func (f *iterationForm) Update(msg tea.Msg) tea.Cmd {
	model, cmd := f.form.Update(msg)
	if fm, ok := model.(*huh.Form); ok {
		f.form = fm
	}
	return cmd
}

func (f *iterationForm) View() string { return f.form.View() }

func (f *iterationForm) Completed() bool { return f.form.State == huh.StateCompleted }

func (f *iterationForm) Aborted() bool { return f.form.State == huh.StateAborted }

// Request assembles the iteration request from the submitted fields.
func (f *iterationForm) Request() (labeling.IterationRequest, error) {
	lower, err := strconv.ParseFloat(f.lower, 64)
	if err != nil {
		return labeling.IterationRequest{}, fmt.Errorf("lower bound: %w", err)
	}
	upper, err := strconv.ParseFloat(f.upper, 64)
	if err != nil {
		return labeling.IterationRequest{}, fmt.Errorf("upper bound: %w", err)
	}
	count, err := strconv.Atoi(f.sampleStr)
	if err != nil {
		return labeling.IterationRequest{}, fmt.Errorf("sample count: %w", err)
	}
	return labeling.IterationRequest{
		LowerBound:  lower,
		UpperBound:  upper,
		SampleCount: count,
		Classifier:  f.classifier,
		TagIDs:      f.tagIDs,
	}, nil
}

func validateUnitInterval(s string) error {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("not a number")
	}
	if v < 0 || v > 1 {
		return fmt.Errorf("must be between 0 and 1")
	}
	return nil
}

func validateSampleCount(s string) error {
	n, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("not a whole number")
	}
	if n < 5 || n > 100 {
		return fmt.Errorf("must be between 5 and 100")
	}
	return nil
}

// =============================================================================
// Deploy form
// =============================================================================

// deployForm collects the model name and the optional annotation-project
// choice for the terminal deploy transition.
type deployForm struct {
	form *huh.Form

	modelName     string
	createProject bool
}

func newDeployForm(sessionName string) *deployForm {
	f := &deployForm{modelName: sessionName}
	f.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Model name").
				Value(&f.modelName).
				Validate(func(s string) error {
					if s == "" {
						return fmt.Errorf("model name is required")
					}
					return nil
				}),
			huh.NewConfirm().
				Title("Create annotation project?").
				Description("Seeds a review project from the labeled clips").
				Value(&f.createProject),
		),
	)
	return f
}

func (f *deployForm) Init() tea.Cmd { return f.form.Init() }

func (f *deployForm) Update(msg tea.Msg) tea.Cmd {
	model, cmd := f.form.Update(msg)
	if fm, ok := model.(*huh.Form); ok {
		f.form = fm
	}
	return cmd
}

func (f *deployForm) View() string { return f.form.View() }

func (f *deployForm) Completed() bool { return f.form.State == huh.StateCompleted }

func (f *deployForm) Aborted() bool { return f.form.State == huh.StateAborted }

func (f *deployForm) Request() labeling.DeployRequest {
	return labeling.DeployRequest{
		ModelName:     f.modelName,
		CreateProject: f.createProject,
	}
}
