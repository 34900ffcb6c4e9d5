// Copyright (C) 2026 Tanager ML (oss@tanagerml.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/tanagerml/tanager/services/labeling"
)

// =============================================================================
// Styles
// =============================================================================

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	focusStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))

	negativeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	uncertainStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("220"))

	skippedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))

	provenanceStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("75"))

	toastStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42"))

	errorPanelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("196")).
			Padding(0, 1)

	helpKeyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")).
			Bold(true)

	helpDescStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("250"))
)

// =============================================================================
// View
// =============================================================================

// View implements tea.Model.
func (m Model) View() string {
	if m.quitting {
		if m.deployed != nil {
			out := fmt.Sprintf("Deployed model %s", m.deployed.ModelID)
			if m.deployed.ProjectID != "" {
				out += fmt.Sprintf(" (annotation project %s)", m.deployed.ProjectID)
			}
			return out + "\n"
		}
		return ""
	}

	if m.form == formIteration {
		return m.itForm.View()
	}
	if m.form == formDeploy {
		return m.depForm.View()
	}
	if m.showHelp {
		return m.renderHelp()
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.renderResults())
	b.WriteString("\n")
	if m.failedErr != nil {
		b.WriteString(m.renderErrorPanel())
		b.WriteString("\n")
	}
	b.WriteString(m.renderFooter())
	return b.String()
}

func (m Model) renderHeader() string {
	s := m.ctrl.Session()
	var b strings.Builder

	b.WriteString(titleStyle.Render(s.Name))
	b.WriteString(dimStyle.Render(fmt.Sprintf("  iteration %d  %s", s.Iteration, s.Status)))
	if m.polling || m.loading {
		b.WriteString(" " + m.spinner.View())
	}
	b.WriteString("\n")

	// Progress line: per-tag counts in tag colors, then the special
	// statuses.
	p := m.ctrl.Progress()
	parts := make([]string, 0, len(s.Tags)+4)
	for _, t := range s.Tags {
		style := lipgloss.NewStyle().Foreground(lipgloss.Color(t.Color()))
		parts = append(parts, style.Render(fmt.Sprintf("%s:%d", t.Name, p.PerTag[t.ID])))
	}
	parts = append(parts,
		negativeStyle.Render(fmt.Sprintf("neg:%d", p.Negative)),
		uncertainStyle.Render(fmt.Sprintf("unc:%d", p.Uncertain)),
		skippedStyle.Render(fmt.Sprintf("skip:%d", p.Skipped)),
		dimStyle.Render(fmt.Sprintf("%d/%d labeled", p.Labeled(), p.Total)),
	)
	b.WriteString(strings.Join(parts, "  "))
	b.WriteString("\n")
	return b.String()
}

func (m Model) renderResults() string {
	store := m.ctrl.Store()
	if store.Len() == 0 {
		if !m.ctrl.Session().SearchExecuted {
			return dimStyle.Render("No results yet. Press e to execute the initial search.") + "\n"
		}
		return dimStyle.Render("No results match the current filter.") + "\n"
	}

	var b strings.Builder
	focus := m.ctrl.Filter().Focus()
	for i, r := range store.Results() {
		b.WriteString(m.renderRow(r, i == focus))
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) renderRow(r labeling.Result, focused bool) string {
	cursor := "  "
	if focused {
		cursor = focusStyle.Render("> ")
	}

	check := "[ ]"
	if m.ctrl.Selection().Contains(r.ID) {
		check = selectedStyle.Render("[x]")
	}

	clip := fmt.Sprintf("%s %5.1fs-%5.1fs", r.Recording.RecordingID, r.Recording.StartSec, r.Recording.EndSec)
	score := fmt.Sprintf("%.3f (p%2.0f)", r.Score, r.Percentile*100)
	prov := provenanceStyle.Render(fmt.Sprintf("%-15s", string(r.Provenance)))
	iter := dimStyle.Render(fmt.Sprintf("it%d", r.Iteration))

	return fmt.Sprintf("%s%s #%-4d %-28s %s %s %s  %s",
		cursor, check, r.ID, clip, score, prov, iter, m.renderLabel(r))
}

// renderLabel renders the single derived status, with tag names in their
// stable colors.
func (m Model) renderLabel(r labeling.Result) string {
	switch labeling.DeriveStatus(r) {
	case labeling.StatusTagged:
		names := make([]string, 0, 2)
		for _, id := range r.TagSet() {
			name := fmt.Sprintf("tag %d", id)
			if t, ok := m.ctrl.Session().TagByID(id); ok {
				name = t.Name
			}
			style := lipgloss.NewStyle().Foreground(lipgloss.Color(labeling.TagColor(id)))
			names = append(names, style.Render(name))
		}
		return strings.Join(names, ", ")
	case labeling.StatusNegative:
		return negativeStyle.Render("negative")
	case labeling.StatusUncertain:
		return uncertainStyle.Render("uncertain")
	case labeling.StatusSkipped:
		return skippedStyle.Render("skipped")
	default:
		return dimStyle.Render("unlabeled")
	}
}

func (m Model) renderErrorPanel() string {
	text := fmt.Sprintf("%s failed: %v\n%s retry  %s dismiss",
		m.failedOp, m.failedErr, helpKeyStyle.Render("r"), helpKeyStyle.Render("esc"))
	return errorPanelStyle.Render(text)
}

func (m Model) renderFooter() string {
	filter := m.ctrl.Filter()
	store := m.ctrl.Store()

	desc := string(filter.Status())
	if filter.Status() == labeling.FilterTag && filter.TagID() != nil {
		if t, ok := m.ctrl.Session().TagByID(*filter.TagID()); ok {
			desc = "tag:" + t.Name
		}
	}
	if filter.Iteration() != nil {
		desc += fmt.Sprintf(" it%d", *filter.Iteration())
	}

	line := dimStyle.Render(fmt.Sprintf("filter %s  page %d/%d  selected %d  ? help",
		desc, filter.Page()+1, filter.PageCount(store.Total()), m.ctrl.Selection().Len()))
	if m.toast != "" {
		line += "\n" + toastStyle.Render(m.toast)
	}
	return line
}

func (m Model) renderHelp() string {
	rows := [][2]string{
		{"1-9", "toggle tag by shortcut on the focused clip"},
		{"n / u / s", "mark negative / uncertain / skipped (advances)"},
		{"← / →", "previous / next clip (pages at the edges)"},
		{"space", "play the focused clip"},
		{"x", "select / deselect the focused clip"},
		{"a", "select every clip on this page"},
		{"c", "clear the selection"},
		{"N / U / S", "bulk negative / uncertain / skip the selection"},
		{"f", "cycle the status and tag filters"},
		{"F", "clear the iteration filter"},
		{"e", "execute the initial search"},
		{"i", "run an active-learning iteration"},
		{"d", "deploy the trained model"},
		{"q", "quit"},
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("Keys"))
	b.WriteString("\n\n")
	for _, row := range rows {
		b.WriteString(fmt.Sprintf("  %s  %s\n",
			helpKeyStyle.Render(fmt.Sprintf("%-9s", row[0])),
			helpDescStyle.Render(row[1])))
	}
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("press q or ? to close"))
	return b.String()
}
