// Copyright (C) 2026 Tanager ML (oss@tanagerml.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package tui implements the interactive labeling view using bubbletea.
//
// # Description
//
// The labeling view is a keyboard-first loop over the session's result
// pages: digit keys toggle tags on the focused clip, n/u/s apply the
// special statuses and advance, and arrow keys page through the result set.
// Label keys apply optimistically: the view updates before the server
// acknowledges, and a failed acknowledgement rolls the clip back and raises
// a toast; repeating the key retries. Failed lifecycle calls (search,
// iteration, deploy) raise a persistent panel with a retry key instead,
// since those carry form input the user should not have to re-enter.
//
// # Thread Safety
//
// All model state is owned by the bubbletea event loop. Network calls run
// inside tea.Cmd goroutines and re-enter the loop as messages; they touch
// only the API client and immutable mutation values.
package tui

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/tanagerml/tanager/pkg/logging"
	"github.com/tanagerml/tanager/services/labeling"
)

// requestTimeout bounds every network call issued from the view.
const requestTimeout = 15 * time.Second

// =============================================================================
// Messages
// =============================================================================

// resultsMsg delivers a fetched result page. focusLast is set when the page
// was reached by retreating, so the cursor lands on its last item.
type resultsMsg struct {
	page      labeling.ResultPage
	focusLast bool
}

// fetchFailedMsg reports a failed page fetch. revert runs on the event loop
// to undo the speculative page move, so a retry repeats the same action.
type fetchFailedMsg struct {
	err    error
	revert func()
}

// progressMsg delivers fresh progress counters.
type progressMsg struct {
	progress labeling.Progress
}

// sessionMsg delivers a polled session snapshot.
type sessionMsg struct {
	session labeling.Session
}

// pollTickMsg fires when the next status poll is due.
type pollTickMsg struct{}

// mutationAckMsg reports a confirmed optimistic mutation.
type mutationAckMsg struct {
	mutation *labeling.Mutation
}

// mutationFailMsg reports a rejected optimistic mutation.
type mutationFailMsg struct {
	mutation *labeling.Mutation
	err      error
}

// bulkDoneMsg reports a completed bulk label operation.
type bulkDoneMsg struct {
	count int
}

// bulkFailMsg reports a failed bulk label operation. The selection is
// preserved so the user can retry without re-selecting.
type bulkFailMsg struct {
	err error
}

// searchDoneMsg reports the outcome of the initial search.
type searchDoneMsg struct {
	resp *labeling.SearchResponse
	err  error
}

// iterationDoneMsg reports the outcome of an active-learning round request.
// req is echoed back so a failure can be retried with the same parameters.
type iterationDoneMsg struct {
	resp *labeling.IterationResponse
	req  labeling.IterationRequest
	err  error
}

// deployDoneMsg reports the outcome of a deploy. req is echoed back so a
// failure can be retried with the same parameters.
type deployDoneMsg struct {
	resp *labeling.DeployResponse
	req  labeling.DeployRequest
	err  error
}

// audioOpenErrMsg reports a failed audio preview launch.
type audioOpenErrMsg struct {
	err error
}

// toastExpiredMsg clears a transient toast.
type toastExpiredMsg struct {
	seq int
}

// =============================================================================
// Config
// =============================================================================

// Config configures the labeling view.
type Config struct {
	// PollInterval paces session status polls while a round runs
	// server-side. Zero means labeling.DefaultPollInterval.
	PollInterval time.Duration

	// AudioOpener overrides the command used to open audio URLs
	// (default: xdg-open / open, by platform).
	AudioOpener string
}

// =============================================================================
// Model
// =============================================================================

// formKind identifies which modal form is active.
type formKind int

const (
	formNone formKind = iota
	formIteration
	formDeploy
)

// Model is the bubbletea model for the labeling view.
type Model struct {
	config Config
	ctrl   *labeling.Controller
	client *labeling.Client
	log    *logging.Logger

	spinner spinner.Model
	width   int
	height  int

	// In-flight state
	loading bool
	polling bool

	// Retryable failure panel for lifecycle calls. failedRetry
	// re-dispatches the stored request; a newer failure replaces an
	// undismissed older one.
	failedOp    string
	failedErr   error
	failedRetry tea.Cmd

	// Transient toast
	toast    string
	toastSeq int

	// Modal form state; global labeling keys are suspended while a form
	// is active.
	form     formKind
	itForm   *iterationForm
	depForm  *deployForm
	showHelp bool
	quitting bool

	// Deploy outcome, shown on the final screen.
	deployed *labeling.DeployResponse
}

// New creates the labeling view over an assembled controller. client is the
// concrete API client, needed for media URL construction.
func New(ctrl *labeling.Controller, client *labeling.Client, log *logging.Logger, config Config) Model {
	if config.PollInterval <= 0 {
		config.PollInterval = labeling.DefaultPollInterval
	}
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	return Model{
		config:  config,
		ctrl:    ctrl,
		client:  client,
		log:     log,
		spinner: sp,
	}
}

// Init implements tea.Model: fetch the first page and the progress counters.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.fetchPageCmd(false), m.fetchProgressCmd())
}

// =============================================================================
// Update
// =============================================================================

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)

	case resultsMsg:
		m.loading = false
		m.ctrl.ApplyResults(msg.page)
		if msg.focusLast {
			m.ctrl.Filter().SetFocus(m.ctrl.Store().Len()-1, m.ctrl.Store().Len())
		}
		return m, nil

	case fetchFailedMsg:
		m.loading = false
		if msg.revert != nil {
			msg.revert()
		}
		return m.withToast(fmt.Sprintf("fetch failed: %v", msg.err))

	case progressMsg:
		m.ctrl.ApplyProgress(msg.progress)
		return m, nil

	case sessionMsg:
		m.ctrl.ApplySession(msg.session)
		if labeling.ShouldPoll(m.ctrl.Session()) {
			return m, m.pollTickCmd()
		}
		// The round finished: stop polling and show its output.
		m.polling = false
		m.loading = true
		return m, tea.Batch(m.fetchPageCmd(false), m.fetchProgressCmd())

	case pollTickMsg:
		return m, m.pollCmd()

	case mutationAckMsg:
		// Confirmed: refresh only the counters. Refetching results here
		// would discard optimistic updates still in flight.
		return m, m.fetchProgressCmd()

	case mutationFailMsg:
		// Roll back and move on; repeating the key retries a single
		// label, so a transient toast is enough.
		m.log.Warn("label push failed",
			"result_id", msg.mutation.ResultID,
			"action", msg.mutation.Action.String(),
			"error", msg.err)
		m.ctrl.Gateway().Rollback(msg.mutation)
		return m.withToast(fmt.Sprintf("label not saved: %v", msg.err))

	case bulkDoneMsg:
		m.ctrl.Metrics().BulkOps.WithLabelValues("ok").Inc()
		m.ctrl.Selection().Clear()
		m.loading = true
		next, toastCmd := m.withToast(fmt.Sprintf("labeled %d clips", msg.count))
		return next, tea.Batch(next.fetchPageCmd(false), next.fetchProgressCmd(), toastCmd)

	case bulkFailMsg:
		m.ctrl.Metrics().BulkOps.WithLabelValues("error").Inc()
		return m.withToast(fmt.Sprintf("bulk label failed: %v", msg.err))

	case searchDoneMsg:
		if msg.err != nil {
			return m.failPanel("search", msg.err, m.searchCmd()), nil
		}
		s := m.ctrl.Session()
		s.SearchExecuted = true
		s.Iteration = 0
		s.Status = labeling.StatusRunning
		m.polling = true
		next, toastCmd := m.withToast(fmt.Sprintf("search started: %d candidates", msg.resp.ResultCount))
		return next, tea.Batch(next.pollTickCmd(), toastCmd)

	case iterationDoneMsg:
		if msg.err != nil {
			return m.failPanel("iteration", msg.err, m.runIterationCmd(msg.req)), nil
		}
		m.ctrl.Orchestrator().CommitIteration(msg.resp)
		m.polling = true
		m.loading = true
		return m, tea.Batch(m.pollTickCmd(), m.fetchPageCmd(false))

	case deployDoneMsg:
		if msg.err != nil {
			return m.failPanel("deploy", msg.err, m.deployCmd(msg.req)), nil
		}
		m.deployed = msg.resp
		m.quitting = true
		return m, tea.Quit

	case audioOpenErrMsg:
		return m.withToast(fmt.Sprintf("audio preview failed: %v", msg.err))

	case toastExpiredMsg:
		if msg.seq == m.toastSeq {
			m.toast = ""
		}
		return m, nil
	}

	if m.form != formNone {
		return m.updateForm(msg)
	}
	return m, nil
}

// handleKey routes one keypress.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// A modal form owns the keyboard completely.
	if m.form != formNone {
		if msg.String() == "esc" {
			m.form = formNone
			return m, nil
		}
		return m.updateForm(msg)
	}

	if m.showHelp {
		switch msg.String() {
		case "q", "?", "esc":
			m.showHelp = false
		}
		return m, nil
	}

	// The failure panel claims retry/dismiss keys first.
	if m.failedErr != nil {
		switch msg.String() {
		case "r":
			retry := m.failedRetry
			m.failedOp, m.failedErr, m.failedRetry = "", nil, nil
			return m, retry
		case "esc":
			m.failedOp, m.failedErr, m.failedRetry = "", nil, nil
			return m, nil
		}
	}

	switch msg.String() {
	case "q", "ctrl+c":
		m.quitting = true
		return m, tea.Quit

	case "?":
		m.showHelp = true
		return m, nil

	case "1", "2", "3", "4", "5", "6", "7", "8", "9":
		return m.toggleTagByShortcut(int(msg.String()[0] - '0'))

	case "n":
		return m.applyStatus(labeling.NegativeAction())
	case "u":
		return m.applyStatus(labeling.UncertainAction())
	case "s":
		return m.applyStatus(labeling.SkipAction())

	case "right", "l":
		return m.advance()
	case "left", "h":
		return m.retreat()

	case " ":
		return m.openAudio()

	case "x":
		if r, ok := m.ctrl.Focused(); ok {
			m.ctrl.Selection().Toggle(r.ID)
		}
		return m, nil
	case "a":
		m.ctrl.SelectPage()
		return m, nil
	case "c":
		m.ctrl.Selection().Clear()
		return m, nil

	case "N":
		return m.bulkApply(labeling.NegativeAction())
	case "U":
		return m.bulkApply(labeling.UncertainAction())
	case "S":
		return m.bulkApply(labeling.SkipAction())

	case "f":
		m.cycleFilter()
		m.loading = true
		return m, m.fetchPageCmd(false)

	case "F":
		m.ctrl.Filter().ClearIteration()
		m.loading = true
		return m, m.fetchPageCmd(false)

	case "e":
		return m.executeSearch()

	case "i":
		return m.openIterationForm()

	case "d":
		return m.openDeployForm()
	}

	return m, nil
}

// =============================================================================
// Labeling actions
// =============================================================================

func (m Model) toggleTagByShortcut(digit int) (tea.Model, tea.Cmd) {
	tag, ok := m.ctrl.Session().TagByShortcut(digit)
	if !ok {
		return m.withToast(fmt.Sprintf("no tag on key %d", digit))
	}
	r, ok := m.ctrl.Focused()
	if !ok {
		return m, nil
	}
	mut, err := m.ctrl.Gateway().ToggleTag(r.ID, tag.ID)
	if err != nil {
		return m.withToast(err.Error())
	}
	return m, m.pushCmd(mut)
}

func (m Model) applyStatus(action labeling.LabelAction) (tea.Model, tea.Cmd) {
	r, ok := m.ctrl.Focused()
	if !ok {
		return m, nil
	}
	mut, err := m.ctrl.Gateway().Apply(r.ID, action)
	if err != nil {
		return m.withToast(err.Error())
	}
	push := m.pushCmd(mut)
	if mut.AutoAdvance {
		next, advanceCmd := m.advance()
		return next, tea.Batch(push, advanceCmd)
	}
	return m, push
}

// failPanel raises the persistent failure panel for a lifecycle call,
// holding a command that re-dispatches the same request.
func (m Model) failPanel(op string, err error, retry tea.Cmd) Model {
	m.log.Warn(op+" failed", "error", err)
	m.failedOp = op
	m.failedErr = err
	m.failedRetry = retry
	return m
}

func (m Model) bulkApply(action labeling.LabelAction) (tea.Model, tea.Cmd) {
	if m.ctrl.Selection().Len() == 0 {
		return m.withToast("select clips first (x to select, a for page)")
	}
	ids := m.ctrl.Selection().IDs()
	api := m.ctrl.API()
	sessionID := m.ctrl.Session().ID
	return m, func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		if err := api.LabelResults(ctx, sessionID, ids, action); err != nil {
			return bulkFailMsg{err: err}
		}
		return bulkDoneMsg{count: len(ids)}
	}
}

// =============================================================================
// Navigation
// =============================================================================

func (m Model) advance() (Model, tea.Cmd) {
	filter := m.ctrl.Filter()
	store := m.ctrl.Store()
	if filter.Focus() < store.Len()-1 {
		filter.SetFocus(filter.Focus()+1, store.Len())
		return m, nil
	}
	if !filter.HasNextPage(store.Total()) {
		return m, nil
	}
	filter.NextPage(store.Total())
	m.loading = true
	return m, m.fetchPageCmdWithRevert(false, func() { filter.PrevPage() })
}

func (m Model) retreat() (Model, tea.Cmd) {
	filter := m.ctrl.Filter()
	store := m.ctrl.Store()
	if filter.Focus() > 0 {
		filter.SetFocus(filter.Focus()-1, store.Len())
		return m, nil
	}
	if !filter.PrevPage() {
		return m, nil
	}
	m.loading = true
	return m, m.fetchPageCmdWithRevert(true, func() { filter.NextPage(store.Total()) })
}

// cycleFilter steps through the status filters, then each tag filter, then
// back to all.
func (m *Model) cycleFilter() {
	filter := m.ctrl.Filter()
	tags := m.ctrl.Session().Tags

	plain := []labeling.StatusFilter{
		labeling.FilterAll,
		labeling.FilterUnlabeled,
		labeling.FilterNegative,
		labeling.FilterUncertain,
		labeling.FilterSkipped,
	}

	if filter.Status() == labeling.FilterTag {
		// Step to the next tag, wrapping back to all after the last.
		cur := *filter.TagID()
		for i, t := range tags {
			if t.ID == cur {
				if i+1 < len(tags) {
					filter.SetTag(tags[i+1].ID)
				} else {
					filter.SetStatus(labeling.FilterAll)
				}
				return
			}
		}
		filter.SetStatus(labeling.FilterAll)
		return
	}

	for i, s := range plain {
		if filter.Status() == s {
			if i+1 < len(plain) {
				filter.SetStatus(plain[i+1])
			} else if len(tags) > 0 {
				filter.SetTag(tags[0].ID)
			} else {
				filter.SetStatus(labeling.FilterAll)
			}
			return
		}
	}
	filter.SetStatus(labeling.FilterAll)
}

// =============================================================================
// Lifecycle actions
// =============================================================================

func (m Model) executeSearch() (tea.Model, tea.Cmd) {
	if m.ctrl.Session().SearchExecuted {
		return m.withToast("search already executed")
	}
	return m, m.searchCmd()
}

func (m Model) openIterationForm() (tea.Model, tea.Cmd) {
	if !m.ctrl.Session().SearchExecuted {
		return m.withToast("execute the initial search first (e)")
	}
	m.itForm = newIterationForm(m.ctrl.Session().Tags)
	m.form = formIteration
	return m, m.itForm.Init()
}

func (m Model) openDeployForm() (tea.Model, tea.Cmd) {
	if reason := m.ctrl.Orchestrator().DeployLockReason(); reason != "" {
		return m.withToast("deploy locked: " + reason)
	}
	m.depForm = newDeployForm(m.ctrl.Session().Name)
	m.form = formDeploy
	return m, m.depForm.Init()
}

// updateForm routes a message to the active modal form and reacts to its
// completion.
func (m Model) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch m.form {
	case formIteration:
		cmd := m.itForm.Update(msg)
		if m.itForm.Completed() {
			m.form = formNone
			req, err := m.itForm.Request()
			if err != nil {
				return m.withToast(err.Error())
			}
			if err := m.ctrl.Orchestrator().ValidateIteration(req); err != nil {
				return m.withToast(err.Error())
			}
			return m, m.runIterationCmd(req)
		}
		if m.itForm.Aborted() {
			m.form = formNone
			return m, nil
		}
		return m, cmd

	case formDeploy:
		cmd := m.depForm.Update(msg)
		if m.depForm.Completed() {
			m.form = formNone
			return m, m.deployCmd(m.depForm.Request())
		}
		if m.depForm.Aborted() {
			m.form = formNone
			return m, nil
		}
		return m, cmd
	}
	return m, nil
}

// =============================================================================
// Commands
// =============================================================================

func (m Model) fetchPageCmd(focusLast bool) tea.Cmd {
	return m.fetchPageCmdWithRevert(focusLast, nil)
}

func (m Model) fetchPageCmdWithRevert(focusLast bool, revert func()) tea.Cmd {
	api := m.ctrl.API()
	sessionID := m.ctrl.Session().ID
	q := m.ctrl.Filter().Query()
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		page, err := api.ListResults(ctx, sessionID, q)
		if err != nil {
			return fetchFailedMsg{err: err, revert: revert}
		}
		return resultsMsg{page: *page, focusLast: focusLast}
	}
}

func (m Model) fetchProgressCmd() tea.Cmd {
	api := m.ctrl.API()
	sessionID := m.ctrl.Session().ID
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		p, err := api.GetProgress(ctx, sessionID)
		if err != nil {
			// Progress is decoration; a failed refresh is not worth a
			// panel.
			return nil
		}
		return progressMsg{progress: *p}
	}
}

func (m Model) pushCmd(mut *labeling.Mutation) tea.Cmd {
	gw := m.ctrl.Gateway()
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		if err := gw.Push(ctx, mut); err != nil {
			return mutationFailMsg{mutation: mut, err: err}
		}
		return mutationAckMsg{mutation: mut}
	}
}

func (m Model) pollTickCmd() tea.Cmd {
	return tea.Tick(m.config.PollInterval, func(time.Time) tea.Msg {
		return pollTickMsg{}
	})
}

func (m Model) pollCmd() tea.Cmd {
	api := m.ctrl.API()
	sessionID := m.ctrl.Session().ID
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		s, err := api.GetSession(ctx, sessionID)
		if err != nil {
			// Keep polling through transient errors.
			return pollTickMsg{}
		}
		return sessionMsg{session: *s}
	}
}

func (m Model) searchCmd() tea.Cmd {
	api := m.ctrl.API()
	sessionID := m.ctrl.Session().ID
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		resp, err := api.ExecuteSearch(ctx, sessionID)
		return searchDoneMsg{resp: resp, err: err}
	}
}

func (m Model) runIterationCmd(req labeling.IterationRequest) tea.Cmd {
	api := m.ctrl.API()
	sessionID := m.ctrl.Session().ID
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		resp, err := api.RunIteration(ctx, sessionID, req)
		return iterationDoneMsg{resp: resp, req: req, err: err}
	}
}

// deployCmd calls the server directly; the deploy gate was already checked
// on the event loop and the view quits on success, so no orchestrator state
// is mutated off-loop.
func (m Model) deployCmd(req labeling.DeployRequest) tea.Cmd {
	api := m.ctrl.API()
	sessionID := m.ctrl.Session().ID
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		resp, err := api.Deploy(ctx, sessionID, req)
		return deployDoneMsg{resp: resp, req: req, err: err}
	}
}

func (m Model) openAudio() (tea.Model, tea.Cmd) {
	r, ok := m.ctrl.Focused()
	if !ok {
		return m, nil
	}
	url := m.client.AudioURL(r.Recording)
	opener := m.config.AudioOpener
	return m, func() tea.Msg {
		if err := openURL(opener, url); err != nil {
			return audioOpenErrMsg{err: err}
		}
		return nil
	}
}

// withToast sets a transient message on the returned model and schedules
// its expiry.
func (m Model) withToast(text string) (Model, tea.Cmd) {
	m.toast = text
	m.toastSeq++
	seq := m.toastSeq
	return m, tea.Tick(4*time.Second, func(time.Time) tea.Msg {
		return toastExpiredMsg{seq: seq}
	})
}
