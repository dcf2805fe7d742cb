package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/ladder/internal/prefs"
	"github.com/five82/ladder/internal/reconcile"
	"github.com/five82/ladder/internal/state"
)

// View represents the current active view.
type View int

const (
	ViewSheet View = iota
	ViewLogs
)

// pane identifies the focused pane within the sheet view.
type pane int

const (
	paneTopics pane = iota
	paneProblems
	paneDetail
	paneCount
)

const statusTTL = 5 * time.Second

// Session is the part of a running session the UI talks to.
type Session struct {
	Controller *reconcile.Controller
	State      *state.Store
	Refresh    func() // requests a background reload; may be nil
}

// Options configures the UI.
type Options struct {
	Context   context.Context
	Session   Session
	APIURL    string
	LogPath   string
	ThemeName string
	LastTopic string
	PrefsPath string
	PollTick  time.Duration
}

// statusLine is a transient message shown in the header.
type statusLine struct {
	text string
	err  bool
	at   time.Time
}

// Model is the root application state for Bubble Tea.
type Model struct {
	// Configuration
	ctx       context.Context
	session   Session
	apiURL    string
	logPath   string
	prefsPath string
	pollTick  time.Duration

	// UI state
	theme       Theme
	keys        keyMap
	help        help.Model
	spinner     spinner.Model
	currentView View
	focus       pane
	width       int
	height      int
	ready       bool
	showHelp    bool
	status      statusLine

	// Data state
	snapshot state.Snapshot

	// Selection
	topicIdx     int
	problemIdx   int
	pendingTopic string // restored from prefs once topics arrive

	// Toggles dispatched but not yet answered, by problem id
	awaiting map[string]struct{}

	// Detail state
	detailViewport viewport.Model
	detailFor      string

	// Log state
	logViewport viewport.Model
	logState    logState
}

// New creates a new Bubble Tea model.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}

	pollTick := opts.PollTick
	if pollTick <= 0 {
		pollTick = time.Second
	}

	themeName := opts.ThemeName
	if themeName == "" {
		themeName = prefs.Defaults().Theme
	}

	prefsPath := opts.PrefsPath
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}

	return Model{
		ctx:          ctx,
		session:      opts.Session,
		apiURL:       opts.APIURL,
		logPath:      opts.LogPath,
		prefsPath:    prefsPath,
		pollTick:     pollTick,
		theme:        GetTheme(themeName),
		keys:         DefaultKeyMap(),
		help:         help.New(),
		spinner:      spinner.New(spinner.WithSpinner(spinner.MiniDot)),
		currentView:  ViewSheet,
		focus:        paneTopics,
		pendingTopic: opts.LastTopic,
		awaiting:     make(map[string]struct{}),
		logState:     logState{follow: true},
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{tickCmd(m.pollTick)}
	if m.session.State != nil {
		cmds = append(cmds, fetchSnapshotCmd(m.session.State))
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		if !m.ready {
			m.detailViewport = viewport.New(0, 0)
			m.logViewport = viewport.New(0, 0)
		}
		m.ready = true
		m.updateDetailViewport()
		m.updateLogViewport()
		return m, nil

	case tickMsg:
		return m.handleTick()

	case snapshotMsg:
		m.applySnapshot(state.Snapshot(msg))
		return m, nil

	case toggleResultMsg:
		m.handleToggleResult(msg)
		return m, nil

	case spinner.TickMsg:
		if !m.hasPending() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case logTailMsg:
		m.handleLogTail(msg)
		return m, nil
	}

	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	if m.showHelp {
		return m.renderHelp()
	}
	return m.renderMain()
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showHelp {
		// Any key closes help
		m.showHelp = false
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.savePrefs()
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil

	case key.Matches(msg, m.keys.CycleTheme):
		m.theme = GetTheme(NextTheme(m.theme.Name))
		m.savePrefs()
		m.logState.dirty = true
		m.updateDetailViewport()
		m.updateLogViewport()
		return m, nil

	case key.Matches(msg, m.keys.Refresh):
		if m.session.Refresh != nil {
			m.session.Refresh()
			m.setStatus("Reloading from server", false)
		}
		return m, nil

	case key.Matches(msg, m.keys.ViewLogs):
		if m.currentView == ViewLogs {
			m.currentView = ViewSheet
			return m, nil
		}
		m.currentView = ViewLogs
		return m, m.readLogs()

	case key.Matches(msg, m.keys.Escape):
		m.currentView = ViewSheet
		return m, nil
	}

	switch m.currentView {
	case ViewLogs:
		return m.handleLogsKey(msg)
	default:
		return m.handleSheetKey(msg)
	}
}

// handleSheetKey processes keys for the topics/problems/detail layout.
func (m Model) handleSheetKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Tab):
		m.focus = (m.focus + 1) % paneCount
		return m, nil

	case key.Matches(msg, m.keys.ShiftTab):
		m.focus = (m.focus + paneCount - 1) % paneCount
		return m, nil

	case key.Matches(msg, m.keys.Toggle):
		return m.startToggle()

	case key.Matches(msg, m.keys.Open):
		if m.focus == paneTopics {
			m.focus = paneProblems
			return m, nil
		}
		return m.startToggle()
	}

	if m.focus == paneDetail {
		var cmd tea.Cmd
		m.detailViewport, cmd = m.detailViewport.Update(msg)
		return m, cmd
	}

	page := max(m.listCapacity(), 1)
	switch {
	case key.Matches(msg, m.keys.Up):
		m.move(-1)
	case key.Matches(msg, m.keys.Down):
		m.move(1)
	case key.Matches(msg, m.keys.PageUp):
		m.move(-page)
	case key.Matches(msg, m.keys.PageDown):
		m.move(page)
	case key.Matches(msg, m.keys.Top):
		m.move(-1 << 30)
	case key.Matches(msg, m.keys.Bottom):
		m.move(1 << 30)
	}
	return m, nil
}

// move shifts the selection in the focused list by delta, clamped.
func (m *Model) move(delta int) {
	switch m.focus {
	case paneTopics:
		next := clamp(m.topicIdx+delta, 0, len(m.snapshot.Topics)-1)
		if next != m.topicIdx {
			m.topicIdx = next
			m.problemIdx = 0
		}
	case paneProblems:
		topic, ok := m.selectedTopic()
		if !ok {
			return
		}
		m.problemIdx = clamp(m.problemIdx+delta, 0, len(topic.Problems)-1)
	}
	m.updateDetailViewport()
}

// startToggle dispatches a toggle for the selected problem.
func (m Model) startToggle() (tea.Model, tea.Cmd) {
	problem, ok := m.selectedProblem()
	if !ok || m.session.Controller == nil {
		return m, nil
	}
	if m.isBusy(problem.ID) {
		m.setStatus(fmt.Sprintf("%s is still saving", displayTitle(problem.Title, problem.ID)), true)
		return m, nil
	}

	m.awaiting[problem.ID] = struct{}{}
	return m, tea.Batch(
		toggleCmd(m.ctx, m.session.Controller, problem.ID),
		m.spinner.Tick,
	)
}

// handleToggleResult reports the outcome of a toggle in the status line.
func (m *Model) handleToggleResult(msg toggleResultMsg) {
	delete(m.awaiting, msg.problemID)
	title := m.problemTitle(msg.problemID)

	switch {
	case msg.err == nil && msg.completed:
		m.setStatus("Solved "+title, false)
	case msg.err == nil:
		m.setStatus("Reopened "+title, false)
	case errors.Is(msg.err, reconcile.ErrOperationInProgress):
		m.setStatus(title+" is still saving", true)
	default:
		m.setStatus("Could not save "+title+": "+describeError(msg.err), true)
	}
	m.updateDetailViewport()
}

// hasPending reports whether any toggle is still waiting on the server.
func (m Model) hasPending() bool {
	if len(m.awaiting) > 0 {
		return true
	}
	return m.session.Controller != nil && len(m.session.Controller.Pending()) > 0
}

// isBusy reports whether problemID has a toggle outstanding.
func (m Model) isBusy(problemID string) bool {
	if _, ok := m.awaiting[problemID]; ok {
		return true
	}
	return m.session.Controller != nil && m.session.Controller.InFlight(problemID)
}

// isCompleted reads the live, possibly optimistic, completion state.
func (m Model) isCompleted(problemID string) bool {
	if m.session.Controller == nil {
		return false
	}
	return m.session.Controller.Store().IsCompleted(problemID)
}

func (m *Model) setStatus(text string, isErr bool) {
	m.status = statusLine{text: text, err: isErr, at: time.Now()}
}

// savePrefs persists the theme and the selected topic. Errors are ignored;
// losing a preference is not worth interrupting the user.
func (m Model) savePrefs() {
	if m.prefsPath == "" {
		return
	}
	p := prefs.Prefs{Theme: m.theme.Name, LastTopic: m.pendingTopic}
	if topic, ok := m.selectedTopic(); ok {
		p.LastTopic = topic.ID
	}
	_ = prefs.Save(m.prefsPath, p)
}

// handleTick processes the polling tick.
func (m Model) handleTick() (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	if m.session.State != nil {
		cmds = append(cmds, fetchSnapshotCmd(m.session.State))
	}

	if m.currentView == ViewLogs && m.logState.follow {
		if cmd := m.readLogs(); cmd != nil {
			cmds = append(cmds, cmd)
		}
	}

	if m.status.text != "" && time.Since(m.status.at) > statusTTL {
		m.status = statusLine{}
	}

	cmds = append(cmds, tickCmd(m.pollTick))
	return m, tea.Batch(cmds...)
}

// renderMain renders the full UI.
func (m Model) renderMain() string {
	var b strings.Builder

	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.renderCommandBar())
	b.WriteString("\n")
	b.WriteString(m.renderContent())

	return b.String()
}

// renderContent renders the main content area based on current view.
func (m Model) renderContent() string {
	switch m.currentView {
	case ViewLogs:
		return m.renderLogs()
	default:
		return m.renderSheet()
	}
}

// Messages

type tickMsg time.Time

type snapshotMsg state.Snapshot

type toggleResultMsg struct {
	problemID string
	completed bool
	err       error
}

// Commands

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func fetchSnapshotCmd(store *state.Store) tea.Cmd {
	return func() tea.Msg {
		return snapshotMsg(store.Snapshot())
	}
}

func toggleCmd(ctx context.Context, ctrl *reconcile.Controller, problemID string) tea.Cmd {
	return func() tea.Msg {
		completed, err := ctrl.Toggle(ctx, problemID)
		return toggleResultMsg{problemID: problemID, completed: completed, err: err}
	}
}

// Run starts the Bubble Tea program and blocks until the user quits or the
// options' context is cancelled.
func Run(opts Options) error {
	programOpts := []tea.ProgramOption{tea.WithAltScreen()}
	if opts.Context != nil {
		programOpts = append(programOpts, tea.WithContext(opts.Context))
	}

	_, err := tea.NewProgram(New(opts), programOpts...).Run()
	if errors.Is(err, tea.ErrProgramKilled) && opts.Context != nil && opts.Context.Err() != nil {
		return nil
	}
	return err
}
