package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/ladder/internal/logtail"
)

const (
	logTailLines    = 500
	logReadInterval = time.Second
)

// logState holds the log view's state.
type logState struct {
	entries  []logtail.Entry
	follow   bool
	err      error
	lastRead time.Time
	dirty    bool // entries or theme changed since the viewport was filled
}

type logTailMsg struct {
	entries []logtail.Entry
	err     error
}

// readLogs schedules a tail of the log file, rate limited to logReadInterval.
func (m *Model) readLogs() tea.Cmd {
	if m.logPath == "" {
		return nil
	}
	if time.Since(m.logState.lastRead) < logReadInterval {
		return nil
	}
	m.logState.lastRead = time.Now()

	path := m.logPath
	return func() tea.Msg {
		entries, err := logtail.Tail(path, logTailLines)
		return logTailMsg{entries: entries, err: err}
	}
}

func (m *Model) handleLogTail(msg logTailMsg) {
	m.logState.err = msg.err
	if msg.err == nil {
		m.logState.entries = msg.entries
	}
	m.logState.dirty = true
	m.updateLogViewport()
}

// updateLogViewport resizes the log viewport and refills it when needed.
func (m *Model) updateLogViewport() {
	if !m.ready {
		return
	}
	// Box takes everything below header and command bar except the status line.
	m.logViewport.Width = max(m.width-4, 1)
	m.logViewport.Height = max(m.height-5, 1)
	m.logViewport.Style = lipgloss.NewStyle().Background(lipgloss.Color(m.theme.FocusBg))

	if m.logState.dirty {
		m.logViewport.SetContent(m.renderLogContent())
		m.logState.dirty = false
	}
	if m.logState.follow {
		m.logViewport.GotoBottom()
	}
}

// renderLogs renders the log view: a box with the viewport and a status line.
func (m Model) renderLogs() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)

	box := m.renderTitledBox("Client log", m.logViewport.View(), m.width, max(m.height-3, 3), true)

	var parts []string
	if m.logState.follow {
		parts = append(parts, bg.Render("FOLLOW", styles.SuccessText))
	} else {
		parts = append(parts, bg.Render("PAUSED", styles.WarningText))
	}
	parts = append(parts, bg.Render(fmt.Sprintf("%d lines", len(m.logState.entries)), styles.MutedText))
	if m.logPath != "" {
		parts = append(parts, bg.Render(truncateMiddle(m.logPath, 50), styles.FaintText))
	}
	if m.logState.err != nil {
		parts = append(parts, bg.Render(truncate(m.logState.err.Error(), 50), styles.DangerText))
	}
	status := styles.Header.Width(m.width).MaxHeight(1).Render(bg.Join(parts, "  "))

	return box + "\n" + status
}

// renderLogContent renders every entry as one styled line.
func (m *Model) renderLogContent() string {
	bg := NewBgStyle(m.theme.FocusBg)
	styles := m.theme.Styles()
	width := m.logViewport.Width

	if m.logPath == "" {
		return bg.FillLine(bg.Render("Logging to a file is disabled (log_path is empty)", styles.MutedText), width)
	}
	if len(m.logState.entries) == 0 {
		return bg.FillLine(bg.Render("No log entries", styles.MutedText), width)
	}

	lines := make([]string, 0, len(m.logState.entries))
	for _, entry := range m.logState.entries {
		lines = append(lines, bg.FillLine(m.formatLogEntry(entry, styles, bg), width))
	}
	return strings.Join(lines, "\n")
}

// formatLogEntry renders "15:04:05 INFO  reconcile toggle confirmed problem_id=a1".
func (m *Model) formatLogEntry(entry logtail.Entry, styles Styles, bg BgStyle) string {
	if !entry.Structured() {
		return bg.Render(entry.Raw, styles.FaintText)
	}

	var b strings.Builder
	b.WriteString(bg.Render(shortTime(entry.Time), styles.FaintText))
	b.WriteString(bg.Space())
	b.WriteString(bg.Render(fmt.Sprintf("%-5s", entry.Level), levelStyle(entry.Level, styles).Bold(true)))
	if entry.Logger != "" {
		b.WriteString(bg.Space())
		b.WriteString(bg.Render(entry.Logger, styles.AccentText))
	}
	b.WriteString(bg.Space())
	b.WriteString(bg.Render(entry.Message, styles.Text))
	if entry.Fields != "" {
		b.WriteString(bg.Spaces(2))
		b.WriteString(bg.Render(entry.Fields, styles.MutedText))
	}
	return b.String()
}

func levelStyle(level string, styles Styles) lipgloss.Style {
	switch level {
	case "DEBUG":
		return styles.InfoText
	case "INFO":
		return styles.SuccessText
	case "WARN":
		return styles.WarningText
	case "ERROR", "DPANIC", "PANIC", "FATAL":
		return styles.DangerText
	default:
		return styles.Text
	}
}

// shortTime reduces an ISO8601 timestamp to its clock part.
func shortTime(ts string) string {
	if i := strings.IndexByte(ts, 'T'); i >= 0 && len(ts) >= i+9 {
		return ts[i+1 : i+9]
	}
	return ts
}

// handleLogsKey processes keyboard input for the log view.
func (m Model) handleLogsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.ToggleFollow):
		m.logState.follow = !m.logState.follow
		if m.logState.follow {
			m.logViewport.GotoBottom()
			return m, m.readLogs()
		}
		return m, nil

	case key.Matches(msg, m.keys.Top):
		m.logState.follow = false
		m.logViewport.GotoTop()
		return m, nil

	case key.Matches(msg, m.keys.Bottom):
		m.logViewport.GotoBottom()
		return m, nil
	}

	var cmd tea.Cmd
	m.logViewport, cmd = m.logViewport.Update(msg)
	if !m.logViewport.AtBottom() {
		m.logState.follow = false
	}
	return m, cmd
}
