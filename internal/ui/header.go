package ui

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"

	"github.com/five82/ladder/internal/sheet"
	"github.com/five82/ladder/internal/state"
	"github.com/five82/ladder/internal/stats"
)

// renderHeader renders the status bar.
func (m Model) renderHeader() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)

	if !m.snapshot.HasData {
		return m.renderConnectingHeader(styles, bg)
	}
	return styles.Header.Width(m.width).MaxHeight(1).Render(m.buildStatusContent(styles, bg))
}

// renderConnectingHeader shows the state before the first successful load.
func (m Model) renderConnectingHeader(styles Styles, bg BgStyle) string {
	sep := bg.Spaces(2)
	target := truncateMiddle(m.apiURL, 40)

	if m.snapshot.LastError != nil {
		last := "soon"
		if !m.snapshot.LastUpdated.IsZero() {
			last = m.snapshot.LastUpdated.Format("15:04:05")
		}
		parts := []string{
			bg.Render("ladder", styles.Logo),
			bg.Render("API "+classifyConnectionError(m.snapshot.LastError), styles.DangerText.Bold(true)),
			bg.Render("r to retry", styles.WarningText.Bold(true)),
			bg.Render(last, styles.MutedText),
		}
		if target != "" {
			parts = append(parts, bg.Render(target, styles.FaintText))
		}
		return styles.Header.Width(m.width).MaxHeight(1).Render(bg.Join(parts, "  "))
	}

	label := "Connecting..."
	if target != "" {
		label = "Connecting to " + target + "..."
	}
	return styles.Header.Width(m.width).MaxHeight(1).Render(
		bg.Render("ladder", styles.Logo) + sep + bg.Render(label, styles.WarningText.Bold(true)),
	)
}

// buildStatusContent builds the header once data has loaded.
func (m Model) buildStatusContent(styles Styles, bg BgStyle) string {
	compact := m.width < 110
	global := m.globalStats()

	var parts []string
	parts = append(parts, bg.Render("ladder", styles.Logo))

	solved := fmt.Sprintf("%d/%d", global.Completed, global.Total)
	pct := fmt.Sprintf("%d%%", global.Percentage)
	barWidth := 20
	if compact {
		barWidth = 10
	}
	bar := progress.New(
		progress.WithSolidFill(m.theme.Success),
		progress.WithoutPercentage(),
		progress.WithWidth(barWidth),
	)
	bar.EmptyColor = m.theme.Border
	solvedPart := bg.Render("Solved:", styles.MutedText) + bg.Space() +
		bg.Render(solved, styles.Text) + bg.Space() +
		bar.ViewAs(float64(global.Percentage)/100) + bg.Space() +
		bg.Render(pct, styles.AccentText)
	if m.snapshot.GlobalSource == state.StatsRemote {
		solvedPart += bg.Space() + bg.Render("(server)", styles.FaintText)
	}
	parts = append(parts, solvedPart)

	if !compact {
		if breakdown := m.formatBreakdown(styles, bg); breakdown != "" {
			parts = append(parts, breakdown)
		}
	}

	if pending := m.pendingCount(); pending > 0 {
		parts = append(parts,
			bg.Render(m.spinner.View(), styles.WarningText)+bg.Space()+
				bg.Render(fmt.Sprintf("saving %d", pending), styles.WarningText))
	}

	if ts := formatTimestamp(m.snapshot.LastUpdated, time.Now()); ts != "" {
		parts = append(parts, bg.Render(ts, styles.MutedText))
	}

	if m.snapshot.LastError != nil {
		label := "ERROR"
		if m.snapshot.IsOffline() {
			label = "OFFLINE"
		}
		maxErr := 60
		if compact {
			maxErr = 30
		}
		parts = append(parts,
			bg.Render(label, styles.DangerText.Bold(true))+bg.Space()+
				bg.Render(truncate(m.snapshot.LastError.Error(), maxErr), styles.DangerText))
	}

	if m.status.text != "" {
		statusStyle := styles.InfoText
		if m.status.err {
			statusStyle = styles.WarningText
		}
		parts = append(parts, bg.Render(truncate(m.status.text, 60), statusStyle))
	}

	return bg.Join(parts, "  ")
}

// globalStats returns the figures shown in the header. Server figures are
// shown as delivered; local figures are recomputed from the live store so
// optimistic toggles show up immediately.
func (m Model) globalStats() stats.Stats {
	if m.snapshot.GlobalSource == state.StatsRemote {
		return m.snapshot.Global
	}
	return stats.GlobalStats(m.snapshot.Topics, m.isCompleted)
}

// formatBreakdown renders "Easy 3/5  Medium 1/4  Hard 0/2".
func (m Model) formatBreakdown(styles Styles, bg BgStyle) string {
	breakdown := stats.ByDifficulty(m.snapshot.Topics, m.isCompleted)
	var parts []string
	for _, d := range []sheet.Difficulty{sheet.DifficultyEasy, sheet.DifficultyMedium, sheet.DifficultyHard} {
		st, ok := breakdown[d]
		if !ok || st.Total == 0 {
			continue
		}
		parts = append(parts,
			bg.Render(d.String(), styles.Difficulty(d))+bg.Space()+
				bg.Render(fmt.Sprintf("%d/%d", st.Completed, st.Total), styles.MutedText))
	}
	return strings.Join(parts, bg.Spaces(2))
}

func (m Model) pendingCount() int {
	n := len(m.awaiting)
	if m.session.Controller != nil {
		n = max(n, len(m.session.Controller.Pending()))
	}
	return n
}

// classifyConnectionError returns a short label for a fetch error.
func classifyConnectionError(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	switch {
	case errors.Is(err, sheet.ErrNotFound):
		return "NOT FOUND"
	case strings.Contains(msg, "connection refused"):
		return "OFFLINE"
	case strings.Contains(msg, "no such host"):
		return "HOST NOT FOUND"
	case strings.Contains(msg, "timeout"), strings.Contains(msg, "deadline exceeded"):
		return "TIMEOUT"
	case errors.Is(err, sheet.ErrServer):
		return "SERVER ERROR"
	default:
		return "ERROR"
	}
}

// describeError shortens a toggle failure for the status line.
func describeError(err error) string {
	if label := classifyConnectionError(err); label != "ERROR" {
		return strings.ToLower(label)
	}
	return truncate(err.Error(), 40)
}

// renderCommandBar renders the command hints bar.
func (m Model) renderCommandBar() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)

	type cmd struct{ key, desc string }
	var commands []cmd

	switch m.currentView {
	case ViewLogs:
		followLabel := "Pause"
		if !m.logState.follow {
			followLabel = "Follow"
		}
		commands = []cmd{
			{"f", followLabel},
			{"j/k", "Scroll"},
			{"g/G", "Top/Bottom"},
			{"l", "Sheet"},
			{"?", "More"},
		}
	default:
		toggleLabel := "Toggle"
		if problem, ok := m.selectedProblem(); ok {
			if m.isCompleted(problem.ID) {
				toggleLabel = "Reopen"
			} else {
				toggleLabel = "Solve"
			}
		}
		commands = []cmd{
			{"space", toggleLabel},
			{"tab", "Focus"},
			{"j/k", "Navigate"},
			{"r", "Reload"},
			{"l", "Logs"},
			{"?", "More"},
		}
	}

	colon := bg.Render(":", styles.FaintText)
	segments := make([]string, 0, len(commands)+1)
	for _, c := range commands {
		segments = append(segments,
			bg.Render(c.key, styles.AccentText)+colon+bg.Render(c.desc, styles.MutedText))
	}
	segments = append(segments,
		bg.Render("T", styles.AccentText)+colon+bg.Render(m.theme.Name, styles.FaintText))

	return styles.Header.Width(m.width).MaxHeight(1).Render(strings.Join(segments, bg.Spaces(2)))
}
