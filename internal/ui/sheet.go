package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/ladder/internal/sheet"
	"github.com/five82/ladder/internal/state"
	"github.com/five82/ladder/internal/stats"
)

// applySnapshot installs a new snapshot, keeping the selection on the same
// topic and problem ids when they still exist.
func (m *Model) applySnapshot(snap state.Snapshot) {
	topicID, problemID := m.selectedIDs()
	if m.pendingTopic != "" && len(snap.Topics) > 0 {
		topicID, problemID = m.pendingTopic, ""
		m.pendingTopic = ""
	}

	m.snapshot = snap
	m.topicIdx = indexOf(len(snap.Topics), func(i int) bool { return snap.Topics[i].ID == topicID }, m.topicIdx)

	if topic, ok := m.selectedTopic(); ok {
		m.problemIdx = indexOf(len(topic.Problems), func(i int) bool { return topic.Problems[i].ID == problemID }, m.problemIdx)
	} else {
		m.problemIdx = 0
	}
	m.updateDetailViewport()
}

// indexOf returns the first index matching, or fallback clamped to [0, n).
func indexOf(n int, match func(int) bool, fallback int) int {
	for i := 0; i < n; i++ {
		if match(i) {
			return i
		}
	}
	return clamp(fallback, 0, n-1)
}

func (m Model) selectedIDs() (topicID, problemID string) {
	if topic, ok := m.selectedTopic(); ok {
		topicID = topic.ID
	}
	if problem, ok := m.selectedProblem(); ok {
		problemID = problem.ID
	}
	return topicID, problemID
}

func (m Model) selectedTopic() (sheet.Topic, bool) {
	if m.topicIdx < 0 || m.topicIdx >= len(m.snapshot.Topics) {
		return sheet.Topic{}, false
	}
	return m.snapshot.Topics[m.topicIdx], true
}

func (m Model) selectedProblem() (sheet.Problem, bool) {
	topic, ok := m.selectedTopic()
	if !ok || m.problemIdx < 0 || m.problemIdx >= len(topic.Problems) {
		return sheet.Problem{}, false
	}
	return topic.Problems[m.problemIdx], true
}

// problemTitle finds the display title of problemID in any loaded topic.
func (m Model) problemTitle(problemID string) string {
	for _, topic := range m.snapshot.Topics {
		for _, p := range topic.Problems {
			if p.ID == problemID {
				return displayTitle(p.Title, p.ID)
			}
		}
	}
	return problemID
}

func displayTitle(title, id string) string {
	if strings.TrimSpace(title) == "" {
		return id
	}
	return title
}

// Layout

func (m Model) contentHeight() int {
	return max(m.height-2, 3) // header + command bar
}

func (m Model) topicsWidth() int {
	if m.width >= 160 {
		return m.width * 25 / 100
	}
	return m.width * 32 / 100
}

func (m Model) problemsHeight() int {
	return max(m.contentHeight()*55/100, 3)
}

// listCapacity is the number of problem rows that fit in the problems pane.
func (m Model) listCapacity() int {
	if m.focus == paneTopics {
		return max((m.contentHeight()-2)/topicRowHeight, 1)
	}
	return max(m.problemsHeight()-2, 1)
}

// renderSheet renders topics on the left, problems and details on the right.
func (m Model) renderSheet() string {
	styles := m.theme.Styles()
	height := m.contentHeight()

	if len(m.snapshot.Topics) == 0 {
		msg := "Loading sheet..."
		switch {
		case m.snapshot.LastError != nil:
			msg = "Could not load the sheet. Press r to retry."
		case m.snapshot.HasData:
			msg = "The sheet has no topics"
		}
		return lipgloss.Place(m.width, height, lipgloss.Center, lipgloss.Center, styles.MutedText.Render(msg))
	}

	leftWidth := m.topicsWidth()
	rightWidth := m.width - leftWidth
	problemsHeight := m.problemsHeight()
	detailHeight := height - problemsHeight

	topicsPane := m.renderTitledBox(
		fmt.Sprintf("Topics (%d)", len(m.snapshot.Topics)),
		m.renderTopicList(leftWidth-2, height-2, m.paneBg(paneTopics)),
		leftWidth, height, m.focus == paneTopics)

	problemsTitle := "Problems"
	if topic, ok := m.selectedTopic(); ok {
		problemsTitle = displayTitle(topic.Title, topic.ID)
	}
	problemsPane := m.renderTitledBox(
		problemsTitle,
		m.renderProblemList(rightWidth-2, problemsHeight-2, m.paneBg(paneProblems)),
		rightWidth, problemsHeight, m.focus == paneProblems)

	detailPane := m.renderTitledBox("Details", m.detailViewport.View(), rightWidth, detailHeight, m.focus == paneDetail)

	right := lipgloss.JoinVertical(lipgloss.Left, problemsPane, detailPane)
	return lipgloss.JoinHorizontal(lipgloss.Top, topicsPane, right)
}

func (m Model) paneBg(p pane) string {
	if m.focus == p {
		return m.theme.FocusBg
	}
	return m.theme.SurfaceAlt
}

// Topics

const topicRowHeight = 2

// renderTopicList renders each topic as a title line and a progress line.
func (m Model) renderTopicList(width, height int, bgColor string) string {
	capacity := max(height/topicRowHeight, 1)
	start, end := visibleRange(m.topicIdx, len(m.snapshot.Topics), capacity)
	done := m.isCompleted

	bar := progress.New(
		progress.WithSolidFill(m.theme.Success),
		progress.WithoutPercentage(),
		progress.WithWidth(max(width-12, 4)),
	)
	bar.EmptyColor = m.theme.Border

	lines := make([]string, 0, (end-start)*topicRowHeight)
	for i := start; i < end; i++ {
		topic := m.snapshot.Topics[i]
		st := stats.TopicStats(topic, done)
		rowBg := bgColor
		if i == m.topicIdx {
			rowBg = m.theme.SelectionBg
		}
		bg := NewBgStyle(rowBg)

		titleStyle := m.theme.Styles().Text
		countStyle := m.theme.Styles().MutedText
		if i == m.topicIdx {
			titleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.SelectionText)).Bold(true)
			countStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.SelectionText))
		}

		count := fmt.Sprintf("%d/%d", st.Completed, st.Total)
		title := truncate(displayTitle(topic.Title, topic.ID), max(width-len(count)-2, 4))
		gap := max(width-lipgloss.Width(title)-len(count)-1, 1)
		lines = append(lines, bg.FillLine(
			bg.Spaces(1)+bg.Render(title, titleStyle)+bg.Spaces(gap)+bg.Render(count, countStyle), width))

		pct := fmt.Sprintf("%3d%%", st.Percentage)
		lines = append(lines, bg.FillLine(
			bg.Spaces(1)+bar.ViewAs(float64(st.Percentage)/100)+bg.Spaces(2)+bg.Render(pct, countStyle), width))
	}
	return strings.Join(lines, "\n")
}

// Problems

// renderProblemList renders the problems of the selected topic.
func (m Model) renderProblemList(width, height int, bgColor string) string {
	topic, ok := m.selectedTopic()
	if !ok || len(topic.Problems) == 0 {
		bg := NewBgStyle(bgColor)
		return bg.FillLine(bg.Spaces(1)+bg.Render("No problems in this topic", m.theme.Styles().MutedText), width)
	}

	start, end := visibleRange(m.problemIdx, len(topic.Problems), max(height, 1))
	lines := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		selected := i == m.problemIdx
		rowBg := bgColor
		if selected {
			rowBg = m.theme.SelectionBg
		}
		lines = append(lines, NewBgStyle(rowBg).FillLine(m.formatProblemRow(topic.Problems[i], width, rowBg, selected), width))
	}
	return strings.Join(lines, "\n")
}

// formatProblemRow formats one problem: "✓ Title  Medium  tag, tag".
func (m Model) formatProblemRow(p sheet.Problem, width int, bgColor string, selected bool) string {
	bg := NewBgStyle(bgColor)
	styles := m.theme.Styles()

	var markPart string
	switch {
	case m.isBusy(p.ID):
		markPart = bg.Render(m.spinner.View(), styles.WarningText)
	case m.isCompleted(p.ID):
		markPart = bg.Render("✓", styles.SuccessText)
	default:
		markPart = bg.Render("·", styles.FaintText)
	}

	difficulty := fmt.Sprintf("%-6s", p.Difficulty.String())
	tags := strings.Join(p.Tags, ", ")
	titleWidth := max(width-len(difficulty)-6, 8)
	if tags != "" {
		titleWidth = max(titleWidth*2/3, 8)
	}
	tagWidth := max(width-titleWidth-len(difficulty)-7, 0)

	titleStyle := styles.Text
	tagStyle := styles.FaintText
	diffStyle := styles.Difficulty(p.Difficulty)
	if selected {
		sel := lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.SelectionText))
		titleStyle = sel.Bold(true)
		tagStyle = sel
	}

	title := truncate(displayTitle(p.Title, p.ID), titleWidth)
	row := bg.Spaces(1) + markPart + bg.Space() +
		bg.Render(title, titleStyle) + bg.Spaces(titleWidth-lipgloss.Width(title)+1) +
		bg.Render(difficulty, diffStyle)
	if tags != "" && tagWidth > 3 {
		row += bg.Spaces(2) + bg.Render(truncate(tags, tagWidth), tagStyle)
	}
	return row
}

// renderTitledBox renders content in a box with the title embedded in the
// top border: ┌─── Title ───┐. Focused boxes use the focus border and
// background.
func (m Model) renderTitledBox(title, content string, width, height int, focused bool) string {
	borderColorStr, bgColorStr := m.theme.Border, m.theme.SurfaceAlt
	if focused {
		borderColorStr, bgColorStr = m.theme.BorderFocus, m.theme.FocusBg
	}
	bg := NewBgStyle(bgColorStr)
	borderStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(borderColorStr))
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(m.theme.Text))

	innerWidth := max(width-2, 0)
	title = truncate(title, max(innerWidth-4, 0))
	titleLen := lipgloss.Width(title)
	leftPad := max((innerWidth-titleLen-2)/2, 0)
	rightPad := max(innerWidth-titleLen-2-leftPad, 0)

	topBorder := bg.Render("┌", borderStyle) +
		bg.Render(strings.Repeat("─", leftPad), borderStyle) +
		bg.Render(" "+title+" ", titleStyle) +
		bg.Render(strings.Repeat("─", rightPad), borderStyle) +
		bg.Render("┐", borderStyle)

	bottomBorder := bg.Render("└", borderStyle) +
		bg.Render(strings.Repeat("─", innerWidth), borderStyle) +
		bg.Render("┘", borderStyle)

	contentLines := strings.Split(content, "\n")
	boxHeight := max(height-2, 0)

	rows := make([]string, 0, boxHeight)
	for i := 0; i < boxHeight; i++ {
		var line string
		if i < len(contentLines) {
			line = contentLines[i]
		}
		rows = append(rows,
			bg.Render("│", borderStyle)+bg.FillLine(line, innerWidth)+bg.Render("│", borderStyle))
	}

	return topBorder + "\n" + strings.Join(rows, "\n") + "\n" + bottomBorder
}
