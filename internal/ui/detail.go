package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/five82/ladder/internal/sheet"
)

// updateDetailViewport resizes the detail viewport and refreshes its content
// for the selected problem. Switching problems scrolls back to the top.
func (m *Model) updateDetailViewport() {
	if !m.ready {
		return
	}
	m.detailViewport.Width = max(m.width-m.topicsWidth()-4, 1)
	m.detailViewport.Height = max(m.contentHeight()-m.problemsHeight()-2, 1)
	m.detailViewport.Style = lipgloss.NewStyle().Background(lipgloss.Color(m.paneBg(paneDetail)))

	problem, ok := m.selectedProblem()
	if !ok {
		m.detailFor = ""
		m.detailViewport.SetContent(m.theme.Styles().MutedText.Render("Select a problem"))
		return
	}

	m.detailViewport.SetContent(m.renderDetailContent(problem, m.detailViewport.Width))
	if m.detailFor != problem.ID {
		m.detailFor = problem.ID
		m.detailViewport.GotoTop()
	}
}

// renderDetailContent renders the detail pane body for a problem.
func (m Model) renderDetailContent(p sheet.Problem, width int) string {
	styles := m.theme.Styles()
	var b strings.Builder

	b.WriteString(styles.Text.Bold(true).Render(displayTitle(p.Title, p.ID)))
	b.WriteString("\n")

	status := styles.MutedText.Render("Unsolved")
	if m.isCompleted(p.ID) {
		status = styles.SuccessText.Render("Solved")
	}
	if m.isBusy(p.ID) {
		status += " " + styles.WarningText.Render("saving "+m.spinner.View())
	}
	b.WriteString(styles.DifficultyBadge(p.Difficulty).Render(p.Difficulty.String()))
	b.WriteString("  ")
	b.WriteString(status)
	b.WriteString("\n")

	if len(p.Tags) > 0 {
		b.WriteString(styles.FaintText.Render("Tags  "))
		b.WriteString(styles.AccentText.Render(strings.Join(p.Tags, ", ")))
		b.WriteString("\n")
	}

	if desc := strings.TrimSpace(p.Description); desc != "" {
		b.WriteString("\n")
		b.WriteString(styles.Text.Width(max(width, 10)).Render(desc))
		b.WriteString("\n")
	}

	if links := p.Links.Named(); len(links) > 0 {
		b.WriteString("\n")
		b.WriteString(styles.AccentText.Bold(true).Render("Links"))
		b.WriteString("\n")
		for _, link := range links {
			b.WriteString(styles.MutedText.Width(10).Render(link.Name))
			b.WriteString(styles.InfoText.Render(truncateMiddle(link.URL, max(width-10, 10))))
			b.WriteString("\n")
		}
	}

	if m.session.Controller != nil {
		if rec, ok := m.session.Controller.Store().Lookup(p.ID); ok {
			b.WriteString("\n")
			b.WriteString(styles.FaintText.Render("Record " + rec.ID.String()))
		}
	}

	return strings.TrimRight(b.String(), "\n")
}
