package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/kaanzapkinus/assetstracker/internal/domain"
	"github.com/kaanzapkinus/assetstracker/internal/render"
)

const defaultWidth = 100

var (
	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(render.MutedColor).
			Padding(0, 1)

	activeTabStyle   = lipgloss.NewStyle().Foreground(render.AccentColor).Bold(true).Underline(true)
	inactiveTabStyle = lipgloss.NewStyle().Foreground(render.MutedColor)
	focusedPrompt    = lipgloss.NewStyle().Foreground(render.AccentColor)
)

// View renders the dashboard
func (m *Model) View() string {
	width := m.width
	if width <= 0 {
		width = defaultWidth
	}

	sections := []string{
		render.TitleStyle.Render("Assets Tracker") + "  " + render.MutedStyle.Render(render.LastUpdated(m.view.LastUpdated)),
		panelStyle.Render(render.Metrics(m.view.Totals)),
		m.positionsView(),
		panelStyle.Render(render.PnLBars(m.view.Positions, width/2)),
		m.insightView(width),
	}
	if m.mode == modeForm {
		sections = append(sections, m.formView())
	}
	sections = append(sections, m.statusView(), m.helpView())

	return strings.Join(sections, "\n")
}

func (m *Model) positionsView() string {
	if len(m.view.Positions) == 0 {
		out := render.MutedStyle.Render(render.EmptyPositionsMessage)
		if len(m.view.Pending) > 0 {
			out += "\n" + m.pendingView()
		}
		return out
	}

	out := m.table.View()
	if len(m.view.Pending) > 0 {
		out += "\n" + m.pendingView()
	}
	return out
}

func (m *Model) pendingView() string {
	return render.MutedStyle.Render("Waiting for quotes: " + strings.Join(m.view.Pending, ", "))
}

func (m *Model) insightView(width int) string {
	tabs := make([]string, 0, len(domain.InsightViews))
	for _, v := range domain.InsightViews {
		label := strings.ToUpper(string(v[:1])) + string(v[1:])
		if v == m.insight {
			tabs = append(tabs, activeTabStyle.Render(label))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(label))
		}
	}
	header := strings.Join(tabs, "  ")

	var body string
	switch m.insight {
	case domain.InsightTimeline:
		header += "   " + render.MutedStyle.Render("["+string(m.timeframe)+"]")
		body = render.Timeline(m.view.Timeline)
	case domain.InsightAllocation:
		body = render.Allocation(m.view.Allocation, m.view.AllocationPlaceholder, width/2)
	default:
		body = render.TrendingTable(m.view.Trending, m.view.TrendingPlaceholder)
	}

	return panelStyle.Render(header + "\n\n" + body)
}

func (m *Model) formView() string {
	lines := make([]string, 0, len(m.inputs)+2)
	lines = append(lines, render.HeaderStyle.Render("Add asset"))
	for i := range m.inputs {
		line := m.inputs[i].View()
		if i == m.focus {
			line = focusedPrompt.Render("›") + " " + line
		} else {
			line = "  " + line
		}
		lines = append(lines, line)
	}

	if suggestions := m.suggestions(); suggestions != "" {
		lines = append(lines, render.MutedStyle.Render(suggestions))
	}
	return panelStyle.Render(strings.Join(lines, "\n"))
}

// suggestions lists library symbols matching the symbol field while it has focus
func (m *Model) suggestions() string {
	if m.focus != fieldSymbol {
		return ""
	}
	matches := domain.MatchSymbols(m.inputs[fieldSymbol].Value())
	parts := make([]string, 0, len(matches))
	for _, match := range matches {
		parts = append(parts, fmt.Sprintf("%s %s", match.Symbol, match.Name))
	}
	return strings.Join(parts, " · ")
}

func (m *Model) statusView() string {
	if m.status == "" {
		return ""
	}
	switch m.statusKind {
	case statusError:
		return render.LossStyle.Render(m.status)
	case statusSuccess:
		return render.GainStyle.Render(m.status)
	default:
		return render.MutedStyle.Render(m.status)
	}
}

func (m *Model) helpView() string {
	if m.mode == modeForm {
		return m.help.View(formKeyMap{m.keys})
	}
	return m.help.View(m.keys)
}
