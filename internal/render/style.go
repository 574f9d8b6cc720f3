package render

import "github.com/charmbracelet/lipgloss"

var (
	GainColor   = lipgloss.Color("#4ade80")
	LossColor   = lipgloss.Color("#ff6b81")
	MutedColor  = lipgloss.Color("#6C7280")
	AccentColor = lipgloss.Color("#7df3c0")
	TextColor   = lipgloss.Color("#f4f6fb")
)

var (
	GainStyle   = lipgloss.NewStyle().Foreground(GainColor)
	LossStyle   = lipgloss.NewStyle().Foreground(LossColor)
	MutedStyle  = lipgloss.NewStyle().Foreground(MutedColor)
	HeaderStyle = lipgloss.NewStyle().Foreground(AccentColor).Bold(true)
	TitleStyle  = lipgloss.NewStyle().Foreground(TextColor).Bold(true)
	axisStyle   = lipgloss.NewStyle().Foreground(MutedColor)
)

// SignStyle picks the gain or loss colour; zero counts as a gain
func SignStyle(negative bool) lipgloss.Style {
	if negative {
		return LossStyle
	}
	return GainStyle
}
