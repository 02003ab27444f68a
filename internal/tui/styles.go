package tui

import "github.com/charmbracelet/lipgloss"

// Colors
var (
	ColorPrimary    = lipgloss.Color("39")
	ColorSecondary  = lipgloss.Color("170")
	ColorSuccess    = lipgloss.Color("42")
	ColorDanger     = lipgloss.Color("196")
	ColorMuted      = lipgloss.Color("241")
	ColorBorder     = lipgloss.Color("238")
	ColorChartLine1 = lipgloss.Color("39")
	ColorChartLine2 = lipgloss.Color("170")
)

// Base styles
var (
	AppStyle = lipgloss.NewStyle().Padding(1, 2)

	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPrimary)

	SubtitleStyle = lipgloss.NewStyle().
			Foreground(ColorMuted)

	BorderStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder).
			Padding(0, 1)

	SelectedItemStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(ColorSecondary)

	UnselectedItemStyle = lipgloss.NewStyle()

	MetricLabelStyle = lipgloss.NewStyle().
				Foreground(ColorMuted).
				Width(24)

	MetricValueStyle = lipgloss.NewStyle().
				Bold(true)

	PositiveStyle = lipgloss.NewStyle().Foreground(ColorSuccess)
	NegativeStyle = lipgloss.NewStyle().Foreground(ColorDanger)

	ErrorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorDanger)

	StatusBarStyle = lipgloss.NewStyle().
			Foreground(ColorMuted)

	HelpKeyStyle  = lipgloss.NewStyle().Bold(true).Foreground(ColorPrimary)
	HelpDescStyle = lipgloss.NewStyle().Foreground(ColorMuted)
)
