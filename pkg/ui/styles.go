package ui

import "github.com/charmbracelet/lipgloss"

var (
	colorAccent  = lipgloss.Color("#3b82f6")
	colorSuccess = lipgloss.Color("#10b981")
	colorDanger  = lipgloss.Color("#ef4444")
	colorDim     = lipgloss.Color("#71717a")
	colorFg      = lipgloss.Color("#e4e4e7")
	colorBorder  = lipgloss.Color("#3f3f46")
	colorSelBg   = lipgloss.Color("#27272a")

	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	subtitleStyle = lipgloss.NewStyle().Foreground(colorDim)
	headerStyle   = lipgloss.NewStyle().Bold(true).Foreground(colorFg).Underline(true)
	successStyle  = lipgloss.NewStyle().Foreground(colorSuccess)
	dangerStyle   = lipgloss.NewStyle().Foreground(colorDanger)
	dimStyle      = lipgloss.NewStyle().Foreground(colorDim)
	selectedStyle = lipgloss.NewStyle().Background(colorSelBg).Bold(true)
	labelStyle    = lipgloss.NewStyle().Bold(true).Foreground(colorFg)

	panelStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder).
			Padding(0, 1)

	drawerStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.ThickBorder()).
			BorderForeground(colorAccent).
			Padding(1, 2)

	modalStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.DoubleBorder()).
			BorderForeground(colorAccent).
			Padding(1, 3)

	noticeStyle = lipgloss.NewStyle().
			Foreground(colorDanger).
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(colorDanger).
			Padding(0, 1)
)

// pnlStyle picks the success/danger color the way the web client toggles
// text-success / text-danger classes.
func pnlStyle(positive bool) lipgloss.Style {
	if positive {
		return successStyle
	}
	return dangerStyle
}
