package ui

import "github.com/charmbracelet/lipgloss"

var (
	colorCyan    = lipgloss.Color("#00D7FF")
	colorYellow  = lipgloss.Color("#FFD700")
	colorRed     = lipgloss.Color("#FF5F5F")
	colorGreen   = lipgloss.Color("#5FFF87")
	colorMagenta = lipgloss.Color("#D75FFF")
	colorDim     = lipgloss.Color("#808080")

	cyanStyle    = lipgloss.NewStyle().Foreground(colorCyan)
	yellowStyle  = lipgloss.NewStyle().Foreground(colorYellow)
	redStyle     = lipgloss.NewStyle().Foreground(colorRed)
	greenStyle   = lipgloss.NewStyle().Foreground(colorGreen)
	magentaStyle = lipgloss.NewStyle().Foreground(colorMagenta).Bold(true)
	dimStyle     = lipgloss.NewStyle().Foreground(colorDim)

	logoStyle = lipgloss.NewStyle().
			Foreground(colorCyan).
			Bold(true)

	summaryStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorMagenta).
			Padding(0, 1)
)

// Color functions for terminal output
func Cyan(s string) string    { return cyanStyle.Render(s) }
func Yellow(s string) string  { return yellowStyle.Render(s) }
func Red(s string) string     { return redStyle.Render(s) }
func Green(s string) string   { return greenStyle.Render(s) }
func Magenta(s string) string { return magentaStyle.Render(s) }
func Dim(s string) string     { return dimStyle.Render(s) }
