package tui

import "github.com/charmbracelet/lipgloss"

const (
	cyan     = lipgloss.Color("#79c3ee")
	black    = lipgloss.Color("#101419")
	green    = lipgloss.Color("#78dba9")
	hotPink  = lipgloss.Color("#FF06B7")
	darkGray = lipgloss.Color("#767676")
	red      = lipgloss.Color("#e05f65")
)

var (
	selectedStyle = lipgloss.NewStyle().
			Background(cyan).
			Foreground(black)

	unSelectedStyle = lipgloss.NewStyle().UnsetBackground().UnsetForeground()
	inputStyle      = lipgloss.NewStyle().Foreground(cyan)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(hotPink).
			Padding(1, 2, 1, 2).
			Align(lipgloss.Left)

	blockStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			Padding(0, 1).
			Width(76)

	validBlockStyle   = blockStyle.BorderForeground(green)
	invalidBlockStyle = blockStyle.BorderForeground(red)

	hashStyle   = lipgloss.NewStyle().Foreground(darkGray)
	validStyle  = lipgloss.NewStyle().Foreground(green).Bold(true)
	statusStyle = lipgloss.NewStyle().Foreground(green)
	errorStyle  = lipgloss.NewStyle().Foreground(red).Bold(true)
	helpStyle   = lipgloss.NewStyle().Foreground(darkGray)
)
