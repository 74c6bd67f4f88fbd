package tui

import "github.com/charmbracelet/lipgloss"

var (
	ColorPrimary = lipgloss.Color("205")
	ColorSubtle  = lipgloss.Color("241")

	StyleHeader  = lipgloss.NewStyle().Foreground(ColorPrimary).Bold(true)
	StyleSubtle  = lipgloss.NewStyle().Foreground(ColorSubtle)
	StylePrimary = lipgloss.NewStyle().Foreground(ColorPrimary)
)
