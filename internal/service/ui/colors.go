package ui

import "github.com/charmbracelet/lipgloss"

// ANSI colors only, so help output reads on light and dark terminals.
var (
	TitleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("6")).Bold(true).MarginBottom(1)
	UsageStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	DescStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	FlagStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))

	OKStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Bold(true)
	PathStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("4")).Underline(true)
)
