package tui

import "github.com/charmbracelet/lipgloss"

// Styles 界面各部分的样式
type Styles struct {
	Title   lipgloss.Style
	Dir     lipgloss.Style
	File    lipgloss.Style
	Failed  lipgloss.Style
	Focused lipgloss.Style
	Status  lipgloss.Style
}

// DefaultStyles 返回默认样式
func DefaultStyles() Styles {
	return Styles{
		Title:   lipgloss.NewStyle().Bold(true).Padding(0, 1),
		Dir:     lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true),
		File:    lipgloss.NewStyle(),
		Failed:  lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
		Focused: lipgloss.NewStyle().Reverse(true),
		Status:  lipgloss.NewStyle().Faint(true),
	}
}
