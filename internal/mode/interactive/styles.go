// ABOUTME: Lipgloss style palette for the interactive UI
// ABOUTME: Built once; adaptive colors keep light and dark terminals readable

package interactive

import (
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// ThemeStyles is the full style palette used across the UI models.
type ThemeStyles struct {
	Dim       lipgloss.Style
	Bold      lipgloss.Style
	Info      lipgloss.Style
	Success   lipgloss.Style
	Warning   lipgloss.Style
	Error     lipgloss.Style
	Selection lipgloss.Style

	UserPrompt lipgloss.Style
	ToolName   lipgloss.Style
	Reasoning  lipgloss.Style

	FooterSession lipgloss.Style
	FooterState   lipgloss.Style
	FooterNotice  lipgloss.Style
}

var stylesOnce = sync.OnceValue(func() ThemeStyles {
	return ThemeStyles{
		Dim:       lipgloss.NewStyle().Faint(true),
		Bold:      lipgloss.NewStyle().Bold(true),
		Info:      lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "25", Dark: "39"}),
		Success:   lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "28", Dark: "40"}),
		Warning:   lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "130", Dark: "214"}),
		Error:     lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "124", Dark: "203"}),
		Selection: lipgloss.NewStyle().Reverse(true),

		UserPrompt: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.AdaptiveColor{Light: "25", Dark: "39"}),
		ToolName:   lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "90", Dark: "141"}),
		Reasoning:  lipgloss.NewStyle().Faint(true).Italic(true),

		FooterSession: lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "25", Dark: "39"}),
		FooterState:   lipgloss.NewStyle().Faint(true),
		FooterNotice:  lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "130", Dark: "214"}),
	}
})

// Styles returns the shared palette.
func Styles() ThemeStyles {
	return stylesOnce()
}
