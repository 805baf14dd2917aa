package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

// renderStatusBar draws the bottom line. An alert replaces the left side
// until the next keypress.
func renderStatusBar(left, alert, hints string, width int) string {
	if alert != "" {
		left = alertStyle.Render(alert)
	}
	right := " " + hints + " "

	gap := width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 0 {
		gap = 0
	}

	bar := left + fmt.Sprintf("%*s", gap, "") + right

	return statusBarStyle.Width(width).Render(bar)
}
