package bubbletea

import "github.com/charmbracelet/lipgloss"

const banner = `▀█▀ █ ▀█▀ ▄▀█ █▄ █
 █  █  █  █▀█ █ ▀█`

var suggestions = []string{
	"Explain how TCP congestion control works",
	"Write a Go function that reverses a linked list",
	"Summarize the trade-offs of event sourcing",
}

// welcomeView is shown in place of the conversation until the first message.
func welcomeView(width, height int, styles *Styles, reasoning bool) string {
	mode := "Reasoning off"
	if reasoning {
		mode = "Reasoning on"
	}
	lines := []string{
		styles.Accent.Render(banner),
		"",
		"How can I help you today?",
		styles.Muted.Render(mode + " · Ctrl+T to toggle"),
		"",
	}
	for _, s := range suggestions {
		lines = append(lines, styles.Muted.Render("• "+s))
	}
	content := lipgloss.JoinVertical(lipgloss.Center, lines...)
	if width <= 0 || height <= 0 {
		return content
	}
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, content)
}
