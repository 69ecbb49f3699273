package bubbletea

import "github.com/fwojciec/titan"

// RenderContent exports renderContent for testing.
func RenderContent(m Model) string {
	return m.renderContent()
}

// Blocks returns the model's conversation blocks.
func Blocks(m Model) []MessageBlock {
	return m.blocks
}

// Flash returns the transient status message.
func Flash(m Model) string {
	return m.flash
}

// SidebarOpen reports whether the recent-conversations panel is shown.
func SidebarOpen(m Model) bool {
	return m.sidebar
}

// CurrentTheme returns the theme the model renders with.
func CurrentTheme(m Model) titan.Theme {
	return m.styles.Theme
}
