package bubbletea

import (
	"strings"

	"github.com/fwojciec/titan"
	"github.com/mattn/go-runewidth"
)

// SidebarWidth is the width of the recent-conversations panel, border
// included.
const SidebarWidth = 28

// sidebarView lists recent conversations, newest first, with the current
// one highlighted.
func sidebarView(recent []titan.RecentChat, current string, height int, styles *Styles) string {
	text := SidebarWidth - styles.Sidebar.GetHorizontalFrameSize()
	lines := []string{styles.Accent.Render("Recent"), ""}
	if len(recent) == 0 {
		lines = append(lines, styles.Muted.Render("No conversations yet"))
	}
	for _, c := range recent {
		title := runewidth.Truncate(c.Title, text-2, "…")
		if c.ID == current {
			lines = append(lines, styles.Selected.Render("› "+title))
			continue
		}
		lines = append(lines, "  "+title)
	}
	body := strings.Join(lines, "\n")
	return styles.Sidebar.Width(SidebarWidth - styles.Sidebar.GetHorizontalBorderSize()).Height(height).MaxHeight(height).Render(body)
}
