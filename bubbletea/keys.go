package bubbletea

import (
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
)

var _ help.KeyMap = KeyMap{}

// KeyMap holds the TUI's key bindings.
type KeyMap struct {
	Send      key.Binding
	Cancel    key.Binding
	Quit      key.Binding
	Reasoning key.Binding
	NewChat   key.Binding
	Sidebar   key.Binding
	Copy      key.Binding
	Like      key.Binding
	Dislike   key.Binding
	Toggle    key.Binding
	FocusPrev key.Binding
}

// DefaultKeyMap returns the standard bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Send:      key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "send")),
		Cancel:    key.NewBinding(key.WithKeys("esc", "ctrl+c"), key.WithHelp("esc", "stop")),
		Quit:      key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
		Reasoning: key.NewBinding(key.WithKeys("ctrl+t"), key.WithHelp("ctrl+t", "reasoning")),
		NewChat:   key.NewBinding(key.WithKeys("ctrl+n"), key.WithHelp("ctrl+n", "new chat")),
		Sidebar:   key.NewBinding(key.WithKeys("ctrl+b"), key.WithHelp("ctrl+b", "recent")),
		Copy:      key.NewBinding(key.WithKeys("ctrl+y"), key.WithHelp("ctrl+y", "copy")),
		Like:      key.NewBinding(key.WithKeys("ctrl+u"), key.WithHelp("ctrl+u", "like")),
		Dislike:   key.NewBinding(key.WithKeys("ctrl+d"), key.WithHelp("ctrl+d", "dislike")),
		Toggle:    key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "thinking")),
		FocusPrev: key.NewBinding(key.WithKeys("shift+tab")),
	}
}

// ShortHelp implements help.KeyMap.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Send, k.Reasoning, k.NewChat, k.Copy, k.Sidebar, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Send, k.Cancel, k.Quit},
		{k.Reasoning, k.NewChat, k.Sidebar},
		{k.Copy, k.Like, k.Dislike, k.Toggle},
	}
}
