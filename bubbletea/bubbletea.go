// Package bubbletea provides a Bubble Tea TUI for chatting with the Titan
// service.
package bubbletea

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fwojciec/titan"
)

// Conversation is the chat controller the TUI drives. *titan.Chat
// implements it.
type Conversation interface {
	Send(ctx context.Context, text string, h titan.Handler) (*titan.StreamSession, error)
	Cancel() bool
	Reasoning() bool
	ToggleReasoning(ctx context.Context) (bool, error)
	NewConversation(ctx context.Context) error
	ConversationID() string
	Recent() []titan.RecentChat
	Vote(ctx context.Context, r titan.Rating, content string) error
}

var _ Conversation = (*titan.Chat)(nil)

// Run creates and runs the Bubble Tea TUI program. It blocks until the program
// exits. When ctx is cancelled the program quits.
func Run(ctx context.Context, m Model) error {
	p := tea.NewProgram(m, tea.WithAltScreen())
	go func() {
		<-ctx.Done()
		p.Quit()
	}()
	_, err := p.Run()
	return err
}

// ChunkMsg carries the split of the reply buffer after a content chunk.
type ChunkMsg struct {
	Split titan.SplitResult
}

// ServerEventMsg wraps a non-content stream event.
type ServerEventMsg struct {
	Event titan.Event
}

// ExchangeDoneMsg signals that the active exchange has ended. Err is nil on
// completion and wraps context.Canceled after a cancellation.
type ExchangeDoneMsg struct {
	Err error
}

// StatusMsg delivers the user's plan and quota.
type StatusMsg struct {
	Status titan.UserStatus
	Err    error
}

// ReasoningMsg reports the reasoning mode after a toggle. The mode is applied
// locally even when Err reports that the server did not acknowledge it.
type ReasoningMsg struct {
	Enabled bool
	Err     error
}

// NewChatMsg reports that a fresh conversation has started.
type NewChatMsg struct {
	Err error
}

// VoteMsg reports the outcome of a like or dislike.
type VoteMsg struct {
	Rating titan.Rating
	Err    error
	reply  *ReplyBlock
}

type clearFlashMsg struct {
	id int
}
