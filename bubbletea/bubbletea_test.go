package bubbletea_test

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fwojciec/titan"
	bt "github.com/fwojciec/titan/bubbletea"
	"github.com/fwojciec/titan/mock"
	"github.com/stretchr/testify/require"
)

// contentChat returns a Chat whose every reply streams deltas.
func contentChat(deltas ...string) *titan.Chat {
	return titan.NewChat(&mock.ChatClient{
		StreamFn: func(ctx context.Context, req titan.ChatRequest) (titan.Stream, error) {
			return mock.Content(deltas...), nil
		},
	})
}

// initModel creates a model and sends a WindowSizeMsg to initialize the viewport.
func initModel(t *testing.T, chat bt.Conversation, opts ...bt.Option) bt.Model {
	t.Helper()
	return initModelWithSize(t, chat, 80, 24, opts...)
}

// initModelWithSize creates a model with a custom terminal size.
func initModelWithSize(t *testing.T, chat bt.Conversation, width, height int, opts ...bt.Option) bt.Model {
	t.Helper()
	m := bt.New(chat, opts...)
	updated, _ := m.Update(tea.WindowSizeMsg{Width: width, Height: height})
	model, ok := updated.(bt.Model)
	require.True(t, ok)
	return model
}

// updateModel sends a message and returns the updated Model.
func updateModel(t *testing.T, m bt.Model, msg tea.Msg) bt.Model {
	t.Helper()
	updated, _ := m.Update(msg)
	model, ok := updated.(bt.Model)
	require.True(t, ok)
	return model
}

// streamReply feeds a complete reply into a running model, chunk by chunk.
func streamReply(t *testing.T, m bt.Model, deltas ...string) bt.Model {
	t.Helper()
	m, _ = bt.SetRunning(m)
	var buf string
	for _, d := range deltas {
		buf += d
		m = updateModel(t, m, bt.ChunkMsg{Split: titan.Split(buf, titan.DefaultMarkers)})
	}
	return updateModel(t, m, bt.ExchangeDoneMsg{})
}
