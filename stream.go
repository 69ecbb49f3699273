package titan

import "context"

// StreamState indicates the current state of a Stream.
type StreamState int

const (
	StreamStateNew       StreamState = iota // Before Next() is ever called.
	StreamStateStreaming                    // Mid-stream, receiving records.
	StreamStateComplete                     // Next() returned io.EOF.
	StreamStateError                        // Next() returned a non-EOF error.
	StreamStateClosed                       // Cancelled or Close() called before a terminal state.
)

func (s StreamState) String() string {
	switch s {
	case StreamStateNew:
		return "new"
	case StreamStateStreaming:
		return "streaming"
	case StreamStateComplete:
		return "complete"
	case StreamStateError:
		return "error"
	case StreamStateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Stream uses a pull-based iterator pattern over the records of one
// response. Cancellation flows through the context passed to
// ChatClient.Stream().
//
// Next returns io.EOF when the server ends the response normally. Once the
// context is cancelled Next returns an error wrapping context.Canceled and
// State reports StreamStateClosed. Close releases the response body and is
// safe to call more than once.
type Stream interface {
	Next() (Event, error)
	State() StreamState
	Close() error
}

// ChatRequest is one user message sent to the chat endpoint.
type ChatRequest struct {
	Message          string
	ReasoningEnabled bool
}

// ChatClient starts streamed replies. Implementations return an *APIError
// for non-success statuses and ErrNoResponseBody when there is nothing to
// stream.
type ChatClient interface {
	Stream(ctx context.Context, req ChatRequest) (Stream, error)
}

// SessionStarter is implemented by clients that must open a server session
// before the first message.
type SessionStarter interface {
	NewSession(ctx context.Context) (string, error)
}

// RequestCanceler is implemented by clients that can tell the server to stop
// generating for the current session.
type RequestCanceler interface {
	CancelRequest(ctx context.Context) error
}

// ThinkingModeSetter is implemented by clients that persist the reasoning
// toggle server-side.
type ThinkingModeSetter interface {
	SetThinkingMode(ctx context.Context, enabled bool) error
}

// HistoryClearer is implemented by clients that can drop the server-side
// conversation history.
type HistoryClearer interface {
	ClearHistory(ctx context.Context) error
}
