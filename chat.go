package titan

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// cancelNoticeTimeout bounds the best-effort backend cancel request.
const cancelNoticeTimeout = 5 * time.Second

// ChatOption configures a Chat.
type ChatOption func(*Chat)

// WithMarkers sets the reasoning markers used to split replies.
func WithMarkers(m Markers) ChatOption {
	return func(c *Chat) { c.markers = m }
}

// WithReasoning sets the initial reasoning mode.
func WithReasoning(enabled bool) ChatOption {
	return func(c *Chat) { c.reasoning = enabled }
}

// WithIDFunc sets the generator for conversation IDs.
func WithIDFunc(fn func() string) ChatOption {
	return func(c *Chat) { c.newID = fn }
}

// WithRecentLimit sets how many conversations the recents list keeps.
func WithRecentLimit(n int) ChatOption {
	return func(c *Chat) { c.recents = NewRecentChats(n) }
}

// Chat owns the state of one chat surface: the reasoning mode, the server
// session, the current conversation, and the single in-flight exchange.
// Starting a new exchange cancels the active one and waits for it to end.
type Chat struct {
	client  ChatClient
	markers Markers
	newID   func() string
	recents *RecentChats

	// sendMu serializes Send so exchanges start in call order.
	sendMu sync.Mutex

	mu        sync.Mutex
	reasoning bool
	sessionID string
	convID    string
	titled    bool
	active    *exchange
}

type exchange struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// NewChat returns a Chat that streams replies through client.
func NewChat(client ChatClient, opts ...ChatOption) *Chat {
	c := &Chat{
		client:  client,
		markers: DefaultMarkers,
		recents: NewRecentChats(DefaultRecentLimit),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.newID == nil {
		c.newID = sequentialIDs()
	}
	c.convID = c.newID()
	return c
}

func sequentialIDs() func() string {
	var n atomic.Int64
	return func() string {
		return "chat-" + strconv.FormatInt(n.Add(1), 10)
	}
}

// Markers returns the reasoning markers in use.
func (c *Chat) Markers() Markers { return c.markers }

// Send streams the reply to text, reporting progress through h. It blocks
// until the exchange completes, is cancelled, or fails. Validation failures
// return ErrValidation without touching h or the active exchange.
func (c *Chat) Send(ctx context.Context, text string, h Handler) (*StreamSession, error) {
	if err := ValidateMessage(text); err != nil {
		return nil, err
	}

	c.sendMu.Lock()
	ctx, ex := c.begin(ctx)
	c.sendMu.Unlock()
	defer c.end(ex)

	sess := NewStreamSession()

	if err := c.ensureSession(ctx); err != nil {
		return sess, c.failEarly(ctx, sess, h, err)
	}

	c.mu.Lock()
	reasoning := c.reasoning
	if !c.titled {
		c.titled = true
		c.recents.Add(c.convID, titleFrom(text))
	}
	c.mu.Unlock()

	stream, err := c.client.Stream(ctx, ChatRequest{
		Message:          DecorateMessage(text, reasoning),
		ReasoningEnabled: reasoning,
	})
	if err != nil {
		if errors.Is(err, ErrSessionRequired) {
			// Start over with a fresh session on the next send.
			c.mu.Lock()
			c.sessionID = ""
			c.mu.Unlock()
		}
		return sess, c.failEarly(ctx, sess, h, err)
	}
	return sess, Ingest(ctx, stream, sess, c.markers, h)
}

func (c *Chat) failEarly(ctx context.Context, sess *StreamSession, h Handler, err error) error {
	if ctx.Err() != nil || IsCancellation(err) {
		sess.aborted = true
		h.cancelled()
		return context.Canceled
	}
	h.transportError(err)
	return err
}

// begin installs a new exchange, cancelling and waiting out the previous one.
func (c *Chat) begin(parent context.Context) (context.Context, *exchange) {
	ctx, cancel := context.WithCancel(parent)
	ex := &exchange{cancel: cancel, done: make(chan struct{})}

	c.mu.Lock()
	prev := c.active
	c.active = ex
	c.mu.Unlock()

	if prev != nil {
		prev.cancel()
		<-prev.done
	}
	return ctx, ex
}

func (c *Chat) end(ex *exchange) {
	ex.cancel()
	c.mu.Lock()
	if c.active == ex {
		c.active = nil
	}
	c.mu.Unlock()
	close(ex.done)
}

func (c *Chat) ensureSession(ctx context.Context) error {
	starter, ok := c.client.(SessionStarter)
	if !ok {
		return nil
	}
	c.mu.Lock()
	known := c.sessionID != ""
	c.mu.Unlock()
	if known {
		return nil
	}
	id, err := starter.NewSession(ctx)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.sessionID = id
	c.mu.Unlock()
	return nil
}

// Cancel stops the active exchange and tells the server to stop generating.
// It returns false when nothing is in flight.
func (c *Chat) Cancel() bool {
	c.mu.Lock()
	ex := c.active
	c.mu.Unlock()
	if ex == nil {
		return false
	}
	ex.cancel()
	if _, ok := c.client.(RequestCanceler); ok {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), cancelNoticeTimeout)
			defer cancel()
			_ = c.NotifyCancel(ctx)
		}()
	}
	return true
}

// NotifyCancel tells the server that the current request was abandoned.
// Cancel sends it in the background; callers that cancel through the context
// passed to Send and are about to exit send it themselves. It is a no-op for
// clients without a cancel endpoint.
func (c *Chat) NotifyCancel(ctx context.Context) error {
	rc, ok := c.client.(RequestCanceler)
	if !ok {
		return nil
	}
	return rc.CancelRequest(ctx)
}

// Active reports whether an exchange is in flight.
func (c *Chat) Active() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active != nil
}

// Reasoning reports whether reasoning mode is on.
func (c *Chat) Reasoning() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.reasoning
}

// SetReasoning changes the reasoning mode. The mode is applied locally even
// when the server rejects it; the server error is returned for reporting.
func (c *Chat) SetReasoning(ctx context.Context, enabled bool) error {
	c.mu.Lock()
	c.reasoning = enabled
	c.mu.Unlock()
	if s, ok := c.client.(ThinkingModeSetter); ok {
		return s.SetThinkingMode(ctx, enabled)
	}
	return nil
}

// ToggleReasoning flips the reasoning mode and returns the new value.
func (c *Chat) ToggleReasoning(ctx context.Context) (bool, error) {
	enabled := !c.Reasoning()
	return enabled, c.SetReasoning(ctx, enabled)
}

// SessionID returns the server session ID, empty until the first send.
func (c *Chat) SessionID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sessionID
}

// ConversationID returns the ID of the current conversation.
func (c *Chat) ConversationID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.convID
}

// NewConversation cancels any active exchange, starts a fresh conversation,
// and clears the server-side history when the client supports it.
func (c *Chat) NewConversation(ctx context.Context) error {
	c.sendMu.Lock()
	_, ex := c.begin(ctx)
	c.sendMu.Unlock()
	c.end(ex)

	c.mu.Lock()
	c.convID = c.newID()
	c.titled = false
	c.mu.Unlock()

	if hc, ok := c.client.(HistoryClearer); ok {
		return hc.ClearHistory(ctx)
	}
	return nil
}

// Recent returns recent conversations, most recent first.
func (c *Chat) Recent() []RecentChat { return c.recents.List() }

// Vote rates an answer. It returns errors.ErrUnsupported when the client
// cannot submit votes.
func (c *Chat) Vote(ctx context.Context, r Rating, content string) error {
	v, ok := c.client.(VoteSubmitter)
	if !ok {
		return errors.ErrUnsupported
	}
	return v.SubmitVote(ctx, Vote{
		Rating:    r,
		Content:   content,
		SessionID: c.SessionID(),
		Timestamp: time.Now(),
	})
}

// titleLength is how many characters of the first message name a conversation.
const titleLength = 50

func titleFrom(text string) string {
	r := []rune(strings.Join(strings.Fields(text), " "))
	if len(r) <= titleLength {
		return string(r)
	}
	return string(r[:titleLength-1]) + "…"
}
