package titan

// Event is a sealed interface representing one decoded record of a
// streamed reply. Events are purely semantic. Transport errors come from
// Next()'s error return, not from events.
// The unexported marker method prevents external implementations.
type Event interface {
	event()
}

// EventContent carries a text fragment to append to the reply buffer.
type EventContent struct {
	Delta string
}

func (EventContent) event() {}

// EventThinkingDone carries the complete reasoning text once the server has
// seen the closing marker.
type EventThinkingDone struct {
	Thinking string
}

func (EventThinkingDone) event() {}

// EventServerError is an error the server reported inside the stream.
type EventServerError struct {
	Message        string
	ActionRequired string
}

func (EventServerError) event() {}

// EventLimitInfo reports the caller's remaining message budget.
type EventLimitInfo struct {
	Used         int
	Limit        int
	Remaining    int
	LimitReached bool
}

func (EventLimitInfo) event() {}

// EventDone is the server's end-of-reply summary. The stream may still carry
// records after it; only end of body completes the stream.
type EventDone struct {
	FinalContent string
	Thinking     string
}

func (EventDone) event() {}

// Interface compliance checks.
var (
	_ Event = EventContent{}
	_ Event = EventThinkingDone{}
	_ Event = EventServerError{}
	_ Event = EventLimitInfo{}
	_ Event = EventDone{}
)
