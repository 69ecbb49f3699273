package titan

import (
	"context"
	"io"
	"iter"
)

// Handler receives the outcome of one exchange. All fields are optional.
// Exactly one of OnDone, OnCancelled, or OnTransportError is called per
// exchange, after every OnChunk for that exchange.
type Handler struct {
	// OnChunk is called synchronously after every fold into the buffer.
	OnChunk func(SplitResult)
	// OnEvent receives records that do not carry reply text.
	OnEvent func(Event)
	// OnDone receives the final buffer when the stream ends normally.
	OnDone func(text string)
	// OnCancelled is called when the exchange is cancelled before completion.
	OnCancelled func()
	// OnTransportError receives any failure that is not a cancellation.
	OnTransportError func(error)
}

func (h Handler) chunk(r SplitResult) {
	if h.OnChunk != nil {
		h.OnChunk(r)
	}
}

func (h Handler) event(e Event) {
	if h.OnEvent != nil {
		h.OnEvent(e)
	}
}

func (h Handler) done(text string) {
	if h.OnDone != nil {
		h.OnDone(text)
	}
}

func (h Handler) cancelled() {
	if h.OnCancelled != nil {
		h.OnCancelled()
	}
}

func (h Handler) transportError(err error) {
	if h.OnTransportError != nil {
		h.OnTransportError(err)
	}
}

// Ingest drains s into sess, notifying h after every content fold. It
// returns nil when the stream ends normally, the context error when
// cancelled, and the transport error otherwise. The stream is always closed.
func Ingest(ctx context.Context, s Stream, sess *StreamSession, m Markers, h Handler) error {
	defer s.Close()

	for {
		if err := ctx.Err(); err != nil {
			return abort(s, sess, h, err)
		}

		evt, err := s.Next()
		if err == io.EOF {
			sess.done = true
			h.done(sess.Text())
			return nil
		}
		if err != nil {
			if ctx.Err() != nil || IsCancellation(err) {
				return abort(s, sess, h, err)
			}
			h.transportError(err)
			return err
		}

		switch e := evt.(type) {
		case EventContent:
			if e.Delta == "" {
				continue
			}
			sess.append(e.Delta)
			// A fold that races a cancellation is kept in the buffer but
			// never rendered; the loop head reports the cancellation.
			if ctx.Err() == nil {
				h.chunk(sess.Split(m))
			}
		default:
			h.event(evt)
		}
	}
}

func abort(s Stream, sess *StreamSession, h Handler, err error) error {
	s.Close()
	sess.aborted = true
	h.cancelled()
	if !IsCancellation(err) {
		return context.Canceled
	}
	return err
}

// Splits is the pull-based form of Ingest: it yields the classification of
// the buffer after every content fold. The sequence ends after the last
// fold when the stream completes, or yields a final pair carrying the
// terminal error. The stream is closed when iteration stops.
func Splits(ctx context.Context, s Stream, m Markers) iter.Seq2[SplitResult, error] {
	return func(yield func(SplitResult, error) bool) {
		defer s.Close()
		sess := NewStreamSession()
		for {
			if err := ctx.Err(); err != nil {
				yield(sess.Split(m), err)
				return
			}
			evt, err := s.Next()
			if err == io.EOF {
				return
			}
			if err != nil {
				yield(sess.Split(m), err)
				return
			}
			c, ok := evt.(EventContent)
			if !ok || c.Delta == "" {
				continue
			}
			sess.append(c.Delta)
			if !yield(sess.Split(m), nil) {
				return
			}
		}
	}
}
