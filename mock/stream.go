package mock

import (
	"io"
	"sync"

	"github.com/fwojciec/titan"
)

// Interface compliance check.
var _ titan.Stream = (*Stream)(nil)

// Stream is a test double for titan.Stream.
// NextFn panics when nil to catch missing setup. CloseFn and StateFn are
// nil-safe (no-op and zero value) because callers always close streams and
// the state rarely needs custom behavior.
type Stream struct {
	NextFn  func() (titan.Event, error)
	StateFn func() titan.StreamState
	CloseFn func() error
}

// Next delegates to NextFn.
func (s *Stream) Next() (titan.Event, error) {
	return s.NextFn()
}

// State delegates to StateFn. Returns StreamStateNew when StateFn is nil.
func (s *Stream) State() titan.StreamState {
	if s.StateFn == nil {
		return titan.StreamStateNew
	}
	return s.StateFn()
}

// Close delegates to CloseFn. Returns nil when CloseFn is not set.
func (s *Stream) Close() error {
	if s.CloseFn == nil {
		return nil
	}
	return s.CloseFn()
}

// Events returns a Stream that yields events in order, then io.EOF.
func Events(events ...titan.Event) *Stream {
	var (
		mu    sync.Mutex
		i     int
		state = titan.StreamStateNew
	)
	return &Stream{
		NextFn: func() (titan.Event, error) {
			mu.Lock()
			defer mu.Unlock()
			if i >= len(events) {
				state = titan.StreamStateComplete
				return nil, io.EOF
			}
			state = titan.StreamStateStreaming
			e := events[i]
			i++
			return e, nil
		},
		StateFn: func() titan.StreamState {
			mu.Lock()
			defer mu.Unlock()
			return state
		},
	}
}

// Content returns a Stream that yields one EventContent per delta, then io.EOF.
func Content(deltas ...string) *Stream {
	events := make([]titan.Event, len(deltas))
	for i, d := range deltas {
		events[i] = titan.EventContent{Delta: d}
	}
	return Events(events...)
}
