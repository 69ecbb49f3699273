package titan

import "strings"

// StreamSession is one outstanding request/response exchange. The buffer is
// append-only and holds all text the server has emitted so far. A session is
// owned by the goroutine that ingests into it.
type StreamSession struct {
	buf     strings.Builder
	aborted bool
	done    bool
}

// NewStreamSession returns an empty session.
func NewStreamSession() *StreamSession {
	return &StreamSession{}
}

// Text returns the buffer contents.
func (s *StreamSession) Text() string { return s.buf.String() }

// Done reports whether the transport signalled end of stream.
func (s *StreamSession) Done() bool { return s.done }

// Aborted reports whether the consumer cancelled the session.
func (s *StreamSession) Aborted() bool { return s.aborted }

// Split classifies the current buffer.
func (s *StreamSession) Split(m Markers) SplitResult {
	return Split(s.buf.String(), m)
}

func (s *StreamSession) append(delta string) {
	s.buf.WriteString(delta)
}
