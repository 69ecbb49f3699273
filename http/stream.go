package http

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/fwojciec/titan"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

const (
	dataPrefix = "data: "

	// maxRecordSize bounds a single record line. Long replies arrive as many
	// small records, but done records repeat the full reply. Longer lines
	// are skipped.
	maxRecordSize = 4 << 20
)

// stream implements [titan.Stream] by parsing "data: " records from an HTTP
// response body.
type stream struct {
	body    io.ReadCloser
	reader  *bufio.Reader
	ctx     context.Context
	logger  *log.Logger
	state   titan.StreamState
	err     error // terminal error, if any
	closed  bool
}

// Interface compliance check.
var _ titan.Stream = (*stream)(nil)

func newStream(ctx context.Context, body io.ReadCloser, logger *log.Logger) *stream {
	// The decoder drops a leading BOM, replaces invalid bytes with U+FFFD,
	// and holds back multi-byte sequences split across reads.
	decoded := transform.NewReader(body, unicode.UTF8BOM.NewDecoder())
	return &stream{
		body:    body,
		reader:  bufio.NewReaderSize(decoded, 64*1024),
		ctx:     ctx,
		logger:  logger,
		state:   titan.StreamStateNew,
	}
}

// Next reads the next semantic event from the record stream.
// Returns io.EOF when the body ends.
func (s *stream) Next() (titan.Event, error) {
	switch s.state {
	case titan.StreamStateComplete:
		return nil, io.EOF
	case titan.StreamStateError:
		return nil, s.err
	case titan.StreamStateClosed:
		if s.err != nil {
			return nil, s.err
		}
		return nil, fmt.Errorf("http: %w", titan.ErrStreamClosed)
	}

	for {
		if err := s.ctx.Err(); err != nil {
			s.terminate(err)
			return nil, s.err
		}

		data, err := s.readRecord()
		if err == io.EOF {
			s.state = titan.StreamStateComplete
			return nil, io.EOF
		}
		if err != nil {
			s.terminate(err)
			return nil, s.err
		}

		s.state = titan.StreamStateStreaming

		if evt := s.processRecord(data); evt != nil {
			return evt, nil
		}
		// Malformed, empty, or unknown record - keep reading.
	}
}

// State returns the current stream state.
func (s *stream) State() titan.StreamState {
	return s.state
}

// Close releases the response body. Closing before a terminal state marks
// the stream closed.
func (s *stream) Close() error {
	if s.state != titan.StreamStateComplete && s.state != titan.StreamStateError {
		s.state = titan.StreamStateClosed
	}
	if s.closed {
		return nil
	}
	s.closed = true
	return s.body.Close()
}

// terminate records a terminal error. Failures caused by a cancelled context
// leave the stream closed rather than errored.
func (s *stream) terminate(err error) {
	if ctxErr := s.ctx.Err(); ctxErr != nil {
		s.state = titan.StreamStateClosed
		s.err = fmt.Errorf("http: %w", ctxErr)
		return
	}
	s.state = titan.StreamStateError
	s.err = fmt.Errorf("http: %w", err)
}

// readRecord returns the payload of the next "data: " line. Other lines are
// framing noise and skipped.
func (s *stream) readRecord() (string, error) {
	for {
		line, oversized, err := s.readLine()
		if err != nil {
			return "", err
		}
		if oversized {
			s.logger.Warn("discarding oversized record", "limit", maxRecordSize)
			continue
		}
		if data, ok := strings.CutPrefix(line, dataPrefix); ok {
			return data, nil
		}
	}
}

// readLine returns the next line without its line ending. A final line
// without a newline is still returned. Lines over maxRecordSize are read to
// their end and reported as oversized instead of being buffered.
func (s *stream) readLine() (line string, oversized bool, err error) {
	var buf []byte
	for {
		frag, readErr := s.reader.ReadSlice('\n')
		if !oversized {
			if len(buf)+len(frag) > maxRecordSize+len("\r\n") {
				oversized = true
				buf = nil
			} else {
				buf = append(buf, frag...)
			}
		}
		switch {
		case readErr == bufio.ErrBufferFull:
			continue
		case readErr == io.EOF && (len(buf) > 0 || oversized):
		case readErr != nil:
			return "", false, readErr
		}
		if oversized {
			return "", true, nil
		}
		line = strings.TrimSuffix(string(buf), "\n")
		return strings.TrimSuffix(line, "\r"), false, nil
	}
}

// processRecord maps one record to a semantic event. Returns nil for records
// that carry nothing for the caller.
func (s *stream) processRecord(data string) titan.Event {
	var r record
	if err := json.Unmarshal([]byte(data), &r); err != nil {
		s.logger.Debug("discarding malformed record", "err", err, "size", len(data))
		return nil
	}
	switch r.Type {
	case "content":
		if r.Content == "" {
			return nil
		}
		return titan.EventContent{Delta: r.Content}
	case "thinking_done":
		return titan.EventThinkingDone{Thinking: r.Thinking}
	case "error":
		return titan.EventServerError{Message: r.Error, ActionRequired: r.ActionRequired}
	case "limit_info":
		return titan.EventLimitInfo{
			Used:         r.Used,
			Limit:        r.Limit,
			Remaining:    r.Remaining,
			LimitReached: r.LimitReached,
		}
	case "done":
		return titan.EventDone{FinalContent: r.FinalContent, Thinking: r.Thinking}
	default:
		s.logger.Debug("ignoring record", "type", r.Type)
		return nil
	}
}
