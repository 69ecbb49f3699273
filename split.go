package titan

import "strings"

// Markers are the literal tokens that open and close the reasoning segment
// inside a reply.
type Markers struct {
	Open  string
	Close string
}

// DefaultMarkers are the tokens the service's models emit.
var DefaultMarkers = Markers{Open: "<think>", Close: "</think>"}

// SplitResult classifies a reply buffer. It is derived from the buffer on
// demand and never stored.
type SplitResult struct {
	// Reasoning is true while the opening marker has been seen and the
	// closing marker has not.
	Reasoning     bool
	ReasoningText string
	Answer        string
	// Complete is true once the closing marker has been observed.
	Complete bool
}

// HasReasoning reports whether the buffer contained an opening marker.
func (r SplitResult) HasReasoning() bool { return r.Reasoning || r.Complete }

// Split classifies buf into reasoning and answer segments. Only the first
// open/close pair is recognized and marker-like text inside content is not
// escaped. Text before the opening marker belongs to neither segment.
func Split(buf string, m Markers) SplitResult {
	if m.Open == "" {
		return SplitResult{Answer: buf}
	}
	start := strings.Index(buf, m.Open)
	if start < 0 {
		return SplitResult{Answer: buf}
	}
	body := buf[start+len(m.Open):]
	end := -1
	if m.Close != "" {
		end = strings.Index(body, m.Close)
	}
	if end < 0 {
		return SplitResult{Reasoning: true, ReasoningText: body}
	}
	return SplitResult{
		ReasoningText: body[:end],
		Answer:        strings.TrimSpace(body[end+len(m.Close):]),
		Complete:      true,
	}
}
