// Package ansi makes server-supplied text safe to print on a terminal.
package ansi

import (
	"strings"

	xansi "github.com/charmbracelet/x/ansi"
)

// Sanitize strips escape sequences and control characters from text received
// from the service. Tabs and newlines survive; CRLF becomes LF and lone
// carriage returns are dropped. A sequence cut off at the end of s is
// dropped too, so sanitizing a growing buffer never emits half a sequence.
func Sanitize(s string) string {
	if s == "" {
		return s
	}
	s = xansi.Strip(s)
	s = strings.ReplaceAll(s, "\r\n", "\n")

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r == '\t' || r == '\n':
			b.WriteRune(r)
		case r <= 0x1F || r == 0x7F:
		case r >= 0x80 && r <= 0x9F:
			// C1 controls.
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
