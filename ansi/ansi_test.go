package ansi_test

import (
	"strings"
	"testing"

	"github.com/fwojciec/titan/ansi"
	"github.com/stretchr/testify/assert"
)

func TestSanitize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain text unchanged", "hello world", "hello world"},
		{"markdown unchanged", "# Title\n\n- **bold** `code`\n", "# Title\n\n- **bold** `code`\n"},
		{"strips color codes", "\x1b[31mhello\x1b[0m", "hello"},
		{"strips bold and underline", "\x1b[1mbold\x1b[22m", "bold"},
		{"preserves tabs and newlines", "a\tb\nc", "a\tb\nc"},
		{"removes control characters", "a\x01b\x02c\x07", "abc"},
		{"normalizes CRLF", "a\r\nb\r\n", "a\nb\n"},
		{"drops lone CR", "one\rtwo", "onetwo"},
		{"strips OSC title", "\x1b]0;pwned\x07text", "text"},
		{"strips OSC 52 clipboard write", "\x1b]52;c;ZXZpbA==\x07safe", "safe"},
		{"keeps non-ASCII text", "olá, mundo 🚀", "olá, mundo 🚀"},
		{"only escape codes", "\x1b[31m\x1b[0m", ""},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, ansi.Sanitize(tt.input))
		})
	}

	t.Run("large input", func(t *testing.T) {
		t.Parallel()
		line := "\x1b[32m" + strings.Repeat("x", 1000) + "\x1b[0m\n"
		result := ansi.Sanitize(strings.Repeat(line, 1000))
		assert.NotContains(t, result, "\x1b")
		assert.Contains(t, result, strings.Repeat("x", 1000))
	})
}
