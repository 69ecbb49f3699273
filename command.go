package titan

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Inline commands the model understands. A message that already contains
// either one is sent as typed.
const (
	ThinkCommand   = "/think"
	NoThinkCommand = "/no_think"
)

// MaxMessageLength is the longest message, in characters, the service accepts.
const MaxMessageLength = 2000

// ValidateMessage checks that text is sendable.
func ValidateMessage(text string) error {
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("message is empty: %w", ErrValidation)
	}
	if n := utf8.RuneCountInString(text); n > MaxMessageLength {
		return fmt.Errorf("message has %d characters, maximum is %d: %w", n, MaxMessageLength, ErrValidation)
	}
	return nil
}

// DecorateMessage appends the thinking command matching the reasoning mode
// unless the user already typed one.
func DecorateMessage(text string, reasoning bool) string {
	text = strings.TrimSpace(text)
	if strings.Contains(text, ThinkCommand) || strings.Contains(text, NoThinkCommand) {
		return text
	}
	if reasoning {
		return text + " " + ThinkCommand
	}
	return text + " " + NoThinkCommand
}
