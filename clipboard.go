package titan

import "strings"

// Copier places text on a clipboard.
type Copier interface {
	Copy(text string) error
}

// CopierFunc adapts a function to Copier.
type CopierFunc func(text string) error

// Copy calls f(text).
func (f CopierFunc) Copy(text string) error { return f(text) }

// CopyText trims text and tries each copier in order, stopping at the first
// success. It reports whether any copier succeeded. Empty text is a no-op.
// Failures are not reported beyond the return value.
func CopyText(text string, copiers ...Copier) bool {
	text = strings.TrimSpace(text)
	if text == "" {
		return false
	}
	for _, c := range copiers {
		if c == nil {
			continue
		}
		if err := c.Copy(text); err == nil {
			return true
		}
	}
	return false
}
