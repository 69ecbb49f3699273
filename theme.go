package titan

// Theme defines semantic color mappings using ANSI color indices (0-15).
// The user's terminal theme determines the actual RGB values.
type Theme struct {
	UserMsg  int // User message accent
	Thinking int // Reasoning block text
	Error    int // Error messages and limit panels
	Notice   int // Cancellation and status notices
	Success  int // Copy and vote confirmations
	Muted    int // Status bar, placeholders
	CodeBg   int // Code block background
	Accent   int // Headings, links, title
}

// DefaultTheme returns the default ANSI color mapping.
func DefaultTheme() Theme {
	return Theme{
		UserMsg:  4,
		Thinking: 8,
		Error:    1,
		Notice:   3,
		Success:  2,
		Muted:    8,
		CodeBg:   0,
		Accent:   5,
	}
}

// ReasoningTheme is the palette used while reasoning mode is on.
func ReasoningTheme() Theme {
	t := DefaultTheme()
	t.UserMsg = 6
	t.Thinking = 14
	t.Accent = 13
	return t
}

// ThemeFor returns the palette for the given reasoning mode.
func ThemeFor(reasoning bool) Theme {
	if reasoning {
		return ReasoningTheme()
	}
	return DefaultTheme()
}
