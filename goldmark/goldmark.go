// Package goldmark renders answer markdown to ANSI-styled terminal output
// using goldmark (with GitHub Flavored Markdown extensions) for parsing and
// lipgloss for styling.
package goldmark

import (
	"github.com/fwojciec/titan"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
)

// DefaultWidth is used when the caller passes a non-positive width.
const DefaultWidth = 80

// Renderer renders markdown with a fixed theme.
type Renderer struct {
	parser parser.Parser
	styles styles
}

// New returns a Renderer styled with theme.
func New(theme titan.Theme) *Renderer {
	md := goldmark.New(goldmark.WithExtensions(extension.GFM))
	return &Renderer{
		parser: md.Parser(),
		styles: newStyles(theme),
	}
}

// Render parses markdown source and returns ANSI-styled terminal output.
// Paragraphs and list items are word-wrapped to width. Code blocks are
// rendered at full width without reflow. Partial documents, as seen while a
// reply is still streaming, render as far as they parse.
func (r *Renderer) Render(source string, width int) string {
	if source == "" {
		return ""
	}
	if width <= 0 {
		width = DefaultWidth
	}
	return r.render([]byte(source), width)
}

// Render is a convenience for New(theme).Render(source, width).
func Render(source string, width int, theme titan.Theme) string {
	return New(theme).Render(source, width)
}
