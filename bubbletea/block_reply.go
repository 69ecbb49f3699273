package bubbletea

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/fwojciec/titan"
	"github.com/fwojciec/titan/ansi"
	"github.com/fwojciec/titan/goldmark"
)

var _ MessageBlock = (*ReplyBlock)(nil)

// liveThinkingLines is how much of the reasoning stays visible while it
// streams with the section collapsed.
const liveThinkingLines = 4

// ReplyBlock renders one assistant reply: a collapsible reasoning section
// followed by the markdown answer. It is fed the split of the whole reply
// buffer after every chunk.
type ReplyBlock struct {
	split     titan.SplitResult
	collapsed bool
	streaming bool
	rating    titan.Rating
	styles    *Styles
	answer    answerView
}

// NewReplyBlock creates a ReplyBlock for a reply that is still streaming.
func NewReplyBlock(styles *Styles) *ReplyBlock {
	return &ReplyBlock{
		collapsed: true,
		streaming: true,
		styles:    styles,
		answer:    answerView{rendered: make(map[renderKey]string)},
	}
}

// SetSplit replaces the block's view of the reply. Escape sequences in the
// server's text are stripped before display.
func (b *ReplyBlock) SetSplit(r titan.SplitResult) {
	r.ReasoningText = ansi.Sanitize(r.ReasoningText)
	r.Answer = ansi.Sanitize(r.Answer)
	b.split = r
	b.answer.set(r.Answer)
}

// Finish marks the reply as no longer streaming.
func (b *ReplyBlock) Finish() { b.streaming = false }

// Answer returns the answer segment as received so far.
func (b *ReplyBlock) Answer() string { return b.split.Answer }

// Collapsible reports whether the reply has a reasoning section to toggle.
func (b *ReplyBlock) Collapsible() bool { return b.split.HasReasoning() }

// Rate records the user's vote for display.
func (b *ReplyBlock) Rate(r titan.Rating) { b.rating = r }

func (b *ReplyBlock) Update(msg tea.Msg) (MessageBlock, tea.Cmd) {
	if _, ok := msg.(ToggleMsg); ok && b.Collapsible() {
		b.collapsed = !b.collapsed
	}
	return b, nil
}

func (b *ReplyBlock) View(width int) string {
	var parts []string
	if b.split.HasReasoning() {
		parts = append(parts, b.thinkingView(width))
	}
	if answer := b.answer.view(width, b.styles.Theme); answer != "" {
		parts = append(parts, answer)
	}
	switch b.rating {
	case titan.RatingLike:
		parts = append(parts, b.styles.Success.Render("▲ Liked"))
	case titan.RatingDislike:
		parts = append(parts, b.styles.Muted.Render("▼ Disliked"))
	}
	return strings.Join(parts, "\n")
}

func (b *ReplyBlock) thinkingView(width int) string {
	wrap := lipgloss.NewStyle().Width(width)
	text := strings.TrimSpace(b.split.ReasoningText)

	if b.split.Reasoning {
		header := b.styles.Accent.Render(wrap.Render("◆ Thinking…"))
		if text == "" {
			return header
		}
		body := wrap.Render(text)
		if b.collapsed {
			body = lastLines(body, liveThinkingLines)
		}
		return header + "\n" + b.styles.Thinking.Render(body)
	}

	indicator := "▶"
	if !b.collapsed {
		indicator = "▼"
	}
	header := b.styles.Thinking.Render(wrap.Render(indicator + " Thinking"))
	if b.collapsed || text == "" {
		return header
	}
	return header + "\n" + b.styles.Thinking.Render(wrap.Render(text))
}

func lastLines(s string, n int) string {
	lines := strings.Split(s, "\n")
	if len(lines) <= n {
		return s
	}
	return strings.Join(lines[len(lines)-n:], "\n")
}

type renderKey struct {
	width int
	theme titan.Theme
}

// answerView renders streamed answer markdown. Finalized paragraphs
// (separated by a blank line) are rendered once per width and theme; only
// the trailing unfinalized text is re-rendered on each chunk.
type answerView struct {
	raw          string
	finalizedRaw string
	rendered     map[renderKey]string
}

func (a *answerView) set(text string) {
	if text == a.raw {
		return
	}
	a.raw = text
	a.promoteFinalized()
}

func (a *answerView) view(width int, theme titan.Theme) string {
	finalized := a.renderFinalized(width, theme)
	trailing := a.trailingRaw()
	if hasUnclosedFence(trailing) {
		// Close the fence only for rendering so partial code displays safely.
		trailing += "\n```"
	}
	if strings.TrimSpace(trailing) == "" {
		return finalized
	}
	rendered := goldmark.Render(trailing, width, theme)
	if strings.TrimSpace(rendered) == "" {
		return finalized
	}
	if finalized == "" {
		return rendered
	}
	return strings.TrimRight(finalized, "\n") + "\n\n" + strings.TrimLeft(rendered, "\n")
}

// promoteFinalized finds the last "\n\n" boundary outside an open code
// fence. The answer can shrink or change when markers arrive, so the
// finalized prefix is recomputed from scratch each time.
func (a *answerView) promoteFinalized() {
	raw := a.raw
	for end := len(raw); ; {
		idx := strings.LastIndex(raw[:end], "\n\n")
		if idx <= 0 {
			a.setFinalized("")
			return
		}
		candidate := raw[:idx]
		if !hasUnclosedFence(candidate) {
			a.setFinalized(candidate)
			return
		}
		end = idx
	}
}

func (a *answerView) setFinalized(s string) {
	if s != a.finalizedRaw {
		a.finalizedRaw = s
		clear(a.rendered)
	}
}

func (a *answerView) renderFinalized(width int, theme titan.Theme) string {
	if width <= 0 || a.finalizedRaw == "" {
		return ""
	}
	key := renderKey{width: width, theme: theme}
	if cached, ok := a.rendered[key]; ok {
		return cached
	}
	out := goldmark.Render(a.finalizedRaw, width, theme)
	a.rendered[key] = out
	return out
}

func (a *answerView) trailingRaw() string {
	if a.finalizedRaw == "" {
		return a.raw
	}
	return strings.TrimPrefix(a.raw, a.finalizedRaw+"\n\n")
}

// hasUnclosedFence counts "```" occurrences; an odd count means a fenced
// code block is still open. Triple backticks inside inline code spans are
// miscounted.
func hasUnclosedFence(s string) bool {
	return strings.Count(s, "```")%2 == 1
}
