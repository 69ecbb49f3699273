package bubbletea

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var _ MessageBlock = (*NoticeBlock)(nil)

// NoticeKind selects how a notice is styled.
type NoticeKind int

const (
	NoticeInfo NoticeKind = iota
	NoticeError
)

// Notices shown for exchange outcomes.
const (
	CancelledNotice     = "Generation cancelled"
	CommunicationNotice = "Communication failure with the server"
	UnavailableNotice   = "The service is unavailable right now. Try again in a moment."
)

// NoticeBlock renders a one-line outcome such as a cancellation or a
// transport failure, with an optional muted detail line.
type NoticeBlock struct {
	kind   NoticeKind
	text   string
	detail string
	styles *Styles
}

// NewNoticeBlock creates a NoticeBlock.
func NewNoticeBlock(kind NoticeKind, text, detail string, styles *Styles) *NoticeBlock {
	return &NoticeBlock{kind: kind, text: text, detail: detail, styles: styles}
}

func (b *NoticeBlock) Update(msg tea.Msg) (MessageBlock, tea.Cmd) {
	return b, nil
}

func (b *NoticeBlock) View(width int) string {
	wrap := lipgloss.NewStyle().Width(width)
	style := b.styles.Notice
	if b.kind == NoticeError {
		style = b.styles.Error
	}
	out := wrap.Render(style.Render(b.text))
	if b.detail != "" {
		out += "\n" + wrap.Render(b.styles.Muted.Render(b.detail))
	}
	return out
}
