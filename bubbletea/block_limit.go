package bubbletea

import (
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fwojciec/titan"
	"github.com/fwojciec/titan/ansi"
)

var _ MessageBlock = (*LimitBlock)(nil)

// LimitBlock is a bordered panel shown when the service refuses a message
// because of the caller's quota or plan.
type LimitBlock struct {
	title  string
	body   string
	hint   string
	styles *Styles
}

// NewLimitBlock builds a panel for a quota or plan refusal. It returns nil
// when err is neither.
func NewLimitBlock(err error, styles *Styles) *LimitBlock {
	var apiErr *titan.APIError
	if !errors.As(err, &apiErr) {
		return nil
	}
	b := &LimitBlock{body: ansi.Sanitize(apiErr.Message), styles: styles}
	switch {
	case errors.Is(err, titan.ErrRateLimited):
		b.title = "Message limit reached"
		if apiErr.Limit > 0 {
			b.body = fmt.Sprintf("You have used %d of %d messages.", apiErr.MessagesUsed, apiErr.Limit)
		}
	case errors.Is(err, titan.ErrFeatureRestricted):
		b.title = "Feature not available on your plan"
		if apiErr.CurrentPlan != "" {
			b.hint = fmt.Sprintf("Current plan: %s. Upgrade to unlock it.", ansi.Sanitize(apiErr.CurrentPlan))
		}
	default:
		return nil
	}
	if apiErr.ActionRequired == titan.ActionCreateAccount {
		b.hint = "Create an account to keep chatting."
	}
	return b
}

// NewServerLimitBlock builds a panel for an in-stream error that asks the
// user to act. It returns nil for plain errors.
func NewServerLimitBlock(e titan.EventServerError, styles *Styles) *LimitBlock {
	if e.ActionRequired != titan.ActionCreateAccount {
		return nil
	}
	return &LimitBlock{
		title:  "Message limit reached",
		body:   ansi.Sanitize(e.Message),
		hint:   "Create an account to keep chatting.",
		styles: styles,
	}
}

func (b *LimitBlock) Update(msg tea.Msg) (MessageBlock, tea.Cmd) {
	return b, nil
}

func (b *LimitBlock) View(width int) string {
	inner := width - b.styles.Panel.GetHorizontalBorderSize()
	if inner < 1 {
		inner = 1
	}
	lines := []string{b.styles.Error.Bold(true).Render(b.title)}
	if body := strings.TrimSpace(b.body); body != "" {
		lines = append(lines, body)
	}
	if b.hint != "" {
		lines = append(lines, b.styles.Muted.Render(b.hint))
	}
	return b.styles.Panel.Width(inner).Render(strings.Join(lines, "\n"))
}
