package bubbletea

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/fwojciec/titan"
	"github.com/fwojciec/titan/ansi"
)

var _ tea.Model = Model{}

const (
	flashDuration  = 4 * time.Second
	requestTimeout = 10 * time.Second
)

// Option configures a Model.
type Option func(*Model)

// WithStatusChecker fetches the user's plan and quota on start.
func WithStatusChecker(sc titan.StatusChecker) Option {
	return func(m *Model) { m.status = sc }
}

// WithCopiers sets the clipboard strategies tried by the copy key, in order.
func WithCopiers(copiers ...titan.Copier) Option {
	return func(m *Model) { m.copiers = copiers }
}

// WithLogger sets the logger. The TUI owns the terminal, so the logger
// should write to a file.
func WithLogger(l *log.Logger) Option {
	return func(m *Model) { m.logger = l }
}

// WithKeyMap overrides the default key bindings.
func WithKeyMap(k KeyMap) Option {
	return func(m *Model) { m.keys = k }
}

// Model is the Bubble Tea model for the Titan TUI.
type Model struct {
	// Input is the text input component. Exported for test access.
	Input textinput.Model
	// Viewport is the scrollable output area. Exported for test access.
	Viewport viewport.Model

	chat    Conversation
	status  titan.StatusChecker
	copiers []titan.Copier
	logger  *log.Logger
	keys    KeyMap
	help    help.Model
	spinner spinner.Model
	styles  *Styles

	blocks     []MessageBlock
	blockFocus int // index of focused collapsible block (-1 = none)
	reply      *ReplyBlock

	running bool
	cancel  context.CancelFunc
	eventCh chan tea.Msg
	doneCh  chan error

	usage     *titan.Usage
	anonymous bool
	plan      string

	flash    string
	flashErr bool
	flashID  int

	sidebar bool
	width   int
	height  int
	ready   bool
}

// New creates a TUI Model driving chat.
func New(chat Conversation, opts ...Option) Model {
	ti := textinput.New()
	ti.Placeholder = "Send a message..."
	ti.Prompt = ""
	ti.CharLimit = titan.MaxMessageLength
	ti.Focus()

	styles := NewStyles(titan.ThemeFor(chat.Reasoning()))
	m := Model{
		Input:      ti,
		chat:       chat,
		logger:     log.New(io.Discard),
		keys:       DefaultKeyMap(),
		help:       help.New(),
		spinner:    spinner.New(spinner.WithSpinner(spinner.MiniDot)),
		styles:     &styles,
		blockFocus: -1,
	}
	for _, opt := range opts {
		opt(&m)
	}
	return m
}

// Running returns whether an exchange is in flight.
func (m Model) Running() bool { return m.running }

// SetRunning is a test helper that puts the model in a running state.
// Chunks that follow start a new reply, as after a submitted message.
func SetRunning(m Model) (Model, tea.Cmd) {
	m.running = true
	m.reply = nil
	m.Input.Blur()
	return m, nil
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{textinput.Blink}
	if m.status != nil {
		cmds = append(cmds, fetchStatus(m.status))
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m = m.handleWindowSize(msg)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case ChunkMsg:
		if m.reply == nil {
			m.reply = NewReplyBlock(m.styles)
			m.blocks = append(m.blocks, m.reply)
		}
		m.reply.SetSplit(msg.Split)
		m = m.updateBlockFocus()
		m = m.refresh()
		return m, m.listen()

	case ServerEventMsg:
		m = m.processEvent(msg.Event)
		m = m.refresh()
		return m, m.listen()

	case ExchangeDoneMsg:
		return m.finishExchange(msg.Err)

	case StatusMsg:
		if msg.Err != nil {
			m.logger.Warn("user status unavailable", "err", msg.Err)
			return m, nil
		}
		m.anonymous = msg.Status.Anonymous
		m.plan = msg.Status.Plan
		if msg.Status.Anonymous {
			usage := msg.Status.Usage
			m.usage = &usage
		}
		return m, nil

	case ReasoningMsg:
		*m.styles = NewStyles(titan.ThemeFor(msg.Enabled))
		m = m.refresh()
		if msg.Err != nil {
			m.logger.Warn("thinking mode not acknowledged", "err", msg.Err)
			return m.setFlash("Reasoning mode changed locally; the server did not confirm it", true)
		}
		text := "Reasoning off"
		if msg.Enabled {
			text = "Reasoning on"
			if m.anonymous {
				text += " (guests receive answers without reasoning)"
			}
		}
		return m.setFlash(text, false)

	case NewChatMsg:
		m.blocks = nil
		m.reply = nil
		m.blockFocus = -1
		m = m.refresh()
		if msg.Err != nil {
			m.logger.Warn("server history not cleared", "err", msg.Err)
			return m.setFlash("New conversation started; the server kept the old history", true)
		}
		return m.setFlash("New conversation", false)

	case VoteMsg:
		switch {
		case msg.Err == nil:
			if msg.reply != nil {
				msg.reply.Rate(msg.Rating)
				m = m.refresh()
			}
			return m.setFlash("Thanks for the feedback", false)
		case errors.Is(msg.Err, titan.ErrRateLimited):
			return m.setFlash("Too many votes, try again later", true)
		case errors.Is(msg.Err, errors.ErrUnsupported):
			return m.setFlash("Voting is not available", true)
		default:
			m.logger.Error("vote failed", "err", msg.Err)
			return m.setFlash("Could not send the vote", true)
		}

	case clearFlashMsg:
		if msg.id == m.flashID {
			m.flash = ""
			m.flashErr = false
		}
		return m, nil

	case spinner.TickMsg:
		if !m.running {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	// Viewport always receives remaining messages for scrolling.
	var cmds []tea.Cmd
	var cmd tea.Cmd
	m.Viewport, cmd = m.Viewport.Update(msg)
	cmds = append(cmds, cmd)

	if !m.running {
		m.Input, cmd = m.Input.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	var b strings.Builder

	body := m.Viewport.View()
	if m.sidebar {
		side := sidebarView(m.chat.Recent(), m.chat.ConversationID(), m.Viewport.Height, m.styles)
		body = lipgloss.JoinHorizontal(lipgloss.Top, side, body)
	}
	b.WriteString(body)
	b.WriteString("\n")

	b.WriteString(m.statusLine())
	b.WriteString("\n")

	b.WriteString(m.Input.View())

	return b.String()
}

func (m Model) handleWindowSize(msg tea.WindowSizeMsg) Model {
	inputH := 1
	statusHeight := 1
	borderHeight := 2 // newlines between sections
	vpHeight := msg.Height - inputH - statusHeight - borderHeight
	if vpHeight < 1 {
		vpHeight = 1
	}

	m.width = msg.Width
	m.height = msg.Height
	if !m.ready {
		m.Viewport = viewport.New(m.contentWidth(), vpHeight)
		m.ready = true
	} else {
		m.Viewport.Width = m.contentWidth()
		m.Viewport.Height = vpHeight
	}
	m = m.refresh()

	m.Input.Width = msg.Width
	m.help.Width = msg.Width
	return m
}

func (m Model) contentWidth() int {
	w := m.width
	if m.sidebar {
		w -= SidebarWidth
	}
	if w < 1 {
		w = 1
	}
	return w
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case m.running && key.Matches(msg, m.keys.Cancel):
		m.chat.Cancel()
		if m.cancel != nil {
			m.cancel()
		}
		return m, nil

	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Send):
		if m.running {
			return m, nil
		}
		text := strings.TrimSpace(m.Input.Value())
		if text == "" {
			return m, nil
		}
		if err := titan.ValidateMessage(text); err != nil {
			return m.setFlash(err.Error(), true)
		}
		return m.submitInput(text)

	case key.Matches(msg, m.keys.Reasoning):
		return m, toggleReasoning(m.chat)

	case key.Matches(msg, m.keys.NewChat):
		if m.running {
			return m, nil
		}
		return m, newConversation(m.chat)

	case key.Matches(msg, m.keys.Sidebar):
		m.sidebar = !m.sidebar
		if m.ready {
			m.Viewport.Width = m.contentWidth()
			m = m.refresh()
		}
		return m, nil

	case key.Matches(msg, m.keys.Copy):
		answer := m.lastAnswer()
		if strings.TrimSpace(answer) == "" {
			return m.setFlash("Nothing to copy", true)
		}
		if !titan.CopyText(answer, m.copiers...) {
			return m.setFlash("Copy failed", true)
		}
		return m.setFlash("Copied to clipboard", false)

	case key.Matches(msg, m.keys.Like):
		return m.vote(titan.RatingLike)

	case key.Matches(msg, m.keys.Dislike):
		return m.vote(titan.RatingDislike)

	case key.Matches(msg, m.keys.Toggle):
		if m.blockFocus >= 0 {
			block, cmd := m.blocks[m.blockFocus].Update(ToggleMsg{})
			m.blocks[m.blockFocus] = block
			m.Viewport.SetContent(m.renderContent())
			return m, cmd
		}
		return m, nil

	case key.Matches(msg, m.keys.FocusPrev):
		m = m.cycleFocusPrev()
		return m, nil
	}

	// When idle, pass keys to the input and non-character keys to the
	// viewport, since 'j'/'k' are both scroll keys and text.
	if !m.running {
		var cmd tea.Cmd
		var cmds []tea.Cmd

		if msg.Type != tea.KeyRunes {
			m.Viewport, cmd = m.Viewport.Update(msg)
			cmds = append(cmds, cmd)
		}

		m.Input, cmd = m.Input.Update(msg)
		cmds = append(cmds, cmd)

		return m, tea.Batch(cmds...)
	}

	return m, nil
}

func (m Model) submitInput(text string) (tea.Model, tea.Cmd) {
	m.Input.SetValue("")
	m.flash = ""
	m.flashErr = false

	m.blocks = append(m.blocks, NewUserMessageBlock(text, m.styles))
	m.reply = nil
	m = m.refresh()

	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	m.eventCh = make(chan tea.Msg, 256)
	m.doneCh = make(chan error, 1)
	m.running = true

	m.Input.Blur()

	return m, tea.Batch(
		startExchange(ctx, m.chat, text, m.eventCh, m.doneCh),
		listenForEvent(m.eventCh, m.doneCh),
		m.spinner.Tick,
	)
}

func (m Model) finishExchange(err error) (tea.Model, tea.Cmd) {
	if m.cancel != nil {
		m.cancel()
	}
	m.running = false
	m.cancel = nil
	m.eventCh = nil
	m.doneCh = nil
	if m.reply != nil {
		m.reply.Finish()
	}

	switch {
	case err == nil:
	case titan.IsCancellation(err):
		m.blocks = append(m.blocks, NewNoticeBlock(NoticeInfo, CancelledNotice, "", m.styles))
	default:
		m.logger.Error("exchange failed", "err", err)
		m.blocks = append(m.blocks, m.failureBlock(err))
	}

	m = m.updateBlockFocus()
	m = m.refresh()
	return m, m.Input.Focus()
}

func (m Model) failureBlock(err error) MessageBlock {
	if b := NewLimitBlock(err, m.styles); b != nil {
		return b
	}
	switch {
	case errors.Is(err, titan.ErrUnavailable):
		return NewNoticeBlock(NoticeError, UnavailableNotice, "", m.styles)
	case errors.Is(err, titan.ErrSessionRequired):
		return NewNoticeBlock(NoticeError, "Session expired", "Send your message again to start a new session.", m.styles)
	default:
		return NewNoticeBlock(NoticeError, CommunicationNotice, ansi.Sanitize(err.Error()), m.styles)
	}
}

func (m Model) processEvent(evt titan.Event) Model {
	switch e := evt.(type) {
	case titan.EventServerError:
		m.logger.Warn("server reported an error", "message", e.Message, "action", e.ActionRequired)
		if b := NewServerLimitBlock(e, m.styles); b != nil {
			m.blocks = append(m.blocks, b)
			return m
		}
		m.blocks = append(m.blocks, NewNoticeBlock(NoticeError, ansi.Sanitize(e.Message), "", m.styles))
	case titan.EventLimitInfo:
		m.usage = &titan.Usage{Used: e.Used, Limit: e.Limit, Remaining: e.Remaining}
	case titan.EventThinkingDone:
		m.logger.Debug("reasoning finished", "len", len(e.Thinking))
	case titan.EventDone:
		m.logger.Debug("server finished reply", "len", len(e.FinalContent))
	}
	return m
}

func (m Model) vote(r titan.Rating) (tea.Model, tea.Cmd) {
	if m.running {
		return m, nil
	}
	reply := m.lastReply()
	if reply == nil || strings.TrimSpace(reply.Answer()) == "" {
		return m.setFlash("Nothing to rate", true)
	}
	return m, submitVote(m.chat, r, reply)
}

func (m Model) lastReply() *ReplyBlock {
	for i := len(m.blocks) - 1; i >= 0; i-- {
		if r, ok := m.blocks[i].(*ReplyBlock); ok {
			return r
		}
	}
	return nil
}

func (m Model) lastAnswer() string {
	if r := m.lastReply(); r != nil {
		return r.Answer()
	}
	return ""
}

func (m Model) setFlash(text string, isErr bool) (tea.Model, tea.Cmd) {
	m.flashID++
	m.flash = text
	m.flashErr = isErr
	id := m.flashID
	return m, tea.Tick(flashDuration, func(time.Time) tea.Msg {
		return clearFlashMsg{id: id}
	})
}

// refresh re-renders the conversation into the viewport and scrolls to the
// end.
func (m Model) refresh() Model {
	if !m.ready {
		return m
	}
	m.Viewport.SetContent(m.renderContent())
	m.Viewport.GotoBottom()
	return m
}

func (m Model) renderContent() string {
	if len(m.blocks) == 0 {
		return welcomeView(m.Viewport.Width, m.Viewport.Height, m.styles, m.chat.Reasoning())
	}
	var b strings.Builder
	for i, block := range m.blocks {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(block.View(m.Viewport.Width))
	}
	return b.String()
}

// updateBlockFocus scans backwards to find the last collapsible block.
func (m Model) updateBlockFocus() Model {
	m.blockFocus = -1
	for i := len(m.blocks) - 1; i >= 0; i-- {
		if collapsible(m.blocks[i]) {
			m.blockFocus = i
			return m
		}
	}
	return m
}

// cycleFocusPrev moves blockFocus to the previous collapsible block, wrapping around.
func (m Model) cycleFocusPrev() Model {
	if len(m.blocks) == 0 {
		m.blockFocus = -1
		return m
	}
	start := m.blockFocus - 1
	if start < 0 {
		start = len(m.blocks) - 1
	}
	for i := range len(m.blocks) {
		idx := (start - i + len(m.blocks)) % len(m.blocks)
		if collapsible(m.blocks[idx]) {
			m.blockFocus = idx
			return m
		}
	}
	m.blockFocus = -1
	return m
}

func collapsible(b MessageBlock) bool {
	r, ok := b.(*ReplyBlock)
	return ok && r.Collapsible()
}

func (m Model) statusLine() string {
	if m.flash != "" {
		if m.flashErr {
			return m.styles.Error.Render(m.flash)
		}
		return m.styles.Success.Render(m.flash)
	}
	if m.running {
		return m.spinner.View() + m.styles.Muted.Render(" Generating... (esc to stop)")
	}

	info := []string{"reasoning off"}
	if m.chat.Reasoning() {
		info[0] = "reasoning on"
	}
	if m.usage != nil && m.usage.Limit > 0 {
		info = append(info, fmt.Sprintf("%d/%d left", m.usage.Remaining, m.usage.Limit))
	}
	if n := len([]rune(m.Input.Value())); n > 0 {
		info = append(info, fmt.Sprintf("%d/%d", n, titan.MaxMessageLength))
	}
	left := m.styles.Accent.Render(strings.Join(info, " · ")) + "  "
	h := m.help
	h.Width = m.width - lipgloss.Width(left)
	return left + h.ShortHelpView(m.keys.ShortHelp())
}

func (m Model) listen() tea.Cmd {
	if m.eventCh == nil {
		return nil
	}
	return listenForEvent(m.eventCh, m.doneCh)
}

// startExchange runs one exchange in a goroutine and signals completion.
func startExchange(ctx context.Context, chat Conversation, text string, eventCh chan<- tea.Msg, doneCh chan<- error) tea.Cmd {
	return func() tea.Msg {
		emit := func(msg tea.Msg) {
			select {
			case eventCh <- msg:
			case <-ctx.Done():
			}
		}
		_, err := chat.Send(ctx, text, titan.Handler{
			OnChunk: func(r titan.SplitResult) { emit(ChunkMsg{Split: r}) },
			OnEvent: func(e titan.Event) { emit(ServerEventMsg{Event: e}) },
		})
		close(eventCh)
		doneCh <- err
		return nil
	}
}

// listenForEvent waits for the next message from the channel. When the
// channel closes, it reads the result from doneCh and returns ExchangeDoneMsg.
func listenForEvent(ch <-chan tea.Msg, doneCh <-chan error) tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-ch
		if !ok {
			return ExchangeDoneMsg{Err: <-doneCh}
		}
		return msg
	}
}

func fetchStatus(sc titan.StatusChecker) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		st, err := sc.UserStatus(ctx)
		return StatusMsg{Status: st, Err: err}
	}
}

func toggleReasoning(chat Conversation) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		enabled, err := chat.ToggleReasoning(ctx)
		return ReasoningMsg{Enabled: enabled, Err: err}
	}
}

func newConversation(chat Conversation) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		return NewChatMsg{Err: chat.NewConversation(ctx)}
	}
}

func submitVote(chat Conversation, r titan.Rating, reply *ReplyBlock) tea.Cmd {
	content := reply.Answer()
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		return VoteMsg{Rating: r, Err: chat.Vote(ctx, r, content), reply: reply}
	}
}
