package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fwojciec/titan"
	"github.com/fwojciec/titan/ansi"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
)

// cancelNoticeTimeout bounds the cancel notice sent after an interrupted reply.
const cancelNoticeTimeout = 5 * time.Second

func newAskCmd(a *app) *cobra.Command {
	var reasoning bool
	cmd := &cobra.Command{
		Use:   "ask MESSAGE...",
		Short: "Ask one question and stream the answer to stdout",
		Long: "Ask one question and stream the answer to stdout. Reasoning, when " +
			"the model produces it, is written dimmed to stderr. Ctrl+C stops the reply.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("reasoning") {
				a.cfg.Reasoning = reasoning
			}
			logger := a.stderrLogger()
			chat := a.chat(a.client(logger))

			p := newReplyPrinter(a.stdout, a.stderr)
			_, err := chat.Send(cmd.Context(), strings.Join(args, " "), titan.Handler{
				OnChunk: p.chunk,
				OnEvent: func(e titan.Event) {
					switch e := e.(type) {
					case titan.EventServerError:
						p.notice(e.Message)
					case titan.EventLimitInfo:
						logger.Debug("quota", "used", e.Used, "limit", e.Limit, "remaining", e.Remaining)
					}
				},
			})
			p.finish()
			switch {
			case err == nil:
				return nil
			case titan.IsCancellation(err):
				p.notice("generation cancelled")
				ctx, cancel := context.WithTimeout(context.WithoutCancel(cmd.Context()), cancelNoticeTimeout)
				defer cancel()
				if err := chat.NotifyCancel(ctx); err != nil {
					logger.Debug("cancel notice not delivered", "err", err)
				}
				return nil
			default:
				return fmt.Errorf("communication failure with the server: %w", err)
			}
		},
	}
	cmd.Flags().BoolVar(&reasoning, "reasoning", false, "ask the model to reason before answering")
	return cmd
}

// replyPrinter writes a streamed reply incrementally. Each chunk carries the
// split of the whole buffer, so only the part not yet printed is written.
type replyPrinter struct {
	out      io.Writer
	thinking *termenv.Output

	reasoning string
	answer    string
}

func newReplyPrinter(out, thinking io.Writer) *replyPrinter {
	return &replyPrinter{out: out, thinking: termenv.NewOutput(thinking)}
}

func (p *replyPrinter) chunk(r titan.SplitResult) {
	r.ReasoningText = ansi.Sanitize(r.ReasoningText)
	r.Answer = ansi.Sanitize(r.Answer)
	if d, ok := unprinted(p.reasoning, r.ReasoningText); ok {
		p.reasoning = r.ReasoningText
		fmt.Fprint(p.thinking, p.thinking.String(d).Faint())
	}
	if d, ok := unprinted(p.answer, r.Answer); ok {
		if p.answer == "" && p.reasoning != "" {
			fmt.Fprintln(p.thinking)
		}
		p.answer = r.Answer
		fmt.Fprint(p.out, d)
	}
}

func (p *replyPrinter) notice(msg string) {
	fmt.Fprintln(p.thinking, p.thinking.String(ansi.Sanitize(msg)).Italic())
}

func (p *replyPrinter) finish() {
	if p.answer != "" && !strings.HasSuffix(p.answer, "\n") {
		fmt.Fprintln(p.out)
	}
}

// unprinted returns the suffix of current beyond printed. It reports false
// when nothing new arrived or current no longer extends printed.
func unprinted(printed, current string) (string, bool) {
	if len(current) <= len(printed) || !strings.HasPrefix(current, printed) {
		return "", false
	}
	return current[len(printed):], true
}
