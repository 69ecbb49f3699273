// Package clipboard provides [titan.Copier] strategies: the system clipboard
// and the OSC 52 terminal escape sequence.
package clipboard

import (
	"errors"
	"io"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/aymanbagabas/go-osc52/v2"
	"github.com/fwojciec/titan"
)

// Interface compliance checks.
var (
	_ titan.Copier = System{}
	_ titan.Copier = (*OSC52)(nil)
)

// ErrUnsupported is returned when no system clipboard utility is available.
var ErrUnsupported = errors.New("clipboard: system clipboard unavailable")

// System copies through the operating system clipboard.
type System struct{}

// Copy writes text to the system clipboard.
func (System) Copy(text string) error {
	if clipboard.Unsupported {
		return ErrUnsupported
	}
	return clipboard.WriteAll(text)
}

// Mode selects how the OSC 52 sequence is wrapped for terminal multiplexers.
type Mode int

const (
	ModePlain Mode = iota
	ModeTmux
	ModeScreen
)

// DetectMode picks the wrapping for the current terminal from the
// environment.
func DetectMode(getenv func(string) string) Mode {
	switch {
	case getenv("TMUX") != "":
		return ModeTmux
	case strings.HasPrefix(getenv("TERM"), "screen"):
		return ModeScreen
	default:
		return ModePlain
	}
}

// OSC52 copies by asking the terminal to set its clipboard. It works over
// SSH but cannot detect whether the terminal honoured the request.
type OSC52 struct {
	W    io.Writer
	Mode Mode
}

// Copy writes the escape sequence for text to W.
func (o *OSC52) Copy(text string) error {
	if o.W == nil {
		return ErrUnsupported
	}
	seq := osc52.New(text)
	switch o.Mode {
	case ModeTmux:
		seq = seq.Tmux()
	case ModeScreen:
		seq = seq.Screen()
	}
	_, err := seq.WriteTo(o.W)
	return err
}

// Chain returns the default strategy order: system clipboard first, then
// OSC 52 written to w.
func Chain(w io.Writer, getenv func(string) string) []titan.Copier {
	return []titan.Copier{System{}, &OSC52{W: w, Mode: DetectMode(getenv)}}
}
