// Command titan is a terminal client for the Titan chat service.
//
// Usage:
//
//	titan [flags]                      interactive chat
//	titan ask [--reasoning] MESSAGE    one-shot question, reply on stdout
//	titan feedback --kind K ...        report a problem or suggestion
//	titan status                       show plan and message quota
//
// Global flags:
//
//	--base-url string    Service URL (default http://localhost:5000)
//	--config string      Config file (default ~/.titan/config.yaml)
//	--log-level string   debug, info, warn, error (default info)
//
// Every setting can also come from a TITAN_* environment variable, e.g.
// TITAN_BASE_URL or TITAN_MARKERS_OPEN.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/charmbracelet/log"
	"github.com/fwojciec/titan"
	bt "github.com/fwojciec/titan/bubbletea"
	"github.com/fwojciec/titan/clipboard"
	titanhttp "github.com/fwojciec/titan/http"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	root := newRootCmd(viper.New(), os.Stdout, os.Stderr)
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "titan: %v\n", err)
		os.Exit(1)
	}
}

// app holds what every subcommand needs once flags and config are resolved.
type app struct {
	v      *viper.Viper
	cfg    config
	stdout io.Writer
	stderr io.Writer
}

func newRootCmd(v *viper.Viper, stdout, stderr io.Writer) *cobra.Command {
	a := &app{v: v, stdout: stdout, stderr: stderr}
	var cfgFile string

	root := &cobra.Command{
		Use:           "titan",
		Short:         "Chat with the Titan service from the terminal",
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := readConfig(v, cfgFile); err != nil {
				return err
			}
			cfg, err := loadConfig(v)
			if err != nil {
				return err
			}
			a.cfg = cfg
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runTUI(cmd.Context())
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	setDefaults(v)
	flags := root.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default ~/.titan/config.yaml)")
	flags.String("base-url", "", "chat service URL")
	flags.String("log-level", "", "log level: debug, info, warn, error")
	_ = v.BindPFlag("base_url", flags.Lookup("base-url"))
	_ = v.BindPFlag("log.level", flags.Lookup("log-level"))

	root.AddCommand(
		newAskCmd(a),
		newFeedbackCmd(a),
		newStatusCmd(a),
	)
	return root
}

// client builds the HTTP client for the configured service.
func (a *app) client(logger *log.Logger) *titanhttp.Client {
	return titanhttp.New(a.cfg.BaseURL, titanhttp.WithLogger(logger))
}

// chat builds the chat controller with configured markers and reasoning.
func (a *app) chat(client titan.ChatClient) *titan.Chat {
	return titan.NewChat(client,
		titan.WithMarkers(a.cfg.Markers),
		titan.WithReasoning(a.cfg.Reasoning),
		titan.WithIDFunc(uuid.NewString),
	)
}

// stderrLogger is used by one-shot commands.
func (a *app) stderrLogger() *log.Logger {
	return log.NewWithOptions(a.stderr, log.Options{
		Level:  a.cfg.LogLevel,
		Prefix: "titan",
	})
}

func (a *app) runTUI(ctx context.Context) error {
	path, err := a.cfg.logPath()
	if err != nil {
		return fmt.Errorf("log file: %w", err)
	}
	f, err := openLog(path)
	if err != nil {
		return err
	}
	defer f.Close()

	logger := log.NewWithOptions(f, log.Options{
		Level:           a.cfg.LogLevel,
		ReportTimestamp: true,
	})
	client := a.client(logger)
	chat := a.chat(client)

	if a.cfg.Reasoning {
		// Tell the server up front; the local mode holds regardless.
		if err := chat.SetReasoning(ctx, true); err != nil {
			logger.Warn("thinking mode not acknowledged", "err", err)
		}
	}

	m := bt.New(chat,
		bt.WithStatusChecker(client),
		bt.WithCopiers(clipboard.Chain(os.Stdout, os.Getenv)...),
		bt.WithLogger(logger),
	)
	logger.Info("starting", "base_url", a.cfg.BaseURL, "conversation", chat.ConversationID())
	if err := bt.Run(ctx, m); err != nil {
		return fmt.Errorf("TUI: %w", err)
	}
	return nil
}
