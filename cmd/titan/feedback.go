package main

import (
	"fmt"
	"slices"
	"time"

	"github.com/fwojciec/titan"
	"github.com/spf13/cobra"
)

func newFeedbackCmd(a *app) *cobra.Command {
	var kind, title, description, steps string
	cmd := &cobra.Command{
		Use:   "feedback",
		Short: "Send a bug report or suggestion",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			k := titan.ReportKind(kind)
			if !slices.Contains(titan.ReportKinds, k) {
				return fmt.Errorf("unknown kind %q (want one of %v)", kind, titan.ReportKinds)
			}
			r := titan.Report{
				Kind:             k,
				Title:            title,
				Description:      description,
				Steps:            steps,
				ReasoningEnabled: a.cfg.Reasoning,
				Timestamp:        time.Now(),
			}
			if err := r.Validate(); err != nil {
				return err
			}
			if err := a.client(a.stderrLogger()).SubmitReport(cmd.Context(), r); err != nil {
				return err
			}
			fmt.Fprintln(a.stdout, "Feedback sent. Thank you!")
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&kind, "kind", string(titan.ReportGeneral), "bug, improvement, problem, answer, general")
	f.StringVar(&title, "title", "", "short summary")
	f.StringVar(&description, "description", "", "what happened or what you suggest")
	f.StringVar(&steps, "steps", "", "steps to reproduce")
	_ = cmd.MarkFlagRequired("title")
	_ = cmd.MarkFlagRequired("description")
	return cmd
}
