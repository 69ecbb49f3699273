package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/fwojciec/titan"
	"github.com/fwojciec/titan/ansi"
	"github.com/spf13/cobra"
)

func newStatusCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show your plan and message quota",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := a.client(a.stderrLogger()).UserStatus(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(a.stdout, statusTable(st))
			return nil
		},
	}
}

func statusTable(st titan.UserStatus) string {
	account := "guest"
	if st.LoggedIn {
		account = "signed in"
	}
	plan := ansi.Sanitize(st.Plan)
	if plan == "" {
		plan = "-"
	}
	rows := [][]string{
		{"account", account},
		{"plan", plan},
	}
	if len(st.Features) > 0 {
		rows = append(rows, []string{"features", ansi.Sanitize(strings.Join(st.Features, ", "))})
	}
	if st.Usage.Limit > 0 {
		rows = append(rows, []string{"messages", strconv.Itoa(st.Usage.Used) + "/" + strconv.Itoa(st.Usage.Limit) + " used"})
	}
	if st.NeedsSession {
		rows = append(rows, []string{"session", "not started"})
	}
	return table.New().
		Border(lipgloss.HiddenBorder()).
		Rows(rows...).
		String()
}
