package cli

import (
	"fmt"

	"github.com/alexanderramin/riff/internal/cli/formatter"
	"github.com/alexanderramin/riff/internal/domain"
	"github.com/spf13/cobra"
)

func newLogCmd(app *App) *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:     "log",
		Aliases: []string{"logs", "history"},
		Short:   "Show completed practice sessions",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if days < 1 {
				return fmt.Errorf("--days must be at least 1")
			}
			logs := app.Store.RecentLogs(days)
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatLogs(logs, app.now(), days))
			return nil
		},
	}

	cmd.Flags().IntVar(&days, "days", domain.RecentLogDays, "How many days back to show")

	return cmd
}
