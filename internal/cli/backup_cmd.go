package cli

import (
	"fmt"
	"os"

	"github.com/alexanderramin/riff/internal/cli/formatter"
	"github.com/spf13/cobra"
)

// backupFileName is the default export file for the given day.
func backupFileName(date string) string {
	return "guitar-practice-backup-" + date + ".json"
}

func newBackupCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Export or restore all data as a JSON file",
	}

	cmd.AddCommand(
		newBackupExportCmd(app),
		newBackupImportCmd(app),
	)

	return cmd
}

func newBackupExportCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "export [FILE]",
		Short: "Write exercises, routines and logs to a backup file",
		Long: `Write exercises, routines and logs to a backup file. FILE defaults to
guitar-practice-backup-YYYY-MM-DD.json in the current directory; use "-" to
write to standard output.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := app.Store.ExportSnapshot()
			if err != nil {
				return err
			}

			path := backupFileName(app.now().Format("2006-01-02"))
			if len(args) == 1 {
				path = args[0]
			}
			if path == "-" {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), string(raw))
				return err
			}

			if err := os.WriteFile(path, append(raw, '\n'), 0o644); err != nil {
				return fmt.Errorf("writing backup: %w", err)
			}
			data := app.Store.Data()
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %s, %s and %s to %s\n",
				formatter.Plural(len(data.Exercises), "exercise", "exercises"),
				formatter.Plural(len(data.Routines), "routine", "routines"),
				formatter.Plural(len(data.Logs), "log", "logs"),
				formatter.Bold(path))
			return nil
		},
	}
}

func newBackupImportCmd(app *App) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Replace all data with the contents of a backup file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("reading backup: %w", err)
			}

			if !yes && app.interactive() {
				confirmed := false
				if err := confirmForm("Replace all exercises, routines and logs with this backup?", &confirmed).Run(); err != nil {
					return err
				}
				if !confirmed {
					fmt.Fprintln(cmd.OutOrStdout(), "Import cancelled.")
					return nil
				}
			}

			if err := app.Store.ImportSnapshot(cmd.Context(), raw); err != nil {
				return err
			}
			data := app.Store.Data()
			fmt.Fprintf(cmd.OutOrStdout(), "Data imported successfully: %s, %s and %s\n",
				formatter.Plural(len(data.Exercises), "exercise", "exercises"),
				formatter.Plural(len(data.Routines), "routine", "routines"),
				formatter.Plural(len(data.Logs), "log", "logs"))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip confirmation")

	return cmd
}
