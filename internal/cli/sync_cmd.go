package cli

import (
	"errors"
	"fmt"

	"github.com/alexanderramin/riff/internal/cli/formatter"
	"github.com/alexanderramin/riff/internal/store"
	"github.com/spf13/cobra"
)

func newSyncCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Pull the latest data from the mirror",
		Long: `Pull the latest data from the mirror. The mirrored document replaces the
local data; when the mirror has nothing yet, the local data is uploaded.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.Accounts == nil {
				return fmt.Errorf("%w; set [mirror] enabled = true in the config file", store.ErrNoMirror)
			}
			out := cmd.OutOrStdout()

			err := app.ConnectSaved(cmd.Context())
			switch {
			case errors.Is(err, errOffline):
				fmt.Fprintln(out, formatter.StyleYellow.Render("Mirror unreachable; using local data."))
				return nil
			case err != nil:
				return err
			}

			printSynced(out, app.Store.Data())
			return nil
		},
	}
}
