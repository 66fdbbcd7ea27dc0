package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/alexanderramin/riff/internal/cli/formatter"
	"github.com/alexanderramin/riff/internal/domain"
	"github.com/alexanderramin/riff/internal/store"
	"github.com/spf13/cobra"
)

var errCredentials = errors.New("email and password are required")

func newAccountCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "account",
		Short: "Sign in to a mirror server to share data across devices",
		Long: `Sign in to a mirror server to share data across devices.

While signed in, every change is pushed to the mirror and changes made on
other devices replace the local data. Without a connection riff keeps
working from local storage.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if app.Accounts == nil {
				return fmt.Errorf("%w; set [mirror] enabled = true in the config file", store.ErrNoMirror)
			}
			return nil
		},
	}

	cmd.AddCommand(
		newAccountSignInCmd(app, "register", "Create an account and sign in", app.register),
		newAccountSignInCmd(app, "login", "Sign in with email and password", app.login),
		newAccountAnonymousCmd(app),
		newAccountLogoutCmd(app),
		newAccountStatusCmd(app),
	)

	return cmd
}

func (a *App) register(ctx context.Context, email, password string) (domain.Identity, error) {
	return a.Accounts.Register(ctx, email, password)
}

func (a *App) login(ctx context.Context, email, password string) (domain.Identity, error) {
	return a.Accounts.Login(ctx, email, password)
}

type signInFunc func(ctx context.Context, email, password string) (domain.Identity, error)

func newAccountSignInCmd(app *App, use, short string, signIn signInFunc) *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if (email == "" || password == "") && app.interactive() {
				if err := credentialsForm(&email, &password).Run(); err != nil {
					return err
				}
			}
			email = strings.TrimSpace(email)
			if email == "" || password == "" {
				return errCredentials
			}

			id, err := signIn(cmd.Context(), email, password)
			if err != nil {
				return err
			}
			return app.adopt(cmd.Context(), cmd.OutOrStdout(), id)
		},
	}

	cmd.Flags().StringVarP(&email, "email", "e", "", "Account email")
	cmd.Flags().StringVarP(&password, "password", "p", "", "Account password")

	return cmd
}

func newAccountAnonymousCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "anonymous",
		Short: "Sign in without an account",
		Long: `Sign in without an account. The identity lives only on this device, so
data mirrored under it cannot be reached from anywhere else.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := app.Accounts.SignInAnonymously(cmd.Context())
			if err != nil {
				return err
			}
			return app.adopt(cmd.Context(), cmd.OutOrStdout(), id)
		},
	}
}

// adopt saves id, connects the store and reports what the mirror delivered.
func (a *App) adopt(ctx context.Context, out io.Writer, id domain.Identity) error {
	a.Store.Disconnect()
	if err := a.saveIdentity(ctx, id); err != nil {
		return err
	}
	fmt.Fprintf(out, "Signed in as %s\n", formatter.Bold(identityLabel(id)))

	if err := a.connect(ctx, id); err != nil {
		if errors.Is(err, errOffline) {
			fmt.Fprintln(out, formatter.StyleYellow.Render("Mirror unreachable; changes stay on this device until the next sync."))
			return nil
		}
		return err
	}
	printSynced(out, a.Store.Data())
	return nil
}

func newAccountLogoutCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Stop mirroring and forget the saved identity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app.Store.Disconnect()
			app.Accounts.SetToken("")
			if err := app.clearIdentity(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Signed out. Local data was kept.")
			return nil
		},
	}
}

func newAccountStatusCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the signed-in identity and mirror connectivity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			network := formatter.StyleGreen.Render("online")
			if !app.Store.Online() {
				network = formatter.StyleRed.Render("offline")
			}
			fmt.Fprintf(out, "Mirror:    %s\n", network)

			id, ok, err := app.loadIdentity(cmd.Context())
			if err != nil {
				return err
			}
			if !ok {
				fmt.Fprintf(out, "Identity:  %s\n", formatter.Dim("not signed in"))
				return nil
			}
			fmt.Fprintf(out, "Identity:  %s %s\n", identityLabel(id), formatter.TruncID(id.UserID))

			connected := formatter.Dim("no")
			if _, live := app.Store.Identity(); live {
				connected = formatter.StyleGreen.Render("yes")
			}
			fmt.Fprintf(out, "Connected: %s\n", connected)
			return nil
		},
	}
}

func identityLabel(id domain.Identity) string {
	if id.Anonymous || id.Email == "" {
		return "anonymous"
	}
	return id.Email
}

func printSynced(out io.Writer, data domain.AppData) {
	fmt.Fprintf(out, "Synced: %s, %s and %s\n",
		formatter.Plural(len(data.Exercises), "exercise", "exercises"),
		formatter.Plural(len(data.Routines), "routine", "routines"),
		formatter.Plural(len(data.Logs), "log", "logs"))
}
