// Package cli implements the riff command line: exercise and routine
// management, the live practice session, logs, backups and the mirror
// account commands.
package cli

import (
	"context"
	"log/slog"
	"time"

	"github.com/alexanderramin/riff/internal/db"
	"github.com/alexanderramin/riff/internal/domain"
	"github.com/alexanderramin/riff/internal/repository"
	"github.com/alexanderramin/riff/internal/session"
	"github.com/alexanderramin/riff/internal/store"
	"github.com/spf13/cobra"
)

// Accounts issues mirror identities. It is nil when no mirror is configured.
type Accounts interface {
	Register(ctx context.Context, email, password string) (domain.Identity, error)
	Login(ctx context.Context, email, password string) (domain.Identity, error)
	SignInAnonymously(ctx context.Context) (domain.Identity, error)
	SetToken(token string)
}

// App holds everything the commands need.
type App struct {
	Store    *store.Store
	KV       repository.KVRepo
	UoW      db.UnitOfWork
	Accounts Accounts
	Notifier session.Notifier
	Logger   *slog.Logger
	Now      func() time.Time

	// SyncTimeout bounds how long a command waits for the mirror's first
	// snapshot.
	SyncTimeout time.Duration

	// IsInteractive reports whether stdin is a terminal. Forms and the
	// session view are only used when it returns true.
	IsInteractive func() bool
}

func (a *App) now() time.Time {
	if a.Now == nil {
		return time.Now()
	}
	return a.Now()
}

func (a *App) logger() *slog.Logger {
	if a.Logger == nil {
		return slog.Default()
	}
	return a.Logger
}

func (a *App) interactive() bool {
	return a.IsInteractive != nil && a.IsInteractive()
}

// NewRootCmd creates the top-level "riff" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "riff",
		Short:         "Guitar practice routines with timed sessions",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newExerciseCmd(app),
		newRoutineCmd(app),
		newPracticeCmd(app),
		newLogCmd(app),
		newBackupCmd(app),
		newAccountCmd(app),
		newSyncCmd(app),
		newInfoCmd(),
	)

	return root
}
