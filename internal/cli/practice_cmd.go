package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/alexanderramin/riff/internal/cli/formatter"
	"github.com/alexanderramin/riff/internal/domain"
	"github.com/alexanderramin/riff/internal/session"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

// notifiers fans one finished exercise out to several notifiers.
type notifiers []session.Notifier

func (ns notifiers) ExerciseFinished(name string) {
	for _, n := range ns {
		if n != nil {
			n.ExerciseFinished(name)
		}
	}
}

type printNotifier struct{ w io.Writer }

func (p printNotifier) ExerciseFinished(name string) {
	fmt.Fprintf(p.w, "%s %s finished\n", formatter.StyleGreen.Render("✔"), formatter.Bold(name))
}

// mountSession opens the session for r, resuming today's saved progress.
func (a *App) mountSession(ctx context.Context, r domain.Routine, catalog []domain.Exercise, extra ...session.Notifier) (*session.Engine, error) {
	return session.Mount(ctx, session.Deps{
		KV:       a.KV,
		UoW:      a.UoW,
		Logs:     a.Store,
		Notifier: append(notifiers{a.Notifier}, extra...),
		Now:      a.now,
		Logger:   a.logger(),
	}, r, catalog)
}

func (a *App) offline() bool {
	return a.Accounts != nil && !a.Store.Online()
}

func newPracticeCmd(app *App) *cobra.Command {
	var (
		reset bool
		plain bool
		tick  time.Duration
	)

	cmd := &cobra.Command{
		Use:   "practice ROUTINE",
		Short: "Run a timed practice session for a routine",
		Long: `Run a timed practice session. Progress is saved after every change and
resumed when the same routine is practiced again on the same day.

In the session view: space starts or pauses the selected exercise, x checks
it off, r resets the session and q ends it. Without a terminal, or with
--plain, the routine plays through unattended.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()
			out := cmd.OutOrStdout()

			data := app.Store.Data()
			r, err := resolveRoutine(data, args[0])
			if err != nil {
				return err
			}

			headless := plain || !app.interactive()
			var extra []session.Notifier
			if headless {
				extra = append(extra, printNotifier{w: out})
			}
			engine, err := app.mountSession(ctx, r, data.Exercises, extra...)
			if err != nil {
				return err
			}
			if reset {
				if err := engine.Reset(ctx); err != nil {
					return err
				}
			} else if engine.Restored() {
				fmt.Fprintln(out, formatter.Dim("Resuming today's session."))
			}

			if headless {
				return runHeadless(ctx, out, engine, tick)
			}

			view := newPracticeView(ctx, engine, tick, app.offline)
			program := tea.NewProgram(view, tea.WithAltScreen())
			// Listeners may fire from inside Update, so Send must not block it.
			unwatch := app.Store.OnChange(func(d domain.AppData) { go program.Send(libraryChangedMsg(d)) })
			defer unwatch()
			if _, err := program.Run(); err != nil {
				return fmt.Errorf("running session view: %w", err)
			}
			fmt.Fprintln(out, formatter.SessionSummary(engine.State(), engine.CompletedCount(), engine.TotalRemainingSeconds()))
			return nil
		},
	}

	cmd.Flags().BoolVar(&reset, "reset", false, "Discard saved progress and start over")
	cmd.Flags().BoolVar(&plain, "plain", false, "Play the routine through without the interactive view")
	cmd.Flags().DurationVar(&tick, "tick", session.TickInterval, "Length of one timer second")
	_ = cmd.Flags().MarkHidden("tick")

	return cmd
}

// runHeadless plays every unfinished exercise in order until the routine is
// done or ctx is cancelled. Progress is saved either way.
func runHeadless(ctx context.Context, out io.Writer, engine *session.Engine, tick time.Duration) error {
	if engine.Len() == 0 {
		fmt.Fprintln(out, "This routine has no exercises.")
		return nil
	}
	fmt.Fprintln(out, formatter.SessionSummary(engine.State(), engine.CompletedCount(), engine.TotalRemainingSeconds()))
	fmt.Fprintln(out)

	runner := session.NewRunner(engine, session.WithInterval(tick), session.WithAutoAdvance())
	err := runner.Run(ctx)
	switch {
	case errors.Is(err, context.Canceled):
		fmt.Fprintln(out, "Session paused. Run the same command to resume.")
		return nil
	case err != nil:
		return err
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, formatter.SessionSummary(engine.State(), engine.CompletedCount(), engine.TotalRemainingSeconds()))
	if engine.AllCompleted() {
		fmt.Fprintln(out, formatter.StyleGreen.Render("Session complete."))
	}
	return nil
}
