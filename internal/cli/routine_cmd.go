package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/alexanderramin/riff/internal/cli/formatter"
	"github.com/alexanderramin/riff/internal/domain"
	"github.com/spf13/cobra"
)

func newRoutineCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "routine",
		Short: "Build and edit practice routines",
	}

	cmd.AddCommand(
		newRoutineAddCmd(app),
		newRoutineListCmd(app),
		newRoutineShowCmd(app),
		newRoutineRenameCmd(app),
		newRoutineSetCmd(app),
		newRoutineAddExerciseCmd(app),
		newRoutineDropExerciseCmd(app),
		newRoutineDurationCmd(app),
		newRoutineMoveCmd(app),
		newRoutineRemoveCmd(app),
	)

	return cmd
}

func newRoutineAddCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "add [NAME]",
		Short: "Create an empty routine",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := ""
			if len(args) == 1 {
				name = args[0]
			}
			if strings.TrimSpace(name) == "" {
				if !app.interactive() {
					return errNameRequired
				}
				if err := routineNameForm(&name).Run(); err != nil {
					return err
				}
			}
			name = strings.TrimSpace(name)
			if name == "" {
				return errNameRequired
			}

			r, err := app.Store.AddRoutine(context.Background(), name)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added routine %s %s\n", formatter.Bold(r.Name), formatter.TruncID(r.ID))
			return nil
		},
	}
}

func newRoutineListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List routines",
		RunE: func(cmd *cobra.Command, args []string) error {
			routines := app.Store.Data().Routines
			if len(routines) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No routines yet. Create one with: riff routine add NAME")
				return nil
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatRoutineList(routines))
			return nil
		},
	}
}

func newRoutineShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show ROUTINE",
		Short: "Show a routine's exercises in order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data := app.Store.Data()
			r, err := resolveRoutine(data, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatRoutineDetail(r, data))
			return nil
		},
	}
}

func newRoutineRenameCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "rename ROUTINE NAME",
		Short: "Rename a routine",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := resolveRoutine(app.Store.Data(), args[0])
			if err != nil {
				return err
			}
			name := strings.TrimSpace(args[1])
			if name == "" {
				return errNameRequired
			}
			if err := app.Store.UpdateRoutine(context.Background(), r.ID, domain.RoutinePatch{Name: &name}); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Renamed %s to %s\n", r.Name, formatter.Bold(name))
			return nil
		},
	}
}

// parseRoutineEntry parses EXERCISE[:MINUTES]. The exercise part may be an
// id, id prefix or name; the minutes default to DefaultDurationMinutes.
// Text after the last colon counts as minutes only when it is a number.
func parseRoutineEntry(data domain.AppData, entry string) (domain.RoutineExercise, error) {
	ref, minutes := entry, domain.DefaultDurationMinutes
	if i := strings.LastIndex(entry, ":"); i >= 0 {
		m, err := strconv.Atoi(strings.TrimSpace(entry[i+1:]))
		switch {
		case err == nil && m > 0:
			ref, minutes = entry[:i], m
		case err == nil:
			return domain.RoutineExercise{}, fmt.Errorf("invalid minutes in %q: want a positive number", entry)
		default:
			// A name such as "Song: intro" with no minutes.
			if _, nameErr := resolveExercise(data, entry); nameErr != nil {
				return domain.RoutineExercise{}, fmt.Errorf("invalid minutes in %q: want a positive number", entry)
			}
		}
	}
	ex, err := resolveExercise(data, ref)
	if err != nil {
		return domain.RoutineExercise{}, err
	}
	return domain.RoutineExercise{ExerciseID: ex.ID, DurationMinutes: minutes}, nil
}

func (a *App) saveRoutineExercises(ctx context.Context, r domain.Routine) error {
	list := r.Exercises
	return a.Store.UpdateRoutine(ctx, r.ID, domain.RoutinePatch{Exercises: &list})
}

func newRoutineSetCmd(app *App) *cobra.Command {
	var entries []string

	cmd := &cobra.Command{
		Use:   "set ROUTINE",
		Short: "Replace a routine's exercise list",
		Long: `Replace a routine's exercise list. Each --exercise takes EXERCISE[:MINUTES]
where EXERCISE is an id, an id prefix or a name; minutes default to 5.
Without --exercise an interactive picker is shown.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data := app.Store.Data()
			r, err := resolveRoutine(data, args[0])
			if err != nil {
				return err
			}

			var list []domain.RoutineExercise
			if len(entries) > 0 {
				for _, entry := range entries {
					re, err := parseRoutineEntry(data, entry)
					if err != nil {
						return err
					}
					list = append(list, re)
				}
			} else {
				if !app.interactive() {
					return fmt.Errorf("pass at least one --exercise EXERCISE[:MINUTES]")
				}
				list, err = pickRoutineExercises(data, r)
				if err != nil {
					return err
				}
			}

			r.Exercises = list
			if err := app.saveRoutineExercises(context.Background(), r); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Routine %s now has %s (%s)\n",
				formatter.Bold(r.Name),
				formatter.Plural(len(list), "exercise", "exercises"),
				formatter.FormatMinutes(r.TotalMinutes()))
			return nil
		},
	}

	cmd.Flags().StringArrayVarP(&entries, "exercise", "e", nil, "EXERCISE[:MINUTES], repeatable, in order")

	return cmd
}

// pickRoutineExercises runs the selection and duration forms. Exercises that
// stay selected keep their current duration as the default.
func pickRoutineExercises(data domain.AppData, r domain.Routine) ([]domain.RoutineExercise, error) {
	if len(data.Exercises) == 0 {
		return nil, fmt.Errorf("the exercise library is empty, add exercises first")
	}

	selected := make([]string, 0, len(r.Exercises))
	current := make(map[string]int, len(r.Exercises))
	for _, re := range r.Exercises {
		if _, seen := current[re.ExerciseID]; !seen {
			selected = append(selected, re.ExerciseID)
		}
		current[re.ExerciseID] = re.DurationMinutes
	}
	if err := routinePickForm(data.Exercises, &selected).Run(); err != nil {
		return nil, err
	}

	names := make([]string, len(selected))
	values := make([]string, len(selected))
	for i, id := range selected {
		names[i] = data.ExerciseName(id)
		if m, ok := current[id]; ok {
			values[i] = strconv.Itoa(m)
		}
	}
	if len(selected) > 0 {
		if err := routineDurationsForm(names, values).Run(); err != nil {
			return nil, err
		}
	}

	list := make([]domain.RoutineExercise, 0, len(selected))
	for i, id := range selected {
		list = append(list, domain.RoutineExercise{
			ExerciseID:      id,
			DurationMinutes: parsePositiveInt(values[i], domain.DefaultDurationMinutes),
		})
	}
	return list, nil
}

func newRoutineAddExerciseCmd(app *App) *cobra.Command {
	var minutes int

	cmd := &cobra.Command{
		Use:   "add-exercise ROUTINE EXERCISE",
		Short: "Append an exercise to a routine",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if minutes <= 0 {
				return fmt.Errorf("--minutes must be positive")
			}
			data := app.Store.Data()
			r, err := resolveRoutine(data, args[0])
			if err != nil {
				return err
			}
			ex, err := resolveExercise(data, args[1])
			if err != nil {
				return err
			}

			next, added := r.WithExerciseAppended(ex.ID, minutes)
			if !added {
				return fmt.Errorf("%s is already in %s", ex.Name, r.Name)
			}
			if err := app.saveRoutineExercises(context.Background(), next); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %s to %s (%d min)\n", formatter.Bold(ex.Name), r.Name, minutes)
			return nil
		},
	}

	cmd.Flags().IntVarP(&minutes, "minutes", "m", domain.DefaultDurationMinutes, "Duration in minutes")

	return cmd
}

func newRoutineDropExerciseCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "drop-exercise ROUTINE EXERCISE",
		Short: "Remove an exercise from a routine",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			data := app.Store.Data()
			r, err := resolveRoutine(data, args[0])
			if err != nil {
				return err
			}
			ex, err := resolveExercise(data, args[1])
			if err != nil {
				return err
			}

			next := r.WithoutExercise(ex.ID)
			if len(next.Exercises) == len(r.Exercises) {
				return fmt.Errorf("%s is not in %s", ex.Name, r.Name)
			}
			if err := app.saveRoutineExercises(context.Background(), next); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %s from %s\n", formatter.Bold(ex.Name), r.Name)
			return nil
		},
	}
}

func newRoutineDurationCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "duration ROUTINE EXERCISE MINUTES",
		Short: "Change how long an exercise runs in a routine",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			minutes, err := strconv.Atoi(args[2])
			if err != nil || minutes <= 0 {
				return fmt.Errorf("invalid minutes %q: want a positive number", args[2])
			}
			data := app.Store.Data()
			r, err := resolveRoutine(data, args[0])
			if err != nil {
				return err
			}
			ex, err := resolveExercise(data, args[1])
			if err != nil {
				return err
			}

			if err := app.saveRoutineExercises(context.Background(), r.WithDuration(ex.ID, minutes)); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s in %s is now %d min\n", formatter.Bold(ex.Name), r.Name, minutes)
			return nil
		},
	}
}

func newRoutineMoveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "move ROUTINE POSITION up|down",
		Short: "Move the exercise at POSITION (1-based) up or down",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			pos, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid position %q", args[1])
			}
			var delta int
			switch strings.ToLower(args[2]) {
			case "up":
				delta = -1
			case "down":
				delta = 1
			default:
				return fmt.Errorf("direction must be up or down, got %q", args[2])
			}

			data := app.Store.Data()
			r, err := resolveRoutine(data, args[0])
			if err != nil {
				return err
			}
			next, ok := r.Moved(pos-1, delta)
			if !ok {
				return fmt.Errorf("cannot move position %d %s in a routine of %d", pos, args[2], len(r.Exercises))
			}
			if err := app.saveRoutineExercises(context.Background(), next); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatRoutineDetail(next, data))
			return nil
		},
	}
}

func newRoutineRemoveCmd(app *App) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:     "remove ROUTINE",
		Aliases: []string{"rm"},
		Short:   "Delete a routine",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := resolveRoutine(app.Store.Data(), args[0])
			if err != nil {
				return err
			}

			if !yes && app.interactive() {
				confirmed := false
				if err := confirmForm(fmt.Sprintf("Delete routine %q?", r.Name), &confirmed).Run(); err != nil {
					return err
				}
				if !confirmed {
					fmt.Fprintln(cmd.OutOrStdout(), "Cancelled.")
					return nil
				}
			}

			if err := app.Store.DeleteRoutine(context.Background(), r.ID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted routine %s\n", formatter.Bold(r.Name))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip confirmation")

	return cmd
}
