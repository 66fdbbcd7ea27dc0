package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/alexanderramin/riff/internal/cli/formatter"
	"github.com/spf13/cobra"
)

var errNameRequired = errors.New("a name is required")

func newExerciseCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "exercise",
		Aliases: []string{"ex"},
		Short:   "Manage the exercise library",
	}

	cmd.AddCommand(
		newExerciseAddCmd(app),
		newExerciseListCmd(app),
		newExerciseShowCmd(app),
		newExerciseEditCmd(app),
		newExerciseRemoveCmd(app),
	)

	return cmd
}

func newExerciseAddCmd(app *App) *cobra.Command {
	var description string

	cmd := &cobra.Command{
		Use:   "add [NAME]",
		Short: "Add an exercise",
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
				if err := exerciseForm(&name, &description).Run(); err != nil {
					return err
				}
			}
			name = strings.TrimSpace(name)
			if name == "" {
				return errNameRequired
			}

			ex, err := app.Store.AddExercise(context.Background(), name, strings.TrimSpace(description))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added exercise %s %s\n", formatter.Bold(ex.Name), formatter.TruncID(ex.ID))
			return nil
		},
	}

	cmd.Flags().StringVarP(&description, "description", "d", "", "Notes or reminders")

	return cmd
}

func newExerciseListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List exercises",
		RunE: func(cmd *cobra.Command, args []string) error {
			exercises := app.Store.Data().Exercises
			if len(exercises) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No exercises yet. Add one with: riff exercise add NAME")
				return nil
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatExerciseList(exercises))
			return nil
		},
	}
}

func newExerciseShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show EXERCISE",
		Short: "Show an exercise with its full description",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ex, err := resolveExercise(app.Store.Data(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatExercise(ex))
			return nil
		},
	}
}

func newExerciseEditCmd(app *App) *cobra.Command {
	var name, description string

	cmd := &cobra.Command{
		Use:   "edit EXERCISE",
		Short: "Change an exercise's name or description",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ex, err := resolveExercise(app.Store.Data(), args[0])
			if err != nil {
				return err
			}

			nameSet := cmd.Flags().Changed("name")
			descSet := cmd.Flags().Changed("description")
			if !nameSet && !descSet {
				if !app.interactive() {
					return fmt.Errorf("nothing to change: pass --name or --description")
				}
				name, description = ex.Name, ex.Description
				if err := exerciseForm(&name, &description).Run(); err != nil {
					return err
				}
				nameSet, descSet = true, true
			}
			if nameSet {
				ex.Name = strings.TrimSpace(name)
			}
			if descSet {
				ex.Description = strings.TrimSpace(description)
			}
			if ex.Name == "" {
				return errNameRequired
			}

			if err := app.Store.UpdateExercise(context.Background(), ex.ID, ex.Name, ex.Description); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated exercise %s\n", formatter.Bold(ex.Name))
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "New name")
	cmd.Flags().StringVarP(&description, "description", "d", "", "New description")

	return cmd
}

func newExerciseRemoveCmd(app *App) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:     "remove EXERCISE",
		Aliases: []string{"rm"},
		Short:   "Delete an exercise and drop it from every routine",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data := app.Store.Data()
			ex, err := resolveExercise(data, args[0])
			if err != nil {
				return err
			}

			if !yes && app.interactive() {
				confirmed := false
				title := fmt.Sprintf("Delete %q? It will be removed from every routine.", ex.Name)
				if err := confirmForm(title, &confirmed).Run(); err != nil {
					return err
				}
				if !confirmed {
					fmt.Fprintln(cmd.OutOrStdout(), "Cancelled.")
					return nil
				}
			}

			if err := app.Store.DeleteExercise(context.Background(), ex.ID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted exercise %s\n", formatter.Bold(ex.Name))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip confirmation")

	return cmd
}
