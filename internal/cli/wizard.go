package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/alexanderramin/riff/internal/cli/formatter"
	"github.com/alexanderramin/riff/internal/domain"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

// riffHuhTheme returns a huh theme using the formatter palette.
func riffHuhTheme() *huh.Theme {
	t := huh.ThemeBase()

	t.Focused.Title = lipgloss.NewStyle().Foreground(formatter.ColorHeader).Bold(true)
	t.Focused.SelectSelector = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.SelectedOption = lipgloss.NewStyle().Foreground(formatter.ColorGreen)
	t.Focused.UnselectedOption = lipgloss.NewStyle().Foreground(formatter.ColorFg)
	t.Focused.FocusedButton = lipgloss.NewStyle().Foreground(formatter.ColorFg).Background(formatter.ColorHeader).Padding(0, 1)
	t.Focused.BlurredButton = lipgloss.NewStyle().Foreground(formatter.ColorDim).Padding(0, 1)
	t.Focused.TextInput.Cursor = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.TextInput.Prompt = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.TextInput.Text = lipgloss.NewStyle().Foreground(formatter.ColorFg)
	t.Focused.TextInput.Placeholder = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Focused.Description = lipgloss.NewStyle().Foreground(formatter.ColorDim)

	t.Blurred.Title = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.SelectSelector = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.SelectedOption = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.UnselectedOption = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.TextInput.Prompt = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.TextInput.Text = lipgloss.NewStyle().Foreground(formatter.ColorDim)

	return t
}

func themed(groups ...*huh.Group) *huh.Form {
	return huh.NewForm(groups...).WithTheme(riffHuhTheme()).WithShowHelp(false)
}

// exerciseForm collects an exercise name and an optional description.
func exerciseForm(name, description *string) *huh.Form {
	return themed(
		huh.NewGroup(
			huh.NewInput().
				Title("Exercise Name").
				Placeholder("C Major Scale").
				Value(name).
				Validate(validateRequired("a name")),
			huh.NewText().
				Title("Description").
				Description("Notes or reminders, optional").
				Value(description),
		),
	)
}

// routineNameForm collects a routine name.
func routineNameForm(name *string) *huh.Form {
	return themed(
		huh.NewGroup(
			huh.NewInput().
				Title("Routine Name").
				Placeholder("Morning Practice").
				Value(name).
				Validate(validateRequired("a name")),
		),
	)
}

// routinePickForm lets the user choose which library exercises belong in a
// routine, preselecting the current ones.
func routinePickForm(exercises []domain.Exercise, selected *[]string) *huh.Form {
	options := make([]huh.Option[string], 0, len(exercises))
	current := make(map[string]bool, len(*selected))
	for _, id := range *selected {
		current[id] = true
	}
	for _, ex := range exercises {
		options = append(options, huh.NewOption(ex.Name, ex.ID).Selected(current[ex.ID]))
	}
	return themed(
		huh.NewGroup(
			huh.NewMultiSelect[string]().
				Title("Exercises").
				Description("space to toggle, enter to continue").
				Options(options...).
				Value(selected),
		),
	)
}

// routineDurationsForm asks for the minutes of each chosen exercise. values
// holds one string per name and is updated in place.
func routineDurationsForm(names []string, values []string) *huh.Form {
	fields := make([]huh.Field, 0, len(names))
	for i, name := range names {
		fields = append(fields, huh.NewInput().
			Title(fmt.Sprintf("%s (minutes)", name)).
			Placeholder(strconv.Itoa(domain.DefaultDurationMinutes)).
			Value(&values[i]).
			Validate(validatePositiveInt))
	}
	return themed(huh.NewGroup(fields...))
}

// confirmForm asks a yes/no question.
func confirmForm(title string, result *bool) *huh.Form {
	return themed(
		huh.NewGroup(
			huh.NewConfirm().
				Title(title).
				Affirmative("Yes").
				Negative("No").
				Value(result),
		),
	)
}

func credentialsForm(email, password *string) *huh.Form {
	return themed(
		huh.NewGroup(
			huh.NewInput().
				Title("Email").
				Value(email).
				Validate(validateRequired("an email")),
			huh.NewInput().
				Title("Password").
				EchoMode(huh.EchoModePassword).
				Value(password).
				Validate(validateRequired("a password")),
		),
	)
}

func validateRequired(what string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("enter %s", what)
		}
		return nil
	}
}

// validatePositiveInt accepts empty or a positive integer.
func validatePositiveInt(s string) error {
	if s == "" {
		return nil
	}
	v, err := strconv.Atoi(s)
	if err != nil || v <= 0 {
		return fmt.Errorf("enter a positive number")
	}
	return nil
}

// parsePositiveInt parses s as a positive integer, returning fallback when s
// is empty or invalid.
func parsePositiveInt(s string, fallback int) int {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}
