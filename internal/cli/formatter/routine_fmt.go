package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/riff/internal/domain"
)

// FormatRoutineList renders routines with their exercise count and total
// planned time.
func FormatRoutineList(routines []domain.Routine) string {
	rows := make([][]string, 0, len(routines))
	for _, r := range routines {
		rows = append(rows, []string{
			TruncID(r.ID),
			StyleBold.Render(r.Name),
			Plural(len(r.Exercises), "exercise", "exercises"),
			StyleBlue.Render(FormatMinutes(r.TotalMinutes())),
		})
	}
	return RenderTable([]string{"ID", "NAME", "EXERCISES", "TOTAL"}, rows)
}

// FormatRoutineDetail renders a routine's ordered exercise list. Names are
// resolved against data; dangling references show as Unknown.
func FormatRoutineDetail(r domain.Routine, data domain.AppData) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s  %s\n", Dim("Total:"), StyleBlue.Render(FormatMinutes(r.TotalMinutes())))
	if len(r.Exercises) == 0 {
		b.WriteString(Dim("No exercises yet. Add some with: riff routine set " + r.ID[:min(8, len(r.ID))] + " --exercise ID:MINUTES"))
		return RenderBox(r.Name, b.String())
	}

	b.WriteString("\n")
	for i, re := range r.Exercises {
		name := data.ExerciseName(re.ExerciseID)
		style := StyleFg
		if name == domain.UnknownExerciseName {
			style = StyleRed
		}
		fmt.Fprintf(&b, "%2d. %s  %s\n", i+1, style.Render(name), Dim(fmt.Sprintf("%d min", re.DurationMinutes)))
		if ex, ok := data.FindExercise(re.ExerciseID); ok {
			if desc := Wrap(ex.Description, 64, 5); desc != "" {
				b.WriteString(Dim(desc))
				b.WriteString("\n")
			}
		}
	}
	return RenderBox(r.Name, strings.TrimRight(b.String(), "\n"))
}
