package formatter

import (
	"strings"

	"github.com/alexanderramin/riff/internal/domain"
	"github.com/muesli/reflow/truncate"
)

const descriptionColumnWidth = 48

// FormatExerciseList renders the exercise library as a table.
func FormatExerciseList(exercises []domain.Exercise) string {
	rows := make([][]string, 0, len(exercises))
	for _, ex := range exercises {
		desc := strings.Join(strings.Fields(ex.Description), " ")
		rows = append(rows, []string{
			TruncID(ex.ID),
			StyleBold.Render(ex.Name),
			Dim(truncate.StringWithTail(desc, descriptionColumnWidth, "…")),
		})
	}
	return RenderTable([]string{"ID", "NAME", "DESCRIPTION"}, rows)
}

// FormatExercise renders one exercise with its wrapped description.
func FormatExercise(ex domain.Exercise) string {
	var b strings.Builder
	b.WriteString(StyleBold.Render(ex.Name))
	b.WriteString("  ")
	b.WriteString(TruncID(ex.ID))
	if desc := Wrap(ex.Description, 72, 2); desc != "" {
		b.WriteString("\n")
		b.WriteString(Dim(desc))
	}
	return b.String()
}
