package formatter

import (
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/riff/internal/domain"
)

// FormatLogs renders completed sessions, expected newest first, with dates
// relative to now.
func FormatLogs(logs []domain.PracticeLog, now time.Time, days int) string {
	if len(logs) == 0 {
		return StyleBold.Render("No practice logs yet") + "\n" + Dim("Complete a routine to see it logged here!")
	}

	var b strings.Builder
	b.WriteString(Dim(fmt.Sprintf("Showing %s from the past %d days",
		Plural(len(logs), "completed session", "completed sessions"), days)))
	b.WriteString("\n")

	for _, l := range logs {
		b.WriteString("\n")
		fmt.Fprintf(&b, "%s  %s\n", StyleBold.Render(l.RoutineName), Dim(LogDate(l.CompletedAt, now)))
		fmt.Fprintf(&b, "  %s · %s\n",
			StyleBlue.Render(fmt.Sprintf("%d min", l.TotalDurationMinutes)),
			Plural(len(l.Exercises), "exercise", "exercises"))
		for _, ex := range l.Exercises {
			fmt.Fprintf(&b, "    - %s %s\n", ex.Name, Dim(fmt.Sprintf("- %d min", ex.DurationMinutes)))
		}
	}
	return strings.TrimRight(b.String(), "\n")
}
