package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/riff/internal/domain"
)

// SessionLine renders one exercise row of a session: checkbox, name, planned
// duration, countdown and state.
func SessionLine(ex domain.SessionExercise) string {
	box := "[ ]"
	name := StyleFg.Render(ex.Name)
	if ex.Completed {
		box = StyleGreen.Render("[x]")
		name = StyleStrike.Render(ex.Name)
	}
	timer := TimerStyle(ex.RemainingSeconds, ex.IsTimerRunning).Render(fmt.Sprintf("%5s", Clock(ex.RemainingSeconds)))
	return fmt.Sprintf("%s %s %s  %s  %s", box, name, Dim(fmt.Sprintf("(%d min)", ex.DurationMinutes)), timer, StatePill(ex.State()))
}

// SessionSummary renders a plain, non-interactive view of a session.
func SessionSummary(state domain.SessionState, completed int, totalRemaining int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", Header(state.RoutineName))
	fmt.Fprintf(&b, "%d of %d completed · Total time remaining: %s\n",
		completed, len(state.Exercises), Clock(totalRemaining))
	pct := 0.0
	if n := len(state.Exercises); n > 0 {
		pct = float64(completed) / float64(n)
	}
	fmt.Fprintf(&b, "%s\n\n", RenderProgress(pct, 30))
	for _, ex := range state.Exercises {
		b.WriteString(SessionLine(ex))
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}
