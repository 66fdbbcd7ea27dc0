package domain

// ExerciseState is the timer state of one exercise inside a running session.
type ExerciseState string

const (
	ExerciseIdle      ExerciseState = "idle"
	ExerciseRunning   ExerciseState = "running"
	ExerciseCompleted ExerciseState = "completed"
)

// SessionExercise is the live, per-session view of a routine exercise.
type SessionExercise struct {
	ExerciseID       string `json:"exerciseId"`
	Name             string `json:"name"`
	DurationMinutes  int    `json:"durationMinutes"`
	Completed        bool   `json:"completed"`
	IsTimerRunning   bool   `json:"isTimerRunning"`
	RemainingSeconds int    `json:"remainingSeconds"`
}

// State derives the timer state from the stored flags.
func (se SessionExercise) State() ExerciseState {
	switch {
	case se.Completed:
		return ExerciseCompleted
	case se.IsTimerRunning:
		return ExerciseRunning
	default:
		return ExerciseIdle
	}
}

// FullSeconds is the configured duration in seconds.
func (se SessionExercise) FullSeconds() int {
	return se.DurationMinutes * 60
}

// SessionState is the persisted envelope that lets a session survive restarts.
// Date is the local calendar day in YYYY-MM-DD form.
type SessionState struct {
	RoutineID   string            `json:"routineId"`
	RoutineName string            `json:"routineName"`
	Date        string            `json:"date"`
	Exercises   []SessionExercise `json:"exercises"`
}

// DateLayout is the calendar-day layout used for session dates.
const DateLayout = "2006-01-02"

// NewSessionExercises builds a fresh session list from a routine definition,
// resolving exercise names against the given catalog.
func NewSessionExercises(r Routine, catalog []Exercise) []SessionExercise {
	names := make(map[string]string, len(catalog))
	for _, ex := range catalog {
		names[ex.ID] = ex.Name
	}
	out := make([]SessionExercise, 0, len(r.Exercises))
	for _, re := range r.Exercises {
		name, ok := names[re.ExerciseID]
		if !ok {
			name = UnknownExerciseName
		}
		out = append(out, SessionExercise{
			ExerciseID:       re.ExerciseID,
			Name:             name,
			DurationMinutes:  re.DurationMinutes,
			RemainingSeconds: re.DurationSeconds(),
		})
	}
	return out
}
