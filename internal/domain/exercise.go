package domain

// UnknownExerciseName is shown in place of an exercise that no longer exists.
const UnknownExerciseName = "Unknown"

type Exercise struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// RoutineExercise references an Exercise from inside a Routine. The order of
// a routine's references is the order exercises are presented in a session.
type RoutineExercise struct {
	ExerciseID      string `json:"exerciseId"`
	DurationMinutes int    `json:"durationMinutes"`
}

// DurationSeconds returns the configured duration in seconds.
func (re RoutineExercise) DurationSeconds() int {
	return re.DurationMinutes * 60
}

type Routine struct {
	ID        string            `json:"id"`
	Name      string            `json:"name"`
	Exercises []RoutineExercise `json:"exercises"`
}

// TotalMinutes sums the configured durations of every exercise in the routine.
func (r Routine) TotalMinutes() int {
	total := 0
	for _, re := range r.Exercises {
		total += re.DurationMinutes
	}
	return total
}

// WithoutExercise returns a copy of the routine with every reference to
// exerciseID removed. Other references keep their relative order.
func (r Routine) WithoutExercise(exerciseID string) Routine {
	kept := make([]RoutineExercise, 0, len(r.Exercises))
	for _, re := range r.Exercises {
		if re.ExerciseID != exerciseID {
			kept = append(kept, re)
		}
	}
	r.Exercises = kept
	return r
}

// RoutinePatch carries the fields to merge into a Routine. Nil fields are left
// untouched; Exercises replaces the whole list when set.
type RoutinePatch struct {
	Name      *string
	Exercises *[]RoutineExercise
}

// Apply returns r with the patch merged in.
func (p RoutinePatch) Apply(r Routine) Routine {
	if p.Name != nil {
		r.Name = *p.Name
	}
	if p.Exercises != nil {
		r.Exercises = append([]RoutineExercise{}, (*p.Exercises)...)
	}
	return r
}
