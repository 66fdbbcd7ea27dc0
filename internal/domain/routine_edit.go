package domain

// DefaultDurationMinutes is the duration given to an exercise added to a
// routine without an explicit one.
const DefaultDurationMinutes = 5

// WithExerciseAppended adds exerciseID at the end of the routine. It reports
// false and leaves the list alone when the exercise is already present.
func (r Routine) WithExerciseAppended(exerciseID string, minutes int) (Routine, bool) {
	for _, re := range r.Exercises {
		if re.ExerciseID == exerciseID {
			return r, false
		}
	}
	if minutes <= 0 {
		minutes = DefaultDurationMinutes
	}
	list := make([]RoutineExercise, 0, len(r.Exercises)+1)
	list = append(list, r.Exercises...)
	r.Exercises = append(list, RoutineExercise{ExerciseID: exerciseID, DurationMinutes: minutes})
	return r, true
}

// WithDuration sets the duration of every reference to exerciseID.
func (r Routine) WithDuration(exerciseID string, minutes int) Routine {
	list := append([]RoutineExercise{}, r.Exercises...)
	for i := range list {
		if list[i].ExerciseID == exerciseID {
			list[i].DurationMinutes = minutes
		}
	}
	r.Exercises = list
	return r
}

// Moved swaps the exercise at index with its neighbour delta positions away
// (-1 for up, +1 for down). It reports false when either position is out of
// range.
func (r Routine) Moved(index, delta int) (Routine, bool) {
	target := index + delta
	if index < 0 || index >= len(r.Exercises) || target < 0 || target >= len(r.Exercises) {
		return r, false
	}
	list := append([]RoutineExercise{}, r.Exercises...)
	list[index], list[target] = list[target], list[index]
	r.Exercises = list
	return r, true
}
