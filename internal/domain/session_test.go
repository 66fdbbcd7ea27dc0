package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSessionExercise_State(t *testing.T) {
	cases := []struct {
		name string
		ex   SessionExercise
		want ExerciseState
	}{
		{"idle", SessionExercise{}, ExerciseIdle},
		{"running", SessionExercise{IsTimerRunning: true}, ExerciseRunning},
		{"completed", SessionExercise{Completed: true}, ExerciseCompleted},
		{"completed wins over running", SessionExercise{Completed: true, IsTimerRunning: true}, ExerciseCompleted},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.ex.State())
		})
	}
}

func TestNewSessionExercises(t *testing.T) {
	catalog := []Exercise{{ID: "e1", Name: "Scales"}, {ID: "e2", Name: "Chords"}}
	r := Routine{ID: "r", Exercises: []RoutineExercise{
		{ExerciseID: "e2", DurationMinutes: 3},
		{ExerciseID: "gone", DurationMinutes: 1},
		{ExerciseID: "e2", DurationMinutes: 2},
	}}

	got := NewSessionExercises(r, catalog)

	assert.Equal(t, []SessionExercise{
		{ExerciseID: "e2", Name: "Chords", DurationMinutes: 3, RemainingSeconds: 180},
		{ExerciseID: "gone", Name: UnknownExerciseName, DurationMinutes: 1, RemainingSeconds: 60},
		{ExerciseID: "e2", Name: "Chords", DurationMinutes: 2, RemainingSeconds: 120},
	}, got)
	assert.Equal(t, 180, got[0].FullSeconds())
	assert.NotNil(t, NewSessionExercises(Routine{}, nil))
}
