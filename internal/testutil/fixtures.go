package testutil

import (
	"time"

	"github.com/alexanderramin/riff/internal/domain"
	"github.com/google/uuid"
)

// Exercise options
type ExerciseOption func(*domain.Exercise)

func WithDescription(desc string) ExerciseOption {
	return func(e *domain.Exercise) {
		e.Description = desc
	}
}

func NewTestExercise(name string, opts ...ExerciseOption) domain.Exercise {
	e := domain.Exercise{
		ID:   uuid.New().String(),
		Name: name,
	}
	for _, opt := range opts {
		opt(&e)
	}
	return e
}

// Routine options
type RoutineOption func(*domain.Routine)

// WithRoutineExercise appends a reference to exerciseID lasting minutes.
func WithRoutineExercise(exerciseID string, minutes int) RoutineOption {
	return func(r *domain.Routine) {
		r.Exercises = append(r.Exercises, domain.RoutineExercise{ExerciseID: exerciseID, DurationMinutes: minutes})
	}
}

func NewTestRoutine(name string, opts ...RoutineOption) domain.Routine {
	r := domain.Routine{
		ID:        uuid.New().String(),
		Name:      name,
		Exercises: []domain.RoutineExercise{},
	}
	for _, opt := range opts {
		opt(&r)
	}
	return r
}

// Log options
type LogOption func(*domain.PracticeLog)

func WithCompletedAt(t time.Time) LogOption {
	return func(l *domain.PracticeLog) {
		l.CompletedAt = t.UTC()
	}
}

func WithLoggedExercise(name string, minutes int) LogOption {
	return func(l *domain.PracticeLog) {
		l.Exercises = append(l.Exercises, domain.LoggedExercise{
			ExerciseID:      uuid.New().String(),
			Name:            name,
			DurationMinutes: minutes,
		})
		l.TotalDurationMinutes += minutes
	}
}

func NewTestLog(routine domain.Routine, opts ...LogOption) domain.PracticeLog {
	l := domain.PracticeLog{
		ID:          uuid.New().String(),
		RoutineID:   routine.ID,
		RoutineName: routine.Name,
		CompletedAt: time.Now().UTC(),
		Exercises:   []domain.LoggedExercise{},
	}
	for _, opt := range opts {
		opt(&l)
	}
	return l
}
