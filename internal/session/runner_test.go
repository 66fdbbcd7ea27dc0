package session

import (
	"context"
	"testing"
	"time"

	"github.com/alexanderramin/riff/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunner_AutoAdvancePlaysWholeRoutine(t *testing.T) {
	h := newHarness(t)
	catalog := []domain.Exercise{{ID: "e1", Name: "Scales"}, {ID: "e2", Name: "Chords"}}
	r := domain.Routine{ID: "r1", Name: "Quick", Exercises: []domain.RoutineExercise{
		{ExerciseID: "e1", DurationMinutes: 1},
		{ExerciseID: "e2", DurationMinutes: 1},
	}}
	e := h.mount(t, r, catalog)

	ticks := 0
	runner := NewRunner(e,
		WithInterval(time.Millisecond),
		WithAutoAdvance(),
		WithTickHook(func(*Engine) { ticks++ }),
	)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, runner.Run(ctx))

	assert.True(t, e.AllCompleted())
	assert.Equal(t, 120, ticks)
	assert.Equal(t, []string{"Scales", "Chords"}, h.notifier.finished)
	assert.Len(t, h.sink.logs, 1)
}

func TestRunner_StopsOnCancel(t *testing.T) {
	h := newHarness(t)
	r, catalog := twoExerciseRoutine()
	e := h.mount(t, r, catalog)
	require.NoError(t, e.Start(context.Background(), 0))

	ctx, cancel := context.WithCancel(context.Background())
	runner := NewRunner(e, WithInterval(time.Millisecond), WithTickHook(func(e *Engine) {
		if e.Exercises()[0].RemainingSeconds <= 110 {
			cancel()
		}
	}))

	err := runner.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 110, e.Exercises()[0].RemainingSeconds)
	assert.False(t, e.AllCompleted())
}

func TestRunner_AllDoneReturnsImmediately(t *testing.T) {
	h := newHarness(t)
	r, catalog := twoExerciseRoutine()
	e := h.mount(t, r, catalog)
	ctx := context.Background()
	require.NoError(t, e.ToggleComplete(ctx, 0))
	require.NoError(t, e.ToggleComplete(ctx, 1))

	require.NoError(t, NewRunner(e, WithAutoAdvance()).Run(ctx))
}
