package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmptyAppData_EncodesEmptyArrays(t *testing.T) {
	raw, err := json.Marshal(EmptyAppData())
	require.NoError(t, err)
	assert.JSONEq(t, `{"exercises":[],"routines":[],"logs":[]}`, string(raw))
}

func TestNormalize_FillsNilSlices(t *testing.T) {
	var d AppData
	require.NoError(t, json.Unmarshal([]byte(`{"exercises":null,"routines":[{"id":"r","name":"x"}],"logs":[{"id":"l"}]}`), &d))

	n := d.Normalize()
	assert.NotNil(t, n.Exercises)
	assert.NotNil(t, n.Routines[0].Exercises)
	assert.NotNil(t, n.Logs[0].Exercises)

	raw, err := json.Marshal(n)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "null")
}

func TestClone_IsDeep(t *testing.T) {
	d := AppData{
		Exercises: []Exercise{{ID: "e", Name: "Scales"}},
		Routines:  []Routine{{ID: "r", Exercises: []RoutineExercise{{ExerciseID: "e", DurationMinutes: 5}}}},
		Logs:      []PracticeLog{{ID: "l", Exercises: []LoggedExercise{{ExerciseID: "e", Name: "Scales"}}}},
	}

	c := d.Clone()
	c.Exercises[0].Name = "changed"
	c.Routines[0].Exercises[0].DurationMinutes = 1
	c.Logs[0].Exercises[0].Name = "changed"

	assert.Equal(t, "Scales", d.Exercises[0].Name)
	assert.Equal(t, 5, d.Routines[0].Exercises[0].DurationMinutes)
	assert.Equal(t, "Scales", d.Logs[0].Exercises[0].Name)
}

func TestFindAndExerciseName(t *testing.T) {
	d := AppData{
		Exercises: []Exercise{{ID: "e1", Name: "Scales"}},
		Routines:  []Routine{{ID: "r1", Name: "Daily"}},
	}

	ex, ok := d.FindExercise("e1")
	require.True(t, ok)
	assert.Equal(t, "Scales", ex.Name)
	_, ok = d.FindExercise("missing")
	assert.False(t, ok)

	r, ok := d.FindRoutine("r1")
	require.True(t, ok)
	assert.Equal(t, "Daily", r.Name)
	_, ok = d.FindRoutine("missing")
	assert.False(t, ok)

	assert.Equal(t, "Scales", d.ExerciseName("e1"))
	assert.Equal(t, UnknownExerciseName, d.ExerciseName("gone"))
}

func TestRecentLogs(t *testing.T) {
	now := time.Date(2026, 5, 20, 12, 0, 0, 0, time.UTC)
	logs := []PracticeLog{
		{ID: "old", CompletedAt: now.AddDate(0, 0, -8)},
		{ID: "edge", CompletedAt: now.AddDate(0, 0, -7)},
		{ID: "yesterday", CompletedAt: now.AddDate(0, 0, -1)},
		{ID: "today", CompletedAt: now.Add(-time.Hour)},
	}

	got := RecentLogs(logs, now, 7)

	ids := make([]string, 0, len(got))
	for _, l := range got {
		ids = append(ids, l.ID)
	}
	assert.Equal(t, []string{"today", "yesterday", "edge"}, ids)
	assert.Equal(t, "old", logs[0].ID, "input order is untouched")
	assert.Empty(t, RecentLogs(nil, now, 7))
}
