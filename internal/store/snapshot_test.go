package store

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/alexanderramin/riff/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedStore(t *testing.T, s *Store) {
	t.Helper()
	ctx := context.Background()
	ex, err := s.AddExercise(ctx, "C Major Scale", "two octaves")
	require.NoError(t, err)
	r, err := s.AddRoutine(ctx, "Morning")
	require.NoError(t, err)
	list := []domain.RoutineExercise{{ExerciseID: ex.ID, DurationMinutes: 5}}
	require.NoError(t, s.UpdateRoutine(ctx, r.ID, domain.RoutinePatch{Exercises: &list}))
	_, err = s.AddLog(ctx, domain.LogInput{
		RoutineID:            r.ID,
		RoutineName:          r.Name,
		Exercises:            []domain.LoggedExercise{{ExerciseID: ex.ID, Name: ex.Name, DurationMinutes: 5}},
		TotalDurationMinutes: 5,
	})
	require.NoError(t, err)
}

func TestExportImport_RoundTrip(t *testing.T) {
	src, _ := newTestStore(t)
	seedStore(t, src)

	raw, err := src.ExportSnapshot()
	require.NoError(t, err)

	dst, _ := newTestStore(t)
	_, err = dst.AddExercise(context.Background(), "to be replaced", "")
	require.NoError(t, err)

	require.NoError(t, dst.ImportSnapshot(context.Background(), raw))
	assert.Equal(t, src.Data(), dst.Data())
}

func TestExportSnapshot_IndentedWithAllKeys(t *testing.T) {
	s, _ := newTestStore(t)

	raw, err := s.ExportSnapshot()
	require.NoError(t, err)

	assert.Contains(t, string(raw), "\n  \"exercises\": []")
	var fields map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw, &fields))
	assert.Contains(t, fields, "exercises")
	assert.Contains(t, fields, "routines")
	assert.Contains(t, fields, "logs")
}

func TestImportSnapshot_MissingLogsDefaultsToEmpty(t *testing.T) {
	s, _ := newTestStore(t)
	seedStore(t, s)

	require.NoError(t, s.ImportSnapshot(context.Background(), []byte(`{"exercises":[],"routines":[]}`)))

	data := s.Data()
	assert.Empty(t, data.Exercises)
	assert.Empty(t, data.Routines)
	assert.NotNil(t, data.Logs)
	assert.Empty(t, data.Logs)
}

func TestImportSnapshot_NullLogsAccepted(t *testing.T) {
	s, _ := newTestStore(t)

	require.NoError(t, s.ImportSnapshot(context.Background(), []byte(`{"exercises":[],"routines":[],"logs":null}`)))
	assert.NotNil(t, s.Data().Logs)
}

func TestImportSnapshot_InvalidLeavesDataUnchanged(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		wantErr error
	}{
		{name: "missing exercises", payload: `{"routines":[]}`, wantErr: ErrInvalidBackup},
		{name: "missing routines", payload: `{"exercises":[]}`, wantErr: ErrInvalidBackup},
		{name: "exercises not a list", payload: `{"exercises":{},"routines":[]}`, wantErr: ErrInvalidBackup},
		{name: "logs not a list", payload: `{"exercises":[],"routines":[],"logs":"x"}`, wantErr: ErrInvalidBackup},
		{name: "top level array", payload: `[]`, wantErr: ErrInvalidBackup},
		{name: "top level number", payload: `42`, wantErr: ErrInvalidBackup},
		{name: "top level string", payload: `"x"`, wantErr: ErrInvalidBackup},
		{name: "truncated object", payload: `{"exercises":[`, wantErr: ErrBackupUnreadable},
		{name: "json null", payload: `null`, wantErr: ErrInvalidBackup},
		{name: "garbage", payload: `not json at all`, wantErr: ErrBackupUnreadable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := newTestStore(t)
			seedStore(t, s)
			before := s.Data()

			err := s.ImportSnapshot(context.Background(), []byte(tt.payload))
			require.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, before, s.Data())
		})
	}
}

func TestImportSnapshot_DanglingReferencesKept(t *testing.T) {
	s, _ := newTestStore(t)
	payload := `{"exercises":[],"routines":[{"id":"r1","name":"Ghost","exercises":[{"exerciseId":"gone","durationMinutes":3}]}]}`

	require.NoError(t, s.ImportSnapshot(context.Background(), []byte(payload)))

	data := s.Data()
	require.Len(t, data.Routines, 1)
	assert.Equal(t, "gone", data.Routines[0].Exercises[0].ExerciseID)
	assert.Equal(t, domain.UnknownExerciseName, data.ExerciseName("gone"))
}
