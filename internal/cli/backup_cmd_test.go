package cli

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/alexanderramin/riff/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBackupExport_DefaultFileName(t *testing.T) {
	app := testApp(t)
	seedRoutine(t, app, "Warm-up")
	t.Chdir(t.TempDir())

	out, err := executeCmd(t, app, "backup", "export")
	require.NoError(t, err)
	assert.Contains(t, out, "Exported 2 exercises, 1 routine and 0 logs to guitar-practice-backup-2026-03-14.json")

	raw, err := os.ReadFile("guitar-practice-backup-2026-03-14.json")
	require.NoError(t, err)
	data, err := store.ParseSnapshot(raw)
	require.NoError(t, err)
	assert.Len(t, data.Exercises, 2)
	assert.Len(t, data.Routines, 1)
}

func TestBackupExport_Stdout(t *testing.T) {
	app := testApp(t)
	seedRoutine(t, app, "Warm-up")

	out, err := executeCmd(t, app, "backup", "export", "-")
	require.NoError(t, err)
	data, err := store.ParseSnapshot([]byte(out))
	require.NoError(t, err)
	assert.Equal(t, "Warm-up", data.Routines[0].Name)
}

func TestBackupRoundTrip(t *testing.T) {
	source := testApp(t)
	seedRoutine(t, source, "Warm-up")
	path := filepath.Join(t.TempDir(), "backup.json")
	_, err := executeCmd(t, source, "backup", "export", path)
	require.NoError(t, err)

	target := testApp(t)
	_, err = target.Store.AddExercise(context.Background(), "Replaced", "")
	require.NoError(t, err)

	out, err := executeCmd(t, target, "backup", "import", path, "-y")
	require.NoError(t, err)
	assert.Contains(t, out, "Data imported successfully")
	assert.Equal(t, source.Store.Data(), target.Store.Data())
}

func TestBackupImport_Rejected(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name    string
		content string
		want    error
	}{
		{"not json", "{nope", store.ErrBackupUnreadable},
		{"missing routines", `{"exercises": []}`, store.ErrInvalidBackup},
		{"exercises not a list", `{"exercises": {}, "routines": []}`, store.ErrInvalidBackup},
		{"array root", `[]`, store.ErrInvalidBackup},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := testApp(t)
			seedRoutine(t, app, "Warm-up")
			before := app.Store.Data()

			path := filepath.Join(dir, tt.name+".json")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o644))

			_, err := executeCmd(t, app, "backup", "import", path, "-y")
			require.ErrorIs(t, err, tt.want)
			assert.Equal(t, before, app.Store.Data())
		})
	}
}

func TestBackupImport_MissingFile(t *testing.T) {
	app := testApp(t)

	_, err := executeCmd(t, app, "backup", "import", filepath.Join(t.TempDir(), "absent.json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading backup")
}
