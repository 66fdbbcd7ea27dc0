package cli

import (
	"testing"

	"github.com/alexanderramin/riff/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveExercise(t *testing.T) {
	data := domain.AppData{Exercises: []domain.Exercise{
		{ID: "aaaa1111", Name: "Scales"},
		{ID: "aaaa2222", Name: "Arpeggios"},
		{ID: "bbbb3333", Name: "Bends"},
		{ID: "cccc4444", Name: "Bends"},
		{ID: "dddd5555", Name: "aaaa1111"},
	}}

	tests := []struct {
		name    string
		input   string
		wantID  string
		wantErr error
	}{
		{"exact id", "bbbb3333", "bbbb3333", nil},
		{"id beats name", "aaaa1111", "aaaa1111", nil},
		{"name ignores case", "  scales ", "aaaa1111", nil},
		{"unique prefix", "bbbb", "bbbb3333", nil},
		{"ambiguous name", "Bends", "", ErrAmbiguous},
		{"ambiguous prefix", "aaaa", "", ErrAmbiguous},
		{"unknown", "zzzz", "", ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ex, err := resolveExercise(data, tt.input)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantID, ex.ID)
		})
	}
}

func TestResolveRoutine_Blank(t *testing.T) {
	_, err := resolveRoutine(domain.AppData{}, "  ")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "routine is required")
}
