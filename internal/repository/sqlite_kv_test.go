package repository

import (
	"context"
	"testing"

	"github.com/alexanderramin/riff/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKVRepo_SetAndGet(t *testing.T) {
	repo := NewSQLiteKVRepo(testutil.NewTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Set(ctx, "k", []byte(`{"a":1}`)))

	got, err := repo.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, string(got))
}

func TestKVRepo_SetOverwrites(t *testing.T) {
	repo := NewSQLiteKVRepo(testutil.NewTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Set(ctx, "k", []byte("one")))
	require.NoError(t, repo.Set(ctx, "k", []byte("two")))

	got, err := repo.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "two", string(got))
}

func TestKVRepo_GetMissing(t *testing.T) {
	repo := NewSQLiteKVRepo(testutil.NewTestDB(t))

	_, err := repo.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestKVRepo_DeleteAndHas(t *testing.T) {
	repo := NewSQLiteKVRepo(testutil.NewTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Set(ctx, "k", []byte("v")))
	ok, err := repo.Has(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, repo.Delete(ctx, "k"))
	ok, err = repo.Has(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)

	// Deleting an absent key is not an error.
	require.NoError(t, repo.Delete(ctx, "k"))
}

func TestKVRepo_JSONHelpers(t *testing.T) {
	repo := NewSQLiteKVRepo(testutil.NewTestDB(t))
	ctx := context.Background()

	type payload struct {
		Name string `json:"name"`
	}

	var out payload
	found, err := GetJSON(ctx, repo, "p", &out)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, SetJSON(ctx, repo, "p", payload{Name: "scales"}))
	found, err = GetJSON(ctx, repo, "p", &out)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "scales", out.Name)
}

func TestKVRepo_GetJSONCorrupt(t *testing.T) {
	repo := NewSQLiteKVRepo(testutil.NewTestDB(t))
	ctx := context.Background()
	require.NoError(t, repo.Set(ctx, "p", []byte("{not json")))

	var out map[string]any
	found, err := GetJSON(ctx, repo, "p", &out)
	require.ErrorIs(t, err, ErrCorruptValue)
	assert.False(t, found)
}

func TestLoggedMarkerKey(t *testing.T) {
	assert.Equal(t, "logged-r1-2026-10-16", LoggedMarkerKey("r1", "2026-10-16"))
}
