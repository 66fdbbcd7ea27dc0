package mirror

import (
	"context"
	"testing"
	"time"

	"github.com/alexanderramin/riff/internal/domain"
	"github.com/alexanderramin/riff/internal/repository"
	"github.com/alexanderramin/riff/internal/store"
	"github.com/alexanderramin/riff/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openDevice(t *testing.T, baseURL string) (*store.Store, *Client) {
	t.Helper()
	client := NewClient(baseURL, WithRetry(10*time.Millisecond, 50*time.Millisecond))
	kv := repository.NewSQLiteKVRepo(testutil.NewTestDB(t))
	st, err := store.Open(context.Background(), kv, store.WithMirror(client, nil))
	require.NoError(t, err)
	t.Cleanup(st.Close)
	return st, client
}

func exerciseNames(d domain.AppData) []string {
	names := make([]string, 0, len(d.Exercises))
	for _, ex := range d.Exercises {
		names = append(names, ex.Name)
	}
	return names
}

func TestTwoDevicesShareOneDocument(t *testing.T) {
	srv, _ := startMirror(t)
	ctx := context.Background()

	laptop, laptopClient := openDevice(t, srv.URL)
	_, err := laptop.AddExercise(ctx, "Scales", "")
	require.NoError(t, err)

	id, err := laptopClient.Register(ctx, "duo@example.com", "secret1")
	require.NoError(t, err)
	require.NoError(t, laptop.Connect(ctx, id))

	require.Eventually(t, func() bool {
		doc, err := laptopClient.Fetch(ctx, id.UserID)
		return err == nil && doc != nil && len(doc.Exercises) == 1
	}, waitFor, tick, "local data becomes the first remote document")

	phone, phoneClient := openDevice(t, srv.URL)
	_, err = phone.AddExercise(ctx, "Phone only", "")
	require.NoError(t, err)
	phoneID, err := phoneClient.Login(ctx, "duo@example.com", "secret1")
	require.NoError(t, err)
	require.NoError(t, phone.Connect(ctx, phoneID))

	waitCtx, cancel := context.WithTimeout(ctx, waitFor)
	defer cancel()
	require.NoError(t, phone.WaitRemote(waitCtx))
	assert.Equal(t, []string{"Scales"}, exerciseNames(phone.Data()), "remote wins on connect")

	_, err = phone.AddExercise(ctx, "Arpeggios", "")
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return len(laptop.Data().Exercises) == 2
	}, waitFor, tick)
	assert.Equal(t, []string{"Scales", "Arpeggios"}, exerciseNames(laptop.Data()))
}
