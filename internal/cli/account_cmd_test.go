package cli

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alexanderramin/riff/internal/domain"
	"github.com/alexanderramin/riff/internal/repository"
	"github.com/alexanderramin/riff/internal/store"
	"github.com/alexanderramin/riff/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errBadCredentials = errors.New("invalid email or password")

type fakeAccounts struct {
	mu       sync.Mutex
	password string
	token    string
	anon     int
}

func (a *fakeAccounts) Register(_ context.Context, email, password string) (domain.Identity, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.password = password
	return domain.Identity{UserID: "user-" + email, Email: email, Token: "token-" + email}, nil
}

func (a *fakeAccounts) Login(_ context.Context, email, password string) (domain.Identity, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if password != a.password {
		return domain.Identity{}, errBadCredentials
	}
	return domain.Identity{UserID: "user-" + email, Email: email, Token: "token-" + email}, nil
}

func (a *fakeAccounts) SignInAnonymously(context.Context) (domain.Identity, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.anon++
	return domain.Identity{UserID: "anon", Anonymous: true, Token: "token-anon"}, nil
}

func (a *fakeAccounts) SetToken(token string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.token = token
}

func (a *fakeAccounts) currentToken() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.token
}

type mirroredApp struct {
	*App
	mirror   *testutil.FakeMirror
	online   *testutil.Connectivity
	accounts *fakeAccounts
}

func testMirroredApp(t *testing.T) mirroredApp {
	t.Helper()
	m := testutil.NewFakeMirror()
	conn := &testutil.Connectivity{}
	app := testApp(t, store.WithMirror(m, conn))
	accounts := &fakeAccounts{password: "secret"}
	app.Accounts = accounts
	return mirroredApp{App: app, mirror: m, online: conn, accounts: accounts}
}

func savedIdentity(t *testing.T, app *App) (domain.Identity, bool) {
	t.Helper()
	var id domain.Identity
	found, err := repository.GetJSON(context.Background(), app.KV, repository.KeyIdentity, &id)
	require.NoError(t, err)
	return id, found
}

func TestAccount_RequiresMirror(t *testing.T) {
	app := testApp(t)

	for _, args := range [][]string{{"account", "status"}, {"account", "anonymous"}, {"sync"}} {
		_, err := executeCmd(t, app, args...)
		require.ErrorIs(t, err, store.ErrNoMirror, args)
	}
}

func TestAccountLogin_RemoteDocumentReplacesLocal(t *testing.T) {
	app := testMirroredApp(t)
	_, err := app.Store.AddExercise(context.Background(), "Local only", "")
	require.NoError(t, err)

	remote := domain.EmptyAppData()
	remote.Exercises = append(remote.Exercises, domain.Exercise{ID: "ex-1", Name: "Remote scales"})
	app.mirror.Seed("user-me@example.com", remote)

	out, err := executeCmd(t, app.App, "account", "login", "-e", "me@example.com", "-p", "secret")
	require.NoError(t, err)
	assert.Contains(t, out, "Signed in as me@example.com")
	assert.Contains(t, out, "Synced: 1 exercise, 0 routines and 0 logs")

	data := app.Store.Data()
	require.Len(t, data.Exercises, 1)
	assert.Equal(t, "Remote scales", data.Exercises[0].Name)
	assert.Equal(t, "token-me@example.com", app.accounts.currentToken())

	id, found := savedIdentity(t, app.App)
	require.True(t, found)
	assert.Equal(t, "user-me@example.com", id.UserID)
}

func TestAccountLogin_BadPassword(t *testing.T) {
	app := testMirroredApp(t)

	_, err := executeCmd(t, app.App, "account", "login", "-e", "me@example.com", "-p", "wrong")
	require.ErrorIs(t, err, errBadCredentials)
	_, found := savedIdentity(t, app.App)
	assert.False(t, found)
}

func TestAccountLogin_RequiresCredentials(t *testing.T) {
	app := testMirroredApp(t)

	_, err := executeCmd(t, app.App, "account", "login", "-e", "me@example.com")
	require.ErrorIs(t, err, errCredentials)
}

func TestAccountAnonymous_UploadsLocalWhenRemoteEmpty(t *testing.T) {
	app := testMirroredApp(t)
	_, err := app.Store.AddExercise(context.Background(), "Scales", "")
	require.NoError(t, err)

	out, err := executeCmd(t, app.App, "account", "anonymous")
	require.NoError(t, err)
	assert.Contains(t, out, "Signed in as anonymous")

	assert.Eventually(t, func() bool {
		doc, ok := app.mirror.Doc("anon")
		return ok && len(doc.Exercises) == 1
	}, time.Second, 5*time.Millisecond)
}

func TestAccountRegister_Offline(t *testing.T) {
	app := testMirroredApp(t)
	app.online.SetOnline(false)

	out, err := executeCmd(t, app.App, "account", "register", "-e", "new@example.com", "-p", "pw")
	require.NoError(t, err)
	assert.Contains(t, out, "Mirror unreachable")

	_, found := savedIdentity(t, app.App)
	assert.True(t, found)
	_, connected := app.Store.Identity()
	assert.False(t, connected)
	assert.Zero(t, app.mirror.Subscribers("user-new@example.com"))
}

func TestAccountLogoutKeepsLocalData(t *testing.T) {
	app := testMirroredApp(t)
	remote := domain.EmptyAppData()
	remote.Exercises = append(remote.Exercises, domain.Exercise{ID: "ex-1", Name: "Remote scales"})
	app.mirror.Seed("user-me@example.com", remote)

	_, err := executeCmd(t, app.App, "account", "login", "-e", "me@example.com", "-p", "secret")
	require.NoError(t, err)

	out, err := executeCmd(t, app.App, "account", "logout")
	require.NoError(t, err)
	assert.Contains(t, out, "Signed out")

	_, found := savedIdentity(t, app.App)
	assert.False(t, found)
	_, connected := app.Store.Identity()
	assert.False(t, connected)
	assert.Empty(t, app.accounts.currentToken())
	assert.Zero(t, app.mirror.Subscribers("user-me@example.com"))
	assert.Len(t, app.Store.Data().Exercises, 1)
}

func TestAccountStatus(t *testing.T) {
	app := testMirroredApp(t)

	out, err := executeCmd(t, app.App, "account", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "online")
	assert.Contains(t, out, "not signed in")

	_, err = executeCmd(t, app.App, "account", "anonymous")
	require.NoError(t, err)
	app.online.SetOnline(false)

	out, err = executeCmd(t, app.App, "account", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "offline")
	assert.Contains(t, out, "anonymous")
	assert.Contains(t, out, "Connected: yes")
}

func TestSync(t *testing.T) {
	app := testMirroredApp(t)

	_, err := executeCmd(t, app.App, "sync")
	require.ErrorIs(t, err, errNotSignedIn)

	remote := domain.EmptyAppData()
	remote.Routines = append(remote.Routines, domain.Routine{ID: "r-1", Name: "Remote routine", Exercises: []domain.RoutineExercise{}})
	app.mirror.Seed("user-me@example.com", remote)
	require.NoError(t, app.saveIdentity(context.Background(), domain.Identity{
		UserID: "user-me@example.com", Email: "me@example.com", Token: "token-me@example.com",
	}))

	out, err := executeCmd(t, app.App, "sync")
	require.NoError(t, err)
	assert.Contains(t, out, "Synced: 0 exercises, 1 routine and 0 logs")
	assert.Equal(t, "token-me@example.com", app.accounts.currentToken())

	// A second sync reuses the live subscription.
	_, err = executeCmd(t, app.App, "sync")
	require.NoError(t, err)
	assert.Equal(t, 1, app.mirror.Subscribers("user-me@example.com"))
}

func TestSync_Offline(t *testing.T) {
	app := testMirroredApp(t)
	require.NoError(t, app.saveIdentity(context.Background(), domain.Identity{UserID: "anon", Anonymous: true}))
	app.online.SetOnline(false)

	out, err := executeCmd(t, app.App, "sync")
	require.NoError(t, err)
	assert.Contains(t, out, "Mirror unreachable; using local data.")
}
