package mirror

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alexanderramin/riff/internal/domain"
	"github.com/alexanderramin/riff/internal/mirror/auth"
	"github.com/alexanderramin/riff/internal/mirror/docstore"
	"github.com/alexanderramin/riff/internal/mirror/server"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const waitFor = 3 * time.Second
const tick = 10 * time.Millisecond

func startMirror(t *testing.T) (*httptest.Server, *server.App) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	database, err := docstore.OpenSQLite(":memory:")
	require.NoError(t, err)

	app := server.Build(database, server.Config{
		JWTSecret:      "test-secret",
		TokenTTL:       time.Hour,
		MaxDocBytes:    1 << 20,
		KeepAlive:      time.Hour,
		AllowAnonymous: true,
	}, nil, auth.WithBcryptCost(bcrypt.MinCost))

	srv := httptest.NewServer(app.Engine)
	t.Cleanup(func() {
		app.Hub.Close()
		srv.Close()
		database.Close()
	})
	return srv, app
}

type docRecorder struct {
	mu     sync.Mutex
	docs   []*domain.AppData
	errors []error
}

func (r *docRecorder) onChange(doc *domain.AppData) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.docs = append(r.docs, doc)
}

func (r *docRecorder) onError(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errors = append(r.errors, err)
}

func (r *docRecorder) snapshot() ([]*domain.AppData, []error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*domain.AppData{}, r.docs...), append([]error{}, r.errors...)
}

func sampleDoc(names ...string) domain.AppData {
	doc := domain.EmptyAppData()
	for i, n := range names {
		doc.Exercises = append(doc.Exercises, domain.Exercise{ID: fmt.Sprintf("e%d", i), Name: n})
	}
	return doc
}

func TestAuthCalls_ReturnIdentity(t *testing.T) {
	srv, _ := startMirror(t)
	ctx := context.Background()
	client := NewClient(srv.URL + "/")

	reg, err := client.Register(ctx, "player@example.com", "123456")
	require.NoError(t, err)
	assert.NotEmpty(t, reg.UserID)
	assert.NotEmpty(t, reg.Token)
	assert.Equal(t, "player@example.com", reg.Email)
	assert.False(t, reg.Anonymous)

	login, err := client.Login(ctx, "player@example.com", "123456")
	require.NoError(t, err)
	assert.Equal(t, reg.UserID, login.UserID)

	_, err = client.Login(ctx, "player@example.com", "wrong1")
	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusUnauthorized, statusErr.StatusCode)
	assert.Equal(t, "unauthorized", statusErr.Code)

	anon, err := client.SignInAnonymously(ctx)
	require.NoError(t, err)
	assert.True(t, anon.Anonymous)
	assert.NotEqual(t, reg.UserID, anon.UserID)
}

func TestWriteAndFetch(t *testing.T) {
	srv, _ := startMirror(t)
	ctx := context.Background()
	client := NewClient(srv.URL)

	_, err := client.Fetch(ctx, "anyone")
	assert.ErrorIs(t, err, ErrNotSignedIn)
	assert.ErrorIs(t, client.Write(ctx, "anyone", sampleDoc()), ErrNotSignedIn)

	id, err := client.SignInAnonymously(ctx)
	require.NoError(t, err)

	missing, err := client.Fetch(ctx, id.UserID)
	require.NoError(t, err)
	assert.Nil(t, missing)

	require.NoError(t, client.Write(ctx, id.UserID, sampleDoc("Scales")))
	got, err := client.Fetch(ctx, id.UserID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Scales", got.Exercises[0].Name)
	assert.NotNil(t, got.Logs)
}

func TestWrite_OtherUserForbidden(t *testing.T) {
	srv, _ := startMirror(t)
	ctx := context.Background()
	alice := NewClient(srv.URL)
	bob := NewClient(srv.URL)
	a, err := alice.SignInAnonymously(ctx)
	require.NoError(t, err)
	_, err = bob.SignInAnonymously(ctx)
	require.NoError(t, err)

	err = bob.Write(ctx, a.UserID, sampleDoc())
	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusForbidden, statusErr.StatusCode)
}

func TestWrite_Unavailable(t *testing.T) {
	client := NewClient("http://127.0.0.1:1")
	client.SetToken("t")
	err := client.Write(context.Background(), "u", sampleDoc())
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestWrite_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
	}))
	defer srv.Close()
	client := NewClient(srv.URL, WithTimeout(20*time.Millisecond))
	client.SetToken("t")

	assert.ErrorIs(t, client.Write(context.Background(), "u", sampleDoc()), ErrTimeout)
}

func TestSubscribe_InitialMissingThenChanges(t *testing.T) {
	srv, app := startMirror(t)
	ctx := context.Background()
	client := NewClient(srv.URL)
	id, err := client.SignInAnonymously(ctx)
	require.NoError(t, err)

	rec := &docRecorder{}
	unsub, err := client.Subscribe(ctx, id.UserID, rec.onChange, rec.onError)
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		docs, _ := rec.snapshot()
		return len(docs) == 1
	}, waitFor, tick)
	docs, _ := rec.snapshot()
	assert.Nil(t, docs[0], "no remote document yet")

	require.Eventually(t, func() bool { return app.Hub.Subscribers(id.UserID) == 1 }, waitFor, tick)
	require.NoError(t, client.Write(ctx, id.UserID, sampleDoc("Arpeggios")))

	require.Eventually(t, func() bool {
		docs, _ := rec.snapshot()
		return len(docs) == 2
	}, waitFor, tick)
	docs, errs := rec.snapshot()
	require.NotNil(t, docs[1])
	assert.Equal(t, "Arpeggios", docs[1].Exercises[0].Name)
	assert.Empty(t, errs)

	unsub()
	require.Eventually(t, func() bool { return app.Hub.Subscribers(id.UserID) == 0 }, waitFor, tick)
	_, errs = rec.snapshot()
	assert.Empty(t, errs, "unsubscribing is not an error")
}

func TestSubscribe_RejectedUpfront(t *testing.T) {
	srv, _ := startMirror(t)
	client := NewClient(srv.URL)

	_, err := client.Subscribe(context.Background(), "u", func(*domain.AppData) {}, func(error) {})
	assert.ErrorIs(t, err, ErrNotSignedIn)

	client.SetToken("forged")
	_, err = client.Subscribe(context.Background(), "u", func(*domain.AppData) {}, func(error) {})
	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusUnauthorized, statusErr.StatusCode)
}

func TestSubscribe_ReconnectsAfterStreamDrop(t *testing.T) {
	var connections atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := connections.Add(1)
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprintf(w, "event:snapshot\ndata:{\"exists\":true,\"version\":%d,\"document\":{\"exercises\":[{\"id\":\"e\",\"name\":\"v%d\"}],\"routines\":[]}}\n\n", n, n)
		w.(http.Flusher).Flush()
		if n >= 2 {
			<-r.Context().Done()
		}
	}))
	defer srv.Close()

	client := NewClient(srv.URL, WithRetry(5*time.Millisecond, 20*time.Millisecond))
	client.SetToken("t")
	rec := &docRecorder{}
	unsub, err := client.Subscribe(context.Background(), "u", rec.onChange, rec.onError)
	require.NoError(t, err)
	defer unsub()

	require.Eventually(t, func() bool {
		docs, _ := rec.snapshot()
		return len(docs) >= 2
	}, waitFor, tick)
	docs, errs := rec.snapshot()
	assert.Equal(t, "v1", docs[0].Exercises[0].Name)
	assert.Equal(t, "v2", docs[1].Exercises[0].Name)
	assert.NotEmpty(t, errs, "the drop is reported")
}

func TestReadEvents(t *testing.T) {
	stream := strings.Join([]string{
		": keepalive comment",
		"event:snapshot",
		`data:{"exists":false}`,
		"",
		"event: ping",
		"data: {}",
		"",
		"data: line one",
		"data: line two",
		"",
		"",
	}, "\n")

	var got []event
	delivered, err := readEvents(strings.NewReader(stream), func(ev event) error {
		got = append(got, ev)
		return nil
	})
	require.NoError(t, err)
	assert.True(t, delivered)
	assert.Equal(t, []event{
		{name: "snapshot", data: `{"exists":false}`},
		{name: "ping", data: "{}"},
		{name: "message", data: "line one\nline two"},
	}, got)
}

func TestReadEvents_HandlerErrorStops(t *testing.T) {
	boom := errors.New("bad event")
	calls := 0
	_, err := readEvents(strings.NewReader("data:a\n\ndata:b\n\n"), func(event) error {
		calls++
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, calls)
}

func TestProbe(t *testing.T) {
	srv, _ := startMirror(t)
	client := NewClient(srv.URL)
	probe := NewProbe(client, time.Hour)

	assert.False(t, probe.Online(), "offline until the first check")
	assert.True(t, probe.Check(context.Background()))
	assert.True(t, probe.Online())

	srv.Close()
	assert.False(t, probe.Check(context.Background()))
	assert.False(t, probe.Online())
}

func TestProbe_RunStopsWithContext(t *testing.T) {
	srv, _ := startMirror(t)
	probe := NewProbe(NewClient(srv.URL), 5*time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		probe.Run(ctx)
		close(done)
	}()

	require.Eventually(t, probe.Online, waitFor, tick)
	cancel()
	select {
	case <-done:
	case <-time.After(waitFor):
		t.Fatal("probe did not stop")
	}
}
