// Package store owns the AppData aggregate. Every mutation goes through one
// funnel that writes the snapshot to the durable key-value store and, when a
// mirror identity is connected and online, queues a whole-document push.
package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/alexanderramin/riff/internal/domain"
	"github.com/alexanderramin/riff/internal/repository"
	"github.com/google/uuid"
)

// Mirror is a remote document store keyed by user id.
type Mirror interface {
	// Write replaces the user's remote document.
	Write(ctx context.Context, userID string, doc domain.AppData) error
	// Subscribe delivers the current document and every later change. A nil
	// document means the user has no remote document yet. The returned func
	// cancels the subscription.
	Subscribe(ctx context.Context, userID string, onChange func(doc *domain.AppData), onError func(err error)) (func(), error)
}

// Connectivity reports whether the network is reachable.
type Connectivity interface {
	Online() bool
}

type alwaysOnline struct{}

func (alwaysOnline) Online() bool { return true }

type pushJob struct {
	userID string
	data   domain.AppData
}

// Store is the single source of truth for exercises, routines and logs.
type Store struct {
	mu   sync.Mutex
	data domain.AppData

	kv       repository.KVRepo
	mirror   Mirror
	online   Connectivity
	logger   *slog.Logger
	observer UseCaseObserver
	newID    func() string
	now      func() time.Time

	pushTimeout time.Duration

	identity    *domain.Identity
	unsubscribe func()
	synced      chan struct{}
	listeners   map[int]func(domain.AppData)
	nextListen  int

	pending chan pushJob
	done    chan struct{}
	wg      sync.WaitGroup
	closed  bool
}

// Option configures a Store.
type Option func(*Store)

// WithMirror enables remote mirroring. A nil Connectivity is treated as
// always online.
func WithMirror(m Mirror, online Connectivity) Option {
	return func(s *Store) {
		s.mirror = m
		if online != nil {
			s.online = online
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

func WithObserver(o UseCaseObserver) Option {
	return func(s *Store) {
		if o != nil {
			s.observer = o
		}
	}
}

// WithIDGenerator overrides uuid generation, for deterministic tests.
func WithIDGenerator(fn func() string) Option {
	return func(s *Store) { s.newID = fn }
}

func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func WithPushTimeout(d time.Duration) Option {
	return func(s *Store) {
		if d > 0 {
			s.pushTimeout = d
		}
	}
}

// Open loads the persisted aggregate from kv and starts the background pusher.
// A missing or corrupt snapshot starts the store empty; a failed read is
// returned so the stored snapshot is never overwritten by an empty one.
func Open(ctx context.Context, kv repository.KVRepo, opts ...Option) (*Store, error) {
	s := &Store{
		kv:          kv,
		online:      alwaysOnline{},
		logger:      slog.Default(),
		observer:    NoopUseCaseObserver{},
		newID:       uuid.NewString,
		now:         time.Now,
		pushTimeout: 10 * time.Second,
		pending:     make(chan pushJob, 1),
		done:        make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}

	data, err := s.loadLocal(ctx)
	if err != nil {
		return nil, err
	}
	s.data = data

	s.wg.Add(1)
	go s.pushLoop()
	return s, nil
}

func (s *Store) loadLocal(ctx context.Context) (domain.AppData, error) {
	var data domain.AppData
	found, err := repository.GetJSON(ctx, s.kv, repository.KeyAppData, &data)
	if errors.Is(err, repository.ErrCorruptValue) {
		s.logger.Warn("local snapshot corrupt, starting empty", "error", err)
		return domain.EmptyAppData(), nil
	}
	if err != nil {
		return domain.AppData{}, fmt.Errorf("loading local snapshot: %w", err)
	}
	if !found {
		return domain.EmptyAppData(), nil
	}
	return data.Normalize(), nil
}

// Close cancels any subscription and stops the pusher after it drains.
func (s *Store) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	unsub := s.unsubscribe
	s.unsubscribe = nil
	s.mu.Unlock()

	if unsub != nil {
		unsub()
	}
	close(s.done)
	s.wg.Wait()
}

// Data returns a deep copy of the current aggregate.
func (s *Store) Data() domain.AppData {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.Clone()
}

func (s *Store) Exercise(id string) (domain.Exercise, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.FindExercise(id)
}

func (s *Store) Routine(id string) (domain.Routine, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.data.FindRoutine(id)
	if ok {
		r.Exercises = append([]domain.RoutineExercise{}, r.Exercises...)
	}
	return r, ok
}

// RecentLogs returns logs completed in the last days days, newest first.
func (s *Store) RecentLogs(days int) []domain.PracticeLog {
	data := s.Data()
	return domain.RecentLogs(data.Logs, s.now(), days)
}

// OnChange registers fn to be called with a copy of the aggregate after every
// committed change, local or remote. fn runs on the goroutine that made the
// change. The returned func unregisters it.
func (s *Store) OnChange(fn func(domain.AppData)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listeners == nil {
		s.listeners = map[int]func(domain.AppData){}
	}
	id := s.nextListen
	s.nextListen++
	s.listeners[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.listeners, id)
	}
}

func (s *Store) listenersLocked() []func(domain.AppData) {
	out := make([]func(domain.AppData), 0, len(s.listeners))
	for _, fn := range s.listeners {
		out = append(out, fn)
	}
	return out
}

// mutate applies fn to a copy of the aggregate, persists the result and
// publishes it. The in-memory aggregate is only replaced once the local
// write succeeded.
func (s *Store) mutate(ctx context.Context, name string, fields map[string]any, fn func(d *domain.AppData)) error {
	start := time.Now()

	s.mu.Lock()
	next := s.data.Clone()
	fn(&next)
	next = next.Normalize()

	err := repository.SetJSON(ctx, s.kv, repository.KeyAppData, next)
	if err == nil {
		s.data = next
		s.enqueuePushLocked(next)
	}
	listeners := s.listenersLocked()
	s.mu.Unlock()

	s.observer.ObserveUseCase(ctx, UseCaseEvent{
		Name:      name,
		Duration:  time.Since(start),
		Success:   err == nil,
		Err:       err,
		Fields:    fields,
		StartedAt: start,
	})
	if err != nil {
		return err
	}
	notify(listeners, next)
	return nil
}

func notify(listeners []func(domain.AppData), data domain.AppData) {
	for _, fn := range listeners {
		fn(data.Clone())
	}
}

// AddExercise appends a new exercise. Blank names are accepted; callers validate.
func (s *Store) AddExercise(ctx context.Context, name, description string) (domain.Exercise, error) {
	ex := domain.Exercise{ID: s.newID(), Name: name, Description: description}
	err := s.mutate(ctx, "add_exercise", map[string]any{"exercise_id": ex.ID}, func(d *domain.AppData) {
		d.Exercises = append(d.Exercises, ex)
	})
	return ex, err
}

// UpdateExercise replaces the name and description of the matching exercise.
func (s *Store) UpdateExercise(ctx context.Context, id, name, description string) error {
	return s.mutate(ctx, "update_exercise", map[string]any{"exercise_id": id}, func(d *domain.AppData) {
		for i := range d.Exercises {
			if d.Exercises[i].ID == id {
				d.Exercises[i].Name = name
				d.Exercises[i].Description = description
			}
		}
	})
}

// DeleteExercise removes the exercise and strips it from every routine.
func (s *Store) DeleteExercise(ctx context.Context, id string) error {
	return s.mutate(ctx, "delete_exercise", map[string]any{"exercise_id": id}, func(d *domain.AppData) {
		kept := d.Exercises[:0]
		for _, ex := range d.Exercises {
			if ex.ID != id {
				kept = append(kept, ex)
			}
		}
		d.Exercises = kept
		for i := range d.Routines {
			d.Routines[i] = d.Routines[i].WithoutExercise(id)
		}
	})
}

// AddRoutine appends a routine with no exercises.
func (s *Store) AddRoutine(ctx context.Context, name string) (domain.Routine, error) {
	r := domain.Routine{ID: s.newID(), Name: name, Exercises: []domain.RoutineExercise{}}
	err := s.mutate(ctx, "add_routine", map[string]any{"routine_id": r.ID}, func(d *domain.AppData) {
		d.Routines = append(d.Routines, r)
	})
	return r, err
}

// UpdateRoutine shallow-merges patch into the matching routine.
func (s *Store) UpdateRoutine(ctx context.Context, id string, patch domain.RoutinePatch) error {
	return s.mutate(ctx, "update_routine", map[string]any{"routine_id": id}, func(d *domain.AppData) {
		for i := range d.Routines {
			if d.Routines[i].ID == id {
				d.Routines[i] = patch.Apply(d.Routines[i])
			}
		}
	})
}

func (s *Store) DeleteRoutine(ctx context.Context, id string) error {
	return s.mutate(ctx, "delete_routine", map[string]any{"routine_id": id}, func(d *domain.AppData) {
		kept := d.Routines[:0]
		for _, r := range d.Routines {
			if r.ID != id {
				kept = append(kept, r)
			}
		}
		d.Routines = kept
	})
}

// AddLog appends a practice log. The store never deduplicates logs.
func (s *Store) AddLog(ctx context.Context, in domain.LogInput) (domain.PracticeLog, error) {
	completedAt := in.CompletedAt
	if completedAt.IsZero() {
		completedAt = s.now()
	}
	log := domain.PracticeLog{
		ID:                   s.newID(),
		RoutineID:            in.RoutineID,
		RoutineName:          in.RoutineName,
		CompletedAt:          completedAt.UTC(),
		Exercises:            append([]domain.LoggedExercise{}, in.Exercises...),
		TotalDurationMinutes: in.TotalDurationMinutes,
	}
	err := s.mutate(ctx, "add_log", map[string]any{"routine_id": in.RoutineID, "log_id": log.ID}, func(d *domain.AppData) {
		d.Logs = append(d.Logs, log)
	})
	return log, err
}
