// Package session drives the per-exercise countdowns of one practice session.
//
// An Engine owns a SessionState and is not safe for concurrent use; every
// transition runs on the caller's goroutine (the bubbletea update loop or a
// Runner). After each transition the state is persisted, and the first time
// every exercise is completed on a given day a PracticeLog is emitted.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/alexanderramin/riff/internal/db"
	"github.com/alexanderramin/riff/internal/domain"
	"github.com/alexanderramin/riff/internal/repository"
)

// FlashDuration is how long the completion notice stays visible.
const FlashDuration = time.Second

var (
	ErrNoSuchExercise = errors.New("no such exercise in session")
	ErrCannotStart    = errors.New("exercise is completed or has no time left")
)

// LogSink receives the completion log of a session.
type LogSink interface {
	AddLog(ctx context.Context, in domain.LogInput) (domain.PracticeLog, error)
}

// Notifier is told when an exercise finishes by running out of time.
type Notifier interface {
	ExerciseFinished(name string)
}

type noopNotifier struct{}

func (noopNotifier) ExerciseFinished(string) {}

// Deps are the collaborators of an Engine. KV and Logs are required.
type Deps struct {
	KV       repository.KVRepo
	UoW      db.UnitOfWork
	Logs     LogSink
	Notifier Notifier
	Now      func() time.Time
	Logger   *slog.Logger
}

type Engine struct {
	kv       repository.KVRepo
	uow      db.UnitOfWork
	logs     LogSink
	notifier Notifier
	now      func() time.Time
	logger   *slog.Logger

	routine domain.Routine
	catalog []domain.Exercise
	state   domain.SessionState

	flash      string
	flashUntil time.Time
	restored   bool
}

// Mount opens a session for routine. A persisted session is resumed only when
// it belongs to the same routine and was saved today; otherwise a fresh
// session is built from the routine's current exercise list.
func Mount(ctx context.Context, deps Deps, routine domain.Routine, catalog []domain.Exercise) (*Engine, error) {
	if deps.KV == nil || deps.Logs == nil {
		return nil, fmt.Errorf("mounting session: kv store and log sink are required")
	}
	e := &Engine{
		kv:       deps.KV,
		uow:      deps.UoW,
		logs:     deps.Logs,
		notifier: deps.Notifier,
		now:      deps.Now,
		logger:   deps.Logger,
		routine:  routine,
		catalog:  append([]domain.Exercise{}, catalog...),
	}
	if e.notifier == nil {
		e.notifier = noopNotifier{}
	}
	if e.now == nil {
		e.now = time.Now
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}

	var saved domain.SessionState
	found, err := repository.GetJSON(ctx, e.kv, repository.KeySessionState, &saved)
	if errors.Is(err, repository.ErrCorruptValue) {
		e.logger.Warn("saved session corrupt, starting fresh", "error", err)
		found = false
	} else if err != nil {
		return nil, fmt.Errorf("loading saved session: %w", err)
	}
	if found && saved.RoutineID == routine.ID && saved.Date == e.today() {
		e.state = saved
		e.state.RoutineName = routine.Name
		e.state.Exercises = sanitize(saved.Exercises)
		e.restored = true
		e.logger.Debug("session restored", "routine_id", routine.ID, "date", saved.Date)
		return e, nil
	}

	e.state = e.fresh()
	if err := e.save(ctx); err != nil {
		return nil, err
	}
	return e, nil
}

func (e *Engine) today() string {
	return e.now().Format(domain.DateLayout)
}

func (e *Engine) fresh() domain.SessionState {
	return domain.SessionState{
		RoutineID:   e.routine.ID,
		RoutineName: e.routine.Name,
		Date:        e.today(),
		Exercises:   domain.NewSessionExercises(e.routine, e.catalog),
	}
}

// sanitize clamps restored remaining times into range and keeps at most one
// exercise running.
func sanitize(in []domain.SessionExercise) []domain.SessionExercise {
	out := append([]domain.SessionExercise{}, in...)
	running := false
	for i := range out {
		ex := &out[i]
		if ex.RemainingSeconds < 0 {
			ex.RemainingSeconds = 0
		}
		if full := ex.FullSeconds(); ex.RemainingSeconds > full {
			ex.RemainingSeconds = full
		}
		if ex.Completed || ex.RemainingSeconds == 0 {
			ex.IsTimerRunning = false
		}
		if ex.IsTimerRunning {
			if running {
				ex.IsTimerRunning = false
			}
			running = true
		}
	}
	return out
}

// Restored reports whether Mount resumed a saved session.
func (e *Engine) Restored() bool { return e.restored }

// State returns a copy of the live session.
func (e *Engine) State() domain.SessionState {
	s := e.state
	s.Exercises = append([]domain.SessionExercise{}, e.state.Exercises...)
	return s
}

func (e *Engine) Exercises() []domain.SessionExercise {
	return append([]domain.SessionExercise{}, e.state.Exercises...)
}

func (e *Engine) Len() int { return len(e.state.Exercises) }

func (e *Engine) Routine() domain.Routine { return e.routine }

// Redefine swaps in a newer definition of the routine, such as one edited on
// another device. The running session is untouched; the next Reset builds
// from the new definition. It reports whether the exercise list changed.
func (e *Engine) Redefine(routine domain.Routine, catalog []domain.Exercise) bool {
	if routine.ID != e.routine.ID {
		return false
	}
	before := domain.NewSessionExercises(e.routine, e.catalog)
	e.routine = routine
	e.catalog = append([]domain.Exercise{}, catalog...)
	e.state.RoutineName = routine.Name
	after := domain.NewSessionExercises(e.routine, e.catalog)
	return !slices.Equal(before, after)
}

// Toggle starts the exercise at i when it is idle and pauses it when it runs.
func (e *Engine) Toggle(ctx context.Context, i int) error {
	if err := e.check(i); err != nil {
		return err
	}
	if e.state.Exercises[i].IsTimerRunning {
		return e.Pause(ctx, i)
	}
	return e.Start(ctx, i)
}

// Start runs the exercise at i and stops every other exercise.
func (e *Engine) Start(ctx context.Context, i int) error {
	if err := e.check(i); err != nil {
		return err
	}
	target := e.state.Exercises[i]
	if target.Completed || target.RemainingSeconds <= 0 {
		return ErrCannotStart
	}
	for j := range e.state.Exercises {
		e.state.Exercises[j].IsTimerRunning = j == i
	}
	return e.commit(ctx)
}

func (e *Engine) Pause(ctx context.Context, i int) error {
	if err := e.check(i); err != nil {
		return err
	}
	e.state.Exercises[i].IsTimerRunning = false
	return e.commit(ctx)
}

// ToggleComplete checks the exercise off, keeping its remaining time, or
// unchecks it and rewinds it to its full duration.
func (e *Engine) ToggleComplete(ctx context.Context, i int) error {
	if err := e.check(i); err != nil {
		return err
	}
	ex := &e.state.Exercises[i]
	ex.IsTimerRunning = false
	if ex.Completed {
		ex.Completed = false
		ex.RemainingSeconds = ex.FullSeconds()
	} else {
		ex.Completed = true
	}
	return e.commit(ctx)
}

// Reset discards the saved session and starts over from the routine's
// current definition, whatever day the session was saved on.
func (e *Engine) Reset(ctx context.Context) error {
	if err := e.kv.Delete(ctx, repository.KeySessionState); err != nil {
		return fmt.Errorf("clearing session: %w", err)
	}
	e.state = e.fresh()
	e.flash = ""
	e.restored = false
	return e.commit(ctx)
}

// Tick advances the shared clock by one second. Every running exercise loses
// a second; one that reaches zero completes, stops and fires the notifier.
func (e *Engine) Tick(ctx context.Context) error {
	changed := false
	for i := range e.state.Exercises {
		ex := &e.state.Exercises[i]
		if !ex.IsTimerRunning || ex.RemainingSeconds <= 0 {
			continue
		}
		changed = true
		ex.RemainingSeconds--
		if ex.RemainingSeconds == 0 {
			ex.IsTimerRunning = false
			ex.Completed = true
			e.flash = ex.Name
			e.flashUntil = e.now().Add(FlashDuration)
			e.notifier.ExerciseFinished(ex.Name)
		}
	}
	if !changed {
		return nil
	}
	return e.commit(ctx)
}

// Flash returns the name of the exercise that just finished while its notice
// is still due.
func (e *Engine) Flash() (string, bool) {
	if e.flash == "" || !e.now().Before(e.flashUntil) {
		return "", false
	}
	return e.flash, true
}

// Running returns the index of the running exercise, or -1.
func (e *Engine) Running() int {
	for i, ex := range e.state.Exercises {
		if ex.IsTimerRunning {
			return i
		}
	}
	return -1
}

func (e *Engine) CompletedCount() int {
	n := 0
	for _, ex := range e.state.Exercises {
		if ex.Completed {
			n++
		}
	}
	return n
}

// Progress is the completed share of the session in [0, 1].
func (e *Engine) Progress() float64 {
	if len(e.state.Exercises) == 0 {
		return 0
	}
	return float64(e.CompletedCount()) / float64(len(e.state.Exercises))
}

// TotalRemainingSeconds sums the remaining time of unfinished exercises.
func (e *Engine) TotalRemainingSeconds() int {
	total := 0
	for _, ex := range e.state.Exercises {
		if !ex.Completed {
			total += ex.RemainingSeconds
		}
	}
	return total
}

func (e *Engine) AllCompleted() bool {
	if len(e.state.Exercises) == 0 {
		return false
	}
	for _, ex := range e.state.Exercises {
		if !ex.Completed {
			return false
		}
	}
	return true
}

func (e *Engine) check(i int) error {
	if i < 0 || i >= len(e.state.Exercises) {
		return fmt.Errorf("%w: %d", ErrNoSuchExercise, i)
	}
	return nil
}

// commit persists the state and emits the completion log when due.
func (e *Engine) commit(ctx context.Context) error {
	e.state.Date = e.today()
	if !e.AllCompleted() {
		return e.save(ctx)
	}

	marker := repository.LoggedMarkerKey(e.state.RoutineID, e.state.Date)
	logged, err := e.kv.Has(ctx, marker)
	if err != nil {
		return fmt.Errorf("checking completion marker: %w", err)
	}
	if logged {
		return e.save(ctx)
	}

	if _, err := e.logs.AddLog(ctx, e.completionLog()); err != nil {
		e.logger.Error("recording practice log failed", "routine_id", e.state.RoutineID, "error", err)
		return e.save(ctx)
	}
	e.logger.Info("practice session completed", "routine_id", e.state.RoutineID, "date", e.state.Date)
	return e.saveWithMarker(ctx, marker)
}

func (e *Engine) completionLog() domain.LogInput {
	in := domain.LogInput{
		RoutineID:   e.state.RoutineID,
		RoutineName: e.state.RoutineName,
		CompletedAt: e.now(),
		Exercises:   make([]domain.LoggedExercise, 0, len(e.state.Exercises)),
	}
	for _, ex := range e.state.Exercises {
		in.Exercises = append(in.Exercises, domain.LoggedExercise{
			ExerciseID:      ex.ExerciseID,
			Name:            ex.Name,
			DurationMinutes: ex.DurationMinutes,
		})
		in.TotalDurationMinutes += ex.DurationMinutes
	}
	return in
}

func (e *Engine) save(ctx context.Context) error {
	if err := repository.SetJSON(ctx, e.kv, repository.KeySessionState, e.state); err != nil {
		return fmt.Errorf("saving session: %w", err)
	}
	return nil
}

// saveWithMarker writes the session and the day's completion marker together.
func (e *Engine) saveWithMarker(ctx context.Context, marker string) error {
	write := func(ctx context.Context, kv repository.KVRepo) error {
		if err := kv.Set(ctx, marker, []byte("true")); err != nil {
			return err
		}
		return repository.SetJSON(ctx, kv, repository.KeySessionState, e.state)
	}
	if e.uow == nil {
		if err := write(ctx, e.kv); err != nil {
			return fmt.Errorf("saving completed session: %w", err)
		}
		return nil
	}
	err := e.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		return write(ctx, repository.NewSQLiteKVRepo(tx))
	})
	if err != nil {
		return fmt.Errorf("saving completed session: %w", err)
	}
	return nil
}
