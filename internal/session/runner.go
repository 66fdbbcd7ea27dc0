package session

import (
	"context"
	"errors"
	"time"
)

// TickInterval is the period of the shared session clock.
const TickInterval = time.Second

// Runner drives an Engine from a single ticker, for sessions without a
// terminal view.
type Runner struct {
	engine      *Engine
	interval    time.Duration
	autoAdvance bool
	onTick      func(*Engine)
}

type RunnerOption func(*Runner)

// WithInterval overrides the tick period. Tests use short intervals.
func WithInterval(d time.Duration) RunnerOption {
	return func(r *Runner) {
		if d > 0 {
			r.interval = d
		}
	}
}

// WithAutoAdvance starts the next unfinished exercise whenever nothing is
// running, so a whole routine plays through unattended.
func WithAutoAdvance() RunnerOption {
	return func(r *Runner) { r.autoAdvance = true }
}

// WithTickHook is called after every tick.
func WithTickHook(fn func(*Engine)) RunnerOption {
	return func(r *Runner) { r.onTick = fn }
}

func NewRunner(engine *Engine, opts ...RunnerOption) *Runner {
	r := &Runner{engine: engine, interval: TickInterval}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run ticks until ctx is done or, with auto-advance, until every exercise is
// completed. Persistence errors are logged and do not stop the clock.
func (r *Runner) Run(ctx context.Context) error {
	if r.autoAdvance {
		if done := r.advance(ctx); done {
			return nil
		}
	}

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if err := r.engine.Tick(ctx); err != nil {
				r.engine.logger.Error("session tick failed", "error", err)
			}
			if r.onTick != nil {
				r.onTick(r.engine)
			}
			if r.autoAdvance {
				if done := r.advance(ctx); done {
					return nil
				}
			}
		}
	}
}

// advance starts the first startable exercise when none is running and
// reports whether nothing is left to run.
func (r *Runner) advance(ctx context.Context) bool {
	if r.engine.Running() >= 0 {
		return false
	}
	for i, ex := range r.engine.state.Exercises {
		if ex.Completed || ex.RemainingSeconds <= 0 {
			continue
		}
		if err := r.engine.Start(ctx, i); err != nil && !errors.Is(err, ErrCannotStart) {
			r.engine.logger.Error("starting exercise failed", "index", i, "error", err)
		}
		return false
	}
	return true
}
