// Package alert plays the audible completion signal on the terminal bell.
package alert

import (
	"io"
	"sync"
	"time"
)

const (
	DefaultPulses = 3
	DefaultGap    = 250 * time.Millisecond
)

// Bell writes BEL pulses to a terminal. Write errors are ignored.
type Bell struct {
	w      io.Writer
	pulses int
	gap    time.Duration
	sleep  func(time.Duration)

	mu sync.Mutex
	wg sync.WaitGroup
}

type Option func(*Bell)

func WithPulses(n int) Option {
	return func(b *Bell) {
		if n > 0 {
			b.pulses = n
		}
	}
}

func WithGap(d time.Duration) Option {
	return func(b *Bell) { b.gap = d }
}

// NewBell returns a Bell writing to w. A nil w yields a silent bell.
func NewBell(w io.Writer, opts ...Option) *Bell {
	b := &Bell{w: w, pulses: DefaultPulses, gap: DefaultGap, sleep: time.Sleep}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Ring plays the pulses in the background and returns immediately.
func (b *Bell) Ring() {
	if b == nil || b.w == nil {
		return
	}
	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		for i := 0; i < b.pulses; i++ {
			if i > 0 {
				b.sleep(b.gap)
			}
			b.mu.Lock()
			_, _ = b.w.Write([]byte{'\a'})
			b.mu.Unlock()
		}
	}()
}

// ExerciseFinished rings the bell.
func (b *Bell) ExerciseFinished(string) { b.Ring() }

// Wait blocks until every pending ring has finished.
func (b *Bell) Wait() {
	if b == nil {
		return
	}
	b.wg.Wait()
}
