package alert

import (
	"bytes"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestRing_ThreePulsesWithGaps(t *testing.T) {
	out := &lockedBuffer{}
	var slept []time.Duration
	b := NewBell(out)
	b.sleep = func(d time.Duration) { slept = append(slept, d) }

	b.ExerciseFinished("C Major Scale")
	b.Wait()

	assert.Equal(t, "\a\a\a", out.String())
	assert.Equal(t, []time.Duration{DefaultGap, DefaultGap}, slept)
}

func TestRing_CustomPulses(t *testing.T) {
	out := &lockedBuffer{}
	b := NewBell(out, WithPulses(1), WithGap(0))

	b.Ring()
	b.Wait()

	assert.Equal(t, "\a", out.String())
}

type brokenWriter struct{}

func (brokenWriter) Write([]byte) (int, error) { return 0, errors.New("closed") }

func TestRing_WriteErrorsIgnored(t *testing.T) {
	b := NewBell(brokenWriter{}, WithGap(0))
	assert.NotPanics(t, func() {
		b.Ring()
		b.Wait()
	})
}

func TestRing_NilWriterIsSilent(t *testing.T) {
	b := NewBell(nil)
	assert.NotPanics(t, func() {
		b.Ring()
		b.Wait()
	})

	var none *Bell
	assert.NotPanics(t, func() {
		none.Ring()
		none.Wait()
	})
}
