package testutil

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/alexanderramin/riff/internal/domain"
)

// MirrorWrite records one Write call against a FakeMirror.
type MirrorWrite struct {
	UserID string
	Doc    domain.AppData
}

type fakeSub struct {
	onChange func(*domain.AppData)
	onError  func(error)
}

// FakeMirror is an in-memory remote document store. Writes are echoed to
// subscribers of the same user, like the real mirror.
type FakeMirror struct {
	mu           sync.Mutex
	docs         map[string]domain.AppData
	writes       []MirrorWrite
	subs         map[string]map[int]fakeSub
	nextSub      int
	WriteErr     error
	SubscribeErr error
}

func NewFakeMirror() *FakeMirror {
	return &FakeMirror{
		docs: map[string]domain.AppData{},
		subs: map[string]map[int]fakeSub{},
	}
}

// Seed sets a remote document without notifying subscribers.
func (m *FakeMirror) Seed(userID string, doc domain.AppData) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs[userID] = doc.Clone()
}

func (m *FakeMirror) Write(_ context.Context, userID string, doc domain.AppData) error {
	m.mu.Lock()
	m.writes = append(m.writes, MirrorWrite{UserID: userID, Doc: doc.Clone()})
	if m.WriteErr != nil {
		err := m.WriteErr
		m.mu.Unlock()
		return err
	}
	m.docs[userID] = doc.Clone()
	subs := m.subsFor(userID)
	m.mu.Unlock()

	for _, sub := range subs {
		echo := doc.Clone()
		sub.onChange(&echo)
	}
	return nil
}

func (m *FakeMirror) Subscribe(_ context.Context, userID string, onChange func(*domain.AppData), onError func(error)) (func(), error) {
	m.mu.Lock()
	if m.SubscribeErr != nil {
		err := m.SubscribeErr
		m.mu.Unlock()
		return nil, err
	}
	if m.subs[userID] == nil {
		m.subs[userID] = map[int]fakeSub{}
	}
	id := m.nextSub
	m.nextSub++
	m.subs[userID][id] = fakeSub{onChange: onChange, onError: onError}
	doc, ok := m.docs[userID]
	m.mu.Unlock()

	if ok {
		initial := doc.Clone()
		onChange(&initial)
	} else {
		onChange(nil)
	}

	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.subs[userID], id)
	}, nil
}

// Emit simulates a change made by another device.
func (m *FakeMirror) Emit(userID string, doc domain.AppData) {
	m.mu.Lock()
	m.docs[userID] = doc.Clone()
	subs := m.subsFor(userID)
	m.mu.Unlock()
	for _, sub := range subs {
		d := doc.Clone()
		sub.onChange(&d)
	}
}

// Fail delivers err to every subscriber of userID.
func (m *FakeMirror) Fail(userID string, err error) {
	m.mu.Lock()
	subs := m.subsFor(userID)
	m.mu.Unlock()
	for _, sub := range subs {
		sub.onError(err)
	}
}

func (m *FakeMirror) Writes() []MirrorWrite {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]MirrorWrite{}, m.writes...)
}

func (m *FakeMirror) Doc(userID string) (domain.AppData, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.docs[userID]
	return doc.Clone(), ok
}

func (m *FakeMirror) Subscribers(userID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.subs[userID])
}

func (m *FakeMirror) subsFor(userID string) []fakeSub {
	out := make([]fakeSub, 0, len(m.subs[userID]))
	for _, s := range m.subs[userID] {
		out = append(out, s)
	}
	return out
}

// Connectivity is a settable online flag.
type Connectivity struct {
	offline atomic.Bool
}

func (c *Connectivity) Online() bool     { return !c.offline.Load() }
func (c *Connectivity) SetOnline(v bool) { c.offline.Store(!v) }

// Clock is a manually advanced clock.
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

func NewClock(now time.Time) *Clock {
	return &Clock{now: now}
}

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func (c *Clock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}
