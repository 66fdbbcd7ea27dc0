package docstore

import "sync"

// Hub fans document writes out to subscribers of the same user.
// Each subscriber holds at most one undelivered document; a newer write
// replaces an older one that was not yet read. Versions only move forward:
// a write that lost a race with a newer one is not published.
type Hub struct {
	mu     sync.Mutex
	subs   map[string]map[chan Document]struct{}
	latest map[string]int64
	closed bool
}

func NewHub() *Hub {
	return &Hub{
		subs:   map[string]map[chan Document]struct{}{},
		latest: map[string]int64{},
	}
}

// Subscribe returns a channel of future documents for userID and a cancel
// func that closes it.
func (h *Hub) Subscribe(userID string) (<-chan Document, func()) {
	ch := make(chan Document, 1)

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		close(ch)
		return ch, func() {}
	}
	if h.subs[userID] == nil {
		h.subs[userID] = map[chan Document]struct{}{}
	}
	h.subs[userID][ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			if _, ok := h.subs[userID][ch]; ok {
				delete(h.subs[userID], ch)
				if len(h.subs[userID]) == 0 {
					delete(h.subs, userID)
				}
				close(ch)
			}
		})
	}
}

// Publish delivers doc to the user's subscribers unless a newer version was
// already published.
func (h *Hub) Publish(doc Document) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if doc.Version < h.latest[doc.UserID] {
		return
	}
	h.latest[doc.UserID] = doc.Version
	for ch := range h.subs[doc.UserID] {
		select {
		case ch <- doc:
		default:
			select {
			case <-ch:
			default:
			}
			ch <- doc
		}
	}
}

// Subscribers returns the number of live subscriptions for userID.
func (h *Hub) Subscribers(userID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs[userID])
}

// Close ends every subscription.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for userID, set := range h.subs {
		for ch := range set {
			close(ch)
		}
		delete(h.subs, userID)
	}
}
