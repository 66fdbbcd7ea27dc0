package store

import (
	"context"
	"fmt"

	"github.com/alexanderramin/riff/internal/domain"
	"github.com/alexanderramin/riff/internal/repository"
)

// Connect subscribes to the identity's remote document. Every delivered
// document replaces the local aggregate in full; when the remote has no
// document yet, the local snapshot is uploaded as the initial one.
func (s *Store) Connect(ctx context.Context, id domain.Identity) error {
	if s.mirror == nil {
		return ErrNoMirror
	}
	if id.UserID == "" {
		return fmt.Errorf("connecting mirror: identity has no user id")
	}

	s.Disconnect()

	s.mu.Lock()
	identity := id
	s.identity = &identity
	s.synced = make(chan struct{})
	s.mu.Unlock()

	unsub, err := s.mirror.Subscribe(ctx, id.UserID,
		func(doc *domain.AppData) { s.applyRemote(id.UserID, doc) },
		func(err error) { s.remoteError(id.UserID, err) },
	)
	if err != nil {
		s.mu.Lock()
		s.identity = nil
		s.synced = nil
		s.mu.Unlock()
		s.logger.Error("mirror subscription failed", "user_id", id.UserID, "error", err)
		return fmt.Errorf("subscribing to mirror: %w", err)
	}

	s.mu.Lock()
	s.unsubscribe = unsub
	s.mu.Unlock()
	s.logger.Info("mirror connected", "user_id", id.UserID, "anonymous", id.Anonymous)
	return nil
}

// Disconnect cancels the active subscription. Local data is kept.
func (s *Store) Disconnect() {
	s.mu.Lock()
	unsub := s.unsubscribe
	s.unsubscribe = nil
	s.identity = nil
	s.synced = nil
	s.mu.Unlock()
	if unsub != nil {
		unsub()
	}
}

// WaitRemote blocks until the connected subscription has delivered its first
// document, or until ctx is done.
func (s *Store) WaitRemote(ctx context.Context) error {
	s.mu.Lock()
	synced := s.synced
	s.mu.Unlock()
	if synced == nil {
		return ErrNotConnected
	}
	select {
	case <-synced:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("waiting for mirror: %w", ctx.Err())
	}
}

func (s *Store) markSyncedLocked() {
	select {
	case <-s.synced:
	default:
		close(s.synced)
	}
}

// Identity returns the connected identity, if any.
func (s *Store) Identity() (domain.Identity, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.identity == nil {
		return domain.Identity{}, false
	}
	return *s.identity, true
}

// Online reports the connectivity signal the store consults before pushing.
func (s *Store) Online() bool {
	return s.online.Online()
}

func (s *Store) applyRemote(userID string, doc *domain.AppData) {
	ctx := context.Background()

	s.mu.Lock()
	if s.identity == nil || s.identity.UserID != userID {
		s.mu.Unlock()
		return
	}
	s.markSyncedLocked()
	if doc == nil {
		s.enqueuePushLocked(s.data.Clone())
		s.mu.Unlock()
		s.logger.Info("remote document missing, uploading local snapshot", "user_id", userID)
		return
	}

	next := doc.Clone().Normalize()
	s.data = next
	if err := repository.SetJSON(ctx, s.kv, repository.KeyAppData, next); err != nil {
		s.logger.Error("mirroring remote snapshot locally failed", "error", err)
	}
	listeners := s.listenersLocked()
	s.mu.Unlock()

	s.logger.Debug("remote snapshot applied", "user_id", userID,
		"exercises", len(next.Exercises), "routines", len(next.Routines), "logs", len(next.Logs))
	notify(listeners, next)
}

// remoteError keeps the in-memory aggregate, which is already the last
// local snapshot.
func (s *Store) remoteError(userID string, err error) {
	s.logger.Error("mirror subscription error, keeping local data", "user_id", userID, "error", err)
}

// enqueuePushLocked hands snap to the pusher, replacing any snapshot still
// waiting. Callers hold s.mu, so there is a single producer at a time.
func (s *Store) enqueuePushLocked(snap domain.AppData) {
	if s.mirror == nil || s.identity == nil || s.closed {
		return
	}
	if !s.online.Online() {
		s.logger.Debug("offline, skipping mirror push")
		return
	}
	job := pushJob{userID: s.identity.UserID, data: snap}
	select {
	case s.pending <- job:
	default:
		select {
		case <-s.pending:
		default:
		}
		s.pending <- job
	}
}

func (s *Store) pushLoop() {
	defer s.wg.Done()
	for {
		select {
		case job := <-s.pending:
			s.push(job)
		case <-s.done:
			// Drain a final pending snapshot so Close does not drop the last write.
			select {
			case job := <-s.pending:
				s.push(job)
			default:
			}
			return
		}
	}
}

func (s *Store) push(job pushJob) {
	ctx, cancel := context.WithTimeout(context.Background(), s.pushTimeout)
	defer cancel()
	if err := s.mirror.Write(ctx, job.userID, job.data); err != nil {
		s.logger.Error("mirror push failed", "user_id", job.userID, "error", err)
		return
	}
	s.logger.Debug("mirror push ok", "user_id", job.userID)
}
