package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/alexanderramin/riff/internal/domain"
	"github.com/alexanderramin/riff/internal/repository"
	"github.com/alexanderramin/riff/internal/store"
)

const defaultSyncTimeout = 10 * time.Second

var (
	errNotSignedIn = errors.New("not signed in; run \"riff account login\" or \"riff account anonymous\"")
	errOffline     = errors.New("mirror is unreachable, working offline")
)

func (a *App) syncTimeout() time.Duration {
	if a.SyncTimeout <= 0 {
		return defaultSyncTimeout
	}
	return a.SyncTimeout
}

func (a *App) loadIdentity(ctx context.Context) (domain.Identity, bool, error) {
	var id domain.Identity
	found, err := repository.GetJSON(ctx, a.KV, repository.KeyIdentity, &id)
	if err != nil {
		return domain.Identity{}, false, fmt.Errorf("reading saved identity: %w", err)
	}
	if !found || id.UserID == "" {
		return domain.Identity{}, false, nil
	}
	return id, true, nil
}

func (a *App) saveIdentity(ctx context.Context, id domain.Identity) error {
	if err := repository.SetJSON(ctx, a.KV, repository.KeyIdentity, id); err != nil {
		return fmt.Errorf("saving identity: %w", err)
	}
	return nil
}

func (a *App) clearIdentity(ctx context.Context) error {
	if err := a.KV.Delete(ctx, repository.KeyIdentity); err != nil {
		return fmt.Errorf("clearing identity: %w", err)
	}
	return nil
}

// ConnectSaved resumes mirroring for the saved identity and waits for the
// first remote snapshot. It returns errNotSignedIn when no identity is saved
// and errOffline when the mirror cannot be reached; local data is used in
// both cases.
func (a *App) ConnectSaved(ctx context.Context) error {
	if a.Accounts == nil {
		return store.ErrNoMirror
	}
	if _, ok := a.Store.Identity(); ok {
		return nil
	}
	id, ok, err := a.loadIdentity(ctx)
	if err != nil {
		return err
	}
	if !ok {
		return errNotSignedIn
	}
	return a.connect(ctx, id)
}

// connect subscribes the store to id's document. A mirror that does not
// answer within the sync timeout leaves the store disconnected so later
// local edits are not replaced by a late snapshot.
func (a *App) connect(ctx context.Context, id domain.Identity) error {
	if !a.Store.Online() {
		return errOffline
	}
	a.Accounts.SetToken(id.Token)
	if err := a.Store.Connect(ctx, id); err != nil {
		return err
	}

	waitCtx, cancel := context.WithTimeout(ctx, a.syncTimeout())
	defer cancel()
	if err := a.Store.WaitRemote(waitCtx); err != nil {
		a.Store.Disconnect()
		a.logger().Warn("mirror did not answer, working offline", "error", err)
		return fmt.Errorf("%w: %v", errOffline, err)
	}
	return nil
}
