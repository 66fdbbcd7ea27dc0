package repository

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a requested key or record does not exist.
var ErrNotFound = errors.New("not found")

// Keys used in the durable key-value store.
const (
	KeyAppData      = "guitar-practice-data"
	KeySessionState = "practice-session-state"
	KeyIdentity     = "auth-identity"
)

// LoggedMarkerKey is the key recording that a routine's completion log was
// already emitted on the given day.
func LoggedMarkerKey(routineID, date string) string {
	return "logged-" + routineID + "-" + date
}

// KVRepo is a durable string-keyed blob store that survives restarts.
type KVRepo interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Has(ctx context.Context, key string) (bool, error)
}
