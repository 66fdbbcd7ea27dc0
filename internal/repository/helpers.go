package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// nowUTC returns the current UTC time formatted as RFC3339.
func nowUTC() string {
	return time.Now().UTC().Format(time.RFC3339)
}

// ErrCorruptValue marks a stored value that no longer decodes.
var ErrCorruptValue = errors.New("stored value is corrupt")

// GetJSON loads key from repo and decodes it into v. Returns found=false
// without error when the key is absent. A value that fails to decode
// yields ErrCorruptValue; read failures are returned as they are.
func GetJSON(ctx context.Context, repo KVRepo, key string, v any) (bool, error) {
	raw, err := repo.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return false, fmt.Errorf("decoding %s: %w: %w", key, ErrCorruptValue, err)
	}
	return true, nil
}

// SetJSON encodes v and stores it under key.
func SetJSON(ctx context.Context, repo KVRepo, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", key, err)
	}
	return repo.Set(ctx, key, raw)
}
