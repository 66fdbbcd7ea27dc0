package mirror

import (
	"errors"
	"fmt"
)

var (
	// ErrUnavailable indicates the mirror server is unreachable.
	ErrUnavailable = errors.New("mirror server unavailable")

	// ErrTimeout indicates a mirror request exceeded its timeout.
	ErrTimeout = errors.New("mirror request timed out")

	// ErrNotSignedIn indicates a call that needs a token was made without one.
	ErrNotSignedIn = errors.New("not signed in to mirror")
)

// StatusError is a non-2xx reply from the mirror server.
type StatusError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("mirror returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("mirror returned status %d: %s", e.StatusCode, e.Message)
}
