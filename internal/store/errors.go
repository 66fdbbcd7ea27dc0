package store

import "errors"

var (
	// ErrInvalidBackup indicates a backup document is JSON but not an object
	// carrying exercises and routines arrays.
	ErrInvalidBackup = errors.New("invalid backup file format")

	// ErrBackupUnreadable indicates a backup document could not be parsed.
	ErrBackupUnreadable = errors.New("error reading backup file")

	// ErrNoMirror indicates a sync was requested but no remote mirror is configured.
	ErrNoMirror = errors.New("no remote mirror configured")

	// ErrNotConnected indicates no mirror identity is connected.
	ErrNotConnected = errors.New("not connected to a mirror")
)
