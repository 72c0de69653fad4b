package core

import (
	"errors"
	"fmt"
)

// Common errors.
var (
	ErrNoUser     = errors.New("no user bound to the store")
	ErrReadOnly   = errors.New("repository is in read-only mode")
	ErrStaleLoad  = errors.New("load result discarded: bound user changed while loading")
	ErrBadPayload = errors.New("malformed user document")
)

// LoadError is returned when the snapshot for a user cannot be loaded.
// It is always surfaced to the caller.
type LoadError struct {
	UserID string
	Err    error
}

func (e *LoadError) Error() string {
	if e.UserID == "" {
		return fmt.Sprintf("load failed: %v", e.Err)
	}
	return fmt.Sprintf("load failed for user %s: %v", e.UserID, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// SaveError describes a failed snapshot write. Store.Save only logs it.
type SaveError struct {
	UserID   string
	Revision uint64
	Err      error
}

func (e *SaveError) Error() string {
	return fmt.Sprintf("save revision %d for user %s failed: %v", e.Revision, e.UserID, e.Err)
}

func (e *SaveError) Unwrap() error { return e.Err }
