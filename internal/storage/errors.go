// ABOUTME: Error taxonomy shared by every storage backend.
// ABOUTME: Callers match with errors.Is; backends wrap these with context.
package storage

import "errors"

var (
	// ErrValidation reports a missing required field or an out-of-range value.
	ErrValidation = errors.New("validation failed")
	// ErrConstraint reports a write that would duplicate a natural key.
	ErrConstraint = errors.New("already exists")
	// ErrNotFound reports an operation on a key that does not exist.
	ErrNotFound = errors.New("not found")
	// ErrStorageUnavailable reports that the underlying engine cannot be reached.
	ErrStorageUnavailable = errors.New("storage unavailable")
)
