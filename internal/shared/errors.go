package shared

import "errors"

var (
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
	// ErrValidation indicates malformed input to a mutating call.
	ErrValidation = errors.New("validation failed")
	// ErrConflict indicates a business-rule violation on write.
	ErrConflict = errors.New("conflict")
)
