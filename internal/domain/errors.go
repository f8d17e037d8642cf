package domain

import (
	"errors"
	"fmt"
)

// Error taxonomy shared across services and storage backends. Callers branch
// with errors.Is; handlers map each kind to an HTTP status.
var (
	// ErrValidation rejects bad input synchronously. Never retried.
	ErrValidation = errors.New("validation failed")
	// ErrConflict signals state the caller must reconcile first, such as a
	// second open cash session or a double close.
	ErrConflict = errors.New("conflict")
	ErrNotFound = errors.New("not found")
	// ErrPersistence surfaces an unavailable storage backend. A scheduled
	// run hitting it is abandoned until the next tick.
	ErrPersistence = errors.New("persistence unavailable")
	// ErrNotification marks a failed supervisor post. Logged, never escalated.
	ErrNotification = errors.New("supervisor notification failed")
)

// Validationf wraps ErrValidation with a human-readable message.
func Validationf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrValidation}, args...)...)
}

// Conflictf wraps ErrConflict with a human-readable message.
func Conflictf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrConflict}, args...)...)
}
