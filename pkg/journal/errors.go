package journal

import (
	"errors"
	"fmt"
)

// ErrClosed is returned by stores after Close.
var ErrClosed = errors.New("journal: store closed")

// StoreError represents a failure in a journal backend.
type StoreError struct {
	Backend   string // "memory" or "sqlite"
	Operation string // "open", "append", "recent", "prune", ...
	Cause     error
}

// Error implements the error interface.
func (e *StoreError) Error() string {
	return fmt.Sprintf("journal store error [backend=%s, operation=%s]: %v", e.Backend, e.Operation, e.Cause)
}

// Unwrap returns the underlying cause error.
func (e *StoreError) Unwrap() error {
	return e.Cause
}

func newStoreError(backend, operation string, cause error) *StoreError {
	return &StoreError{Backend: backend, Operation: operation, Cause: cause}
}
