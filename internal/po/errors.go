package po

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates the target record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicateBudgetCode indicates a budget with the same code already exists.
	ErrDuplicateBudgetCode = errors.New("budget code already exists")
	// ErrDuplicateOrderNumber indicates a caller-supplied order number collides
	// with an existing order.
	ErrDuplicateOrderNumber = errors.New("order number already exists")
)

// PersistenceError wraps a backing-store failure. The core never retries;
// the error is surfaced to the caller as-is.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("po: %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// StaleViewError reports that a write committed but the follow-up refetch
// failed, so the facade's cached snapshot may lag the store.
type StaleViewError struct {
	Op  string
	Err error
}

func (e *StaleViewError) Error() string {
	return fmt.Sprintf("po: %s succeeded but refresh failed: %v", e.Op, e.Err)
}

func (e *StaleViewError) Unwrap() error { return e.Err }
