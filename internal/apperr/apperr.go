package apperr

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is the sentinel for missing resources.
	ErrNotFound = errors.New("not found")
	// ErrUnauthorized is the sentinel for auth failures.
	ErrUnauthorized = errors.New("unauthorized")
)

// ValidationError reports a malformed input, typically a bad rule definition.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e == nil {
		return ""
	}
	if e.Field != "" {
		return fmt.Sprintf("validation failed on %q: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("validation failed: %s", e.Reason)
}

func NewValidation(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// StorageError wraps a read or write failure from the data store.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

func NewStorage(op string, err error) *StorageError {
	return &StorageError{Op: op, Err: err}
}

func IsStorage(err error) bool {
	var se *StorageError
	return errors.As(err, &se)
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
