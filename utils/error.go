package utils

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// ErrorRecordNotFound is returned when an operation targets a non-existent id.
// Never retried; surfaced to the caller as-is.
var ErrorRecordNotFound = errors.New("record not found")

// ValidationError: malformed input, missing required reference, duplicate
// unique field. Never retried.
type ValidationError struct {
	msg string
}

func NewValidationError(format string, args ...any) *ValidationError {
	return &ValidationError{msg: fmt.Sprintf(format, args...)}
}

func (e *ValidationError) Error() string { return e.msg }

// InvalidStateError: the operation is not legal from the record's current
// lifecycle state.
type InvalidStateError struct {
	msg string
}

func NewInvalidStateError(format string, args ...any) *InvalidStateError {
	return &InvalidStateError{msg: fmt.Sprintf(format, args...)}
}

func (e *InvalidStateError) Error() string { return e.msg }

// RangeError: a numeric field is outside its valid domain.
type RangeError struct {
	msg string
}

func NewRangeError(format string, args ...any) *RangeError {
	return &RangeError{msg: fmt.Sprintf(format, args...)}
}

func (e *RangeError) Error() string { return e.msg }

// ConcurrencyError: a lost update was detected (version conflict); the caller
// should retry the whole logical operation.
type ConcurrencyError struct {
	msg string
}

func NewConcurrencyError(format string, args ...any) *ConcurrencyError {
	return &ConcurrencyError{msg: fmt.Sprintf(format, args...)}
}

func (e *ConcurrencyError) Error() string { return e.msg }

// StoreError wraps an underlying storage failure (timeout, connection loss).
// The caller may retry with backoff.
type StoreError struct {
	err error
}

func (e *StoreError) Error() string { return "store failure: " + e.err.Error() }

func (e *StoreError) Unwrap() error { return e.err }

// WrapStoreError maps raw driver/GORM errors onto the engine's taxonomy.
// Errors that already belong to the taxonomy pass through untouched.
func WrapStoreError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) || errors.Is(err, ErrorRecordNotFound) {
		return ErrorRecordNotFound
	}
	var (
		ve *ValidationError
		se *InvalidStateError
		re *RangeError
		ce *ConcurrencyError
		st *StoreError
	)
	if errors.As(err, &ve) || errors.As(err, &se) || errors.As(err, &re) || errors.As(err, &ce) || errors.As(err, &st) {
		return err
	}
	return &StoreError{err: err}
}

func ErrorPanic(err error) {
	if err != nil {
		panic(err)
	}
}
