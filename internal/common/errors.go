// Package common provides shared utilities and types used across the application.
package common

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Common application errors.
var (
	// Lookup errors.
	ErrNotFound    = errors.New("not found")
	ErrUnknownUser = errors.New("unknown user")

	// Staging errors.
	ErrEmptyStaging  = errors.New("no staged transactions")
	ErrRowOutOfRange = errors.New("row index out of range")

	// Configuration errors.
	ErrMissingConfig = errors.New("missing configuration")
	ErrInvalidConfig = errors.New("invalid configuration")
)

// UserError represents an error that should be shown to the user.
type UserError struct {
	Err         error
	UserMessage string
}

func (e *UserError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.UserMessage, e.Err)
	}
	return e.UserMessage
}

func (e *UserError) Unwrap() error {
	return e.Err
}

// NewUserError creates a new user-friendly error.
func NewUserError(userMessage string, err error) error {
	return &UserError{
		UserMessage: userMessage,
		Err:         err,
	}
}

// ParseError reports a malformed row or field. Rows that fail to parse are
// dropped and counted; they never abort a batch.
type ParseError struct {
	Field  string
	Value  string
	Reason string
	Row    int
}

func (e *ParseError) Error() string {
	if e.Row > 0 {
		return fmt.Sprintf("row %d: invalid %s %q: %s", e.Row, e.Field, e.Value, e.Reason)
	}
	return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Value, e.Reason)
}

// SchemaError reports an input whose structure cannot be ingested at all,
// such as a CSV without the required columns.
type SchemaError struct {
	Reason  string
	Missing []string
}

func (e *SchemaError) Error() string {
	if len(e.Missing) > 0 {
		return fmt.Sprintf("%s (missing columns: %s)", e.Reason, strings.Join(e.Missing, ", "))
	}
	return e.Reason
}

// ExternalCallError wraps a failed call to an external collaborator after
// the retry policy has been exhausted.
type ExternalCallError struct {
	Err error
	Op  string
}

func (e *ExternalCallError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
}

func (e *ExternalCallError) Unwrap() error {
	return e.Err
}

// PersistenceError reports a failed write to an external mirror file. The
// durable state has already been saved when this is returned.
type PersistenceError struct {
	Err    error
	Target string
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("failed to write %s: %v", e.Target, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// IsRetryable determines if an error should trigger a retry.
func IsRetryable(err error) bool {
	if errors.Is(err, ErrRateLimit) ||
		errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var retryableErr *RetryableError
	if errors.As(err, &retryableErr) {
		return retryableErr.Retryable
	}

	return false
}
