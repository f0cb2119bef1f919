package errors

import (
	"github.com/cockroachdb/errors"
)

// Sentinel errors used to classify failures across the codebase.
// Every error returned from a service or repository is marked with
// exactly one of these via InternalError.Mark.
var (
	ErrValidation       = errors.New("validation error")
	ErrNotFound         = errors.New("item not found")
	ErrAlreadyExists    = errors.New("item already exists")
	ErrVersionConflict  = errors.New("version conflict")
	ErrInvalidOperation = errors.New("invalid operation")
	ErrPermissionDenied = errors.New("permission denied")
	ErrDatabase         = errors.New("database error")
	ErrSystem           = errors.New("system error")
	ErrHTTPClient       = errors.New("http client error")
	ErrInternal         = errors.New("internal error")
)

// InternalError is the rich error type carried through the system. It wraps a
// cause, an operator hint and optional reportable details that are safe to
// surface to API clients.
type InternalError struct {
	cause             error
	hint              string
	reportableDetails map[string]any
	mark              error
}

func (e *InternalError) Error() string {
	if e.cause == nil {
		return "unknown error"
	}
	return e.cause.Error()
}

// Unwrap exposes the marked sentinel so errors.Is works against the
// classification, and the cause chain via the cockroachdb helpers.
func (e *InternalError) Unwrap() error {
	if e.mark != nil {
		return e.mark
	}
	return e.cause
}

// Cause returns the underlying cause of the error.
func (e *InternalError) Cause() error {
	return e.cause
}

// Hint returns the human readable hint attached to the error.
func (e *InternalError) Hint() string {
	return e.hint
}

// ReportableDetails returns details that are safe to expose to clients.
func (e *InternalError) ReportableDetails() map[string]any {
	return e.reportableDetails
}

// Is lets errors.Is match both the sentinel mark and the cause chain.
func (e *InternalError) Is(target error) bool {
	if e.mark != nil && errors.Is(e.mark, target) {
		return true
	}
	return e.cause != nil && errors.Is(e.cause, target)
}

// IsNotFound returns true if the error is marked as a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsAlreadyExists returns true if the error is marked as an already exists error
func IsAlreadyExists(err error) bool {
	return errors.Is(err, ErrAlreadyExists)
}

// IsVersionConflict returns true if the error is marked as a version conflict
func IsVersionConflict(err error) bool {
	return errors.Is(err, ErrVersionConflict)
}

// IsValidation returns true if the error is marked as a validation error
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

// IsDatabase returns true if the error is marked as a database error
func IsDatabase(err error) bool {
	return errors.Is(err, ErrDatabase)
}

// IsInvalidOperation returns true if the error is marked as an invalid operation
func IsInvalidOperation(err error) bool {
	return errors.Is(err, ErrInvalidOperation)
}

// IsHTTPClient returns true if the error is marked as an HTTP client error
func IsHTTPClient(err error) bool {
	return errors.Is(err, ErrHTTPClient)
}
