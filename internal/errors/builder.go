package errors

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// ErrorBuilder provides a fluent API for constructing InternalError values.
type ErrorBuilder struct {
	err *InternalError
}

// NewError starts building an error from a plain message.
func NewError(message string) *ErrorBuilder {
	return &ErrorBuilder{
		err: &InternalError{
			cause: errors.NewWithDepth(1, message),
		},
	}
}

// NewErrorf starts building an error from a formatted message.
func NewErrorf(format string, args ...any) *ErrorBuilder {
	return &ErrorBuilder{
		err: &InternalError{
			cause: errors.NewWithDepthf(1, format, args...),
		},
	}
}

// WithError starts building an error that wraps an existing one. If the
// wrapped error is already an InternalError its hint and details carry over
// so they are not lost when repositories re-wrap service errors.
func WithError(err error) *ErrorBuilder {
	var internal *InternalError
	if errors.As(err, &internal) {
		return &ErrorBuilder{
			err: &InternalError{
				cause:             err,
				hint:              internal.hint,
				reportableDetails: internal.reportableDetails,
				mark:              internal.mark,
			},
		}
	}
	return &ErrorBuilder{
		err: &InternalError{cause: err},
	}
}

// WithMessage prefixes the cause with additional context.
func (b *ErrorBuilder) WithMessage(message string) *ErrorBuilder {
	b.err.cause = errors.WithMessage(b.err.cause, message)
	return b
}

// WithMessagef prefixes the cause with formatted context.
func (b *ErrorBuilder) WithMessagef(format string, args ...any) *ErrorBuilder {
	b.err.cause = errors.WithMessagef(b.err.cause, format, args...)
	return b
}

// WithHint attaches a human readable hint meant for API consumers.
func (b *ErrorBuilder) WithHint(hint string) *ErrorBuilder {
	b.err.hint = hint
	return b
}

// WithHintf attaches a formatted hint.
func (b *ErrorBuilder) WithHintf(format string, args ...any) *ErrorBuilder {
	b.err.hint = fmt.Sprintf(format, args...)
	return b
}

// WithReportableDetails attaches structured details safe to expose to clients.
func (b *ErrorBuilder) WithReportableDetails(details map[string]any) *ErrorBuilder {
	b.err.reportableDetails = details
	return b
}

// Mark classifies the error with one of the package sentinels and finishes
// the build. Mark is always the terminal call in the chain.
func (b *ErrorBuilder) Mark(sentinel error) error {
	b.err.mark = sentinel
	return b.err
}
