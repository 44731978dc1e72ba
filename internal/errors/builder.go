package errors

import (
	"encoding/json"

	"github.com/cockroachdb/errors"
)

// SafeDetailsPrefix marks the reportable details payload so the error middleware can
// tell it apart from other safe details attached by cockroachdb/errors
const SafeDetailsPrefix = "__json__:"

// ErrorBuilder chains context onto an error. It is not an error itself, every chain
// ends in Mark (or Error when no sentinel applies).
type ErrorBuilder struct {
	err error
}

// NewError starts a chain from a new internal message
func NewError(msg string) *ErrorBuilder {
	return &ErrorBuilder{err: errors.New(msg)}
}

// NewErrorf starts a chain from a formatted internal message
func NewErrorf(format string, args ...any) *ErrorBuilder {
	return &ErrorBuilder{err: errors.Newf(format, args...)}
}

// WithError starts a chain from an existing error, its stack and marks are kept
func WithError(err error) *ErrorBuilder {
	if err == nil {
		err = errors.New("unknown error")
	}
	return &ErrorBuilder{err: err}
}

// WithMessage prefixes the internal message, it is logged but never rendered
func (b *ErrorBuilder) WithMessage(msg string) *ErrorBuilder {
	b.err = errors.WithMessage(b.err, msg)
	return b
}

func (b *ErrorBuilder) WithMessagef(format string, args ...any) *ErrorBuilder {
	b.err = errors.WithMessagef(b.err, format, args...)
	return b
}

// WithHint sets the message rendered to API callers
func (b *ErrorBuilder) WithHint(hint string) *ErrorBuilder {
	b.err = errors.WithHint(b.err, hint)
	return b
}

func (b *ErrorBuilder) WithHintf(format string, args ...any) *ErrorBuilder {
	b.err = errors.WithHintf(b.err, format, args...)
	return b
}

// WithReportableDetails attaches details rendered under error.details in responses.
// Values must be JSON encodable, details that fail to encode are dropped.
func (b *ErrorBuilder) WithReportableDetails(details map[string]any) *ErrorBuilder {
	if len(details) == 0 {
		return b
	}
	marshaled, err := json.Marshal(details)
	if err != nil {
		return b
	}
	b.err = errors.WithSafeDetails(b.err, SafeDetailsPrefix+"%s", errors.Safe(string(marshaled)))
	return b
}

// Mark tags the error with a sentinel and ends the chain
func (b *ErrorBuilder) Mark(reference error) error {
	b.err = errors.Mark(b.err, reference)
	return b.err
}

// Error ends the chain without adding a sentinel, the marks already on a wrapped
// error decide how it is reported
func (b *ErrorBuilder) Error() error {
	return b.err
}
