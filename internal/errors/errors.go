// Package errors defines the error taxonomy for the analysis pipeline.
//
// InputError and ParameterError abort a run before any stage produces
// output; ProcessingError covers failures inside a stage. Per-feature
// numeric edge cases are never errors; the pipeline substitutes defined
// defaults and continues.
package errors

import (
	stderrors "errors"
	"fmt"
)

// Kind categorizes pipeline errors.
type Kind string

const (
	// KindInput marks a missing, empty, or wrongly-shaped input image.
	KindInput Kind = "input"
	// KindParameter marks an unknown analysis kind or an inadmissible override.
	KindParameter Kind = "parameter"
	// KindProcessing marks a failure inside a pipeline stage.
	KindProcessing Kind = "processing"
)

// Error is a categorized pipeline error.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// NewInputError creates an input validation error.
func NewInputError(message string) *Error {
	return &Error{Kind: KindInput, Message: message}
}

// NewParameterError creates a parameter rejection error.
func NewParameterError(format string, args ...any) *Error {
	return &Error{Kind: KindParameter, Message: fmt.Sprintf(format, args...)}
}

// NewProcessingError creates a stage failure error wrapping its cause.
func NewProcessingError(message string, cause error) *Error {
	return &Error{Kind: KindProcessing, Message: message, Cause: cause}
}

// IsInputError reports whether err is (or wraps) an input error.
func IsInputError(err error) bool {
	return isKind(err, KindInput)
}

// IsParameterError reports whether err is (or wraps) a parameter error.
func IsParameterError(err error) bool {
	return isKind(err, KindParameter)
}

func isKind(err error, kind Kind) bool {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}
