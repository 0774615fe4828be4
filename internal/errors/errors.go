package errors

import (
	"errors"
	"fmt"
)

// Stage codes attached to pipeline errors so a batch log line can tell
// which stage rejected a subject.
const (
	CodePreprocess  = "PREPROCESS"
	CodeInterpolate = "INTERPOLATE"
	CodeSegment     = "SEGMENT"
	CodeMetrics     = "METRICS"
	CodeAccel       = "ACCEL"
	CodeCorrelation = "CORRELATION"
	CodeConfig      = "CONFIG"
	CodeLoader      = "LOADER"
	CodeInternal    = "INTERNAL"
)

// StageError is a coded error carrying the pipeline stage that produced it.
type StageError struct {
	Code    string
	Message string
	Cause   error
}

func (e *StageError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *StageError) Unwrap() error {
	return e.Cause
}

// New creates a new StageError
func New(code, message string) *StageError {
	return &StageError{Code: code, Message: message}
}

// Wrap wraps an error with additional context, preserving the code of an
// already-coded error.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	var staged *StageError
	if errors.As(err, &staged) {
		return &StageError{Code: staged.Code, Message: message, Cause: err}
	}
	return &StageError{Code: CodeInternal, Message: message, Cause: err}
}

// Wrapf wraps an error with formatted additional context
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return Wrap(err, fmt.Sprintf(format, args...))
}

// WithCode wraps an error under a specific stage code.
func WithCode(err error, code string) error {
	if err == nil {
		return nil
	}
	return &StageError{Code: code, Message: err.Error(), Cause: err}
}

// Code extracts the stage code from an error chain, or CodeInternal.
func Code(err error) string {
	var staged *StageError
	if errors.As(err, &staged) {
		return staged.Code
	}
	return CodeInternal
}
