package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Input errors - fatal for the affected subject only
	ErrMalformedInput       = errors.New("malformed input")
	ErrNonMonotonicSeries   = fmt.Errorf("%w: non-monotonic timestamps", ErrMalformedInput)
	ErrNonPositiveInterval  = fmt.Errorf("%w: non-positive interval", ErrMalformedInput)
	ErrMissingAccelChannels = fmt.Errorf("%w: missing accelerometer channels", ErrMalformedInput)

	// Insufficient-data errors - non-fatal, reported as tagged values at
	// the finest granularity that makes sense (window, subject, cohort)
	ErrInsufficientData    = errors.New("insufficient data for analysis")
	ErrSeriesTooShort      = fmt.Errorf("%w: series below minimum length", ErrInsufficientData)
	ErrTooFewPairedWindows = fmt.Errorf("%w: too few paired windows", ErrInsufficientData)

	// Configuration errors - fatal at startup, before any subject runs
	ErrInvalidConfig = errors.New("invalid configuration")
)

// Error constructors with context
func NewSubjectError(subject SubjectID, err error) error {
	return fmt.Errorf("subject %s: %w", subject, err)
}

func NewConfigError(field string, reason string) error {
	return fmt.Errorf("%w: %s: %s", ErrInvalidConfig, field, reason)
}

// Error checking helpers
func IsMalformedInput(err error) bool {
	return errors.Is(err, ErrMalformedInput)
}

func IsInsufficientData(err error) bool {
	return errors.Is(err, ErrInsufficientData)
}

func IsConfigError(err error) bool {
	return errors.Is(err, ErrInvalidConfig)
}
