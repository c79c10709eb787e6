package sim

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidConfiguration is returned when an engine is built with a
	// non-positive capacity or an unknown policy name.
	ErrInvalidConfiguration = errors.New("invalid configuration")

	// ErrInvariantViolation is returned when a resident set is asked to do
	// something its contract forbids (double insert, overflow, removing or
	// touching a key that is not resident). The access algorithm never does
	// this, so seeing it means the engine is broken.
	ErrInvariantViolation = errors.New("internal invariant violation")
)

func invalidCapacityError(capacity int) error {
	return fmt.Errorf("%w: capacity must be >= 1 but %d was requested", ErrInvalidConfiguration, capacity)
}

func invariantError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvariantViolation, fmt.Sprintf(format, args...))
}
