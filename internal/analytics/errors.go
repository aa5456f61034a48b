package analytics

import (
	"errors"
	"fmt"
)

// Structural snapshot problems are the only hard failures in this package;
// they are surfaced by Prepare before any aggregation begins. Everything
// else in the error taxonomy (missing exchange rate, null metric, empty
// partition, dangling foreign key) resolves locally into row exclusion or
// a sentinel value and is tallied in RunStats.
var (
	// ErrEmptySnapshot indicates a snapshot with no listings at all.
	ErrEmptySnapshot = errors.New("analytics: snapshot has no listings")
	// ErrInvalidRate indicates an exchange rate row with a non-positive rate.
	ErrInvalidRate = errors.New("analytics: exchange rate must be positive")
	// ErrDuplicateRate indicates more than one rate row for a city.
	ErrDuplicateRate = errors.New("analytics: duplicate exchange rate city")
	// ErrDuplicateListing indicates a repeated listing identifier.
	ErrDuplicateListing = errors.New("analytics: duplicate listing id")
	// ErrDuplicateHost indicates a repeated host identifier.
	ErrDuplicateHost = errors.New("analytics: duplicate host id")
	// ErrNegativePrice indicates a listing with a negative local price.
	ErrNegativePrice = errors.New("analytics: negative listing price")
)

// ValidationError wraps a structural error with the offending entity.
type ValidationError struct {
	Entity string
	Key    string
	Err    error
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %q: %v", e.Entity, e.Key, e.Err)
}

// Unwrap exposes the sentinel for errors.Is checks.
func (e *ValidationError) Unwrap() error {
	return e.Err
}
