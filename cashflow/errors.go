package cashflow

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrSeriesNotFound is returned when a referenced series doesn't exist.
	ErrSeriesNotFound = errors.New("series not found")

	// ErrCalculationNotFound is returned when no journal entry has the key.
	ErrCalculationNotFound = errors.New("calculation not found")

	// ErrEmptySeries is returned when a series has no values.
	ErrEmptySeries = errors.New("series must contain at least one value")

	// ErrDuplicateIdempotencyKey is returned when a journal entry with the
	// same idempotency key already exists. Expected for retries.
	ErrDuplicateIdempotencyKey = errors.New("duplicate idempotency key")

	// ErrInvalidInput is the sentinel behind every ValidationError.
	ErrInvalidInput = errors.New("invalid input")
)

// =============================================================================
// STRUCTURED ERRORS
// =============================================================================

// ValidationError reports a rejected field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsNotFound returns true if the error indicates a missing resource.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrSeriesNotFound) ||
		errors.Is(err, ErrCalculationNotFound)
}

// IsClientError returns true if the error is due to invalid client input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrEmptySeries)
}

// IsConflict returns true if the write collided with an existing record.
func IsConflict(err error) bool {
	return errors.Is(err, ErrDuplicateIdempotencyKey)
}
