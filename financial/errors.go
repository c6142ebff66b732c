package financial

import (
	"errors"
	"fmt"

	"github.com/warp/tvm-engine/ndarray"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidWhen is returned when a payment timing value is not one of
	// the recognised spellings.
	ErrInvalidWhen = errors.New("invalid payment timing")

	// ErrNotOneDimensional is returned when a cash-flow argument has rank > 1.
	// It is always joined with ndarray.ErrShapeMismatch.
	ErrNotOneDimensional = errors.New("cash flows must be a rank-1 array")

	// ErrInvalidMaxIter is returned when the rate solver is given a negative
	// iteration cap.
	ErrInvalidMaxIter = errors.New("maxiter must not be negative")
)

// =============================================================================
// STRUCTURED ERRORS
// =============================================================================

// WhenError reports an unrecognised timing value.
type WhenError struct {
	Value any
	// Index is the element position for sequence input, -1 for a scalar.
	Index int
}

func (e *WhenError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("invalid payment timing %v", e.Value)
	}
	return fmt.Sprintf("invalid payment timing %v at index %d", e.Value, e.Index)
}

func (e *WhenError) Unwrap() error {
	return ErrInvalidWhen
}

func notOneDimensional(fn string, shape []int) error {
	shapeErr := &ndarray.ShapeError{Shapes: [][]int{shape}, Reason: fn + " expects a rank-1 array"}
	return fmt.Errorf("%s: %w: %w", fn, ErrNotOneDimensional, shapeErr)
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid caller input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidWhen) ||
		errors.Is(err, ndarray.ErrShapeMismatch) ||
		errors.Is(err, ErrInvalidMaxIter)
}
