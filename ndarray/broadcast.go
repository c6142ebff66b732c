package ndarray

import (
	"errors"
	"fmt"
)

// ErrShapeMismatch is returned when arrays cannot be broadcast together or
// when an array has a rank the caller does not accept.
var ErrShapeMismatch = errors.New("shape mismatch")

// ShapeError carries the shapes involved in a failed broadcast.
type ShapeError struct {
	Shapes [][]int
	Reason string
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("shape mismatch: %s (shapes %v)", e.Reason, e.Shapes)
}

func (e *ShapeError) Unwrap() error {
	return ErrShapeMismatch
}

// =============================================================================
// SHAPE RESOLUTION
// =============================================================================

// BroadcastShapes returns the common shape of all inputs.
//
// Dimensions are aligned from the right. A pair of dimensions is compatible
// when they are equal or when one of them is 1; the result takes the larger.
func BroadcastShapes(shapes ...[]int) ([]int, error) {
	ndim := 0
	for _, s := range shapes {
		if len(s) > ndim {
			ndim = len(s)
		}
	}

	out := make([]int, ndim)
	for i := range out {
		out[i] = 1
	}

	for _, s := range shapes {
		offset := ndim - len(s)
		for i, d := range s {
			j := offset + i
			switch {
			case out[j] == d, d == 1:
			case out[j] == 1:
				out[j] = d
			default:
				return nil, &ShapeError{
					Shapes: cloneShapes(shapes),
					Reason: fmt.Sprintf("dimension %d: %d vs %d", j, out[j], d),
				}
			}
		}
	}
	return out, nil
}

// BroadcastTo expands a to shape, materialising repeated elements.
func (a *Array[T]) BroadcastTo(shape []int) (*Array[T], error) {
	if _, err := BroadcastShapes(a.shape, shape); err != nil {
		return nil, err
	}
	if len(shape) < len(a.shape) {
		return nil, &ShapeError{
			Shapes: [][]int{a.Shape(), cloneShape(shape)},
			Reason: "target has fewer dimensions than source",
		}
	}
	if equalShape(a.shape, shape) {
		return a, nil
	}

	size, err := sizeOf(shape)
	if err != nil {
		return nil, err
	}

	// Source strides with zeros on broadcast axes.
	offset := len(shape) - len(a.shape)
	strides := make([]int, len(shape))
	stride := 1
	for i := len(a.shape) - 1; i >= 0; i-- {
		if a.shape[i] == shape[offset+i] {
			strides[offset+i] = stride
		} else if a.shape[i] != 1 {
			return nil, &ShapeError{
				Shapes: [][]int{a.Shape(), cloneShape(shape)},
				Reason: fmt.Sprintf("cannot expand dimension %d of size %d", i, a.shape[i]),
			}
		}
		stride *= a.shape[i]
	}

	data := make([]T, size)
	index := make([]int, len(shape))
	for k := 0; k < size; k++ {
		src := 0
		for i, idx := range index {
			src += idx * strides[i]
		}
		data[k] = a.data[src]

		for i := len(index) - 1; i >= 0; i-- {
			index[i]++
			if index[i] < shape[i] {
				break
			}
			index[i] = 0
		}
	}
	return &Array[T]{shape: cloneShape(shape), data: data}, nil
}

// Broadcast expands every array to their common shape.
func Broadcast[T any](arrays ...*Array[T]) ([]*Array[T], []int, error) {
	shapes := make([][]int, len(arrays))
	for i, a := range arrays {
		shapes[i] = a.shape
	}
	shape, err := BroadcastShapes(shapes...)
	if err != nil {
		return nil, nil, err
	}

	out := make([]*Array[T], len(arrays))
	for i, a := range arrays {
		if out[i], err = a.BroadcastTo(shape); err != nil {
			return nil, nil, err
		}
	}
	return out, shape, nil
}

func equalShape(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func cloneShapes(shapes [][]int) [][]int {
	out := make([][]int, len(shapes))
	for i, s := range shapes {
		out[i] = cloneShape(s)
	}
	return out
}
