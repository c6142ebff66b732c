/*
Package ndarray provides a small N-dimensional array with numpy-style
broadcasting, generic over the element type.

PURPOSE:
  The financial functions accept scalars or arrays for every argument and
  evaluate elementwise over the broadcast shape. This package is the
  capability they consume: shape bookkeeping, broadcasting and flat
  element access. It does no arithmetic of its own.

KEY CONCEPTS:
  - Array[T]: row-major flat data plus a shape
  - Scalar:   a 0-dimensional array (shape [])
  - Broadcast: trailing dimensions are aligned; each pair must be equal
    or one of them must be 1

USAGE:
  rates := ndarray.Vector(0.05, 0.06, 0.07)
  nper := ndarray.Scalar(120.0)
  shape, err := ndarray.BroadcastShapes(rates.Shape(), nper.Shape())
  // shape == [3]

SEE ALSO:
  - broadcast.go: shape resolution and expansion
  - financial/: the consumers
*/
package ndarray

import "fmt"

// Array is an immutable-by-convention N-dimensional array stored row-major.
type Array[T any] struct {
	shape []int
	data  []T
}

// =============================================================================
// CONSTRUCTORS
// =============================================================================

// Scalar returns a 0-dimensional array holding v.
func Scalar[T any](v T) *Array[T] {
	return &Array[T]{shape: []int{}, data: []T{v}}
}

// Vector returns a 1-dimensional array holding a copy of values.
func Vector[T any](values ...T) *Array[T] {
	data := make([]T, len(values))
	copy(data, values)
	return &Array[T]{shape: []int{len(values)}, data: data}
}

// New returns an array with the given shape over a copy of data.
// len(data) must equal the product of shape.
func New[T any](shape []int, data []T) (*Array[T], error) {
	size, err := sizeOf(shape)
	if err != nil {
		return nil, err
	}
	if size != len(data) {
		return nil, &ShapeError{
			Shapes: [][]int{shape},
			Reason: fmt.Sprintf("shape holds %d elements, got %d", size, len(data)),
		}
	}
	cp := make([]T, len(data))
	copy(cp, data)
	return &Array[T]{shape: cloneShape(shape), data: cp}, nil
}

// Full returns an array of the given shape with every element set to v.
func Full[T any](shape []int, v T) *Array[T] {
	size, err := sizeOf(shape)
	if err != nil {
		panic(err)
	}
	data := make([]T, size)
	for i := range data {
		data[i] = v
	}
	return &Array[T]{shape: cloneShape(shape), data: data}
}

// Zeros returns an array of the given shape filled with T's zero value.
func Zeros[T any](shape []int) *Array[T] {
	var zero T
	return Full(shape, zero)
}

// Map applies f to every element of a, preserving the shape.
func Map[T, U any](a *Array[T], f func(T) U) *Array[U] {
	out := make([]U, len(a.data))
	for i, v := range a.data {
		out[i] = f(v)
	}
	return &Array[U]{shape: cloneShape(a.shape), data: out}
}

// =============================================================================
// ACCESSORS
// =============================================================================

// Shape returns a copy of the array's shape.
func (a *Array[T]) Shape() []int { return cloneShape(a.shape) }

// Ndim returns the number of dimensions (0 for a scalar).
func (a *Array[T]) Ndim() int { return len(a.shape) }

// Size returns the number of elements.
func (a *Array[T]) Size() int { return len(a.data) }

// IsScalar reports whether the array is 0-dimensional.
func (a *Array[T]) IsScalar() bool { return len(a.shape) == 0 }

// At returns the element at flat (row-major) index i.
func (a *Array[T]) At(i int) T { return a.data[i] }

// Set stores v at flat index i. Only used while an array is being built.
func (a *Array[T]) Set(i int, v T) { a.data[i] = v }

// Item returns the single element of a size-1 array.
func (a *Array[T]) Item() T {
	if len(a.data) != 1 {
		panic(fmt.Sprintf("ndarray: Item called on array of size %d", len(a.data)))
	}
	return a.data[0]
}

// Flat returns a copy of the elements in row-major order.
func (a *Array[T]) Flat() []T {
	out := make([]T, len(a.data))
	copy(out, a.data)
	return out
}

// Reshape returns a view-free copy of a with a new shape of equal size.
func (a *Array[T]) Reshape(shape ...int) (*Array[T], error) {
	return New(shape, a.data)
}

// AtLeast1D promotes a scalar to a length-1 vector and returns other
// arrays unchanged.
func (a *Array[T]) AtLeast1D() *Array[T] {
	if a.IsScalar() {
		return &Array[T]{shape: []int{1}, data: []T{a.data[0]}}
	}
	return a
}

func sizeOf(shape []int) (int, error) {
	size := 1
	for _, d := range shape {
		if d < 0 {
			return 0, &ShapeError{Shapes: [][]int{shape}, Reason: "negative dimension"}
		}
		size *= d
	}
	return size, nil
}

func cloneShape(shape []int) []int {
	out := make([]int, len(shape))
	copy(out, shape)
	return out
}
