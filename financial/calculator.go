package financial

import (
	"github.com/shopspring/decimal"
	"github.com/warp/tvm-engine/ndarray"
	"github.com/warp/tvm-engine/numeric"
)

// Calculator evaluates the financial functions in one numeric domain.
// It holds no mutable state and is safe for concurrent use.
type Calculator[T any] struct {
	num  numeric.Domain[T]
	zero T
	one  T
}

// NewCalculator returns a calculator over the given domain.
func NewCalculator[T any](d numeric.Domain[T]) *Calculator[T] {
	return &Calculator[T]{
		num:  d,
		zero: d.FromInt(0),
		one:  d.FromInt(1),
	}
}

var (
	// Float evaluates in float64.
	Float = NewCalculator[float64](numeric.Float64{})

	// Decimal evaluates in shopspring decimals with the default precision.
	Decimal = NewCalculator[decimal.NullDecimal](numeric.Decimal{})
)

// Domain returns the calculator's numeric domain.
func (c *Calculator[T]) Domain() numeric.Domain[T] { return c.num }

// =============================================================================
// BROADCAST HELPERS
// =============================================================================

// broadcast normalises nil arguments to scalar zero and nil timing to End,
// then expands everything to the common shape.
func (c *Calculator[T]) broadcast(when *ndarray.Array[When], args ...*ndarray.Array[T]) ([]*ndarray.Array[T], *ndarray.Array[When], []int, error) {
	if when == nil {
		when = AtEnd()
	}

	shapes := make([][]int, 0, len(args)+1)
	for i, a := range args {
		if a == nil {
			args[i] = ndarray.Scalar(c.zero)
		}
		shapes = append(shapes, args[i].Shape())
	}
	shapes = append(shapes, when.Shape())

	shape, err := ndarray.BroadcastShapes(shapes...)
	if err != nil {
		return nil, nil, nil, err
	}

	out := make([]*ndarray.Array[T], len(args))
	for i, a := range args {
		if out[i], err = a.BroadcastTo(shape); err != nil {
			return nil, nil, nil, err
		}
	}
	w, err := when.BroadcastTo(shape)
	if err != nil {
		return nil, nil, nil, err
	}
	return out, w, shape, nil
}

// timing returns 1 + rate*when.
func (c *Calculator[T]) timing(rate T, w When) T {
	return c.num.Add(c.one, c.num.Mul(rate, c.num.FromInt(int64(w))))
}

// growth returns (1+rate)^nper.
func (c *Calculator[T]) growth(rate, nper T) T {
	return c.num.Pow(c.num.Add(c.one, rate), nper)
}

// annuityFactor is nper when rate is zero and (1+rate*when)*((1+rate)^nper-1)/rate
// otherwise. Only the nonzero branch divides by rate.
func (c *Calculator[T]) annuityFactor(rate, nper, growth T, w When) T {
	d := c.num
	if d.IsZero(rate) {
		return nper
	}
	return d.Div(d.Mul(c.timing(rate, w), d.Sub(growth, c.one)), rate)
}
