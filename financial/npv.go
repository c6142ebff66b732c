package financial

import (
	"github.com/warp/tvm-engine/ndarray"
)

// NPV computes the net present value of a cash-flow series discounted at a
// single rate: Σ values[t] / (1+rate)^t for t = 0..len-1.
//
// values[0] is undiscounted. Values of rank > 1 are rejected.
func (c *Calculator[T]) NPV(rate T, values *ndarray.Array[T]) (T, error) {
	if values.Ndim() > 1 {
		return c.num.NaN(), notOneDimensional("npv", values.Shape())
	}
	return c.npv(rate, values.AtLeast1D().Flat()), nil
}

func (c *Calculator[T]) npv(rate T, values []T) T {
	d := c.num
	base := d.Add(c.one, rate)
	sum := c.zero
	for t, v := range values {
		sum = d.Add(sum, d.Div(v, d.Pow(base, d.FromInt(int64(t)))))
	}
	return sum
}

// MIRR computes the modified internal rate of return: positive flows are
// compounded at reinvestRate, negative flows discounted at financeRate.
//
// values must contain at least one strictly positive and one strictly
// negative entry, otherwise the result is NaN.
func (c *Calculator[T]) MIRR(values *ndarray.Array[T], financeRate, reinvestRate T) (T, error) {
	d := c.num
	if values.Ndim() > 1 {
		return d.NaN(), notOneDimensional("mirr", values.Shape())
	}

	flows := values.AtLeast1D().Flat()
	n := len(flows)
	pos := make([]T, n)
	neg := make([]T, n)
	var anyPos, anyNeg bool
	for i, v := range flows {
		pos[i], neg[i] = c.zero, c.zero
		switch d.Sign(v) {
		case 1:
			pos[i] = v
			anyPos = true
		case -1:
			neg[i] = v
			anyNeg = true
		}
	}
	if !anyPos || !anyNeg {
		return d.NaN(), nil
	}

	numer := d.Abs(c.npv(reinvestRate, pos))
	denom := d.Abs(c.npv(financeRate, neg))
	exp := d.Div(c.one, d.FromInt(int64(n-1)))
	return d.Sub(d.Mul(d.Pow(d.Div(numer, denom), exp), d.Add(c.one, reinvestRate)), c.one), nil
}
