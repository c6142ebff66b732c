package financial

import (
	"github.com/warp/tvm-engine/ndarray"
)

// =============================================================================
// AMORTIZATION SPLIT - Interest vs principal portion of a payment
// =============================================================================

// IPMT computes the interest portion of the payment due in period per.
// Periods are numbered from 1.
//
// Edge cases:
//   - per < 1: NaN, no payment happens before the first period
//   - Begin and per == 1: exactly 0, nothing has accrued yet
//   - Begin and per > 1: the interest is discounted by one period
func (c *Calculator[T]) IPMT(rate, per, nper, pv, fv *ndarray.Array[T], when *ndarray.Array[When]) (*ndarray.Array[T], error) {
	args, w, shape, err := c.broadcast(when, rate, per, nper, pv, fv)
	if err != nil {
		return nil, err
	}

	out := ndarray.Zeros[T](shape)
	for i := 0; i < out.Size(); i++ {
		out.Set(i, c.ipmt(args[0].At(i), args[1].At(i), args[2].At(i), args[3].At(i), args[4].At(i), w.At(i)))
	}
	return out, nil
}

func (c *Calculator[T]) ipmt(rate, per, nper, pv, fv T, w When) T {
	d := c.num
	switch {
	case d.Less(per, c.one):
		return d.NaN()
	case w == Begin && d.Equal(per, c.one):
		return c.zero
	}

	total := c.pmt(rate, nper, pv, fv, w)
	interest := d.Mul(c.remainingBalance(rate, per, total, pv, w), rate)
	if w == Begin && d.Less(c.one, per) {
		interest = d.Div(interest, d.Add(c.one, rate))
	}
	return interest
}

// PPMT computes the principal portion of the payment due in period per:
// PMT minus IPMT, so it inherits IPMT's edge cases.
func (c *Calculator[T]) PPMT(rate, per, nper, pv, fv *ndarray.Array[T], when *ndarray.Array[When]) (*ndarray.Array[T], error) {
	args, w, shape, err := c.broadcast(when, rate, per, nper, pv, fv)
	if err != nil {
		return nil, err
	}

	d := c.num
	out := ndarray.Zeros[T](shape)
	for i := 0; i < out.Size(); i++ {
		r, p, n, v, f := args[0].At(i), args[1].At(i), args[2].At(i), args[3].At(i), args[4].At(i)
		out.Set(i, d.Sub(c.pmt(r, n, v, f, w.At(i)), c.ipmt(r, p, n, v, f, w.At(i))))
	}
	return out, nil
}

// RemainingBalance is the balance on the loan at the start of period per:
// the future value after per-1 periods of payment pmt.
func (c *Calculator[T]) RemainingBalance(rate, per, pmt, pv *ndarray.Array[T], when *ndarray.Array[When]) (*ndarray.Array[T], error) {
	args, w, shape, err := c.broadcast(when, rate, per, pmt, pv)
	if err != nil {
		return nil, err
	}

	out := ndarray.Zeros[T](shape)
	for i := 0; i < out.Size(); i++ {
		out.Set(i, c.remainingBalance(args[0].At(i), args[1].At(i), args[2].At(i), args[3].At(i), w.At(i)))
	}
	return out, nil
}

func (c *Calculator[T]) remainingBalance(rate, per, pmt, pv T, w When) T {
	return c.fv(rate, c.num.Sub(per, c.one), pmt, pv, w)
}
