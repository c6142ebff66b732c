package financial

import (
	"math"

	"github.com/warp/tvm-engine/ndarray"
)

// =============================================================================
// CLOSED-FORM ANNUITY EVALUATOR
// =============================================================================

// FV computes the future value after nper periods of a present value pv and
// a fixed payment pmt at the given rate.
//
// A nil when means End. The result has the broadcast shape of the inputs.
func (c *Calculator[T]) FV(rate, nper, pmt, pv *ndarray.Array[T], when *ndarray.Array[When]) (*ndarray.Array[T], error) {
	args, w, shape, err := c.broadcast(when, rate, nper, pmt, pv)
	if err != nil {
		return nil, err
	}

	out := ndarray.Zeros[T](shape)
	for i := 0; i < out.Size(); i++ {
		out.Set(i, c.fv(args[0].At(i), args[1].At(i), args[2].At(i), args[3].At(i), w.At(i)))
	}
	return out, nil
}

func (c *Calculator[T]) fv(rate, nper, pmt, pv T, w When) T {
	d := c.num
	if d.IsZero(rate) {
		return d.Neg(d.Add(pv, d.Mul(pmt, nper)))
	}

	temp := c.growth(rate, nper)
	return d.Sub(
		d.Neg(d.Mul(pv, temp)),
		d.Mul(d.Div(d.Mul(pmt, c.timing(rate, w)), rate), d.Sub(temp, c.one)),
	)
}

// PMT computes the fixed periodic payment that takes pv to fv over nper
// periods. Nil fv means 0; nil when means End.
func (c *Calculator[T]) PMT(rate, nper, pv, fv *ndarray.Array[T], when *ndarray.Array[When]) (*ndarray.Array[T], error) {
	args, w, shape, err := c.broadcast(when, rate, nper, pv, fv)
	if err != nil {
		return nil, err
	}

	out := ndarray.Zeros[T](shape)
	for i := 0; i < out.Size(); i++ {
		out.Set(i, c.pmt(args[0].At(i), args[1].At(i), args[2].At(i), args[3].At(i), w.At(i)))
	}
	return out, nil
}

func (c *Calculator[T]) pmt(rate, nper, pv, fv T, w When) T {
	d := c.num
	temp := c.growth(rate, nper)
	fact := c.annuityFactor(rate, nper, temp, w)
	return d.Neg(d.Div(d.Add(fv, d.Mul(pv, temp)), fact))
}

// PV computes the present value of fv and a stream of payments pmt over
// nper periods. Nil fv means 0; nil when means End.
func (c *Calculator[T]) PV(rate, nper, pmt, fv *ndarray.Array[T], when *ndarray.Array[When]) (*ndarray.Array[T], error) {
	args, w, shape, err := c.broadcast(when, rate, nper, pmt, fv)
	if err != nil {
		return nil, err
	}

	out := ndarray.Zeros[T](shape)
	for i := 0; i < out.Size(); i++ {
		out.Set(i, c.pv(args[0].At(i), args[1].At(i), args[2].At(i), args[3].At(i), w.At(i)))
	}
	return out, nil
}

func (c *Calculator[T]) pv(rate, nper, pmt, fv T, w When) T {
	d := c.num
	temp := c.growth(rate, nper)
	fact := c.annuityFactor(rate, nper, temp, w)
	return d.Neg(d.Div(d.Add(fv, d.Mul(pmt, fact)), temp))
}

// =============================================================================
// NUMBER OF PERIODS (float64 only)
// =============================================================================

// NPer computes the number of periodic payments. The nonzero-rate branch
// takes logarithms, so it is only defined over float64.
//
// With a zero rate the result is -(fv+pv)/pmt; a zero payment yields ±Inf,
// which is a valid answer (the loan is never retired), not an error.
func NPer(rate, pmt, pv, fv *ndarray.Array[float64], when *ndarray.Array[When]) (*ndarray.Array[float64], error) {
	args, w, shape, err := Float.broadcast(when, rate, pmt, pv, fv)
	if err != nil {
		return nil, err
	}

	out := ndarray.Zeros[float64](shape)
	for i := 0; i < out.Size(); i++ {
		out.Set(i, nper(args[0].At(i), args[1].At(i), args[2].At(i), args[3].At(i), w.At(i)))
	}
	return out, nil
}

func nper(rate, pmt, pv, fv float64, w When) float64 {
	if rate == 0 {
		return -(fv + pv) / pmt
	}
	z := pmt * (1 + rate*float64(w)) / rate
	return math.Log((-fv+z)/(pv+z)) / math.Log(1+rate)
}
