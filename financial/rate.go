package financial

import (
	"context"

	"github.com/warp/tvm-engine/ndarray"
	"github.com/warp/tvm-engine/numeric"
)

const (
	// DefaultRateMaxIter caps the Newton-Raphson iterations of Rate.
	DefaultRateMaxIter = 100
	// DefaultRateGuess is the starting rate, parsed in the caller's domain.
	DefaultRateGuess = "0.1"
	// DefaultRateTol is the convergence tolerance, parsed in the caller's domain.
	DefaultRateTol = "1e-6"
)

// RateOptions holds the optional arguments of Rate. Nil fields select the
// defaults. A MaxIter of 0 runs no iterations, so every element is NaN.
type RateOptions[T any] struct {
	When    *ndarray.Array[When]
	Guess   *ndarray.Array[T]
	Tol     *T
	MaxIter *int
}

// RateResult is the outcome of a batched rate solve.
type RateResult[T any] struct {
	Rate       *ndarray.Array[T]
	Iterations int
	Converged  bool
}

// Rate computes the interest rate per period by solving the annuity
// identity for rate with Newton-Raphson.
//
// Convergence is judged over the whole batch: the solve succeeds only when
// every element moves less than the tolerance in the same iteration. If
// MaxIter is reached first, every element of the result is NaN, including
// elements that settled on their own.
func (c *Calculator[T]) Rate(nper, pmt, pv, fv *ndarray.Array[T], opts RateOptions[T]) (*ndarray.Array[T], error) {
	res, err := c.RateWithStats(nper, pmt, pv, fv, opts)
	if err != nil {
		return nil, err
	}
	return res.Rate, nil
}

// RateWithStats is Rate that also reports the iteration count and whether
// the batch converged.
func (c *Calculator[T]) RateWithStats(nper, pmt, pv, fv *ndarray.Array[T], opts RateOptions[T]) (RateResult[T], error) {
	return c.SolveRate(context.Background(), nper, pmt, pv, fv, opts)
}

// SolveRate is RateWithStats that stops early with ctx.Err() once ctx is
// done. Cancellation is checked before every iteration.
func (c *Calculator[T]) SolveRate(ctx context.Context, nper, pmt, pv, fv *ndarray.Array[T], opts RateOptions[T]) (RateResult[T], error) {
	d := c.num

	maxIter := DefaultRateMaxIter
	if opts.MaxIter != nil {
		maxIter = *opts.MaxIter
	}
	if maxIter < 0 {
		return RateResult[T]{}, ErrInvalidMaxIter
	}

	guess := opts.Guess
	if guess == nil {
		guess = ndarray.Scalar(numeric.MustParse(d, DefaultRateGuess))
	}
	var tol T
	if opts.Tol != nil {
		tol = *opts.Tol
	} else {
		tol = numeric.MustParse(d, DefaultRateTol)
	}

	args, w, shape, err := c.broadcast(opts.When, nper, pmt, pv, fv, guess)
	if err != nil {
		return RateResult[T]{}, err
	}

	rn := args[4].Flat()
	next := make([]T, len(rn))
	iter := 0
	closeEnough := false
	for iter < maxIter && !closeEnough {
		if err := ctx.Err(); err != nil {
			return RateResult[T]{}, err
		}
		closeEnough = true
		for i := range rn {
			next[i] = d.Sub(rn[i], c.gDivGp(rn[i], args[0].At(i), args[1].At(i), args[2].At(i), args[3].At(i), w.At(i)))
			if !d.Less(d.Abs(d.Sub(next[i], rn[i])), tol) {
				closeEnough = false
			}
		}
		iter++
		rn, next = next, rn
	}

	if !closeEnough {
		return RateResult[T]{
			Rate:       ndarray.Full(shape, d.NaN()),
			Iterations: iter,
		}, nil
	}

	out, err := ndarray.New(shape, rn)
	if err != nil {
		return RateResult[T]{}, err
	}
	return RateResult[T]{Rate: out, Iterations: iter, Converged: true}, nil
}

// gDivGp evaluates g(r)/g'(r) where
//
//	g(r) = fv + pv*(1+r)^n + pmt*(1+r*w)/r*((1+r)^n - 1)
//
// and g' is its derivative with respect to r. A vanishing g' is not guarded;
// the resulting non-finite step simply never satisfies the tolerance.
func (c *Calculator[T]) gDivGp(r, n, p, x, y T, w When) T {
	d := c.num
	wt := d.FromInt(int64(w))
	t1 := d.Pow(d.Add(r, c.one), n)
	t2 := d.Pow(d.Add(r, c.one), d.Sub(n, c.one))
	rw1 := d.Add(d.Mul(r, wt), c.one)
	t1m1 := d.Sub(t1, c.one)

	g := d.Add(
		d.Add(y, d.Mul(t1, x)),
		d.Div(d.Mul(d.Mul(p, t1m1), rw1), r),
	)

	gp := d.Mul(d.Mul(n, t2), x)
	gp = d.Sub(gp, d.Div(d.Mul(d.Mul(p, t1m1), rw1), d.Mul(r, r)))
	gp = d.Add(gp, d.Div(d.Mul(d.Mul(d.Mul(n, p), t2), rw1), r))
	gp = d.Add(gp, d.Div(d.Mul(d.Mul(p, t1m1), wt), r))

	return d.Div(g, gp)
}
