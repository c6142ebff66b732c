package financial_test

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/tvm-engine/financial"
	"github.com/warp/tvm-engine/ndarray"
	"github.com/warp/tvm-engine/numeric"
)

func iterations(n int) *int { return &n }

func TestRate_Simple(t *testing.T) {
	got := item(t)(financial.Float.Rate(s(10), s(0), s(-3500), s(10000), financial.RateOptions[float64]{}))
	assert.InDelta(t, 0.1107, got, 5e-5)
	assert.InDelta(t, 0.11069085371426901, got, 1e-9)
}

func TestRate_BeginTimingWithoutPayment(t *testing.T) {
	// With no payment the timing does not matter.
	got := item(t)(financial.Float.Rate(s(10), s(0), s(-3500), s(10000),
		financial.RateOptions[float64]{When: financial.AtBeginning()}))
	assert.InDelta(t, 0.11069085371426901, got, 1e-9)
}

func TestRate_ReportsIterations(t *testing.T) {
	res, err := financial.Float.RateWithStats(s(10), s(0), s(-3500), s(10000), financial.RateOptions[float64]{})
	require.NoError(t, err)
	assert.True(t, res.Converged)
	assert.Equal(t, 3, res.Iterations)
}

func TestRate_RecoversPresentValue(t *testing.T) {
	// GIVEN: a 30-year loan of 200,000 repaid at 1,000/month
	// WHEN: solving for the rate and feeding it back into PV
	// THEN: the original present value is recovered
	r := item(t)(financial.Float.Rate(s(360), s(-1000), s(200000), s(0), financial.RateOptions[float64]{}))
	require.False(t, math.IsNaN(r))

	pv := item(t)(financial.Float.PV(s(r), s(360), s(-1000), s(0), nil))
	assert.InDelta(t, 200000, pv, 1e-3)
}

func TestRate_BatchConverges(t *testing.T) {
	out, err := financial.Float.Rate(vec(10, 20), s(0), s(-3500), s(10000), financial.RateOptions[float64]{})
	require.NoError(t, err)
	require.Equal(t, []int{2}, out.Shape())
	assert.InDelta(t, 0.11069085371426901, out.At(0), 1e-6)
	assert.InDelta(t, 0.05389318894789021, out.At(1), 1e-6)
}

func TestRate_NoSolutionIsNaN(t *testing.T) {
	// (1+r)^10 = -1 has no real solution.
	got := item(t)(financial.Float.Rate(s(10), s(0), s(1000), s(1000), financial.RateOptions[float64]{}))
	assert.True(t, math.IsNaN(got))
}

func TestRate_BatchFailureIsAllOrNothing(t *testing.T) {
	// GIVEN: a batch where the first element converges and the second cannot
	// WHEN: solving
	// THEN: every element is NaN
	res, err := financial.Float.RateWithStats(s(10), s(0), vec(-3500, 1000), vec(10000, 1000), financial.RateOptions[float64]{})
	require.NoError(t, err)
	assert.False(t, res.Converged)
	assert.Equal(t, financial.DefaultRateMaxIter, res.Iterations)
	for _, v := range res.Rate.Flat() {
		assert.True(t, math.IsNaN(v))
	}
}

func TestRate_MaxIterTooSmall(t *testing.T) {
	got := item(t)(financial.Float.Rate(s(10), s(0), s(-3500), s(10000), financial.RateOptions[float64]{MaxIter: iterations(2)}))
	assert.True(t, math.IsNaN(got))
}

func TestRate_ZeroMaxIterIsNaN(t *testing.T) {
	// GIVEN: an explicit iteration cap of zero
	// WHEN: solving
	// THEN: no iteration runs and the result is NaN
	res, err := financial.Float.RateWithStats(s(10), s(0), s(-3500), s(10000),
		financial.RateOptions[float64]{MaxIter: iterations(0)})
	require.NoError(t, err)
	assert.False(t, res.Converged)
	assert.Equal(t, 0, res.Iterations)
	assert.True(t, math.IsNaN(res.Rate.Item()))
}

func TestRate_NegativeMaxIter(t *testing.T) {
	_, err := financial.Float.Rate(s(10), s(0), s(-3500), s(10000), financial.RateOptions[float64]{MaxIter: iterations(-1)})
	assert.ErrorIs(t, err, financial.ErrInvalidMaxIter)
}

func TestRate_GuessArrayBroadcasts(t *testing.T) {
	out, err := financial.Float.Rate(s(10), s(0), s(-3500), s(10000),
		financial.RateOptions[float64]{Guess: vec(0.05, 0.1, 0.2)})
	require.NoError(t, err)
	assert.Equal(t, []int{3}, out.Shape())
	for _, v := range out.Flat() {
		assert.InDelta(t, 0.11069085371426901, v, 1e-6)
	}
}

func TestRate_CustomTolerance(t *testing.T) {
	tol := 1e-12
	got := item(t)(financial.Float.Rate(s(10), s(0), s(-3500), s(10000),
		financial.RateOptions[float64]{Tol: &tol}))
	assert.InDelta(t, math.Pow(10000.0/3500, 0.1)-1, got, 1e-12)
}

func TestRate_Decimal(t *testing.T) {
	// GIVEN: decimal operands and no explicit guess or tolerance
	// WHEN: solving for the rate
	// THEN: the defaults are built in the decimal domain and the result is decimal
	d := financial.Decimal
	out, err := d.Rate(
		ndarray.Scalar(numeric.DecString("10")),
		ndarray.Scalar(numeric.DecString("0")),
		ndarray.Scalar(numeric.DecString("-3500")),
		ndarray.Scalar(numeric.DecString("10000")),
		financial.RateOptions[decimal.NullDecimal]{},
	)
	require.NoError(t, err)

	got := out.Item()
	require.True(t, got.Valid)
	assert.InDelta(t, 0.1106908537142689, got.Decimal.InexactFloat64(), 1e-12)
}

func TestRate_DecimalNoSolutionIsInvalid(t *testing.T) {
	d := financial.Decimal
	out, err := d.Rate(
		ndarray.Scalar(numeric.DecString("10")),
		ndarray.Scalar(numeric.DecString("0")),
		ndarray.Scalar(numeric.DecString("1000")),
		ndarray.Scalar(numeric.DecString("1000")),
		financial.RateOptions[decimal.NullDecimal]{MaxIter: iterations(20)},
	)
	require.NoError(t, err)
	assert.False(t, out.Item().Valid)
}

func TestSolveRate_StopsWhenCanceled(t *testing.T) {
	// GIVEN: a non-converging decimal input with a huge iteration cap
	// WHEN: the context is already canceled
	// THEN: the solver returns the context error instead of iterating
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := financial.Decimal.SolveRate(ctx,
		ndarray.Scalar(numeric.DecString("10")),
		ndarray.Scalar(numeric.DecString("0")),
		ndarray.Scalar(numeric.DecString("1000")),
		ndarray.Scalar(numeric.DecString("1000")),
		financial.RateOptions[decimal.NullDecimal]{MaxIter: iterations(2000000000)},
	)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSolveRate_StopsAtDeadline(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := financial.Float.SolveRate(ctx, s(10), s(0), s(1000), s(1000),
		financial.RateOptions[float64]{MaxIter: iterations(2000000000)})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 5*time.Second)
}
