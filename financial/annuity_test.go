package financial_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/tvm-engine/financial"
	"github.com/warp/tvm-engine/ndarray"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func s(v float64) *ndarray.Array[float64] { return ndarray.Scalar(v) }

func vec(v ...float64) *ndarray.Array[float64] { return ndarray.Vector(v...) }

// item unwraps a scalar result: item(t)(financial.Float.FV(...)).
func item(t *testing.T) func(*ndarray.Array[float64], error) float64 {
	t.Helper()
	return func(a *ndarray.Array[float64], err error) float64 {
		t.Helper()
		require.NoError(t, err)
		require.True(t, a.IsScalar(), "expected a scalar result, got shape %v", a.Shape())
		return a.Item()
	}
}

// =============================================================================
// FV / PV / PMT
// =============================================================================

func TestFV_MonthlySavings(t *testing.T) {
	// GIVEN: $100 now plus $100/month for 10 years at 5%/year compounded monthly
	// WHEN: computing the future value
	// THEN: $15,692.93 is available
	got := item(t)(financial.Float.FV(s(0.05/12), s(10*12), s(-100), s(-100), nil))
	assert.InDelta(t, 15692.928894335748, got, 1e-8)
}

func TestFV_ZeroRate(t *testing.T) {
	got := item(t)(financial.Float.FV(s(0), s(10), s(-100), s(-1000), nil))
	assert.Equal(t, 2000.0, got)
}

func TestFV_Begin(t *testing.T) {
	got := item(t)(financial.Float.FV(s(0.05/12), s(120), s(-100), s(-100), financial.AtBeginning()))
	assert.InDelta(t, 15757.629844104778, got, 1e-8)
}

func TestFV_SatisfiesAnnuityIdentity(t *testing.T) {
	cases := []struct {
		rate, nper, pmt, pv float64
		when                financial.When
	}{
		{0.05 / 12, 120, -100, -100, financial.End},
		{0.075, 20, -2000, 0, financial.End},
		{0.01, 36, 250, -5000, financial.Begin},
		{-0.02, 12, 100, 1000, financial.End},
		{0, 24, -50, 300, financial.Begin},
	}

	for _, tc := range cases {
		fv := item(t)(financial.Float.FV(s(tc.rate), s(tc.nper), s(tc.pmt), s(tc.pv), ndarray.Scalar(tc.when)))
		w := float64(tc.when)
		var residual float64
		if tc.rate == 0 {
			residual = fv + tc.pv + tc.pmt*tc.nper
		} else {
			g := math.Pow(1+tc.rate, tc.nper)
			residual = fv + tc.pv*g + tc.pmt*(1+tc.rate*w)/tc.rate*(g-1)
		}
		assert.InDelta(t, 0, residual, 1e-9, "case %+v", tc)
	}
}

func TestPMT_Mortgage(t *testing.T) {
	// GIVEN: a $200,000 loan over 15 years at 7.5%/year
	// WHEN: computing the monthly payment
	// THEN: -1854.02
	got := item(t)(financial.Float.PMT(s(0.075/12), s(12*15), s(200000), nil, nil))
	assert.InDelta(t, -1854.0247200054619, got, 1e-9)
}

func TestPMT_ZeroRate(t *testing.T) {
	got := item(t)(financial.Float.PMT(s(0), s(60), s(15000), nil, nil))
	assert.Equal(t, -250.0, got)
}

func TestPMT_BroadcastsAgainstRateVector(t *testing.T) {
	// GIVEN: one rate vector of shape (3,) and scalar nper and pv
	// WHEN: computing payments
	// THEN: the result has shape (3,) and each element matches the scalar call
	rates := []float64{0.05 / 12, 0.06 / 12, 0.07 / 12}
	out, err := financial.Float.PMT(vec(rates...), s(120), s(10000), nil, nil)
	require.NoError(t, err)
	assert.Equal(t, []int{3}, out.Shape())

	for i, r := range rates {
		want := item(t)(financial.Float.PMT(s(r), s(120), s(10000), nil, nil))
		assert.Equal(t, want, out.At(i))
	}
	assert.InDelta(t, -106.06551523907554, out.At(0), 1e-9)
	assert.InDelta(t, -116.10847921862376, out.At(2), 1e-9)
}

func TestPMT_MixedZeroAndNonzeroRates(t *testing.T) {
	out, err := financial.Float.PMT(vec(0, 0.08/12), s(60), s(15000), nil, nil)
	require.NoError(t, err)
	assert.Equal(t, -250.0, out.At(0))
	assert.InDelta(t, -304.14591432620773, out.At(1), 1e-9)
}

func TestPMT_ShapeMismatch(t *testing.T) {
	_, err := financial.Float.PMT(vec(0.01, 0.02), vec(10, 20, 30), s(100), nil, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ndarray.ErrShapeMismatch)
	assert.True(t, financial.IsClientError(err))
}

func TestPV_InitialDeposit(t *testing.T) {
	got := item(t)(financial.Float.PV(s(0.05/12), s(120), s(-100), s(15692.93), nil))
	assert.InDelta(t, -100.00067131625819, got, 1e-9)
}

func TestPV_Annuity(t *testing.T) {
	got := item(t)(financial.Float.PV(s(0.07), s(20), s(12000), s(0), financial.AtEnd()))
	assert.InDelta(t, -127128.17094619398, got, 1e-6)
}

func TestPV_FV_AreInverses(t *testing.T) {
	cases := []struct{ rate, nper, pmt, pv float64 }{
		{0.05 / 12, 120, -100, -100},
		{0.03, 30, 500, -2000},
		{0, 12, -10, 500},
	}
	for _, tc := range cases {
		for _, w := range []financial.When{financial.End, financial.Begin} {
			when := ndarray.Scalar(w)
			fv := item(t)(financial.Float.FV(s(tc.rate), s(tc.nper), s(tc.pmt), s(tc.pv), when))
			pv := item(t)(financial.Float.PV(s(tc.rate), s(tc.nper), s(tc.pmt), s(fv), when))
			assert.InDelta(t, tc.pv, pv, 1e-8, "case %+v when %v", tc, w)
		}
	}
}

func TestPV_BroadcastsOverTwoDimensions(t *testing.T) {
	rates, err := ndarray.New([]int{2, 1}, []float64{0.04 / 12, 0.05 / 12})
	require.NoError(t, err)

	out, err := financial.Float.PV(rates, s(120), vec(-100, -200, -300), s(0), nil)
	require.NoError(t, err)
	assert.Equal(t, []int{2, 3}, out.Shape())

	want := item(t)(financial.Float.PV(s(0.05/12), s(120), s(-200), s(0), nil))
	assert.Equal(t, want, out.At(4))
}

// =============================================================================
// NPER
// =============================================================================

func TestNPer_CarLoan(t *testing.T) {
	got := item(t)(financial.NPer(s(0.07/12), s(-150), s(8000), nil, nil))
	assert.InDelta(t, 64.07334877066185, got, 1e-9)
}

func TestNPer_Values(t *testing.T) {
	got := item(t)(financial.NPer(s(0.075), s(-2000), s(0), s(100000), nil))
	assert.InDelta(t, 21.54494419732334, got, 1e-9)

	got = item(t)(financial.NPer(s(0.1), s(0), s(-500), s(1500), nil))
	assert.InDelta(t, 11.526704607247604, got, 1e-9)
}

func TestNPer_ZeroRate(t *testing.T) {
	got := item(t)(financial.NPer(s(0), s(-2000), s(0), s(100000), nil))
	assert.Equal(t, 50.0, got)
}

func TestNPer_ZeroRateZeroPaymentIsInfinite(t *testing.T) {
	// A payment of zero never retires the principal: infinity is the answer.
	got := item(t)(financial.NPer(s(0), s(0), s(1000), nil, nil))
	assert.True(t, math.IsInf(got, -1))
}

func TestNPer_Broadcast(t *testing.T) {
	out, err := financial.NPer(vec(0, 0.07/12), s(-150), s(8000), nil, nil)
	require.NoError(t, err)
	assert.Equal(t, []int{2}, out.Shape())
	assert.InDelta(t, 8000.0/150, out.At(0), 1e-12)
	assert.InDelta(t, 64.07334877066185, out.At(1), 1e-9)
}
