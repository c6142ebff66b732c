package financial_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/tvm-engine/financial"
	"github.com/warp/tvm-engine/ndarray"
)

func TestIRR_Values(t *testing.T) {
	cases := []struct {
		name   string
		values []float64
		want   float64
	}{
		{"typical project", []float64{-100, 39, 59, 55, 20}, 0.2809484211599611},
		{"loss", []float64{-100, 100, 0, -7}, -0.08329966618493279},
		{"deferred return", []float64{-100, 0, 0, 74}, -0.09549583034897247},
		{"several sign changes", []float64{-5, 10.5, 1, -8, 1}, 0.08859833852775534},
		{"investment", []float64{-150000, 15000, 25000, 35000, 45000, 60000}, 0.052432888859414106},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := financial.IRR(ndarray.Vector(tc.values...), financial.DefaultIRRGuess)
			require.NoError(t, err)
			assert.InDelta(t, tc.want, got, 1e-10)
		})
	}
}

func TestIRR_ZeroesNPV(t *testing.T) {
	// GIVEN: a cash-flow series
	// WHEN: discounting it at its own IRR
	// THEN: the net present value is zero
	values := vec(-150000, 15000, 25000, 35000, 45000, 60000)
	r, err := financial.IRR(values, financial.DefaultIRRGuess)
	require.NoError(t, err)

	npv, err := financial.Float.NPV(r, values)
	require.NoError(t, err)
	assert.InDelta(t, 0, npv, 1e-6)
}

func TestIRR_NoSignChangeIsNaN(t *testing.T) {
	for _, values := range [][]float64{
		{1, 2, 3},
		{-1, -2, -3},
		{0, 0, 0},
	} {
		got, err := financial.IRR(ndarray.Vector(values...), financial.DefaultIRRGuess)
		require.NoError(t, err)
		assert.True(t, math.IsNaN(got), "values %v", values)
	}
}

func TestIRR_RejectsTwoDimensional(t *testing.T) {
	values, err := ndarray.New([]int{2, 2}, []float64{-100, 50, 40, 30})
	require.NoError(t, err)

	got, err := financial.IRR(values, financial.DefaultIRRGuess)
	require.Error(t, err)
	assert.ErrorIs(t, err, financial.ErrNotOneDimensional)
	assert.ErrorIs(t, err, ndarray.ErrShapeMismatch)
	assert.True(t, financial.IsClientError(err))
	assert.True(t, math.IsNaN(got))
}

func TestIRRSlice_MatchesIRR(t *testing.T) {
	values := []float64{-100, 39, 59, 55, 20}
	got := financial.IRRSlice(values, 0.1)
	assert.InDelta(t, 0.2809484211599611, got, 1e-10)
}
