package financial

import (
	"math"

	"github.com/warp/tvm-engine/ndarray"
)

const (
	// DefaultIRRGuess is the starting rate of the IRR solver.
	DefaultIRRGuess = 0.1
	// IRRMaxIter caps the Newton-Raphson iterations of IRR.
	IRRMaxIter = 100
	// IRRTolerance is the step size below which IRR stops.
	IRRTolerance = 1e-12
)

// IRR computes the internal rate of return of a cash-flow series: the rate
// at which the net present value is zero.
//
// Substituting x = 1/(1+irr) turns Σ values[t]*(1+irr)^-t into the plain
// polynomial P(x) = Σ values[t]*x^t, which is solved with Newton-Raphson
// starting from x = 1/(1+guess).
//
// The result is NaN when the flows have no sign change or when the solver
// does not settle within IRRMaxIter steps. Values of rank > 1 are rejected.
func IRR(values *ndarray.Array[float64], guess float64) (float64, error) {
	if values.Ndim() > 1 {
		return math.NaN(), notOneDimensional("irr", values.Shape())
	}
	return IRRSlice(values.AtLeast1D().Flat(), guess), nil
}

// IRRSlice is IRR over a plain slice.
func IRRSlice(values []float64, guess float64) float64 {
	if !hasSignChange(values) {
		return math.NaN()
	}

	p := polynomial(values)
	dp := p.deriv()

	x := 1 / (1 + guess)
	for i := 0; i < IRRMaxIter; i++ {
		xNew := x - p.eval(x)/dp.eval(x)
		if math.Abs(xNew-x) < IRRTolerance {
			return 1/xNew - 1
		}
		x = xNew
	}
	return math.NaN()
}

func hasSignChange(values []float64) bool {
	var pos, neg bool
	for _, v := range values {
		switch {
		case v > 0:
			pos = true
		case v < 0:
			neg = true
		}
	}
	return pos && neg
}

// polynomial holds coefficients in increasing order of degree.
type polynomial []float64

func (p polynomial) eval(x float64) float64 {
	acc := 0.0
	for i := len(p) - 1; i >= 0; i-- {
		acc = acc*x + p[i]
	}
	return acc
}

func (p polynomial) deriv() polynomial {
	if len(p) <= 1 {
		return polynomial{0}
	}
	out := make(polynomial, len(p)-1)
	for i := 1; i < len(p); i++ {
		out[i-1] = float64(i) * p[i]
	}
	return out
}
