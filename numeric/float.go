package numeric

import (
	"math"
	"strconv"
)

// Float64 is the IEEE-754 double precision domain.
type Float64 struct{}

var _ Domain[float64] = Float64{}

func (Float64) Name() string { return "float" }

func (Float64) Parse(s string) (float64, error) { return strconv.ParseFloat(s, 64) }
func (Float64) FromInt(n int64) float64         { return float64(n) }
func (Float64) FromFloat(f float64) float64     { return f }
func (Float64) Float64(v float64) float64       { return v }
func (Float64) String(v float64) string         { return strconv.FormatFloat(v, 'g', -1, 64) }

func (Float64) Add(a, b float64) float64      { return a + b }
func (Float64) Sub(a, b float64) float64      { return a - b }
func (Float64) Mul(a, b float64) float64      { return a * b }
func (Float64) Div(a, b float64) float64      { return a / b }
func (Float64) Pow(base, exp float64) float64 { return math.Pow(base, exp) }
func (Float64) Neg(a float64) float64         { return -a }
func (Float64) Abs(a float64) float64         { return math.Abs(a) }

func (Float64) Sign(a float64) int {
	switch {
	case a > 0:
		return 1
	case a < 0:
		return -1
	default:
		return 0
	}
}

func (Float64) Less(a, b float64) bool  { return a < b }
func (Float64) Equal(a, b float64) bool { return a == b }
func (Float64) IsZero(a float64) bool   { return a == 0 }

func (Float64) NaN() float64         { return math.NaN() }
func (Float64) IsNaN(a float64) bool { return math.IsNaN(a) }
