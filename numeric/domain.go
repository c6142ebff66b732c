/*
Package numeric defines the numeric domains the financial functions are
evaluated in.

PURPOSE:
  The same annuity formulas must run over native floating point and over
  arbitrary-precision decimals. Rather than inspecting operand types at
  runtime, callers pick a Domain[T] at the call boundary and every formula
  goes through it, including the construction of default literals (the rate
  solver's 0.1 guess and 1e-6 tolerance).

DOMAINS:
  Float64: float64 with IEEE semantics (NaN, ±Inf).
  Decimal: decimal.NullDecimal from shopspring/decimal. Valid=false is the
           not-a-number sentinel; it propagates through every operation.
           Division by zero and undefined powers yield the sentinel.

SEE ALSO:
  - financial/: consumers of Domain[T]
*/
package numeric

// =============================================================================
// DOMAIN - Arithmetic dictionary for a numeric type
// =============================================================================

// Domain is the set of operations the financial formulas need from a
// numeric type T. Implementations must propagate their not-a-number value
// through every arithmetic operation.
type Domain[T any] interface {
	// Name identifies the domain ("float", "decimal").
	Name() string

	// Parse constructs a value from a literal such as "0.1" or "1e-6".
	Parse(s string) (T, error)
	FromInt(n int64) T
	FromFloat(f float64) T
	Float64(v T) float64
	String(v T) string

	Add(a, b T) T
	Sub(a, b T) T
	Mul(a, b T) T
	Div(a, b T) T
	Pow(base, exp T) T
	Neg(a T) T
	Abs(a T) T

	// Sign returns -1, 0 or +1. Not-a-number reports 0.
	Sign(a T) int
	// Less and Equal are false whenever either operand is not-a-number.
	Less(a, b T) bool
	Equal(a, b T) bool
	IsZero(a T) bool

	NaN() T
	IsNaN(a T) bool
}

// MustParse parses a literal in the given domain and panics on failure.
// Intended for constants known at compile time.
func MustParse[T any](d Domain[T], s string) T {
	v, err := d.Parse(s)
	if err != nil {
		panic("numeric: invalid literal " + s + ": " + err.Error())
	}
	return v
}
