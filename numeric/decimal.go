package numeric

import (
	"math"

	"github.com/shopspring/decimal"
)

// DefaultDecimalPrecision is the number of fractional digits kept after
// multiplication, division and exponentiation.
const DefaultDecimalPrecision int32 = 28

// Decimal is the arbitrary-precision domain over decimal.NullDecimal.
// An invalid NullDecimal is the not-a-number sentinel.
type Decimal struct {
	// Precision is the number of fractional digits retained by Mul, Div
	// and Pow. Zero means DefaultDecimalPrecision.
	Precision int32
}

var _ Domain[decimal.NullDecimal] = Decimal{}

// Dec wraps a decimal as a valid domain value.
func Dec(d decimal.Decimal) decimal.NullDecimal {
	return decimal.NullDecimal{Decimal: d, Valid: true}
}

// DecString parses s into a valid domain value and panics on failure.
func DecString(s string) decimal.NullDecimal {
	return Dec(decimal.RequireFromString(s))
}

func (d Decimal) precision() int32 {
	if d.Precision == 0 {
		return DefaultDecimalPrecision
	}
	return d.Precision
}

func (Decimal) Name() string { return "decimal" }

func (Decimal) Parse(s string) (decimal.NullDecimal, error) {
	v, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.NullDecimal{}, err
	}
	return Dec(v), nil
}

func (Decimal) FromInt(n int64) decimal.NullDecimal { return Dec(decimal.NewFromInt(n)) }

func (Decimal) FromFloat(f float64) decimal.NullDecimal {
	// NewFromFloat panics on NaN and ±Inf.
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return decimal.NullDecimal{}
	}
	return Dec(decimal.NewFromFloat(f))
}

func (Decimal) Float64(v decimal.NullDecimal) float64 {
	if !v.Valid {
		return math.NaN()
	}
	return v.Decimal.InexactFloat64()
}

func (Decimal) String(v decimal.NullDecimal) string {
	if !v.Valid {
		return "NaN"
	}
	return v.Decimal.String()
}

// =============================================================================
// ARITHMETIC
// =============================================================================

func (Decimal) Add(a, b decimal.NullDecimal) decimal.NullDecimal {
	if !a.Valid || !b.Valid {
		return decimal.NullDecimal{}
	}
	return Dec(a.Decimal.Add(b.Decimal))
}

func (Decimal) Sub(a, b decimal.NullDecimal) decimal.NullDecimal {
	if !a.Valid || !b.Valid {
		return decimal.NullDecimal{}
	}
	return Dec(a.Decimal.Sub(b.Decimal))
}

func (d Decimal) Mul(a, b decimal.NullDecimal) decimal.NullDecimal {
	if !a.Valid || !b.Valid {
		return decimal.NullDecimal{}
	}
	return Dec(a.Decimal.Mul(b.Decimal).Round(d.precision()))
}

func (d Decimal) Div(a, b decimal.NullDecimal) decimal.NullDecimal {
	if !a.Valid || !b.Valid || b.Decimal.IsZero() {
		return decimal.NullDecimal{}
	}
	return Dec(a.Decimal.DivRound(b.Decimal, d.precision()))
}

func (d Decimal) Pow(base, exp decimal.NullDecimal) decimal.NullDecimal {
	if !base.Valid || !exp.Valid {
		return decimal.NullDecimal{}
	}
	v, err := base.Decimal.PowWithPrecision(exp.Decimal, d.precision())
	if err != nil {
		return decimal.NullDecimal{}
	}
	return Dec(v.Round(d.precision()))
}

func (Decimal) Neg(a decimal.NullDecimal) decimal.NullDecimal {
	if !a.Valid {
		return a
	}
	return Dec(a.Decimal.Neg())
}

func (Decimal) Abs(a decimal.NullDecimal) decimal.NullDecimal {
	if !a.Valid {
		return a
	}
	return Dec(a.Decimal.Abs())
}

// =============================================================================
// COMPARISON
// =============================================================================

func (Decimal) Sign(a decimal.NullDecimal) int {
	if !a.Valid {
		return 0
	}
	return a.Decimal.Sign()
}

func (Decimal) Less(a, b decimal.NullDecimal) bool {
	return a.Valid && b.Valid && a.Decimal.LessThan(b.Decimal)
}

func (Decimal) Equal(a, b decimal.NullDecimal) bool {
	return a.Valid && b.Valid && a.Decimal.Equal(b.Decimal)
}

func (Decimal) IsZero(a decimal.NullDecimal) bool {
	return a.Valid && a.Decimal.IsZero()
}

func (Decimal) NaN() decimal.NullDecimal { return decimal.NullDecimal{} }

func (Decimal) IsNaN(a decimal.NullDecimal) bool { return !a.Valid }
