/*
Package cashflow stores cash-flow series and analyses them.

PURPOSE:
  A Series is a named, ordered list of cash flows (index = period, starting
  at 0; negative = outflow). Series are persisted through a Store and
  analysed with the financial functions: NPV and MIRR in exact decimal
  arithmetic, IRR in float64.

KEY CONCEPTS IN THIS FILE (types.go):
  - Series:      Immutable cash-flow vector with an ID and a name
  - Calculation: One journaled function evaluation (request + result)

DESIGN PRINCIPLES:
  1. Precision: Values are decimal.Decimal; floats only where the solver needs them
  2. Immutability: A series is never edited, only deleted and re-created
  3. Auditability: Every evaluation served by the API is journaled

USAGE:
  s, err := cashflow.NewSeries("project-a", cashflow.MustValues("-100", "39", "59", "55", "20"))
  err = store.SaveSeries(ctx, s)
  result, err := cashflow.NewAnalyzer(store).Analyze(ctx, s.ID, input)

SEE ALSO:
  - store.go: Persistence interface
  - journal.go: Idempotent calculation journal
  - analyzer.go: NPV / IRR / MIRR over stored series
*/
package cashflow

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

type SeriesID string

type CalculationID string

func NewSeriesID() SeriesID { return SeriesID(uuid.New().String()) }

func NewCalculationID() CalculationID { return CalculationID(uuid.New().String()) }

// =============================================================================
// SERIES
// =============================================================================

// MaxSeriesLength bounds the number of flows in one series.
const MaxSeriesLength = 10000

// Series is an ordered cash-flow vector.
type Series struct {
	ID        SeriesID
	Name      string
	Values    []decimal.Decimal
	CreatedAt time.Time
}

// NewSeries validates and builds a series with a fresh ID.
func NewSeries(name string, values []decimal.Decimal) (Series, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Series{}, &ValidationError{Field: "name", Message: "is required"}
	}
	if len(values) == 0 {
		return Series{}, ErrEmptySeries
	}
	if len(values) > MaxSeriesLength {
		return Series{}, &ValidationError{
			Field:   "values",
			Message: fmt.Sprintf("has %d entries, at most %d allowed", len(values), MaxSeriesLength),
		}
	}

	return Series{
		ID:        NewSeriesID(),
		Name:      name,
		Values:    append([]decimal.Decimal(nil), values...),
		CreatedAt: time.Now().UTC(),
	}, nil
}

// Float64s returns the values as float64.
func (s Series) Float64s() []float64 {
	out := make([]float64, len(s.Values))
	for i, v := range s.Values {
		out[i] = v.InexactFloat64()
	}
	return out
}

// Nullable returns the values in the decimal numeric domain.
func (s Series) Nullable() []decimal.NullDecimal {
	out := make([]decimal.NullDecimal, len(s.Values))
	for i, v := range s.Values {
		out[i] = decimal.NewNullDecimal(v)
	}
	return out
}

// HasSignChange reports whether the series has both a positive and a
// negative flow. IRR and MIRR are undefined otherwise.
func (s Series) HasSignChange() bool {
	var pos, neg bool
	for _, v := range s.Values {
		switch v.Sign() {
		case 1:
			pos = true
		case -1:
			neg = true
		}
	}
	return pos && neg
}

// ParseValues parses decimal literals.
func ParseValues(literals ...string) ([]decimal.Decimal, error) {
	out := make([]decimal.Decimal, len(literals))
	for i, l := range literals {
		d, err := decimal.NewFromString(strings.TrimSpace(l))
		if err != nil {
			return nil, &ValidationError{Field: fmt.Sprintf("values[%d]", i), Message: fmt.Sprintf("invalid decimal %q", l)}
		}
		out[i] = d
	}
	return out, nil
}

// MustValues is ParseValues for literals known to be valid.
func MustValues(literals ...string) []decimal.Decimal {
	out, err := ParseValues(literals...)
	if err != nil {
		panic(err)
	}
	return out
}

// =============================================================================
// CALCULATION JOURNAL ENTRY
// =============================================================================

// Calculation records one function evaluation. Entries are append-only.
type Calculation struct {
	ID       CalculationID
	Function string
	// Numeric is the numeric domain the call ran in ("float", "decimal").
	Numeric        string
	Request        json.RawMessage
	Result         json.RawMessage
	IdempotencyKey string
	CreatedAt      time.Time
}

// CalculationFilter narrows ListCalculations. Zero values match everything.
type CalculationFilter struct {
	Function string
	// Limit caps the number of entries returned, newest first.
	Limit int
}

// Matches reports whether c passes the filter, ignoring Limit.
func (f CalculationFilter) Matches(c Calculation) bool {
	return f.Function == "" || f.Function == c.Function
}
