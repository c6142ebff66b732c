package cashflow

import (
	"context"
	"fmt"
	"math"

	"github.com/shopspring/decimal"
	"github.com/warp/tvm-engine/financial"
	"github.com/warp/tvm-engine/ndarray"
)

// =============================================================================
// ANALYZER - NPV / IRR / MIRR over stored series
// =============================================================================

// AnalysisInput holds the rates an analysis is run at.
type AnalysisInput struct {
	// Rate discounts the flows for NPV.
	Rate decimal.Decimal
	// FinanceRate is charged on outflows for MIRR.
	FinanceRate decimal.Decimal
	// ReinvestRate is earned on inflows for MIRR.
	ReinvestRate decimal.Decimal
	// Guess seeds IRR. Nil means financial.DefaultIRRGuess.
	Guess *float64
}

// Analysis is the result of analysing one series.
//
// NPV and MIRR are computed in decimal; MIRR is invalid (the not-a-number
// sentinel) without a sign change. IRR is float64 and NaN when undefined.
type Analysis struct {
	SeriesID SeriesID
	Periods  int
	NPV      decimal.NullDecimal
	MIRR     decimal.NullDecimal
	IRR      float64
}

// Analyzer runs analyses against a Store.
type Analyzer struct {
	Store Store
}

func NewAnalyzer(store Store) *Analyzer {
	return &Analyzer{Store: store}
}

// Analyze loads a series and analyses it.
func (a *Analyzer) Analyze(ctx context.Context, id SeriesID, in AnalysisInput) (Analysis, error) {
	s, err := a.Store.GetSeries(ctx, id)
	if err != nil {
		return Analysis{}, err
	}
	return AnalyzeSeries(ctx, s, in)
}

// AnalyzeSeries analyses a series that is already loaded.
func AnalyzeSeries(ctx context.Context, s Series, in AnalysisInput) (Analysis, error) {
	if len(s.Values) == 0 {
		return Analysis{}, ErrEmptySeries
	}

	values := ndarray.Vector(s.Nullable()...)
	npv, err := financial.Decimal.NPV(decimal.NewNullDecimal(in.Rate), values)
	if err != nil {
		return Analysis{}, fmt.Errorf("npv: %w", err)
	}
	mirr, err := financial.Decimal.MIRR(values, decimal.NewNullDecimal(in.FinanceRate), decimal.NewNullDecimal(in.ReinvestRate))
	if err != nil {
		return Analysis{}, fmt.Errorf("mirr: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return Analysis{}, err
	}

	guess := financial.DefaultIRRGuess
	if in.Guess != nil {
		guess = *in.Guess
	}
	irr := math.NaN()
	if s.HasSignChange() {
		irr = financial.IRRSlice(s.Float64s(), guess)
	}

	return Analysis{
		SeriesID: s.ID,
		Periods:  len(s.Values),
		NPV:      npv,
		MIRR:     mirr,
		IRR:      irr,
	}, nil
}
