/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication and the conversion
  between JSON operands and ndarray values. These types decouple the
  financial package from the external API contract.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

OPERANDS:
  Every numeric argument may be a JSON number, a decimal string, or a
  (nested) array of those. Nested arrays must be rectangular:

    "rate": 0.005
    "rate": "0.005"
    "rate": [0.004, 0.005, 0.006]
    "pv":   [[1000, 2000], [3000, 4000]]

  Strings keep full precision in the decimal domain.

RESULTS:
  "result" mirrors the broadcast shape. Float elements are JSON numbers,
  decimal elements are strings. NaN and ±Inf have no JSON number form, so
  they are encoded as null; "text" carries the same values as strings
  ("NaN", "+Inf", "-Inf") so nothing is lost.

SEE ALSO:
  - handlers.go: Uses these types
*/
package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/tvm-engine/cashflow"
	"github.com/warp/tvm-engine/ndarray"
	"github.com/warp/tvm-engine/numeric"
	"github.com/warp/tvm-engine/schedule"
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrInvalidOperand is returned for a missing or malformed numeric argument.
	ErrInvalidOperand = errors.New("invalid operand")

	// ErrUnknownNumeric is returned for an unrecognised "numeric" value.
	ErrUnknownNumeric = errors.New(`numeric must be "float" or "decimal"`)

	// ErrFloatOnly is returned when a float-only function is asked for decimals.
	ErrFloatOnly = errors.New("function is only available in the float domain")

	// ErrSolverTimeout is returned when an iterative solver exceeds its deadline.
	ErrSolverTimeout = errors.New("solver deadline exceeded")
)

// OperandError reports which argument was rejected.
type OperandError struct {
	Field  string
	Reason string
}

func (e *OperandError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *OperandError) Unwrap() error {
	return ErrInvalidOperand
}

// =============================================================================
// REQUEST TYPES
// =============================================================================

// CalcRequest is the body of every function endpoint. Each endpoint reads
// the fields its function takes; the others are ignored.
type CalcRequest struct {
	Numeric string `json:"numeric,omitempty"`

	Rate json.RawMessage `json:"rate,omitempty"`
	Nper json.RawMessage `json:"nper,omitempty"`
	Per  json.RawMessage `json:"per,omitempty"`
	Pmt  json.RawMessage `json:"pmt,omitempty"`
	PV   json.RawMessage `json:"pv,omitempty"`
	FV   json.RawMessage `json:"fv,omitempty"`
	When any             `json:"when,omitempty"`

	// rate
	Guess   json.RawMessage `json:"guess,omitempty"`
	Tol     json.RawMessage `json:"tol,omitempty"`
	MaxIter *int            `json:"maxiter,omitempty"`

	// irr, npv, mirr
	Values       json.RawMessage `json:"values,omitempty"`
	FinanceRate  json.RawMessage `json:"finance_rate,omitempty"`
	ReinvestRate json.RawMessage `json:"reinvest_rate,omitempty"`
}

// AmortizationRequest is the body of POST /api/amortization.
type AmortizationRequest struct {
	Numeric string          `json:"numeric,omitempty"`
	Rate    json.RawMessage `json:"rate"`
	Nper    json.RawMessage `json:"nper"`
	PV      json.RawMessage `json:"pv"`
	FV      json.RawMessage `json:"fv,omitempty"`
	When    any             `json:"when,omitempty"`
}

// CreateSeriesRequest is the body of POST /api/cashflows.
type CreateSeriesRequest struct {
	Name   string          `json:"name"`
	Values json.RawMessage `json:"values"`
}

// AnalysisRequest is the body of POST /api/cashflows/{id}/analysis.
type AnalysisRequest struct {
	Rate         json.RawMessage `json:"rate"`
	FinanceRate  json.RawMessage `json:"finance_rate,omitempty"`
	ReinvestRate json.RawMessage `json:"reinvest_rate,omitempty"`
	Guess        *float64        `json:"guess,omitempty"`
}

// LoadSamplesRequest is the body of POST /api/cashflows/samples.
type LoadSamplesRequest struct {
	// SampleIDs selects samples; empty loads all of them.
	SampleIDs []string `json:"sample_ids,omitempty"`
}

// =============================================================================
// RESPONSE TYPES
// =============================================================================

// ResultDTO is the response of every function endpoint.
type ResultDTO struct {
	Function string `json:"function"`
	Numeric  string `json:"numeric"`
	Shape    []int  `json:"shape"`
	Result   any    `json:"result"`
	Text     any    `json:"text"`

	// Rate solver statistics.
	Iterations *int  `json:"iterations,omitempty"`
	Converged  *bool `json:"converged,omitempty"`
}

// ScheduleDTO is the response of POST /api/amortization.
type ScheduleDTO struct {
	Numeric        string   `json:"numeric"`
	Payment        any      `json:"payment"`
	TotalInterest  any      `json:"total_interest"`
	TotalPrincipal any      `json:"total_principal"`
	Rows           []RowDTO `json:"rows"`
}

// RowDTO is one schedule period.
type RowDTO struct {
	Period    int `json:"period"`
	Payment   any `json:"payment"`
	Principal any `json:"principal"`
	Interest  any `json:"interest"`
	Balance   any `json:"balance"`
}

// SeriesDTO represents a cash-flow series.
type SeriesDTO struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Values    []string `json:"values"`
	CreatedAt string   `json:"created_at"`
}

// AnalysisDTO is the response of POST /api/cashflows/{id}/analysis.
type AnalysisDTO struct {
	SeriesID string            `json:"series_id"`
	Periods  int               `json:"periods"`
	NPV      any               `json:"npv"`
	MIRR     any               `json:"mirr"`
	IRR      any               `json:"irr"`
	Text     map[string]string `json:"text"`
}

// CalculationDTO is a journal entry.
type CalculationDTO struct {
	ID             string          `json:"id"`
	Function       string          `json:"function"`
	Numeric        string          `json:"numeric"`
	Request        json.RawMessage `json:"request"`
	Result         json.RawMessage `json:"result"`
	IdempotencyKey string          `json:"idempotency_key,omitempty"`
	CreatedAt      string          `json:"created_at"`
}

// SampleDTO describes a loadable sample series.
type SampleDTO struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Values      []string `json:"values"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

// =============================================================================
// OPERAND DECODING
// =============================================================================

// decodeOperand converts a JSON operand into an array in domain d.
// An absent or null operand yields a nil array.
func decodeOperand[T any](d numeric.Domain[T], field string, raw json.RawMessage) (*ndarray.Array[T], error) {
	if len(bytes.TrimSpace(raw)) == 0 || string(bytes.TrimSpace(raw)) == "null" {
		return nil, nil
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, &OperandError{Field: field, Reason: "malformed JSON"}
	}

	w := &operandWalker[T]{d: d, field: field, leafDepth: -1}
	if err := w.walk(v, 0); err != nil {
		return nil, err
	}
	arr, err := ndarray.New(w.shape, w.leaves)
	if err != nil {
		return nil, &OperandError{Field: field, Reason: err.Error()}
	}
	return arr, nil
}

// requireOperand is decodeOperand for mandatory arguments.
func requireOperand[T any](d numeric.Domain[T], field string, raw json.RawMessage) (*ndarray.Array[T], error) {
	arr, err := decodeOperand(d, field, raw)
	if err != nil {
		return nil, err
	}
	if arr == nil {
		return nil, &OperandError{Field: field, Reason: "is required"}
	}
	return arr, nil
}

// requireScalar decodes a mandatory single value.
func requireScalar[T any](d numeric.Domain[T], field string, raw json.RawMessage) (T, error) {
	arr, err := requireOperand(d, field, raw)
	if err != nil {
		var zero T
		return zero, err
	}
	if arr.Size() != 1 || arr.Ndim() > 1 {
		var zero T
		return zero, &OperandError{Field: field, Reason: "must be a single value"}
	}
	return arr.Flat()[0], nil
}

type operandWalker[T any] struct {
	d         numeric.Domain[T]
	field     string
	shape     []int
	leaves    []T
	leafDepth int
}

func (w *operandWalker[T]) walk(v any, depth int) error {
	switch x := v.(type) {
	case []any:
		if w.leafDepth >= 0 && depth >= w.leafDepth {
			return w.ragged()
		}
		switch {
		case len(w.shape) == depth:
			w.shape = append(w.shape, len(x))
		case w.shape[depth] != len(x):
			return w.ragged()
		}
		for _, e := range x {
			if err := w.walk(e, depth+1); err != nil {
				return err
			}
		}
		return nil

	case json.Number:
		return w.leaf(string(x), depth)
	case string:
		return w.leaf(x, depth)
	default:
		return &OperandError{Field: w.field, Reason: fmt.Sprintf("unsupported value %v", v)}
	}
}

func (w *operandWalker[T]) leaf(literal string, depth int) error {
	if w.leafDepth == -1 {
		if depth != len(w.shape) {
			return w.ragged()
		}
		w.leafDepth = depth
	} else if depth != w.leafDepth {
		return w.ragged()
	}

	val, err := w.d.Parse(literal)
	if err != nil {
		return &OperandError{Field: w.field, Reason: fmt.Sprintf("invalid number %q", literal)}
	}
	w.leaves = append(w.leaves, val)
	return nil
}

func (w *operandWalker[T]) ragged() error {
	return &OperandError{Field: w.field, Reason: "nested arrays must be rectangular"}
}

// =============================================================================
// RESULT ENCODING
// =============================================================================

// encodeElement returns the JSON value and the text form of one element.
func encodeElement(v any) (value any, text string) {
	switch x := v.(type) {
	case float64:
		switch {
		case math.IsNaN(x):
			return nil, "NaN"
		case math.IsInf(x, 1):
			return nil, "+Inf"
		case math.IsInf(x, -1):
			return nil, "-Inf"
		}
		return x, strconv.FormatFloat(x, 'g', -1, 64)
	case decimal.NullDecimal:
		if !x.Valid {
			return nil, "NaN"
		}
		s := x.Decimal.String()
		return s, s
	case decimal.Decimal:
		s := x.String()
		return s, s
	}
	return v, fmt.Sprint(v)
}

func elementValue(v any) any {
	value, _ := encodeElement(v)
	return value
}

func elementText(v any) string {
	_, text := encodeElement(v)
	return text
}

// newResultDTO lays an array's elements out in nested slices of its shape.
func newResultDTO[T any](function, numericName string, arr *ndarray.Array[T]) ResultDTO {
	flat := arr.Flat()
	values := make([]any, len(flat))
	texts := make([]any, len(flat))
	for i, v := range flat {
		values[i], texts[i] = encodeElement(v)
	}

	shape := arr.Shape()
	return ResultDTO{
		Function: function,
		Numeric:  numericName,
		Shape:    shape,
		Result:   nest(shape, values),
		Text:     nest(shape, texts),
	}
}

// nest reshapes row-major flat values into nested slices.
func nest(shape []int, flat []any) any {
	if len(shape) == 0 {
		return flat[0]
	}
	n := shape[0]
	out := make([]any, n)
	if n == 0 {
		return out
	}
	stride := len(flat) / n
	for i := 0; i < n; i++ {
		out[i] = nest(shape[1:], flat[i*stride:(i+1)*stride])
	}
	return out
}

// =============================================================================
// DOMAIN CONVERSIONS
// =============================================================================

func toSeriesDTO(s cashflow.Series) SeriesDTO {
	values := make([]string, len(s.Values))
	for i, v := range s.Values {
		values[i] = v.String()
	}
	return SeriesDTO{
		ID:        string(s.ID),
		Name:      s.Name,
		Values:    values,
		CreatedAt: s.CreatedAt.Format(time.RFC3339),
	}
}

func toCalculationDTO(c cashflow.Calculation) CalculationDTO {
	return CalculationDTO{
		ID:             string(c.ID),
		Function:       c.Function,
		Numeric:        c.Numeric,
		Request:        c.Request,
		Result:         c.Result,
		IdempotencyKey: c.IdempotencyKey,
		CreatedAt:      c.CreatedAt.Format(time.RFC3339Nano),
	}
}

func toScheduleDTO[T any](numericName string, s *schedule.Schedule[T]) ScheduleDTO {
	rows := make([]RowDTO, len(s.Rows))
	for i, r := range s.Rows {
		rows[i] = RowDTO{
			Period:    r.Period,
			Payment:   elementValue(r.Payment),
			Principal: elementValue(r.Principal),
			Interest:  elementValue(r.Interest),
			Balance:   elementValue(r.Balance),
		}
	}
	return ScheduleDTO{
		Numeric:        numericName,
		Payment:        elementValue(s.Payment),
		TotalInterest:  elementValue(s.TotalInterest),
		TotalPrincipal: elementValue(s.TotalPrincipal),
		Rows:           rows,
	}
}

func toAnalysisDTO(a cashflow.Analysis) AnalysisDTO {
	return AnalysisDTO{
		SeriesID: string(a.SeriesID),
		Periods:  a.Periods,
		NPV:      elementValue(a.NPV),
		MIRR:     elementValue(a.MIRR),
		IRR:      elementValue(a.IRR),
		Text: map[string]string{
			"npv":  elementText(a.NPV),
			"mirr": elementText(a.MIRR),
			"irr":  elementText(a.IRR),
		},
	}
}
