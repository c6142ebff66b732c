/*
handlers.go - HTTP API handlers for the time-value-of-money engine

PURPOSE:
  Exposes the financial functions, amortisation schedules and stored
  cash-flow series via REST API. Handles HTTP request/response, JSON
  serialization, and delegates to the financial and cashflow packages.

ENDPOINTS:
  Functions (body: CalcRequest):
    POST   /api/fv | /api/pmt | /api/nper | /api/pv
    POST   /api/ipmt | /api/ppmt
    POST   /api/rate | /api/irr
    POST   /api/npv | /api/mirr
    POST   /api/amortization

  Cash-flow series:
    GET    /api/cashflows              List series
    POST   /api/cashflows              Create series
    GET    /api/cashflows/{id}         Get series
    DELETE /api/cashflows/{id}         Delete series
    POST   /api/cashflows/{id}/analysis NPV / IRR / MIRR of a series
    GET    /api/cashflows/samples      List sample series
    POST   /api/cashflows/samples      Load sample series

  Journal:
    GET    /api/calculations           Calculation history (?function=&limit=)

ARCHITECTURE:
  Handler struct holds all dependencies:
  - Store: Series persistence
  - Journal: Calculation journal (idempotent replays)
  - Analyzer: Series analysis
  - SolverTimeout / MaxIter: Bounds for rate and irr

REQUEST FLOW:
  1. Parse HTTP request
  2. Replay the journaled result if the Idempotency-Key was seen before
  3. Decode operands in the requested numeric domain
  4. Call the financial function (iterative solvers under a deadline)
  5. Journal and serialize the response

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Invalid timing, shape mismatch, bad operand, float-only function
  - 404: Series not found
  - 409: Idempotency key reused
  - 504: Solver deadline exceeded
  - 500: Internal errors

SECURITY NOTE:
  Currently NO authentication or authorization. All endpoints are public.

SEE ALSO:
  - dto.go: Request/response data structures
  - samples.go: Sample series loaders
  - server.go: Router setup and middleware
*/
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/warp/tvm-engine/cashflow"
	"github.com/warp/tvm-engine/financial"
	"github.com/warp/tvm-engine/ndarray"
	"github.com/warp/tvm-engine/numeric"
	"github.com/warp/tvm-engine/schedule"
)

const (
	// IdempotencyHeader carries the client's idempotency key.
	IdempotencyHeader = "Idempotency-Key"
	// ReplayedHeader is set on responses served from the journal.
	ReplayedHeader = "Idempotent-Replayed"

	maxBodyBytes = 1 << 20
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Options configures a Handler.
type Options struct {
	// SolverTimeout bounds rate and irr. Zero means no deadline.
	SolverTimeout time.Duration
	// MaxIter is the rate solver's default and largest accepted iteration cap.
	MaxIter int
	Logger  logrus.FieldLogger
}

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store    cashflow.Store
	Journal  *cashflow.Journal
	Analyzer *cashflow.Analyzer
	Log      logrus.FieldLogger

	SolverTimeout time.Duration
	MaxIter       int
}

// NewHandler creates a new handler with the given store.
func NewHandler(store cashflow.Store, opts Options) *Handler {
	log := opts.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Handler{
		Store:         store,
		Journal:       cashflow.NewJournal(store),
		Analyzer:      cashflow.NewAnalyzer(store),
		Log:           log,
		SolverTimeout: opts.SolverTimeout,
		MaxIter:       opts.MaxIter,
	}
}

func (h *Handler) logger(ctx context.Context) logrus.FieldLogger {
	return h.Log.WithField("request_id", middleware.GetReqID(ctx))
}

// =============================================================================
// FUNCTION HANDLERS
// =============================================================================

func (h *Handler) FV(w http.ResponseWriter, r *http.Request)   { h.serveCalc(w, r, "fv") }
func (h *Handler) PMT(w http.ResponseWriter, r *http.Request)  { h.serveCalc(w, r, "pmt") }
func (h *Handler) NPer(w http.ResponseWriter, r *http.Request) { h.serveCalc(w, r, "nper") }
func (h *Handler) IPMT(w http.ResponseWriter, r *http.Request) { h.serveCalc(w, r, "ipmt") }
func (h *Handler) PPMT(w http.ResponseWriter, r *http.Request) { h.serveCalc(w, r, "ppmt") }
func (h *Handler) PV(w http.ResponseWriter, r *http.Request)   { h.serveCalc(w, r, "pv") }
func (h *Handler) Rate(w http.ResponseWriter, r *http.Request) { h.serveCalc(w, r, "rate") }
func (h *Handler) IRR(w http.ResponseWriter, r *http.Request)  { h.serveCalc(w, r, "irr") }
func (h *Handler) NPV(w http.ResponseWriter, r *http.Request)  { h.serveCalc(w, r, "npv") }
func (h *Handler) MIRR(w http.ResponseWriter, r *http.Request) { h.serveCalc(w, r, "mirr") }

func (h *Handler) serveCalc(w http.ResponseWriter, r *http.Request, function string) {
	var req CalcRequest
	if err := decodeBody(r, &req, false); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	key := r.Header.Get(IdempotencyHeader)
	if h.replay(w, r, function, key) {
		return
	}

	result, err := h.evaluate(r.Context(), function, req)
	if err != nil {
		h.writeFailure(w, r, "Calculation failed", err)
		return
	}

	if err := h.record(r.Context(), function, result.Numeric, key, req, result); err != nil {
		if cashflow.IsConflict(err) && h.replay(w, r, function, key) {
			return
		}
		h.writeFailure(w, r, "Failed to journal calculation", err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// evaluate resolves the numeric domain and dispatches to the function.
func (h *Handler) evaluate(ctx context.Context, function string, req CalcRequest) (ResultDTO, error) {
	floatOnly := function == "nper" || function == "irr"

	switch req.Numeric {
	case "", numeric.Float64{}.Name():
		if floatOnly {
			return h.evaluateFloatOnly(ctx, function, req)
		}
		return evaluateIn(ctx, h, financial.Float, function, req)
	case numeric.Decimal{}.Name():
		if floatOnly {
			return ResultDTO{}, fmt.Errorf("%s: %w", function, ErrFloatOnly)
		}
		return evaluateIn(ctx, h, financial.Decimal, function, req)
	}
	return ResultDTO{}, fmt.Errorf("%q: %w", req.Numeric, ErrUnknownNumeric)
}

func evaluateIn[T any](ctx context.Context, h *Handler, c *financial.Calculator[T], function string, req CalcRequest) (ResultDTO, error) {
	d := c.Domain()
	when, err := financial.ParseWhen(req.When)
	if err != nil {
		return ResultDTO{}, err
	}

	result := func(arr *ndarray.Array[T], err error) (ResultDTO, error) {
		if err != nil {
			return ResultDTO{}, err
		}
		return newResultDTO(function, d.Name(), arr), nil
	}

	switch function {
	case "fv":
		ops, err := decodeOperands(d, req, []string{"rate", "nper", "pmt", "pv"})
		if err != nil {
			return ResultDTO{}, err
		}
		return result(c.FV(ops["rate"], ops["nper"], ops["pmt"], ops["pv"], when))

	case "pmt":
		ops, err := decodeOperands(d, req, []string{"rate", "nper", "pv"}, "fv")
		if err != nil {
			return ResultDTO{}, err
		}
		return result(c.PMT(ops["rate"], ops["nper"], ops["pv"], ops["fv"], when))

	case "pv":
		ops, err := decodeOperands(d, req, []string{"rate", "nper", "pmt"}, "fv")
		if err != nil {
			return ResultDTO{}, err
		}
		return result(c.PV(ops["rate"], ops["nper"], ops["pmt"], ops["fv"], when))

	case "ipmt":
		ops, err := decodeOperands(d, req, []string{"rate", "per", "nper", "pv"}, "fv")
		if err != nil {
			return ResultDTO{}, err
		}
		return result(c.IPMT(ops["rate"], ops["per"], ops["nper"], ops["pv"], ops["fv"], when))

	case "ppmt":
		ops, err := decodeOperands(d, req, []string{"rate", "per", "nper", "pv"}, "fv")
		if err != nil {
			return ResultDTO{}, err
		}
		return result(c.PPMT(ops["rate"], ops["per"], ops["nper"], ops["pv"], ops["fv"], when))

	case "rate":
		return evaluateRate(ctx, h, c, req, when)

	case "npv":
		rate, err := requireScalar(d, "rate", req.Rate)
		if err != nil {
			return ResultDTO{}, err
		}
		values, err := requireOperand(d, "values", req.Values)
		if err != nil {
			return ResultDTO{}, err
		}
		v, err := c.NPV(rate, values)
		return result(ndarray.Scalar(v), err)

	case "mirr":
		values, err := requireOperand(d, "values", req.Values)
		if err != nil {
			return ResultDTO{}, err
		}
		financeRate, err := requireScalar(d, "finance_rate", req.FinanceRate)
		if err != nil {
			return ResultDTO{}, err
		}
		reinvestRate, err := requireScalar(d, "reinvest_rate", req.ReinvestRate)
		if err != nil {
			return ResultDTO{}, err
		}
		v, err := c.MIRR(values, financeRate, reinvestRate)
		return result(ndarray.Scalar(v), err)
	}

	return ResultDTO{}, fmt.Errorf("unknown function %q", function)
}

func evaluateRate[T any](ctx context.Context, h *Handler, c *financial.Calculator[T], req CalcRequest, when *ndarray.Array[financial.When]) (ResultDTO, error) {
	d := c.Domain()
	ops, err := decodeOperands(d, req, []string{"nper", "pmt", "pv", "fv"}, "guess")
	if err != nil {
		return ResultDTO{}, err
	}

	opts := financial.RateOptions[T]{When: when, Guess: ops["guess"]}
	if h.MaxIter > 0 {
		maxIter := h.MaxIter
		opts.MaxIter = &maxIter
	}
	if req.MaxIter != nil {
		if h.MaxIter > 0 && *req.MaxIter > h.MaxIter {
			return ResultDTO{}, &OperandError{Field: "maxiter", Reason: fmt.Sprintf("must not exceed %d", h.MaxIter)}
		}
		opts.MaxIter = req.MaxIter
	}
	if len(req.Tol) > 0 {
		tol, err := requireScalar(d, "tol", req.Tol)
		if err != nil {
			return ResultDTO{}, err
		}
		opts.Tol = &tol
	}

	var res financial.RateResult[T]
	err = h.solve(ctx, func(ctx context.Context) error {
		var err error
		res, err = c.SolveRate(ctx, ops["nper"], ops["pmt"], ops["pv"], ops["fv"], opts)
		return err
	})
	if err != nil {
		return ResultDTO{}, err
	}

	h.logger(ctx).WithFields(logrus.Fields{
		"function":   "rate",
		"numeric":    d.Name(),
		"iterations": res.Iterations,
		"converged":  res.Converged,
	}).Debug("rate solver finished")

	dto := newResultDTO("rate", d.Name(), res.Rate)
	dto.Iterations = &res.Iterations
	dto.Converged = &res.Converged
	return dto, nil
}

func (h *Handler) evaluateFloatOnly(ctx context.Context, function string, req CalcRequest) (ResultDTO, error) {
	d := numeric.Float64{}
	switch function {
	case "nper":
		when, err := financial.ParseWhen(req.When)
		if err != nil {
			return ResultDTO{}, err
		}
		ops, err := decodeOperands[float64](d, req, []string{"rate", "pmt", "pv"}, "fv")
		if err != nil {
			return ResultDTO{}, err
		}
		out, err := financial.NPer(ops["rate"], ops["pmt"], ops["pv"], ops["fv"], when)
		if err != nil {
			return ResultDTO{}, err
		}
		return newResultDTO(function, d.Name(), out), nil

	case "irr":
		values, err := requireOperand[float64](d, "values", req.Values)
		if err != nil {
			return ResultDTO{}, err
		}
		guess := financial.DefaultIRRGuess
		if len(req.Guess) > 0 {
			if guess, err = requireScalar[float64](d, "guess", req.Guess); err != nil {
				return ResultDTO{}, err
			}
		}

		var irr float64
		err = h.solve(ctx, func(context.Context) error {
			var err error
			irr, err = financial.IRR(values, guess)
			return err
		})
		if err != nil {
			return ResultDTO{}, err
		}
		return newResultDTO(function, d.Name(), ndarray.Scalar(irr)), nil
	}
	return ResultDTO{}, fmt.Errorf("unknown function %q", function)
}

// decodeOperands decodes the named CalcRequest fields. Missing optional
// fields map to nil, which the financial functions read as 0.
func decodeOperands[T any](d numeric.Domain[T], req CalcRequest, required []string, optional ...string) (map[string]*ndarray.Array[T], error) {
	ops := make(map[string]*ndarray.Array[T], len(required)+len(optional))
	for _, name := range required {
		arr, err := requireOperand(d, name, req.field(name))
		if err != nil {
			return nil, err
		}
		ops[name] = arr
	}
	for _, name := range optional {
		arr, err := decodeOperand(d, name, req.field(name))
		if err != nil {
			return nil, err
		}
		ops[name] = arr
	}
	return ops, nil
}

func (req CalcRequest) field(name string) json.RawMessage {
	switch name {
	case "rate":
		return req.Rate
	case "nper":
		return req.Nper
	case "per":
		return req.Per
	case "pmt":
		return req.Pmt
	case "pv":
		return req.PV
	case "fv":
		return req.FV
	case "guess":
		return req.Guess
	}
	return nil
}

// solve runs an iterative solver under the configured deadline. fn receives
// the deadline context and must stop once it is done.
func (h *Handler) solve(ctx context.Context, fn func(ctx context.Context) error) error {
	if h.SolverTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.SolverTimeout)
		defer cancel()
	}

	done := make(chan error, 1)
	go func() { done <- fn(ctx) }()

	select {
	case err := <-done:
		if errors.Is(err, context.DeadlineExceeded) {
			return ErrSolverTimeout
		}
		return err
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return ErrSolverTimeout
		}
		return ctx.Err()
	}
}

// =============================================================================
// AMORTIZATION HANDLER
// =============================================================================

// Amortization returns the full payment schedule of a loan.
func (h *Handler) Amortization(w http.ResponseWriter, r *http.Request) {
	var req AmortizationRequest
	if err := decodeBody(r, &req, false); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	var (
		dto ScheduleDTO
		err error
	)
	switch req.Numeric {
	case "", numeric.Float64{}.Name():
		dto, err = buildSchedule(financial.Float, req)
	case numeric.Decimal{}.Name():
		dto, err = buildSchedule(financial.Decimal, req)
	default:
		err = fmt.Errorf("%q: %w", req.Numeric, ErrUnknownNumeric)
	}
	if err != nil {
		h.writeFailure(w, r, "Failed to build schedule", err)
		return
	}

	if err := h.record(r.Context(), "amortization", dto.Numeric, "", req, dto); err != nil {
		h.writeFailure(w, r, "Failed to journal calculation", err)
		return
	}
	writeJSON(w, http.StatusOK, dto)
}

func buildSchedule[T any](c *financial.Calculator[T], req AmortizationRequest) (ScheduleDTO, error) {
	d := c.Domain()

	when, err := financial.ParseWhen(req.When)
	if err != nil {
		return ScheduleDTO{}, err
	}
	if when.Size() != 1 {
		return ScheduleDTO{}, &OperandError{Field: "when", Reason: "must be a single value"}
	}

	rate, err := requireScalar(d, "rate", req.Rate)
	if err != nil {
		return ScheduleDTO{}, err
	}
	nper, err := requireScalar(d, "nper", req.Nper)
	if err != nil {
		return ScheduleDTO{}, err
	}
	pv, err := requireScalar(d, "pv", req.PV)
	if err != nil {
		return ScheduleDTO{}, err
	}
	fv := d.FromInt(0)
	if len(req.FV) > 0 {
		if fv, err = requireScalar(d, "fv", req.FV); err != nil {
			return ScheduleDTO{}, err
		}
	}

	s, err := schedule.BuildIn(c, rate, nper, pv, fv, when.Flat()[0])
	if err != nil {
		return ScheduleDTO{}, err
	}
	return toScheduleDTO(d.Name(), s), nil
}

// =============================================================================
// CASH-FLOW SERIES HANDLERS
// =============================================================================

// ListSeries returns all stored series.
func (h *Handler) ListSeries(w http.ResponseWriter, r *http.Request) {
	list, err := h.Store.ListSeries(r.Context())
	if err != nil {
		h.writeFailure(w, r, "Failed to list series", err)
		return
	}

	dtos := make([]SeriesDTO, len(list))
	for i, s := range list {
		dtos[i] = toSeriesDTO(s)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateSeries stores a new series.
func (h *Handler) CreateSeries(w http.ResponseWriter, r *http.Request) {
	var req CreateSeriesRequest
	if err := decodeBody(r, &req, false); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	values, err := decodeSeriesValues(req.Values)
	if err != nil {
		h.writeFailure(w, r, "Invalid series", err)
		return
	}
	s, err := cashflow.NewSeries(req.Name, values)
	if err != nil {
		h.writeFailure(w, r, "Invalid series", err)
		return
	}
	if err := h.Store.SaveSeries(r.Context(), s); err != nil {
		h.writeFailure(w, r, "Failed to save series", err)
		return
	}

	h.logger(r.Context()).WithFields(logrus.Fields{
		"series_id": s.ID,
		"periods":   len(s.Values),
	}).Info("series created")
	writeJSON(w, http.StatusCreated, toSeriesDTO(s))
}

// GetSeries returns one series.
func (h *Handler) GetSeries(w http.ResponseWriter, r *http.Request) {
	s, err := h.Store.GetSeries(r.Context(), cashflow.SeriesID(chi.URLParam(r, "id")))
	if err != nil {
		h.writeFailure(w, r, "Failed to get series", err)
		return
	}
	writeJSON(w, http.StatusOK, toSeriesDTO(s))
}

// DeleteSeries removes one series.
func (h *Handler) DeleteSeries(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.DeleteSeries(r.Context(), cashflow.SeriesID(chi.URLParam(r, "id"))); err != nil {
		h.writeFailure(w, r, "Failed to delete series", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AnalyzeSeries computes NPV, IRR and MIRR of a stored series. Finance and
// reinvestment rates default to the discount rate.
func (h *Handler) AnalyzeSeries(w http.ResponseWriter, r *http.Request) {
	var req AnalysisRequest
	if err := decodeBody(r, &req, false); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	key := r.Header.Get(IdempotencyHeader)
	if h.replay(w, r, "analysis", key) {
		return
	}

	in, err := analysisInput(req)
	if err != nil {
		h.writeFailure(w, r, "Invalid analysis request", err)
		return
	}

	var res cashflow.Analysis
	err = h.solve(r.Context(), func(ctx context.Context) error {
		var err error
		res, err = h.Analyzer.Analyze(ctx, cashflow.SeriesID(chi.URLParam(r, "id")), in)
		return err
	})
	if err != nil {
		h.writeFailure(w, r, "Analysis failed", err)
		return
	}

	dto := toAnalysisDTO(res)
	if err := h.record(r.Context(), "analysis", numeric.Decimal{}.Name(), key, req, dto); err != nil {
		if cashflow.IsConflict(err) && h.replay(w, r, "analysis", key) {
			return
		}
		h.writeFailure(w, r, "Failed to journal calculation", err)
		return
	}
	writeJSON(w, http.StatusOK, dto)
}

func analysisInput(req AnalysisRequest) (cashflow.AnalysisInput, error) {
	d := numeric.Decimal{}
	rate, err := requireScalar[decimal.NullDecimal](d, "rate", req.Rate)
	if err != nil {
		return cashflow.AnalysisInput{}, err
	}
	in := cashflow.AnalysisInput{
		Rate:         rate.Decimal,
		FinanceRate:  rate.Decimal,
		ReinvestRate: rate.Decimal,
		Guess:        req.Guess,
	}
	if len(req.FinanceRate) > 0 {
		fr, err := requireScalar[decimal.NullDecimal](d, "finance_rate", req.FinanceRate)
		if err != nil {
			return cashflow.AnalysisInput{}, err
		}
		in.FinanceRate = fr.Decimal
	}
	if len(req.ReinvestRate) > 0 {
		rr, err := requireScalar[decimal.NullDecimal](d, "reinvest_rate", req.ReinvestRate)
		if err != nil {
			return cashflow.AnalysisInput{}, err
		}
		in.ReinvestRate = rr.Decimal
	}
	return in, nil
}

func decodeSeriesValues(raw json.RawMessage) ([]decimal.Decimal, error) {
	arr, err := requireOperand[decimal.NullDecimal](numeric.Decimal{}, "values", raw)
	if err != nil {
		return nil, err
	}
	if arr.Ndim() > 1 {
		return nil, &OperandError{Field: "values", Reason: "must be a flat list"}
	}

	flat := arr.Flat()
	values := make([]decimal.Decimal, len(flat))
	for i, v := range flat {
		values[i] = v.Decimal
	}
	return values, nil
}

// =============================================================================
// JOURNAL HANDLERS
// =============================================================================

// ListCalculations returns the calculation journal, newest first.
func (h *Handler) ListCalculations(w http.ResponseWriter, r *http.Request) {
	filter := cashflow.CalculationFilter{Function: r.URL.Query().Get("function"), Limit: 100}
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "Invalid limit", err)
			return
		}
		filter.Limit = n
	}

	list, err := h.Journal.History(r.Context(), filter)
	if err != nil {
		h.writeFailure(w, r, "Failed to list calculations", err)
		return
	}

	dtos := make([]CalculationDTO, len(list))
	for i, c := range list {
		dtos[i] = toCalculationDTO(c)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// replay writes the journaled response for a repeated idempotency key.
// It returns true when a response was written.
func (h *Handler) replay(w http.ResponseWriter, r *http.Request, function, key string) bool {
	c, found, err := h.Journal.Replay(r.Context(), function, key)
	if err != nil {
		h.writeFailure(w, r, "Idempotency check failed", err)
		return true
	}
	if !found {
		return false
	}

	h.logger(r.Context()).WithFields(logrus.Fields{
		"function":        function,
		"idempotency_key": key,
	}).Info("replaying journaled result")

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set(ReplayedHeader, "true")
	w.WriteHeader(http.StatusOK)
	w.Write(c.Result)
	return true
}

// record journals a calculation. Only an idempotency conflict is reported;
// other journal failures are logged and the result is still served.
func (h *Handler) record(ctx context.Context, function, numericName, key string, req, result any) error {
	_, err := h.Journal.Record(ctx, function, numericName, key, req, result)
	if err == nil {
		return nil
	}
	if cashflow.IsConflict(err) {
		return err
	}
	h.logger(ctx).WithError(err).WithField("function", function).Warn("failed to journal calculation")
	return nil
}

// =============================================================================
// HEALTH
// =============================================================================

type pinger interface {
	Ping(ctx context.Context) error
}

// Health reports liveness and, when the store supports it, database health.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if p, ok := h.Store.(pinger); ok {
		if err := p.Ping(r.Context()); err != nil {
			writeError(w, http.StatusServiceUnavailable, "Database unavailable", err)
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// =============================================================================
// HELPERS
// =============================================================================

func decodeBody(r *http.Request, v any, allowEmpty bool) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		if allowEmpty && errors.Is(err, io.EOF) {
			return nil
		}
		return err
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message, Code: errorCode(err)}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// writeFailure maps a domain error to its status code and logs server errors.
func (h *Handler) writeFailure(w http.ResponseWriter, r *http.Request, message string, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger(r.Context()).WithError(err).Error(message)
	}
	writeError(w, status, message, err)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrSolverTimeout):
		return http.StatusGatewayTimeout
	case cashflow.IsNotFound(err):
		return http.StatusNotFound
	case cashflow.IsConflict(err):
		return http.StatusConflict
	case financial.IsClientError(err),
		cashflow.IsClientError(err),
		errors.Is(err, ErrInvalidOperand),
		errors.Is(err, ErrUnknownNumeric),
		errors.Is(err, ErrFloatOnly),
		errors.Is(err, schedule.ErrInvalidTerm):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func errorCode(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrSolverTimeout):
		return "solver_timeout"
	case cashflow.IsNotFound(err):
		return "not_found"
	case cashflow.IsConflict(err):
		return "conflict"
	case errors.Is(err, financial.ErrInvalidWhen):
		return "invalid_timing"
	case errors.Is(err, ndarray.ErrShapeMismatch):
		return "shape_mismatch"
	case errors.Is(err, ErrInvalidOperand):
		return "invalid_operand"
	case errors.Is(err, ErrFloatOnly):
		return "float_only"
	case errors.Is(err, ErrUnknownNumeric):
		return "unknown_numeric"
	case errors.Is(err, schedule.ErrInvalidTerm):
		return "invalid_term"
	case statusFor(err) == http.StatusBadRequest:
		return "invalid_input"
	}
	return ""
}
