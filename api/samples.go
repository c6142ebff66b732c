/*
samples.go - Sample cash-flow series for testing and demonstrations

PURPOSE:
  Provides pre-built cash-flow series that populate the store with
  realistic data for demos. Each sample exercises a particular behaviour
  of the analysis endpoints.

AVAILABLE SAMPLES:
  textbook-project:  Short project with a clean positive IRR
  five-year-expansion: Capital project used for NPV / MIRR examples
  deferred-payoff:   Single late inflow after idle periods
  multiple-roots:    Several sign changes, IRR depends on the guess
  no-sign-change:    All inflows, IRR is NaN

USAGE VIA API:
  GET  /api/cashflows/samples
  POST /api/cashflows/samples
  {"sample_ids": ["textbook-project"]}

  An empty body loads every sample. Loading never clears existing series;
  each load creates new series with fresh IDs.

ADDING NEW SAMPLES:
  Append to the 'samples' slice. Values are decimal literals.

SEE ALSO:
  - handlers.go: Series and analysis handlers
  - cashflow/types.go: Series validation
*/
package api

import (
	"context"
	"net/http"

	"github.com/sirupsen/logrus"
	"github.com/warp/tvm-engine/cashflow"
)

// =============================================================================
// SAMPLE DEFINITIONS
// =============================================================================

type sample struct {
	ID          string
	Name        string
	Description string
	Values      []string
}

var samples = []sample{
	{
		ID:          "textbook-project",
		Name:        "Textbook Project",
		Description: "Outlay of 100 followed by four inflows; IRR is about 28.1%",
		Values:      []string{"-100", "39", "59", "55", "20"},
	},
	{
		ID:          "five-year-expansion",
		Name:        "Five-Year Expansion",
		Description: "Capital project analysed at 10% finance and 12% reinvestment rates",
		Values:      []string{"-120000", "39000", "30000", "21000", "37000", "46000"},
	},
	{
		ID:          "deferred-payoff",
		Name:        "Deferred Payoff",
		Description: "Investment repaid in a single inflow after two idle periods",
		Values:      []string{"-100", "0", "0", "74"},
	},
	{
		ID:          "multiple-roots",
		Name:        "Multiple Roots",
		Description: "Cash flows with several sign changes; the IRR found depends on the guess",
		Values:      []string{"-5", "10.5", "1", "-8", "1"},
	},
	{
		ID:          "no-sign-change",
		Name:        "No Sign Change",
		Description: "Inflows only; IRR and MIRR are undefined",
		Values:      []string{"10", "20", "30"},
	},
}

func findSample(id string) (sample, bool) {
	for _, s := range samples {
		if s.ID == id {
			return s, true
		}
	}
	return sample{}, false
}

// =============================================================================
// SAMPLE HANDLERS
// =============================================================================

// ListSamples returns all loadable samples.
func (h *Handler) ListSamples(w http.ResponseWriter, r *http.Request) {
	dtos := make([]SampleDTO, len(samples))
	for i, s := range samples {
		dtos[i] = SampleDTO{ID: s.ID, Name: s.Name, Description: s.Description, Values: s.Values}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// LoadSamples stores the selected samples as new series.
func (h *Handler) LoadSamples(w http.ResponseWriter, r *http.Request) {
	var req LoadSamplesRequest
	if err := decodeBody(r, &req, true); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	selected := samples
	if len(req.SampleIDs) > 0 {
		selected = make([]sample, 0, len(req.SampleIDs))
		for _, id := range req.SampleIDs {
			s, ok := findSample(id)
			if !ok {
				writeError(w, http.StatusBadRequest, "Unknown sample", &cashflow.ValidationError{
					Field:   "sample_ids",
					Message: "unknown sample " + id,
				})
				return
			}
			selected = append(selected, s)
		}
	}

	created, err := h.loadSamples(r.Context(), selected)
	if err != nil {
		h.writeFailure(w, r, "Failed to load samples", err)
		return
	}

	h.logger(r.Context()).WithFields(logrus.Fields{
		"count": len(created),
	}).Info("samples loaded")
	writeJSON(w, http.StatusCreated, created)
}

func (h *Handler) loadSamples(ctx context.Context, selected []sample) ([]SeriesDTO, error) {
	created := make([]SeriesDTO, 0, len(selected))
	for _, smp := range selected {
		values, err := cashflow.ParseValues(smp.Values...)
		if err != nil {
			return nil, err
		}
		s, err := cashflow.NewSeries(smp.Name, values)
		if err != nil {
			return nil, err
		}
		if err := h.Store.SaveSeries(ctx, s); err != nil {
			return nil, err
		}
		created = append(created, toSeriesDTO(s))
	}
	return created, nil
}
