/*
cashflows_test.go - Tests for the cash-flow series endpoints

Tests for:
- Series CRUD
- Series analysis (NPV / IRR / MIRR)
- Sample loading
- Health check over SQLite
*/
package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/tvm-engine/store/sqlite"
)

func createSeries(t *testing.T, s *testServer, body string) SeriesDTO {
	t.Helper()
	rec := s.do(t, "POST", "/api/cashflows", body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var dto SeriesDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &dto))
	return dto
}

func TestSeries_CreateGetListDelete(t *testing.T) {
	// GIVEN: an empty store
	s := newTestServer(t)

	// WHEN: creating a series with mixed number and string values
	created := createSeries(t, s, `{"name": "Expansion", "values": [-120000, "39000.50", 30000]}`)

	// THEN: it can be read back with exact decimal values
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, []string{"-120000", "39000.5", "30000"}, created.Values)

	rec := s.do(t, "GET", "/api/cashflows/"+created.ID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var got SeriesDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, created, got)

	rec = s.do(t, "GET", "/api/cashflows", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var list []SeriesDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Len(t, list, 1)

	rec = s.do(t, "DELETE", "/api/cashflows/"+created.ID, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	resp := decodeError(t, s.do(t, "GET", "/api/cashflows/"+created.ID, ""), http.StatusNotFound)
	assert.Equal(t, "not_found", resp.Code)
}

func TestSeries_EmptyListIsArray(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(t, "GET", "/api/cashflows", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestSeries_Validation(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"blank name", `{"name": " ", "values": [1, 2]}`},
		{"no values", `{"name": "x", "values": []}`},
		{"missing values", `{"name": "x"}`},
		{"nested values", `{"name": "x", "values": [[1, 2], [3, 4]]}`},
		{"bad literal", `{"name": "x", "values": ["1", "two"]}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := newTestServer(t)
			decodeError(t, s.do(t, "POST", "/api/cashflows", tc.body), http.StatusBadRequest)
		})
	}
}

func TestSeries_DeleteUnknown(t *testing.T) {
	s := newTestServer(t)
	decodeError(t, s.do(t, "DELETE", "/api/cashflows/missing", ""), http.StatusNotFound)
}

func TestSeries_Analysis(t *testing.T) {
	// GIVEN: the five-year expansion project
	// WHEN: analysing at 8% with 10% finance and 12% reinvestment rates
	// THEN: NPV, IRR and MIRR are returned
	s := newTestServer(t)
	created := createSeries(t, s, `{"name": "Expansion", "values": [-120000, 39000, 30000, 21000, 37000, 46000]}`)

	rec := s.do(t, "POST", "/api/cashflows/"+created.ID+"/analysis",
		`{"rate": "0.08", "finance_rate": "0.10", "reinvest_rate": "0.12"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var dto AnalysisDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &dto))
	assert.Equal(t, created.ID, dto.SeriesID)
	assert.Equal(t, 6, dto.Periods)

	npv, err := strconv.ParseFloat(dto.NPV.(string), 64)
	require.NoError(t, err)
	assert.InDelta(t, 17004.684398609566, npv, 1e-6)

	mirr, err := strconv.ParseFloat(dto.MIRR.(string), 64)
	require.NoError(t, err)
	assert.InDelta(t, 0.1260941303659051, mirr, 1e-9)

	assert.InDelta(t, 0.1307355394708377, dto.IRR.(float64), 1e-10)
}

func TestSeries_AnalysisWithoutSignChange(t *testing.T) {
	s := newTestServer(t)
	created := createSeries(t, s, `{"name": "Inflows", "values": [10, 20, 30]}`)

	rec := s.do(t, "POST", "/api/cashflows/"+created.ID+"/analysis", `{"rate": 0}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var dto AnalysisDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &dto))
	npv, err := strconv.ParseFloat(dto.NPV.(string), 64)
	require.NoError(t, err)
	assert.Equal(t, 60.0, npv)
	assert.Nil(t, dto.IRR)
	assert.Nil(t, dto.MIRR)
	assert.Equal(t, "NaN", dto.Text["irr"])
	assert.Equal(t, "NaN", dto.Text["mirr"])
}

func TestSeries_AnalysisErrors(t *testing.T) {
	s := newTestServer(t)
	decodeError(t, s.do(t, "POST", "/api/cashflows/missing/analysis", `{"rate": 0.1}`), http.StatusNotFound)

	created := createSeries(t, s, `{"name": "x", "values": [-1, 2]}`)
	resp := decodeError(t, s.do(t, "POST", "/api/cashflows/"+created.ID+"/analysis", `{}`), http.StatusBadRequest)
	assert.Equal(t, "invalid_operand", resp.Code)
}

func TestSeries_AnalysisReplay(t *testing.T) {
	s := newTestServer(t)
	created := createSeries(t, s, `{"name": "x", "values": [-100, 60, 60]}`)
	path := "/api/cashflows/" + created.ID + "/analysis"

	first := s.do(t, "POST", path, `{"rate": 0.05}`, IdempotencyHeader, "analysis-1")
	require.Equal(t, http.StatusOK, first.Code)
	second := s.do(t, "POST", path, `{"rate": 0.05}`, IdempotencyHeader, "analysis-1")
	require.Equal(t, http.StatusOK, second.Code)

	assert.Equal(t, "true", second.Header().Get(ReplayedHeader))
	assert.JSONEq(t, first.Body.String(), second.Body.String())
}

// =============================================================================
// SAMPLES
// =============================================================================

func TestSamples_ListAndLoad(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, "GET", "/api/cashflows/samples", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var available []SampleDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &available))
	require.Len(t, available, len(samples))

	// WHEN: loading every sample with an empty body
	rec = s.do(t, "POST", "/api/cashflows/samples", "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created []SeriesDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Len(t, created, len(samples))

	// THEN: loading again adds new series rather than replacing them
	rec = s.do(t, "POST", "/api/cashflows/samples", `{"sample_ids": ["textbook-project"]}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = s.do(t, "GET", "/api/cashflows", "")
	var list []SeriesDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Len(t, list, len(samples)+1)
}

func TestSamples_UnknownID(t *testing.T) {
	s := newTestServer(t)
	resp := decodeError(t, s.do(t, "POST", "/api/cashflows/samples", `{"sample_ids": ["nope"]}`), http.StatusBadRequest)
	assert.Contains(t, resp.Details, "nope")
}

func TestSamples_AreValidSeries(t *testing.T) {
	for _, smp := range samples {
		_, ok := findSample(smp.ID)
		assert.True(t, ok, smp.ID)
		assert.NotEmpty(t, smp.Values, smp.ID)
	}
}

// =============================================================================
// HEALTH
// =============================================================================

func TestHealth_SQLite(t *testing.T) {
	st, err := sqlite.New(":memory:")
	require.NoError(t, err)
	defer st.Close()

	logger, _ := test.NewNullLogger()
	h := NewHandler(st, Options{SolverTimeout: time.Second, Logger: logger})
	router := NewRouter(h, nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status": "ok"}`, rec.Body.String())

	// Series persist through the SQLite store as well.
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("POST", "/api/cashflows/samples", nil))
	assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
}
