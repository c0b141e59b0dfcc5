package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealth(t *testing.T) {
	t.Parallel()
	server := NewServer(nil)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	server.Echo().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRunBacktestSynthetic(t *testing.T) {
	t.Parallel()
	server := NewServer(nil)

	body := `{"days": 120, "seed": 42, "shortEnabled": false}`
	req := httptest.NewRequest(http.MethodPost, "/api/backtest", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	server.Echo().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp BacktestResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotNil(t, resp.Result)
	assert.Equal(t, 10000.0, resp.Result.InitialCapital)
	assert.Len(t, resp.Result.EquityCurve, 100)
	assert.Empty(t, resp.ID)
}

func TestRunBacktestIgnoresNonPositiveOverrides(t *testing.T) {
	t.Parallel()
	server := NewServer(nil)

	// Non-positive overrides keep the defaults rather than failing
	// validation.
	body := `{"smaPeriod": -1}`
	req := httptest.NewRequest(http.MethodPost, "/api/backtest", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	server.Echo().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestListBacktestsWithoutRepo(t *testing.T) {
	t.Parallel()
	server := NewServer(nil)

	req := httptest.NewRequest(http.MethodGet, "/api/backtests", nil)
	rec := httptest.NewRecorder()
	server.Echo().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
