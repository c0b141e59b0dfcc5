package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/tqqq-trading/internal/backtest"
	"github.com/tqqq-trading/internal/config"
	"github.com/tqqq-trading/internal/data"
	"github.com/tqqq-trading/internal/market"
	"github.com/tqqq-trading/internal/storage"
)

// backtestHandler handles backtest endpoints.
type backtestHandler struct {
	repo *storage.BacktestRepository
}

func newBacktestHandler(repo *storage.BacktestRepository) *backtestHandler {
	return &backtestHandler{repo: repo}
}

// BacktestRequest is the JSON body of POST /api/backtest. Bars may be
// supplied inline; otherwise a synthetic series is generated.
type BacktestRequest struct {
	Days         int          `json:"days"`
	InitialPrice float64      `json:"initialPrice"`
	Seed         int64        `json:"seed"`
	Bars         []market.Bar `json:"bars,omitempty"`
	HedgeBars    []market.Bar `json:"hedgeBars,omitempty"`

	// Execution preset: "", "realistic" or "pessimistic".
	ExecutionPreset string `json:"executionPreset"`

	// Parameter overrides; zero values keep the defaults.
	Symbol         string  `json:"symbol"`
	InitialCapital float64 `json:"initialCapital"`
	RSIOversold    float64 `json:"rsiOversold"`
	RSIOverbought  float64 `json:"rsiOverbought"`
	SMAPeriod      int     `json:"smaPeriod"`
	StopLossPct    float64 `json:"stopLossPct"`
	ShortEnabled   *bool   `json:"shortEnabled,omitempty"`
	Save           bool    `json:"save"`
}

// BacktestResponse is the JSON body returned by POST /api/backtest.
type BacktestResponse struct {
	ID     string           `json:"id,omitempty"`
	Result *backtest.Result `json:"result"`
}

// RunBacktest runs a backtest from request parameters.
func (h *backtestHandler) RunBacktest(c echo.Context) error {
	var req BacktestRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}

	params := config.DefaultParameters()
	if req.Symbol != "" {
		params.Symbol = req.Symbol
	}
	if req.InitialCapital > 0 {
		params.InitialCapital = req.InitialCapital
	}
	if req.RSIOversold > 0 {
		params.RSIOversold = req.RSIOversold
	}
	if req.RSIOverbought > 0 {
		params.RSIOverbought = req.RSIOverbought
	}
	if req.SMAPeriod > 0 {
		params.SMAPeriod = req.SMAPeriod
	}
	if req.StopLossPct > 0 {
		params.StopLossPct = req.StopLossPct
	}
	if req.ShortEnabled != nil {
		params.ShortEnabled = *req.ShortEnabled
	}

	switch req.ExecutionPreset {
	case "realistic":
		params.Execution = config.RealisticExecution()
	case "pessimistic":
		params.Execution = config.PessimisticExecution()
	}
	if req.Seed != 0 {
		params.Execution.Seed = req.Seed
	}

	if err := params.Validate(); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	bars := req.Bars
	hedgeBars := req.HedgeBars
	if len(bars) == 0 {
		days := req.Days
		if days <= 0 {
			days = 252
		}
		initialPrice := req.InitialPrice
		if initialPrice <= 0 {
			initialPrice = 50
		}
		bars = data.GenerateSyntheticBars(days, initialPrice, req.Seed)
		if params.ShortEnabled && len(hedgeBars) == 0 {
			hedgeBars = data.GenerateInverseBars(bars, initialPrice/2)
		}
	}

	engine := backtest.New(params)
	result := engine.Run(bars, hedgeBars)

	resp := BacktestResponse{Result: result}
	if req.Save && h.repo != nil {
		id, err := h.repo.SaveResult(params, result)
		if err != nil {
			log.Error().Err(err).Msg("Failed to save backtest run")
		} else {
			resp.ID = id
		}
	}

	return c.JSON(http.StatusOK, resp)
}

// ListBacktests returns recent stored runs.
func (h *backtestHandler) ListBacktests(c echo.Context) error {
	if h.repo == nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "persistence not configured"})
	}

	runs, err := h.repo.ListRuns(50)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, runs)
}

// GetBacktest returns one stored run with its trades.
func (h *backtestHandler) GetBacktest(c echo.Context) error {
	if h.repo == nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "persistence not configured"})
	}

	run, trades, err := h.repo.GetRun(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, map[string]any{
		"run":    run,
		"trades": trades,
	})
}
