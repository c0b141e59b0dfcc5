package backtest

import (
	"time"

	"github.com/tqqq-trading/internal/market"
	"github.com/tqqq-trading/internal/metrics"
)

// Result holds the complete output of one backtest run.
type Result struct {
	Metrics         metrics.PerformanceMetrics `json:"metrics"`
	EquityCurve     []market.EquityPoint       `json:"equity_curve"`
	DrawdownCurve   []market.DrawdownPoint     `json:"drawdown_curve"`
	Trades          []market.Trade             `json:"trades"`
	StartDate       time.Time                  `json:"start_date"`
	EndDate         time.Time                  `json:"end_date"`
	InitialCapital  float64                    `json:"initial_capital"`
	FinalEquity     float64                    `json:"final_equity"`
	ExecutionTimeMS int64                      `json:"execution_time_ms"`
}
