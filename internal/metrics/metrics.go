package metrics

import (
	"encoding/json"
	"math"

	"github.com/tqqq-trading/internal/market"
)

const (
	// TradingDaysPerYear annualizes daily statistics.
	TradingDaysPerYear = 252.0
	// RiskFreeRate is the annual risk-free rate used by Sharpe and
	// Sortino.
	RiskFreeRate = 0.05
)

// PerformanceMetrics aggregates return, risk and trade statistics for
// one backtest run.
//
// Unit note: Sharpe is computed in percent terms (volatility in %,
// mean return scaled by 100) while Sortino stays in fractional units.
// Both forms are kept as-is; consumers compare runs against each other,
// not the two ratios against one another.
type PerformanceMetrics struct {
	// Returns
	TotalReturn    float64 `json:"total_return"`
	TotalReturnPct float64 `json:"total_return_pct"`
	CAGR           float64 `json:"cagr"`
	// Risk
	Volatility              float64 `json:"volatility"`
	SharpeRatio             float64 `json:"sharpe_ratio"`
	SortinoRatio            float64 `json:"sortino_ratio"`
	MaxDrawdown             float64 `json:"max_drawdown"`
	MaxDrawdownDurationDays int64   `json:"max_drawdown_duration_days"`
	CalmarRatio             float64 `json:"calmar_ratio"`
	// Trade statistics
	TotalTrades          int     `json:"total_trades"`
	WinningTrades        int     `json:"winning_trades"`
	LosingTrades         int     `json:"losing_trades"`
	WinRate              float64 `json:"win_rate"`
	AvgWin               float64 `json:"avg_win"`
	AvgLoss              float64 `json:"avg_loss"`
	ProfitFactor         float64 `json:"profit_factor"`
	Expectancy           float64 `json:"expectancy"`
	AvgTradeDurationDays float64 `json:"avg_trade_duration_days"`
	BestTrade            float64 `json:"best_trade"`
	WorstTrade           float64 `json:"worst_trade"`
	ExposurePct          float64 `json:"exposure_pct"`
}

// MarshalJSON emits null for the ratio fields that can legitimately be
// infinite (Sortino with no downside, profit factor with no losses).
func (m PerformanceMetrics) MarshalJSON() ([]byte, error) {
	type alias PerformanceMetrics
	return json.Marshal(struct {
		alias
		SortinoRatio *float64 `json:"sortino_ratio"`
		ProfitFactor *float64 `json:"profit_factor"`
	}{
		alias:        alias(m),
		SortinoRatio: finiteOrNil(m.SortinoRatio),
		ProfitFactor: finiteOrNil(m.ProfitFactor),
	})
}

func finiteOrNil(v float64) *float64 {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return nil
	}
	return &v
}

// Calculate computes all performance metrics from the equity curve and
// trade log.
func Calculate(equityCurve []market.EquityPoint, trades []market.Trade, initialCapital float64) PerformanceMetrics {
	if len(equityCurve) == 0 {
		return PerformanceMetrics{}
	}

	finalEquity := equityCurve[len(equityCurve)-1].Equity
	totalReturn := finalEquity - initialCapital
	totalReturnPct := totalReturn / initialCapital * 100

	dailyReturns := calculateDailyReturns(equityCurve)

	volatility := calculateVolatility(dailyReturns)
	sharpe := calculateSharpeRatio(dailyReturns, volatility)
	sortino := calculateSortinoRatio(dailyReturns)
	maxDrawdown, maxDDDuration := calculateMaxDrawdown(equityCurve)

	// CAGR over the simulated span.
	years := float64(len(equityCurve)) / TradingDaysPerYear
	cagr := 0.0
	if years > 0 && finalEquity > 0 && initialCapital > 0 {
		cagr = (math.Pow(finalEquity/initialCapital, 1/years) - 1) * 100
	}

	calmar := 0.0
	if maxDrawdown != 0 {
		calmar = cagr / math.Abs(maxDrawdown)
	}

	stats := calculateTradeStats(trades)

	m := PerformanceMetrics{
		TotalReturn:             totalReturn,
		TotalReturnPct:          totalReturnPct,
		CAGR:                    cagr,
		Volatility:              volatility,
		SharpeRatio:             sharpe,
		SortinoRatio:            sortino,
		MaxDrawdown:             maxDrawdown,
		MaxDrawdownDurationDays: maxDDDuration,
		CalmarRatio:             calmar,
		TotalTrades:             len(trades),
		WinningTrades:           stats.winning,
		LosingTrades:            stats.losing,
		WinRate:                 stats.winRate,
		AvgWin:                  stats.avgWin,
		AvgLoss:                 stats.avgLoss,
		ProfitFactor:            stats.profitFactor,
		Expectancy:              stats.expectancy,
		AvgTradeDurationDays:    stats.avgDuration,
		BestTrade:               stats.best,
		WorstTrade:              stats.worst,
		ExposurePct:             calculateExposure(equityCurve, trades),
	}
	return m
}

// calculateDailyReturns converts the equity curve into simple returns.
func calculateDailyReturns(equityCurve []market.EquityPoint) []float64 {
	if len(equityCurve) < 2 {
		return nil
	}

	returns := make([]float64, len(equityCurve)-1)
	for i := 1; i < len(equityCurve); i++ {
		prev := equityCurve[i-1].Equity
		if prev != 0 {
			returns[i-1] = (equityCurve[i].Equity - prev) / prev
		}
	}
	return returns
}

// calculateVolatility returns the annualized population deviation of
// daily returns, in percent.
func calculateVolatility(dailyReturns []float64) float64 {
	if len(dailyReturns) == 0 {
		return 0
	}

	n := float64(len(dailyReturns))
	var mean float64
	for _, r := range dailyReturns {
		mean += r
	}
	mean /= n

	var variance float64
	for _, r := range dailyReturns {
		diff := r - mean
		variance += diff * diff
	}
	variance /= n

	return math.Sqrt(variance) * math.Sqrt(TradingDaysPerYear) * 100
}

// calculateSharpeRatio computes Sharpe in percent units.
func calculateSharpeRatio(dailyReturns []float64, volatility float64) float64 {
	if len(dailyReturns) == 0 || volatility == 0 {
		return 0
	}

	n := float64(len(dailyReturns))
	var meanDaily float64
	for _, r := range dailyReturns {
		meanDaily += r
	}
	meanDaily /= n

	annualizedReturn := meanDaily * TradingDaysPerYear * 100
	return (annualizedReturn - RiskFreeRate*100) / volatility
}

// calculateSortinoRatio computes Sortino in fractional units, with
// squared downside deviations divided by the total sample size.
func calculateSortinoRatio(dailyReturns []float64) float64 {
	if len(dailyReturns) == 0 {
		return 0
	}

	n := float64(len(dailyReturns))
	var meanReturn float64
	for _, r := range dailyReturns {
		meanReturn += r
	}
	meanReturn /= n

	dailyRiskFree := RiskFreeRate / TradingDaysPerYear

	var downsideSum float64
	downsideCount := 0
	for _, r := range dailyReturns {
		if r < dailyRiskFree {
			diff := r - dailyRiskFree
			downsideSum += diff * diff
			downsideCount++
		}
	}

	if downsideCount == 0 {
		return math.Inf(1)
	}

	downsideDeviation := math.Sqrt(downsideSum/n) * math.Sqrt(TradingDaysPerYear)
	if downsideDeviation == 0 {
		return 0
	}

	annualizedReturn := meanReturn * TradingDaysPerYear
	return (annualizedReturn - RiskFreeRate) / downsideDeviation
}

// calculateMaxDrawdown tracks the deepest percent decline from the
// running peak and its duration in bars since the peak reset.
func calculateMaxDrawdown(equityCurve []market.EquityPoint) (float64, int64) {
	if len(equityCurve) == 0 {
		return 0, 0
	}

	maxEquity := equityCurve[0].Equity
	maxDrawdown := 0.0
	var maxDDDuration int64
	currentDDStart := 0

	for i, point := range equityCurve {
		if point.Equity > maxEquity {
			maxEquity = point.Equity
			currentDDStart = i
		}

		drawdown := (maxEquity - point.Equity) / maxEquity * 100
		if drawdown > maxDrawdown {
			maxDrawdown = drawdown
			maxDDDuration = int64(i - currentDDStart)
		}
	}

	return maxDrawdown, maxDDDuration
}

// DrawdownCurve returns the per-bar drawdown percent against the
// running equity peak.
func DrawdownCurve(equityCurve []market.EquityPoint) []market.DrawdownPoint {
	if len(equityCurve) == 0 {
		return nil
	}

	maxEquity := equityCurve[0].Equity
	curve := make([]market.DrawdownPoint, len(equityCurve))
	for i, point := range equityCurve {
		if point.Equity > maxEquity {
			maxEquity = point.Equity
		}
		drawdown := 0.0
		if maxEquity > 0 {
			drawdown = (maxEquity - point.Equity) / maxEquity * 100
		}
		curve[i] = market.DrawdownPoint{Timestamp: point.Timestamp, Drawdown: drawdown}
	}
	return curve
}

type tradeStats struct {
	winning      int
	losing       int
	winRate      float64
	avgWin       float64
	avgLoss      float64
	profitFactor float64
	expectancy   float64
	avgDuration  float64
	best         float64
	worst        float64
}

// calculateTradeStats aggregates per-trade statistics. Zero-P&L trades
// count in neither the winning nor the losing bucket.
func calculateTradeStats(trades []market.Trade) tradeStats {
	if len(trades) == 0 {
		return tradeStats{}
	}

	var stats tradeStats
	var totalWins, totalLosses float64
	var totalDuration int64
	best := math.Inf(-1)
	worst := math.Inf(1)

	for _, trade := range trades {
		if trade.PnL > 0 {
			stats.winning++
			totalWins += trade.PnL
		} else if trade.PnL < 0 {
			stats.losing++
			totalLosses += math.Abs(trade.PnL)
		}

		totalDuration += trade.HoldingDays
		best = math.Max(best, trade.PnL)
		worst = math.Min(worst, trade.PnL)
	}

	n := float64(len(trades))
	stats.winRate = float64(stats.winning) / n * 100

	if stats.winning > 0 {
		stats.avgWin = totalWins / float64(stats.winning)
	}
	if stats.losing > 0 {
		stats.avgLoss = totalLosses / float64(stats.losing)
	}

	switch {
	case totalLosses > 0:
		stats.profitFactor = totalWins / totalLosses
	case totalWins > 0:
		stats.profitFactor = math.Inf(1)
	}

	stats.expectancy = stats.winRate/100*stats.avgWin - (1-stats.winRate/100)*stats.avgLoss
	stats.avgDuration = float64(totalDuration) / n
	stats.best = best
	stats.worst = worst

	return stats
}

// calculateExposure returns the share of simulated days spent in a
// position, capped at 100%.
func calculateExposure(equityCurve []market.EquityPoint, trades []market.Trade) float64 {
	if len(equityCurve) == 0 || len(trades) == 0 {
		return 0
	}

	totalDays := float64(len(equityCurve))
	var investedDays int64
	for _, trade := range trades {
		days := trade.HoldingDays
		if days < 1 {
			days = 1
		}
		investedDays += days
	}

	return math.Min(float64(investedDays)/totalDays*100, 100)
}
