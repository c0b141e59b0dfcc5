package backtest

import (
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/tqqq-trading/internal/config"
	"github.com/tqqq-trading/internal/execution"
	"github.com/tqqq-trading/internal/indicators"
	"github.com/tqqq-trading/internal/market"
	"github.com/tqqq-trading/internal/metrics"
	"github.com/tqqq-trading/internal/portfolio"
	"github.com/tqqq-trading/internal/signals"
)

// Engine parameters that are not strategy knobs.
const (
	atrPeriod        = 14
	volatilityPeriod = 20
)

// Engine replays a bar series through signal generation, execution
// simulation and portfolio accounting. A run is single-threaded and
// deterministic for a fixed execution seed.
type Engine struct {
	params *config.Parameters
}

// New creates a backtest engine.
func New(params *config.Parameters) *Engine {
	return &Engine{params: params}
}

// Run executes the backtest over the bar series. hedgeBars may be nil
// when the hedge leg is unused; when present it is indexed in lockstep
// with bars.
func (e *Engine) Run(bars []market.Bar, hedgeBars []market.Bar) *Result {
	startTime := time.Now()

	warmup := e.params.SMAPeriod
	if e.params.BBPeriod > warmup {
		warmup = e.params.BBPeriod
	}
	if len(bars) < warmup+1 {
		log.Warn().
			Int("bars", len(bars)).
			Int("required", warmup+1).
			Msg("Insufficient data for backtest")
		return e.emptyResult(bars)
	}

	closes := make([]float64, len(bars))
	highs := make([]float64, len(bars))
	lows := make([]float64, len(bars))
	for i, bar := range bars {
		closes[i] = bar.Close
		highs[i] = bar.High
		lows[i] = bar.Low
	}

	series := indicators.NewSeries(closes, highs, lows, indicators.Config{
		RSIPeriod: e.params.RSIPeriod,
		SMAPeriod: e.params.SMAPeriod,
		BBPeriod:  e.params.BBPeriod,
		BBStdDev:  e.params.BBStdDev,
		ATRPeriod: atrPeriod,
	})
	volatility := indicators.RollingVolatility(closes, volatilityPeriod)

	port := portfolio.New(e.params.InitialCapital)
	generator := signals.NewGenerator(e.params)
	simulator := execution.NewSimulator(e.params.Execution)

	log.Info().
		Str("symbol", e.params.Symbol).
		Int("bars", len(bars)).
		Int("warmup", warmup).
		Bool("realisticExecution", simulator.Enabled()).
		Msg("Backtest started")

	equityCurve := make([]market.EquityPoint, 0, len(bars)-warmup)

	for i := warmup; i < len(bars); i++ {
		bar := bars[i]
		var hedgeBar *market.Bar
		if i < len(hedgeBars) {
			hedgeBar = &hedgeBars[i]
		}

		snapshot := series.At(i)
		snapshot.VWAP = bar.VWAP
		if i > 0 {
			snapshot.PrevHigh = bars[i-1].High
			snapshot.PrevLow = bars[i-1].Low
		}

		// Delayed entry orders whose latency has elapsed execute
		// against this bar.
		e.drainPendingOrders(simulator, port, bar, hedgeBar, i, volatility[i])

		// The stop-loss check runs before signal generation and, when
		// it fires, consumes the bar.
		if port.HasPosition() && port.CheckStopLoss(bar.Close) {
			e.closePrimary(simulator, port, bar, "stop loss", volatility[i], e.params.Commission)
		} else if signal := generator.Generate(bar, snapshot, port.HasPosition(), port.Position(), port.HasHedgePosition()); signal != nil {
			switch signal.Type {
			case market.SignalBuy:
				e.executeBuy(simulator, port, bar, i, volatility[i])
			case market.SignalSell:
				e.closePrimary(simulator, port, bar, signal.Reason, volatility[i], e.params.Commission)
			case market.SignalHedgeBuy:
				if hedgeBar != nil {
					e.executeHedgeBuy(simulator, port, *hedgeBar, i, volatility[i])
				}
			case market.SignalHedgeSell:
				if hedgeBar != nil {
					e.closeHedge(simulator, port, *hedgeBar, signal.Reason, volatility[i], e.params.Commission)
				}
			}
		}

		hedgePrice := 0.0
		if hedgeBar != nil {
			hedgePrice = hedgeBar.Close
		}
		port.UpdatePrices(bar.Close, hedgePrice)

		equityCurve = append(equityCurve, market.EquityPoint{
			Timestamp: bar.Timestamp,
			Equity:    port.Equity(),
		})
	}

	// Close whatever is still open at the terminal bar.
	lastBar := bars[len(bars)-1]
	if port.HasPosition() {
		port.ClosePosition(lastBar.Close, lastBar.Timestamp, "end of backtest", 0)
	}
	if port.HasHedgePosition() && len(hedgeBars) > 0 {
		lastHedge := hedgeBars[len(hedgeBars)-1]
		port.CloseHedgePosition(lastHedge.Close, lastHedge.Timestamp, "end of backtest", 0)
	}

	trades := port.Trades()
	perf := metrics.Calculate(equityCurve, trades, e.params.InitialCapital)
	drawdownCurve := metrics.DrawdownCurve(equityCurve)

	result := &Result{
		Metrics:         perf,
		EquityCurve:     equityCurve,
		DrawdownCurve:   drawdownCurve,
		Trades:          trades,
		StartDate:       bars[0].Timestamp,
		EndDate:         lastBar.Timestamp,
		InitialCapital:  e.params.InitialCapital,
		FinalEquity:     port.Equity(),
		ExecutionTimeMS: time.Since(startTime).Milliseconds(),
	}

	log.Info().
		Int("trades", len(trades)).
		Float64("finalEquity", result.FinalEquity).
		Float64("returnPct", perf.TotalReturnPct).
		Int64("executionMs", result.ExecutionTimeMS).
		Msg("Backtest completed")

	return result
}

// drainPendingOrders executes queued entry orders whose latency has
// elapsed. Fills below one share are discarded.
func (e *Engine) drainPendingOrders(simulator *execution.Simulator, port *portfolio.Portfolio, bar market.Bar, hedgeBar *market.Bar, barIndex int, volatility float64) {
	for _, order := range simulator.ExecutableOrders(barIndex) {
		execBar := bar
		side := market.PositionLong
		stopLossPct := e.params.StopLossPct

		if order.Side == market.SideHedgeBuy {
			if hedgeBar == nil {
				log.Debug().Str("orderID", order.ID).Msg("Dropping pending hedge order: no hedge bar")
				continue
			}
			execBar = *hedgeBar
			side = market.PositionHedge
			stopLossPct = e.params.ShortStopLossPct
		}

		result := simulator.Simulate(execBar, order.Side, order.Quantity, volatility)
		if !result.Executed || result.FillQuantity < 1 {
			continue
		}

		stopLossPrice := 0.0
		if stopLossPct > 0 {
			stopLossPrice = result.FillPrice * (1 - stopLossPct)
		}

		if err := port.OpenPosition(order.Symbol, result.FillQuantity, result.FillPrice, side, execBar.Timestamp, stopLossPrice, e.params.Commission); err != nil {
			var insufficient *market.InsufficientCashError
			if !errors.As(err, &insufficient) {
				log.Debug().Err(err).Str("orderID", order.ID).Msg("Pending order not opened")
			}
		}
	}
}

// executeBuy sizes and executes a long entry, queueing it instead when
// latency is configured.
func (e *Engine) executeBuy(simulator *execution.Simulator, port *portfolio.Portfolio, bar market.Bar, barIndex int, volatility float64) {
	quantity := port.CalculatePositionSize(bar.Close, e.params.PositionSizePct, e.params.CashReservePct)
	if quantity < 1 {
		return
	}

	if simulator.HasLatency() {
		simulator.QueueOrder(e.params.Symbol, market.SideBuy, quantity, barIndex)
		return
	}

	result := simulator.Simulate(bar, market.SideBuy, quantity, volatility)
	if !result.Executed || result.FillQuantity < 1 {
		return
	}

	entryPrice := result.FillPrice
	if !simulator.Enabled() {
		// Legacy flat-slippage path; inert under realistic execution.
		entryPrice = bar.Close * (1 + e.params.SlippagePct)
	}

	stopLossPrice := 0.0
	if e.params.StopLossPct > 0 {
		stopLossPrice = entryPrice * (1 - e.params.StopLossPct)
	}

	if err := port.OpenPosition(e.params.Symbol, result.FillQuantity, entryPrice, market.PositionLong, bar.Timestamp, stopLossPrice, e.params.Commission); err != nil {
		var insufficient *market.InsufficientCashError
		if errors.As(err, &insufficient) {
			log.Debug().
				Float64("required", insufficient.Required).
				Float64("available", insufficient.Available).
				Msg("Buy skipped: insufficient cash")
		}
	}
}

// executeHedgeBuy sizes and executes a hedge entry on the inverse
// instrument.
func (e *Engine) executeHedgeBuy(simulator *execution.Simulator, port *portfolio.Portfolio, hedgeBar market.Bar, barIndex int, volatility float64) {
	quantity := port.CalculatePositionSize(hedgeBar.Close, e.params.ShortPositionSizePct, e.params.CashReservePct)
	if quantity < 1 {
		return
	}

	if simulator.HasLatency() {
		simulator.QueueOrder(e.params.InverseSymbol, market.SideHedgeBuy, quantity, barIndex)
		return
	}

	result := simulator.Simulate(hedgeBar, market.SideHedgeBuy, quantity, volatility)
	if !result.Executed || result.FillQuantity < 1 {
		return
	}

	entryPrice := result.FillPrice
	if !simulator.Enabled() {
		entryPrice = hedgeBar.Close * (1 + e.params.SlippagePct)
	}

	stopLossPrice := 0.0
	if e.params.ShortStopLossPct > 0 {
		stopLossPrice = entryPrice * (1 - e.params.ShortStopLossPct)
	}

	if err := port.OpenPosition(e.params.InverseSymbol, result.FillQuantity, entryPrice, market.PositionHedge, hedgeBar.Timestamp, stopLossPrice, e.params.Commission); err != nil {
		var insufficient *market.InsufficientCashError
		if errors.As(err, &insufficient) {
			log.Debug().
				Float64("required", insufficient.Required).
				Float64("available", insufficient.Available).
				Msg("Hedge buy skipped: insufficient cash")
		}
	}
}

// closePrimary exits the primary position in-bar. Exits are never
// queued: the simulator's price is used when it fills, the bar close
// otherwise.
func (e *Engine) closePrimary(simulator *execution.Simulator, port *portfolio.Portfolio, bar market.Bar, reason string, volatility, commission float64) {
	position := port.Position()
	if position == nil {
		return
	}

	exitPrice := bar.Close
	if result := simulator.Simulate(bar, market.SideSell, position.Quantity, volatility); result.Executed {
		exitPrice = result.FillPrice
	}

	port.ClosePosition(exitPrice, bar.Timestamp, reason, commission)
}

// closeHedge exits the hedge position in-bar against the hedge bar.
func (e *Engine) closeHedge(simulator *execution.Simulator, port *portfolio.Portfolio, hedgeBar market.Bar, reason string, volatility, commission float64) {
	position := port.HedgePosition()
	if position == nil {
		return
	}

	exitPrice := hedgeBar.Close
	if result := simulator.Simulate(hedgeBar, market.SideHedgeSell, position.Quantity, volatility); result.Executed {
		exitPrice = result.FillPrice
	}

	port.CloseHedgePosition(exitPrice, hedgeBar.Timestamp, reason, commission)
}

// emptyResult is returned when the series is shorter than the warm-up
// window.
func (e *Engine) emptyResult(bars []market.Bar) *Result {
	result := &Result{
		InitialCapital: e.params.InitialCapital,
		FinalEquity:    e.params.InitialCapital,
	}
	if len(bars) > 0 {
		result.StartDate = bars[0].Timestamp
		result.EndDate = bars[len(bars)-1].Timestamp
	}
	return result
}
