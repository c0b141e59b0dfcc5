package signals

import (
	"fmt"

	"github.com/tqqq-trading/internal/config"
	"github.com/tqqq-trading/internal/indicators"
	"github.com/tqqq-trading/internal/market"
)

// Generator produces trading signals for the RSI(2) mean-reversion
// strategy. It is a pure function of the bar, the indicator snapshot
// and the current position state; precedence is exit, hedge exit,
// hedge entry, entry.
type Generator struct {
	params *config.Parameters
}

// NewGenerator creates a signal generator for the given parameters.
func NewGenerator(params *config.Parameters) *Generator {
	return &Generator{params: params}
}

// Generate returns the signal for the current bar, or nil to hold.
func (g *Generator) Generate(bar market.Bar, ind indicators.Values, hasPosition bool, position *market.Position, hasHedge bool) *market.Signal {
	if hasPosition {
		if sig := g.checkExitSignal(bar, ind, position); sig != nil {
			return sig
		}
	}

	if g.params.ShortEnabled {
		if hasHedge {
			if sig := g.checkHedgeExitSignal(bar, ind); sig != nil {
				return sig
			}
		} else if !hasPosition {
			if sig := g.checkHedgeEntrySignal(bar, ind); sig != nil {
				return sig
			}
		}
	}

	if !hasPosition {
		if sig := g.checkEntrySignal(bar, ind); sig != nil {
			return sig
		}
	}

	return nil
}

// checkEntrySignal checks the long entry conditions.
func (g *Generator) checkEntrySignal(bar market.Bar, ind indicators.Values) *market.Signal {
	if ind.RSI > g.params.RSIOversold {
		return nil
	}

	// VWAP filter: entry wants price below VWAP.
	if g.params.VWAPFilterEnabled && g.params.VWAPEntryBelow {
		if vwap := firstVWAP(ind.VWAP, bar.VWAP); vwap != nil && bar.Close >= *vwap {
			return nil
		}
	}

	// SMA trend filter: price should be above the SMA.
	if ind.HasSMA && bar.Close < ind.SMA {
		return nil
	}

	// Bollinger filter: entry wants price at or below the lower band.
	if g.params.BBFilterEnabled && ind.BBLower > 0 && bar.Close > ind.BBLower {
		return nil
	}

	strength := 1 - ind.RSI/g.params.RSIOversold

	return &market.Signal{
		Timestamp: bar.Timestamp,
		Type:      market.SignalBuy,
		Symbol:    g.params.Symbol,
		Price:     bar.Close,
		RSI:       ind.RSI,
		Reason:    fmt.Sprintf("RSI(%.1f) <= %.0f, price below VWAP", ind.RSI, g.params.RSIOversold),
		Strength:  strength,
		VWAP:      firstVWAP(ind.VWAP, bar.VWAP),
		SMA:       ind.SMA,
	}
}

// checkExitSignal checks the long exit conditions.
func (g *Generator) checkExitSignal(bar market.Bar, ind indicators.Values, position *market.Position) *market.Signal {
	// RSI overbought: take profit.
	if ind.RSI >= g.params.RSIOverbought {
		return &market.Signal{
			Timestamp: bar.Timestamp,
			Type:      market.SignalSell,
			Symbol:    g.params.Symbol,
			Price:     bar.Close,
			RSI:       ind.RSI,
			Reason:    fmt.Sprintf("RSI(%.1f) >= %.0f - take profit", ind.RSI, g.params.RSIOverbought),
			Strength:  (ind.RSI - g.params.RSIOverbought) / (100 - g.params.RSIOverbought),
			VWAP:      firstVWAP(ind.VWAP, bar.VWAP),
			SMA:       ind.SMA,
		}
	}

	// Stop loss.
	if position != nil && position.StopLossPrice > 0 && bar.Close <= position.StopLossPrice {
		return &market.Signal{
			Timestamp: bar.Timestamp,
			Type:      market.SignalSell,
			Symbol:    g.params.Symbol,
			Price:     bar.Close,
			RSI:       ind.RSI,
			Reason:    fmt.Sprintf("stop loss triggered at %.2f (entry: %.2f)", bar.Close, position.AvgEntryPrice),
			Strength:  1,
			VWAP:      firstVWAP(ind.VWAP, bar.VWAP),
			SMA:       ind.SMA,
		}
	}

	return nil
}

// checkHedgeEntrySignal fires when RSI is extremely overbought.
func (g *Generator) checkHedgeEntrySignal(bar market.Bar, ind indicators.Values) *market.Signal {
	if ind.RSI < g.params.RSIOverboughtShort {
		return nil
	}

	strength := (ind.RSI - g.params.RSIOverboughtShort) / (100 - g.params.RSIOverboughtShort)

	return &market.Signal{
		Timestamp: bar.Timestamp,
		Type:      market.SignalHedgeBuy,
		Symbol:    g.params.InverseSymbol,
		Price:     bar.Close,
		RSI:       ind.RSI,
		Reason:    fmt.Sprintf("RSI(%.1f) >= %.0f - hedge with %s", ind.RSI, g.params.RSIOverboughtShort, g.params.InverseSymbol),
		Strength:  strength,
		VWAP:      firstVWAP(ind.VWAP, bar.VWAP),
		SMA:       ind.SMA,
	}
}

// checkHedgeExitSignal fires when RSI has cooled back down.
func (g *Generator) checkHedgeExitSignal(bar market.Bar, ind indicators.Values) *market.Signal {
	if ind.RSI > g.params.RSIOversoldShort {
		return nil
	}

	return &market.Signal{
		Timestamp: bar.Timestamp,
		Type:      market.SignalHedgeSell,
		Symbol:    g.params.InverseSymbol,
		Price:     bar.Close,
		RSI:       ind.RSI,
		Reason:    fmt.Sprintf("RSI(%.1f) <= %.0f - close hedge", ind.RSI, g.params.RSIOversoldShort),
		Strength:  1 - ind.RSI/g.params.RSIOversoldShort,
		VWAP:      firstVWAP(ind.VWAP, bar.VWAP),
		SMA:       ind.SMA,
	}
}

// firstVWAP returns the indicator VWAP when set, falling back to the
// bar's own VWAP.
func firstVWAP(indicator, bar *float64) *float64 {
	if indicator != nil {
		return indicator
	}
	return bar
}
