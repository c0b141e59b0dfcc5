package portfolio

import (
	"math"
	"time"

	"github.com/tqqq-trading/internal/market"
)

// Portfolio tracks cash, the primary position, the hedge position and
// the append-only trade log. At most one long/short position and one
// hedge position exist at a time, and equity always equals cash plus
// marked position value.
type Portfolio struct {
	initialCapital float64
	cash           float64
	position       *market.Position
	hedgePosition  *market.Position
	realizedPnL    float64
	trades         []market.Trade
}

// New creates a portfolio with the given starting capital.
func New(initialCapital float64) *Portfolio {
	return &Portfolio{
		initialCapital: initialCapital,
		cash:           initialCapital,
	}
}

// Equity returns cash plus the marked value of all open positions.
func (p *Portfolio) Equity() float64 {
	return p.cash + p.PositionValue() + p.HedgePositionValue()
}

// PositionValue returns the primary position's market value.
func (p *Portfolio) PositionValue() float64 {
	if p.position == nil {
		return 0
	}
	return p.position.MarketValue()
}

// HedgePositionValue returns the hedge position's market value.
func (p *Portfolio) HedgePositionValue() float64 {
	if p.hedgePosition == nil {
		return 0
	}
	return p.hedgePosition.MarketValue()
}

// Cash returns available cash.
func (p *Portfolio) Cash() float64 {
	return p.cash
}

// HasPosition reports whether a primary position is open.
func (p *Portfolio) HasPosition() bool {
	return p.position != nil
}

// HasHedgePosition reports whether a hedge position is open.
func (p *Portfolio) HasHedgePosition() bool {
	return p.hedgePosition != nil
}

// Position returns the open primary position, or nil.
func (p *Portfolio) Position() *market.Position {
	return p.position
}

// HedgePosition returns the open hedge position, or nil.
func (p *Portfolio) HedgePosition() *market.Position {
	return p.hedgePosition
}

// Trades returns the closed-trade log.
func (p *Portfolio) Trades() []market.Trade {
	return p.trades
}

// RealizedPnL returns cumulative realized profit.
func (p *Portfolio) RealizedPnL() float64 {
	return p.realizedPnL
}

// UpdatePrices marks open positions to market. The hedge price is
// applied only when positive (no hedge bar available otherwise).
func (p *Portfolio) UpdatePrices(mainPrice, hedgePrice float64) {
	if p.position != nil {
		p.position.CurrentPrice = mainPrice
	}
	if p.hedgePosition != nil && hedgePrice > 0 {
		p.hedgePosition.CurrentPrice = hedgePrice
	}
}

// OpenPosition opens a position in the appropriate slot. A stop loss of
// zero leaves the stop unarmed. Fails with InsufficientCashError when
// the cost exceeds cash, and PositionAlreadyExistsError when the slot
// is occupied.
func (p *Portfolio) OpenPosition(symbol string, quantity, price float64, side market.PositionSide, timestamp time.Time, stopLossPrice, commission float64) error {
	cost := quantity*price + commission
	if cost > p.cash {
		return &market.InsufficientCashError{Required: cost, Available: p.cash}
	}

	position := &market.Position{
		Symbol:        symbol,
		Quantity:      quantity,
		AvgEntryPrice: price,
		EntryDate:     timestamp,
		CurrentPrice:  price,
		Side:          side,
		StopLossPrice: stopLossPrice,
	}

	if side == market.PositionHedge {
		if p.hedgePosition != nil {
			return &market.PositionAlreadyExistsError{Symbol: p.hedgePosition.Symbol}
		}
		p.cash -= cost
		p.hedgePosition = position
		return nil
	}

	if p.position != nil {
		return &market.PositionAlreadyExistsError{Symbol: p.position.Symbol}
	}
	p.cash -= cost
	p.position = position
	return nil
}

// ClosePosition closes the primary position, appending the completed
// trade to the log. Returns false when no position is open.
func (p *Portfolio) ClosePosition(price float64, timestamp time.Time, reason string, commission float64) (market.Trade, bool) {
	if p.position == nil {
		return market.Trade{}, false
	}
	position := p.position
	p.position = nil
	return p.closePosition(position, price, timestamp, reason, commission), true
}

// CloseHedgePosition closes the hedge position with the same
// accounting as ClosePosition.
func (p *Portfolio) CloseHedgePosition(price float64, timestamp time.Time, reason string, commission float64) (market.Trade, bool) {
	if p.hedgePosition == nil {
		return market.Trade{}, false
	}
	position := p.hedgePosition
	p.hedgePosition = nil
	return p.closePosition(position, price, timestamp, reason, commission), true
}

func (p *Portfolio) closePosition(position *market.Position, price float64, timestamp time.Time, reason string, commission float64) market.Trade {
	proceeds := position.Quantity*price - commission
	costBasis := position.Quantity * position.AvgEntryPrice

	var pnl float64
	if position.Side == market.PositionShort {
		pnl = costBasis - proceeds
	} else {
		pnl = proceeds - costBasis
	}

	p.cash += proceeds
	p.realizedPnL += pnl

	var exitSide market.Side
	switch position.Side {
	case market.PositionShort:
		exitSide = market.SideCover
	case market.PositionHedge:
		exitSide = market.SideHedgeSell
	default:
		exitSide = market.SideSell
	}

	pnlPct := 0.0
	if costBasis > 0 {
		pnlPct = pnl / costBasis * 100
	}

	holdingDays := int64(timestamp.Sub(position.EntryDate).Hours() / 24)

	trade := market.Trade{
		EntryDate:   position.EntryDate,
		EntryPrice:  position.AvgEntryPrice,
		ExitDate:    timestamp,
		ExitPrice:   price,
		Quantity:    position.Quantity,
		Side:        exitSide,
		PnL:         pnl,
		PnLPct:      pnlPct,
		HoldingDays: holdingDays,
		ExitReason:  reason,
	}

	p.trades = append(p.trades, trade)
	return trade
}

// CheckStopLoss reports whether the primary position's stop is hit at
// the current price. Hedge positions never trigger this predicate.
func (p *Portfolio) CheckStopLoss(currentPrice float64) bool {
	if p.position == nil || p.position.StopLossPrice <= 0 {
		return false
	}
	switch p.position.Side {
	case market.PositionLong:
		return currentPrice <= p.position.StopLossPrice
	case market.PositionShort:
		return currentPrice >= p.position.StopLossPrice
	default:
		return false
	}
}

// CalculatePositionSize returns the whole number of shares purchasable
// with the configured cash reserve and sizing fraction.
func (p *Portfolio) CalculatePositionSize(price, positionSizePct, cashReservePct float64) float64 {
	available := p.cash * (1 - cashReservePct)
	targetValue := available * positionSizePct
	return math.Floor(targetValue / price)
}
