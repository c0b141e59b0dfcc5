package market

import "time"

// Position is an open holding in a single symbol. A stop loss of zero
// means no stop is armed.
type Position struct {
	Symbol        string       `json:"symbol"`
	Quantity      float64      `json:"quantity"`
	AvgEntryPrice float64      `json:"avg_entry_price"`
	EntryDate     time.Time    `json:"entry_date"`
	CurrentPrice  float64      `json:"current_price"`
	Side          PositionSide `json:"side"`
	StopLossPrice float64      `json:"stop_loss_price,omitempty"`
}

// MarketValue returns the position value at the current mark price.
func (p *Position) MarketValue() float64 {
	return p.Quantity * p.CurrentPrice
}

// UnrealizedPnL returns the open profit at the current mark price.
func (p *Position) UnrealizedPnL() float64 {
	diff := p.CurrentPrice - p.AvgEntryPrice
	if p.Side == PositionShort {
		return -diff * p.Quantity
	}
	return diff * p.Quantity
}

// UnrealizedPnLPct returns the open profit as a percentage of cost basis.
func (p *Position) UnrealizedPnLPct() float64 {
	cost := p.AvgEntryPrice * p.Quantity
	if cost == 0 {
		return 0
	}
	return p.UnrealizedPnL() / cost * 100
}
