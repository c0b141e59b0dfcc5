package market

import "time"

// Bar represents a single OHLCV bar with an optional volume-weighted
// average price. Producers guarantee low <= open,close <= high.
type Bar struct {
	Timestamp time.Time `json:"timestamp"`
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"`
	Volume    uint64    `json:"volume"`
	VWAP      *float64  `json:"vwap,omitempty"`
}

// NewBar creates a bar without a VWAP value.
func NewBar(timestamp time.Time, open, high, low, close float64, volume uint64) Bar {
	return Bar{
		Timestamp: timestamp,
		Open:      open,
		High:      high,
		Low:       low,
		Close:     close,
		Volume:    volume,
	}
}

// EquityPoint is one sample of the portfolio equity curve.
type EquityPoint struct {
	Timestamp time.Time `json:"timestamp"`
	Equity    float64   `json:"equity"`
}

// DrawdownPoint is one sample of the drawdown curve, in percent off the
// running equity peak.
type DrawdownPoint struct {
	Timestamp time.Time `json:"timestamp"`
	Drawdown  float64   `json:"drawdown"`
}
