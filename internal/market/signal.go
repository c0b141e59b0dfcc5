package market

import "time"

// Signal is a trading decision emitted by the signal generator.
// Strength is informational only, in [0, 1].
type Signal struct {
	Timestamp time.Time  `json:"timestamp"`
	Type      SignalType `json:"signal_type"`
	Symbol    string     `json:"symbol"`
	Price     float64    `json:"price"`
	RSI       float64    `json:"rsi"`
	Reason    string     `json:"reason"`
	Strength  float64    `json:"strength"`
	VWAP      *float64   `json:"vwap,omitempty"`
	SMA       float64    `json:"sma,omitempty"`
}
