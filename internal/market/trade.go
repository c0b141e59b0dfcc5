package market

import "time"

// Trade is a completed round trip. Records are immutable once appended
// to the portfolio's trade log.
type Trade struct {
	EntryDate   time.Time `json:"entry_date"`
	EntryPrice  float64   `json:"entry_price"`
	ExitDate    time.Time `json:"exit_date"`
	ExitPrice   float64   `json:"exit_price"`
	Quantity    float64   `json:"quantity"`
	Side        Side      `json:"side"`
	PnL         float64   `json:"pnl"`
	PnLPct      float64   `json:"pnl_pct"`
	HoldingDays int64     `json:"holding_days"`
	EntryReason string    `json:"entry_reason"`
	ExitReason  string    `json:"exit_reason"`
}
