package market

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSideStrings(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "buy", SideBuy.String())
	assert.Equal(t, "sell", SideSell.String())
	assert.Equal(t, "hedge_buy", SideHedgeBuy.String())
	assert.Equal(t, "hedge_sell", SideHedgeSell.String())

	assert.True(t, SideBuy.IsBuy())
	assert.True(t, SideCover.IsBuy())
	assert.True(t, SideHedgeBuy.IsBuy())
	assert.False(t, SideSell.IsBuy())
	assert.False(t, SideShort.IsBuy())
	assert.False(t, SideHedgeSell.IsBuy())
}

func TestBarJSONOmitsNilVWAP(t *testing.T) {
	t.Parallel()

	bar := NewBar(time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), 49.5, 50.5, 49, 50, 1000)
	data, err := json.Marshal(bar)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "vwap")

	vwap := 49.9
	bar.VWAP = &vwap
	data, err = json.Marshal(bar)
	require.NoError(t, err)
	assert.Contains(t, string(data), "vwap")

	// Round trip.
	var decoded Bar
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.NotNil(t, decoded.VWAP)
	assert.Equal(t, 49.9, *decoded.VWAP)
	assert.Equal(t, bar.Close, decoded.Close)
}

func TestPositionUnrealizedPnL(t *testing.T) {
	t.Parallel()

	long := &Position{Quantity: 100, AvgEntryPrice: 50, CurrentPrice: 55, Side: PositionLong}
	assert.Equal(t, 500.0, long.UnrealizedPnL())
	assert.Equal(t, 10.0, long.UnrealizedPnLPct())

	short := &Position{Quantity: 100, AvgEntryPrice: 50, CurrentPrice: 55, Side: PositionShort}
	assert.Equal(t, -500.0, short.UnrealizedPnL())

	hedge := &Position{Quantity: 100, AvgEntryPrice: 50, CurrentPrice: 55, Side: PositionHedge}
	assert.Equal(t, 500.0, hedge.UnrealizedPnL())

	empty := &Position{Side: PositionLong}
	assert.Zero(t, empty.UnrealizedPnLPct())
}
