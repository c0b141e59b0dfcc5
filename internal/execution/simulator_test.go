package execution

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tqqq-trading/internal/config"
	"github.com/tqqq-trading/internal/market"
)

func sampleBar(close float64, volume uint64) market.Bar {
	vwap := close + 0.1
	return market.Bar{
		Timestamp: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
		Open:      close - 0.5,
		High:      close + 1,
		Low:       close - 1,
		Close:     close,
		Volume:    volume,
		VWAP:      &vwap,
	}
}

func TestDisabledSimulatorFillsAtClose(t *testing.T) {
	t.Parallel()
	sim := NewSimulator(config.DefaultExecutionConfig())

	bar := sampleBar(100, 1_000_000)
	result := sim.Simulate(bar, market.SideBuy, 100, 0)

	assert.True(t, result.Executed)
	assert.Equal(t, 100.0, result.FillPrice)
	assert.Equal(t, 100.0, result.FillQuantity)
	assert.Empty(t, result.Notes)
	assert.False(t, sim.HasLatency())
}

func TestDisabledSimulatorIgnoresLatencyBars(t *testing.T) {
	t.Parallel()
	cfg := config.DefaultExecutionConfig()
	cfg.LatencyBars = 3
	sim := NewSimulator(cfg)
	assert.False(t, sim.HasLatency())
}

func TestEnabledSimulatorKeepsFillWithinBarRange(t *testing.T) {
	t.Parallel()
	cfg := config.RealisticExecution()
	cfg.Seed = 42
	sim := NewSimulator(cfg)

	bar := sampleBar(100, 1_000_000)
	for i := 0; i < 50; i++ {
		result := sim.Simulate(bar, market.SideBuy, 100, 0)
		require.True(t, result.Executed)
		assert.GreaterOrEqual(t, result.FillPrice, bar.Low)
		assert.LessOrEqual(t, result.FillPrice, bar.High)
	}
}

func TestVolumeConstraintPartialFill(t *testing.T) {
	t.Parallel()
	cfg := config.RealisticExecution()
	cfg.VolumeParticipationMaxPct = 0.01
	cfg.PartialFillEnabled = true
	cfg.Seed = 1
	sim := NewSimulator(cfg)

	// 2000 shares is 2% of a 100k-share bar at $100.
	bar := sampleBar(100, 100_000)
	result := sim.Simulate(bar, market.SideBuy, 2000, 0)

	require.True(t, result.Executed)
	assert.Equal(t, 10.0, result.FillQuantity)
	assert.Equal(t, 2000.0, result.RequestedQuantity)
	require.NotEmpty(t, result.Notes)
	assert.Contains(t, result.Notes[0], "Partial fill")
}

func TestVolumeConstraintRejectsWithoutPartialFill(t *testing.T) {
	t.Parallel()
	cfg := config.RealisticExecution()
	cfg.VolumeParticipationMaxPct = 0.01
	cfg.PartialFillEnabled = false
	cfg.Seed = 1
	sim := NewSimulator(cfg)

	bar := sampleBar(100, 100_000)
	result := sim.Simulate(bar, market.SideBuy, 2000, 0)

	assert.False(t, result.Executed)
	assert.Zero(t, result.FillQuantity)
	require.NotEmpty(t, result.Notes)
	assert.Contains(t, result.Notes[0], "exceeds volume participation limit")
}

func TestSlippageDirection(t *testing.T) {
	t.Parallel()
	cfg := config.RealisticExecution()
	cfg.SlippageAdverseProbability = 1.0
	cfg.SpreadEnabled = false
	cfg.MarketImpactEnabled = false
	cfg.Seed = 3
	sim := NewSimulator(cfg)

	bar := sampleBar(100, 1_000_000)

	for i := 0; i < 20; i++ {
		buy := sim.Simulate(bar, market.SideBuy, 100, 0)
		require.True(t, buy.Executed)
		assert.GreaterOrEqual(t, buy.Adjustments.Slippage, 0.0)

		sell := sim.Simulate(bar, market.SideSell, 100, 0)
		require.True(t, sell.Executed)
		assert.LessOrEqual(t, sell.Adjustments.Slippage, 0.0)
	}
}

func TestRejection(t *testing.T) {
	t.Parallel()
	cfg := config.RealisticExecution()
	cfg.RejectionEnabled = true
	cfg.RejectionBaseProbability = 1.0
	cfg.Seed = 3
	sim := NewSimulator(cfg)

	result := sim.Simulate(sampleBar(100, 1_000_000), market.SideBuy, 100, 0)

	assert.False(t, result.Executed)
	assert.Zero(t, result.FillQuantity)
	require.NotEmpty(t, result.Notes)
	assert.Equal(t, "Order rejected due to market conditions", result.Notes[0])
}

func TestLatencyQueue(t *testing.T) {
	t.Parallel()
	cfg := config.RealisticExecution()
	cfg.LatencyBars = 1
	sim := NewSimulator(cfg)
	assert.True(t, sim.HasLatency())

	sim.QueueOrder("TQQQ", market.SideBuy, 100, 0)
	assert.Equal(t, 1, sim.PendingCount())

	// Not eligible on the signal bar.
	assert.Empty(t, sim.ExecutableOrders(0))
	assert.Equal(t, 1, sim.PendingCount())

	// Eligible one bar later.
	ready := sim.ExecutableOrders(1)
	require.Len(t, ready, 1)
	assert.Equal(t, "TQQQ", ready[0].Symbol)
	assert.Equal(t, market.SideBuy, ready[0].Side)
	assert.Equal(t, 0, ready[0].SignalBarIndex)
	assert.Equal(t, 1, ready[0].ExecuteAtBarIndex)
	assert.NotEmpty(t, ready[0].ID)
	assert.Zero(t, sim.PendingCount())
}

func TestClearPending(t *testing.T) {
	t.Parallel()
	cfg := config.RealisticExecution()
	cfg.LatencyBars = 2
	sim := NewSimulator(cfg)

	sim.QueueOrder("TQQQ", market.SideBuy, 100, 0)
	sim.QueueOrder("SQQQ", market.SideHedgeBuy, 50, 0)
	assert.Equal(t, 2, sim.PendingCount())

	sim.ClearPending()
	assert.Zero(t, sim.PendingCount())
}

func TestSimulatorDeterministicWithSeed(t *testing.T) {
	t.Parallel()
	cfg := config.RealisticExecution()
	cfg.Seed = 7

	bar := sampleBar(100, 1_000_000)

	first := NewSimulator(cfg)
	second := NewSimulator(cfg)

	for i := 0; i < 25; i++ {
		a := first.Simulate(bar, market.SideBuy, 100, 0.03)
		b := second.Simulate(bar, market.SideBuy, 100, 0.03)
		assert.Equal(t, a, b)
	}
}

func TestVolatilityWidensSpread(t *testing.T) {
	t.Parallel()
	cfg := config.RealisticExecution()
	// Isolate the spread component.
	cfg.SlippageAdverseProbability = 0
	cfg.SlippageMinPct = 0
	cfg.MarketImpactEnabled = false
	cfg.Seed = 11
	sim := NewSimulator(cfg)

	bar := sampleBar(100, 1_000_000)

	calm := sim.Simulate(bar, market.SideBuy, 100, 0.01)
	wild := sim.Simulate(bar, market.SideBuy, 100, 0.50)

	require.True(t, calm.Executed)
	require.True(t, wild.Executed)
	assert.Greater(t, wild.Adjustments.Spread, calm.Adjustments.Spread)
}
