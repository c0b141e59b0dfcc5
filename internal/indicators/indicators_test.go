package indicators

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateRSIBasic(t *testing.T) {
	t.Parallel()
	prices := []float64{44.0, 44.25, 44.5, 43.75, 44.5, 44.25, 44.0, 43.5, 44.25, 44.5}
	rsi := CalculateRSI(prices, 2)

	require.Len(t, rsi, len(prices))
	assert.Equal(t, 50.0, rsi[0])
	assert.Equal(t, 50.0, rsi[1])
	for _, v := range rsi {
		assert.GreaterOrEqual(t, v, 0.0)
		assert.LessOrEqual(t, v, 100.0)
	}
}

func TestCalculateRSIAllGains(t *testing.T) {
	t.Parallel()
	prices := []float64{10, 11, 12, 13, 14, 15}
	rsi := CalculateRSI(prices, 2)
	assert.Equal(t, 100.0, rsi[len(rsi)-1])
}

func TestCalculateRSIAllLosses(t *testing.T) {
	t.Parallel()
	prices := []float64{15, 14, 13, 12, 11, 10}
	rsi := CalculateRSI(prices, 2)
	assert.Equal(t, 0.0, rsi[len(rsi)-1])
}

func TestCalculateRSIShortSeries(t *testing.T) {
	t.Parallel()
	rsi := CalculateRSI([]float64{10, 11}, 2)
	require.Len(t, rsi, 2)
	assert.Equal(t, []float64{50, 50}, rsi)
}

func TestCalculateSMA(t *testing.T) {
	t.Parallel()
	prices := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	sma := CalculateSMA(prices, 3)

	require.Len(t, sma, len(prices))
	assert.Zero(t, sma[0])
	assert.Zero(t, sma[1])
	assert.Equal(t, 2.0, sma[2])
	assert.Equal(t, 3.0, sma[3])
	assert.Equal(t, 9.0, sma[9])
}

func TestCalculateSMAPeriodLargerThanData(t *testing.T) {
	t.Parallel()
	sma := CalculateSMA([]float64{1, 2, 3}, 5)
	require.Len(t, sma, 3)
	for _, v := range sma {
		assert.Zero(t, v)
	}
}

func TestCalculateEMASeededWithFirstPrice(t *testing.T) {
	t.Parallel()
	prices := []float64{10, 11, 12, 13, 14, 15}
	ema := CalculateEMA(prices, 3)

	require.Len(t, ema, len(prices))
	assert.Equal(t, 10.0, ema[0])
	for i := 1; i < len(ema); i++ {
		assert.Greater(t, ema[i], ema[i-1])
	}
}

func TestCalculateEMAWithSMASeed(t *testing.T) {
	t.Parallel()
	prices := []float64{1, 2, 3, 4, 5, 6, 7}
	ema := CalculateEMAWithSMASeed(prices, 3)

	require.Len(t, ema, len(prices))
	assert.Zero(t, ema[0])
	assert.Equal(t, 2.0, ema[2])
}

func TestCalculateEMAEmpty(t *testing.T) {
	t.Parallel()
	assert.Empty(t, CalculateEMA(nil, 3))
}

func TestTrueRange(t *testing.T) {
	t.Parallel()
	assert.Equal(t, 2.0, TrueRange(50, 48, 49))
	// Gap up: the close-to-close component dominates.
	assert.Equal(t, 4.0, TrueRange(52, 51, 48))
}

func TestCalculateATR(t *testing.T) {
	t.Parallel()
	highs := []float64{48.7, 48.72, 48.9, 48.87, 48.82, 49.05, 49.2, 49.35, 49.92, 50.19}
	lows := []float64{47.79, 48.14, 48.39, 48.37, 48.24, 48.64, 48.94, 48.86, 49.5, 49.87}
	closes := []float64{48.16, 48.61, 48.75, 48.63, 48.74, 49.03, 49.07, 49.32, 49.91, 50.13}

	atr := CalculateATR(highs, lows, closes, 5)
	require.Len(t, atr, len(highs))
	for i := 4; i < len(atr); i++ {
		assert.Greater(t, atr[i], 0.0)
	}
	for i := 0; i < 4; i++ {
		assert.Zero(t, atr[i])
	}
}

func TestCalculateATRFirstBarTrueRange(t *testing.T) {
	t.Parallel()
	highs := []float64{51, 52}
	lows := []float64{49, 50}
	closes := []float64{50, 51}

	// With period 1 the first bar's TR (high-low) lands directly in the
	// output.
	atr := CalculateATR(highs, lows, closes, 1)
	assert.Equal(t, 2.0, atr[0])
}

func TestCalculateBollingerBands(t *testing.T) {
	t.Parallel()
	prices := []float64{
		22.27, 22.19, 22.08, 22.17, 22.18, 22.13, 22.23, 22.43, 22.24, 22.29,
		22.15, 22.39, 22.38, 22.61, 23.36, 24.05, 23.75, 23.83, 23.95, 23.63,
	}
	bb := CalculateBollingerBands(prices, 20, 2.0)

	require.Len(t, bb.Middle, len(prices))
	assert.Greater(t, bb.Middle[19], 0.0)
	assert.Greater(t, bb.Upper[19], bb.Middle[19])
	assert.Less(t, bb.Lower[19], bb.Middle[19])
}

func TestBollingerBandsCollapseOnConstantPrices(t *testing.T) {
	t.Parallel()
	prices := []float64{100, 100, 100, 100, 100}
	bb := CalculateBollingerBands(prices, 3, 2.0)

	for i := 2; i < len(prices); i++ {
		assert.Equal(t, 100.0, bb.Middle[i])
		assert.Equal(t, bb.Middle[i], bb.Upper[i])
		assert.Equal(t, bb.Middle[i], bb.Lower[i])
	}
}

func TestPercentB(t *testing.T) {
	t.Parallel()
	assert.Equal(t, 0.0, PercentB(100, 100, 110))
	assert.Equal(t, 0.5, PercentB(105, 100, 110))
	assert.Equal(t, 1.0, PercentB(110, 100, 110))
	assert.Equal(t, 0.5, PercentB(105, 100, 100))
}

func TestRollingVolatilityAlignment(t *testing.T) {
	t.Parallel()
	closes := []float64{100, 110, 100, 110, 100, 110}
	vol := RollingVolatility(closes, 2)

	require.Len(t, vol, len(closes))
	// Slots before the window fills stay zero.
	assert.Zero(t, vol[0])
	assert.Zero(t, vol[1])

	// The first written slot covers the returns into bars 1 and 2.
	r := math.Log(1.1)
	expected := r * math.Sqrt(252)
	assert.InDelta(t, expected, vol[2], 1e-9)
}

func TestRollingVolatilityConstantPrices(t *testing.T) {
	t.Parallel()
	closes := []float64{50, 50, 50, 50, 50}
	vol := RollingVolatility(closes, 2)
	for _, v := range vol {
		assert.Zero(t, v)
	}
}

func TestSeriesAt(t *testing.T) {
	t.Parallel()
	closes := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	highs := make([]float64, len(closes))
	lows := make([]float64, len(closes))
	for i, c := range closes {
		highs[i] = c + 0.5
		lows[i] = c - 0.5
	}

	series := NewSeries(closes, highs, lows, Config{
		RSIPeriod: 2,
		SMAPeriod: 3,
		BBPeriod:  3,
		BBStdDev:  2.0,
		ATRPeriod: 3,
	})

	warm := series.At(1)
	assert.False(t, warm.HasSMA)
	assert.Equal(t, 50.0, warm.RSI)

	ready := series.At(5)
	assert.True(t, ready.HasSMA)
	assert.Equal(t, 5.0, ready.SMA)
	assert.Equal(t, 100.0, ready.RSI)

	outOfRange := series.At(99)
	assert.Equal(t, 50.0, outOfRange.RSI)
	assert.False(t, outOfRange.HasSMA)
}
