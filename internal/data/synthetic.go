package data

import (
	"math/rand"
	"time"

	"github.com/tqqq-trading/internal/market"
)

// GenerateSyntheticBars produces a leveraged-ETF-like daily series for
// testing and demos: ~3% daily volatility, a slight upward drift,
// volume scaled up on volatile days, and VWAP as the OHLC average. The
// same seed always yields the same series.
func GenerateSyntheticBars(days int, initialPrice float64, seed int64) []market.Bar {
	rng := rand.New(rand.NewSource(seed))
	bars := make([]market.Bar, 0, days)

	price := initialPrice
	startDate := time.Date(2024, 1, 2, 21, 0, 0, 0, time.UTC).AddDate(0, 0, -days)

	const (
		dailyVolatility = 0.03
		drift           = 0.0001
	)

	for i := 0; i < days; i++ {
		date := startDate.AddDate(0, 0, i)

		dailyReturn := drift + dailyVolatility*(rng.Float64()*2-1)
		newPrice := price * (1 + dailyReturn)

		intradayRange := price * (0.01 + rng.Float64()*0.03)
		open := price + (rng.Float64()-0.5)*intradayRange
		closePrice := newPrice

		high := open
		if closePrice > high {
			high = closePrice
		}
		high += rng.Float64() * intradayRange / 2

		low := open
		if closePrice < low {
			low = closePrice
		}
		low -= rng.Float64() * intradayRange / 2

		baseVolume := 50_000_000.0
		volumeMultiplier := 1 + abs(dailyReturn)*10
		volume := uint64(baseVolume * volumeMultiplier * (0.8 + rng.Float64()*0.4))

		vwap := (open + high + low + closePrice) / 4

		bars = append(bars, market.Bar{
			Timestamp: date,
			Open:      open,
			High:      high,
			Low:       low,
			Close:     closePrice,
			Volume:    volume,
			VWAP:      &vwap,
		})

		price = newPrice
	}

	return bars
}

// GenerateInverseBars derives an inverse-instrument series from a
// primary series: starting from initialPrice, each bar applies the
// negated daily return of the primary, with the primary's volume. Used to synthesize a
// hedge leg when only the primary series is available.
func GenerateInverseBars(bars []market.Bar, initialPrice float64) []market.Bar {
	inverse := make([]market.Bar, 0, len(bars))

	price := initialPrice
	for i, bar := range bars {
		ret := 0.0
		if i > 0 && bars[i-1].Close != 0 {
			ret = bar.Close/bars[i-1].Close - 1
		}

		closePrice := price * (1 - ret)
		open := price
		high := open
		if closePrice > high {
			high = closePrice
		}
		low := open
		if closePrice < low {
			low = closePrice
		}
		vwap := (open + high + low + closePrice) / 4

		inverse = append(inverse, market.Bar{
			Timestamp: bar.Timestamp,
			Open:      open,
			High:      high,
			Low:       low,
			Close:     closePrice,
			Volume:    bar.Volume,
			VWAP:      &vwap,
		})

		price = closePrice
	}

	return inverse
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
