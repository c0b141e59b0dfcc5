package indicators

// CalculateEMA calculates the exponential moving average seeded with
// the first price.
func CalculateEMA(prices []float64, period int) []float64 {
	n := len(prices)
	if n == 0 || period <= 0 {
		return nil
	}

	ema := make([]float64, n)
	multiplier := 2.0 / (float64(period) + 1)

	ema[0] = prices[0]
	for i := 1; i < n; i++ {
		ema[i] = (prices[i]-ema[i-1])*multiplier + ema[i-1]
	}

	return ema
}

// CalculateEMAWithSMASeed calculates the EMA seeded with the SMA of the
// first 'period' prices, which gives more accurate early values. Slots
// before index period-1 carry zero.
func CalculateEMAWithSMASeed(prices []float64, period int) []float64 {
	n := len(prices)
	ema := make([]float64, n)
	if n < period || period <= 0 {
		return ema
	}

	multiplier := 2.0 / (float64(period) + 1)
	ema[period-1] = Mean(prices[:period])

	for i := period; i < n; i++ {
		ema[i] = (prices[i]-ema[i-1])*multiplier + ema[i-1]
	}

	return ema
}
