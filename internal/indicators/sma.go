package indicators

// CalculateSMA calculates the simple moving average with an incremental
// sliding-window sum. The result has the same length as the input;
// slots before index period-1 carry zero and are not meaningful (use
// Series.At to read the value together with its validity).
func CalculateSMA(prices []float64, period int) []float64 {
	n := len(prices)
	sma := make([]float64, n)
	if n < period || period <= 0 {
		return sma
	}

	sum := Sum(prices[:period])
	sma[period-1] = sum / float64(period)

	for i := period; i < n; i++ {
		sum = sum - prices[i-period] + prices[i]
		sma[i] = sum / float64(period)
	}

	return sma
}
