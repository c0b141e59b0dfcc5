package indicators

import "math"

// TradingDaysPerYear is the annualization base for daily bars.
const TradingDaysPerYear = 252

// RollingVolatility calculates the annualized standard deviation of
// log-returns over a trailing window. The result has the same length as
// the input closes.
//
// Index convention: the slot at bar i holds the deviation of the
// 'period' returns ending with ln(close[i]/close[i-1]); everything
// before bar 'period' carries zero. Callers treat a zero slot as
// "no volatility estimate".
func RollingVolatility(closes []float64, period int) []float64 {
	n := len(closes)
	vol := make([]float64, n)
	if n < 2 || period <= 0 {
		return vol
	}

	returns := make([]float64, n-1)
	for i := 1; i < n; i++ {
		if closes[i-1] > 0 && closes[i] > 0 {
			returns[i-1] = math.Log(closes[i] / closes[i-1])
		}
	}

	annualize := math.Sqrt(TradingDaysPerYear)
	for k := period - 1; k < len(returns); k++ {
		window := returns[k+1-period : k+1]
		vol[k+1] = StdDev(window) * annualize
	}

	return vol
}
