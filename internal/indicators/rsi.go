package indicators

// CalculateRSI calculates the Relative Strength Index using Wilder's
// smoothing. The result has the same length as the input; warm-up
// slots (everything before index period) carry the neutral value 50.
func CalculateRSI(prices []float64, period int) []float64 {
	n := len(prices)
	rsi := make([]float64, n)
	for i := range rsi {
		rsi[i] = 50
	}
	if n < period+1 || period <= 0 {
		return rsi
	}

	alpha := 1.0 / float64(period)

	// Initial averages over the first 'period' deltas.
	var avgGain, avgLoss float64
	for i := 1; i <= period; i++ {
		delta := prices[i] - prices[i-1]
		if delta > 0 {
			avgGain += delta
		} else {
			avgLoss += -delta
		}
	}
	avgGain /= float64(period)
	avgLoss /= float64(period)

	if avgLoss == 0 {
		rsi[period] = 100
	} else {
		rs := avgGain / avgLoss
		rsi[period] = 100 - (100 / (1 + rs))
	}

	// Wilder's smoothing for subsequent values.
	for i := period + 1; i < n; i++ {
		delta := prices[i] - prices[i-1]
		var gain, loss float64
		if delta > 0 {
			gain = delta
		} else {
			loss = -delta
		}

		avgGain = avgGain*(1-alpha) + gain*alpha
		avgLoss = avgLoss*(1-alpha) + loss*alpha

		if avgLoss == 0 {
			rsi[i] = 100
		} else {
			rs := avgGain / avgLoss
			rsi[i] = 100 - (100 / (1 + rs))
		}
	}

	return rsi
}
