package indicators

// RSI computes the Wilder relative strength index.
//
// avg_loss == 0 yields an undefined ratio, so the row stays missing instead of
// dividing by zero. Missing rows are never back-filled from later values.
func RSI(values []float64, period int) []float64 {
	n := len(values)
	gains := missingSeries(n)
	losses := missingSeries(n)

	for i := 1; i < n; i++ {
		if IsMissing(values[i]) || IsMissing(values[i-1]) {
			continue
		}
		delta := values[i] - values[i-1]
		if delta > 0 {
			gains[i], losses[i] = delta, 0
		} else {
			gains[i], losses[i] = 0, -delta
		}
	}

	avgGain := WilderAverage(gains, period)
	avgLoss := WilderAverage(losses, period)

	out := missingSeries(n)
	for i := 0; i < n; i++ {
		if IsMissing(avgGain[i]) || IsMissing(avgLoss[i]) || avgLoss[i] == 0 {
			continue
		}
		ratio := avgGain[i] / avgLoss[i]
		out[i] = 100 - 100/(1+ratio)
	}
	return out
}
