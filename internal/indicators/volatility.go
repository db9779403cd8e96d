package indicators

import "math"

// TrueRange returns max(high-low, |high-prevClose|, |low-prevClose|).
// The first bar (no previous close) falls back to high-low.
func TrueRange(high, low, close []float64) []float64 {
	n := len(close)
	out := missingSeries(n)
	for i := 0; i < n; i++ {
		if IsMissing(high[i]) || IsMissing(low[i]) {
			continue
		}
		tr := high[i] - low[i]
		if i > 0 && !IsMissing(close[i-1]) {
			tr = math.Max(tr, math.Abs(high[i]-close[i-1]))
			tr = math.Max(tr, math.Abs(low[i]-close[i-1]))
		}
		out[i] = tr
	}
	return out
}

// ATR is the Wilder-smoothed average true range
func ATR(high, low, close []float64, period int) []float64 {
	return WilderAverage(TrueRange(high, low, close), period)
}
