package indicators

// RollingLow returns the minimum of the trailing period values, current row included
func RollingLow(values []float64, period int) []float64 {
	return rolling(values, period, func(a, b float64) bool { return a < b })
}

// RollingHigh returns the maximum of the trailing period values, current row included
func RollingHigh(values []float64, period int) []float64 {
	return rolling(values, period, func(a, b float64) bool { return a > b })
}

func rolling(values []float64, period int, better func(a, b float64) bool) []float64 {
	out := missingSeries(len(values))
	if period <= 0 {
		return out
	}

	for i := period - 1; i < len(values); i++ {
		best := values[i-period+1]
		ok := !IsMissing(best)
		for j := i - period + 2; ok && j <= i; j++ {
			if IsMissing(values[j]) {
				ok = false
				break
			}
			if better(values[j], best) {
				best = values[j]
			}
		}
		if ok {
			out[i] = best
		}
	}
	return out
}

// DownStreak counts consecutive bars with both a lower high and a lower low
// than the previous bar. Missing comparisons break the streak.
func DownStreak(high, low []float64) []int {
	out := make([]int, len(high))
	for i := 1; i < len(high); i++ {
		lowerHigh := !IsMissing(high[i]) && !IsMissing(high[i-1]) && high[i] < high[i-1]
		lowerLow := !IsMissing(low[i]) && !IsMissing(low[i-1]) && low[i] < low[i-1]
		if lowerHigh && lowerLow {
			out[i] = out[i-1] + 1
		}
	}
	return out
}
