package indicators

// SMA returns the trailing arithmetic mean over period values.
// Undefined for the first period-1 rows and for windows containing a missing value.
func SMA(values []float64, period int) []float64 {
	out := missingSeries(len(values))
	if period <= 0 {
		return out
	}

	var sum float64
	missing := 0
	for i, v := range values {
		if IsMissing(v) {
			missing++
		} else {
			sum += v
		}

		if i >= period {
			old := values[i-period]
			if IsMissing(old) {
				missing--
			} else {
				sum -= old
			}
		}

		if i >= period-1 && missing == 0 {
			out[i] = sum / float64(period)
		}
	}
	return out
}

// WilderAverage smooths a series recursively with alpha = 1/period.
// The state is seeded by the first observed value and reported once
// period observations were seen. Missing inputs leave the state unchanged.
func WilderAverage(values []float64, period int) []float64 {
	out := missingSeries(len(values))
	if period <= 0 {
		return out
	}

	alpha := 1.0 / float64(period)
	var state float64
	observed := 0

	for i, v := range values {
		if !IsMissing(v) {
			if observed == 0 {
				state = v
			} else {
				state += alpha * (v - state)
			}
			observed++
		}

		if observed >= period {
			out[i] = state
		}
	}
	return out
}
