// Package indicators computes rolling statistics over a single ticker's series.
// Every function is causal: out[i] only reads values[0..i].
package indicators

import (
	"math"
	"strconv"
	"strings"
)

// Missing returns the missing-value sentinel
func Missing() float64 {
	return math.NaN()
}

// IsMissing reports whether v is the sentinel (or not a usable number)
func IsMissing(v float64) bool {
	return math.IsNaN(v) || math.IsInf(v, 0)
}

// Coerce parses a numeric cell; anything non-numeric becomes the sentinel
func Coerce(raw string) float64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Missing()
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || IsMissing(v) {
		return Missing()
	}
	return v
}

// Lag shifts a series k bars forward so out[i] = values[i-k]
// 당일 값을 자기 비교에서 제외할 때 사용 (preceding window)
func Lag(values []float64, k int) []float64 {
	out := missingSeries(len(values))
	for i := k; i < len(values); i++ {
		out[i] = values[i-k]
	}
	return out
}

func missingSeries(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}
