package indicators

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var nan = math.NaN()

func assertSeries(t *testing.T, want, got []float64) {
	t.Helper()
	require.Len(t, got, len(want))
	for i := range want {
		if math.IsNaN(want[i]) {
			assert.True(t, math.IsNaN(got[i]), "index %d: want missing, got %v", i, got[i])
			continue
		}
		assert.InDelta(t, want[i], got[i], 1e-9, "index %d", i)
	}
}

func TestSMA(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		period int
		want   []float64
	}{
		{"min periods", []float64{1, 2, 3, 4, 5}, 3, []float64{nan, nan, 2, 3, 4}},
		{"missing in window", []float64{1, nan, 3, 4, 5, 6}, 2, []float64{nan, nan, nan, 3.5, 4.5, 5.5}},
		{"short series", []float64{1, 2}, 5, []float64{nan, nan}},
		{"invalid period", []float64{1, 2}, 0, []float64{nan, nan}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertSeries(t, tt.want, SMA(tt.values, tt.period))
		})
	}
}

func TestWilderAverage(t *testing.T) {
	assertSeries(t, []float64{nan, 3, 4.5}, WilderAverage([]float64{2, 4, 6}, 2))

	// leading missing values do not seed the state
	assertSeries(t, []float64{nan, nan, 3}, WilderAverage([]float64{nan, 2, 4}, 2))
}

func TestRSI(t *testing.T) {
	got := RSI([]float64{1, 2, 3, 2, 4}, 2)

	// index 2: avg_loss == 0 → undefined, not +Inf and not back-filled
	assertSeries(t, []float64{nan, nan, nan, 50, 100 - 100.0/6}, got)
}

func TestRSI_AllGainsStaysUndefined(t *testing.T) {
	got := RSI([]float64{1, 2, 3, 4, 5, 6}, 2)
	for i, v := range got {
		assert.True(t, math.IsNaN(v), "index %d should be undefined", i)
	}
}

func TestTrueRangeAndATR(t *testing.T) {
	high := []float64{10, 15}
	low := []float64{8, 14}
	close := []float64{9, 14.5}

	assertSeries(t, []float64{2, 6}, TrueRange(high, low, close))
	assertSeries(t, []float64{nan, 4}, ATR(high, low, close, 2))
}

func TestRollingExtrema(t *testing.T) {
	values := []float64{5, 3, 4, 1, 2}

	assertSeries(t, []float64{nan, nan, 3, 1, 1}, RollingLow(values, 3))
	assertSeries(t, []float64{nan, nan, 5, 4, 4}, RollingHigh(values, 3))

	// preceding window only: today's close is excluded from its own comparison
	assertSeries(t, []float64{nan, nan, nan, 3, 1}, Lag(RollingLow(values, 3), 1))
}

func TestDownStreak(t *testing.T) {
	high := []float64{10, 9, 8, 9, 8, 7, 6}
	low := []float64{5, 4, 3, 4, 3, 2, 1}

	assert.Equal(t, []int{0, 1, 2, 0, 1, 2, 3}, DownStreak(high, low))

	// lower high with equal low is not a down day; missing breaks the streak
	assert.Equal(t, []int{0, 0, 0, 0, 1}, DownStreak([]float64{10, 9, nan, 8, 7}, []float64{5, 5, 4, 3, 2}))
}

func TestCoerce(t *testing.T) {
	assert.Equal(t, 101.25, Coerce(" 101.25 "))
	assert.True(t, IsMissing(Coerce("")))
	assert.True(t, IsMissing(Coerce("n/a")))
	assert.True(t, IsMissing(Coerce("NaN")))
	assert.True(t, IsMissing(Coerce("+Inf")))
}

// Every indicator evaluated on a prefix must equal the same indicator
// evaluated on the full series, truncated to the prefix.
func TestNoLookahead(t *testing.T) {
	closes := make([]float64, 60)
	highs := make([]float64, 60)
	lows := make([]float64, 60)
	for i := range closes {
		closes[i] = 100 + 10*math.Sin(float64(i)/3) + float64(i%7)
		highs[i] = closes[i] + 1 + float64(i%3)
		lows[i] = closes[i] - 1 - float64(i%4)
	}
	closes[17] = nan

	funcs := map[string]func(h, l, c []float64) []float64{
		"sma":        func(_, _, c []float64) []float64 { return SMA(c, 5) },
		"wilder":     func(_, _, c []float64) []float64 { return WilderAverage(c, 5) },
		"rsi":        func(_, _, c []float64) []float64 { return RSI(c, 2) },
		"atr":        func(h, l, c []float64) []float64 { return ATR(h, l, c, 14) },
		"prior_low":  func(_, _, c []float64) []float64 { return Lag(RollingLow(c, 7), 1) },
		"prior_high": func(_, _, c []float64) []float64 { return Lag(RollingHigh(c, 7), 1) },
		"streak": func(h, l, _ []float64) []float64 {
			s := DownStreak(h, l)
			out := make([]float64, len(s))
			for i, v := range s {
				out[i] = float64(v)
			}
			return out
		},
	}

	for name, fn := range funcs {
		t.Run(name, func(t *testing.T) {
			full := fn(highs, lows, closes)
			for k := 1; k <= len(closes); k++ {
				prefix := fn(highs[:k], lows[:k], closes[:k])
				assertSeries(t, full[:k], prefix)
			}
		})
	}
}
