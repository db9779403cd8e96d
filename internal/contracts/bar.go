package contracts

import (
	"math"
	"sort"
	"time"
)

// DateLayout is the on-disk date format for bars, ledgers and reports
const DateLayout = "2006-01-02"

// PriceBar is one OHLCV record for one ticker on one trading date
// 값이 없거나 숫자가 아닌 필드는 NaN (missing-value sentinel)
type PriceBar struct {
	Ticker string    `json:"ticker"`
	Date   time.Time `json:"date"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}

// HasClose reports whether the bar carries a usable close price
func (b PriceBar) HasClose() bool {
	return !math.IsNaN(b.Close) && !math.IsInf(b.Close, 0)
}

// PriceTable is a set of bars sorted by (Ticker, Date)
// ⭐ SSOT: 외부 수집기 → 엔진 입력 형식
type PriceTable []PriceBar

// Sort orders the table by (Ticker, Date) and drops duplicate pairs,
// keeping the last occurrence of each pair
func (t PriceTable) Sort() PriceTable {
	out := make(PriceTable, len(t))
	copy(out, t)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Ticker != out[j].Ticker {
			return out[i].Ticker < out[j].Ticker
		}
		return out[i].Date.Before(out[j].Date)
	})

	deduped := out[:0]
	for _, bar := range out {
		n := len(deduped)
		if n > 0 && deduped[n-1].Ticker == bar.Ticker && deduped[n-1].Date.Equal(bar.Date) {
			deduped[n-1] = bar
			continue
		}
		deduped = append(deduped, bar)
	}
	return deduped
}

// MaxDate returns the latest bar date in the table
func (t PriceTable) MaxDate() (time.Time, bool) {
	var max time.Time
	for _, bar := range t {
		if bar.Date.After(max) {
			max = bar.Date
		}
	}
	return max, !max.IsZero()
}

// Filter keeps only bars whose ticker is in include; an empty set keeps all
func (t PriceTable) Filter(include map[string]struct{}) PriceTable {
	if len(include) == 0 {
		return t
	}
	out := make(PriceTable, 0, len(t))
	for _, bar := range t {
		if _, ok := include[bar.Ticker]; ok {
			out = append(out, bar)
		}
	}
	return out
}

// GroupIndex returns, per ticker, the row indices of that ticker in table order
func (t PriceTable) GroupIndex() (order []string, groups map[string][]int) {
	groups = make(map[string][]int)
	for i, bar := range t {
		if _, seen := groups[bar.Ticker]; !seen {
			order = append(order, bar.Ticker)
		}
		groups[bar.Ticker] = append(groups[bar.Ticker], i)
	}
	return order, groups
}

// Day truncates t to a UTC calendar date
func Day(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns the number of calendar days from a to b
func DaysBetween(a, b time.Time) int {
	return int(Day(b).Sub(Day(a)).Hours() / 24)
}
