package contracts

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) time.Time {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestPriceTable_Sort(t *testing.T) {
	table := PriceTable{
		{Ticker: "SPY", Date: d("2024-01-03"), Close: 3},
		{Ticker: "QQQ", Date: d("2024-01-02"), Close: 10},
		{Ticker: "SPY", Date: d("2024-01-02"), Close: 2},
		{Ticker: "SPY", Date: d("2024-01-03"), Close: 4}, // duplicate, last wins
	}

	sorted := table.Sort()
	require.Len(t, sorted, 3)
	assert.Equal(t, "QQQ", sorted[0].Ticker)
	assert.Equal(t, d("2024-01-02"), sorted[1].Date)
	assert.Equal(t, 4.0, sorted[2].Close)

	// input is not mutated
	assert.Equal(t, "SPY", table[0].Ticker)
}

func TestNewRunContext(t *testing.T) {
	table := PriceTable{
		{Ticker: "SPY", Date: d("2024-01-02"), Close: 1},
		{Ticker: "SPY", Date: d("2024-01-03"), Close: 1},
		{Ticker: "TLT", Date: d("2024-01-05"), Close: 1},
	}

	t.Run("today is max date", func(t *testing.T) {
		rc, err := NewRunContext(table, nil)
		require.NoError(t, err)
		assert.Equal(t, d("2024-01-05"), rc.Today)
		assert.Equal(t, "2024-01-05", rc.TodayString())
		assert.Len(t, rc.Table, 3)
	})

	t.Run("include-set restricts scope and today", func(t *testing.T) {
		rc, err := NewRunContext(table, []string{"SPY"})
		require.NoError(t, err)
		assert.Equal(t, d("2024-01-03"), rc.Today)
		assert.Len(t, rc.Table, 2)
	})

	t.Run("empty table", func(t *testing.T) {
		_, err := NewRunContext(nil, nil)
		assert.Error(t, err)
	})
}

func TestDaysBetween(t *testing.T) {
	assert.Equal(t, 21, DaysBetween(d("2024-03-01"), d("2024-03-22")))
	assert.Equal(t, 0, DaysBetween(d("2024-03-01"), d("2024-03-01").Add(5*time.Hour)))
}

func TestPositionRecord_HeldDays(t *testing.T) {
	p := PositionRecord{Ticker: "SPY", EntryDate: d("2024-03-01"), Status: StatusOpen}
	assert.Equal(t, 10, p.HeldDays(d("2024-03-11")))
	assert.True(t, p.IsOpen())
	assert.False(t, p.HasExit())

	assert.Equal(t, -1, PositionRecord{}.HeldDays(d("2024-03-11")))
}
