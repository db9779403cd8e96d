package strategy

import (
	"github.com/wonny/swing/internal/contracts"
	"github.com/wonny/swing/internal/indicators"
)

// columns is one ticker's OHLC series in date order
type columns struct {
	open, high, low, close []float64
}

// prepareByTicker runs fill once per ticker. Rows never mix across tickers
// and the output keeps the input row order.
func prepareByTicker(table contracts.PriceTable, atrPeriod int, fill func(cols columns, rows []*Snapshot)) []Snapshot {
	snaps := make([]Snapshot, len(table))
	for i, bar := range table {
		snaps[i] = Snapshot{
			PriceBar:  bar,
			RSI:       indicators.Missing(),
			TrendMA:   indicators.Missing(),
			ShortMA:   indicators.Missing(),
			ATR:       indicators.Missing(),
			PriorLow:  indicators.Missing(),
			PriorHigh: indicators.Missing(),
		}
	}

	order, groups := table.GroupIndex()
	for _, ticker := range order {
		idx := groups[ticker]

		cols := columns{
			open:  make([]float64, len(idx)),
			high:  make([]float64, len(idx)),
			low:   make([]float64, len(idx)),
			close: make([]float64, len(idx)),
		}
		rows := make([]*Snapshot, len(idx))
		for j, i := range idx {
			cols.open[j] = table[i].Open
			cols.high[j] = table[i].High
			cols.low[j] = table[i].Low
			cols.close[j] = table[i].Close
			rows[j] = &snaps[i]
		}

		atr := indicators.ATR(cols.high, cols.low, cols.close, atrPeriod)
		for j := range rows {
			rows[j].ATR = atr[j]
		}

		fill(cols, rows)
	}
	return snaps
}

func restrict(table contracts.PriceTable, universe map[string]struct{}) contracts.PriceTable {
	if universe == nil {
		return table
	}
	return table.Filter(universe)
}
