// Package pricedata loads the daily bar table from a CSV file or PostgreSQL
// and reads include-sets (ticker universes).
package pricedata

import (
	"context"

	"github.com/wonny/swing/internal/contracts"
)

// Source loads daily bars. An empty tickers list loads every ticker.
type Source interface {
	Load(ctx context.Context, tickers []string) (contracts.PriceTable, LoadStats, error)
}

// LoadStats describes data quality of one load
type LoadStats struct {
	Rows    int `json:"rows"`    // rows kept
	Dropped int `json:"dropped"` // rows without ticker or parseable date
	Coerced int `json:"coerced"` // non-numeric OHLCV cells turned into NaN
	Tickers int `json:"tickers"`
}

func tickerFilter(tickers []string) map[string]struct{} {
	if len(tickers) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(tickers))
	for _, t := range tickers {
		set[normalizeTicker(t)] = struct{}{}
	}
	return set
}

func countTickers(table contracts.PriceTable) int {
	order, _ := table.GroupIndex()
	return len(order)
}
