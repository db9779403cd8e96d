package pricedata

import (
	"context"
	"fmt"
	"math"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonny/swing/internal/contracts"
	"github.com/wonny/swing/pkg/logger"
)

// DefaultLookbackDays covers a 200-bar trend average with margin
const DefaultLookbackDays = 450

// PostgresSource reads bars from data.daily_prices
// ⭐ SSOT: DB 가격 조회는 여기서만
type PostgresSource struct {
	pool         *pgxpool.Pool
	lookbackDays int
	logger       *logger.Logger
}

// NewPostgresSource creates a source reading lookbackDays calendar days
// back from the latest trade_date in the table
func NewPostgresSource(pool *pgxpool.Pool, lookbackDays int, log *logger.Logger) *PostgresSource {
	if lookbackDays <= 0 {
		lookbackDays = DefaultLookbackDays
	}
	if log == nil {
		log = logger.Nop()
	}
	return &PostgresSource{pool: pool, lookbackDays: lookbackDays, logger: log}
}

const selectBars = `
	SELECT stock_code, trade_date,
	       open_price::float8, high_price::float8, low_price::float8,
	       close_price::float8, volume::float8
	FROM data.daily_prices
	WHERE trade_date >= (SELECT max(trade_date) FROM data.daily_prices) - $1::int
	  AND (cardinality($2::text[]) = 0 OR stock_code = ANY($2::text[]))
	ORDER BY stock_code, trade_date
`

// Load implements Source
func (s *PostgresSource) Load(ctx context.Context, tickers []string) (contracts.PriceTable, LoadStats, error) {
	var stats LoadStats

	codes := MergeTickers(tickers)
	if codes == nil {
		codes = []string{}
	}

	rows, err := s.pool.Query(ctx, selectBars, s.lookbackDays, codes)
	if err != nil {
		return nil, stats, fmt.Errorf("query daily prices: %w", err)
	}
	defer rows.Close()

	var table contracts.PriceTable
	for rows.Next() {
		var bar contracts.PriceBar
		var open, high, low, cls, volume *float64
		if err := rows.Scan(&bar.Ticker, &bar.Date, &open, &high, &low, &cls, &volume); err != nil {
			return nil, stats, fmt.Errorf("scan daily price: %w", err)
		}

		bar.Ticker = normalizeTicker(bar.Ticker)
		bar.Date = contracts.Day(bar.Date)
		bar.Open = orNaN(open)
		bar.High = orNaN(high)
		bar.Low = orNaN(low)
		bar.Close = orNaN(cls)
		bar.Volume = orNaN(volume)
		table = append(table, bar)
	}
	if err := rows.Err(); err != nil {
		return nil, stats, fmt.Errorf("iterate daily prices: %w", err)
	}

	table = table.Sort()
	stats.Rows = len(table)
	stats.Tickers = countTickers(table)

	s.logger.WithFields(map[string]interface{}{
		"rows":          stats.Rows,
		"tickers":       stats.Tickers,
		"lookback_days": s.lookbackDays,
	}).Debug("Price table loaded from database")

	return table, stats, nil
}

func orNaN(v *float64) float64 {
	if v == nil {
		return math.NaN()
	}
	return *v
}
