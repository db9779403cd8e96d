package pricedata

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/wonny/swing/internal/contracts"
	"github.com/wonny/swing/internal/indicators"
	"github.com/wonny/swing/pkg/logger"
)

var dateLayouts = []string{
	contracts.DateLayout,
	"2006-01-02 15:04:05",
	time.RFC3339,
	"01/02/2006",
}

// CSVSource reads a combined bar file with columns
// Ticker,Date,Open,High,Low,Close,Volume (any order, extra columns ignored)
type CSVSource struct {
	path   string
	logger *logger.Logger
}

// NewCSVSource creates a CSV price source
func NewCSVSource(path string, log *logger.Logger) *CSVSource {
	if log == nil {
		log = logger.Nop()
	}
	return &CSVSource{path: path, logger: log}
}

// Load implements Source
func (s *CSVSource) Load(ctx context.Context, tickers []string) (contracts.PriceTable, LoadStats, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, LoadStats{}, fmt.Errorf("open price file: %w", err)
	}
	defer f.Close()

	table, stats, err := ParseCSV(f, tickers)
	if err != nil {
		return nil, stats, fmt.Errorf("%s: %w", s.path, err)
	}

	log := s.logger.WithFields(map[string]interface{}{
		"path":    s.path,
		"rows":    stats.Rows,
		"tickers": stats.Tickers,
	})
	if stats.Coerced > 0 || stats.Dropped > 0 {
		log.WithFields(map[string]interface{}{
			"coerced": stats.Coerced,
			"dropped": stats.Dropped,
		}).Warn("Price data had unusable values")
	}
	log.Debug("Price table loaded")

	return table, stats, nil
}

// ParseCSV decodes a bar table. Header names are matched case-insensitively.
// Rows without a ticker or a parseable date are dropped; non-numeric OHLCV
// cells become NaN.
func ParseCSV(r io.Reader, tickers []string) (contracts.PriceTable, LoadStats, error) {
	var stats LoadStats

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.ReuseRecord = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, stats, nil
	}
	if err != nil {
		return nil, stats, fmt.Errorf("read header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		if _, dup := cols[name]; !dup {
			cols[name] = i
		}
	}
	for _, required := range []string{"ticker", "date", "close"} {
		if _, ok := cols[required]; !ok {
			return nil, stats, fmt.Errorf("missing %q column (header %v)", required, header)
		}
	}

	filter := tickerFilter(tickers)
	cell := func(row []string, name string) string {
		if i, ok := cols[name]; ok && i < len(row) {
			return strings.TrimSpace(row[i])
		}
		return ""
	}
	number := func(row []string, name string) float64 {
		raw := cell(row, name)
		v := indicators.Coerce(raw)
		if raw != "" && indicators.IsMissing(v) {
			stats.Coerced++
		}
		return v
	}

	var table contracts.PriceTable
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, stats, fmt.Errorf("read row: %w", err)
		}

		ticker := normalizeTicker(cell(row, "ticker"))
		date, ok := parseDate(cell(row, "date"))
		if ticker == "" || !ok {
			stats.Dropped++
			continue
		}
		if filter != nil {
			if _, keep := filter[ticker]; !keep {
				continue
			}
		}

		table = append(table, contracts.PriceBar{
			Ticker: ticker,
			Date:   date,
			Open:   number(row, "open"),
			High:   number(row, "high"),
			Low:    number(row, "low"),
			Close:  number(row, "close"),
			Volume: number(row, "volume"),
		})
	}

	table = table.Sort()
	stats.Rows = len(table)
	stats.Tickers = countTickers(table)
	return table, stats, nil
}

func normalizeTicker(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

func parseDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return contracts.Day(t), true
		}
	}
	return time.Time{}, false
}
