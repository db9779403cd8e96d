package ledger

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/wonny/swing/internal/contracts"
)

// Column names of the canonical ledger schema, in file order
const (
	ColTicker     = "Ticker"
	ColEntryDate  = "EntryDate"
	ColEntryPrice = "EntryPrice"
	ColStatus     = "Status"
	ColExitDate   = "ExitDate"
	ColExitPrice  = "ExitPrice"
	ColNotes      = "Notes"
)

// Header is the canonical ledger header
// ⭐ SSOT: ledger 컬럼 순서는 여기서만 정의
var Header = []string{ColTicker, ColEntryDate, ColEntryPrice, ColStatus, ColExitDate, ColExitPrice, ColNotes}

// NotesSeparator joins successive rationale strings in Notes
const NotesSeparator = " | "

var dateLayouts = []string{contracts.DateLayout, "2006-01-02 15:04:05", time.RFC3339}

// EnsureSchema migrates decoded rows to the canonical form.
// Tickers are trimmed and upper-cased. Missing or unknown Status values are
// inferred (closed if ExitDate is set, otherwise open). It returns the migrated rows and how many were changed.
func EnsureSchema(rows []contracts.PositionRecord) ([]contracts.PositionRecord, int) {
	out := make([]contracts.PositionRecord, len(rows))
	changed := 0

	for i, row := range rows {
		fixed := row
		fixed.Ticker = strings.ToUpper(strings.TrimSpace(row.Ticker))
		fixed.EntryDate = contracts.Day(row.EntryDate)
		fixed.ExitDate = contracts.Day(row.ExitDate)

		switch contracts.PositionStatus(strings.ToLower(strings.TrimSpace(string(row.Status)))) {
		case contracts.StatusOpen:
			fixed.Status = contracts.StatusOpen
		case contracts.StatusClosed:
			fixed.Status = contracts.StatusClosed
		default:
			if fixed.HasExit() {
				fixed.Status = contracts.StatusClosed
			} else {
				fixed.Status = contracts.StatusOpen
			}
		}

		if fixed.Status != row.Status || fixed.Ticker != row.Ticker {
			changed++
		}
		out[i] = fixed
	}
	return out, changed
}

// Decode parses ledger CSV. Columns may appear in any order; absent
// columns decode as nulls. A missing Ticker column or an unparseable cell
// is an error.
func Decode(r io.Reader) ([]contracts.PositionRecord, error) {
	reader := csv.NewReader(r)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	cols := make(map[string]int, len(records[0]))
	for i, name := range records[0] {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		cols[name] = i
	}
	if _, ok := cols[ColTicker]; !ok {
		return nil, fmt.Errorf("missing %s column (header %v)", ColTicker, records[0])
	}

	cell := func(row []string, name string) string {
		if i, ok := cols[name]; ok && i < len(row) {
			return strings.TrimSpace(row[i])
		}
		return ""
	}

	rows := make([]contracts.PositionRecord, 0, len(records)-1)
	for n, raw := range records[1:] {
		line := n + 2

		rec := contracts.PositionRecord{
			Ticker: cell(raw, ColTicker),
			Status: contracts.PositionStatus(cell(raw, ColStatus)),
			Notes:  cell(raw, ColNotes),
		}
		if rec.Ticker == "" {
			return nil, fmt.Errorf("line %d: empty %s", line, ColTicker)
		}

		if rec.EntryDate, err = parseDate(cell(raw, ColEntryDate)); err != nil {
			return nil, fmt.Errorf("line %d: %s: %w", line, ColEntryDate, err)
		}
		if rec.ExitDate, err = parseDate(cell(raw, ColExitDate)); err != nil {
			return nil, fmt.Errorf("line %d: %s: %w", line, ColExitDate, err)
		}
		if rec.EntryPrice, err = parsePrice(cell(raw, ColEntryPrice)); err != nil {
			return nil, fmt.Errorf("line %d: %s: %w", line, ColEntryPrice, err)
		}
		if rec.ExitPrice, err = parsePrice(cell(raw, ColExitPrice)); err != nil {
			return nil, fmt.Errorf("line %d: %s: %w", line, ColExitPrice, err)
		}

		rows = append(rows, rec)
	}
	return rows, nil
}

// Encode renders rows in the canonical schema (header included)
func Encode(rows []contracts.PositionRecord) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(Header); err != nil {
		return nil, err
	}
	for _, row := range rows {
		if err := w.Write(encodeRow(row)); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func encodeRow(row contracts.PositionRecord) []string {
	return []string{
		row.Ticker,
		FormatDate(row.EntryDate),
		FormatPrice(row.EntryPrice),
		string(row.Status),
		FormatDate(row.ExitDate),
		FormatPrice(row.ExitPrice),
		row.Notes,
	}
}

// FormatDate formats a nullable date (zero → "")
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(contracts.DateLayout)
}

// FormatPrice formats a nullable decimal (invalid → "")
func FormatPrice(p decimal.NullDecimal) string {
	if !p.Valid {
		return ""
	}
	return p.Decimal.String()
}

// Price converts a float price to the ledger's decimal representation
func Price(v float64) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.NewFromFloat(v))
}

func isNull(s string) bool {
	switch strings.ToLower(s) {
	case "", "nan", "nat", "none", "null":
		return true
	}
	return false
}

func parseDate(s string) (time.Time, error) {
	if isNull(s) {
		return time.Time{}, nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return contracts.Day(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q", s)
}

func parsePrice(s string) (decimal.NullDecimal, error) {
	if isNull(s) {
		return decimal.NullDecimal{}, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.NullDecimal{}, fmt.Errorf("invalid price %q", s)
	}
	return decimal.NewNullDecimal(d), nil
}
