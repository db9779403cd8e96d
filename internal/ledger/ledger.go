// Package ledger persists the per-strategy position history as a CSV file
// and applies entry/exit transitions to it.
package ledger

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/wonny/swing/internal/contracts"
)

// Ledger is the ordered position history of one strategy
// ⭐ SSOT: 포지션 상태(open/closed)의 유일한 출처
type Ledger struct {
	records   []contracts.PositionRecord
	recovered bool

	// 복구된 손상 파일: Save 시점에 백업으로 이동
	corrupt *CorruptError
	day     time.Time
}

// New returns an empty ledger
func New() *Ledger {
	return &Ledger{}
}

// FromRecords builds a ledger from rows, migrating them to the canonical schema
func FromRecords(rows []contracts.PositionRecord) *Ledger {
	migrated, _ := EnsureSchema(rows)
	return &Ledger{records: migrated}
}

// Recovered reports whether Load replaced a corrupt file with an empty ledger
func (l *Ledger) Recovered() bool {
	return l.recovered
}

// Corruption returns the error a lenient Load recovered from, or nil.
// Backup is set once Save has moved the bad file aside.
func (l *Ledger) Corruption() *CorruptError {
	return l.corrupt
}

// Len returns the number of rows
func (l *Ledger) Len() int {
	return len(l.records)
}

// Records returns a copy of all rows in ledger order
func (l *Ledger) Records() []contracts.PositionRecord {
	out := make([]contracts.PositionRecord, len(l.records))
	copy(out, l.records)
	return out
}

// OpenPosition returns the most recently entered open row for ticker
func (l *Ledger) OpenPosition(ticker string) (contracts.PositionRecord, bool) {
	i := l.latest(ticker, true)
	if i < 0 {
		return contracts.PositionRecord{}, false
	}
	return l.records[i], true
}

// IsOpen reports whether ticker has an open row
func (l *Ledger) IsOpen(ticker string) bool {
	return l.latest(ticker, true) >= 0
}

// OpenPositions returns all open rows in ledger order
func (l *Ledger) OpenPositions() []contracts.PositionRecord {
	var out []contracts.PositionRecord
	for _, rec := range l.records {
		if rec.IsOpen() {
			out = append(out, rec)
		}
	}
	return out
}

// Fill is one row of an entries or exits report
type Fill struct {
	Ticker string              `json:"ticker"`
	Date   time.Time           `json:"date"`
	Price  decimal.NullDecimal `json:"price"`
	Rule   string              `json:"rule"`
}

// EntriesOn returns rows entered on date. Rule is the first Notes segment.
func (l *Ledger) EntriesOn(date time.Time) []Fill {
	day := contracts.Day(date)
	var out []Fill
	for _, rec := range l.records {
		if rec.EntryDate.Equal(day) {
			out = append(out, Fill{Ticker: rec.Ticker, Date: day, Price: rec.EntryPrice, Rule: firstNote(rec.Notes)})
		}
	}
	return out
}

// ExitsOn returns rows exited on date. Rule is the last Notes segment.
func (l *Ledger) ExitsOn(date time.Time) []Fill {
	day := contracts.Day(date)
	var out []Fill
	for _, rec := range l.records {
		if rec.ExitDate.Equal(day) {
			out = append(out, Fill{Ticker: rec.Ticker, Date: day, Price: rec.ExitPrice, Rule: lastNote(rec.Notes)})
		}
	}
	return out
}

// Validate checks that no ticker has more than one open row
func (l *Ledger) Validate() error {
	counts := make(map[string]int)
	for _, rec := range l.records {
		if rec.IsOpen() {
			counts[rec.Ticker]++
		}
	}

	var dup []string
	for ticker, n := range counts {
		if n > 1 {
			dup = append(dup, fmt.Sprintf("%s(%d)", ticker, n))
		}
	}
	if len(dup) == 0 {
		return nil
	}
	sort.Strings(dup)
	return fmt.Errorf("multiple open rows: %s", strings.Join(dup, ", "))
}

// latest returns the index of the most recently entered row for ticker
// (ties broken by position, later wins), or -1
func (l *Ledger) latest(ticker string, openOnly bool) int {
	best := -1
	for i, rec := range l.records {
		if rec.Ticker != ticker || (openOnly && !rec.IsOpen()) {
			continue
		}
		if best < 0 || !rec.EntryDate.Before(l.records[best].EntryDate) {
			best = i
		}
	}
	return best
}

func firstNote(notes string) string {
	if i := strings.Index(notes, NotesSeparator); i >= 0 {
		return notes[:i]
	}
	return notes
}

func lastNote(notes string) string {
	if i := strings.LastIndex(notes, NotesSeparator); i >= 0 {
		return notes[i+len(NotesSeparator):]
	}
	return notes
}

func appendNote(notes, note string) string {
	if notes == "" {
		return note
	}
	if note == "" {
		return notes
	}
	return notes + NotesSeparator + note
}
