package ledger

import (
	"time"

	"github.com/wonny/swing/internal/contracts"
)

// DeferReason explains why a candidate was not applied
type DeferReason string

const (
	DeferAlreadyOpen   DeferReason = "already_open"
	DeferExitedToday   DeferReason = "exited_this_run"
	DeferReplay        DeferReason = "exit_on_or_after_today"
	DeferDuplicate     DeferReason = "duplicate_in_batch"
	DeferSameDayExit   DeferReason = "entered_on_exit_date"
	DeferNoMatchingRow DeferReason = "no_matching_row"
)

// Deferred is a candidate Apply left unapplied
type Deferred struct {
	Candidate contracts.Candidate `json:"candidate"`
	Reason    DeferReason         `json:"reason"`
}

// Transition summarizes one Apply call
type Transition struct {
	Today    time.Time
	Opened   []contracts.PositionRecord
	Closed   []contracts.PositionRecord
	Deferred []Deferred
}

// Apply mutates the ledger with today's candidates. Exits are applied first,
// then entries.
//
// An exit closes the most recently entered open row of its ticker, or the most
// recently entered row of any status when none is open. An entry appends a new
// open row unless the ticker is open, was exited in this call, already has a
// row exited on or after today, or was entered earlier in the same batch.
// Re-applying the same candidates for the same day is a no-op.
func (l *Ledger) Apply(today time.Time, entries, exits []contracts.Candidate) Transition {
	today = contracts.Day(today)
	tr := Transition{Today: today}

	exited := make(map[string]struct{}, len(exits))
	for _, c := range exits {
		date := candidateDate(c, today)

		i := l.latest(c.Ticker, true)
		if i < 0 {
			i = l.latest(c.Ticker, false)
		}
		if i < 0 {
			tr.Deferred = append(tr.Deferred, Deferred{Candidate: c, Reason: DeferNoMatchingRow})
			continue
		}

		rec := &l.records[i]
		if !rec.EntryDate.IsZero() && !rec.EntryDate.Before(date) {
			// 같은 날 진입한 포지션을 같은 날 청산하지 않음
			tr.Deferred = append(tr.Deferred, Deferred{Candidate: c, Reason: DeferSameDayExit})
			continue
		}
		if !rec.IsOpen() && rec.HasExit() && !rec.ExitDate.Before(date) {
			tr.Deferred = append(tr.Deferred, Deferred{Candidate: c, Reason: DeferReplay})
			continue
		}

		rec.ExitDate = date
		rec.ExitPrice = Price(c.Price)
		rec.Status = contracts.StatusClosed
		rec.Notes = appendNote(rec.Notes, c.Rule)

		exited[c.Ticker] = struct{}{}
		tr.Closed = append(tr.Closed, *rec)
	}

	entered := make(map[string]struct{}, len(entries))
	for _, c := range entries {
		if reason, skip := l.blockEntry(c.Ticker, today, exited, entered); skip {
			tr.Deferred = append(tr.Deferred, Deferred{Candidate: c, Reason: reason})
			continue
		}

		rec := contracts.PositionRecord{
			Ticker:     c.Ticker,
			EntryDate:  candidateDate(c, today),
			EntryPrice: Price(c.Price),
			Status:     contracts.StatusOpen,
			Notes:      c.Rule,
		}
		l.records = append(l.records, rec)

		entered[c.Ticker] = struct{}{}
		tr.Opened = append(tr.Opened, rec)
	}

	return tr
}

func (l *Ledger) blockEntry(ticker string, today time.Time, exited, entered map[string]struct{}) (DeferReason, bool) {
	if _, ok := entered[ticker]; ok {
		return DeferDuplicate, true
	}
	if _, ok := exited[ticker]; ok {
		return DeferExitedToday, true
	}
	if l.IsOpen(ticker) {
		return DeferAlreadyOpen, true
	}
	for _, rec := range l.records {
		if rec.Ticker == ticker && rec.HasExit() && !rec.ExitDate.Before(today) {
			return DeferReplay, true
		}
	}
	return "", false
}

func candidateDate(c contracts.Candidate, today time.Time) time.Time {
	if c.Date.IsZero() {
		return today
	}
	return contracts.Day(c.Date)
}
