package contracts

import (
	"time"

	"github.com/shopspring/decimal"
)

// PositionStatus 포지션 상태
type PositionStatus string

const (
	StatusOpen   PositionStatus = "open"
	StatusClosed PositionStatus = "closed"
)

// PositionRecord is one row of a strategy ledger.
// Zero dates and invalid NullDecimal values are nulls.
type PositionRecord struct {
	Ticker     string              `json:"ticker"`
	EntryDate  time.Time           `json:"entry_date"`
	EntryPrice decimal.NullDecimal `json:"entry_price"`
	Status     PositionStatus      `json:"status"`
	ExitDate   time.Time           `json:"exit_date"`
	ExitPrice  decimal.NullDecimal `json:"exit_price"`
	Notes      string              `json:"notes"`
}

// IsOpen reports whether the record is an open position
func (p PositionRecord) IsOpen() bool {
	return p.Status == StatusOpen
}

// HasExit reports whether an exit date was recorded
func (p PositionRecord) HasExit() bool {
	return !p.ExitDate.IsZero()
}

// HeldDays returns calendar days between entry and asOf (-1 when EntryDate is null)
func (p PositionRecord) HeldDays(asOf time.Time) int {
	if p.EntryDate.IsZero() {
		return -1
	}
	return DaysBetween(p.EntryDate, asOf)
}
