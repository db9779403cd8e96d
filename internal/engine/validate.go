package engine

import (
	"fmt"
	"math"

	"github.com/wonny/swing/internal/contracts"
)

// normalize fills missing dates with Today and rejects malformed candidates.
// Whether an exit has a row to close is decided by Ledger.Apply.
func normalize(rc contracts.RunContext, name string, sig contracts.Signals) (entries, exits []contracts.Candidate, err error) {
	entries, err = normalizeSide(rc, name, "entry", sig.Entries)
	if err != nil {
		return nil, nil, err
	}
	exits, err = normalizeSide(rc, name, "exit", sig.Exits)
	if err != nil {
		return nil, nil, err
	}
	return entries, exits, nil
}

func normalizeSide(rc contracts.RunContext, name, side string, in []contracts.Candidate) ([]contracts.Candidate, error) {
	out := make([]contracts.Candidate, 0, len(in))
	seen := make(map[string]struct{}, len(in))

	for _, c := range in {
		violation := func(format string, args ...interface{}) error {
			return &ContractViolation{Strategy: name, Side: side, Ticker: c.Ticker, Reason: fmt.Sprintf(format, args...)}
		}

		if c.Ticker == "" {
			return nil, violation("empty ticker")
		}
		if math.IsNaN(c.Price) || math.IsInf(c.Price, 0) || c.Price <= 0 {
			return nil, violation("price %v is not a positive finite number", c.Price)
		}

		if c.Date.IsZero() {
			c.Date = rc.Today
		}
		c.Date = contracts.Day(c.Date)
		if c.Date.After(rc.Today) {
			return nil, violation("date %s is after today %s", c.Date.Format(contracts.DateLayout), rc.TodayString())
		}

		if _, dup := seen[c.Ticker]; dup {
			return nil, violation("duplicate ticker")
		}
		seen[c.Ticker] = struct{}{}

		out = append(out, c)
	}
	return out, nil
}
