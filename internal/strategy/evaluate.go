package strategy

import (
	"fmt"
	"strings"

	"github.com/wonny/swing/internal/contracts"
	"github.com/wonny/swing/internal/indicators"
)

// ruleSet is the variant-specific part of Signal
type ruleSet struct {
	label        string
	timeStopDays int

	// ready reports whether every indicator the rules read is defined
	ready func(s Snapshot) bool
	entry func(s Snapshot) (rule string, ok bool)
	exit  func(s Snapshot) (rule string, ok bool)
}

// evaluate applies rules to the rows dated rc.Today.
// A row that is not ready is skipped for both entry and exit, time-stop included.
func evaluate(rc contracts.RunContext, book PositionBook, snaps []Snapshot, rules ruleSet, universe map[string]struct{}) contracts.Signals {
	var out contracts.Signals

	for _, s := range snaps {
		if !contracts.Day(s.Date).Equal(rc.Today) {
			continue
		}
		if universe != nil {
			if _, ok := universe[s.Ticker]; !ok {
				continue
			}
		}
		if !s.HasClose() || !rules.ready(s) {
			out.NotReady = append(out.NotReady, s.Ticker)
			continue
		}

		open, isOpen := book.OpenPosition(s.Ticker)
		if !isOpen {
			if rule, ok := rules.entry(s); ok {
				out.Entries = append(out.Entries, contracts.Candidate{
					Ticker: s.Ticker,
					Date:   rc.Today,
					Price:  s.Close,
					Rule:   rule,
				})
			}
			continue
		}

		if rule, ok := rules.exit(s); ok {
			out.Exits = append(out.Exits, contracts.Candidate{
				Ticker: s.Ticker,
				Date:   rc.Today,
				Price:  s.Close,
				Rule:   rule,
				Reason: contracts.ReasonRule,
			})
			continue
		}

		if rules.timeStopDays > 0 {
			held := open.HeldDays(rc.Today)
			if held >= rules.timeStopDays {
				out.Exits = append(out.Exits, contracts.Candidate{
					Ticker: s.Ticker,
					Date:   rc.Today,
					Price:  s.Close,
					Rule:   fmt.Sprintf("%s time-stop: held %dd >= %dd", rules.label, held, rules.timeStopDays),
					Reason: contracts.ReasonTimeStop,
				})
			}
		}
	}
	return out
}

func defined(values ...float64) bool {
	for _, v := range values {
		if indicators.IsMissing(v) {
			return false
		}
	}
	return true
}

func tickerSet(tickers []string) map[string]struct{} {
	if len(tickers) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(tickers))
	for _, t := range tickers {
		set[strings.ToUpper(strings.TrimSpace(t))] = struct{}{}
	}
	return set
}
