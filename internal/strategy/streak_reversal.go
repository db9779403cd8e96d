package strategy

import (
	"fmt"

	"github.com/wonny/swing/internal/contracts"
	"github.com/wonny/swing/internal/indicators"
)

// streakReversal buys after K consecutive lower-high/lower-low bars that close
// below the short average yet above the trend average; exits above the short average.
type streakReversal struct {
	name   string
	params Params
	rules  ruleSet
}

func newStreakReversal(name string, p Params) (*streakReversal, error) {
	if p.ShortPeriod <= 0 {
		return nil, fmt.Errorf("strategy %s: short_period must be > 0", name)
	}
	streak := p.LookbackN
	if streak <= 0 {
		streak = int(p.BuyThreshold)
	}
	if streak <= 0 {
		return nil, fmt.Errorf("strategy %s: streak length (lookback_n) must be > 0", name)
	}
	p.LookbackN = streak

	s := &streakReversal{name: name, params: p}
	s.rules = ruleSet{
		label:        name,
		timeStopDays: p.TimeStopDays,
		ready: func(snap Snapshot) bool {
			return defined(snap.ShortMA, snap.TrendMA)
		},
		entry: func(snap Snapshot) (string, bool) {
			if snap.DownStreak >= streak && snap.Close < snap.ShortMA && snap.Close > snap.TrendMA {
				return fmt.Sprintf("%dDHL entry: streak>=%d & Close<MA%d & Close>MA%d", streak, streak, p.ShortPeriod, p.TrendPeriod), true
			}
			return "", false
		},
		exit: func(snap Snapshot) (string, bool) {
			if snap.Close > snap.ShortMA {
				return fmt.Sprintf("%dDHL exit: Close>MA%d", streak, p.ShortPeriod), true
			}
			return "", false
		},
	}
	return s, nil
}

func (s *streakReversal) Name() string { return s.name }
func (s *streakReversal) Kind() Kind   { return KindStreakReversal }

func (s *streakReversal) Prepare(table contracts.PriceTable) []Snapshot {
	return prepareByTicker(table, s.params.ATRPeriod, func(cols columns, rows []*Snapshot) {
		streak := indicators.DownStreak(cols.high, cols.low)
		short := indicators.SMA(cols.close, s.params.ShortPeriod)
		trend := indicators.SMA(cols.close, s.params.TrendPeriod)
		for i, row := range rows {
			row.DownStreak = streak[i]
			row.ShortMA = short[i]
			row.TrendMA = trend[i]
		}
	})
}

func (s *streakReversal) Signal(rc contracts.RunContext, book PositionBook, snaps []Snapshot) contracts.Signals {
	return evaluate(rc, book, snaps, s.rules, nil)
}
