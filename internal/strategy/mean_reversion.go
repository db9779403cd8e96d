package strategy

import (
	"fmt"

	"github.com/wonny/swing/internal/contracts"
	"github.com/wonny/swing/internal/indicators"
)

// meanReversion buys short-term oversold closes inside a long-term uptrend:
// entry RSI(n) <= buy & Close > SMA(trend), exit RSI(n) >= exit.
// The leveraged kind is the same rule restricted to a fixed ticker set.
type meanReversion struct {
	name     string
	kind     Kind
	params   Params
	universe map[string]struct{}
	rules    ruleSet
}

func newMeanReversion(name string, kind Kind, p Params) (*meanReversion, error) {
	if p.LookbackN <= 0 {
		return nil, fmt.Errorf("strategy %s: lookback_n must be > 0", name)
	}
	if p.BuyThreshold >= p.ExitThreshold {
		return nil, fmt.Errorf("strategy %s: buy_threshold (%g) must be below exit_threshold (%g)", name, p.BuyThreshold, p.ExitThreshold)
	}
	if kind == KindLeveragedMeanReversion && len(p.Tickers) == 0 {
		p.Tickers = append([]string(nil), LeveragedUniverse...)
	}

	s := &meanReversion{
		name:   name,
		kind:   kind,
		params: p,
	}
	if kind == KindLeveragedMeanReversion {
		s.universe = tickerSet(p.Tickers)
	}

	rsiLabel := fmt.Sprintf("RSI%d", p.LookbackN)
	s.rules = ruleSet{
		label:        name,
		timeStopDays: p.TimeStopDays,
		ready: func(snap Snapshot) bool {
			return defined(snap.RSI, snap.TrendMA)
		},
		entry: func(snap Snapshot) (string, bool) {
			if snap.RSI <= p.BuyThreshold && snap.Close > snap.TrendMA {
				return fmt.Sprintf("%s<=%g & Close>MA%d", rsiLabel, p.BuyThreshold, p.TrendPeriod), true
			}
			return "", false
		},
		exit: func(snap Snapshot) (string, bool) {
			if snap.RSI >= p.ExitThreshold {
				return fmt.Sprintf("%s>=%g", rsiLabel, p.ExitThreshold), true
			}
			return "", false
		},
	}
	return s, nil
}

func (s *meanReversion) Name() string { return s.name }
func (s *meanReversion) Kind() Kind   { return s.kind }

func (s *meanReversion) Prepare(table contracts.PriceTable) []Snapshot {
	return prepareByTicker(restrict(table, s.universe), s.params.ATRPeriod, func(cols columns, rows []*Snapshot) {
		rsi := indicators.RSI(cols.close, s.params.LookbackN)
		trend := indicators.SMA(cols.close, s.params.TrendPeriod)
		for i, row := range rows {
			row.RSI = rsi[i]
			row.TrendMA = trend[i]
		}
	})
}

func (s *meanReversion) Signal(rc contracts.RunContext, book PositionBook, snaps []Snapshot) contracts.Signals {
	return evaluate(rc, book, snaps, s.rules, s.universe)
}
