package strategy

import (
	"fmt"

	"github.com/wonny/swing/internal/contracts"
	"github.com/wonny/swing/internal/indicators"
)

// doubleSeven buys a close at or below the lowest close of the preceding N days
// while above the trend average, and sells at or above the preceding M-day high.
type doubleSeven struct {
	name   string
	params Params
	rules  ruleSet
}

func newDoubleSeven(name string, p Params) (*doubleSeven, error) {
	if p.LookbackN <= 0 || p.ExitLookbackN <= 0 {
		return nil, fmt.Errorf("strategy %s: lookback_n and exit_lookback_n must be > 0", name)
	}

	s := &doubleSeven{name: name, params: p}
	s.rules = ruleSet{
		label:        name,
		timeStopDays: p.TimeStopDays,
		ready: func(snap Snapshot) bool {
			return defined(snap.PriorLow, snap.PriorHigh, snap.TrendMA)
		},
		entry: func(snap Snapshot) (string, bool) {
			if snap.Close <= snap.PriorLow && snap.Close > snap.TrendMA {
				return fmt.Sprintf("Double7 entry: Close<=L%d & Close>MA%d", p.LookbackN, p.TrendPeriod), true
			}
			return "", false
		},
		exit: func(snap Snapshot) (string, bool) {
			if snap.Close >= snap.PriorHigh {
				return fmt.Sprintf("Double7 exit: Close>=H%d", p.ExitLookbackN), true
			}
			return "", false
		},
	}
	return s, nil
}

func (s *doubleSeven) Name() string { return s.name }
func (s *doubleSeven) Kind() Kind   { return KindDoubleSeven }

func (s *doubleSeven) Prepare(table contracts.PriceTable) []Snapshot {
	return prepareByTicker(table, s.params.ATRPeriod, func(cols columns, rows []*Snapshot) {
		// 당일 종가는 비교 대상 구간에서 제외
		low := indicators.Lag(indicators.RollingLow(cols.close, s.params.LookbackN), 1)
		high := indicators.Lag(indicators.RollingHigh(cols.close, s.params.ExitLookbackN), 1)
		trend := indicators.SMA(cols.close, s.params.TrendPeriod)
		for i, row := range rows {
			row.PriorLow = low[i]
			row.PriorHigh = high[i]
			row.TrendMA = trend[i]
		}
	})
}

func (s *doubleSeven) Signal(rc contracts.RunContext, book PositionBook, snaps []Snapshot) contracts.Signals {
	return evaluate(rc, book, snaps, s.rules, nil)
}
