package contracts

import (
	"fmt"
	"time"
)

// RunContext is the input of one strategy run
// Today는 항상 입력 데이터의 max(Date), wall clock은 사용하지 않음
type RunContext struct {
	Today   time.Time
	Table   PriceTable
	Include map[string]struct{}
}

// NewRunContext builds a RunContext from a price table and an optional include-set.
// Today is the latest date of the filtered table.
func NewRunContext(table PriceTable, include []string) (RunContext, error) {
	set := make(map[string]struct{}, len(include))
	for _, ticker := range include {
		set[ticker] = struct{}{}
	}

	filtered := table.Filter(set).Sort()
	today, ok := filtered.MaxDate()
	if !ok {
		return RunContext{}, fmt.Errorf("price table has no dated rows (include-set size %d)", len(set))
	}

	return RunContext{
		Today:   Day(today),
		Table:   filtered,
		Include: set,
	}, nil
}

// TodayString formats Today for file names and logs
func (rc RunContext) TodayString() string {
	return rc.Today.Format(DateLayout)
}
