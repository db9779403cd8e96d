package contracts

import "time"

// ExitReason distinguishes rule-based exits from forced holding-period exits
type ExitReason string

const (
	ReasonRule     ExitReason = "rule"
	ReasonTimeStop ExitReason = "time_stop"
)

// Candidate is one proposed entry or exit for today
// 정규 스키마: Ticker, Date, Price, Rule
type Candidate struct {
	Ticker string     `json:"ticker"`
	Date   time.Time  `json:"date"` // zero → RunContext.Today
	Price  float64    `json:"price"`
	Rule   string     `json:"rule"`
	Reason ExitReason `json:"reason,omitempty"`
}

// Signals is the output of Strategy.Signal
type Signals struct {
	Entries []Candidate `json:"entries"`
	Exits   []Candidate `json:"exits"`

	// NotReady lists today's tickers skipped because an indicator was undefined
	NotReady []string `json:"not_ready,omitempty"`
}

// Count returns the number of proposed transitions
func (s Signals) Count() int {
	return len(s.Entries) + len(s.Exits)
}
