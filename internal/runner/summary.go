package runner

import (
	"time"

	"github.com/wonny/swing/internal/contracts"
	"github.com/wonny/swing/internal/engine"
)

// Summary is the compact run record cached in Redis and printed by the CLI
type Summary struct {
	RunID      string    `json:"run_id"`
	Strategy   string    `json:"strategy"`
	Today      string    `json:"today"`
	Entries    int       `json:"entries"`
	Exits      int       `json:"exits"`
	Open       int       `json:"open"`
	Deferred   int       `json:"deferred"`
	Recovered  bool      `json:"ledger_recovered"`
	ConfigHash string    `json:"config_hash"`
	FinishedAt time.Time `json:"finished_at"`

	Paths engine.ReportPaths `json:"paths"`
}

// Summarize condenses a RunResult
func Summarize(res *engine.RunResult, configHash string) Summary {
	return Summary{
		RunID:      res.RunID,
		Strategy:   res.Strategy,
		Today:      res.Today.Format(contracts.DateLayout),
		Entries:    len(res.Entries),
		Exits:      len(res.Exits),
		Open:       len(res.Open),
		Deferred:   len(res.Deferred),
		Recovered:  res.LedgerRecovered,
		ConfigHash: configHash,
		FinishedAt: time.Now(),
		Paths:      res.Paths,
	}
}
