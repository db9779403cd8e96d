// Package engine runs one strategy for one trading day: it loads the ledger,
// asks the strategy for candidates, applies them and persists reports and ledger.
package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/wonny/swing/internal/contracts"
	"github.com/wonny/swing/internal/ledger"
	"github.com/wonny/swing/internal/metrics"
	"github.com/wonny/swing/internal/strategy"
	"github.com/wonny/swing/pkg/logger"
)

// Engine executes strategy runs
// ⭐ SSOT: ledger 변경은 Engine.Run을 통해서만
type Engine struct {
	logger  *logger.Logger
	metrics *metrics.Recorder
	strict  bool
}

// Option configures an Engine
type Option func(*Engine)

// WithMetrics records every run on r
func WithMetrics(r *metrics.Recorder) Option {
	return func(e *Engine) { e.metrics = r }
}

// WithStrictLedger aborts runs on a corrupt ledger instead of recovering
func WithStrictLedger(strict bool) Option {
	return func(e *Engine) { e.strict = strict }
}

// New creates an engine
func New(log *logger.Logger, opts ...Option) *Engine {
	if log == nil {
		log = logger.Nop()
	}
	e := &Engine{logger: log}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// RunResult is the outcome of one run. Entries, Exits and Open are read back
// from the ledger after the transition, so a replay returns the same rows.
type RunResult struct {
	RunID    string    `json:"run_id"`
	Strategy string    `json:"strategy"`
	Today    time.Time `json:"today"`

	Entries  []ledger.Fill              `json:"entries"`
	Exits    []ledger.Fill              `json:"exits"`
	Open     []contracts.PositionRecord `json:"open"`
	Deferred []ledger.Deferred          `json:"deferred"`
	NotReady []string                   `json:"not_ready"`

	LedgerRecovered bool        `json:"ledger_recovered"`
	Paths           ReportPaths `json:"paths"`
}

// Run executes s for rc.Today
func (e *Engine) Run(ctx context.Context, rc contracts.RunContext, ledgerPath, outputDir string, s strategy.Strategy) (res *RunResult, err error) {
	started := time.Now()
	res = &RunResult{
		RunID:    uuid.NewString(),
		Strategy: s.Name(),
		Today:    rc.Today,
	}

	log := e.logger.WithFields(map[string]interface{}{
		"run_id":   res.RunID,
		"strategy": s.Name(),
		"today":    rc.TodayString(),
	})

	var tr ledger.Transition
	defer func() {
		// 원장에 실제로 반영된 전이만 집계 (재실행은 0)
		e.metrics.ObserveRun(s.Name(), metrics.RunStats{
			Today:     rc.Today,
			Entries:   len(tr.Opened),
			Exits:     len(tr.Closed),
			Deferred:  len(res.Deferred),
			Open:      len(res.Open),
			Recovered: res.LedgerRecovered,
		}, time.Since(started), err)
	}()

	log.WithFields(map[string]interface{}{
		"rows":   len(rc.Table),
		"ledger": ledgerPath,
	}).Info("Starting strategy run")

	// 1. Ledger
	book, err := ledger.Load(ledgerPath, ledger.LoadOptions{
		Strict: e.strict,
		Today:  rc.Today,
		Logger: log,
	})
	if err != nil {
		return res, fmt.Errorf("load ledger: %w", err)
	}
	res.LedgerRecovered = book.Recovered()

	// 2. Signals
	snaps := s.Prepare(rc.Table)
	sig := s.Signal(rc, book, snaps)
	res.NotReady = sig.NotReady
	if len(sig.NotReady) > 0 {
		log.WithField("tickers", sig.NotReady).Debug("Skipped tickers with undefined indicators")
	}

	entries, exits, err := normalize(rc, s.Name(), sig)
	if err != nil {
		log.WithError(err).Error("Strategy emitted an invalid candidate")
		return res, err
	}
	logCandidates(log, rc, snaps, entries, exits)

	if err := ctx.Err(); err != nil {
		return res, fmt.Errorf("run cancelled before ledger update: %w", err)
	}

	// 3. Transition
	tr = book.Apply(rc.Today, entries, exits)
	res.Deferred = tr.Deferred
	for _, d := range tr.Deferred {
		log.WithFields(map[string]interface{}{
			"ticker": d.Candidate.Ticker,
			"reason": string(d.Reason),
		}).Info("Candidate deferred")
	}

	res.Entries = book.EntriesOn(rc.Today)
	res.Exits = book.ExitsOn(rc.Today)
	res.Open = book.OpenPositions()

	// 4. Persist
	res.Paths = reportPaths(outputDir, ledgerPath, rc)
	if err := persist(res.Paths, book, res); err != nil {
		log.WithError(err).Error("Failed to persist run output")
		return res, err
	}
	if c := book.Corruption(); c != nil && c.Backup != "" {
		log.WithField("backup", c.Backup).Warn("Corrupt ledger preserved and replaced")
	}

	log.WithFields(map[string]interface{}{
		"entries":  len(res.Entries),
		"exits":    len(res.Exits),
		"open":     len(res.Open),
		"deferred": len(res.Deferred),
		"elapsed":  time.Since(started).String(),
	}).Info("Strategy run completed")

	return res, nil
}

func logCandidates(log *logger.Logger, rc contracts.RunContext, snaps []strategy.Snapshot, entries, exits []contracts.Candidate) {
	atr := make(map[string]float64)
	for _, s := range snaps {
		if contracts.Day(s.Date).Equal(rc.Today) {
			atr[s.Ticker] = s.ATR
		}
	}

	for _, c := range entries {
		log.WithFields(map[string]interface{}{
			"ticker": c.Ticker,
			"price":  c.Price,
			"atr":    atr[c.Ticker],
			"rule":   c.Rule,
		}).Info("Entry signal")
	}
	for _, c := range exits {
		log.WithFields(map[string]interface{}{
			"ticker": c.Ticker,
			"price":  c.Price,
			"reason": string(c.Reason),
			"rule":   c.Rule,
		}).Info("Exit signal")
	}
}
