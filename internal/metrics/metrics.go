// Package metrics records per-run counters for strategy runs and exports them
// in the Prometheus text format (node_exporter textfile collector).
package metrics

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// RunStats is what the engine reports after a run
type RunStats struct {
	Today     time.Time
	Entries   int // rows opened by this run
	Exits     int // rows closed by this run
	Deferred  int
	Open      int
	Recovered bool
}

// Recorder holds all swing metrics on a private registry.
// A nil *Recorder is valid and records nothing.
type Recorder struct {
	registry *prometheus.Registry

	RunsTotal        *prometheus.CounterVec
	RunDuration      *prometheus.HistogramVec
	Transitions      *prometheus.CounterVec
	OpenPositions    *prometheus.GaugeVec
	LedgerRecoveries *prometheus.CounterVec
	LastRunDate      *prometheus.GaugeVec
}

// New creates a Recorder with every metric registered
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),

		RunsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "swing_runs_total",
				Help: "Strategy runs by result",
			},
			[]string{"strategy", "result"},
		),

		RunDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "swing_run_duration_seconds",
				Help:    "Wall time of one strategy run",
				Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
			},
			[]string{"strategy"},
		),

		Transitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "swing_transitions_total",
				Help: "Applied entries, exits and deferred candidates",
			},
			[]string{"strategy", "kind"},
		),

		OpenPositions: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "swing_open_positions",
				Help: "Open positions after the last run",
			},
			[]string{"strategy"},
		),

		LedgerRecoveries: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "swing_ledger_recoveries_total",
				Help: "Corrupt ledgers replaced by an empty ledger",
			},
			[]string{"strategy"},
		),

		LastRunDate: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "swing_last_run_date_seconds",
				Help: "Trading date (unix seconds) of the last successful run",
			},
			[]string{"strategy"},
		),
	}

	r.registry.MustRegister(
		r.RunsTotal,
		r.RunDuration,
		r.Transitions,
		r.OpenPositions,
		r.LedgerRecoveries,
		r.LastRunDate,
	)
	return r
}

// Registry exposes the underlying registry
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

// ObserveRun records one finished run
func (r *Recorder) ObserveRun(strategy string, stats RunStats, elapsed time.Duration, err error) {
	if r == nil {
		return
	}

	r.RunDuration.WithLabelValues(strategy).Observe(elapsed.Seconds())
	if err != nil {
		r.RunsTotal.WithLabelValues(strategy, "error").Inc()
		return
	}
	r.RunsTotal.WithLabelValues(strategy, "success").Inc()

	r.Transitions.WithLabelValues(strategy, "entry").Add(float64(stats.Entries))
	r.Transitions.WithLabelValues(strategy, "exit").Add(float64(stats.Exits))
	r.Transitions.WithLabelValues(strategy, "deferred").Add(float64(stats.Deferred))
	r.OpenPositions.WithLabelValues(strategy).Set(float64(stats.Open))
	if stats.Recovered {
		r.LedgerRecoveries.WithLabelValues(strategy).Inc()
	}
	if !stats.Today.IsZero() {
		r.LastRunDate.WithLabelValues(strategy).Set(float64(stats.Today.Unix()))
	}
}

// WriteTextfile writes all metrics to path in the Prometheus text format
func (r *Recorder) WriteTextfile(path string) error {
	if r == nil {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create metrics dir: %w", err)
	}
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
