package metrics

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// value finds a sample by metric name and label values
func value(t *testing.T, r *Recorder, name string, labels map[string]string) float64 {
	t.Helper()

	families, err := r.Registry().Gather()
	require.NoError(t, err)

	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
	metrics:
		for _, m := range mf.GetMetric() {
			for _, lp := range m.GetLabel() {
				if want, ok := labels[lp.GetName()]; ok && want != lp.GetValue() {
					continue metrics
				}
			}
			switch {
			case m.GetCounter() != nil:
				return m.GetCounter().GetValue()
			case m.GetGauge() != nil:
				return m.GetGauge().GetValue()
			}
		}
	}
	t.Fatalf("metric %s %v not found", name, labels)
	return 0
}

func TestObserveRun(t *testing.T) {
	r := New()
	today := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	r.ObserveRun("rsi2_us", RunStats{Today: today, Entries: 2, Exits: 1, Deferred: 1, Open: 4, Recovered: true}, time.Second, nil)
	r.ObserveRun("rsi2_us", RunStats{}, time.Second, errors.New("boom"))

	assert.Equal(t, 1.0, value(t, r, "swing_runs_total", map[string]string{"strategy": "rsi2_us", "result": "success"}))
	assert.Equal(t, 1.0, value(t, r, "swing_runs_total", map[string]string{"strategy": "rsi2_us", "result": "error"}))
	assert.Equal(t, 2.0, value(t, r, "swing_transitions_total", map[string]string{"strategy": "rsi2_us", "kind": "entry"}))
	assert.Equal(t, 4.0, value(t, r, "swing_open_positions", map[string]string{"strategy": "rsi2_us"}))
	assert.Equal(t, 1.0, value(t, r, "swing_ledger_recoveries_total", map[string]string{"strategy": "rsi2_us"}))
	assert.Equal(t, float64(today.Unix()), value(t, r, "swing_last_run_date_seconds", map[string]string{"strategy": "rsi2_us"}))
}

func TestWriteTextfile(t *testing.T) {
	r := New()
	r.ObserveRun("double_seven", RunStats{Open: 1}, 10*time.Millisecond, nil)

	path := filepath.Join(t.TempDir(), "out", "swing.prom")
	require.NoError(t, r.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "# TYPE swing_runs_total counter")
	assert.Contains(t, string(data), `strategy="double_seven"`)
}

func TestNilRecorder(t *testing.T) {
	var r *Recorder
	assert.NotPanics(t, func() {
		r.ObserveRun("x", RunStats{}, time.Second, nil)
	})
	assert.NoError(t, r.WriteTextfile(filepath.Join(t.TempDir(), "x.prom")))
	assert.Nil(t, r.Registry())
}
