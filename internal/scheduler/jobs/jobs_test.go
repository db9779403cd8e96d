package jobs

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/swing/internal/engine"
	"github.com/wonny/swing/internal/metrics"
	"github.com/wonny/swing/internal/runner"
	"github.com/wonny/swing/pkg/logger"
)

type fakeRunner struct {
	calls []string
	err   error
}

func (f *fakeRunner) Run(ctx context.Context, name string, opts runner.Options) (*engine.RunResult, error) {
	f.calls = append(f.calls, name)
	if f.err != nil {
		return nil, f.err
	}
	return &engine.RunResult{Strategy: name, Today: time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC)}, nil
}

func TestStrategyRunJob(t *testing.T) {
	fr := &fakeRunner{}
	job := NewStrategyRunJob(fr, "rsi2_us", "0 30 17 * * 1-5", logger.Nop())

	assert.Equal(t, "strategy_run:rsi2_us", job.Name())
	assert.Equal(t, "0 30 17 * * 1-5", job.Schedule())

	require.NoError(t, job.Run(context.Background()))
	assert.Equal(t, []string{"rsi2_us"}, fr.calls)
}

func TestStrategyRunJob_Error(t *testing.T) {
	fr := &fakeRunner{err: errors.New("boom")}
	job := NewStrategyRunJob(fr, "double_seven", "@daily", logger.Nop())

	err := job.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "double_seven")
	assert.ErrorIs(t, err, fr.err)
}

func TestMetricsTextfileJob(t *testing.T) {
	rec := metrics.New()
	rec.ObserveRun("rsi2_us", metrics.RunStats{}, time.Second, nil)

	path := filepath.Join(t.TempDir(), "prom", "swing.prom")
	job := NewMetricsTextfileJob(rec, path, logger.Nop())
	assert.Equal(t, "metrics_textfile", job.Name())

	require.NoError(t, job.Run(context.Background()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "swing_runs_total")
}
