package commands

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/swing/internal/scheduler"
	"github.com/wonny/swing/internal/scheduler/jobs"
	"github.com/wonny/swing/internal/strategyconfig"
	"github.com/wonny/swing/pkg/config"
	"github.com/wonny/swing/pkg/logger"
)

func TestMaskPassword(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"postgres://swing:secret@db:5432/prices", "postgres://swing:xxxxx@db:5432/prices"},
		{"postgres://db:5432/prices", "postgres://db:5432/prices"},
		{"", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, maskPassword(tt.in))
	}
}

func TestBuildScheduler(t *testing.T) {
	strategies, err := strategyconfig.Parse([]byte(`
strategies:
  rsi2_us:
    kind: mean_reversion
    schedule: "0 30 17 * * 1-5"
  manual_only:
    kind: double_seven
`))
	require.NoError(t, err)

	cfg := &config.Config{Scheduler: config.SchedulerConfig{MaxRetries: 1, RetryDelay: time.Second}}
	sched, err := buildScheduler(cfg, strategies, logger.Nop(), func(name, schedule string) scheduler.Job {
		return jobs.NewStrategyRunJob(nil, name, schedule, logger.Nop())
	})
	require.NoError(t, err)

	list := sched.ListJobs()
	require.Len(t, list, 1)
	assert.Equal(t, "strategy_run:rsi2_us", list[0].Name)
	assert.Equal(t, "0 30 17 * * 1-5", list[0].Schedule)
}

func TestRootCommandTree(t *testing.T) {
	want := []string{"run", "run-all", "positions", "migrate", "scheduler", "config"}
	for _, name := range want {
		cmd, _, err := rootCmd.Find([]string{name})
		require.NoError(t, err, name)
		assert.Equal(t, name, cmd.Name())
	}
}
