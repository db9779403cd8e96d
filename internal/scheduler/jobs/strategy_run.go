package jobs

import (
	"context"
	"fmt"

	"github.com/wonny/swing/internal/contracts"
	"github.com/wonny/swing/internal/engine"
	"github.com/wonny/swing/internal/runner"
	"github.com/wonny/swing/pkg/logger"
)

// StrategyRunner is the part of runner.Runner a scheduled run needs
type StrategyRunner interface {
	Run(ctx context.Context, name string, opts runner.Options) (*engine.RunResult, error)
}

// StrategyRunJob runs one configured strategy on its cron schedule
type StrategyRunJob struct {
	runner   StrategyRunner
	strategy string
	schedule string
	logger   *logger.Logger
}

// NewStrategyRunJob creates a new strategy run job
func NewStrategyRunJob(r StrategyRunner, strategy, schedule string, log *logger.Logger) *StrategyRunJob {
	return &StrategyRunJob{
		runner:   r,
		strategy: strategy,
		schedule: schedule,
		logger:   log,
	}
}

// Name returns the job name
func (j *StrategyRunJob) Name() string {
	return "strategy_run:" + j.strategy
}

// Schedule returns the cron schedule from the strategy config
func (j *StrategyRunJob) Schedule() string {
	return j.schedule
}

// Run executes the strategy
func (j *StrategyRunJob) Run(ctx context.Context) error {
	res, err := j.runner.Run(ctx, j.strategy, runner.Options{})
	if err != nil {
		return fmt.Errorf("strategy %s: %w", j.strategy, err)
	}

	j.logger.WithFields(map[string]interface{}{
		"strategy": j.strategy,
		"today":    res.Today.Format(contracts.DateLayout),
		"entries":  len(res.Entries),
		"exits":    len(res.Exits),
		"open":     len(res.Open),
	}).Info("Scheduled strategy run completed")

	return nil
}
