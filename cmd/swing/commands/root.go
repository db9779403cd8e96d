package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wonny/swing/internal/metrics"
	"github.com/wonny/swing/internal/pricedata"
	"github.com/wonny/swing/internal/runner"
	"github.com/wonny/swing/internal/strategyconfig"
	"github.com/wonny/swing/pkg/config"
	"github.com/wonny/swing/pkg/database"
	"github.com/wonny/swing/pkg/logger"
	"github.com/wonny/swing/pkg/redis"
)

var (
	// Global flags
	strategyFile string
	verbose      bool
	jsonOutput   bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "swing",
	Short: "Swing - 일봉 기반 스윙 전략 시그널 엔진",
	Long: `Swing Unified CLI

일봉 데이터로 평균회귀 계열 스윙 전략을 실행하고
전략별 포지션 ledger와 일일 리포트(CSV)를 갱신합니다.

Usage:
  go run ./cmd/swing [command]

Examples:
  go run ./cmd/swing run rsi2_us
  go run ./cmd/swing run-all
  go run ./cmd/swing positions rsi2_us
  go run ./cmd/swing scheduler start`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&strategyFile, "strategies", "", "strategy config YAML (default is $STRATEGY_CONFIG)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "print results as JSON")
}

// app holds everything a command needs. Close releases connections.
type app struct {
	cfg        *config.Config
	log        *logger.Logger
	strategies *strategyconfig.Config
	metrics    *metrics.Recorder
	db         *database.DB
	redis      *redis.Client
	runner     *runner.Runner
}

// loadBase loads env config, logger and strategy config without opening connections
func loadBase() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if verbose {
		cfg.LogLevel = "debug"
	}
	if strategyFile != "" {
		cfg.StrategyConfigPath = strategyFile
	}

	log := logger.New(cfg)

	strategies, _, err := strategyconfig.Load(cfg.StrategyConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load strategy config: %w", err)
	}
	for _, w := range strategyconfig.Warn(strategies) {
		log.WithField("code", w.Code).Warn(w.Message)
	}

	return &app{cfg: cfg, log: log, strategies: strategies}, nil
}

// bootstrap builds the full dependency graph
// 1. config → 2. logger → 3. strategies → 4. price source → 5. redis → 6. metrics → 7. runner
func bootstrap(ctx context.Context) (*app, error) {
	a, err := loadBase()
	if err != nil {
		return nil, err
	}

	var source pricedata.Source
	switch a.cfg.Prices.Source {
	case "postgres":
		db, err := database.New(ctx, a.cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("connect to database: %w", err)
		}
		a.db = db
		source = pricedata.NewPostgresSource(db.Pool, pricedata.DefaultLookbackDays, a.log)
	default:
		source = pricedata.NewCSVSource(a.cfg.Prices.CSVPath, a.log)
	}

	rc, err := redis.New(ctx, a.cfg.Redis)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	a.redis = rc

	if a.cfg.MetricsEnabled {
		a.metrics = metrics.New()
	}

	deps := runner.Deps{
		Source:  source,
		Metrics: a.metrics,
		Logger:  a.log,
	}
	if rc.Enabled() {
		deps.Locker = redis.NewLocker(rc)
		deps.Cache = redis.NewCache(rc)
	}

	a.runner, err = runner.New(a.cfg, a.strategies, deps)
	if err != nil {
		a.Close()
		return nil, err
	}

	a.log.WithFields(map[string]interface{}{
		"prices":      a.cfg.Prices.Source,
		"redis":       rc.Enabled(),
		"metrics":     a.cfg.MetricsEnabled,
		"config_hash": a.runner.ConfigHash()[:12],
	}).Debug("Application initialized")

	return a, nil
}

// openCache connects Redis for commands that only read or drop cached run
// summaries. It returns nil when Redis is disabled or unreachable.
func (a *app) openCache(ctx context.Context) *redis.Cache {
	rc, err := redis.New(ctx, a.cfg.Redis)
	if err != nil {
		a.log.WithError(err).Warn("Redis unavailable, cached run summary skipped")
		return nil
	}
	a.redis = rc
	if !rc.Enabled() {
		return nil
	}
	return redis.NewCache(rc)
}

// flushMetrics writes the textfile when metrics are enabled
func (a *app) flushMetrics() {
	if a.metrics == nil {
		return
	}
	if err := a.metrics.WriteTextfile(a.cfg.MetricsTextfile); err != nil {
		a.log.WithError(err).Warn("Failed to write metrics textfile")
	}
}

// Close releases database and redis connections
func (a *app) Close() {
	if a.db != nil {
		a.db.Close()
	}
	if a.redis != nil {
		_ = a.redis.Close()
	}
}
