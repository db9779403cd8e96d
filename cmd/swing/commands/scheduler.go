package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/wonny/swing/internal/scheduler"
	"github.com/wonny/swing/internal/scheduler/jobs"
	"github.com/wonny/swing/internal/strategyconfig"
	"github.com/wonny/swing/pkg/config"
	"github.com/wonny/swing/pkg/logger"
)

// schedulerCmd represents the scheduler command
var schedulerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "스케줄러 관리",
	Long: `전략별 schedule(cron, 초 단위 포함)에 따라 전략을 자동 실행합니다.

Subcommands:
  start   - 스케줄러 시작
  list    - 등록된 작업 목록

Example:
  go run ./cmd/swing scheduler start
  go run ./cmd/swing scheduler list`,
}

var (
	schedulerStartCmd = &cobra.Command{
		Use:   "start",
		Short: "스케줄러 시작",
		Long: `스케줄러를 시작하고 등록된 모든 작업을 스케줄합니다.

등록되는 작업:
- strategy_run:<name>: strategies.yaml의 schedule이 있는 전략마다 하나
- metrics_textfile: 5분마다 (METRICS_ENABLED=true 일 때)

스케줄러는 Ctrl+C로 종료할 수 있습니다.`,
		RunE: runScheduler,
	}

	schedulerListCmd = &cobra.Command{
		Use:   "list",
		Short: "등록된 작업 목록",
		RunE:  listJobs,
	}
)

func init() {
	rootCmd.AddCommand(schedulerCmd)
	schedulerCmd.AddCommand(schedulerStartCmd)
	schedulerCmd.AddCommand(schedulerListCmd)
}

func runScheduler(cmd *cobra.Command, args []string) error {
	fmt.Println("=== Swing Scheduler ===")

	a, err := bootstrap(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	sched, err := buildScheduler(a.cfg, a.strategies, a.log, func(name, schedule string) scheduler.Job {
		return jobs.NewStrategyRunJob(a.runner, name, schedule, a.log)
	})
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}
	if a.metrics != nil {
		if err := sched.AddJob(jobs.NewMetricsTextfileJob(a.metrics, a.cfg.MetricsTextfile, a.log)); err != nil {
			return err
		}
	}

	sched.Start()

	fmt.Println()
	PrintSuccess("Scheduler started")
	printJobList(sched.ListJobs())
	fmt.Println("\nPress Ctrl+C to stop")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	fmt.Println("\nShutting down scheduler...")
	sched.Stop()
	a.flushMetrics()
	fmt.Println("Scheduler stopped")

	return nil
}

func listJobs(cmd *cobra.Command, args []string) error {
	a, err := loadBase()
	if err != nil {
		return err
	}

	// 목록 조회만: 전략은 실행하지 않음
	sched, err := buildScheduler(a.cfg, a.strategies, a.log, func(name, schedule string) scheduler.Job {
		return jobs.NewStrategyRunJob(nil, name, schedule, a.log)
	})
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}

	sched.Start()
	defer sched.Stop()

	if jsonOutput {
		return printJSON(sched.ListJobs())
	}
	printJobList(sched.ListJobs())
	return nil
}

// buildScheduler registers one job per strategy with a schedule
func buildScheduler(cfg *config.Config, strategies *strategyconfig.Config, log *logger.Logger, newJob func(name, schedule string) scheduler.Job) (*scheduler.Scheduler, error) {
	sched := scheduler.New(log, scheduler.WithRetry(cfg.Scheduler.MaxRetries, cfg.Scheduler.RetryDelay))

	for _, name := range strategies.Names() {
		sc, _ := strategies.Get(name)
		if sc.Schedule == "" {
			continue
		}
		if err := sched.AddJob(newJob(name, sc.Schedule)); err != nil {
			return nil, err
		}
	}

	return sched, nil
}

func printJobList(list []scheduler.JobInfo) {
	fmt.Println("\nRegistered jobs:")
	widths := []int{28, 18, 19}
	PrintTableHeader([]string{"Job", "Schedule", "Next"}, widths)
	for _, j := range list {
		next := "-"
		if !j.Next.IsZero() {
			next = j.Next.Format("2006-01-02 15:04:05")
		}
		PrintTableRow([]string{j.Name, j.Schedule, next}, widths)
	}
}
