package commands

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/wonny/swing/internal/engine"
	"github.com/wonny/swing/internal/ledger"
	"github.com/wonny/swing/internal/runner"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run [strategy]",
	Short: "전략 1회 실행",
	Long: `가격 테이블의 마지막 날짜(Today) 기준으로 전략을 실행합니다.

이 명령어는:
- 가격 테이블 로드 (CSV 또는 PostgreSQL)
- 지표 계산 및 진입/청산 후보 생성
- ledger 갱신 (원자적 교체)
- entries_/exits_/open_positions_<Today>.csv 작성

같은 날짜로 다시 실행해도 ledger는 변하지 않습니다.

Example:
  go run ./cmd/swing run rsi2_us
  go run ./cmd/swing run rsi2_us --prices data/combined.csv --include configs/universe_us.yaml
  go run ./cmd/swing run double_seven --strict`,
	Args: cobra.ExactArgs(1),
	RunE: runStrategy,
}

// runAllCmd represents the run-all command
var runAllCmd = &cobra.Command{
	Use:   "run-all",
	Short: "설정된 모든 전략 실행",
	Long: `strategies.yaml의 모든 전략을 병렬로 실행합니다.
같은 ledger를 쓰는 전략은 순차 실행됩니다.

Example:
  go run ./cmd/swing run-all --workers 4`,
	Args: cobra.NoArgs,
	RunE: runAllStrategies,
}

var (
	runPrices  string
	runInclude string
	runLedger  string
	runOut     string
	runStrict  bool
	runWorkers int
)

func init() {
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(runAllCmd)

	runCmd.Flags().StringVar(&runPrices, "prices", "", "price CSV (overrides PRICE_SOURCE)")
	runCmd.Flags().StringVar(&runInclude, "include", "", "include-set file (txt or yaml)")
	runCmd.Flags().StringVar(&runLedger, "ledger", "", "ledger CSV path")
	runCmd.Flags().StringVar(&runOut, "out", "", "report output directory")
	runCmd.Flags().BoolVar(&runStrict, "strict", false, "fail on a corrupt ledger instead of recovering")

	runAllCmd.Flags().IntVar(&runWorkers, "workers", 4, "concurrent strategies")
}

func runStrategy(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer a.Close()
	defer a.flushMetrics()

	opts := runner.Options{
		PricesPath:  runPrices,
		IncludeFile: runInclude,
		LedgerPath:  runLedger,
		OutputDir:   runOut,
	}
	if cmd.Flags().Changed("strict") {
		opts.Strict = &runStrict
	}

	res, err := a.runner.Run(ctx, args[0], opts)
	if err != nil {
		printRunError(args[0], err)
		return err
	}

	if jsonOutput {
		return printJSON(runner.Summarize(res, a.runner.ConfigHash()))
	}
	printRunSummary(res)
	return nil
}

func runAllStrategies(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer a.Close()
	defer a.flushMetrics()

	outcomes := a.runner.RunAll(ctx, a.strategies.Names(), runWorkers)

	var failed int
	summaries := make([]runner.Summary, 0, len(outcomes))
	for _, o := range outcomes {
		if o.Err != nil {
			failed++
			printRunError(o.Strategy, o.Err)
			continue
		}
		summaries = append(summaries, runner.Summarize(o.Result, a.runner.ConfigHash()))
		if !jsonOutput {
			printRunSummary(o.Result)
		}
	}

	if jsonOutput {
		if err := printJSON(summaries); err != nil {
			return err
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d strategies failed", failed, len(outcomes))
	}
	return nil
}

// printRunError prints a one-line hint per error kind
func printRunError(strategy string, err error) {
	var (
		corrupt   *ledger.CorruptError
		violation *engine.ContractViolation
		persist   *engine.PersistenceError
	)

	switch {
	case errors.As(err, &corrupt):
		PrintError(fmt.Sprintf("%s: ledger is corrupt (%s); rerun without --strict to recover", strategy, corrupt.Path))
	case errors.As(err, &violation):
		PrintError(fmt.Sprintf("%s: strategy produced an invalid signal: %v", strategy, violation))
	case errors.As(err, &persist):
		PrintError(fmt.Sprintf("%s: could not write %s; ledger left unchanged", strategy, persist.Path))
	default:
		PrintError(fmt.Sprintf("%s: %v", strategy, err))
	}
}
