package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/swing/internal/ledger"
	"github.com/wonny/swing/internal/runner"
)

// migrateCmd represents the migrate command
var migrateCmd = &cobra.Command{
	Use:   "migrate [strategy]",
	Short: "ledger를 표준 스키마로 재작성",
	Long: `구버전 ledger(Status 누락, 소문자 티커, 열 순서 상이)를 읽어
표준 헤더로 다시 저장합니다. 손상된 파일은 건드리지 않고 실패합니다.

Example:
  go run ./cmd/swing migrate rsi2_us`,
	Args: cobra.ExactArgs(1),
	RunE: migrateLedger,
}

var migrateDryRun bool

func init() {
	rootCmd.AddCommand(migrateCmd)
	migrateCmd.Flags().BoolVar(&migrateDryRun, "dry-run", false, "report without writing")
}

func migrateLedger(cmd *cobra.Command, args []string) error {
	a, err := loadBase()
	if err != nil {
		return err
	}
	name := args[0]
	if _, ok := a.strategies.Get(name); !ok {
		return fmt.Errorf("strategy %q is not defined", name)
	}

	defer a.Close()

	r, err := runner.New(a.cfg, a.strategies, runner.Deps{Logger: a.log, Cache: a.openCache(cmd.Context())})
	if err != nil {
		return err
	}
	ledgerPath, _ := r.Paths(name, runner.Options{})

	start := time.Now()
	book, err := ledger.Load(ledgerPath, ledger.LoadOptions{Strict: true, Logger: a.log})
	if err != nil {
		return err
	}
	if err := book.Validate(); err != nil {
		PrintWarning(err.Error())
	}

	if migrateDryRun {
		PrintInfo(fmt.Sprintf("%s: %d rows would be written to %s", name, book.Len(), ledgerPath))
		return nil
	}

	if err := book.Save(ledgerPath); err != nil {
		return fmt.Errorf("save ledger: %w", err)
	}
	// 캐시된 요약은 재작성 전 ledger 기준
	if err := r.ForgetLastRun(cmd.Context(), name); err != nil {
		a.log.WithError(err).Warn("Failed to drop cached run summary")
	}
	PrintSuccess(fmt.Sprintf("%s: %d rows written to %s in %.2fs", name, book.Len(), ledgerPath, time.Since(start).Seconds()))
	return nil
}
