package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/swing/internal/runner"
	"github.com/wonny/swing/internal/strategyconfig"
	"github.com/wonny/swing/pkg/database"
)

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "설정 점검",
}

// configCheckCmd represents the config check command
var configCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "환경변수와 strategies.yaml 검증",
	Long: `설정을 검증하고 전략별 경로를 표시합니다.

이 명령어는:
- .env / 환경변수 로드 및 검증
- strategies.yaml 파싱 (알 수 없는 필드는 에러)
- 전략별 ledger / output 경로와 include-set 크기 표시
- PRICE_SOURCE=postgres 이면 DB 연결과 최신 일봉 날짜 확인

Example:
  go run ./cmd/swing config check`,
	Args: cobra.NoArgs,
	RunE: checkConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configCheckCmd)
}

func checkConfig(cmd *cobra.Command, args []string) error {
	fmt.Println("=== Swing Config Check ===")

	a, err := loadBase()
	if err != nil {
		PrintError(err.Error())
		return err
	}
	PrintSuccess(fmt.Sprintf("Config loaded (ENV: %s)", a.cfg.Env))

	r, err := runner.New(a.cfg, a.strategies, runner.Deps{Logger: a.log})
	if err != nil {
		return err
	}
	PrintKeyValue("Strategies", a.cfg.StrategyConfigPath, 12)
	PrintKeyValue("Hash", r.ConfigHash()[:12], 12)
	PrintKeyValue("Prices", a.cfg.Prices.Source, 12)

	fmt.Println()
	widths := []int{16, 26, 34, 7}
	PrintTableHeader([]string{"Strategy", "Kind", "Ledger", "Include"}, widths)
	for _, name := range a.strategies.Names() {
		sc, _ := a.strategies.Get(name)
		ledgerPath, _ := r.Paths(name, runner.Options{})

		include := "all"
		if tickers, err := r.Include(name, runner.Options{}); err != nil {
			include = "error"
			PrintWarning(fmt.Sprintf("%s: %v", name, err))
		} else if len(tickers) > 0 {
			include = fmt.Sprintf("%d", len(tickers))
		}
		PrintTableRow([]string{name, sc.Kind, ledgerPath, include}, widths)
	}

	if warnings := strategyconfig.Warn(a.strategies); len(warnings) > 0 {
		fmt.Println()
		for _, w := range warnings {
			PrintInfo(fmt.Sprintf("[%s] %s", w.Code, w.Message))
		}
	}

	if a.cfg.Prices.Source == "postgres" {
		fmt.Println()
		fmt.Printf("Database URL: %s\n", maskPassword(a.cfg.Database.URL))

		ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
		defer cancel()

		db, err := database.New(ctx, a.cfg.Database)
		if err != nil {
			PrintError(err.Error())
			return err
		}
		defer db.Close()

		status, err := db.Check(ctx)
		if err != nil {
			PrintError(err.Error())
			return err
		}
		PrintSuccess(fmt.Sprintf("Database healthy (%v, latest bar %s)",
			status.ResponseTime, status.LatestBar.Format("2006-01-02")))
	}

	return nil
}
