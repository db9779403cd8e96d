package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wonny/swing/internal/contracts"
	"github.com/wonny/swing/internal/ledger"
	"github.com/wonny/swing/internal/runner"
)

// positionsCmd represents the positions command
var positionsCmd = &cobra.Command{
	Use:   "positions [strategy]",
	Short: "전략 ledger 조회",
	Long: `전략의 ledger를 읽어 포지션을 표시합니다. 파일은 수정하지 않습니다.
Redis가 켜져 있으면 마지막 실행 요약도 함께 표시합니다.

Example:
  go run ./cmd/swing positions rsi2_us
  go run ./cmd/swing positions rsi2_us --all`,
	Args: cobra.ExactArgs(1),
	RunE: showPositions,
}

var positionsAll bool

func init() {
	rootCmd.AddCommand(positionsCmd)
	positionsCmd.Flags().BoolVar(&positionsAll, "all", false, "include closed rows")
	positionsCmd.Flags().StringVar(&runLedger, "ledger", "", "ledger CSV path")
}

func showPositions(cmd *cobra.Command, args []string) error {
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
	ledgerPath, _ := r.Paths(name, runner.Options{LedgerPath: runLedger})

	// 조회 전용: 손상 파일을 옮기지 않도록 strict
	book, err := ledger.Load(ledgerPath, ledger.LoadOptions{Strict: true, Logger: a.log})
	if err != nil {
		return err
	}

	rows := book.OpenPositions()
	if positionsAll {
		rows = book.Records()
	}

	last, found, err := r.LastRun(cmd.Context(), name)
	if err != nil {
		a.log.WithError(err).Warn("Failed to read cached run summary")
	}

	if jsonOutput {
		out := positionsView{Strategy: name, Ledger: ledgerPath, Rows: rows}
		if found {
			out.LastRun = last
		}
		return printJSON(out)
	}

	PrintDoubleSeparator()
	fmt.Printf("  %s  (%s)\n", name, ledgerPath)
	PrintSeparator()
	printPositionTable(rows)
	fmt.Println()
	PrintKeyValue("Rows", fmt.Sprintf("%d", book.Len()), 6)
	PrintKeyValue("Open", fmt.Sprintf("%d", len(book.OpenPositions())), 6)
	if found {
		printLastRun(last)
	}
	return nil
}

type positionsView struct {
	Strategy string                     `json:"strategy"`
	Ledger   string                     `json:"ledger"`
	Rows     []contracts.PositionRecord `json:"rows"`
	LastRun  *runner.Summary            `json:"last_run,omitempty"`
}

// printLastRun shows the cached summary. It may predate manual ledger edits.
func printLastRun(s *runner.Summary) {
	PrintSeparator()
	PrintKeyValue("Last run", fmt.Sprintf("%s (%s)", s.Today, s.RunID), 10)
	PrintKeyValue("Entries", fmt.Sprintf("%d", s.Entries), 10)
	PrintKeyValue("Exits", fmt.Sprintf("%d", s.Exits), 10)
	PrintKeyValue("Deferred", fmt.Sprintf("%d", s.Deferred), 10)
	PrintKeyValue("Finished", s.FinishedAt.Local().Format("2006-01-02 15:04:05"), 10)
	if s.Recovered {
		PrintWarning("ledger was recovered from a corrupt file in that run")
	}
}

func printPositionTable(rows []contracts.PositionRecord) {
	widths := []int{8, 10, 10, 6, 10, 10}
	PrintTableHeader([]string{"Ticker", "EntryDate", "EntryPrice", "Status", "ExitDate", "ExitPrice"}, widths)
	for _, r := range rows {
		PrintTableRow([]string{
			r.Ticker,
			ledger.FormatDate(r.EntryDate),
			ledger.FormatPrice(r.EntryPrice),
			string(r.Status),
			ledger.FormatDate(r.ExitDate),
			ledger.FormatPrice(r.ExitPrice),
		}, widths)
	}
}
