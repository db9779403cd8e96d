package engine

import (
	"fmt"
	"path/filepath"

	"github.com/wonny/swing/internal/contracts"
	"github.com/wonny/swing/internal/ledger"
	"github.com/wonny/swing/pkg/atomicfile"
)

var (
	fillHeader = []string{"Ticker", "Date", "Price", "Rule"}
	openHeader = []string{"Ticker", "EntryDate", "EntryPrice", "Status"}
)

// ReportPaths are the files written by one run
type ReportPaths struct {
	Entries string `json:"entries"`
	Exits   string `json:"exits"`
	Open    string `json:"open_positions"`
	Ledger  string `json:"ledger"`
}

func reportPaths(outputDir, ledgerPath string, rc contracts.RunContext) ReportPaths {
	today := rc.TodayString()
	return ReportPaths{
		Entries: filepath.Join(outputDir, fmt.Sprintf("entries_%s.csv", today)),
		Exits:   filepath.Join(outputDir, fmt.Sprintf("exits_%s.csv", today)),
		Open:    filepath.Join(outputDir, fmt.Sprintf("open_positions_%s.csv", today)),
		Ledger:  ledgerPath,
	}
}

func fillRows(fills []ledger.Fill) [][]string {
	rows := make([][]string, len(fills))
	for i, f := range fills {
		rows[i] = []string{f.Ticker, ledger.FormatDate(f.Date), ledger.FormatPrice(f.Price), f.Rule}
	}
	return rows
}

func openRows(records []contracts.PositionRecord) [][]string {
	rows := make([][]string, len(records))
	for i, r := range records {
		rows[i] = []string{r.Ticker, ledger.FormatDate(r.EntryDate), ledger.FormatPrice(r.EntryPrice), string(r.Status)}
	}
	return rows
}

// persist writes the three reports and then the ledger, each atomically
func persist(paths ReportPaths, book *ledger.Ledger, res *RunResult) error {
	writes := []struct {
		path   string
		header []string
		rows   [][]string
	}{
		{paths.Entries, fillHeader, fillRows(res.Entries)},
		{paths.Exits, fillHeader, fillRows(res.Exits)},
		{paths.Open, openHeader, openRows(res.Open)},
	}

	for _, w := range writes {
		if err := atomicfile.WriteCSV(w.path, w.header, w.rows); err != nil {
			return &PersistenceError{Path: w.path, Err: err}
		}
	}

	// ⭐ ledger는 마지막에 저장 (리포트 실패 시 이전 상태 유지)
	if err := book.Save(paths.Ledger); err != nil {
		return &PersistenceError{Path: paths.Ledger, Err: err}
	}
	return nil
}
