package commands

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/wonny/swing/internal/engine"
	"github.com/wonny/swing/internal/ledger"
)

// ═══════════════════════════════════════════════════════════
// Common Formatting Utilities
// 모든 커맨드가 동일한 출력 포맷을 사용하도록 통일
// ═══════════════════════════════════════════════════════════

// printRunSummary prints Today, counts and file paths of one run
func printRunSummary(res *engine.RunResult) {
	fmt.Println()
	PrintDoubleSeparator()
	fmt.Printf("  %s  (Today %s)\n", res.Strategy, ledger.FormatDate(res.Today))
	PrintSeparator()
	PrintKeyValue("Run ID", res.RunID, 9)
	PrintKeyValue("Entries", fmt.Sprintf("%d", len(res.Entries)), 9)
	PrintKeyValue("Exits", fmt.Sprintf("%d", len(res.Exits)), 9)
	PrintKeyValue("Open", fmt.Sprintf("%d", len(res.Open)), 9)
	if len(res.Deferred) > 0 {
		PrintKeyValue("Deferred", fmt.Sprintf("%d", len(res.Deferred)), 9)
	}
	if len(res.NotReady) > 0 {
		PrintKeyValue("NotReady", strings.Join(res.NotReady, ", "), 9)
	}

	if len(res.Entries) > 0 || len(res.Exits) > 0 {
		fmt.Println()
		widths := []int{4, 8, 10, 48}
		PrintTableHeader([]string{"Side", "Ticker", "Price", "Rule"}, widths)
		for _, f := range res.Entries {
			PrintTableRow([]string{"BUY", f.Ticker, ledger.FormatPrice(f.Price), f.Rule}, widths)
		}
		for _, f := range res.Exits {
			PrintTableRow([]string{"SELL", f.Ticker, ledger.FormatPrice(f.Price), f.Rule}, widths)
		}
	}

	PrintSeparator()
	PrintList([]string{res.Paths.Entries, res.Paths.Exits, res.Paths.Open, res.Paths.Ledger})
	if res.LedgerRecovered {
		PrintWarning("Ledger was corrupt and has been reset; the old file was kept as a .corrupt backup")
	}
}

// printJSON writes v as indented JSON to stdout
func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// maskPassword hides the password part of a connection URL
func maskPassword(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.User == nil {
		return raw
	}
	if _, ok := u.User.Password(); ok {
		u.User = url.UserPassword(u.User.Username(), "xxxxx")
	}
	return u.String()
}

// PrintSeparator prints a visual separator
func PrintSeparator() {
	fmt.Println("───────────────────────────────────────────────────────────")
}

// PrintDoubleSeparator prints a double-line separator
func PrintDoubleSeparator() {
	fmt.Println("═══════════════════════════════════════════════════════════")
}

// PrintWarning prints a warning message
func PrintWarning(message string) {
	fmt.Println()
	fmt.Printf("⚠️  %s\n", message)
	fmt.Println()
}

// PrintSuccess prints a success message
func PrintSuccess(message string) {
	fmt.Printf("✅ %s\n", message)
}

// PrintError prints an error message
func PrintError(message string) {
	fmt.Fprintf(os.Stderr, "❌ %s\n", message)
}

// PrintInfo prints an info message
func PrintInfo(message string) {
	fmt.Printf("ℹ️  %s\n", message)
}

// PrintTableHeader prints a table header
func PrintTableHeader(columns []string, widths []int) {
	PrintTableRow(columns, widths)

	totalWidth := 0
	for i, width := range widths {
		totalWidth += width
		if i < len(widths)-1 {
			totalWidth += 2 // spacing
		}
	}
	fmt.Println(strings.Repeat("─", totalWidth))
}

// PrintTableRow prints a table row
func PrintTableRow(values []string, widths []int) {
	for i, val := range values {
		fmt.Printf("%-*s", widths[i], val)
		if i < len(values)-1 {
			fmt.Print("  ")
		}
	}
	fmt.Println()
}

// PrintList prints a bulleted list
func PrintList(items []string) {
	for _, item := range items {
		fmt.Printf("   • %s\n", item)
	}
}

// PrintKeyValue prints key-value pairs
func PrintKeyValue(key string, value string, keyWidth int) {
	fmt.Printf("   %-*s : %s\n", keyWidth, key, value)
}
