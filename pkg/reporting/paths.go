package reporting

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// DefaultOutputDir returns the conventional per-run output directory,
// e.g. results/BTCUSDT/1h/20250115-093042.
func DefaultOutputDir(symbol, timeframe string, at time.Time) string {
	return filepath.Join("results",
		strings.ToUpper(symbol),
		strings.ToLower(timeframe),
		at.UTC().Format("20060102-150405"))
}

// TradesCSVPath returns the trade-ledger filename inside dir.
func TradesCSVPath(dir string) string {
	return filepath.Join(dir, "trades.csv")
}

// EquityCSVPath returns the equity-curve filename inside dir.
func EquityCSVPath(dir string) string {
	return filepath.Join(dir, "equity.csv")
}

// WorkbookPath returns the Excel workbook filename inside dir.
func WorkbookPath(dir, strategy string) string {
	return filepath.Join(dir, fmt.Sprintf("%s.xlsx", strings.ToLower(strategy)))
}

// BestConfigPath returns the optimizer output filename inside dir.
func BestConfigPath(dir string) string {
	return filepath.Join(dir, "best_config.json")
}
