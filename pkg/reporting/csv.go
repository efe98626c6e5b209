package reporting

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"github.com/quantlab/backtest-engine/internal/backtest"
	"github.com/quantlab/backtest-engine/internal/errors"
)

// WriteTradesCSV writes the closed-trade ledger to path, one row per trade.
func WriteTradesCSV(result *backtest.Result, path string) error {
	f, err := createFile(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	header := []string{"entry_time", "exit_time", "direction", "entry_price", "exit_price", "quantity", "pnl", "pnl_pct", "reason"}
	if err := w.Write(header); err != nil {
		return errors.NewDataError("reporting", "writeTradesCSV", err)
	}

	for _, tr := range result.Trades {
		row := []string{
			tr.OpenTime.UTC().Format("2006-01-02 15:04:05"),
			tr.CloseTime.UTC().Format("2006-01-02 15:04:05"),
			tr.Direction.String(),
			fmt.Sprintf("%.8f", tr.EntryPrice),
			fmt.Sprintf("%.8f", tr.ExitPrice),
			fmt.Sprintf("%.8f", tr.Quantity),
			fmt.Sprintf("%.2f", tr.PnL),
			fmt.Sprintf("%.4f", tr.PnLPercent),
			string(tr.Reason),
		}
		if err := w.Write(row); err != nil {
			return errors.NewDataError("reporting", "writeTradesCSV", err)
		}
	}
	return nil
}

// WriteEquityCSV writes the equity curve to path, one row per bar close.
func WriteEquityCSV(result *backtest.Result, path string) error {
	f, err := createFile(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write([]string{"timestamp", "equity"}); err != nil {
		return errors.NewDataError("reporting", "writeEquityCSV", err)
	}
	for _, p := range result.Equity {
		row := []string{
			fmt.Sprintf("%d", p.Timestamp.UnixMilli()),
			fmt.Sprintf("%.2f", p.Equity),
		}
		if err := w.Write(row); err != nil {
			return errors.NewDataError("reporting", "writeEquityCSV", err)
		}
	}
	return nil
}

func createFile(path string) (*os.File, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, errors.NewDataError("reporting", "createFile", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, errors.NewDataError("reporting", "createFile", err)
	}
	return f, nil
}
