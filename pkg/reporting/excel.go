package reporting

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"github.com/quantlab/backtest-engine/internal/backtest"
	"github.com/quantlab/backtest-engine/internal/errors"
)

const (
	tradesSheet  = "Trades"
	summarySheet = "Summary"
)

// WriteTradesXLSX writes a workbook with the trade ledger and a summary
// sheet of the run metrics.
func WriteTradesXLSX(result *backtest.Result, path string) error {
	f := excelize.NewFile()
	defer f.Close()

	idx, err := f.NewSheet(tradesSheet)
	if err != nil {
		return errors.NewDataError("reporting", "writeTradesXLSX", err)
	}
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
	})
	if err != nil {
		return errors.NewDataError("reporting", "writeTradesXLSX", err)
	}

	headers := []string{"Entry Time", "Exit Time", "Direction", "Entry Price", "Exit Price", "Quantity", "PnL", "PnL %", "Reason"}
	for col, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		f.SetCellValue(tradesSheet, cell, h)
	}
	endHeader, _ := excelize.CoordinatesToCellName(len(headers), 1)
	f.SetCellStyle(tradesSheet, "A1", endHeader, headerStyle)

	for i, tr := range result.Trades {
		row := i + 2
		values := []interface{}{
			tr.OpenTime.UTC().Format("2006-01-02 15:04:05"),
			tr.CloseTime.UTC().Format("2006-01-02 15:04:05"),
			tr.Direction.String(),
			tr.EntryPrice,
			tr.ExitPrice,
			tr.Quantity,
			tr.PnL,
			tr.PnLPercent,
			string(tr.Reason),
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			f.SetCellValue(tradesSheet, cell, v)
		}
	}
	f.SetColWidth(tradesSheet, "A", "B", 20)
	f.SetColWidth(tradesSheet, "C", "I", 14)

	if err := writeSummarySheet(f, result, headerStyle); err != nil {
		return err
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.NewDataError("reporting", "writeTradesXLSX", err)
		}
	}
	if err := f.SaveAs(path); err != nil {
		return errors.NewDataError("reporting", "writeTradesXLSX", err)
	}
	return nil
}

func writeSummarySheet(f *excelize.File, result *backtest.Result, headerStyle int) error {
	if _, err := f.NewSheet(summarySheet); err != nil {
		return errors.NewDataError("reporting", "writeSummarySheet", err)
	}

	m := result.Metrics
	rows := [][2]interface{}{
		{"Strategy", result.Strategy},
		{"Symbol", result.Config.Symbol},
		{"Timeframe", result.Config.Timeframe},
		{"Initial Capital", result.Config.InitialCapital},
		{"Final Capital", m.FinalCapital},
		{"Total Return %", m.TotalReturnPct},
		{"Total PnL", m.TotalPnL},
		{"Sharpe Ratio", m.SharpeRatio},
		{"Max Drawdown %", m.MaxDrawdownPct},
		{"Profit Factor", m.ProfitFactor},
		{"Total Trades", m.TotalTrades},
		{"Win Rate %", m.WinRate},
		{"Winning Trades", m.WinningTrades},
		{"Losing Trades", m.LosingTrades},
		{"Avg Win", m.AvgWin},
		{"Avg Loss", m.AvgLoss},
	}

	f.SetCellValue(summarySheet, "A1", "Metric")
	f.SetCellValue(summarySheet, "B1", "Value")
	f.SetCellStyle(summarySheet, "A1", "B1", headerStyle)
	for i, kv := range rows {
		f.SetCellValue(summarySheet, fmt.Sprintf("A%d", i+2), kv[0])
		f.SetCellValue(summarySheet, fmt.Sprintf("B%d", i+2), kv[1])
	}
	f.SetColWidth(summarySheet, "A", "A", 22)
	f.SetColWidth(summarySheet, "B", "B", 16)
	return nil
}
