package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/quantlab/backtest-engine/cmd/common"
	"github.com/quantlab/backtest-engine/internal/backtest"
	"github.com/quantlab/backtest-engine/internal/logger"
	"github.com/quantlab/backtest-engine/pkg/orchestrator"
	"github.com/quantlab/backtest-engine/pkg/reporting"
)

func main() {
	var (
		flags       common.Flags
		outputDir   string
		writeXLSX   bool
		metricsAddr string
		analyzeTFs  string
	)
	flag.StringVar(&flags.ConfigFile, "config", "", "run config file (.json or .yaml)")
	flag.StringVar(&flags.DataFile, "data", "", "candle CSV file")
	flag.StringVar(&flags.Symbol, "symbol", "", "symbol, e.g. BTCUSDT")
	flag.StringVar(&flags.Timeframe, "timeframe", "", "timeframe, e.g. 1h")
	flag.StringVar(&flags.Strategy, "strategy", "", "strategy name")
	flag.StringVar(&outputDir, "output", "", "output directory (default results/<symbol>/<timeframe>/<stamp>)")
	flag.BoolVar(&writeXLSX, "xlsx", false, "also write an Excel workbook")
	flag.StringVar(&metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address, e.g. :9090")
	flag.StringVar(&analyzeTFs, "analyze-timeframes", "", "also run the strategy on these resampled timeframes, e.g. 15m,1h,4h")
	flag.Parse()

	log := logger.New("backtest-cli")

	cfg, err := common.ResolveConfig(flags)
	if err != nil {
		log.Error("config: %v", err)
		os.Exit(1)
	}
	common.ServeMetrics(metricsAddr, log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	bars, err := common.LoadBars(ctx, cfg, log)
	if err != nil {
		log.Error("data: %v", err)
		os.Exit(1)
	}
	log.Info("loaded %d bars for %s %s", len(bars), cfg.Symbol, cfg.Timeframe)

	strat, err := common.NewStrategy(cfg)
	if err != nil {
		log.Error("strategy: %v", err)
		os.Exit(1)
	}

	engine := backtest.NewEngine(common.EngineConfig(cfg), log)
	result, err := engine.Run(ctx, bars, strat)
	if err != nil {
		log.Error("run: %v", err)
		os.Exit(1)
	}

	reporting.PrintBacktestResult(result)

	if analyzeTFs != "" {
		analyzer := orchestrator.NewAnalyzer(common.EngineConfig(cfg), log)
		analysis, err := analyzer.AnalyzeTimeframes(ctx, bars, strings.Split(analyzeTFs, ","), strat, "")
		if err != nil {
			log.Error("timeframe analysis: %v", err)
			os.Exit(1)
		}
		reporting.PrintTimeframeAnalysis(analysis)
	}

	if outputDir == "" {
		outputDir = reporting.DefaultOutputDir(cfg.Symbol, cfg.Timeframe, time.Now())
	}
	if err := reporting.WriteTradesCSV(result, reporting.TradesCSVPath(outputDir)); err != nil {
		log.Error("write trades: %v", err)
		os.Exit(1)
	}
	if err := reporting.WriteEquityCSV(result, reporting.EquityCSVPath(outputDir)); err != nil {
		log.Error("write equity: %v", err)
		os.Exit(1)
	}
	if writeXLSX {
		path := reporting.WorkbookPath(outputDir, result.Strategy)
		if err := reporting.WriteTradesXLSX(result, path); err != nil {
			log.Error("write workbook: %v", err)
			os.Exit(1)
		}
	}
	fmt.Printf("results written to %s\n", outputDir)
}
