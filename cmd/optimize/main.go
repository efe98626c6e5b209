package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/quantlab/backtest-engine/cmd/common"
	"github.com/quantlab/backtest-engine/internal/backtest"
	"github.com/quantlab/backtest-engine/internal/logger"
	"github.com/quantlab/backtest-engine/pkg/optimization"
	"github.com/quantlab/backtest-engine/pkg/reporting"
)

func main() {
	var (
		flags       common.Flags
		objective   string
		paramSpec   string
		outputDir   string
		metricsAddr string
	)
	flag.StringVar(&flags.ConfigFile, "config", "", "run config file (.json or .yaml)")
	flag.StringVar(&flags.DataFile, "data", "", "candle CSV file")
	flag.StringVar(&flags.Symbol, "symbol", "", "symbol, e.g. BTCUSDT")
	flag.StringVar(&flags.Timeframe, "timeframe", "", "timeframe, e.g. 1h")
	flag.StringVar(&flags.Strategy, "strategy", "", "strategy name")
	flag.StringVar(&objective, "objective", optimization.DefaultObjective, "objective metric to maximize")
	flag.StringVar(&paramSpec, "params", "", "sweep ranges as name:min:max:step[,name:min:max:step...]")
	flag.StringVar(&outputDir, "output", "", "output directory (default results/<symbol>/<timeframe>/<stamp>)")
	flag.StringVar(&metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address")
	flag.Parse()

	log := logger.New("optimize-cli")

	cfg, err := common.ResolveConfig(flags)
	if err != nil {
		log.Error("config: %v", err)
		os.Exit(1)
	}
	common.ServeMetrics(metricsAddr, log)

	params, err := parseParamSpec(paramSpec)
	if err != nil {
		log.Error("params: %v", err)
		os.Exit(1)
	}
	if len(params) == 0 {
		log.Error("params: at least one sweep range is required, e.g. -params fast_period:5:20:1")
		os.Exit(1)
	}

	// SIGINT cancels the sweep; the optimizer returns the best candidate
	// found so far.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	bars, err := common.LoadBars(ctx, cfg, log)
	if err != nil {
		log.Error("data: %v", err)
		os.Exit(1)
	}

	strat, err := common.NewStrategy(cfg)
	if err != nil {
		log.Error("strategy: %v", err)
		os.Exit(1)
	}

	engine := backtest.NewEngine(common.EngineConfig(cfg), log)
	optimizer := optimization.NewOptimizer(engine, log)

	summary, err := optimizer.Optimize(ctx, bars, strat, optimization.Config{
		Parameters: params,
		Objective:  objective,
	}, func(completed, total int) {
		if completed%10 == 0 || completed == total {
			log.Info("progress: %d/%d candidates", completed, total)
		}
	})
	if err != nil {
		log.Error("optimize: %v", err)
		os.Exit(1)
	}

	reporting.PrintOptimizationSummary(summary)

	if outputDir == "" {
		outputDir = reporting.DefaultOutputDir(cfg.Symbol, cfg.Timeframe, time.Now())
	}
	if err := reporting.WriteBestConfigJSON(summary, reporting.BestConfigPath(outputDir)); err != nil {
		log.Error("write best config: %v", err)
		os.Exit(1)
	}
	if summary.BestResult != nil {
		if err := reporting.WriteTradesCSV(summary.BestResult, reporting.TradesCSVPath(outputDir)); err != nil {
			log.Error("write trades: %v", err)
			os.Exit(1)
		}
	}
	fmt.Printf("results written to %s\n", outputDir)
}

// parseParamSpec parses "name:min:max:step" tuples separated by commas.
func parseParamSpec(spec string) ([]optimization.Parameter, error) {
	if strings.TrimSpace(spec) == "" {
		return nil, nil
	}

	var params []optimization.Parameter
	for _, tuple := range strings.Split(spec, ",") {
		parts := strings.Split(strings.TrimSpace(tuple), ":")
		if len(parts) != 4 {
			return nil, fmt.Errorf("bad range %q: want name:min:max:step", tuple)
		}
		values := make([]float64, 3)
		for i, raw := range parts[1:] {
			v, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return nil, fmt.Errorf("bad range %q: %v", tuple, err)
			}
			values[i] = v
		}
		params = append(params, optimization.Parameter{
			Name: parts[0],
			Min:  values[0],
			Max:  values[1],
			Step: values[2],
		})
	}
	return params, nil
}
