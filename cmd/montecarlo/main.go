package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/quantlab/backtest-engine/cmd/common"
	"github.com/quantlab/backtest-engine/internal/backtest"
	"github.com/quantlab/backtest-engine/internal/logger"
	"github.com/quantlab/backtest-engine/internal/montecarlo"
	"github.com/quantlab/backtest-engine/pkg/reporting"
)

func main() {
	var (
		flags       common.Flags
		runs        int
		method      string
		seed        uint
		seeded      bool
		confidence  string
		metricsAddr string
	)
	flag.StringVar(&flags.ConfigFile, "config", "", "run config file (.json or .yaml)")
	flag.StringVar(&flags.DataFile, "data", "", "candle CSV file")
	flag.StringVar(&flags.Symbol, "symbol", "", "symbol, e.g. BTCUSDT")
	flag.StringVar(&flags.Timeframe, "timeframe", "", "timeframe, e.g. 1h")
	flag.StringVar(&flags.Strategy, "strategy", "", "strategy name")
	flag.IntVar(&runs, "runs", 1000, "number of simulation runs")
	flag.StringVar(&method, "method", string(montecarlo.MethodBootstrap), "resampling method: BOOTSTRAP, SHUFFLE or PARAMETRIC")
	flag.UintVar(&seed, "seed", 0, "RNG seed for reproducible runs (omit for a time-based seed)")
	flag.StringVar(&confidence, "confidence", "0.90,0.95", "comma-separated confidence levels")
	flag.StringVar(&metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address")
	flag.Parse()
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "seed" {
			seeded = true
		}
	})

	log := logger.New("montecarlo-cli")

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

	mcCfg := montecarlo.Config{
		Runs:             runs,
		Method:           montecarlo.Method(strings.ToUpper(method)),
		ConfidenceLevels: parseLevels(confidence, log),
	}
	if seeded {
		s := uint32(seed)
		mcCfg.Seed = &s
	}

	sim := montecarlo.NewSimulator(log)
	mcResult, err := sim.RunSimulation(ctx, result, mcCfg)
	if err != nil {
		log.Error("simulation: %v", err)
		os.Exit(1)
	}
	reporting.PrintMonteCarloResult(mcResult)
}

func parseLevels(s string, log *logger.Logger) []float64 {
	var levels []float64
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		v, err := strconv.ParseFloat(part, 64)
		if err != nil || v <= 0 || v >= 1 {
			log.Warn("ignoring confidence level %q", part)
			continue
		}
		levels = append(levels, v)
	}
	return levels
}
