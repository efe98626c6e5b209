// Package common holds the wiring shared by the backtest, montecarlo and
// optimize commands: config resolution, data loading and metrics serving.
package common

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/quantlab/backtest-engine/internal/backtest"
	"github.com/quantlab/backtest-engine/internal/logger"
	"github.com/quantlab/backtest-engine/internal/monitoring"
	"github.com/quantlab/backtest-engine/internal/strategy"
	"github.com/quantlab/backtest-engine/pkg/config"
	"github.com/quantlab/backtest-engine/pkg/data"
	"github.com/quantlab/backtest-engine/pkg/types"
)

// Flags are the command-line settings shared by every command. Non-empty
// values override the file config.
type Flags struct {
	ConfigFile string
	DataFile   string
	Symbol     string
	Timeframe  string
	Strategy   string
}

// ResolveConfig merges, in increasing precedence: defaults, the config file,
// environment overrides and command-line flags.
func ResolveConfig(flags Flags) (config.RunConfig, error) {
	config.LoadEnv()

	cfg := config.Default()
	if flags.ConfigFile != "" {
		loaded, err := config.Load(flags.ConfigFile)
		if err != nil {
			return cfg, err
		}
		cfg = loaded
	}

	if flags.DataFile != "" {
		cfg.DataFile = flags.DataFile
	}
	if flags.Symbol != "" {
		cfg.Symbol = flags.Symbol
	}
	if flags.Timeframe != "" {
		cfg.Timeframe = flags.Timeframe
	}
	if flags.Strategy != "" {
		cfg.Strategy = flags.Strategy
	}

	return cfg, cfg.Validate()
}

// LoadBars builds the data pipeline for cfg and returns the validated,
// date-filtered bars.
func LoadBars(ctx context.Context, cfg config.RunConfig, log *logger.Logger) ([]types.Bar, error) {
	provider := data.NewFileProvider(cfg.DataFile, log)
	manager := data.NewManager(provider, log).
		WithCache(data.NewLRUCache(data.DefaultCacheCapacity))

	start, err := cfg.StartTime()
	if err != nil {
		return nil, err
	}
	end, err := cfg.EndTime()
	if err != nil {
		return nil, err
	}

	bars, err := manager.FetchHistoricalData(ctx, cfg.Symbol, cfg.Timeframe, start, end, 0)
	if err != nil {
		return nil, err
	}
	if len(bars) == 0 {
		return nil, fmt.Errorf("no bars loaded from %s for %s %s", cfg.DataFile, cfg.Symbol, cfg.Timeframe)
	}

	interval, err := data.ParseTimeframe(cfg.Timeframe)
	if err != nil {
		return nil, err
	}
	if gaps := manager.FindDataGaps(bars, interval); len(gaps) > 0 {
		log.Warn("detected %d gaps in %s %s data", len(gaps), cfg.Symbol, cfg.Timeframe)
	}
	return bars, nil
}

// EngineConfig maps the run config onto the runtime config.
func EngineConfig(cfg config.RunConfig) backtest.Config {
	return backtest.Config{
		Symbol:          cfg.Symbol,
		Timeframe:       cfg.Timeframe,
		InitialCapital:  cfg.InitialCapital,
		CommissionPct:   cfg.CommissionPct,
		SlippagePct:     cfg.SlippagePct,
		PositionSizePct: cfg.PositionSizePct,
		AllowShorts:     cfg.AllowShorts,
		WarmupOverride:  cfg.WarmupOverride,
	}
}

// NewStrategy instantiates the configured strategy by registry name.
func NewStrategy(cfg config.RunConfig) (strategy.Strategy, error) {
	strat, err := strategy.New(cfg.Strategy)
	if err != nil {
		return nil, fmt.Errorf("unknown strategy %q (available: %v)", cfg.Strategy, strategy.Available())
	}
	return strat, nil
}

// ServeMetrics exposes the Prometheus endpoint in the background when addr
// is non-empty.
func ServeMetrics(addr string, log *logger.Logger) {
	if addr == "" {
		return
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", monitoring.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("metrics server: %v", err)
		}
	}()
	log.Info("metrics listening on %s/metrics", addr)
}
