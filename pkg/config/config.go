package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/quantlab/backtest-engine/internal/errors"
)

// RunConfig drives a backtest invocation. Files may be JSON or YAML,
// selected by extension; environment variables prefixed BT_ override file
// values.
type RunConfig struct {
	Symbol          string  `json:"symbol" yaml:"symbol"`
	Timeframe       string  `json:"timeframe" yaml:"timeframe"`
	DataFile        string  `json:"data_file" yaml:"data_file"`
	Strategy        string  `json:"strategy" yaml:"strategy"`
	InitialCapital  float64 `json:"initial_capital" yaml:"initial_capital"`
	CommissionPct   float64 `json:"commission_pct" yaml:"commission_pct"`
	SlippagePct     float64 `json:"slippage_pct" yaml:"slippage_pct"`
	PositionSizePct float64 `json:"position_size_pct" yaml:"position_size_pct"`
	AllowShorts     bool    `json:"allow_shorts" yaml:"allow_shorts"`
	WarmupOverride  int     `json:"warmup_override" yaml:"warmup_override"`
	Start           string  `json:"start" yaml:"start"` // RFC3339 or 2006-01-02
	End             string  `json:"end" yaml:"end"`
}

// Default returns the baseline configuration.
func Default() RunConfig {
	return RunConfig{
		Timeframe:       "1h",
		Strategy:        "ma_cross",
		InitialCapital:  10000,
		CommissionPct:   0.001,
		PositionSizePct: 100,
		AllowShorts:     true,
	}
}

// LoadEnv loads a .env file if present. Missing files are fine.
func LoadEnv() {
	_ = godotenv.Load()
}

// Load reads a config file, falling back to defaults for a missing path,
// then applies BT_* environment overrides and validates.
func Load(path string) (RunConfig, error) {
	cfg := Default()

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return cfg, errors.NewConfigurationError("config", "load", fmt.Sprintf("reading %s: %v", path, err))
		}

		switch strings.ToLower(filepath.Ext(path)) {
		case ".yaml", ".yml":
			if err := yaml.Unmarshal(raw, &cfg); err != nil {
				return cfg, errors.NewConfigurationError("config", "load", fmt.Sprintf("parsing %s: %v", path, err))
			}
		case ".json":
			if err := json.Unmarshal(raw, &cfg); err != nil {
				return cfg, errors.NewConfigurationError("config", "load", fmt.Sprintf("parsing %s: %v", path, err))
			}
		default:
			return cfg, errors.NewConfigurationError("config", "load", fmt.Sprintf("unsupported config extension %q", filepath.Ext(path)))
		}
	}

	applyEnvOverrides(&cfg)

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks the config is runnable.
func (c RunConfig) Validate() error {
	if c.InitialCapital <= 0 {
		return errors.NewConfigurationError("config", "validate", "initial_capital must be positive")
	}
	if c.CommissionPct < 0 || c.CommissionPct >= 1 {
		return errors.NewConfigurationError("config", "validate", "commission_pct must be in [0, 1)")
	}
	if c.SlippagePct < 0 || c.SlippagePct >= 1 {
		return errors.NewConfigurationError("config", "validate", "slippage_pct must be in [0, 1)")
	}
	if c.PositionSizePct <= 0 || c.PositionSizePct > 100 {
		return errors.NewConfigurationError("config", "validate", "position_size_pct must be in (0, 100]")
	}
	if _, err := c.StartTime(); err != nil {
		return err
	}
	if _, err := c.EndTime(); err != nil {
		return err
	}
	return nil
}

// StartTime parses the configured range start; zero when unset.
func (c RunConfig) StartTime() (time.Time, error) {
	return parseDate("start", c.Start)
}

// EndTime parses the configured range end; zero when unset.
func (c RunConfig) EndTime() (time.Time, error) {
	return parseDate("end", c.End)
}

func parseDate(field, value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, errors.NewConfigurationError("config", "validate", fmt.Sprintf("invalid %s date %q", field, value))
}

func applyEnvOverrides(cfg *RunConfig) {
	if v := os.Getenv("BT_SYMBOL"); v != "" {
		cfg.Symbol = v
	}
	if v := os.Getenv("BT_TIMEFRAME"); v != "" {
		cfg.Timeframe = v
	}
	if v := os.Getenv("BT_DATA_FILE"); v != "" {
		cfg.DataFile = v
	}
	if v := os.Getenv("BT_STRATEGY"); v != "" {
		cfg.Strategy = v
	}
	if v, ok := envFloat("BT_INITIAL_CAPITAL"); ok {
		cfg.InitialCapital = v
	}
	if v, ok := envFloat("BT_COMMISSION_PCT"); ok {
		cfg.CommissionPct = v
	}
	if v, ok := envFloat("BT_SLIPPAGE_PCT"); ok {
		cfg.SlippagePct = v
	}
	if v, ok := envFloat("BT_POSITION_SIZE_PCT"); ok {
		cfg.PositionSizePct = v
	}
}

func envFloat(key string) (float64, bool) {
	raw := os.Getenv(key)
	if raw == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
