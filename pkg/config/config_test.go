package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// TestLoad_JSON checks JSON parsing layered over defaults.
func TestLoad_JSON(t *testing.T) {
	path := writeFile(t, "run.json", `{
		"symbol": "BTCUSDT",
		"data_file": "bars.csv",
		"initial_capital": 25000,
		"commission_pct": 0.002
	}`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "BTCUSDT", cfg.Symbol)
	assert.Equal(t, 25000.0, cfg.InitialCapital)
	assert.Equal(t, 0.002, cfg.CommissionPct)
	// Untouched fields keep their defaults.
	assert.Equal(t, "1h", cfg.Timeframe)
	assert.Equal(t, "ma_cross", cfg.Strategy)
}

// TestLoad_YAML checks the YAML path.
func TestLoad_YAML(t *testing.T) {
	path := writeFile(t, "run.yaml", `
symbol: ETHUSDT
timeframe: 15m
strategy: rsi_reversal
initial_capital: 5000
start: "2024-01-01"
end: "2024-06-30"
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "ETHUSDT", cfg.Symbol)
	assert.Equal(t, "15m", cfg.Timeframe)
	assert.Equal(t, "rsi_reversal", cfg.Strategy)

	start, err := cfg.StartTime()
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), start)
}

func TestLoad_UnsupportedExtension(t *testing.T) {
	path := writeFile(t, "run.toml", "symbol = \"X\"")
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.json"))
	assert.Error(t, err)
}

// TestLoad_EnvOverrides checks BT_* variables take precedence over file
// values.
func TestLoad_EnvOverrides(t *testing.T) {
	path := writeFile(t, "run.json", `{"symbol": "BTCUSDT", "initial_capital": 25000}`)

	t.Setenv("BT_SYMBOL", "SOLUSDT")
	t.Setenv("BT_INITIAL_CAPITAL", "1234.5")
	t.Setenv("BT_COMMISSION_PCT", "not-a-number")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "SOLUSDT", cfg.Symbol)
	assert.Equal(t, 1234.5, cfg.InitialCapital)
	assert.Equal(t, Default().CommissionPct, cfg.CommissionPct)
}

// TestValidate covers the range checks.
func TestValidate(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	bad := cfg
	bad.InitialCapital = 0
	assert.Error(t, bad.Validate())

	bad = cfg
	bad.CommissionPct = 1.5
	assert.Error(t, bad.Validate())

	bad = cfg
	bad.PositionSizePct = 150
	assert.Error(t, bad.Validate())

	bad = cfg
	bad.Start = "yesterday"
	assert.Error(t, bad.Validate())
}

// TestDateParsing covers the accepted layouts.
func TestDateParsing(t *testing.T) {
	cfg := Default()

	cfg.Start = "2024-03-15T10:30:00Z"
	start, err := cfg.StartTime()
	require.NoError(t, err)
	assert.Equal(t, 10, start.Hour())

	cfg.Start = "2024-03-15 10:30:00"
	start, err = cfg.StartTime()
	require.NoError(t, err)
	assert.Equal(t, 30, start.Minute())

	cfg.Start = ""
	start, err = cfg.StartTime()
	require.NoError(t, err)
	assert.True(t, start.IsZero())
}
