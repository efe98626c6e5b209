package data

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestImportCSV_RoundTrip checks that exported bars import back unchanged.
func TestImportCSV_RoundTrip(t *testing.T) {
	bars := minuteBars(5, 1_700_000_000_000)

	var buf bytes.Buffer
	require.NoError(t, ExportCSV(&buf, bars))

	out, err := ImportCSV(&buf, nil)
	require.NoError(t, err)
	assert.Equal(t, bars, out)
}

// TestImportCSV_SkipsBadRows checks that unparseable rows are skipped, not
// fatal.
func TestImportCSV_SkipsBadRows(t *testing.T) {
	input := strings.Join([]string{
		"timestamp,date,open,high,low,close,volume",
		"0,1970-01-01 00:00:00,10,11,9,10,1",
		"not-a-timestamp,x,10,11,9,10,1",
		"60000,1970-01-01 00:01:00,10,eleven,9,10,1",
		"120000,1970-01-01 00:02:00,10,11,9,10,1",
	}, "\n")

	bars, err := ImportCSV(strings.NewReader(input), nil)
	require.NoError(t, err)
	require.Len(t, bars, 2)
	assert.Equal(t, int64(0), bars[0].TimestampMs())
	assert.Equal(t, int64(120_000), bars[1].TimestampMs())
}

// TestImportCSV_Revalidates checks that files are never trusted as-is: a
// structurally valid row with inverted high/low is dropped.
func TestImportCSV_Revalidates(t *testing.T) {
	input := strings.Join([]string{
		"timestamp,date,open,high,low,close,volume",
		"0,1970-01-01 00:00:00,10,11,9,10,1",
		"60000,1970-01-01 00:01:00,8.5,8,9,8.5,1",
	}, "\n")

	bars, err := ImportCSV(strings.NewReader(input), nil)
	require.NoError(t, err)
	require.Len(t, bars, 1)
}

func TestImportCSV_BadHeader(t *testing.T) {
	_, err := ImportCSV(strings.NewReader("timestamp,open\n"), nil)
	assert.Error(t, err)
}

// TestCSVProvider_Load checks the <root>/<symbol>/<timeframe>/candles.csv
// layout.
func TestCSVProvider_Load(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "BTCUSDT", "1m")
	require.NoError(t, os.MkdirAll(dir, 0o755))

	var buf bytes.Buffer
	require.NoError(t, ExportCSV(&buf, minuteBars(3, 0)))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "candles.csv"), buf.Bytes(), 0o644))

	provider := NewCSVProvider(root, nil)
	bars, err := provider.Load(context.Background(), "BTCUSDT", "1m")
	require.NoError(t, err)
	assert.Len(t, bars, 3)

	_, err = provider.Load(context.Background(), "ETHUSDT", "1m")
	assert.Error(t, err)
}

func TestFileProvider_Load(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bars.csv")
	var buf bytes.Buffer
	require.NoError(t, ExportCSV(&buf, minuteBars(4, 0)))
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))

	provider := NewFileProvider(path, nil)
	bars, err := provider.Load(context.Background(), "ANY", "1m")
	require.NoError(t, err)
	assert.Len(t, bars, 4)
}
