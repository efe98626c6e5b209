package data

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/quantlab/backtest-engine/internal/logger"
	"github.com/quantlab/backtest-engine/pkg/types"
)

// csvHeader is the canonical bar file format: timestamp is epoch
// milliseconds, date is a human-readable duplicate of the same instant.
var csvHeader = []string{"timestamp", "date", "open", "high", "low", "close", "volume"}

const csvDateFormat = "2006-01-02 15:04:05"

// ImportCSV reads bars from r. Rows that fail to parse are skipped with a
// logged cause; the result is passed through Validate, so the file is never
// trusted as-is.
func ImportCSV(r io.Reader, log *logger.Logger) ([]types.Bar, error) {
	if log == nil {
		log = logger.New("data")
	}

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("reading CSV header: %w", err)
	}
	if len(header) < len(csvHeader) {
		return nil, fmt.Errorf("unexpected CSV header: got %d columns, want %d", len(header), len(csvHeader))
	}

	var bars []types.Bar
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading CSV at line %d: %w", line+1, err)
		}
		line++

		if len(record) < len(csvHeader) {
			log.Warn("insufficient columns at line %d, skipping", line)
			continue
		}

		ms, err := strconv.ParseInt(record[0], 10, 64)
		if err != nil {
			log.Warn("invalid timestamp %q at line %d, skipping", record[0], line)
			continue
		}

		fields := [5]float64{}
		ok := true
		for i, col := range []int{2, 3, 4, 5, 6} {
			fields[i], err = strconv.ParseFloat(record[col], 64)
			if err != nil {
				log.Warn("invalid %s %q at line %d, skipping", csvHeader[col], record[col], line)
				ok = false
				break
			}
		}
		if !ok {
			continue
		}

		bars = append(bars, types.Bar{
			Timestamp: time.UnixMilli(ms).UTC(),
			Open:      fields[0],
			High:      fields[1],
			Low:       fields[2],
			Close:     fields[3],
			Volume:    fields[4],
		})
	}

	return NewValidator(log).Validate(bars), nil
}

// ExportCSV writes bars to w in the canonical format.
func ExportCSV(w io.Writer, bars []types.Bar) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	if err := writer.Write(csvHeader); err != nil {
		return err
	}

	for _, bar := range bars {
		row := []string{
			strconv.FormatInt(bar.TimestampMs(), 10),
			bar.Timestamp.UTC().Format(csvDateFormat),
			strconv.FormatFloat(bar.Open, 'f', -1, 64),
			strconv.FormatFloat(bar.High, 'f', -1, 64),
			strconv.FormatFloat(bar.Low, 'f', -1, 64),
			strconv.FormatFloat(bar.Close, 'f', -1, 64),
			strconv.FormatFloat(bar.Volume, 'f', -1, 64),
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

// CSVProvider loads bars from a file tree laid out as
// <root>/<symbol>/<timeframe>/candles.csv.
type CSVProvider struct {
	root string
	log  *logger.Logger
}

// NewCSVProvider creates a CSV provider rooted at root.
func NewCSVProvider(root string, log *logger.Logger) *CSVProvider {
	if log == nil {
		log = logger.New("data")
	}
	return &CSVProvider{root: root, log: log}
}

func (p *CSVProvider) Name() string {
	return "csv"
}

// Load reads and validates the candle file for the symbol/timeframe pair.
func (p *CSVProvider) Load(ctx context.Context, symbol, timeframe string) ([]types.Bar, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path := filepath.Join(p.root, symbol, timeframe, "candles.csv")
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	bars, err := ImportCSV(f, p.log)
	if err != nil {
		return nil, fmt.Errorf("importing %s: %w", path, err)
	}
	p.log.Info("loaded %d bars from %s", len(bars), path)
	return bars, nil
}

// FileProvider serves a single CSV file for whatever symbol/timeframe it is
// asked for. Useful for CLI runs against one data file.
type FileProvider struct {
	path string
	log  *logger.Logger
}

// NewFileProvider creates a provider backed by one CSV file.
func NewFileProvider(path string, log *logger.Logger) *FileProvider {
	if log == nil {
		log = logger.New("data")
	}
	return &FileProvider{path: path, log: log}
}

func (p *FileProvider) Name() string {
	return "file"
}

func (p *FileProvider) Load(ctx context.Context, symbol, timeframe string) ([]types.Bar, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(p.path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", p.path, err)
	}
	defer f.Close()

	return ImportCSV(f, p.log)
}
