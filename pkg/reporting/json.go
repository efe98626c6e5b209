package reporting

import (
	"encoding/json"

	"github.com/quantlab/backtest-engine/internal/errors"
	"github.com/quantlab/backtest-engine/pkg/optimization"
)

// bestConfig is the JSON shape persisted after an optimization sweep.
type bestConfig struct {
	Objective     string             `json:"objective"`
	BestScore     float64            `json:"best_score"`
	Parameters    map[string]float64 `json:"parameters"`
	CompletedRuns int                `json:"completed_runs"`
	TotalRuns     int                `json:"total_runs"`
}

// WriteBestConfigJSON persists the winning parameter set so it can be fed
// back into a backtest or live config.
func WriteBestConfigJSON(summary *optimization.Summary, path string) error {
	out := bestConfig{
		Objective:     summary.Objective,
		BestScore:     summary.BestScore,
		Parameters:    summary.BestParameters,
		CompletedRuns: summary.CompletedRuns,
		TotalRuns:     summary.TotalRuns,
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return errors.NewDataError("reporting", "writeBestConfigJSON", err)
	}
	f, err := createFile(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if _, err := f.Write(append(data, '\n')); err != nil {
		return errors.NewDataError("reporting", "writeBestConfigJSON", err)
	}
	return nil
}
