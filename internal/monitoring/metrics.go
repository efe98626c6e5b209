package monitoring

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	backtestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "engine_backtests_total",
			Help: "Total number of backtest runs executed",
		},
		[]string{"symbol"},
	)

	backtestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "engine_backtest_duration_seconds",
			Help:    "Wall-clock duration of backtest runs",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"symbol"},
	)

	monteCarloRunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "engine_montecarlo_runs_total",
			Help: "Total number of Monte Carlo resampling iterations",
		},
		[]string{"method"},
	)

	optimizationCandidatesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "engine_optimization_candidates_total",
			Help: "Total number of evaluated optimization candidates",
		},
		[]string{"strategy"},
	)

	optimizationProgress = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "engine_optimization_progress_ratio",
			Help: "Completed fraction of the current optimization sweep",
		},
		[]string{"strategy"},
	)
)

func init() {
	prometheus.MustRegister(backtestsTotal)
	prometheus.MustRegister(backtestDuration)
	prometheus.MustRegister(monteCarloRunsTotal)
	prometheus.MustRegister(optimizationCandidatesTotal)
	prometheus.MustRegister(optimizationProgress)
}

// ObserveBacktest starts timing a backtest run; the returned func records
// the counter and duration when the run finishes.
func ObserveBacktest(symbol string) func() {
	start := time.Now()
	return func() {
		backtestsTotal.WithLabelValues(symbol).Inc()
		backtestDuration.WithLabelValues(symbol).Observe(time.Since(start).Seconds())
	}
}

// AddMonteCarloRuns records completed resampling iterations.
func AddMonteCarloRuns(method string, n int) {
	monteCarloRunsTotal.WithLabelValues(method).Add(float64(n))
}

// RecordOptimizationCandidate records one evaluated candidate.
func RecordOptimizationCandidate(strategy string) {
	optimizationCandidatesTotal.WithLabelValues(strategy).Inc()
}

// SetOptimizationProgress publishes the completed fraction of a sweep.
func SetOptimizationProgress(strategy string, ratio float64) {
	optimizationProgress.WithLabelValues(strategy).Set(ratio)
}

// Handler serves the Prometheus scrape endpoint, useful during long
// optimization sessions.
func Handler() http.Handler {
	return promhttp.Handler()
}
