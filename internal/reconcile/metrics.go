package reconcile

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// runsTotal counts reconciliation runs per operation.
	runsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "reconcile_runs_total",
		Help: "Total number of reconciliation runs by operation",
	}, []string{"operation", "environment"})

	// unitOutcomes counts per-unit outcomes per operation.
	unitOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "reconcile_unit_outcomes_total",
		Help: "Total number of unit outcomes by operation and status",
	}, []string{"operation", "status"})

	// runDuration tracks how long full runs take.
	runDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "reconcile_run_duration_seconds",
		Help:    "Duration of reconciliation runs by operation",
		Buckets: []float64{0.5, 1, 5, 15, 60, 300, 900, 3600},
	}, []string{"operation"})

	// snapshotDuration tracks how long the preflight state fetch takes.
	snapshotDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "reconcile_snapshot_fetch_duration_seconds",
		Help:    "Duration of the preflight remote state fetch",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30},
	})
)

func observeRun(operation, environment string, started time.Time) {
	runsTotal.WithLabelValues(operation, environment).Inc()
	runDuration.WithLabelValues(operation).Observe(time.Since(started).Seconds())
}

func observeOutcomes(operation string, counts map[string]int) {
	for status, n := range counts {
		unitOutcomes.WithLabelValues(operation, status).Add(float64(n))
	}
}
