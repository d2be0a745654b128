// Package metrics defines validation-run specific metrics.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Run counter vectors
var (
	ValidationRunsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "forewarden",
		Name:      "validation_runs_total",
		Help:      "Total number of validation runs by trigger and status",
	}, []string{"trigger", "status"})
)

// Run histogram vectors
var (
	WindowDivergence = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "forewarden",
		Name:      "window_divergence",
		Help:      "Per-window validation/test divergence by symbol",
		Buckets:   []float64{0.05, 0.1, 0.15, 0.2, 0.3, 0.5, 1.0, 2.0},
	}, []string{"symbol"})
)

// Run gauge vectors
var (
	SignificancePValue = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "forewarden",
		Name:      "significance_p_value",
		Help:      "Latest Diebold-Mariano p-value for each symbol",
	}, []string{"symbol"})
)

// RecordValidationRun records a validation run event.
// trigger should be one of: "manual", "scheduled"
// status should be one of: "success", "failure", "aborted"
func RecordValidationRun(trigger, status string) {
	ValidationRunsTotal.WithLabelValues(trigger, status).Inc()
}

// RecordWindowDivergence records a per-window divergence observation.
func RecordWindowDivergence(symbol string, divergence float64) {
	WindowDivergence.WithLabelValues(symbol).Observe(divergence)
}

// UpdateSignificancePValue updates the latest p-value for a symbol.
func UpdateSignificancePValue(symbol string, pValue float64) {
	SignificancePValue.WithLabelValues(symbol).Set(pValue)
}
