// Package metrics provides the centralized Prometheus metrics registry for the validation engine.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Global registry instance
var (
	registry *prometheus.Registry
	once     sync.Once
)

// Counter metrics
var (
	WindowsProcessedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "forewarden",
		Name:      "windows_processed_total",
		Help:      "Total number of walk-forward windows processed",
	})
	WindowsSkippedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "forewarden",
		Name:      "windows_skipped_total",
		Help:      "Total number of walk-forward windows skipped due to errors",
	})
	OverfittingWindowsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "forewarden",
		Name:      "overfitting_windows_total",
		Help:      "Total number of windows flagged as overfitting",
	})
	ForecastRequestsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "forewarden",
		Name:      "forecast_requests_total",
		Help:      "Total number of forecast service requests",
	})
	ForecastCacheHitsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "forewarden",
		Name:      "forecast_cache_hits_total",
		Help:      "Total number of forecast requests served from cache",
	})
	CircuitBreakerTripsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "forewarden",
		Name:      "circuit_breaker_trips_total",
		Help:      "Total number of forecast client circuit breaker trips",
	})
)

// Gauge metrics
var (
	MeanDivergence = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "forewarden",
		Name:      "mean_divergence",
		Help:      "Mean validation/test divergence across processed windows",
	})
	PctOverfitting = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "forewarden",
		Name:      "pct_overfitting",
		Help:      "Percentage of processed windows flagged as overfitting",
	})
	EnsembleWeight = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "forewarden",
		Name:      "ensemble_weight",
		Help:      "Current ensemble weight for each forecast model",
	}, []string{"model", "method"})
)

// Histogram metrics
var (
	WindowDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "forewarden",
		Name:      "window_duration_seconds",
		Help:      "Duration of single window evaluations in seconds",
		Buckets:   prometheus.DefBuckets,
	})
	RunDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "forewarden",
		Name:      "run_duration_seconds",
		Help:      "Duration of full validation runs in seconds",
		Buckets:   []float64{1, 5, 10, 30, 60, 300, 600, 1800},
	})
	ForecastLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "forewarden",
		Name:      "forecast_latency_seconds",
		Help:      "Latency of forecast service requests in seconds",
		Buckets:   prometheus.DefBuckets,
	})
)

// InitRegistry initializes the global Prometheus registry.
func InitRegistry() *prometheus.Registry {
	once.Do(func() {
		registry = prometheus.NewRegistry()

		// Register counter metrics
		registry.MustRegister(WindowsProcessedTotal)
		registry.MustRegister(WindowsSkippedTotal)
		registry.MustRegister(OverfittingWindowsTotal)
		registry.MustRegister(ForecastRequestsTotal)
		registry.MustRegister(ForecastCacheHitsTotal)
		registry.MustRegister(CircuitBreakerTripsTotal)

		// Register gauge metrics
		registry.MustRegister(MeanDivergence)
		registry.MustRegister(PctOverfitting)
		registry.MustRegister(EnsembleWeight)

		// Register histogram metrics
		registry.MustRegister(WindowDuration)
		registry.MustRegister(RunDuration)
		registry.MustRegister(ForecastLatency)

		// Register run metrics
		registry.MustRegister(ValidationRunsTotal)
		registry.MustRegister(WindowDivergence)
		registry.MustRegister(SignificancePValue)
	})
	return registry
}

// GetRegistry returns the global Prometheus registry.
func GetRegistry() *prometheus.Registry {
	if registry == nil {
		return InitRegistry()
	}
	return registry
}

// Handler returns the Prometheus HTTP handler.
func Handler() http.Handler {
	return promhttp.HandlerFor(GetRegistry(), promhttp.HandlerOpts{})
}

// RecordWindowProcessed records a completed window evaluation.
func RecordWindowProcessed(durationSeconds float64) {
	WindowsProcessedTotal.Inc()
	WindowDuration.Observe(durationSeconds)
}

// RecordWindowSkipped records a skipped window.
func RecordWindowSkipped() {
	WindowsSkippedTotal.Inc()
}

// RecordOverfittingWindow records a window flagged as overfitting.
func RecordOverfittingWindow() {
	OverfittingWindowsTotal.Inc()
}

// RecordForecastRequest records a forecast service round trip.
func RecordForecastRequest(latencySeconds float64, cacheHit bool) {
	ForecastRequestsTotal.Inc()
	if cacheHit {
		ForecastCacheHitsTotal.Inc()
	}
	ForecastLatency.Observe(latencySeconds)
}

// RecordCircuitBreakerTrip records a forecast client circuit breaker trip.
func RecordCircuitBreakerTrip() {
	CircuitBreakerTripsTotal.Inc()
}

// UpdateMeanDivergence updates the mean divergence gauge.
func UpdateMeanDivergence(value float64) {
	MeanDivergence.Set(value)
}

// UpdatePctOverfitting updates the overfitting percentage gauge.
func UpdatePctOverfitting(value float64) {
	PctOverfitting.Set(value)
}

// UpdateEnsembleWeight updates the weight gauge for one model.
func UpdateEnsembleWeight(model, method string, weight float64) {
	EnsembleWeight.WithLabelValues(model, method).Set(weight)
}

// RecordRunDuration records the duration of a full validation run.
func RecordRunDuration(durationSeconds float64) {
	RunDuration.Observe(durationSeconds)
}
