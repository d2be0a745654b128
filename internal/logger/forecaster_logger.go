// Package logger provides forecast-service specific logging.
package logger

import (
	"github.com/sirupsen/logrus"
)

// ForecasterLogger provides dedicated logging for forecast service calls.
type ForecasterLogger struct {
	*logrus.Entry
}

// NewForecasterLogger creates a new forecaster logger.
func NewForecasterLogger(baseLogger *logrus.Logger) *ForecasterLogger {
	return &ForecasterLogger{
		Entry: baseLogger.WithField("component", "forecaster"),
	}
}

// LogForecastRequest logs a forecast request round trip.
func (fl *ForecasterLogger) LogForecastRequest(model string, horizon int, cacheHit bool, latencyMs float64) {
	fl.WithFields(logrus.Fields{
		"model":      model,
		"horizon":    horizon,
		"cache_hit":  cacheHit,
		"latency_ms": latencyMs,
	}).Info("Forecast request completed")
}

// LogModelTraining logs a model fit on a training sub-range.
func (fl *ForecasterLogger) LogModelTraining(model string, nSamples int, trainingDuration float64) {
	fl.WithFields(logrus.Fields{
		"model":             model,
		"n_samples":         nSamples,
		"training_duration": trainingDuration,
	}).Info("Model training completed")
}

// LogForecastError logs a forecast request failure.
func (fl *ForecasterLogger) LogForecastError(model string, errorReason string) {
	fl.WithFields(logrus.Fields{
		"model":        model,
		"error_reason": errorReason,
	}).Error("Forecast request failed")
}

// LogCircuitBreakerTrip logs the forecast client opening its circuit.
func (fl *ForecasterLogger) LogCircuitBreakerTrip(consecutiveFailures int) {
	fl.WithFields(logrus.Fields{
		"consecutive_failures": consecutiveFailures,
	}).Warn("Forecast client circuit breaker opened")
}
