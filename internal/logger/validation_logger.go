// Package logger provides validation-run specific logging.
package logger

import (
	"github.com/sirupsen/logrus"
)

// ValidationLogger provides dedicated logging for walk-forward validation runs.
type ValidationLogger struct {
	*logrus.Entry
}

// NewValidationLogger creates a new validation logger.
func NewValidationLogger(baseLogger *logrus.Logger) *ValidationLogger {
	return &ValidationLogger{
		Entry: baseLogger.WithField("component", "validation"),
	}
}

// LogWindowResult logs the outcome of a single walk-forward window.
func (vl *ValidationLogger) LogWindowResult(windowID int, valMetric, testMetric, divergence float64, overfitting bool) {
	vl.WithFields(logrus.Fields{
		"window_id":   windowID,
		"val_metric":  valMetric,
		"test_metric": testMetric,
		"divergence":  divergence,
		"overfitting": overfitting,
	}).Info("Window evaluation completed")
}

// LogWindowSkipped logs a window skipped due to a per-window failure.
func (vl *ValidationLogger) LogWindowSkipped(windowID int, reason string) {
	vl.WithFields(logrus.Fields{
		"window_id": windowID,
		"reason":    reason,
	}).Warn("Window skipped")
}

// LogWeightUpdate logs an ensemble weight recalibration.
func (vl *ValidationLogger) LogWeightUpdate(windowID int, method string, weights map[string]float64) {
	vl.WithFields(logrus.Fields{
		"window_id": windowID,
		"method":    method,
		"weights":   weights,
	}).Info("Ensemble weights updated")
}

// LogSignificanceResult logs the Diebold-Mariano deployment gate outcome.
func (vl *ValidationLogger) LogSignificanceResult(statistic, pValue float64, significant, promote bool, sampleSize int) {
	vl.WithFields(logrus.Fields{
		"dm_statistic": statistic,
		"p_value":      pValue,
		"significant":  significant,
		"promote":      promote,
		"sample_size":  sampleSize,
	}).Info("Significance test completed")
}

// LogRunSummary logs the aggregate result of a full validation run.
func (vl *ValidationLogger) LogRunSummary(runID string, totalWindows, skipped, overfitting int, meanDivergence float64, durationSeconds float64) {
	vl.WithFields(logrus.Fields{
		"run_id":           runID,
		"total_windows":    totalWindows,
		"skipped_windows":  skipped,
		"overfitting":      overfitting,
		"mean_divergence":  meanDivergence,
		"duration_seconds": durationSeconds,
	}).Info("Validation run completed")
}

// LogRunAborted logs a validation run cancelled between windows.
func (vl *ValidationLogger) LogRunAborted(runID string, completedWindows int, reason string) {
	vl.WithFields(logrus.Fields{
		"run_id":            runID,
		"completed_windows": completedWindows,
		"reason":            reason,
	}).Warn("Validation run aborted")
}
