package validation

import (
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/forewarden/internal/models"
)

// DefaultDivergenceThreshold flags windows whose validation/test error gap
// exceeds 20%. A heuristic for holdout overfitting from repeated tuning.
const DefaultDivergenceThreshold = 0.20

// divergenceEpsilon guards the relative divergence against near-zero
// validation metrics. With |val| below this, the denominator is clamped, so
// the score is bounded rather than exact.
const divergenceEpsilon = 1e-9

// DivergenceMonitor accumulates the validation/test error gap per window.
// One instance per run; history is append-only and owned by the caller.
// Divergence is symmetric: a test metric much better than validation is
// flagged the same as one much worse, since any large swing is suspect.
type DivergenceMonitor struct {
	threshold float64
	history   []models.DivergenceRecord
	log       *logrus.Entry
}

// NewDivergenceMonitor creates a monitor. A non-positive threshold selects
// the default.
func NewDivergenceMonitor(threshold float64, baseLogger *logrus.Logger) *DivergenceMonitor {
	if threshold <= 0 {
		threshold = DefaultDivergenceThreshold
	}
	if baseLogger == nil {
		baseLogger = logrus.New()
	}
	return &DivergenceMonitor{
		threshold: threshold,
		log:       baseLogger.WithField("component", "divergence"),
	}
}

// Threshold returns the configured overfitting threshold.
func (m *DivergenceMonitor) Threshold() float64 {
	return m.threshold
}

// Divergence computes the relative validation/test gap with the epsilon
// guard applied to the denominator.
func Divergence(valMetric, testMetric float64) float64 {
	denom := math.Abs(valMetric)
	if denom < divergenceEpsilon {
		denom = divergenceEpsilon
	}
	return math.Abs(valMetric-testMetric) / denom
}

// LogWindowResult computes divergence for one window and appends a record.
func (m *DivergenceMonitor) LogWindowResult(symbol string, symbolID, horizon, windowID int, valMetric, testMetric float64, nValSamples, nTestSamples int, modelsUsed []string) models.DivergenceRecord {
	divergence := Divergence(valMetric, testMetric)
	record := models.DivergenceRecord{
		ID:            uuid.New(),
		Symbol:        symbol,
		SymbolID:      symbolID,
		Horizon:       horizon,
		WindowID:      windowID,
		ValMetric:     valMetric,
		TestMetric:    testMetric,
		Divergence:    divergence,
		IsOverfitting: divergence > m.threshold,
		NValSamples:   nValSamples,
		NTestSamples:  nTestSamples,
		ModelCount:    len(modelsUsed),
		ModelsUsed:    append([]string(nil), modelsUsed...),
		Timestamp:     time.Now().UTC(),
	}
	m.history = append(m.history, record)

	if record.IsOverfitting {
		m.log.WithFields(logrus.Fields{
			"symbol":     symbol,
			"window_id":  windowID,
			"divergence": divergence,
			"threshold":  m.threshold,
		}).Warn("Window flagged as overfitting")
	}

	return record
}

// History returns a copy of the accumulated records.
func (m *DivergenceMonitor) History() []models.DivergenceRecord {
	return append([]models.DivergenceRecord(nil), m.history...)
}

// Summary aggregates the accumulated history. An empty history returns
// all-zero statistics with only the threshold set.
func (m *DivergenceMonitor) Summary() models.DivergenceSummary {
	summary := models.DivergenceSummary{
		DivergenceThreshold: m.threshold,
	}
	if len(m.history) == 0 {
		return summary
	}

	summary.TotalWindows = len(m.history)
	summary.MinDivergence = m.history[0].Divergence
	summary.MaxDivergence = m.history[0].Divergence

	var sum float64
	for _, record := range m.history {
		sum += record.Divergence
		if record.Divergence < summary.MinDivergence {
			summary.MinDivergence = record.Divergence
		}
		if record.Divergence > summary.MaxDivergence {
			summary.MaxDivergence = record.Divergence
		}
		if record.IsOverfitting {
			summary.OverfittingWindows++
		}
	}
	summary.MeanDivergence = sum / float64(summary.TotalWindows)
	summary.PctOverfitting = 100 * float64(summary.OverfittingWindows) / float64(summary.TotalWindows)
	return summary
}
