package models

import (
	"time"

	"github.com/google/uuid"
)

// DivergenceRecord captures the validation/test error gap for one window.
// Records are owned by a single DivergenceMonitor instance and live for one
// validation run unless explicitly exported.
type DivergenceRecord struct {
	ID            uuid.UUID `db:"id" json:"id"`
	Symbol        string    `db:"symbol" json:"symbol"`
	SymbolID      int       `db:"symbol_id" json:"symbol_id"`
	Horizon       int       `db:"horizon" json:"horizon"`
	WindowID      int       `db:"window_id" json:"window_id"`
	ValMetric     float64   `db:"val_metric" json:"val_metric"`
	TestMetric    float64   `db:"test_metric" json:"test_metric"`
	Divergence    float64   `db:"divergence" json:"divergence"`
	IsOverfitting bool      `db:"is_overfitting" json:"is_overfitting"`
	NValSamples   int       `db:"n_val_samples" json:"n_val_samples"`
	NTestSamples  int       `db:"n_test_samples" json:"n_test_samples"`
	ModelCount    int       `db:"model_count" json:"model_count"`
	ModelsUsed    []string  `db:"-" json:"models_used"`
	Timestamp     time.Time `db:"timestamp" json:"timestamp"`
}

// DivergenceSummary aggregates a monitor's history. All-zero on empty history.
type DivergenceSummary struct {
	TotalWindows        int     `json:"total_windows"`
	MeanDivergence      float64 `json:"mean_divergence"`
	MinDivergence       float64 `json:"min_divergence"`
	MaxDivergence       float64 `json:"max_divergence"`
	OverfittingWindows  int     `json:"n_overfitting_windows"`
	PctOverfitting      float64 `json:"pct_overfitting"`
	DivergenceThreshold float64 `json:"divergence_threshold"`
}
