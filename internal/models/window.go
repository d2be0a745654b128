package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// WindowConfig describes one walk-forward window. Sub-ranges are inclusive
// calendar-day ranges and never overlap within a window:
// TrainStart..TrainEnd < ValStart..ValEnd < TestStart..TestEnd.
// Immutable once created by the window generator.
type WindowConfig struct {
	WindowID   int       `json:"window_id"`
	TrainStart time.Time `json:"train_start"`
	TrainEnd   time.Time `json:"train_end"`
	ValStart   time.Time `json:"val_start"`
	ValEnd     time.Time `json:"val_end"`
	TestStart  time.Time `json:"test_start"`
	TestEnd    time.Time `json:"test_end"`
}

// WindowStatus tracks the orchestrator outcome for one window.
type WindowStatus string

const (
	WindowStatusCompleted WindowStatus = "completed"
	WindowStatusSkipped   WindowStatus = "skipped"
)

// WindowResult is the append-only record produced for each processed window.
type WindowResult struct {
	ID             uuid.UUID          `db:"id" json:"id"`
	RunID          uuid.UUID          `db:"run_id" json:"run_id"`
	WindowID       int                `db:"window_id" json:"window_id"`
	Symbol         string             `db:"symbol" json:"symbol"`
	Horizon        int                `db:"horizon" json:"horizon"`
	Window         WindowConfig       `db:"-" json:"window"`
	Status         WindowStatus       `db:"status" json:"status"`
	SkipReason     string             `db:"skip_reason" json:"skip_reason,omitempty"`
	BestParams     map[string]float64 `db:"-" json:"best_params,omitempty"`
	ValMetric      float64            `db:"val_metric" json:"val_metric"`
	TestMetric     float64            `db:"test_metric" json:"test_metric"`
	Divergence     float64            `db:"divergence" json:"divergence"`
	NTrainSamples  int                `db:"n_train_samples" json:"n_train_samples"`
	NValSamples    int                `db:"n_val_samples" json:"n_val_samples"`
	NTestSamples   int                `db:"n_test_samples" json:"n_test_samples"`
	ModelsUsed     []string           `db:"-" json:"models_used"`
	BestParamsJSON json.RawMessage    `db:"best_params" json:"-"`
	ModelsUsedJSON json.RawMessage    `db:"models_used" json:"-"`
	CreatedAt      time.Time          `db:"created_at" json:"created_at"`
}

// EncodeJSONColumns fills the raw JSON columns used by the repository layer.
func (w *WindowResult) EncodeJSONColumns() error {
	params, err := json.Marshal(w.BestParams)
	if err != nil {
		return err
	}
	models, err := json.Marshal(w.ModelsUsed)
	if err != nil {
		return err
	}
	w.BestParamsJSON = params
	w.ModelsUsedJSON = models
	return nil
}

// DecodeJSONColumns restores the typed fields from the raw JSON columns.
func (w *WindowResult) DecodeJSONColumns() error {
	if len(w.BestParamsJSON) > 0 {
		if err := json.Unmarshal(w.BestParamsJSON, &w.BestParams); err != nil {
			return err
		}
	}
	if len(w.ModelsUsedJSON) > 0 {
		if err := json.Unmarshal(w.ModelsUsedJSON, &w.ModelsUsed); err != nil {
			return err
		}
	}
	return nil
}
