package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// WeightSnapshot is one entry of the weight optimizer's append-only history.
type WeightSnapshot struct {
	ID        uuid.UUID          `db:"id" json:"id"`
	RunID     uuid.UUID          `db:"run_id" json:"run_id"`
	Method    string             `db:"method" json:"method"`
	Weights   map[string]float64 `db:"-" json:"weights"`
	Order     int                `db:"sequence" json:"order"`
	Timestamp time.Time          `db:"timestamp" json:"timestamp"`

	WeightsJSON json.RawMessage `db:"weights" json:"-"`
}

// EncodeJSONColumns fills the raw JSON weights column for persistence.
func (s *WeightSnapshot) EncodeJSONColumns() error {
	data, err := json.Marshal(s.Weights)
	if err != nil {
		return err
	}
	s.WeightsJSON = data
	return nil
}

// DecodeJSONColumns restores the weights map from the raw column.
func (s *WeightSnapshot) DecodeJSONColumns() error {
	if len(s.WeightsJSON) == 0 {
		return nil
	}
	return json.Unmarshal(s.WeightsJSON, &s.Weights)
}
