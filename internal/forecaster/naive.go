package forecaster

import (
	"context"
	"sync"
)

// NaiveModelName is the flat last-value baseline.
const NaiveModelName = "naive"

// SeasonalNaiveModelName repeats the last observed seasonal cycle.
const SeasonalNaiveModelName = "seasonal_naive"

// Naive implements Forecaster with local baseline models. The last-value
// baseline is also what the significance gate compares ensemble forecasts
// against.
type Naive struct {
	seasonLength int

	mu      sync.RWMutex
	trained map[string]bool
}

// NewNaive creates a baseline forecaster. seasonLength is used by the
// seasonal variant; values below 1 disable it.
func NewNaive(seasonLength int) *Naive {
	return &Naive{
		seasonLength: seasonLength,
		trained:      make(map[string]bool),
	}
}

// Models lists the served baseline models.
func (n *Naive) Models() []string {
	if n.seasonLength > 0 {
		return []string{NaiveModelName, SeasonalNaiveModelName}
	}
	return []string{NaiveModelName}
}

// Train marks the model as fitted. Baselines carry no fitted parameters but
// still enforce the train-before-predict contract.
func (n *Naive) Train(ctx context.Context, model string, values []float64) error {
	if err := n.checkModel(model); err != nil {
		return err
	}
	if len(values) == 0 {
		return ErrInsufficientData
	}
	if model == SeasonalNaiveModelName && len(values) < n.seasonLength {
		return ErrInsufficientData
	}

	n.mu.Lock()
	n.trained[model] = true
	n.mu.Unlock()
	return nil
}

// Predict returns the baseline forecast continuing the given history.
func (n *Naive) Predict(ctx context.Context, model string, history []float64, horizon int) ([]float64, error) {
	if err := n.checkModel(model); err != nil {
		return nil, err
	}

	n.mu.RLock()
	trained := n.trained[model]
	n.mu.RUnlock()
	if !trained {
		return nil, ErrModelNotTrained
	}
	if len(history) == 0 {
		return nil, ErrInsufficientData
	}
	if horizon <= 0 {
		return nil, ErrInvalidForecast
	}

	forecast := make([]float64, horizon)
	switch model {
	case NaiveModelName:
		last := history[len(history)-1]
		for i := range forecast {
			forecast[i] = last
		}
	case SeasonalNaiveModelName:
		if len(history) < n.seasonLength {
			return nil, ErrInsufficientData
		}
		season := history[len(history)-n.seasonLength:]
		for i := range forecast {
			forecast[i] = season[i%n.seasonLength]
		}
	}
	return forecast, nil
}

func (n *Naive) checkModel(model string) error {
	switch model {
	case NaiveModelName:
		return nil
	case SeasonalNaiveModelName:
		if n.seasonLength > 0 {
			return nil
		}
	}
	return ErrUnknownModel
}
