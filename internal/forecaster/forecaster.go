// Package forecaster provides client interfaces for forecast model backends.
package forecaster

import (
	"context"
)

// Forecaster produces point forecasts for a named model. Train must be called
// for a model before Predict; implementations keep per-model fitted state.
type Forecaster interface {
	// Train fits the named model on an ordered target series.
	Train(ctx context.Context, model string, values []float64) error

	// Predict returns a horizon-step forecast continuing the given history.
	// The history may extend past the range the model was trained on.
	Predict(ctx context.Context, model string, history []float64, horizon int) ([]float64, error)

	// Models lists the model names this backend serves.
	Models() []string
}

// TrainRequest is the wire format for a model training call.
type TrainRequest struct {
	Model  string    `json:"model"`
	Values []float64 `json:"values"`
}

// TrainResponse is the wire format of a training result.
type TrainResponse struct {
	Model    string `json:"model"`
	Trained  bool   `json:"trained"`
	NSamples int    `json:"n_samples"`
	Message  string `json:"message,omitempty"`
}

// ForecastRequest is the wire format for a prediction call.
type ForecastRequest struct {
	Model   string    `json:"model"`
	History []float64 `json:"history"`
	Horizon int       `json:"horizon"`
}

// ForecastResponse is the wire format of a prediction result.
type ForecastResponse struct {
	Model    string    `json:"model"`
	Forecast []float64 `json:"forecast"`
	Message  string    `json:"message,omitempty"`
}
