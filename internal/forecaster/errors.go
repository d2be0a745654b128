// Package forecaster provides client interfaces for forecast model backends.
package forecaster

import "errors"

var (
	// ErrServiceUnavailable indicates the forecast service is unreachable
	ErrServiceUnavailable = errors.New("forecast service unavailable")

	// ErrInsufficientData indicates a training range below the minimum sample count
	ErrInsufficientData = errors.New("insufficient training data")

	// ErrModelNotTrained indicates a prediction was requested before training
	ErrModelNotTrained = errors.New("model not trained")

	// ErrInvalidForecast indicates the forecast response is invalid
	ErrInvalidForecast = errors.New("invalid forecast response")

	// ErrUnknownModel indicates a model name the backend does not serve
	ErrUnknownModel = errors.New("unknown forecast model")

	// ErrTimeout indicates a forecast request timed out
	ErrTimeout = errors.New("forecast request timeout")
)
