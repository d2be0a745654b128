// Package validation implements walk-forward validation with overfitting
// divergence detection and a Diebold-Mariano deployment gate.
package validation

import "errors"

var (
	// ErrInvalidWindowConfig indicates non-positive window sizes or step
	ErrInvalidWindowConfig = errors.New("invalid window configuration")

	// ErrNoValidWindows indicates a run where no window produced a result
	ErrNoValidWindows = errors.New("no valid windows")

	// ErrRunInProgress indicates a Run call on an orchestrator that is not idle
	ErrRunInProgress = errors.New("run already in progress")
)
