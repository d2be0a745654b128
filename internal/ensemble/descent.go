package ensemble

import (
	"fmt"
	"math"
)

// Coordinate descent settings.
const (
	descentMaxEvaluations = 400
	descentInitialStep    = 0.05
	descentBacktrackRatio = 0.5
	descentMinStep        = 1e-5
	descentTolerance      = 1e-9
)

// descentObjective scores a candidate weight vector; lower is better.
type descentObjective func(weights map[string]float64) float64

// coordinateDescent minimizes the objective over the weight simplex by
// perturbing one coordinate at a time and re-projecting into bounds. The
// projection keeps every iterate feasible, so the search never leaves the
// constraint set.
func coordinateDescent(modelNames []string, initial map[string]float64, objective descentObjective, project func(map[string]float64) map[string]float64) (map[string]float64, error) {
	if len(modelNames) == 0 {
		return nil, fmt.Errorf("descent: no models")
	}

	current := project(copyWeights(initial))
	best := copyWeights(current)
	bestScore := objective(best)
	if math.IsNaN(bestScore) || math.IsInf(bestScore, 0) {
		return nil, fmt.Errorf("descent: degenerate objective at start")
	}

	evaluations := 1
	stepSize := descentInitialStep

	for stepSize >= descentMinStep && evaluations < descentMaxEvaluations {
		improved := false
		for _, coord := range modelNames {
			for _, direction := range []float64{+1, -1} {
				if evaluations >= descentMaxEvaluations {
					break
				}
				candidate := copyWeights(best)
				candidate[coord] += direction * stepSize
				candidate = project(candidate)
				score := objective(candidate)
				evaluations++
				if score < bestScore-descentTolerance {
					best = candidate
					bestScore = score
					improved = true
				}
			}
		}
		if !improved {
			stepSize *= descentBacktrackRatio
		}
	}

	return best, nil
}

func copyWeights(weights map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(weights))
	for k, v := range weights {
		out[k] = v
	}
	return out
}

// descentStrategy minimizes the blended mean squared error under the box and
// sum-to-one constraints. This is the general constrained optimizer; "scipy"
// resolves here for configs written against the legacy name.
type descentStrategy struct{}

func (descentStrategy) Name() string { return MethodDescent }

func (descentStrategy) Fit(modelNames []string, predictions map[string][]float64, actuals []float64) (map[string]float64, error) {
	// Fit runs unprojected here; the optimizer wraps this with projection.
	// Kept for interface symmetry, returns equal start for the optimizer to
	// refine via FitConstrained.
	return equalStrategy{}.Fit(modelNames, predictions, actuals)
}

// FitConstrained runs the full projected search.
func (descentStrategy) FitConstrained(modelNames []string, predictions map[string][]float64, actuals []float64, project func(map[string]float64) map[string]float64) (map[string]float64, error) {
	n := alignedLength(modelNames, predictions, actuals)
	if n == 0 {
		return nil, fmt.Errorf("descent: no aligned samples")
	}

	objective := func(weights map[string]float64) float64 {
		blended := blend(weights, modelNames, predictions, n)
		var sum float64
		for i := 0; i < n; i++ {
			diff := actuals[i] - blended[i]
			sum += diff * diff
		}
		return sum / float64(n)
	}

	initial, _ := equalStrategy{}.Fit(modelNames, predictions, actuals)
	return coordinateDescent(modelNames, initial, objective, project)
}

// constrainedStrategy is implemented by strategies whose search must stay
// inside the projected constraint set rather than being projected after the
// fact.
type constrainedStrategy interface {
	FitConstrained(modelNames []string, predictions map[string][]float64, actuals []float64, project func(map[string]float64) map[string]float64) (map[string]float64, error)
}

func alignedLength(modelNames []string, predictions map[string][]float64, actuals []float64) int {
	n := len(actuals)
	for _, name := range modelNames {
		if len(predictions[name]) < n {
			n = len(predictions[name])
		}
	}
	return n
}
