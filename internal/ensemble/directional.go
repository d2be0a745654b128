package ensemble

import (
	"fmt"
)

// directionalStrategy chooses weights maximizing the sign-agreement rate of
// the blended prediction vs the actuals.
type directionalStrategy struct{}

func (directionalStrategy) Name() string { return MethodDirectional }

func (directionalStrategy) Fit(modelNames []string, predictions map[string][]float64, actuals []float64) (map[string]float64, error) {
	return equalStrategy{}.Fit(modelNames, predictions, actuals)
}

// FitConstrained maximizes the directional hit rate via projected coordinate
// descent.
func (directionalStrategy) FitConstrained(modelNames []string, predictions map[string][]float64, actuals []float64, project func(map[string]float64) map[string]float64) (map[string]float64, error) {
	n := alignedLength(modelNames, predictions, actuals)
	if n == 0 {
		return nil, fmt.Errorf("directional: no aligned samples")
	}

	objective := func(weights map[string]float64) float64 {
		blended := blend(weights, modelNames, predictions, n)
		hits := 0
		for i := 0; i < n; i++ {
			if sameSign(blended[i], actuals[i]) {
				hits++
			}
		}
		// Negated hit rate: descent minimizes.
		return -float64(hits) / float64(n)
	}

	initial, _ := equalStrategy{}.Fit(modelNames, predictions, actuals)
	return coordinateDescent(modelNames, initial, objective, project)
}

func sameSign(a, b float64) bool {
	if a == 0 || b == 0 {
		return a == b
	}
	return (a > 0) == (b > 0)
}
