package ensemble

import (
	"fmt"

	"gonum.org/v1/gonum/stat"
)

// sharpeStrategy chooses weights maximizing the Sharpe ratio of the blended
// prediction series: mean over standard deviation of the blend.
type sharpeStrategy struct{}

func (sharpeStrategy) Name() string { return MethodSharpe }

func (sharpeStrategy) Fit(modelNames []string, predictions map[string][]float64, actuals []float64) (map[string]float64, error) {
	return equalStrategy{}.Fit(modelNames, predictions, actuals)
}

// FitConstrained maximizes the blend Sharpe via projected coordinate descent.
func (sharpeStrategy) FitConstrained(modelNames []string, predictions map[string][]float64, actuals []float64, project func(map[string]float64) map[string]float64) (map[string]float64, error) {
	n := alignedLength(modelNames, predictions, actuals)
	if n < 2 {
		return nil, fmt.Errorf("sharpe: need at least 2 aligned samples")
	}

	objective := func(weights map[string]float64) float64 {
		blended := blend(weights, modelNames, predictions, n)
		mean, std := stat.MeanStdDev(blended, nil)
		if std < weightEpsilon {
			std = weightEpsilon
		}
		// Negated: descent minimizes.
		return -mean / std
	}

	initial, _ := equalStrategy{}.Fit(modelNames, predictions, actuals)
	return coordinateDescent(modelNames, initial, objective, project)
}
