// Package ensemble calibrates bounded, normalized weight vectors over
// competing forecast models.
package ensemble

import (
	"fmt"
	"math"
)

// Strategy fits raw (unconstrained) weights from per-model predictions and
// realized actuals. The optimizer projects the result into bounds afterwards.
type Strategy interface {
	Name() string
	Fit(modelNames []string, predictions map[string][]float64, actuals []float64) (map[string]float64, error)
}

// Method names. "scipy" is accepted as a legacy alias of descent.
const (
	MethodEqual        = "equal"
	MethodInverseError = "inverse_error"
	MethodRidge        = "ridge"
	MethodSharpe       = "sharpe"
	MethodDirectional  = "directional"
	MethodDescent      = "descent"
	methodScipyAlias   = "scipy"
)

// ResolveMethod canonicalizes a method name.
func ResolveMethod(method string) string {
	if method == methodScipyAlias {
		return MethodDescent
	}
	return method
}

func strategyFor(method string, alpha float64) (Strategy, error) {
	switch ResolveMethod(method) {
	case MethodEqual:
		return equalStrategy{}, nil
	case MethodInverseError:
		return inverseErrorStrategy{}, nil
	case MethodRidge:
		return ridgeStrategy{alpha: alpha}, nil
	case MethodSharpe:
		return sharpeStrategy{}, nil
	case MethodDirectional:
		return directionalStrategy{}, nil
	case MethodDescent:
		return descentStrategy{}, nil
	default:
		return nil, fmt.Errorf("unknown optimization method %q", method)
	}
}

// equalStrategy is the uniform fallback. Always valid.
type equalStrategy struct{}

func (equalStrategy) Name() string { return MethodEqual }

func (equalStrategy) Fit(modelNames []string, predictions map[string][]float64, actuals []float64) (map[string]float64, error) {
	weights := make(map[string]float64, len(modelNames))
	for _, name := range modelNames {
		weights[name] = 1 / float64(len(modelNames))
	}
	return weights, nil
}

// inverseErrorStrategy weights each model by the inverse of its mean squared
// error against the actuals.
type inverseErrorStrategy struct{}

func (inverseErrorStrategy) Name() string { return MethodInverseError }

func (inverseErrorStrategy) Fit(modelNames []string, predictions map[string][]float64, actuals []float64) (map[string]float64, error) {
	weights := make(map[string]float64, len(modelNames))
	var sum float64
	for _, name := range modelNames {
		mse := meanSquaredError(predictions[name], actuals)
		w := 1 / (mse + weightEpsilon)
		weights[name] = w
		sum += w
	}
	if sum <= 0 || math.IsNaN(sum) || math.IsInf(sum, 0) {
		return nil, fmt.Errorf("degenerate inverse-error weights")
	}
	for name := range weights {
		weights[name] /= sum
	}
	return weights, nil
}

func meanSquaredError(predictions, actuals []float64) float64 {
	n := len(predictions)
	if len(actuals) < n {
		n = len(actuals)
	}
	if n == 0 {
		return math.Inf(1)
	}
	var sum float64
	for i := 0; i < n; i++ {
		diff := actuals[i] - predictions[i]
		sum += diff * diff
	}
	return sum / float64(n)
}

func blend(weights map[string]float64, modelNames []string, predictions map[string][]float64, n int) []float64 {
	out := make([]float64, n)
	for _, name := range modelNames {
		preds := predictions[name]
		w := weights[name]
		for i := 0; i < n && i < len(preds); i++ {
			out[i] += w * preds[i]
		}
	}
	return out
}
