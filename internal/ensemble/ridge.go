package ensemble

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// ridgeStrategy fits actual ≈ Σ wᵢ·predictionᵢ by penalized least squares:
// w = (PᵀP + αI)⁻¹ Pᵀy. Out-of-bound coefficients are handled by the
// optimizer's projection step.
type ridgeStrategy struct {
	alpha float64
}

func (ridgeStrategy) Name() string { return MethodRidge }

func (s ridgeStrategy) Fit(modelNames []string, predictions map[string][]float64, actuals []float64) (map[string]float64, error) {
	k := len(modelNames)
	n := len(actuals)
	for _, name := range modelNames {
		if len(predictions[name]) < n {
			n = len(predictions[name])
		}
	}
	if n == 0 {
		return nil, fmt.Errorf("ridge: no aligned samples")
	}

	alpha := s.alpha
	if alpha <= 0 {
		alpha = 1.0
	}

	// Design matrix: one column per model.
	p := mat.NewDense(n, k, nil)
	for j, name := range modelNames {
		preds := predictions[name]
		for i := 0; i < n; i++ {
			p.Set(i, j, preds[i])
		}
	}
	y := mat.NewVecDense(n, actuals[:n])

	// Normal equations with L2 penalty: (PᵀP + αI) w = Pᵀy.
	var ptp mat.Dense
	ptp.Mul(p.T(), p)
	for j := 0; j < k; j++ {
		ptp.Set(j, j, ptp.At(j, j)+alpha)
	}

	var pty mat.VecDense
	pty.MulVec(p.T(), y)

	var w mat.VecDense
	if err := w.SolveVec(&ptp, &pty); err != nil {
		return nil, fmt.Errorf("ridge: solve failed: %w", err)
	}

	weights := make(map[string]float64, k)
	for j, name := range modelNames {
		weights[name] = w.AtVec(j)
	}
	return weights, nil
}
