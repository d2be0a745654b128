package validation

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/yourusername/forewarden/internal/models"
)

// LossKind selects the per-origin loss used by the significance tester.
type LossKind string

const (
	LossAbsolute LossKind = "absolute"
	LossSquared  LossKind = "squared"
)

// DefaultSignificanceLevel is the p-value cutoff for the deployment gate.
const DefaultSignificanceLevel = 0.05

// SignificanceTester runs a Diebold-Mariano style test on the mean of the
// loss differential between a model and the naive baseline. The variance is
// Newey-West corrected with a Bartlett kernel because overlapping multi-step
// forecast origins are serially correlated; lag truncation is horizon-1.
type SignificanceTester struct {
	loss    LossKind
	level   float64
	horizon int
}

// NewSignificanceTester creates a tester. A non-positive level selects the
// default; horizon must match the forecast horizon that produced the series.
func NewSignificanceTester(loss LossKind, level float64, horizon int) *SignificanceTester {
	if level <= 0 || level >= 1 {
		level = DefaultSignificanceLevel
	}
	if horizon < 1 {
		horizon = 1
	}
	if loss != LossAbsolute {
		loss = LossSquared
	}
	return &SignificanceTester{loss: loss, level: level, horizon: horizon}
}

// Test runs the Diebold-Mariano test on aligned actual/model/baseline arrays.
// Fewer than models.MinSignificanceOrigins aligned origins yields an explicit
// insufficient-sample result with NaN statistic rather than an unreliable
// p-value.
func (t *SignificanceTester) Test(actual, modelForecast, baselineForecast []float64) models.SignificanceResult {
	n := len(actual)
	if len(modelForecast) < n {
		n = len(modelForecast)
	}
	if len(baselineForecast) < n {
		n = len(baselineForecast)
	}

	if n < models.MinSignificanceOrigins {
		return models.SignificanceResult{
			Statistic:        math.NaN(),
			PValue:           math.NaN(),
			IsSignificant:    false,
			EffectSize:       math.NaN(),
			SampleSize:       n,
			SampleSufficient: false,
			Interpretation: fmt.Sprintf(
				"insufficient sample: %d origins, need %d for a trustworthy result",
				n, models.MinSignificanceOrigins),
		}
	}

	// Loss differential: model loss minus baseline loss per origin.
	d := make([]float64, n)
	for i := 0; i < n; i++ {
		d[i] = t.lossOf(actual[i]-modelForecast[i]) - t.lossOf(actual[i]-baselineForecast[i])
	}

	meanD := stat.Mean(d, nil)
	hacVar := t.neweyWestVariance(d, meanD)
	if hacVar < divergenceEpsilon {
		hacVar = divergenceEpsilon
	}

	statistic := meanD / math.Sqrt(hacVar/float64(n))
	normal := distuv.Normal{Mu: 0, Sigma: 1}
	pValue := 2 * (1 - normal.CDF(math.Abs(statistic)))
	isSignificant := pValue < t.level

	return models.SignificanceResult{
		Statistic:        statistic,
		PValue:           pValue,
		IsSignificant:    isSignificant,
		EffectSize:       meanD,
		SampleSize:       n,
		SampleSufficient: true,
		Interpretation:   t.interpret(statistic, pValue, meanD, isSignificant),
	}
}

// TestSeries runs the test over an accumulated forecast loss series.
func (t *SignificanceTester) TestSeries(series *models.ForecastLossSeries) models.SignificanceResult {
	n := series.Len()
	actual := make([]float64, n)
	model := make([]float64, n)
	baseline := make([]float64, n)
	for i, origin := range series.Origins {
		actual[i] = origin.Actual
		model[i] = origin.ModelForecast
		baseline[i] = origin.BaselineForecast
	}
	return t.Test(actual, model, baseline)
}

func (t *SignificanceTester) lossOf(err float64) float64 {
	if t.loss == LossAbsolute {
		return math.Abs(err)
	}
	return err * err
}

// neweyWestVariance estimates the long-run variance of d with Bartlett
// weights over lags 1..horizon-1.
func (t *SignificanceTester) neweyWestVariance(d []float64, mean float64) float64 {
	n := len(d)
	maxLags := t.horizon - 1
	if maxLags > n-1 {
		maxLags = n - 1
	}

	variance := autocovariance(d, mean, 0)
	for k := 1; k <= maxLags; k++ {
		weight := 1 - float64(k)/float64(maxLags+1)
		variance += 2 * weight * autocovariance(d, mean, k)
	}
	return variance
}

func autocovariance(d []float64, mean float64, lag int) float64 {
	n := len(d)
	var sum float64
	for i := lag; i < n; i++ {
		sum += (d[i] - mean) * (d[i-lag] - mean)
	}
	return sum / float64(n)
}

func (t *SignificanceTester) interpret(statistic, pValue, effectSize float64, isSignificant bool) string {
	if !isSignificant {
		return fmt.Sprintf("no significant difference from baseline (DM=%.3f, p=%.3f)", statistic, pValue)
	}
	if effectSize < 0 {
		return fmt.Sprintf("model significantly beats baseline (DM=%.3f, p=%.3f, mean loss differential %.6f)", statistic, pValue, effectSize)
	}
	return fmt.Sprintf("model significantly worse than baseline (DM=%.3f, p=%.3f, mean loss differential %.6f)", statistic, pValue, effectSize)
}
