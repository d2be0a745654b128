package ensemble

import (
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/forewarden/internal/models"
)

// Default weight bounds.
const (
	DefaultMinWeight = 0.05
	DefaultMaxWeight = 0.60
)

// WeightSumTolerance is the allowed deviation of Σweights from 1.
const WeightSumTolerance = 0.01

// weightEpsilon guards divisions by near-zero errors and deviations.
const weightEpsilon = 1e-9

// updateRate scales online performance nudges between full refits.
const updateRate = 0.1

// Config configures the weight optimizer.
type Config struct {
	Method         string
	Alpha          float64
	MinWeight      float64
	MaxWeight      float64
	LookbackWindow int
}

// Optimizer fits bounded, normalized ensemble weights. One instance per run;
// every optimization appends a snapshot to an append-only history.
type Optimizer struct {
	cfg     Config
	runID   uuid.UUID
	weights map[string]float64
	history []models.WeightSnapshot
	seq     int
	log     *logrus.Entry
}

// NewOptimizer creates a weight optimizer. Zero bounds select the defaults.
func NewOptimizer(cfg Config, baseLogger *logrus.Logger) *Optimizer {
	if cfg.MinWeight <= 0 {
		cfg.MinWeight = DefaultMinWeight
	}
	if cfg.MaxWeight <= 0 {
		cfg.MaxWeight = DefaultMaxWeight
	}
	if cfg.Method == "" {
		cfg.Method = MethodEqual
	}
	if baseLogger == nil {
		baseLogger = logrus.New()
	}
	return &Optimizer{
		cfg:     cfg,
		runID:   uuid.New(),
		weights: make(map[string]float64),
		log:     baseLogger.WithField("component", "ensemble"),
	}
}

// SetRunID ties history snapshots to an externally owned run.
func (o *Optimizer) SetRunID(runID uuid.UUID) {
	o.runID = runID
}

// Weights returns a copy of the current weight vector.
func (o *Optimizer) Weights() map[string]float64 {
	return copyWeights(o.weights)
}

// LastMethod returns the method recorded by the most recent optimization, or
// the configured method before any.
func (o *Optimizer) LastMethod() string {
	if len(o.history) == 0 {
		return o.cfg.Method
	}
	return o.history[len(o.history)-1].Method
}

// History returns a copy of the optimization history.
func (o *Optimizer) History() []models.WeightSnapshot {
	return append([]models.WeightSnapshot(nil), o.history...)
}

// OptimizeWeights fits a weight vector with the given method ("" uses the
// configured one). Contract: with zero models returns an empty map; with one
// model that model gets exactly 1.0; with two or more every weight lies in
// [MinWeight, MaxWeight] and the sum is 1 within tolerance. Strategy failures
// fall back to equal weights and are logged, never propagated.
func (o *Optimizer) OptimizeWeights(predictions map[string][]float64, actuals []float64, method string) map[string]float64 {
	if method == "" {
		method = o.cfg.Method
	}
	method = ResolveMethod(method)

	modelNames := sortedModelNames(predictions)

	switch len(modelNames) {
	case 0:
		o.record(method, map[string]float64{})
		return map[string]float64{}
	case 1:
		weights := map[string]float64{modelNames[0]: 1.0}
		o.setWeights(method, weights)
		return copyWeights(weights)
	}

	predictions, actuals = o.truncateToLookback(modelNames, predictions, actuals)

	weights, err := o.fit(method, modelNames, predictions, actuals)
	if err != nil {
		o.log.WithFields(logrus.Fields{
			"method": method,
			"error":  err.Error(),
		}).Warn("Optimization failed, falling back to equal weights")
		weights, _ = equalStrategy{}.Fit(modelNames, predictions, actuals)
		method = MethodEqual
	}

	weights = o.project(weights)
	o.setWeights(method, weights)
	return copyWeights(weights)
}

// UpdateFromPerformance nudges one model's weight proportionally to recent
// skill and renormalizes. A low-cost online recalibration between full refits.
func (o *Optimizer) UpdateFromPerformance(model string, accuracy, recentError float64) map[string]float64 {
	if _, ok := o.weights[model]; !ok {
		return copyWeights(o.weights)
	}

	// Skill above 0.5 accuracy raises the weight, high recent error lowers it.
	skill := (2*accuracy - 1) - recentError
	o.weights[model] *= 1 + updateRate*skill
	if o.weights[model] < 0 {
		o.weights[model] = 0
	}

	if len(o.weights) > 1 {
		o.weights = o.project(o.weights)
	} else {
		for name := range o.weights {
			o.weights[name] = 1.0
		}
	}
	o.record("performance_update", copyWeights(o.weights))
	return copyWeights(o.weights)
}

func (o *Optimizer) fit(method string, modelNames []string, predictions map[string][]float64, actuals []float64) (map[string]float64, error) {
	strat, err := strategyFor(method, o.cfg.Alpha)
	if err != nil {
		return nil, err
	}
	if constrained, ok := strat.(constrainedStrategy); ok {
		return constrained.FitConstrained(modelNames, predictions, actuals, o.project)
	}
	return strat.Fit(modelNames, predictions, actuals)
}

// project maps raw weights onto the feasible set: every weight in
// [MinWeight, MaxWeight], sum equal to 1. Implemented as a box-constrained
// simplex projection via bisection on a uniform shift: each weight becomes
// clip(raw+λ, min, max) and λ is chosen so the clipped sum hits 1. With an
// infeasible box (n·min > 1 or n·max < 1) it degrades to equal weights.
func (o *Optimizer) project(raw map[string]float64) map[string]float64 {
	n := len(raw)
	if n == 0 {
		return map[string]float64{}
	}

	minW, maxW := o.cfg.MinWeight, o.cfg.MaxWeight
	if float64(n)*minW > 1 || float64(n)*maxW < 1 {
		out := make(map[string]float64, n)
		for name := range raw {
			out[name] = 1 / float64(n)
		}
		return out
	}

	clippedSum := func(shift float64) float64 {
		var sum float64
		for _, v := range raw {
			sum += clip(v+shift, minW, maxW)
		}
		return sum
	}

	// The clipped sum is monotone in the shift, so bisection converges.
	lo, hi := -1.0, 1.0
	for clippedSum(lo) > 1 {
		lo *= 2
	}
	for clippedSum(hi) < 1 {
		hi *= 2
	}
	for i := 0; i < 100; i++ {
		mid := (lo + hi) / 2
		if clippedSum(mid) < 1 {
			lo = mid
		} else {
			hi = mid
		}
	}

	shift := (lo + hi) / 2
	out := make(map[string]float64, n)
	for name, v := range raw {
		out[name] = clip(v+shift, minW, maxW)
	}
	return out
}

func (o *Optimizer) truncateToLookback(modelNames []string, predictions map[string][]float64, actuals []float64) (map[string][]float64, []float64) {
	lookback := o.cfg.LookbackWindow
	if lookback <= 0 {
		return predictions, actuals
	}

	out := make(map[string][]float64, len(predictions))
	for _, name := range modelNames {
		preds := predictions[name]
		if len(preds) > lookback {
			preds = preds[len(preds)-lookback:]
		}
		out[name] = preds
	}
	if len(actuals) > lookback {
		actuals = actuals[len(actuals)-lookback:]
	}
	return out, actuals
}

func (o *Optimizer) setWeights(method string, weights map[string]float64) {
	o.weights = copyWeights(weights)
	o.record(method, weights)
}

func (o *Optimizer) record(method string, weights map[string]float64) {
	o.history = append(o.history, models.WeightSnapshot{
		ID:        uuid.New(),
		RunID:     o.runID,
		Method:    method,
		Weights:   copyWeights(weights),
		Order:     o.seq,
		Timestamp: time.Now().UTC(),
	})
	o.seq++
}

func clip(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}

func sortedModelNames(predictions map[string][]float64) []string {
	names := make([]string, 0, len(predictions))
	for name := range predictions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
