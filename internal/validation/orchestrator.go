package validation

import (
	"context"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/forewarden/internal/ensemble"
	"github.com/yourusername/forewarden/internal/forecaster"
	"github.com/yourusername/forewarden/internal/logger"
	"github.com/yourusername/forewarden/internal/metrics"
	"github.com/yourusername/forewarden/internal/models"
	"github.com/yourusername/forewarden/internal/repository"
)

// State is the orchestrator's lifecycle state. Window states cycle through
// Slicing..Recalibrating; Done and Aborted are terminal for the run.
type State string

const (
	StateIdle          State = "idle"
	StateSlicing       State = "slicing"
	StateTraining      State = "training"
	StatePredicting    State = "predicting"
	StateScoring       State = "scoring"
	StateLogging       State = "logging"
	StateRecalibrating State = "recalibrating"
	StateDone          State = "done"
	StateAborted       State = "aborted"
)

// Orchestrator sequences walk-forward windows over a series, delegating
// train/predict to the Forecaster collaborator and feeding the divergence
// monitor and weight optimizer. Windows are processed strictly in order;
// cancellation is honored only between windows, never mid-training.
type Orchestrator struct {
	cfg       Config
	forecast  forecaster.Forecaster
	optimizer *ensemble.Optimizer
	monitor   *DivergenceMonitor
	tester    *SignificanceTester
	log       *logger.ValidationLogger
	repos     *repository.Repositories
	state     State
}

// NewOrchestrator creates an orchestrator. One instance per run; monitor and
// optimizer state accumulate across its windows only.
func NewOrchestrator(cfg Config, fc forecaster.Forecaster, opt *ensemble.Optimizer, baseLogger *logrus.Logger) (*Orchestrator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if baseLogger == nil {
		baseLogger = logrus.New()
	}
	return &Orchestrator{
		cfg:       cfg,
		forecast:  fc,
		optimizer: opt,
		monitor:   NewDivergenceMonitor(cfg.DivergenceThreshold, baseLogger),
		tester:    NewSignificanceTester(cfg.Loss, cfg.SignificanceLevel, cfg.Horizon),
		log:       logger.NewValidationLogger(baseLogger),
		state:     StateIdle,
	}, nil
}

// WithRepositories enables persistence of window results, divergence records
// and weight snapshots.
func (o *Orchestrator) WithRepositories(repos *repository.Repositories) *Orchestrator {
	o.repos = repos
	return o
}

// State returns the current lifecycle state.
func (o *Orchestrator) State() State {
	return o.state
}

// Monitor exposes the run's divergence monitor.
func (o *Orchestrator) Monitor() *DivergenceMonitor {
	return o.monitor
}

// Run executes the full walk-forward validation over the series. A single bad
// window is skipped, never fatal; only the total absence of valid windows
// aborts the run.
func (o *Orchestrator) Run(ctx context.Context, series *models.Series) (*RunReport, error) {
	if o.state != StateIdle {
		return nil, ErrRunInProgress
	}

	startTime := time.Now()

	if err := series.Validate(); err != nil {
		o.state = StateAborted
		return nil, err
	}

	generator, err := NewWindowGenerator(o.cfg.WindowConfig())
	if err != nil {
		o.state = StateAborted
		return nil, err
	}
	windows := generator.Generate(series)
	if len(windows) == 0 {
		o.state = StateAborted
		return nil, ErrNoValidWindows
	}

	runID := uuid.New()
	o.optimizer.SetRunID(runID)

	report := &RunReport{
		RunID:        runID,
		Symbol:       series.Symbol,
		Horizon:      o.cfg.Horizon,
		StartedAt:    startTime.UTC(),
		TotalWindows: len(windows),
	}

	losses := &models.ForecastLossSeries{}
	modelNames := o.forecast.Models()
	var trainedModels []string

	for i, window := range windows {
		// Cancellation point: only between windows.
		if ctx.Err() != nil {
			o.state = StateAborted
			report.State = string(StateAborted)
			report.Duration = time.Since(startTime)
			metrics.RecordValidationRun(o.trigger(), "aborted")
			o.log.LogRunAborted(runID.String(), report.CompletedWindows, ctx.Err().Error())
			return report, ctx.Err()
		}

		windowStart := time.Now()

		// Slicing
		o.state = StateSlicing
		trainVals := series.Slice(window.TrainStart, window.TrainEnd).TargetValues()
		valSeries := series.Slice(window.ValStart, window.ValEnd)
		testSeries := series.Slice(window.TestStart, window.TestEnd)
		valVals := valSeries.TargetValues()
		testVals := testSeries.TargetValues()

		if len(trainVals) < o.cfg.MinTrainSamples {
			o.skipWindow(ctx, report, window, "insufficient training data")
			continue
		}
		if len(valVals) == 0 || len(testVals) == 0 {
			o.skipWindow(ctx, report, window, "empty validation or test range")
			continue
		}

		// Training: refit on cadence, reuse fitted models otherwise.
		o.state = StateTraining
		if i%o.cfg.RefitFrequency == 0 || len(trainedModels) == 0 {
			trainedModels = o.trainModels(ctx, modelNames, trainVals)
		}
		if len(trainedModels) == 0 {
			o.skipWindow(ctx, report, window, "all model training failed")
			continue
		}

		// Predicting
		o.state = StatePredicting
		valPreds, testPreds, usedModels := o.predictWindow(ctx, trainedModels, trainVals, valVals, testVals)
		if len(usedModels) == 0 {
			o.skipWindow(ctx, report, window, "all model predictions failed")
			continue
		}

		// Scoring
		o.state = StateScoring
		weights := o.blendWeights(usedModels)
		valBlend := blendForecasts(weights, usedModels, valPreds, len(valVals))
		testBlend := blendForecasts(weights, usedModels, testPreds, len(testVals))
		valMetric := meanSquaredError(valBlend, valVals)
		testMetric := meanSquaredError(testBlend, testVals)

		o.accumulateLosses(losses, trainVals, valVals, testVals, testBlend, testSeries)

		// Logging
		o.state = StateLogging
		record := o.monitor.LogWindowResult(series.Symbol, 0, o.cfg.Horizon, window.WindowID,
			valMetric, testMetric, len(valVals), len(testVals), usedModels)

		result := models.WindowResult{
			ID:            uuid.New(),
			RunID:         runID,
			WindowID:      window.WindowID,
			Symbol:        series.Symbol,
			Horizon:       o.cfg.Horizon,
			Window:        window,
			Status:        models.WindowStatusCompleted,
			ValMetric:     valMetric,
			TestMetric:    testMetric,
			Divergence:    record.Divergence,
			NTrainSamples: len(trainVals),
			NValSamples:   len(valVals),
			NTestSamples:  len(testVals),
			ModelsUsed:    usedModels,
			CreatedAt:     time.Now().UTC(),
		}
		report.Windows = append(report.Windows, result)
		report.CompletedWindows++

		o.persistWindow(ctx, &result, &record)
		o.log.LogWindowResult(window.WindowID, valMetric, testMetric, record.Divergence, record.IsOverfitting)
		metrics.RecordWindowProcessed(time.Since(windowStart).Seconds())
		metrics.RecordWindowDivergence(series.Symbol, record.Divergence)
		if record.IsOverfitting {
			metrics.RecordOverfittingWindow()
		}

		// Recalibrating: full optimization on cadence, cheap nudges otherwise.
		o.state = StateRecalibrating
		if (i+1)%o.cfg.WeightUpdateFrequency == 0 {
			newWeights := o.optimizer.OptimizeWeights(valPreds, valVals, "")
			method := o.optimizer.LastMethod()
			o.log.LogWeightUpdate(window.WindowID, method, newWeights)
			o.persistWeights(ctx)
			for name, w := range newWeights {
				metrics.UpdateEnsembleWeight(name, method, w)
			}
		} else if o.cfg.OnlineRecalibration && len(o.optimizer.Weights()) > 0 {
			for _, name := range usedModels {
				accuracy := hitRate(testPreds[name], testVals)
				relErr := relativeError(testPreds[name], testVals)
				o.optimizer.UpdateFromPerformance(name, accuracy, relErr)
			}
		}
	}

	report.Duration = time.Since(startTime)

	if report.CompletedWindows == 0 {
		o.state = StateAborted
		report.State = string(StateAborted)
		metrics.RecordValidationRun(o.trigger(), "failure")
		o.log.LogRunAborted(runID.String(), 0, "no window produced a result")
		return report, ErrNoValidWindows
	}

	o.state = StateDone
	report.State = string(StateDone)
	report.Summary = o.monitor.Summary()
	report.Weights = o.optimizer.Weights()
	report.WeightHistory = o.optimizer.History()
	report.Significance = o.tester.TestSeries(losses)
	report.Promote = report.Significance.BeatsBaseline()

	metrics.RecordValidationRun(o.trigger(), "success")
	metrics.RecordRunDuration(report.Duration.Seconds())
	metrics.UpdateMeanDivergence(report.Summary.MeanDivergence)
	metrics.UpdatePctOverfitting(report.Summary.PctOverfitting)
	if report.Significance.SampleSufficient {
		metrics.UpdateSignificancePValue(series.Symbol, report.Significance.PValue)
	}

	o.log.LogSignificanceResult(report.Significance.Statistic, report.Significance.PValue,
		report.Significance.IsSignificant, report.Promote, report.Significance.SampleSize)
	o.log.LogRunSummary(runID.String(), report.TotalWindows, report.SkippedWindows,
		report.Summary.OverfittingWindows, report.Summary.MeanDivergence, report.Duration.Seconds())

	return report, nil
}

func (o *Orchestrator) trainModels(ctx context.Context, modelNames []string, trainVals []float64) []string {
	var trained []string
	for _, name := range modelNames {
		if err := o.forecast.Train(ctx, name, trainVals); err != nil {
			continue
		}
		trained = append(trained, name)
	}
	return trained
}

func (o *Orchestrator) predictWindow(ctx context.Context, trainedModels []string, trainVals, valVals, testVals []float64) (map[string][]float64, map[string][]float64, []string) {
	valPreds := make(map[string][]float64, len(trainedModels))
	testPreds := make(map[string][]float64, len(trainedModels))
	var used []string

	trainPlusVal := make([]float64, 0, len(trainVals)+len(valVals))
	trainPlusVal = append(trainPlusVal, trainVals...)
	trainPlusVal = append(trainPlusVal, valVals...)

	for _, name := range trainedModels {
		vp, err := o.forecast.Predict(ctx, name, trainVals, len(valVals))
		if err != nil {
			continue
		}
		tp, err := o.forecast.Predict(ctx, name, trainPlusVal, len(testVals))
		if err != nil {
			continue
		}
		valPreds[name] = vp
		testPreds[name] = tp
		used = append(used, name)
	}
	return valPreds, testPreds, used
}

// blendWeights restricts the optimizer's current weights to the models used
// this window and renormalizes; before any optimization it is uniform.
func (o *Orchestrator) blendWeights(usedModels []string) map[string]float64 {
	current := o.optimizer.Weights()
	weights := make(map[string]float64, len(usedModels))
	var sum float64
	for _, name := range usedModels {
		if w, ok := current[name]; ok && w > 0 {
			weights[name] = w
			sum += w
		}
	}
	if sum <= 0 {
		for _, name := range usedModels {
			weights[name] = 1 / float64(len(usedModels))
		}
		return weights
	}
	for name := range weights {
		weights[name] /= sum
	}
	// Models missing from the optimizer state get nothing this window.
	for _, name := range usedModels {
		if _, ok := weights[name]; !ok {
			weights[name] = 0
		}
	}
	return weights
}

// accumulateLosses appends one loss origin per test observation: the blended
// forecast against the naive no-change baseline (the actual value horizon
// steps earlier). Overlapping horizons make consecutive origins serially
// correlated, which the significance tester's HAC variance accounts for.
func (o *Orchestrator) accumulateLosses(losses *models.ForecastLossSeries, trainVals, valVals, testVals, testBlend []float64, testSeries *models.Series) {
	history := make([]float64, 0, len(trainVals)+len(valVals)+len(testVals))
	history = append(history, trainVals...)
	history = append(history, valVals...)
	offset := len(history)
	history = append(history, testVals...)

	for idx := range testVals {
		pos := offset + idx
		baselinePos := pos - o.cfg.Horizon
		if baselinePos < 0 {
			continue
		}
		losses.Append(models.LossOrigin{
			OriginTime:       testSeries.Observations[idx].Time,
			Actual:           testVals[idx],
			ModelForecast:    testBlend[idx],
			BaselineForecast: history[baselinePos],
		})
	}
}

func (o *Orchestrator) skipWindow(ctx context.Context, report *RunReport, window models.WindowConfig, reason string) {
	report.SkippedWindows++
	result := models.WindowResult{
		ID:         uuid.New(),
		RunID:      report.RunID,
		WindowID:   window.WindowID,
		Symbol:     report.Symbol,
		Horizon:    o.cfg.Horizon,
		Window:     window,
		Status:     models.WindowStatusSkipped,
		SkipReason: reason,
		CreatedAt:  time.Now().UTC(),
	}
	report.Windows = append(report.Windows, result)

	o.persistWindow(ctx, &result, nil)
	o.log.LogWindowSkipped(window.WindowID, reason)
	metrics.RecordWindowSkipped()
}

func (o *Orchestrator) persistWindow(ctx context.Context, result *models.WindowResult, record *models.DivergenceRecord) {
	if o.repos == nil {
		return
	}
	if err := o.repos.WindowResult.Save(ctx, result); err != nil {
		o.log.WithError(err).Warn("Failed to persist window result")
	}
	if record != nil {
		if err := o.repos.Divergence.Insert(ctx, record); err != nil {
			o.log.WithError(err).Warn("Failed to persist divergence record")
		}
	}
}

func (o *Orchestrator) persistWeights(ctx context.Context) {
	if o.repos == nil {
		return
	}
	history := o.optimizer.History()
	if len(history) == 0 {
		return
	}
	latest := history[len(history)-1]
	if err := o.repos.WeightHistory.Append(ctx, &latest); err != nil {
		o.log.WithError(err).Warn("Failed to persist weight snapshot")
	}
}

func (o *Orchestrator) trigger() string {
	if o.cfg.Trigger == "" {
		return "manual"
	}
	return o.cfg.Trigger
}

func blendForecasts(weights map[string]float64, modelNames []string, predictions map[string][]float64, n int) []float64 {
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

func hitRate(predictions, actuals []float64) float64 {
	n := len(predictions)
	if len(actuals) < n {
		n = len(actuals)
	}
	if n < 2 {
		return 0.5
	}
	hits := 0
	for i := 1; i < n; i++ {
		predDir := predictions[i] - actuals[i-1]
		actDir := actuals[i] - actuals[i-1]
		if (predDir >= 0) == (actDir >= 0) {
			hits++
		}
	}
	return float64(hits) / float64(n-1)
}

func relativeError(predictions, actuals []float64) float64 {
	mse := meanSquaredError(predictions, actuals)
	var level float64
	for _, a := range actuals {
		level += a * a
	}
	if len(actuals) > 0 {
		level /= float64(len(actuals))
	}
	if level < divergenceEpsilon {
		level = divergenceEpsilon
	}
	return mse / level
}
