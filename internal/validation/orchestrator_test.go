package validation

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/forewarden/internal/ensemble"
	"github.com/yourusername/forewarden/internal/forecaster"
	"github.com/yourusername/forewarden/internal/models"
)

func testRunConfig() Config {
	return Config{
		TrainDays:             100,
		ValDays:               20,
		TestDays:              20,
		StepSize:              20,
		Horizon:               5,
		DivergenceThreshold:   0.20,
		RefitFrequency:        2,
		WeightUpdateFrequency: 2,
		MinTrainSamples:       10,
		Loss:                  LossSquared,
		SignificanceLevel:     0.05,
		OnlineRecalibration:   true,
	}
}

func testRunSeries(days int) *models.Series {
	series := &models.Series{Symbol: "BTCUSD"}
	start := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < days; i++ {
		price := 100 + 10*math.Sin(float64(i)*0.1) + 0.05*float64(i)
		series.Observations = append(series.Observations, models.Observation{
			Time:  start.AddDate(0, 0, i),
			Price: decimal.NewFromFloat(price),
		})
	}
	return series
}

func newTestOrchestrator(t *testing.T, cfg Config, fc forecaster.Forecaster) *Orchestrator {
	t.Helper()
	opt := ensemble.NewOptimizer(ensemble.Config{Method: ensemble.MethodInverseError}, nil)
	orch, err := NewOrchestrator(cfg, fc, opt, logrus.New())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return orch
}

func TestOrchestratorRun(t *testing.T) {
	// 280 daily rows with 100/20/20 windows stepping by 20: 8 windows.
	orch := newTestOrchestrator(t, testRunConfig(), forecaster.NewNaive(7))

	report, err := orch.Run(context.Background(), testRunSeries(280))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if orch.State() != StateDone {
		t.Errorf("expected state done, got %s", orch.State())
	}
	if report.TotalWindows != 8 {
		t.Fatalf("expected 8 windows, got %d", report.TotalWindows)
	}
	if report.CompletedWindows != 8 || report.SkippedWindows != 0 {
		t.Errorf("expected 8 completed / 0 skipped, got %d / %d", report.CompletedWindows, report.SkippedWindows)
	}
	if len(report.Windows) != 8 {
		t.Fatalf("expected 8 window results, got %d", len(report.Windows))
	}

	for _, w := range report.Windows {
		if w.Status != models.WindowStatusCompleted {
			t.Errorf("window %d: expected completed, got %s (%s)", w.WindowID, w.Status, w.SkipReason)
		}
		if math.IsNaN(w.ValMetric) || math.IsNaN(w.TestMetric) {
			t.Errorf("window %d: NaN metrics", w.WindowID)
		}
		if w.NTrainSamples != 100 || w.NValSamples != 20 || w.NTestSamples != 20 {
			t.Errorf("window %d: unexpected sample counts %d/%d/%d", w.WindowID, w.NTrainSamples, w.NValSamples, w.NTestSamples)
		}
		if len(w.ModelsUsed) == 0 {
			t.Errorf("window %d: no models recorded", w.WindowID)
		}
	}

	if report.Summary.TotalWindows != 8 {
		t.Errorf("expected 8 windows in divergence summary, got %d", report.Summary.TotalWindows)
	}

	// 8 windows x 20 test origins each: enough for the significance gate.
	if report.Significance.SampleSize != 160 {
		t.Errorf("expected 160 loss origins, got %d", report.Significance.SampleSize)
	}
	if !report.Significance.SampleSufficient {
		t.Error("expected a sufficient significance sample")
	}
	if report.Promote != report.Significance.BeatsBaseline() {
		t.Error("promotion decision must follow the significance gate")
	}

	if len(report.Weights) == 0 {
		t.Error("expected final ensemble weights")
	}
	var sum float64
	for _, w := range report.Weights {
		sum += w
	}
	if math.Abs(sum-1) > ensemble.WeightSumTolerance {
		t.Errorf("final weights must sum to 1, got %v", sum)
	}
	if len(report.WeightHistory) == 0 {
		t.Error("expected weight history entries")
	}
}

func TestOrchestratorNoWindows(t *testing.T) {
	orch := newTestOrchestrator(t, testRunConfig(), forecaster.NewNaive(7))

	_, err := orch.Run(context.Background(), testRunSeries(50))
	if !errors.Is(err, ErrNoValidWindows) {
		t.Fatalf("expected ErrNoValidWindows, got %v", err)
	}
	if orch.State() != StateAborted {
		t.Errorf("expected state aborted, got %s", orch.State())
	}
}

func TestOrchestratorCancellation(t *testing.T) {
	orch := newTestOrchestrator(t, testRunConfig(), forecaster.NewNaive(7))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := orch.Run(ctx, testRunSeries(280))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if orch.State() != StateAborted {
		t.Errorf("expected state aborted, got %s", orch.State())
	}
	if report == nil || report.CompletedWindows != 0 {
		t.Errorf("cancelled before the first window, expected 0 completed")
	}
}

// flakyForecaster fails a fixed number of training calls before delegating to
// the baseline forecaster.
type flakyForecaster struct {
	*forecaster.Naive
	failTrains int
	trainCalls int
}

func (f *flakyForecaster) Train(ctx context.Context, model string, values []float64) error {
	f.trainCalls++
	if f.trainCalls <= f.failTrains {
		return errors.New("training backend unavailable")
	}
	return f.Naive.Train(ctx, model, values)
}

func TestOrchestratorSkipsFailedWindow(t *testing.T) {
	cfg := testRunConfig()
	cfg.RefitFrequency = 1

	// Both models fail to train on the first window only.
	fc := &flakyForecaster{Naive: forecaster.NewNaive(7), failTrains: 2}
	orch := newTestOrchestrator(t, cfg, fc)

	report, err := orch.Run(context.Background(), testRunSeries(280))
	if err != nil {
		t.Fatalf("a single bad window must not abort the run: %v", err)
	}

	if report.SkippedWindows != 1 {
		t.Fatalf("expected 1 skipped window, got %d", report.SkippedWindows)
	}
	if report.CompletedWindows != 7 {
		t.Errorf("expected 7 completed windows, got %d", report.CompletedWindows)
	}

	first := report.Windows[0]
	if first.Status != models.WindowStatusSkipped {
		t.Errorf("expected first window skipped, got %s", first.Status)
	}
	if first.SkipReason == "" {
		t.Error("skipped window must carry a reason")
	}
	if orch.State() != StateDone {
		t.Errorf("run with remaining good windows must finish, got %s", orch.State())
	}
}

func TestOrchestratorAllWindowsSkipped(t *testing.T) {
	cfg := testRunConfig()
	cfg.MinTrainSamples = 1000 // more than any window can provide

	orch := newTestOrchestrator(t, cfg, forecaster.NewNaive(7))

	report, err := orch.Run(context.Background(), testRunSeries(280))
	if !errors.Is(err, ErrNoValidWindows) {
		t.Fatalf("expected ErrNoValidWindows, got %v", err)
	}
	if report.SkippedWindows != 8 || report.CompletedWindows != 0 {
		t.Errorf("expected 8 skipped / 0 completed, got %d / %d", report.SkippedWindows, report.CompletedWindows)
	}
	if orch.State() != StateAborted {
		t.Errorf("expected state aborted, got %s", orch.State())
	}
}

func TestOrchestratorUnsortedSeries(t *testing.T) {
	orch := newTestOrchestrator(t, testRunConfig(), forecaster.NewNaive(7))

	series := testRunSeries(280)
	series.Observations[10], series.Observations[11] = series.Observations[11], series.Observations[10]

	if _, err := orch.Run(context.Background(), series); !errors.Is(err, models.ErrSeriesNotSorted) {
		t.Fatalf("expected ErrSeriesNotSorted, got %v", err)
	}
}

func TestOrchestratorSingleUse(t *testing.T) {
	orch := newTestOrchestrator(t, testRunConfig(), forecaster.NewNaive(7))

	if _, err := orch.Run(context.Background(), testRunSeries(280)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := orch.Run(context.Background(), testRunSeries(280)); !errors.Is(err, ErrRunInProgress) {
		t.Fatalf("expected ErrRunInProgress on reuse, got %v", err)
	}
}

func TestRunReportExport(t *testing.T) {
	orch := newTestOrchestrator(t, testRunConfig(), forecaster.NewNaive(7))

	report, err := orch.Run(context.Background(), testRunSeries(280))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	path, err := report.Export(t.TempDir())
	if err != nil {
		t.Fatalf("export failed: %v", err)
	}
	if path == "" {
		t.Fatal("expected a written path")
	}
}
