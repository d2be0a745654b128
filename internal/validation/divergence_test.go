package validation

import (
	"math"
	"testing"
)

func TestDivergenceIdenticalMetrics(t *testing.T) {
	if d := Divergence(1.5, 1.5); d != 0 {
		t.Errorf("identical metrics must give zero divergence, got %v", d)
	}

	monitor := NewDivergenceMonitor(0.20, nil)
	record := monitor.LogWindowResult("BTCUSD", 0, 5, 0, 1.5, 1.5, 100, 100, []string{"naive"})
	if record.IsOverfitting {
		t.Error("zero divergence must not be flagged as overfitting")
	}
}

func TestDivergenceKnownRatio(t *testing.T) {
	// test metric 1.8x the validation metric: divergence 0.8.
	d := Divergence(1.0, 1.8)
	if math.Abs(d-0.8) > 0.01 {
		t.Errorf("expected divergence 0.8, got %v", d)
	}

	monitor := NewDivergenceMonitor(0.20, nil)
	record := monitor.LogWindowResult("BTCUSD", 0, 5, 0, 1.0, 1.8, 100, 100, []string{"naive"})
	if !record.IsOverfitting {
		t.Error("divergence 0.8 above threshold 0.2 must be flagged")
	}
}

func TestDivergenceSymmetric(t *testing.T) {
	// A test metric far below validation is flagged too: any large swing
	// between holdouts is suspect.
	monitor := NewDivergenceMonitor(0.20, nil)
	record := monitor.LogWindowResult("BTCUSD", 0, 5, 0, 1.0, 0.2, 100, 100, []string{"naive"})
	if !record.IsOverfitting {
		t.Error("large improvement on test must also be flagged")
	}
}

func TestDivergenceEpsilonGuard(t *testing.T) {
	d := Divergence(0, 1)
	if math.IsNaN(d) || math.IsInf(d, 0) {
		t.Errorf("zero validation metric must give a finite divergence, got %v", d)
	}
	if d <= 1 {
		t.Errorf("expected large divergence for zero validation metric, got %v", d)
	}
}

func TestSummaryEmpty(t *testing.T) {
	monitor := NewDivergenceMonitor(0.25, nil)
	summary := monitor.Summary()

	if summary.TotalWindows != 0 || summary.MeanDivergence != 0 || summary.OverfittingWindows != 0 {
		t.Errorf("empty summary must be all-zero, got %+v", summary)
	}
	if summary.DivergenceThreshold != 0.25 {
		t.Errorf("empty summary must still carry the threshold, got %v", summary.DivergenceThreshold)
	}
}

func TestSummaryAggregates(t *testing.T) {
	monitor := NewDivergenceMonitor(0.20, nil)
	monitor.LogWindowResult("BTCUSD", 0, 5, 0, 1.0, 1.1, 100, 100, []string{"naive"}) // 0.1
	monitor.LogWindowResult("BTCUSD", 0, 5, 1, 1.0, 1.5, 100, 100, []string{"naive"}) // 0.5
	monitor.LogWindowResult("BTCUSD", 0, 5, 2, 1.0, 1.3, 100, 100, []string{"naive"}) // 0.3

	summary := monitor.Summary()
	if summary.TotalWindows != 3 {
		t.Fatalf("expected 3 windows, got %d", summary.TotalWindows)
	}
	if math.Abs(summary.MeanDivergence-0.3) > 1e-9 {
		t.Errorf("expected mean divergence 0.3, got %v", summary.MeanDivergence)
	}
	if math.Abs(summary.MinDivergence-0.1) > 1e-9 || math.Abs(summary.MaxDivergence-0.5) > 1e-9 {
		t.Errorf("expected min/max 0.1/0.5, got %v/%v", summary.MinDivergence, summary.MaxDivergence)
	}
	if summary.OverfittingWindows != 2 {
		t.Errorf("expected 2 overfitting windows, got %d", summary.OverfittingWindows)
	}
	if math.Abs(summary.PctOverfitting-100.0*2/3) > 1e-9 {
		t.Errorf("expected pct overfitting %.4f, got %v", 100.0*2/3, summary.PctOverfitting)
	}
}

func TestNewDivergenceMonitorDefaultThreshold(t *testing.T) {
	monitor := NewDivergenceMonitor(0, nil)
	if monitor.Threshold() != DefaultDivergenceThreshold {
		t.Errorf("non-positive threshold must select default, got %v", monitor.Threshold())
	}
}

func TestHistoryIsCopy(t *testing.T) {
	monitor := NewDivergenceMonitor(0.20, nil)
	monitor.LogWindowResult("BTCUSD", 0, 5, 0, 1.0, 1.1, 100, 100, []string{"naive"})

	history := monitor.History()
	history[0].Divergence = 999

	if monitor.History()[0].Divergence == 999 {
		t.Error("History must return a copy, not the internal slice")
	}
}
