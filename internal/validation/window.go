package validation

import (
	"time"

	"github.com/yourusername/forewarden/internal/models"
)

// WindowGeneratorConfig configures walk-forward window generation. All spans
// are calendar days; gaps in the series make per-window row counts variable.
type WindowGeneratorConfig struct {
	TrainDays int
	ValDays   int
	TestDays  int
	StepSize  int
}

// TotalDays returns the full calendar span of one window.
func (c WindowGeneratorConfig) TotalDays() int {
	return c.TrainDays + c.ValDays + c.TestDays
}

// Validate checks the generator configuration.
func (c WindowGeneratorConfig) Validate() error {
	if c.TrainDays <= 0 || c.ValDays <= 0 || c.TestDays <= 0 || c.StepSize <= 0 {
		return ErrInvalidWindowConfig
	}
	return nil
}

// WindowGenerator turns a sorted series and a size config into an ordered
// list of train/validation/test windows.
type WindowGenerator struct {
	cfg WindowGeneratorConfig
}

// NewWindowGenerator creates a window generator.
func NewWindowGenerator(cfg WindowGeneratorConfig) (*WindowGenerator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &WindowGenerator{cfg: cfg}, nil
}

// Generate emits windows at offsets 0, step, 2*step, ... while a full window
// still fits inside the series' calendar span. A series spanning fewer days
// than one window yields an empty list, not an error. Within each window the
// three sub-ranges are contiguous inclusive day ranges:
// train < val < test, so train_end < val_start and val_end < test_start.
func (g *WindowGenerator) Generate(series *models.Series) []models.WindowConfig {
	span := series.SpanDays()
	total := g.cfg.TotalDays()
	if span < total {
		return nil
	}

	start := series.Start()
	var windows []models.WindowConfig
	windowID := 0

	for s := 0; s+total <= span; s += g.cfg.StepSize {
		trainStart := addDays(start, s)
		trainEnd := addDays(trainStart, g.cfg.TrainDays-1)
		valStart := addDays(trainEnd, 1)
		valEnd := addDays(valStart, g.cfg.ValDays-1)
		testStart := addDays(valEnd, 1)
		testEnd := addDays(testStart, g.cfg.TestDays-1)

		windows = append(windows, models.WindowConfig{
			WindowID:   windowID,
			TrainStart: trainStart,
			TrainEnd:   trainEnd,
			ValStart:   valStart,
			ValEnd:     valEnd,
			TestStart:  testStart,
			TestEnd:    testEnd,
		})
		windowID++
	}

	return windows
}

func addDays(t time.Time, days int) time.Time {
	return t.AddDate(0, 0, days)
}
