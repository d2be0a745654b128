package validation

import (
	"github.com/yourusername/forewarden/internal/config"
)

// Config drives one walk-forward validation run.
type Config struct {
	TrainDays             int
	ValDays               int
	TestDays              int
	StepSize              int
	Horizon               int
	DivergenceThreshold   float64
	RefitFrequency        int
	WeightUpdateFrequency int
	MinTrainSamples       int
	Loss                  LossKind
	SignificanceLevel     float64
	OnlineRecalibration   bool

	// Trigger labels run metrics; "manual" unless set by the scheduler.
	Trigger string
}

// FromAppConfig maps the application configuration onto a run config.
func FromAppConfig(cfg *config.Config) Config {
	return Config{
		TrainDays:             cfg.Validation.TrainDays,
		ValDays:               cfg.Validation.ValDays,
		TestDays:              cfg.Validation.TestDays,
		StepSize:              cfg.Validation.StepSize,
		Horizon:               cfg.Validation.Horizon,
		DivergenceThreshold:   cfg.Validation.DivergenceThreshold,
		RefitFrequency:        cfg.Validation.RefitFrequency,
		WeightUpdateFrequency: cfg.Validation.WeightUpdateFrequency,
		MinTrainSamples:       cfg.Forecaster.MinTrainingSamples,
		Loss:                  LossKind(cfg.Significance.Loss),
		SignificanceLevel:     cfg.Significance.SignificanceLevel,
		OnlineRecalibration:   cfg.Features.OnlineRecalibration,
		Trigger:               "manual",
	}
}

// Validate checks the run configuration.
func (c Config) Validate() error {
	if c.TrainDays <= 0 || c.ValDays <= 0 || c.TestDays <= 0 || c.StepSize <= 0 {
		return ErrInvalidWindowConfig
	}
	if c.Horizon <= 0 || c.Horizon > c.TestDays {
		return ErrInvalidWindowConfig
	}
	if c.RefitFrequency <= 0 || c.WeightUpdateFrequency <= 0 {
		return ErrInvalidWindowConfig
	}
	return nil
}

// WindowConfig extracts the window generator configuration.
func (c Config) WindowConfig() WindowGeneratorConfig {
	return WindowGeneratorConfig{
		TrainDays: c.TrainDays,
		ValDays:   c.ValDays,
		TestDays:  c.TestDays,
		StepSize:  c.StepSize,
	}
}
