package models

import "time"

// LossOrigin is one forecast origin of a loss series: the realized value and
// the competing model/baseline forecasts made for it.
type LossOrigin struct {
	OriginTime       time.Time `json:"origin_ts"`
	Actual           float64   `json:"actual"`
	ModelForecast    float64   `json:"model_forecast"`
	BaselineForecast float64   `json:"baseline_forecast"`
}

// ForecastLossSeries is an ordered accumulation of forecast origins used by
// the significance tester. Fewer than MinSignificanceOrigins origins yields
// an insufficient-sample result rather than an error.
type ForecastLossSeries struct {
	Origins []LossOrigin `json:"origins"`
}

// MinSignificanceOrigins is the minimum origin count for a trustworthy
// Diebold-Mariano result.
const MinSignificanceOrigins = 100

// Append adds one origin to the series.
func (s *ForecastLossSeries) Append(origin LossOrigin) {
	s.Origins = append(s.Origins, origin)
}

// Len returns the number of accumulated origins.
func (s *ForecastLossSeries) Len() int {
	return len(s.Origins)
}

// SignificanceResult is the outcome of a Diebold-Mariano style test.
// Statistic and PValue are NaN when SampleSufficient is false.
type SignificanceResult struct {
	Statistic        float64 `json:"statistic"`
	PValue           float64 `json:"p_value"`
	IsSignificant    bool    `json:"is_significant"`
	EffectSize       float64 `json:"effect_size"`
	SampleSize       int     `json:"sample_size"`
	SampleSufficient bool    `json:"sample_sufficient"`
	Interpretation   string  `json:"interpretation"`
}

// BeatsBaseline reports whether the tested model should be promoted: the
// loss differential must be significantly negative (model loss below
// baseline loss).
func (r SignificanceResult) BeatsBaseline() bool {
	return r.IsSignificant && r.EffectSize < 0
}
