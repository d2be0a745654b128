package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Observation is a single time-indexed point of an input series. Prices are
// kept as exact decimals at the ingestion boundary; the validation core works
// on float64 targets extracted once via TargetValues.
type Observation struct {
	Time  time.Time       `db:"time" json:"time"`
	Price decimal.Decimal `db:"price" json:"price"`
}

// Series is a chronologically sorted, uniquely time-indexed slice of
// observations for one symbol.
type Series struct {
	Symbol       string        `json:"symbol"`
	Observations []Observation `json:"observations"`
}

// Validate checks the series invariants: strictly increasing timestamps.
func (s *Series) Validate() error {
	for i := 1; i < len(s.Observations); i++ {
		prev := s.Observations[i-1].Time
		cur := s.Observations[i].Time
		if cur.Before(prev) {
			return ErrSeriesNotSorted
		}
		if cur.Equal(prev) {
			return ErrDuplicateIndex
		}
	}
	return nil
}

// Len returns the number of observations.
func (s *Series) Len() int {
	return len(s.Observations)
}

// Start returns the first timestamp, or the zero time for an empty series.
func (s *Series) Start() time.Time {
	if len(s.Observations) == 0 {
		return time.Time{}
	}
	return s.Observations[0].Time
}

// End returns the last timestamp, or the zero time for an empty series.
func (s *Series) End() time.Time {
	if len(s.Observations) == 0 {
		return time.Time{}
	}
	return s.Observations[len(s.Observations)-1].Time
}

// SpanDays returns the calendar span of the series in days, counting both
// endpoints. A one-row series spans one day. Non-trading gaps mean SpanDays
// is usually larger than Len.
func (s *Series) SpanDays() int {
	if len(s.Observations) == 0 {
		return 0
	}
	return int(s.End().Sub(s.Start()).Hours()/24) + 1
}

// Slice returns the observations with from <= t <= to, preserving order.
func (s *Series) Slice(from, to time.Time) *Series {
	out := &Series{Symbol: s.Symbol}
	for _, obs := range s.Observations {
		if obs.Time.Before(from) || obs.Time.After(to) {
			continue
		}
		out.Observations = append(out.Observations, obs)
	}
	return out
}

// TargetValues extracts the target column as float64 for the numeric core.
func (s *Series) TargetValues() []float64 {
	values := make([]float64, len(s.Observations))
	for i, obs := range s.Observations {
		values[i], _ = obs.Price.Float64()
	}
	return values
}
