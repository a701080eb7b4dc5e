package model

import "time"

// Trend describes the direction of a forecast sequence.
type Trend string

const (
	TrendRising  Trend = "rising"
	TrendFalling Trend = "falling"
	TrendStable  Trend = "stable"
)

// Forecast deltas within this band count as stable.
const trendEpsilon = 0.5

// PresentationState holds the most recently received forecast bundle for
// display purposes. Each new bundle replaces the previous state wholesale;
// there is no incremental merge.
type PresentationState struct {
	SensorID         int
	SensorData       []float64
	SensorTimestamps []time.Time
	Forecasts        []float64
	FutureTimestamps []time.Time
}

// PresentationFrom builds the display state for a received bundle. Slices
// are copied so the state stays valid independent of the decoded message.
func PresentationFrom(b ForecastBundle) PresentationState {
	return PresentationState{
		SensorID:         b.SensorID,
		SensorData:       append([]float64(nil), b.SensorData...),
		SensorTimestamps: append([]time.Time(nil), b.SensorTimestamps...),
		Forecasts:        append([]float64(nil), b.Forecasts...),
		FutureTimestamps: append([]time.Time(nil), b.FutureTimestamps...),
	}
}

// LatestTemperature returns the most recent observed value, if any.
func (s PresentationState) LatestTemperature() (float64, bool) {
	if len(s.SensorData) == 0 {
		return 0, false
	}
	return s.SensorData[len(s.SensorData)-1], true
}

// AverageForecast returns the mean of the forecast values, if any.
func (s PresentationState) AverageForecast() (float64, bool) {
	if len(s.Forecasts) == 0 {
		return 0, false
	}
	sum := 0.0
	for _, v := range s.Forecasts {
		sum += v
	}
	return sum / float64(len(s.Forecasts)), true
}

// ForecastTrend classifies the first-to-last forecast delta.
func (s PresentationState) ForecastTrend() (Trend, float64) {
	if len(s.Forecasts) < 2 {
		return TrendStable, 0
	}
	delta := s.Forecasts[len(s.Forecasts)-1] - s.Forecasts[0]
	switch {
	case delta > trendEpsilon:
		return TrendRising, delta
	case delta < -trendEpsilon:
		return TrendFalling, delta
	default:
		return TrendStable, delta
	}
}
