// Package predictor provides built-in single-step predictors. The pipeline
// treats prediction as an opaque capability, so a trained model served over
// any mechanism can replace these by implementing forecast.Predictor.
package predictor

import (
	"errors"
	"fmt"

	"temp-forecast-alert/internal/forecast"
)

const defaultDamping = 0.8

// DampedTrend extrapolates the window's last level plus its average step,
// damping the step so long horizons revert toward the recent level instead
// of running away.
type DampedTrend struct {
	Damping float64
}

// PredictOne implements forecast.Predictor.
func (d DampedTrend) PredictOne(window []float64) (float64, error) {
	if len(window) == 0 {
		return 0, errors.New("predictor: empty window")
	}
	if len(window) == 1 {
		return window[0], nil
	}
	level := window[len(window)-1]
	trend := (level - window[0]) / float64(len(window)-1)
	damping := d.Damping
	if damping <= 0 || damping > 1 {
		damping = defaultDamping
	}
	return level + damping*trend, nil
}

// Persistence repeats the window's last value.
type Persistence struct{}

// PredictOne implements forecast.Predictor.
func (Persistence) PredictOne(window []float64) (float64, error) {
	if len(window) == 0 {
		return 0, errors.New("predictor: empty window")
	}
	return window[len(window)-1], nil
}

// ByName resolves a predictor from its configured name.
func ByName(name string, damping float64) (forecast.Predictor, error) {
	switch name {
	case "", "damped-trend":
		return DampedTrend{Damping: damping}, nil
	case "persistence":
		return Persistence{}, nil
	default:
		return nil, fmt.Errorf("predictor: unknown predictor %q", name)
	}
}
