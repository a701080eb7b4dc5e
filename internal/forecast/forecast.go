package forecast

import (
	"errors"
	"fmt"
	"time"
)

// ErrWindowSize indicates the input window does not match the configured
// lookback length.
var ErrWindowSize = errors.New("forecast: window length does not match lookback")

// ErrPredict indicates the underlying predictor failed; no partial forecast
// is returned.
var ErrPredict = errors.New("forecast: predictor failed")

// Predictor produces a single next-step prediction from a full window of
// values. Implementations may be slow (model inference) and may fail.
type Predictor interface {
	PredictOne(window []float64) (float64, error)
}

// PredictorFunc adapts a plain function to the Predictor interface.
type PredictorFunc func(window []float64) (float64, error)

// PredictOne calls f.
func (f PredictorFunc) PredictOne(window []float64) (float64, error) {
	return f(window)
}

// Roller produces multi-step rolling forecasts: each predicted value is fed
// back into the working buffer as input for the next step, so every step
// after the first consumes previously predicted values only.
type Roller struct {
	lookback int
	horizon  int
	step     time.Duration
}

// NewRoller creates a roller with the given lookback window length, forecast
// horizon, and step duration between future points.
func NewRoller(lookback, horizon int, step time.Duration) *Roller {
	return &Roller{lookback: lookback, horizon: horizon, step: step}
}

// Horizon returns the number of future points produced per forecast.
func (r *Roller) Horizon() int {
	return r.horizon
}

// Roll runs the autoregressive forecast over the window. The call is
// atomic: a predictor failure at any step aborts the whole forecast.
func (r *Roller) Roll(window []float64, p Predictor) ([]float64, error) {
	if len(window) != r.lookback {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrWindowSize, len(window), r.lookback)
	}

	buf := make([]float64, r.lookback)
	copy(buf, window)

	out := make([]float64, 0, r.horizon)
	for step := 1; step <= r.horizon; step++ {
		next, err := p.PredictOne(buf)
		if err != nil {
			return nil, fmt.Errorf("%w: step %d: %v", ErrPredict, step, err)
		}
		out = append(out, next)

		// Slide the buffer: drop the oldest value, append the prediction.
		copy(buf, buf[1:])
		buf[r.lookback-1] = next
	}
	return out, nil
}

// FutureTimestamps returns the horizon's timestamps: the i-th (1-indexed)
// is last + i*step, always computed from the base so repeated additions
// cannot accumulate drift.
func (r *Roller) FutureTimestamps(last time.Time) []time.Time {
	out := make([]time.Time, r.horizon)
	for i := range out {
		out[i] = last.Add(time.Duration(i+1) * r.step)
	}
	return out
}
