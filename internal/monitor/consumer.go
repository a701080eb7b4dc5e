// Package monitor consumes forecast bundles, maintains the presentation
// state, and drives the alert displays. The render loop is decoupled from
// message delivery through a single-slot latest-wins buffer: if bundles
// arrive faster than the display can render, only the newest matters.
package monitor

import (
	"context"
	"encoding/json"
	"log/slog"

	"temp-forecast-alert/internal/alert"
	"temp-forecast-alert/internal/metrics"
	"temp-forecast-alert/internal/model"
	"temp-forecast-alert/internal/notifier"
)

// Consumer receives forecast bundles and raises alerts on threshold
// violations across the latest observed value and all forecast values.
type Consumer struct {
	thresholds alert.Thresholds
	tracker    *alert.Tracker
	display    notifier.Display
	log        *slog.Logger

	latest chan model.PresentationState
}

// New creates a consumer. Thresholds must already be validated.
func New(thresholds alert.Thresholds, display notifier.Display, log *slog.Logger) *Consumer {
	return &Consumer{
		thresholds: thresholds,
		tracker:    alert.NewTracker(),
		display:    display,
		log:        log,
		latest:     make(chan model.PresentationState, 1),
	}
}

// HandleMessage decodes a forecast bundle and replaces the pending
// presentation state. Malformed payloads are logged and dropped.
func (c *Consumer) HandleMessage(ctx context.Context, payload []byte) {
	var b model.ForecastBundle
	if err := json.Unmarshal(payload, &b); err != nil {
		metrics.IncDecodeError("forecasts")
		c.log.Warn("dropping malformed forecast bundle", "error", err)
		return
	}
	c.log.Debug("received forecast bundle",
		"sensor_id", b.SensorID,
		"sensor_points", len(b.SensorData),
		"forecast_points", len(b.Forecasts))
	c.offer(model.PresentationFrom(b))
}

// offer replaces any pending state so the render loop always sees the
// newest bundle.
func (c *Consumer) offer(state model.PresentationState) {
	for {
		select {
		case c.latest <- state:
			return
		default:
			select {
			case <-c.latest:
			default:
			}
		}
	}
}

// Run renders pending presentation states until the context is cancelled.
func (c *Consumer) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			c.log.Info("render loop shutting down")
			return
		case state := <-c.latest:
			c.render(ctx, state)
		}
	}
}

// render classifies the state's values and notifies the display when the
// alert state visibly changed. Empty or partial bundles classify over
// whatever values are present.
func (c *Consumer) render(ctx context.Context, state model.PresentationState) {
	assessment := alert.Classify(observations(state), c.thresholds)
	change, changed := c.tracker.Update(assessment)
	if !changed {
		return
	}
	metrics.IncAlertStateChange(change.Severity.String())
	c.display.Notify(ctx, change, state)
}

// observations lists the values to check: the current sensor value first,
// then the forecast values in chronological order.
func observations(state model.PresentationState) []alert.Observation {
	obs := make([]alert.Observation, 0, len(state.Forecasts)+1)
	if latest, ok := state.LatestTemperature(); ok {
		obs = append(obs, alert.Observation{Label: "Current Sensor", Value: latest})
	}
	for _, f := range state.Forecasts {
		obs = append(obs, alert.Observation{Label: "Forecast", Value: f})
	}
	return obs
}
