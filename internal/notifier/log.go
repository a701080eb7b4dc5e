package notifier

import (
	"context"
	"log/slog"
	"strings"

	"temp-forecast-alert/internal/alert"
	"temp-forecast-alert/internal/model"
)

// LogDisplay renders alert state changes through the structured logger.
type LogDisplay struct {
	log *slog.Logger
}

// NewLogDisplay creates a console display.
func NewLogDisplay(log *slog.Logger) *LogDisplay {
	return &LogDisplay{log: log}
}

// Notify implements Display.
func (d *LogDisplay) Notify(_ context.Context, change alert.StateChange, state model.PresentationState) {
	attrs := []any{
		"sensor_id", state.SensorID,
		"severity", change.Severity.String(),
		"background", change.Background,
	}
	if latest, ok := state.LatestTemperature(); ok {
		attrs = append(attrs, "latest_temperature", latest)
	}
	if avg, ok := state.AverageForecast(); ok {
		trend, delta := state.ForecastTrend()
		attrs = append(attrs,
			"avg_forecast", avg,
			"forecast_points", len(state.Forecasts),
			"trend", string(trend),
			"trend_delta", delta,
		)
	}
	if len(change.Messages) > 0 {
		attrs = append(attrs, "alerts", strings.Join(change.Messages, " | "))
	}

	switch change.Severity {
	case alert.SeverityError:
		d.log.Error("alert state changed", attrs...)
	case alert.SeverityWarning:
		d.log.Warn("alert state changed", attrs...)
	default:
		d.log.Info("alert state changed", attrs...)
	}
}
