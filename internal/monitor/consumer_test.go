package monitor

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"temp-forecast-alert/internal/alert"
	"temp-forecast-alert/internal/model"
)

var testThresholds = alert.Thresholds{
	LowError:    10.0,
	LowWarning:  18.0,
	HighWarning: 25.0,
	HighError:   30.0,
}

type recordingDisplay struct {
	mu      sync.Mutex
	changes []alert.StateChange
	states  []model.PresentationState
}

func (d *recordingDisplay) Notify(_ context.Context, change alert.StateChange, state model.PresentationState) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.changes = append(d.changes, change)
	d.states = append(d.states, state)
}

func (d *recordingDisplay) count() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.changes)
}

func bundlePayload(t *testing.T, b model.ForecastBundle) []byte {
	t.Helper()
	payload, err := json.Marshal(b)
	require.NoError(t, err)
	return payload
}

func testBundle(sensorID int, sensorData, forecasts []float64) model.ForecastBundle {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	b := model.ForecastBundle{SensorID: sensorID, SensorData: sensorData, Forecasts: forecasts}
	for i := range sensorData {
		b.SensorTimestamps = append(b.SensorTimestamps, base.AddDate(0, 0, i))
	}
	for i := range forecasts {
		b.FutureTimestamps = append(b.FutureTimestamps, base.AddDate(0, 0, len(sensorData)+i))
	}
	return b
}

func TestHandleMessageReplacesPendingState(t *testing.T) {
	display := &recordingDisplay{}
	c := New(testThresholds, display, slog.Default())
	ctx := context.Background()

	c.HandleMessage(ctx, bundlePayload(t, testBundle(1, []float64{20}, []float64{21})))
	c.HandleMessage(ctx, bundlePayload(t, testBundle(1, []float64{22}, []float64{23})))

	// Only the newest state is pending; earlier ones are overwritten.
	state := <-c.latest
	assert.Equal(t, []float64{22}, state.SensorData)

	select {
	case <-c.latest:
		t.Fatal("only one state may be pending")
	default:
	}
}

func TestHandleMessageDropsMalformedPayload(t *testing.T) {
	display := &recordingDisplay{}
	c := New(testThresholds, display, slog.Default())

	c.HandleMessage(context.Background(), []byte("garbage"))

	select {
	case <-c.latest:
		t.Fatal("malformed payload must not produce a state")
	default:
	}
}

func TestRenderNotifiesOnStateChange(t *testing.T) {
	display := &recordingDisplay{}
	c := New(testThresholds, display, slog.Default())
	ctx := context.Background()

	c.render(ctx, model.PresentationFrom(testBundle(1, []float64{20}, []float64{35})))
	require.Equal(t, 1, display.count())
	assert.Equal(t, alert.SeverityError, display.changes[0].Severity)

	// Identical assessment: no redundant redraw.
	c.render(ctx, model.PresentationFrom(testBundle(1, []float64{20}, []float64{35})))
	assert.Equal(t, 1, display.count())

	// Severity drops back to normal: the display hears about it.
	c.render(ctx, model.PresentationFrom(testBundle(1, []float64{20}, []float64{21})))
	require.Equal(t, 2, display.count())
	assert.Equal(t, alert.SeverityNormal, display.changes[1].Severity)
}

func TestRenderChecksCurrentValueAndAllForecasts(t *testing.T) {
	display := &recordingDisplay{}
	c := New(testThresholds, display, slog.Default())

	// Current value is fine; one far forecast breaches warning.
	c.render(context.Background(), model.PresentationFrom(
		testBundle(1, []float64{20, 21}, []float64{22, 23, 26})))

	require.Equal(t, 1, display.count())
	change := display.changes[0]
	assert.Equal(t, alert.SeverityWarning, change.Severity)
	require.Len(t, change.Messages, 2)
	assert.Contains(t, change.Messages[1], "Forecast")
}

func TestRenderToleratesEmptyBundle(t *testing.T) {
	display := &recordingDisplay{}
	c := New(testThresholds, display, slog.Default())
	ctx := context.Background()

	// Forecasts absent: severity comes from the current value alone.
	c.render(ctx, model.PresentationFrom(testBundle(1, []float64{35}, nil)))
	require.Equal(t, 1, display.count())
	assert.Equal(t, alert.SeverityError, display.changes[0].Severity)

	// Nothing at all: normal, no violations.
	c.render(ctx, model.PresentationFrom(model.ForecastBundle{SensorID: 1}))
	require.Equal(t, 2, display.count())
	assert.Equal(t, alert.SeverityNormal, display.changes[1].Severity)
	assert.Empty(t, display.changes[1].Messages)
}

func TestRunRendersLatestState(t *testing.T) {
	display := &recordingDisplay{}
	c := New(testThresholds, display, slog.Default())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	go func() {
		c.Run(ctx)
		close(done)
	}()

	c.HandleMessage(ctx, bundlePayload(t, testBundle(1, []float64{35}, []float64{36})))

	require.Eventually(t, func() bool {
		return display.count() == 1
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, alert.SeverityError, display.changes[0].Severity)

	cancel()
	<-done
}
