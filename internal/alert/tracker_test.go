package alert

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrackerFirstUpdateAlwaysEmits(t *testing.T) {
	tracker := NewTracker()

	change, changed := tracker.Update(Assessment{Severity: SeverityNormal})
	require.True(t, changed)
	assert.Equal(t, SeverityNormal, change.Severity)
	assert.Equal(t, BackgroundNormal, change.Background)
}

func TestTrackerIdempotent(t *testing.T) {
	tracker := NewTracker()
	a := Classify([]Observation{{Label: "Forecast", Value: 27.0}}, testThresholds)

	_, changed := tracker.Update(a)
	require.True(t, changed)

	_, changed = tracker.Update(a)
	assert.False(t, changed, "identical assessment must not re-emit")
}

func TestTrackerEmitsOnSeverityChange(t *testing.T) {
	tracker := NewTracker()

	tracker.Update(Classify([]Observation{{Label: "Forecast", Value: 20.0}}, testThresholds))
	change, changed := tracker.Update(Classify([]Observation{{Label: "Forecast", Value: 35.0}}, testThresholds))

	require.True(t, changed)
	assert.Equal(t, SeverityError, change.Severity)
	assert.Equal(t, BackgroundError, change.Background)
}

func TestTrackerEmitsOnMessageChange(t *testing.T) {
	// Same severity, different violating values: the display still needs a
	// redraw.
	tracker := NewTracker()

	tracker.Update(Classify([]Observation{{Label: "Forecast", Value: 26.0}}, testThresholds))
	change, changed := tracker.Update(Classify([]Observation{{Label: "Forecast", Value: 27.0}}, testThresholds))

	require.True(t, changed)
	assert.Equal(t, SeverityWarning, change.Severity)
	assert.Equal(t, BackgroundWarning, change.Background)
}

func TestTrackerBackgroundMapping(t *testing.T) {
	tracker := NewTracker()

	cases := []struct {
		value      float64
		background string
	}{
		{20.0, BackgroundNormal},
		{27.0, BackgroundWarning},
		{35.0, BackgroundError},
	}
	for _, tc := range cases {
		change, changed := tracker.Update(Classify([]Observation{{Label: "Forecast", Value: tc.value}}, testThresholds))
		require.True(t, changed)
		assert.Equal(t, tc.background, change.Background)
	}
}

func TestTrackerCopiesMessages(t *testing.T) {
	tracker := NewTracker()
	a := Classify([]Observation{{Label: "Forecast", Value: 35.0}}, testThresholds)

	change, changed := tracker.Update(a)
	require.True(t, changed)
	change.Messages[0] = "mutated"

	_, changed = tracker.Update(a)
	assert.False(t, changed, "caller mutation must not affect tracked state")
}
