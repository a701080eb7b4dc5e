package alert

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testThresholds = Thresholds{
	LowError:    10.0,
	LowWarning:  18.0,
	HighWarning: 25.0,
	HighError:   30.0,
}

func TestThresholdsValidate(t *testing.T) {
	require.NoError(t, testThresholds.Validate())

	bad := []Thresholds{
		{LowError: 18, LowWarning: 10, HighWarning: 25, HighError: 30},
		{LowError: 10, LowWarning: 25, HighWarning: 18, HighError: 30},
		{LowError: 10, LowWarning: 18, HighWarning: 30, HighError: 25},
		{LowError: 10, LowWarning: 10, HighWarning: 25, HighError: 30},
		{},
	}
	for _, tt := range bad {
		assert.ErrorIs(t, tt.Validate(), ErrThresholds, "%+v", tt)
	}
}

func TestClassifySingleValues(t *testing.T) {
	tests := []struct {
		value    float64
		severity Severity
		message  string
	}{
		{5.0, SeverityError, "Current Sensor: 5.00°C < 10.00°C"},
		{20.0, SeverityNormal, ""},
		{27.0, SeverityWarning, "Current Sensor: 27.00°C > 25.00°C"},
		{35.0, SeverityError, "Current Sensor: 35.00°C > 30.00°C"},
		{15.0, SeverityWarning, "Current Sensor: 15.00°C < 18.00°C"},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%.1f", tt.value), func(t *testing.T) {
			a := Classify([]Observation{{Label: "Current Sensor", Value: tt.value}}, testThresholds)
			assert.Equal(t, tt.severity, a.Severity)
			if tt.severity == SeverityNormal {
				assert.Empty(t, a.Violations)
				assert.Empty(t, a.Messages)
			} else {
				require.Len(t, a.Violations, 1)
				assert.Equal(t, tt.message, a.Violations[0].Message)
			}
		})
	}
}

func TestClassifyErrorTakesPrecedence(t *testing.T) {
	a := Classify([]Observation{
		{Label: "Current Sensor", Value: 5.0},
		{Label: "Forecast", Value: 27.0},
	}, testThresholds)

	assert.Equal(t, SeverityError, a.Severity)
	// Only the error violations are reported, errors first.
	require.Len(t, a.Violations, 1)
	assert.Equal(t, "Current Sensor", a.Violations[0].Label)
	assert.Equal(t, SeverityError, a.Violations[0].Severity)
	require.Len(t, a.Messages, 2)
	assert.Equal(t, "ERROR THRESHOLD EXCEEDED!", a.Messages[0])
}

func TestClassifyCapsViolationLines(t *testing.T) {
	obs := make([]Observation, 5)
	for i := range obs {
		obs[i] = Observation{Label: "Forecast", Value: 35.0}
	}

	a := Classify(obs, testThresholds)
	assert.Equal(t, SeverityError, a.Severity)
	assert.Len(t, a.Violations, 5)
	require.Len(t, a.Messages, 5) // headline + 3 lines + suffix
	assert.Equal(t, "... and 2 more violations", a.Messages[4])
}

func TestClassifyEvaluationOrder(t *testing.T) {
	a := Classify([]Observation{
		{Label: "Current Sensor", Value: 27.0},
		{Label: "Forecast", Value: 26.0},
	}, testThresholds)

	assert.Equal(t, SeverityWarning, a.Severity)
	require.Len(t, a.Messages, 3)
	assert.Equal(t, "WARNING THRESHOLD EXCEEDED!", a.Messages[0])
	assert.Contains(t, a.Messages[1], "Current Sensor")
	assert.Contains(t, a.Messages[2], "Forecast")
}

func TestClassifyNoObservations(t *testing.T) {
	a := Classify(nil, testThresholds)
	assert.Equal(t, SeverityNormal, a.Severity)
	assert.Empty(t, a.Violations)
}

func TestSeverityString(t *testing.T) {
	assert.Equal(t, "normal", SeverityNormal.String())
	assert.Equal(t, "warning", SeverityWarning.String())
	assert.Equal(t, "error", SeverityError.String())
}
