package alert

import (
	"errors"
	"fmt"
)

// Severity is an ordered alert level.
type Severity int

const (
	SeverityNormal Severity = iota
	SeverityWarning
	SeverityError
)

// String returns the lowercase severity name.
func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return "normal"
	}
}

// ErrThresholds indicates an inconsistent threshold configuration.
var ErrThresholds = errors.New("alert: thresholds must satisfy lowError < lowWarning < highWarning < highError")

// Thresholds defines the warning and error bands for temperature values.
type Thresholds struct {
	LowError    float64
	LowWarning  float64
	HighWarning float64
	HighError   float64
}

// Validate checks the threshold ordering invariant. A process must not
// start with inconsistent thresholds.
func (t Thresholds) Validate() error {
	if t.LowError < t.LowWarning && t.LowWarning < t.HighWarning && t.HighWarning < t.HighError {
		return nil
	}
	return fmt.Errorf("%w: got %.2f/%.2f/%.2f/%.2f",
		ErrThresholds, t.LowError, t.LowWarning, t.HighWarning, t.HighError)
}

// Observation is a single labeled value to check against the thresholds.
type Observation struct {
	Label string
	Value float64
}

// Violation records one observation that breached a threshold.
type Violation struct {
	Label    string
	Value    float64
	Severity Severity
	Message  string
}

// Assessment is the classification result over a set of observations.
type Assessment struct {
	Severity   Severity
	Messages   []string
	Violations []Violation
}

// At most this many violation lines are listed per assessment; the rest are
// summarized with a count suffix.
const maxViolationLines = 3

// Classify checks each observation against the thresholds and aggregates
// the result. An error-level breach on an observation takes precedence over
// a warning-level breach, and the aggregate severity is the highest found.
// When any observation is at error level, only the error violations are
// reported.
func Classify(observations []Observation, t Thresholds) Assessment {
	var errorViolations, warningViolations []Violation

	for _, o := range observations {
		switch {
		case o.Value > t.HighError:
			errorViolations = append(errorViolations, violation(o, SeverityError, ">", t.HighError))
		case o.Value < t.LowError:
			errorViolations = append(errorViolations, violation(o, SeverityError, "<", t.LowError))
		case o.Value > t.HighWarning:
			warningViolations = append(warningViolations, violation(o, SeverityWarning, ">", t.HighWarning))
		case o.Value < t.LowWarning:
			warningViolations = append(warningViolations, violation(o, SeverityWarning, "<", t.LowWarning))
		}
	}

	switch {
	case len(errorViolations) > 0:
		return assessment(SeverityError, "ERROR THRESHOLD EXCEEDED!", errorViolations)
	case len(warningViolations) > 0:
		return assessment(SeverityWarning, "WARNING THRESHOLD EXCEEDED!", warningViolations)
	default:
		return Assessment{Severity: SeverityNormal}
	}
}

func violation(o Observation, severity Severity, op string, threshold float64) Violation {
	return Violation{
		Label:    o.Label,
		Value:    o.Value,
		Severity: severity,
		Message:  fmt.Sprintf("%s: %.2f°C %s %.2f°C", o.Label, o.Value, op, threshold),
	}
}

func assessment(severity Severity, headline string, violations []Violation) Assessment {
	messages := make([]string, 0, len(violations)+2)
	messages = append(messages, headline)
	for i, v := range violations {
		if i == maxViolationLines {
			messages = append(messages, fmt.Sprintf("... and %d more violations", len(violations)-maxViolationLines))
			break
		}
		messages = append(messages, v.Message)
	}
	return Assessment{Severity: severity, Messages: messages, Violations: violations}
}
