package alert

import (
	"slices"
	"sync"
)

// Background colors for the display layer, one per severity.
const (
	BackgroundNormal  = "#FFFFFF"
	BackgroundWarning = "#FFFACD"
	BackgroundError   = "#FFB6C1"
)

// StateChange reports a visible alert-state transition to the display.
type StateChange struct {
	Severity   Severity
	Background string
	Messages   []string
}

// Tracker remembers the last rendered alert state and reports only visible
// changes, so rapid oscillation on borderline values cannot flicker the
// display and identical assessments do not trigger redundant redraws.
type Tracker struct {
	mu   sync.Mutex
	seen bool
	last Assessment
}

// NewTracker creates a tracker with no rendered state yet; the first update
// always reports a change.
func NewTracker() *Tracker {
	return &Tracker{}
}

// Update compares the assessment with the last rendered state. It returns
// the state change and true when the severity or the message content
// differs, and false when the display can skip the redraw.
func (t *Tracker) Update(a Assessment) (StateChange, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.seen && t.last.Severity == a.Severity && slices.Equal(t.last.Messages, a.Messages) {
		return StateChange{}, false
	}

	t.seen = true
	t.last = a
	return StateChange{
		Severity:   a.Severity,
		Background: backgroundFor(a.Severity),
		Messages:   append([]string(nil), a.Messages...),
	}, true
}

func backgroundFor(s Severity) string {
	switch s {
	case SeverityError:
		return BackgroundError
	case SeverityWarning:
		return BackgroundWarning
	default:
		return BackgroundNormal
	}
}
