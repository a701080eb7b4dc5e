// Package notifier renders alert state changes on external surfaces. The
// pipeline only calls displays after the tracker reports a visible change,
// so implementations never see redundant redraws.
package notifier

import (
	"context"

	"temp-forecast-alert/internal/alert"
	"temp-forecast-alert/internal/model"
)

// Display receives alert state changes together with a snapshot of the
// presentation state. Implementations must not block the pipeline; slow
// sends use their own timeouts.
type Display interface {
	Notify(ctx context.Context, change alert.StateChange, state model.PresentationState)
}

// Multi fans a state change out to several displays.
type Multi struct {
	displays []Display
}

// NewMulti constructs a fan-out display.
func NewMulti(displays ...Display) *Multi {
	return &Multi{displays: displays}
}

// Notify forwards the state change to every display.
func (m *Multi) Notify(ctx context.Context, change alert.StateChange, state model.PresentationState) {
	for _, d := range m.displays {
		if d != nil {
			d.Notify(ctx, change, state)
		}
	}
}
