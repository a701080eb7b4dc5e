package window

import (
	"sync"
	"time"

	"temp-forecast-alert/internal/model"
)

// Store keeps a bounded FIFO window of the most recent readings for each
// sensor. Appends for the same sensor are serialized; different sensors are
// fully independent.
type Store struct {
	capacity int

	mu      sync.Mutex
	windows map[int]*sensorWindow
}

type sensorWindow struct {
	mu       sync.Mutex
	readings []model.Reading
}

// Snapshot is an immutable copy of one sensor's window taken right after an
// append.
type Snapshot struct {
	SensorID int
	Readings []model.Reading
	Full     bool
}

// NewStore creates a store with the given per-sensor window capacity.
func NewStore(capacity int) *Store {
	if capacity <= 0 {
		capacity = 1
	}
	return &Store{
		capacity: capacity,
		windows:  make(map[int]*sensorWindow),
	}
}

// Capacity returns the configured window length.
func (s *Store) Capacity() int {
	return s.capacity
}

// Append adds a reading to its sensor's window, evicting the oldest entry
// at capacity, and returns a snapshot of the window contents. It never
// fails.
func (s *Store) Append(r model.Reading) Snapshot {
	s.mu.Lock()
	w, ok := s.windows[r.SensorID]
	if !ok {
		w = &sensorWindow{readings: make([]model.Reading, 0, s.capacity)}
		s.windows[r.SensorID] = w
	}
	s.mu.Unlock()

	w.mu.Lock()
	defer w.mu.Unlock()

	if len(w.readings) == s.capacity {
		copy(w.readings, w.readings[1:])
		w.readings[len(w.readings)-1] = r
	} else {
		w.readings = append(w.readings, r)
	}

	snap := Snapshot{
		SensorID: r.SensorID,
		Readings: append([]model.Reading(nil), w.readings...),
		Full:     len(w.readings) == s.capacity,
	}
	return snap
}

// Values returns the window's temperature values in order.
func (s Snapshot) Values() []float64 {
	values := make([]float64, len(s.Readings))
	for i, r := range s.Readings {
		values[i] = r.Temperature
	}
	return values
}

// Timestamps returns the window's timestamps in order.
func (s Snapshot) Timestamps() []time.Time {
	timestamps := make([]time.Time, len(s.Readings))
	for i, r := range s.Readings {
		timestamps[i] = r.Timestamp
	}
	return timestamps
}

// Last returns the most recent reading in the snapshot. The snapshot must
// not be empty.
func (s Snapshot) Last() model.Reading {
	return s.Readings[len(s.Readings)-1]
}
