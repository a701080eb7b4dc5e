// Package ingest receives raw sensor readings from the transport, feeds the
// sliding windows, and publishes a forecast bundle every time a full window
// receives a new reading.
package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"temp-forecast-alert/internal/forecast"
	"temp-forecast-alert/internal/metrics"
	"temp-forecast-alert/internal/model"
	"temp-forecast-alert/internal/transport"
	"temp-forecast-alert/internal/window"
)

const publishTimeout = 5 * time.Second

// Pipeline turns raw reading messages into forecast bundles. Each sensor
// gets a dedicated worker goroutine with a bounded queue, so window updates
// are single-writer per sensor and slow predictor calls cannot block the
// transport poll loop.
type Pipeline struct {
	store         *window.Store
	roller        *forecast.Roller
	predictor     forecast.Predictor
	bus           transport.Bus
	forecastTopic string
	queueDepth    int
	log           *slog.Logger

	mu      sync.Mutex
	workers map[int]*worker
	closed  bool
	wg      sync.WaitGroup
}

type worker struct {
	queue chan model.Reading
}

// New creates a pipeline publishing forecast bundles to forecastTopic.
func New(store *window.Store, roller *forecast.Roller, p forecast.Predictor, bus transport.Bus, forecastTopic string, queueDepth int, log *slog.Logger) *Pipeline {
	if queueDepth <= 0 {
		queueDepth = 1
	}
	return &Pipeline{
		store:         store,
		roller:        roller,
		predictor:     p,
		bus:           bus,
		forecastTopic: forecastTopic,
		queueDepth:    queueDepth,
		log:           log,
		workers:       make(map[int]*worker),
	}
}

// HandleMessage decodes a raw reading message and hands it to the sensor's
// worker. Malformed payloads are logged and dropped; the stream keeps
// running.
func (p *Pipeline) HandleMessage(ctx context.Context, payload []byte) {
	var r model.Reading
	if err := json.Unmarshal(payload, &r); err != nil {
		metrics.IncDecodeError("readings")
		p.log.Warn("dropping malformed reading", "error", err)
		return
	}
	metrics.IncReadingConsumed()
	p.dispatch(r)
}

// dispatch enqueues a reading on its sensor's worker. When the queue is
// full, the oldest queued reading is dropped so intake never blocks
// indefinitely on a slow predictor. The lock is held across the enqueue so
// Close cannot close the queue between the closed check and the send.
func (p *Pipeline) dispatch(r model.Reading) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	w, ok := p.workers[r.SensorID]
	if !ok {
		w = &worker{queue: make(chan model.Reading, p.queueDepth)}
		p.workers[r.SensorID] = w
		p.wg.Add(1)
		go p.runWorker(w)
	}

	for {
		select {
		case w.queue <- r:
			return
		default:
			select {
			case dropped := <-w.queue:
				metrics.IncQueueDrop()
				p.log.Warn("sensor queue full, dropping oldest reading",
					"sensor_id", r.SensorID, "dropped_timestamp", dropped.Timestamp)
			default:
			}
		}
	}
}

func (p *Pipeline) runWorker(w *worker) {
	defer p.wg.Done()
	for r := range w.queue {
		p.process(r)
	}
}

func (p *Pipeline) process(r model.Reading) {
	snap := p.store.Append(r)
	if !snap.Full {
		p.log.Info("insufficient history for forecast",
			"sensor_id", r.SensorID, "have", len(snap.Readings), "want", p.store.Capacity())
		return
	}

	forecasts, err := p.roller.Roll(snap.Values(), p.predictor)
	if err != nil {
		// No partial bundle is ever published; the next reading retries.
		metrics.IncPredictorFailure()
		p.log.Error("forecast failed", "sensor_id", r.SensorID, "error", err)
		return
	}

	bundle := model.ForecastBundle{
		SensorID:         r.SensorID,
		SensorTimestamps: snap.Timestamps(),
		SensorData:       snap.Values(),
		FutureTimestamps: p.roller.FutureTimestamps(snap.Last().Timestamp),
		Forecasts:        forecasts,
	}
	payload, err := json.Marshal(bundle)
	if err != nil {
		p.log.Error("failed to encode forecast bundle", "sensor_id", r.SensorID, "error", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()
	if err := p.bus.Publish(ctx, p.forecastTopic, payload); err != nil {
		p.log.Error("failed to publish forecast", "sensor_id", r.SensorID, "error", err)
		return
	}
	metrics.IncForecastPublished()
	p.log.Info("published forecast",
		"sensor_id", r.SensorID, "points", len(forecasts), "last_observed", snap.Last().Timestamp)
}

// Close stops intake and drains the per-sensor queues. Queued readings are
// processed to completion unless the context expires first.
func (p *Pipeline) Close(ctx context.Context) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	for _, w := range p.workers {
		close(w.queue)
	}
	p.mu.Unlock()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("ingest: drain timed out: %w", ctx.Err())
	}
}
