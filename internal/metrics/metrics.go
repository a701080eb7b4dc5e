// Package metrics exposes pipeline counters via Prometheus. Init must be
// called once at startup; before that every recorder is a no-op so library
// code and tests never need a registry.
package metrics

import (
	"log/slog"
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const metricPrefix = "pipeline_"

var (
	registerOnce sync.Once

	readingsConsumed   prometheus.Counter
	decodeErrors       *prometheus.CounterVec
	forecastsPublished prometheus.Counter
	predictorFailures  prometheus.Counter
	queueDrops         prometheus.Counter
	alertStateChanges  *prometheus.CounterVec
)

// Init registers the pipeline metrics with the default registry.
func Init() {
	registerOnce.Do(func() {
		readingsConsumed = prometheus.NewCounter(prometheus.CounterOpts{
			Name: metricPrefix + "readings_consumed_total",
			Help: "Total sensor readings decoded from the transport",
		})
		decodeErrors = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "decode_errors_total",
				Help: "Total malformed messages dropped, by stream",
			},
			[]string{"stream"},
		)
		forecastsPublished = prometheus.NewCounter(prometheus.CounterOpts{
			Name: metricPrefix + "forecasts_published_total",
			Help: "Total forecast bundles published",
		})
		predictorFailures = prometheus.NewCounter(prometheus.CounterOpts{
			Name: metricPrefix + "predictor_failures_total",
			Help: "Total aborted forecast cycles due to predictor failure",
		})
		queueDrops = prometheus.NewCounter(prometheus.CounterOpts{
			Name: metricPrefix + "queue_drops_total",
			Help: "Total readings dropped due to per-sensor queue overflow",
		})
		alertStateChanges = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "alert_state_changes_total",
				Help: "Total visible alert state changes, by severity",
			},
			[]string{"severity"},
		)

		prometheus.MustRegister(
			readingsConsumed,
			decodeErrors,
			forecastsPublished,
			predictorFailures,
			queueDrops,
			alertStateChanges,
		)
	})
}

// Serve exposes /metrics on addr. Blocks; intended to run in a goroutine.
func Serve(addr string, log *slog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	log.Info("serving metrics", "addr", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Error("metrics server stopped", "error", err)
	}
}

// IncReadingConsumed counts a decoded sensor reading.
func IncReadingConsumed() {
	if readingsConsumed != nil {
		readingsConsumed.Inc()
	}
}

// IncDecodeError counts a dropped malformed message for a stream.
func IncDecodeError(stream string) {
	if decodeErrors != nil {
		decodeErrors.WithLabelValues(stream).Inc()
	}
}

// IncForecastPublished counts a published forecast bundle.
func IncForecastPublished() {
	if forecastsPublished != nil {
		forecastsPublished.Inc()
	}
}

// IncPredictorFailure counts an aborted forecast cycle.
func IncPredictorFailure() {
	if predictorFailures != nil {
		predictorFailures.Inc()
	}
}

// IncQueueDrop counts a reading dropped on queue overflow.
func IncQueueDrop() {
	if queueDrops != nil {
		queueDrops.Inc()
	}
}

// IncAlertStateChange counts a visible alert state change.
func IncAlertStateChange(severity string) {
	if alertStateChanges != nil {
		alertStateChanges.WithLabelValues(severity).Inc()
	}
}
