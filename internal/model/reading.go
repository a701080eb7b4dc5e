package model

import "time"

// Reading represents a single temperature measurement from a sensor
type Reading struct {
	SensorID    int       `json:"sensor_id"`
	Timestamp   time.Time `json:"timestamp"`
	Temperature float64   `json:"temperature"`
}

// ForecastBundle carries one forecast cycle: the window of readings that
// produced it plus the predicted future points. Timestamps are encoded as
// ISO-8601 strings on the wire.
type ForecastBundle struct {
	SensorID         int         `json:"sensor_id"`
	SensorTimestamps []time.Time `json:"sensor_timestamp"`
	SensorData       []float64   `json:"sensor_data"`
	FutureTimestamps []time.Time `json:"future_timestamps"`
	Forecasts        []float64   `json:"forecasts"`
}
