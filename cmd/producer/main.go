// The producer replays a historical temperature CSV onto the readings topic
// at a fixed interval, simulating a live sensor feed.
package main

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/lmittmann/tint"

	"temp-forecast-alert/internal/config"
	"temp-forecast-alert/internal/model"
	"temp-forecast-alert/internal/transport"
)

// Accepted timestamp layouts in the CSV, tried in order.
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func main() {
	log := slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(log)

	cfg, err := config.Load()
	if err != nil {
		log.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	csvFile := os.Getenv("CSV_FILE")
	if csvFile == "" {
		log.Error("CSV_FILE must be provided")
		os.Exit(1)
	}
	sensorID := 1
	if v := os.Getenv("SENSOR_ID"); v != "" {
		if id, err := strconv.Atoi(v); err == nil {
			sensorID = id
		}
	}
	interval := time.Second
	if v := os.Getenv("PUBLISH_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			interval = d
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		log.Info("received signal, stopping producer", "signal", sig.String())
		cancel()
	}()

	bus, err := transport.NewKafkaBus(ctx, cfg.Brokers, "", nil, log)
	if err != nil {
		log.Error("failed to connect transport", "error", err)
		os.Exit(1)
	}
	defer bus.Close()

	if err := replay(ctx, bus, cfg.ReadingsTopic, csvFile, sensorID, interval, log); err != nil {
		log.Error("replay failed", "error", err)
		os.Exit(1)
	}
	log.Info("replay complete")
}

// replay publishes one reading per CSV row, one row per interval.
func replay(ctx context.Context, bus transport.Bus, topic, path string, sensorID int, interval time.Duration, log *slog.Logger) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening csv: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	header, err := reader.Read()
	if err != nil {
		return fmt.Errorf("reading csv header: %w", err)
	}
	tsCol, tempCol, err := findColumns(header)
	if err != nil {
		return err
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var published int
	for {
		row, err := reader.Read()
		if err == io.EOF {
			log.Info("reached end of csv", "published", published)
			return nil
		}
		if err != nil {
			return fmt.Errorf("reading csv row: %w", err)
		}

		reading, err := parseRow(row, tsCol, tempCol, sensorID)
		if err != nil {
			log.Warn("skipping malformed row", "error", err)
			continue
		}

		payload, err := json.Marshal(reading)
		if err != nil {
			return fmt.Errorf("encoding reading: %w", err)
		}
		if err := bus.Publish(ctx, topic, payload); err != nil {
			return fmt.Errorf("publishing reading: %w", err)
		}
		published++
		log.Info("published reading",
			"sensor_id", reading.SensorID,
			"timestamp", reading.Timestamp,
			"temperature", reading.Temperature)

		select {
		case <-ctx.Done():
			log.Info("replay cancelled", "published", published)
			return nil
		case <-ticker.C:
		}
	}
}

func findColumns(header []string) (tsCol, tempCol int, err error) {
	tsCol, tempCol = -1, -1
	for i, name := range header {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "timestamps", "timestamp":
			tsCol = i
		case "temperature":
			tempCol = i
		}
	}
	if tsCol < 0 || tempCol < 0 {
		return 0, 0, fmt.Errorf("csv must have timestamp and temperature columns, got %v", header)
	}
	return tsCol, tempCol, nil
}

func parseRow(row []string, tsCol, tempCol, sensorID int) (model.Reading, error) {
	if tsCol >= len(row) || tempCol >= len(row) {
		return model.Reading{}, fmt.Errorf("row has %d columns", len(row))
	}

	var ts time.Time
	var err error
	for _, layout := range timestampLayouts {
		ts, err = time.Parse(layout, strings.TrimSpace(row[tsCol]))
		if err == nil {
			break
		}
	}
	if err != nil {
		return model.Reading{}, fmt.Errorf("parsing timestamp %q: %w", row[tsCol], err)
	}

	temp, err := strconv.ParseFloat(strings.TrimSpace(row[tempCol]), 64)
	if err != nil {
		return model.Reading{}, fmt.Errorf("parsing temperature %q: %w", row[tempCol], err)
	}

	return model.Reading{SensorID: sensorID, Timestamp: ts, Temperature: temp}, nil
}
