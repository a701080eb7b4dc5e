package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lmittmann/tint"

	"temp-forecast-alert/internal/config"
	"temp-forecast-alert/internal/forecast"
	"temp-forecast-alert/internal/ingest"
	"temp-forecast-alert/internal/metrics"
	"temp-forecast-alert/internal/predictor"
	"temp-forecast-alert/internal/transport"
	"temp-forecast-alert/internal/window"
)

const drainTimeout = 10 * time.Second

func main() {
	log := slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(log)
	log.Info("starting temperature forecaster")

	cfg, err := config.Load()
	if err != nil {
		log.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	log.Info("configuration loaded",
		"brokers", cfg.Brokers,
		"readings_topic", cfg.ReadingsTopic,
		"forecasts_topic", cfg.ForecastsTopic,
		"window_length", cfg.WindowLength,
		"horizon", cfg.Horizon,
		"step", cfg.ForecastStep,
		"predictor", cfg.Predictor)

	metrics.Init()
	if cfg.MetricsAddr != "" {
		go metrics.Serve(cfg.MetricsAddr, log)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pred, err := predictor.ByName(cfg.Predictor, cfg.TrendDamping)
	if err != nil {
		log.Error("failed to create predictor", "error", err)
		os.Exit(1)
	}

	bus, err := transport.NewKafkaBus(ctx, cfg.Brokers, cfg.ForecasterGroup, []string{cfg.ReadingsTopic}, log)
	if err != nil {
		log.Error("failed to connect transport", "error", err)
		os.Exit(1)
	}
	defer bus.Close()

	store := window.NewStore(cfg.WindowLength)
	roller := forecast.NewRoller(cfg.WindowLength, cfg.Horizon, cfg.ForecastStep)
	pipeline := ingest.New(store, roller, pred, bus, cfg.ForecastsTopic, cfg.QueueDepth, log)
	bus.Subscribe(cfg.ReadingsTopic, pipeline.HandleMessage)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	runErrors := make(chan error, 1)
	go func() {
		if err := bus.Run(ctx); err != nil {
			runErrors <- err
		}
	}()

	select {
	case sig := <-sigChan:
		log.Info("received signal, shutting down gracefully", "signal", sig.String())
	case err := <-runErrors:
		log.Error("transport error, shutting down", "error", err)
	}

	cancel()

	drainCtx, drainCancel := context.WithTimeout(context.Background(), drainTimeout)
	defer drainCancel()
	if err := pipeline.Close(drainCtx); err != nil {
		log.Warn("pipeline drain incomplete", "error", err)
	}

	log.Info("forecaster shutdown complete")
}
