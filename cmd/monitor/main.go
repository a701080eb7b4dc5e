package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/lmittmann/tint"

	"temp-forecast-alert/internal/config"
	"temp-forecast-alert/internal/metrics"
	"temp-forecast-alert/internal/monitor"
	"temp-forecast-alert/internal/notifier"
	"temp-forecast-alert/internal/transport"
)

func main() {
	log := slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(log)
	log.Info("starting temperature forecast monitor")

	cfg, err := config.Load()
	if err != nil {
		log.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	log.Info("configuration loaded",
		"brokers", cfg.Brokers,
		"forecasts_topic", cfg.ForecastsTopic,
		"low_error", cfg.Thresholds.LowError,
		"low_warning", cfg.Thresholds.LowWarning,
		"high_warning", cfg.Thresholds.HighWarning,
		"high_error", cfg.Thresholds.HighError)

	metrics.Init()
	if cfg.MetricsAddr != "" {
		go metrics.Serve(cfg.MetricsAddr, log)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	displays := []notifier.Display{notifier.NewLogDisplay(log)}
	var slack *notifier.SlackDisplay
	if cfg.SlackWebhookURL != "" {
		slack, err = notifier.NewSlackDisplay(cfg.SlackWebhookURL, cfg.SlackChannel, log)
		if err != nil {
			log.Error("failed to create Slack display", "error", err)
			os.Exit(1)
		}
		displays = append(displays, slack)
		if err := slack.SendNotification(ctx, "🚀 Temperature forecast monitor started"); err != nil {
			log.Warn("failed to send startup notification to Slack", "error", err)
		}
	}

	bus, err := transport.NewKafkaBus(ctx, cfg.Brokers, cfg.MonitorGroup, []string{cfg.ForecastsTopic}, log)
	if err != nil {
		log.Error("failed to connect transport", "error", err)
		os.Exit(1)
	}
	defer bus.Close()

	consumer := monitor.New(cfg.Thresholds, notifier.NewMulti(displays...), log)
	bus.Subscribe(cfg.ForecastsTopic, consumer.HandleMessage)
	go consumer.Run(ctx)

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

	if slack != nil {
		if err := slack.SendNotification(context.Background(), "🛑 Temperature forecast monitor shutting down"); err != nil {
			log.Warn("failed to send shutdown notification to Slack", "error", err)
		}
	}

	log.Info("monitor shutdown complete")
}
