package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"temp-forecast-alert/internal/alert"
)

// Config holds the application configuration
type Config struct {
	// Transport configuration
	Brokers         string
	ReadingsTopic   string
	ForecastsTopic  string
	ForecasterGroup string
	MonitorGroup    string

	// Forecast configuration
	WindowLength int
	Horizon      int
	ForecastStep time.Duration
	QueueDepth   int
	Predictor    string
	TrendDamping float64

	// Alert configuration
	Thresholds alert.Thresholds

	// Slack configuration (optional; monitor logs only when unset)
	SlackWebhookURL string
	SlackChannel    string

	// Observability
	MetricsAddr string
}

// Load builds the configuration from an optional YAML file (CONFIG_FILE)
// overridden by environment variables, then validates it.
func Load() (*Config, error) {
	config := &Config{
		Brokers:         "localhost:9092",
		ReadingsTopic:   "sensor.readings",
		ForecastsTopic:  "sensor.forecasts",
		ForecasterGroup: "temp-forecaster-group",
		MonitorGroup:    "temp-monitor-group",
		WindowLength:    10,
		Horizon:         10,
		ForecastStep:    24 * time.Hour,
		QueueDepth:      16,
		Predictor:       "damped-trend",
		TrendDamping:    0.8,
		Thresholds: alert.Thresholds{
			LowError:    10.0,
			LowWarning:  18.0,
			HighWarning: 25.0,
			HighError:   30.0,
		},
		SlackChannel: "#alerts",
	}

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := config.applyFile(path); err != nil {
			return nil, err
		}
	}
	config.applyEnv()

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate fails fast on configuration the pipeline must not start with.
func (c *Config) Validate() error {
	if err := c.Thresholds.Validate(); err != nil {
		return err
	}
	if c.WindowLength <= 0 {
		return fmt.Errorf("WINDOW_LENGTH must be greater than 0")
	}
	if c.Horizon <= 0 {
		return fmt.Errorf("FORECAST_HORIZON must be greater than 0")
	}
	if c.ForecastStep <= 0 {
		return fmt.Errorf("FORECAST_STEP must be greater than 0")
	}
	if c.QueueDepth <= 0 {
		return fmt.Errorf("QUEUE_DEPTH must be greater than 0")
	}
	return nil
}

// fileConfig mirrors Config for YAML decoding; durations are strings.
type fileConfig struct {
	Brokers         string  `yaml:"brokers"`
	ReadingsTopic   string  `yaml:"readings_topic"`
	ForecastsTopic  string  `yaml:"forecasts_topic"`
	ForecasterGroup string  `yaml:"forecaster_group"`
	MonitorGroup    string  `yaml:"monitor_group"`
	WindowLength    int     `yaml:"window_length"`
	Horizon         int     `yaml:"forecast_horizon"`
	ForecastStep    string  `yaml:"forecast_step"`
	QueueDepth      int     `yaml:"queue_depth"`
	Predictor       string  `yaml:"predictor"`
	TrendDamping    float64 `yaml:"trend_damping"`
	Thresholds      struct {
		LowError    *float64 `yaml:"low_error"`
		LowWarning  *float64 `yaml:"low_warning"`
		HighWarning *float64 `yaml:"high_warning"`
		HighError   *float64 `yaml:"high_error"`
	} `yaml:"thresholds"`
	SlackWebhookURL string `yaml:"slack_webhook_url"`
	SlackChannel    string `yaml:"slack_channel"`
	MetricsAddr     string `yaml:"metrics_addr"`
}

func (c *Config) applyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}
	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parsing config file %s: %w", path, err)
	}

	if fc.Brokers != "" {
		c.Brokers = fc.Brokers
	}
	if fc.ReadingsTopic != "" {
		c.ReadingsTopic = fc.ReadingsTopic
	}
	if fc.ForecastsTopic != "" {
		c.ForecastsTopic = fc.ForecastsTopic
	}
	if fc.ForecasterGroup != "" {
		c.ForecasterGroup = fc.ForecasterGroup
	}
	if fc.MonitorGroup != "" {
		c.MonitorGroup = fc.MonitorGroup
	}
	if fc.WindowLength > 0 {
		c.WindowLength = fc.WindowLength
	}
	if fc.Horizon > 0 {
		c.Horizon = fc.Horizon
	}
	if fc.ForecastStep != "" {
		step, err := time.ParseDuration(fc.ForecastStep)
		if err != nil {
			return fmt.Errorf("parsing forecast_step: %w", err)
		}
		c.ForecastStep = step
	}
	if fc.QueueDepth > 0 {
		c.QueueDepth = fc.QueueDepth
	}
	if fc.Predictor != "" {
		c.Predictor = fc.Predictor
	}
	if fc.TrendDamping > 0 {
		c.TrendDamping = fc.TrendDamping
	}
	if fc.Thresholds.LowError != nil {
		c.Thresholds.LowError = *fc.Thresholds.LowError
	}
	if fc.Thresholds.LowWarning != nil {
		c.Thresholds.LowWarning = *fc.Thresholds.LowWarning
	}
	if fc.Thresholds.HighWarning != nil {
		c.Thresholds.HighWarning = *fc.Thresholds.HighWarning
	}
	if fc.Thresholds.HighError != nil {
		c.Thresholds.HighError = *fc.Thresholds.HighError
	}
	if fc.SlackWebhookURL != "" {
		c.SlackWebhookURL = fc.SlackWebhookURL
	}
	if fc.SlackChannel != "" {
		c.SlackChannel = fc.SlackChannel
	}
	if fc.MetricsAddr != "" {
		c.MetricsAddr = fc.MetricsAddr
	}
	return nil
}

func (c *Config) applyEnv() {
	c.Brokers = getEnv("BROKERS", c.Brokers)
	c.ReadingsTopic = getEnv("READINGS_TOPIC", c.ReadingsTopic)
	c.ForecastsTopic = getEnv("FORECASTS_TOPIC", c.ForecastsTopic)
	c.ForecasterGroup = getEnv("FORECASTER_GROUP", c.ForecasterGroup)
	c.MonitorGroup = getEnv("MONITOR_GROUP", c.MonitorGroup)
	c.WindowLength = getEnvAsInt("WINDOW_LENGTH", c.WindowLength)
	c.Horizon = getEnvAsInt("FORECAST_HORIZON", c.Horizon)
	c.ForecastStep = getEnvAsDuration("FORECAST_STEP", c.ForecastStep)
	c.QueueDepth = getEnvAsInt("QUEUE_DEPTH", c.QueueDepth)
	c.Predictor = getEnv("PREDICTOR", c.Predictor)
	c.TrendDamping = getEnvAsFloat("TREND_DAMPING", c.TrendDamping)
	c.Thresholds.LowError = getEnvAsFloat("LOW_ERROR_THRESHOLD", c.Thresholds.LowError)
	c.Thresholds.LowWarning = getEnvAsFloat("LOW_WARNING_THRESHOLD", c.Thresholds.LowWarning)
	c.Thresholds.HighWarning = getEnvAsFloat("HIGH_WARNING_THRESHOLD", c.Thresholds.HighWarning)
	c.Thresholds.HighError = getEnvAsFloat("HIGH_ERROR_THRESHOLD", c.Thresholds.HighError)
	c.SlackWebhookURL = getEnv("SLACK_WEBHOOK_URL", c.SlackWebhookURL)
	c.SlackChannel = getEnv("SLACK_CHANNEL", c.SlackChannel)
	c.MetricsAddr = getEnv("METRICS_ADDR", c.MetricsAddr)
}

// getEnv gets an environment variable with a fallback value
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// getEnvAsInt gets an environment variable as an integer with a fallback value
func getEnvAsInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return fallback
}

// getEnvAsFloat gets an environment variable as a float with a fallback value
func getEnvAsFloat(key string, fallback float64) float64 {
	if value, exists := os.LookupEnv(key); exists {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return fallback
}

// getEnvAsDuration gets an environment variable as a duration with a fallback value
func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}
