package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"temp-forecast-alert/internal/alert"
	"temp-forecast-alert/internal/model"
)

// Attachment colors per severity.
const (
	colorNormal  = "#36A64F"
	colorWarning = "#FFA500"
	colorError   = "#FF0000"
)

// SlackDisplay posts alert state changes to a Slack incoming webhook.
type SlackDisplay struct {
	webhookURL string
	channel    string
	httpClient *http.Client
	log        *slog.Logger
}

// SlackMessage represents a Slack message
type SlackMessage struct {
	Channel     string       `json:"channel,omitempty"`
	Text        string       `json:"text,omitempty"`
	Username    string       `json:"username,omitempty"`
	IconEmoji   string       `json:"icon_emoji,omitempty"`
	Attachments []Attachment `json:"attachments,omitempty"`
}

// Attachment represents a Slack message attachment
type Attachment struct {
	Fallback  string  `json:"fallback,omitempty"`
	Color     string  `json:"color,omitempty"`
	Title     string  `json:"title,omitempty"`
	Text      string  `json:"text,omitempty"`
	Fields    []Field `json:"fields,omitempty"`
	Footer    string  `json:"footer,omitempty"`
	Timestamp int64   `json:"ts,omitempty"`
}

// Field represents a field in a Slack attachment
type Field struct {
	Title string `json:"title,omitempty"`
	Value string `json:"value,omitempty"`
	Short bool   `json:"short,omitempty"`
}

// NewSlackDisplay creates a Slack display for the given webhook.
func NewSlackDisplay(webhookURL, channel string, log *slog.Logger) (*SlackDisplay, error) {
	if webhookURL == "" {
		return nil, fmt.Errorf("slack webhook URL cannot be empty")
	}
	return &SlackDisplay{
		webhookURL: webhookURL,
		channel:    channel,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		log: log,
	}, nil
}

// SendNotification sends a simple text notification, used for startup and
// shutdown notices.
func (s *SlackDisplay) SendNotification(ctx context.Context, message string) error {
	return s.sendMessage(ctx, SlackMessage{
		Channel:   s.channel,
		Text:      message,
		Username:  "Temperature Forecast Monitor",
		IconEmoji: ":thermometer:",
	})
}

// Notify implements Display.
func (s *SlackDisplay) Notify(ctx context.Context, change alert.StateChange, state model.PresentationState) {
	title := "Temperature back to normal"
	switch change.Severity {
	case alert.SeverityWarning:
		title = "⚠️ Temperature warning"
	case alert.SeverityError:
		title = "🔥 Temperature error threshold exceeded"
	}

	fields := []Field{
		{Title: "Sensor ID", Value: fmt.Sprintf("%d", state.SensorID), Short: true},
		{Title: "Severity", Value: change.Severity.String(), Short: true},
	}
	if latest, ok := state.LatestTemperature(); ok {
		fields = append(fields, Field{Title: "Latest Temperature", Value: fmt.Sprintf("%.2f°C", latest), Short: true})
	}
	if avg, ok := state.AverageForecast(); ok {
		fields = append(fields, Field{Title: "Avg Forecast", Value: fmt.Sprintf("%.2f°C", avg), Short: true})
		trend, delta := state.ForecastTrend()
		fields = append(fields, Field{Title: "Trend", Value: fmt.Sprintf("%s (%+.2f°C)", trend, delta), Short: true})
		fields = append(fields, Field{Title: "Forecast Points", Value: fmt.Sprintf("%d", len(state.Forecasts)), Short: true})
	}

	attachment := Attachment{
		Fallback:  title,
		Color:     colorFor(change.Severity),
		Title:     title,
		Text:      strings.Join(change.Messages, "\n"),
		Fields:    fields,
		Footer:    "Temperature Forecast Monitoring",
		Timestamp: time.Now().Unix(),
	}

	// A failed delivery must not affect the render loop.
	err := s.sendMessage(ctx, SlackMessage{
		Channel:     s.channel,
		Username:    "Temperature Forecast Monitor",
		IconEmoji:   ":thermometer:",
		Attachments: []Attachment{attachment},
	})
	if err != nil {
		s.log.Warn("failed to send alert to Slack",
			"sensor_id", state.SensorID,
			"severity", change.Severity.String(),
			"error", err)
	}
}

func colorFor(severity alert.Severity) string {
	switch severity {
	case alert.SeverityError:
		return colorError
	case alert.SeverityWarning:
		return colorWarning
	default:
		return colorNormal
	}
}

// sendMessage posts a message to the webhook.
func (s *SlackDisplay) sendMessage(ctx context.Context, message SlackMessage) error {
	payload, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("error marshaling Slack message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.webhookURL, bytes.NewBuffer(payload))
	if err != nil {
		return fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("error sending request to Slack: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected response status: %s", resp.Status)
	}
	return nil
}
