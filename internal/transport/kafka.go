package transport

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"
	"github.com/twmb/franz-go/pkg/kmsg"
)

const (
	connectAttempts = 5
	idlePollSleep   = 100 * time.Millisecond
)

// KafkaBus connects the pipeline to a Kafka/Redpanda cluster.
type KafkaBus struct {
	client *kgo.Client
	log    *slog.Logger

	mu       sync.RWMutex
	handlers map[string][]Handler
}

// NewKafkaBus connects to the given brokers with retries. Topics lists the
// subscriptions for this process; a publish-only bus passes none.
func NewKafkaBus(ctx context.Context, brokers, group string, topics []string, log *slog.Logger) (*KafkaBus, error) {
	opts := []kgo.Opt{
		kgo.SeedBrokers(strings.Split(brokers, ",")...),
		kgo.SessionTimeout(30 * time.Second),
		kgo.RetryTimeout(30 * time.Second),
		kgo.RetryBackoffFn(func(attempts int) time.Duration {
			return time.Duration(attempts) * time.Second
		}),
	}
	if len(topics) > 0 {
		opts = append(opts,
			kgo.ConsumerGroup(group),
			kgo.ConsumeTopics(topics...),
			kgo.ConsumeResetOffset(kgo.NewOffset().AtEnd()),
			kgo.DisableAutoCommit(),
		)
	}

	var lastErr error
	for attempt := 1; attempt <= connectAttempts; attempt++ {
		client, err := kgo.NewClient(opts...)
		if err != nil {
			lastErr = err
			log.Warn("failed to create kafka client", "attempt", attempt, "error", err)
			time.Sleep(2 * time.Duration(attempt) * time.Second)
			continue
		}

		if err := checkConnection(ctx, client); err != nil {
			lastErr = err
			log.Warn("kafka connection test failed", "attempt", attempt, "error", err)
			client.Close()
			time.Sleep(2 * time.Duration(attempt) * time.Second)
			continue
		}

		log.Info("connected to kafka cluster", "brokers", brokers, "topics", topics)
		return &KafkaBus{
			client:   client,
			log:      log,
			handlers: make(map[string][]Handler),
		}, nil
	}
	return nil, fmt.Errorf("failed to connect to kafka after %d attempts: %w", connectAttempts, lastErr)
}

// checkConnection verifies the cluster is reachable via a metadata request.
func checkConnection(ctx context.Context, client *kgo.Client) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	req := kmsg.MetadataRequest{
		Topics: []kmsg.MetadataRequestTopic{},
	}
	resp, err := client.Request(ctx, &req)
	if err != nil {
		return fmt.Errorf("metadata request failed: %w", err)
	}

	metaResp := resp.(*kmsg.MetadataResponse)
	if len(metaResp.Brokers) == 0 {
		return fmt.Errorf("no brokers found in cluster")
	}
	return nil
}

// Publish sends a payload on a topic and waits for the broker ack.
func (b *KafkaBus) Publish(ctx context.Context, topic string, payload []byte) error {
	record := &kgo.Record{Topic: topic, Value: payload}
	if err := b.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("produce to %s: %w", topic, err)
	}
	return nil
}

// Subscribe registers a handler for a topic this bus consumes.
func (b *KafkaBus) Subscribe(topic string, h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[topic] = append(b.handlers[topic], h)
}

// Run polls the cluster and dispatches records to subscribed handlers until
// the context is cancelled. Fetch errors are logged and polling continues.
func (b *KafkaBus) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			b.log.Info("context cancelled, stopping kafka poll loop")
			return nil
		default:
		}

		fetches := b.client.PollFetches(ctx)
		if fetches.IsClientClosed() {
			return fmt.Errorf("kafka client closed")
		}
		for _, err := range fetches.Errors() {
			if isShutdownErr(err.Err) {
				continue
			}
			b.log.Warn("fetch error", "topic", err.Topic, "error", err.Err)
		}

		var processed int
		fetches.EachRecord(func(record *kgo.Record) {
			processed++
			b.dispatch(ctx, record.Topic, record.Value)
		})

		if processed > 0 {
			if err := b.client.CommitUncommittedOffsets(ctx); err != nil {
				b.log.Warn("error committing offsets", "error", err)
			}
		} else {
			time.Sleep(idlePollSleep)
		}
	}
}

// isShutdownErr reports whether a fetch error is just the poll context
// ending, which happens on every clean shutdown and is not worth a warning.
func isShutdownErr(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

func (b *KafkaBus) dispatch(ctx context.Context, topic string, payload []byte) {
	b.mu.RLock()
	handlers := b.handlers[topic]
	b.mu.RUnlock()
	for _, h := range handlers {
		h(ctx, payload)
	}
}

// Close closes the underlying client.
func (b *KafkaBus) Close() {
	if b.client != nil {
		b.client.Close()
	}
}
