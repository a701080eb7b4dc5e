// Package transport moves messages between the pipeline stages over a
// publish/subscribe bus. Delivery is at-most-once; retry policy belongs to
// the pipeline, not the transport.
package transport

import "context"

// Handler consumes a single raw message delivered on a topic.
type Handler func(ctx context.Context, payload []byte)

// Bus is the publish/subscribe transport between pipeline stages.
type Bus interface {
	// Publish sends a payload on a topic.
	Publish(ctx context.Context, topic string, payload []byte) error
	// Subscribe registers a handler for a topic. Must be called before Run.
	Subscribe(topic string, h Handler)
	// Run blocks, delivering messages to subscribed handlers until the
	// context is cancelled or the bus is closed.
	Run(ctx context.Context) error
	// Close releases the underlying connection.
	Close()
}
