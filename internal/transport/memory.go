package transport

import (
	"context"
	"errors"
	"sync"
)

// ErrClosed is returned by Publish after the bus has been closed.
var ErrClosed = errors.New("transport: bus closed")

// MemoryBus is an in-process Bus used by tests and single-process runs.
// Publish delivers synchronously to the subscribed handlers.
type MemoryBus struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
	closed   bool
	done     chan struct{}
}

// NewMemoryBus creates an empty in-process bus.
func NewMemoryBus() *MemoryBus {
	return &MemoryBus{
		handlers: make(map[string][]Handler),
		done:     make(chan struct{}),
	}
}

// Publish delivers the payload to every handler subscribed to the topic.
func (b *MemoryBus) Publish(ctx context.Context, topic string, payload []byte) error {
	b.mu.RLock()
	if b.closed {
		b.mu.RUnlock()
		return ErrClosed
	}
	handlers := append([]Handler(nil), b.handlers[topic]...)
	b.mu.RUnlock()

	for _, h := range handlers {
		h(ctx, payload)
	}
	return nil
}

// Subscribe registers a handler for a topic.
func (b *MemoryBus) Subscribe(topic string, h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[topic] = append(b.handlers[topic], h)
}

// Run blocks until the context is cancelled or the bus is closed.
func (b *MemoryBus) Run(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return nil
	case <-b.done:
		return nil
	}
}

// Close stops delivery and unblocks Run.
func (b *MemoryBus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.closed {
		b.closed = true
		close(b.done)
	}
}
