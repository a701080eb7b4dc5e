package transport

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryBusDeliversToTopicHandlers(t *testing.T) {
	bus := NewMemoryBus()
	defer bus.Close()

	var gotA, gotB [][]byte
	bus.Subscribe("a", func(_ context.Context, payload []byte) {
		gotA = append(gotA, payload)
	})
	bus.Subscribe("b", func(_ context.Context, payload []byte) {
		gotB = append(gotB, payload)
	})

	ctx := context.Background()
	require.NoError(t, bus.Publish(ctx, "a", []byte("one")))
	require.NoError(t, bus.Publish(ctx, "a", []byte("two")))
	require.NoError(t, bus.Publish(ctx, "b", []byte("three")))
	require.NoError(t, bus.Publish(ctx, "unsubscribed", []byte("lost")))

	assert.Equal(t, [][]byte{[]byte("one"), []byte("two")}, gotA)
	assert.Equal(t, [][]byte{[]byte("three")}, gotB)
}

func TestMemoryBusFanOut(t *testing.T) {
	bus := NewMemoryBus()
	defer bus.Close()

	var calls int
	handler := func(_ context.Context, _ []byte) { calls++ }
	bus.Subscribe("a", handler)
	bus.Subscribe("a", handler)

	require.NoError(t, bus.Publish(context.Background(), "a", []byte("x")))
	assert.Equal(t, 2, calls)
}

func TestMemoryBusCloseUnblocksRunAndStopsDelivery(t *testing.T) {
	bus := NewMemoryBus()

	done := make(chan error, 1)
	go func() {
		done <- bus.Run(context.Background())
	}()

	bus.Close()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after Close")
	}

	err := bus.Publish(context.Background(), "a", []byte("x"))
	assert.Error(t, err)
}

func TestMemoryBusRunReturnsOnContextCancel(t *testing.T) {
	bus := NewMemoryBus()
	defer bus.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.NoError(t, bus.Run(ctx))
}
