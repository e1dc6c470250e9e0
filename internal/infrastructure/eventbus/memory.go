package eventbus

import (
	"context"
	"sync"

	"github.com/andriel300/tec-shop-sub006/pkg/errors"
)

// MemoryBus is an in-process Client used by the development profile and by
// tests. It honors the same lifecycle contract as the NATS client:
// publishing on a disconnected bus fails with BUS_UNAVAILABLE, and
// messages sharing a key are delivered in publish order (delivery is
// synchronous with Publish).
type MemoryBus struct {
	mu        sync.Mutex
	connected bool
	handlers  map[string][]Handler
}

func NewMemoryBus() *MemoryBus {
	return &MemoryBus{
		handlers: make(map[string][]Handler),
	}
}

func (b *MemoryBus) Connect(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.connected = true
	return nil
}

func (b *MemoryBus) Disconnect() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.connected = false
	return nil
}

func (b *MemoryBus) IsConnected() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.connected
}

func (b *MemoryBus) Publish(ctx context.Context, topic, key string, payload []byte) error {
	b.mu.Lock()
	if !b.connected {
		b.mu.Unlock()
		return errors.BusUnavailable(topic, nil)
	}
	handlers := append([]Handler(nil), b.handlers[topic]...)
	b.mu.Unlock()

	for _, handler := range handlers {
		dispatch(handler, key, payload)
	}
	return nil
}

func (b *MemoryBus) Subscribe(topic string, handler Handler) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.connected {
		return errors.BusUnavailable(topic, nil)
	}
	b.handlers[topic] = append(b.handlers[topic], handler)
	return nil
}
