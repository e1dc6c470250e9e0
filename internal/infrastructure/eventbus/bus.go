// Package eventbus abstracts the partitioned publish/subscribe transport
// shared by the conversation engine and the notification dispatcher.
package eventbus

import "context"

// Handler receives one message. The partition key is passed alongside the
// payload. Handler failures are isolated per message: a panicking handler
// must not prevent delivery of subsequent messages.
type Handler func(key string, payload []byte)

// Client is the bus abstraction. Publish preserves ordering of messages
// sharing the same key; ordering across different keys is unspecified.
// Connect and Disconnect are idempotent.
type Client interface {
	Connect(ctx context.Context) error
	Disconnect() error
	IsConnected() bool
	Publish(ctx context.Context, topic, key string, payload []byte) error
	Subscribe(topic string, handler Handler) error
}
