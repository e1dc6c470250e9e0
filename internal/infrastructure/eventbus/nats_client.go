package eventbus

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/andriel300/tec-shop-sub006/pkg/errors"
	"github.com/andriel300/tec-shop-sub006/pkg/logger"
)

// NATSConfig holds NATS connection settings.
type NATSConfig struct {
	URL           string
	Name          string
	ReconnectWait time.Duration
	MaxReconnects int
}

// DefaultNATSConfig returns sensible defaults.
func DefaultNATSConfig(url string) NATSConfig {
	return NATSConfig{
		URL:           url,
		Name:          "tec-shop-messaging",
		ReconnectWait: 2 * time.Second,
		MaxReconnects: -1,
	}
}

// NATSClient implements Client on a NATS connection. The partition key is
// embedded in the subject ("topic.key"): messages sharing a key share a
// subject, and NATS preserves per-subject publish order from a single
// connection.
type NATSClient struct {
	config NATSConfig

	mu   sync.Mutex
	conn *nats.Conn
	subs []*nats.Subscription
}

func NewNATSClient(config NATSConfig) *NATSClient {
	return &NATSClient{config: config}
}

func (c *NATSClient) Connect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn != nil && !c.conn.IsClosed() {
		return nil
	}

	opts := []nats.Option{
		nats.Name(c.config.Name),
		nats.ReconnectWait(c.config.ReconnectWait),
		nats.MaxReconnects(c.config.MaxReconnects),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("NATS disconnected: %v", err)
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("NATS reconnected to %s", nc.ConnectedUrl())
		}),
	}

	conn, err := nats.Connect(c.config.URL, opts...)
	if err != nil {
		return errors.BusUnavailable("", err)
	}

	logger.Info("NATS connected to %s", conn.ConnectedUrl())
	c.conn = conn
	return nil
}

func (c *NATSClient) Disconnect() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil || c.conn.IsClosed() {
		return nil
	}

	for _, sub := range c.subs {
		if err := sub.Drain(); err != nil {
			logger.Warn("NATS drain %s: %v", sub.Subject, err)
		}
	}
	c.subs = nil

	if err := c.conn.Drain(); err != nil {
		logger.Warn("NATS connection drain: %v", err)
	}
	c.conn = nil
	return nil
}

func (c *NATSClient) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn != nil && c.conn.IsConnected()
}

func (c *NATSClient) Publish(ctx context.Context, topic, key string, payload []byte) error {
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()

	if conn == nil || !conn.IsConnected() {
		return errors.BusUnavailable(topic, nil)
	}

	if err := conn.Publish(subjectFor(topic, key), payload); err != nil {
		return errors.BusUnavailable(topic, err)
	}

	// Callers that need bounded publish latency pass a deadline; flush
	// within what remains of it so a wedged connection cannot block the
	// caller indefinitely.
	if deadline, ok := ctx.Deadline(); ok {
		if err := conn.FlushTimeout(time.Until(deadline)); err != nil {
			return errors.BusUnavailable(topic, err)
		}
	}

	return nil
}

func (c *NATSClient) Subscribe(topic string, handler Handler) error {
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()

	if conn == nil || !conn.IsConnected() {
		return errors.BusUnavailable(topic, nil)
	}

	sub, err := conn.Subscribe(topic+".>", func(msg *nats.Msg) {
		key := strings.TrimPrefix(msg.Subject, topic+".")
		dispatch(handler, key, msg.Data)
	})
	if err != nil {
		return errors.BusUnavailable(topic, err)
	}

	c.mu.Lock()
	c.subs = append(c.subs, sub)
	c.mu.Unlock()
	return nil
}

// dispatch isolates handler failures so one bad message cannot take down
// the subscription.
func dispatch(handler Handler, key string, payload []byte) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Bus handler panic: key=%s, panic=%v", key, r)
		}
	}()
	handler(key, payload)
}

// subjectFor maps a topic/key pair onto a NATS subject, replacing the
// characters NATS treats as token separators or wildcards.
func subjectFor(topic, key string) string {
	sanitized := strings.NewReplacer(".", "_", " ", "_", "*", "_", ">", "_").Replace(key)
	if sanitized == "" {
		sanitized = "_"
	}
	return topic + "." + sanitized
}
