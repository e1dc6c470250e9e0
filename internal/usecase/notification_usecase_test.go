package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andriel300/tec-shop-sub006/internal/domain/entity"
	"github.com/andriel300/tec-shop-sub006/internal/domain/service"
	"github.com/andriel300/tec-shop-sub006/internal/event"
	"github.com/andriel300/tec-shop-sub006/internal/infrastructure/eventbus"
	"github.com/andriel300/tec-shop-sub006/pkg/errors"
)

func newNotifier(t *testing.T) (*NotificationUseCase, *eventbus.MemoryBus) {
	t.Helper()

	bus := eventbus.NewMemoryBus()
	require.NoError(t, bus.Connect(context.Background()))
	return NewNotificationUseCase(service.NewTemplateEngine(), bus, time.Second), bus
}

func TestNotifyCustomerPublishesKeyedEvent(t *testing.T) {
	notifier, bus := newNotifier(t)

	var keys []string
	var envelopes []event.Envelope
	require.NoError(t, bus.Subscribe(event.TopicNotifications, func(key string, payload []byte) {
		env, err := event.ParseEnvelope(payload)
		require.NoError(t, err)
		keys = append(keys, key)
		envelopes = append(envelopes, env)
	}))

	err := notifier.NotifyCustomer(context.Background(), "u1", "order_shipped",
		map[string]string{"orderId": "ORD-1"},
		map[string]interface{}{"orderId": "ORD-1"})
	require.NoError(t, err)

	require.Len(t, envelopes, 1)
	assert.Equal(t, "customer:u1", keys[0])
	assert.Equal(t, event.TypeNotification, envelopes[0].Type)

	var notification entity.NotificationEvent
	require.NoError(t, event.Decode(envelopes[0], &notification))
	assert.Equal(t, entity.TargetCustomer, notification.TargetType)
	assert.Equal(t, "Your order ORD-1 has shipped", notification.Message)
	assert.Equal(t, "order", notification.Type)
	assert.False(t, notification.Timestamp.IsZero())
}

func TestNotifyAdminUsesBroadcastTarget(t *testing.T) {
	notifier, bus := newNotifier(t)

	var keys []string
	require.NoError(t, bus.Subscribe(event.TopicNotifications, func(key string, payload []byte) {
		keys = append(keys, key)
	}))

	err := notifier.NotifyAdmin(context.Background(), "system_alert",
		map[string]string{"details": "payment gateway degraded"}, nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"admin:broadcast"}, keys)
}

func TestNotifyDropsWhenBusDown(t *testing.T) {
	notifier, bus := newNotifier(t)

	var delivered int
	require.NoError(t, bus.Subscribe(event.TopicNotifications, func(string, []byte) {
		delivered++
	}))
	require.NoError(t, bus.Disconnect())

	// Fire-and-forget: the caller's flow never fails on delivery, and the
	// event is dropped rather than published.
	err := notifier.NotifySeller(context.Background(), "s1", "product_sold",
		map[string]string{"productTitle": "Vintage lamp", "buyerName": "u1"}, nil)
	assert.NoError(t, err)
	assert.Zero(t, delivered)
}

func TestNotifySurfacesTemplateErrors(t *testing.T) {
	notifier, _ := newNotifier(t)

	err := notifier.NotifyCustomer(context.Background(), "u1", "nope", nil, nil)
	assert.True(t, errors.Is(err, "UNKNOWN_TEMPLATE"))

	err = notifier.NotifyCustomer(context.Background(), "u1", "order_shipped", map[string]string{}, nil)
	assert.True(t, errors.Is(err, "MISSING_VARIABLE"))
}

func TestNotifyUsesInjectedClock(t *testing.T) {
	notifier, bus := newNotifier(t)
	frozen := time.Date(2026, 8, 30, 9, 0, 0, 0, time.UTC)
	notifier.SetClock(func() time.Time { return frozen })

	var notification entity.NotificationEvent
	require.NoError(t, bus.Subscribe(event.TopicNotifications, func(key string, payload []byte) {
		env, err := event.ParseEnvelope(payload)
		require.NoError(t, err)
		require.NoError(t, event.Decode(env, &notification))
	}))

	require.NoError(t, notifier.NotifyAdmin(context.Background(), "system_alert",
		map[string]string{"details": "x"}, nil))
	assert.True(t, frozen.Equal(notification.Timestamp))
}
