package eventbus

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andriel300/tec-shop-sub006/pkg/errors"
)

func TestMemoryBusPublishBeforeConnect(t *testing.T) {
	bus := NewMemoryBus()

	err := bus.Publish(context.Background(), "chat-events", "conv-1", []byte("x"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, "BUS_UNAVAILABLE"))

	err = bus.Subscribe("chat-events", func(key string, payload []byte) {})
	require.Error(t, err)
	assert.True(t, errors.Is(err, "BUS_UNAVAILABLE"))
}

func TestMemoryBusDeliversInPublishOrder(t *testing.T) {
	bus := NewMemoryBus()
	require.NoError(t, bus.Connect(context.Background()))

	var got []string
	require.NoError(t, bus.Subscribe("chat-events", func(key string, payload []byte) {
		got = append(got, key+":"+string(payload))
	}))

	for i := 0; i < 5; i++ {
		payload := []byte(fmt.Sprintf("m%d", i))
		require.NoError(t, bus.Publish(context.Background(), "chat-events", "conv-1", payload))
	}

	assert.Equal(t, []string{"conv-1:m0", "conv-1:m1", "conv-1:m2", "conv-1:m3", "conv-1:m4"}, got)
}

func TestMemoryBusTopicIsolation(t *testing.T) {
	bus := NewMemoryBus()
	require.NoError(t, bus.Connect(context.Background()))

	var chat, notif int
	require.NoError(t, bus.Subscribe("chat-events", func(string, []byte) { chat++ }))
	require.NoError(t, bus.Subscribe("notification-events", func(string, []byte) { notif++ }))

	require.NoError(t, bus.Publish(context.Background(), "chat-events", "k", []byte("a")))

	assert.Equal(t, 1, chat)
	assert.Equal(t, 0, notif)
}

func TestMemoryBusHandlerPanicIsolated(t *testing.T) {
	bus := NewMemoryBus()
	require.NoError(t, bus.Connect(context.Background()))

	var delivered int
	require.NoError(t, bus.Subscribe("chat-events", func(string, []byte) {
		panic("boom")
	}))
	require.NoError(t, bus.Subscribe("chat-events", func(string, []byte) {
		delivered++
	}))

	require.NoError(t, bus.Publish(context.Background(), "chat-events", "conv-1", []byte("x")))
	require.NoError(t, bus.Publish(context.Background(), "chat-events", "conv-1", []byte("y")))

	// The panicking subscriber never takes down the bus or its siblings.
	assert.Equal(t, 2, delivered)
}

func TestMemoryBusDisconnectStopsDelivery(t *testing.T) {
	bus := NewMemoryBus()
	require.NoError(t, bus.Connect(context.Background()))
	require.NoError(t, bus.Subscribe("chat-events", func(string, []byte) {}))

	require.NoError(t, bus.Disconnect())
	assert.False(t, bus.IsConnected())

	err := bus.Publish(context.Background(), "chat-events", "conv-1", []byte("x"))
	assert.True(t, errors.Is(err, "BUS_UNAVAILABLE"))
}

func TestSubjectForSanitizesKey(t *testing.T) {
	assert.Equal(t, "chat-events.conv-1", subjectFor("chat-events", "conv-1"))
	assert.Equal(t, "notification-events.customer:u1", subjectFor("notification-events", "customer:u1"))
	assert.Equal(t, "chat-events.a_b_c_d", subjectFor("chat-events", "a.b c*d"))
}
