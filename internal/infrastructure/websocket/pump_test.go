package websocket

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	gorillaws "github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingSignaler captures the context state observed at signal time.
type recordingSignaler struct {
	typing    chan error
	heartbeat chan error
}

func newRecordingSignaler() *recordingSignaler {
	return &recordingSignaler{
		typing:    make(chan error, 4),
		heartbeat: make(chan error, 4),
	}
}

func (s *recordingSignaler) TypingSignal(ctx context.Context, conversationID, participantKey string, isTyping bool) {
	s.typing <- ctx.Err()
}

func (s *recordingSignaler) HeartbeatSignal(ctx context.Context, participantKey string) {
	s.heartbeat <- ctx.Err()
}

func awaitSignal(t *testing.T, ch chan error) error {
	t.Helper()
	select {
	case err := <-ch:
		return err
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for signal")
		return nil
	}
}

// Frames arrive after the upgrade request's handler has long returned and
// its context is canceled; the signals the pump emits must still carry a
// live context or every typing/heartbeat hits the stores as dead on
// arrival.
func TestReadPumpSignalsOutliveUpgradeRequest(t *testing.T) {
	manager := NewManager()
	managerCtx, cancelManager := context.WithCancel(context.Background())
	defer cancelManager()
	manager.Start(managerCtx)

	signaler := newRecordingSignaler()
	upgrader := gorillaws.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)

		client := &Client{
			ParticipantKey: "user:u1",
			Conn:           conn,
			Send:           make(chan []byte, 8),
		}
		manager.Register <- client

		go client.ReadPump(manager, signaler)
		go client.WritePump()
	}))
	defer server.Close()

	url := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := gorillaws.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.WriteMessage(gorillaws.TextMessage,
		[]byte(`{"type":"typing","conversation_id":"conv-1","is_typing":true}`)))
	assert.NoError(t, awaitSignal(t, signaler.typing))

	require.NoError(t, conn.WriteMessage(gorillaws.TextMessage,
		[]byte(`{"type":"heartbeat"}`)))
	assert.NoError(t, awaitSignal(t, signaler.heartbeat))
}
