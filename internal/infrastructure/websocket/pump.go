package websocket

import (
	"context"
	"encoding/json"
	"log"

	"github.com/gorilla/websocket"
)

// inbound is the client-to-server control frame: room membership, typing
// signals and heartbeats. Chat messages themselves go through the HTTP
// API, not the socket.
type inbound struct {
	Type           string `json:"type"` // "join" | "leave" | "typing" | "heartbeat"
	ConversationID string `json:"conversation_id,omitempty"`
	IsTyping       bool   `json:"is_typing,omitempty"`
}

// Signaler is the subset of the conversation engine the read pump needs.
type Signaler interface {
	TypingSignal(ctx context.Context, conversationID, participantKey string, isTyping bool)
	HeartbeatSignal(ctx context.Context, participantKey string)
}

// ReadPump reads control frames from the connection until it closes.
// Frames arrive long after the upgrade request's handler has returned, so
// signals carry a connection-scoped context, not the request's (which
// net/http cancels as soon as the handler returns).
func (c *Client) ReadPump(m *Manager, signaler Signaler) {
	ctx, cancel := context.WithCancel(context.Background())
	defer func() {
		cancel()
		m.Unregister <- c
		c.Conn.Close()
	}()

	for {
		_, raw, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("websocket read error: %v", err)
			}
			return
		}

		var frame inbound
		if err := json.Unmarshal(raw, &frame); err != nil {
			log.Printf("Malformed frame from %s: %v", c.ParticipantKey, err)
			continue
		}

		switch frame.Type {
		case "join":
			if frame.ConversationID != "" {
				m.JoinRoom(frame.ConversationID, c)
			}
		case "leave":
			if frame.ConversationID != "" {
				m.LeaveRoom(frame.ConversationID, c)
			}
		case "typing":
			if signaler != nil && frame.ConversationID != "" {
				signaler.TypingSignal(ctx, frame.ConversationID, c.ParticipantKey, frame.IsTyping)
			}
		case "heartbeat":
			if signaler != nil {
				signaler.HeartbeatSignal(ctx, c.ParticipantKey)
			}
		default:
			log.Printf("Unknown frame type %q from %s", frame.Type, c.ParticipantKey)
		}
	}
}

// WritePump sends queued messages to the connection.
func (c *Client) WritePump() {
	defer c.Conn.Close()

	for {
		message, ok := <-c.Send
		if !ok {
			c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		}

		if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
			log.Printf("websocket write error: %v", err)
			return
		}
	}
}
