package websocket

import (
	"context"
	"log"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/andriel300/tec-shop-sub006/internal/event"
	"github.com/andriel300/tec-shop-sub006/internal/infrastructure/eventbus"
)

// Client represents one live connection, keyed by the participant's
// canonical "type:id" key.
type Client struct {
	ParticipantKey string
	Conn           *websocket.Conn
	Send           chan []byte

	mu    sync.Mutex
	rooms map[string]bool
}

// Manager tracks active connections and their conversation rooms, and
// relays bus events to them. It is the downstream transport for chat,
// presence and notification pushes; the core only defines the payloads.
type Manager struct {
	clients    map[string]*Client
	rooms      map[string]map[*Client]bool
	Register   chan *Client
	Unregister chan *Client
	mutex      sync.RWMutex
}

func NewManager() *Manager {
	return &Manager{
		clients:    make(map[string]*Client),
		rooms:      make(map[string]map[*Client]bool),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
	}
}

// Start runs the manager's main loop in a goroutine
func (m *Manager) Start(ctx context.Context) {
	go func() {
		for {
			select {
			case client := <-m.Register:
				m.mutex.Lock()
				m.clients[client.ParticipantKey] = client
				m.mutex.Unlock()
				log.Printf("Client registered: %s", client.ParticipantKey)

			case client := <-m.Unregister:
				m.mutex.Lock()
				if _, ok := m.clients[client.ParticipantKey]; ok {
					delete(m.clients, client.ParticipantKey)
					close(client.Send)
				}
				for room, members := range m.rooms {
					delete(members, client)
					if len(members) == 0 {
						delete(m.rooms, room)
					}
				}
				m.mutex.Unlock()
				log.Printf("Client unregistered: %s", client.ParticipantKey)

			case <-ctx.Done():
				return
			}
		}
	}()
}

// BindBus subscribes the manager to the core's topics so every connected
// participant receives the envelopes relevant to them.
func (m *Manager) BindBus(bus eventbus.Client) error {
	if err := bus.Subscribe(event.TopicChat, func(conversationID string, payload []byte) {
		m.SendToRoom(conversationID, payload)
	}); err != nil {
		return err
	}

	// Typing signals are keyed by conversation and go to its room; online
	// transitions are keyed by participant and go to everyone.
	if err := bus.Subscribe(event.TopicPresence, func(key string, payload []byte) {
		if env, err := event.ParseEnvelope(payload); err == nil && env.Type == event.TypePresence {
			m.Broadcast(payload)
			return
		}
		m.SendToRoom(key, payload)
	}); err != nil {
		return err
	}

	// Notification keys are "{targetType}:{targetId}"; customer and seller
	// keys line up with participant keys after mapping the audience name,
	// and the admin broadcast goes to everyone.
	return bus.Subscribe(event.TopicNotifications, func(key string, payload []byte) {
		switch key {
		case "admin:broadcast":
			m.Broadcast(payload)
		default:
			m.SendToParticipant(participantKeyForTarget(key), payload)
		}
	})
}

// SendToParticipant sends a message to one connected participant, if any.
func (m *Manager) SendToParticipant(participantKey string, message []byte) {
	m.mutex.RLock()
	client, ok := m.clients[participantKey]
	m.mutex.RUnlock()

	if ok {
		select {
		case client.Send <- message:
		default:
			log.Printf("Dropping message for slow client %s", participantKey)
		}
	}
}

// SendToRoom fans a message out to every client joined to a conversation.
func (m *Manager) SendToRoom(conversationID string, message []byte) {
	m.mutex.RLock()
	members := make([]*Client, 0, len(m.rooms[conversationID]))
	for client := range m.rooms[conversationID] {
		members = append(members, client)
	}
	m.mutex.RUnlock()

	for _, client := range members {
		select {
		case client.Send <- message:
		default:
			log.Printf("Dropping room message for slow client %s", client.ParticipantKey)
		}
	}
}

// Broadcast sends a message to every connected client.
func (m *Manager) Broadcast(message []byte) {
	m.mutex.RLock()
	clients := make([]*Client, 0, len(m.clients))
	for _, client := range m.clients {
		clients = append(clients, client)
	}
	m.mutex.RUnlock()

	for _, client := range clients {
		select {
		case client.Send <- message:
		default:
		}
	}
}

// JoinRoom subscribes a client to a conversation's pushes.
func (m *Manager) JoinRoom(conversationID string, client *Client) {
	m.mutex.Lock()
	if m.rooms[conversationID] == nil {
		m.rooms[conversationID] = make(map[*Client]bool)
	}
	m.rooms[conversationID][client] = true
	m.mutex.Unlock()
}

// LeaveRoom removes a client from a conversation's pushes.
func (m *Manager) LeaveRoom(conversationID string, client *Client) {
	m.mutex.Lock()
	if members, ok := m.rooms[conversationID]; ok {
		delete(members, client)
		if len(members) == 0 {
			delete(m.rooms, conversationID)
		}
	}
	m.mutex.Unlock()
}

// participantKeyForTarget maps a notification partition key onto the
// participant key space used for connections.
func participantKeyForTarget(key string) string {
	const customerPrefix = "customer:"
	if len(key) > len(customerPrefix) && key[:len(customerPrefix)] == customerPrefix {
		return "user:" + key[len(customerPrefix):]
	}
	return key
}
