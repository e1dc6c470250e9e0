// Package presence tracks online status and ephemeral typing indicators in
// a shared TTL-backed store, independent of message persistence.
package presence

import (
	"context"
	"encoding/json"
	"time"

	"github.com/andriel300/tec-shop-sub006/internal/domain/entity"
	"github.com/andriel300/tec-shop-sub006/internal/event"
	"github.com/andriel300/tec-shop-sub006/internal/infrastructure/eventbus"
	"github.com/andriel300/tec-shop-sub006/pkg/logger"
)

// DefaultTTL is the typing/online signal lifetime when none is configured.
const DefaultTTL = 5 * time.Second

// Store is the TTL key/value backend. In a multi-instance deployment it
// must be shared across instances; reads may be stale up to one TTL
// interval.
type Store interface {
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Delete(ctx context.Context, key string) error
}

// Tracker implements typing and online signaling. There is no persistent
// state machine: presence is binary and TTL-driven. Broadcasts are
// advisory, at-most-once and never retried.
type Tracker struct {
	store Store
	bus   eventbus.Client
	ttl   time.Duration
	now   func() time.Time
}

func NewTracker(store Store, bus eventbus.Client, ttl time.Duration) *Tracker {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Tracker{
		store: store,
		bus:   bus,
		ttl:   ttl,
		now:   time.Now,
	}
}

// SetClock replaces the tracker's time source. Test hook.
func (t *Tracker) SetClock(now func() time.Time) {
	t.now = now
}

func typingKey(conversationID string, p entity.Participant) string {
	return "typing:" + conversationID + ":" + p.Key()
}

func onlineKey(participantID string) string {
	return "online:" + participantID
}

// SetTyping writes or clears the typing entry for one participant in one
// conversation. Repeated true signals refresh the TTL. Any typing signal
// also counts as a heartbeat.
func (t *Tracker) SetTyping(ctx context.Context, conversationID string, p entity.Participant, isTyping bool) error {
	if isTyping {
		state := entity.TypingState{
			ConversationID:  conversationID,
			ParticipantID:   p.ID,
			ParticipantType: p.Type,
			IsTyping:        true,
			ExpiresAt:       t.now().Add(t.ttl),
		}
		raw, err := json.Marshal(state)
		if err != nil {
			return err
		}
		if err := t.store.Set(ctx, typingKey(conversationID, p), raw, t.ttl); err != nil {
			return err
		}
	} else {
		if err := t.store.Delete(ctx, typingKey(conversationID, p)); err != nil {
			return err
		}
	}

	if err := t.Heartbeat(ctx, p.ID); err != nil {
		return err
	}

	t.broadcastTyping(ctx, conversationID, p, isTyping)
	return nil
}

// IsTyping reports whether the participant has an unexpired typing entry
// for the conversation.
func (t *Tracker) IsTyping(ctx context.Context, conversationID string, p entity.Participant) (bool, error) {
	raw, ok, err := t.store.Get(ctx, typingKey(conversationID, p))
	if err != nil || !ok {
		return false, err
	}

	var state entity.TypingState
	if err := json.Unmarshal(raw, &state); err != nil {
		return false, nil
	}
	// The store's own TTL usually handles expiry; the ExpiresAt check
	// covers backends whose expiry granularity lags behind the clock.
	return state.IsTyping && t.now().Before(state.ExpiresAt), nil
}

// Heartbeat refreshes the participant's online window. The first
// heartbeat after an offline period announces the transition; refreshes
// within the window stay quiet.
func (t *Tracker) Heartbeat(ctx context.Context, participantID string) error {
	_, wasOnline, err := t.store.Get(ctx, onlineKey(participantID))
	if err != nil {
		return err
	}

	stamp := []byte(t.now().UTC().Format(time.RFC3339Nano))
	if err := t.store.Set(ctx, onlineKey(participantID), stamp, t.ttl); err != nil {
		return err
	}

	if !wasOnline {
		t.broadcastPresence(ctx, participantID, true)
	}
	return nil
}

// IsOnline reports whether a heartbeat or typing signal from the
// participant was observed within the TTL window. There is no explicit
// offline event; absence means offline.
func (t *Tracker) IsOnline(ctx context.Context, participantID string) (bool, error) {
	_, ok, err := t.store.Get(ctx, onlineKey(participantID))
	if err != nil {
		return false, err
	}
	return ok, nil
}

// broadcastTyping pushes the state change to interested subscribers.
// Failures are logged and dropped: the signal expires on its own anyway.
func (t *Tracker) broadcastTyping(ctx context.Context, conversationID string, p entity.Participant, isTyping bool) {
	signal := event.TypingSignal{
		ConversationID:  conversationID,
		ParticipantID:   p.ID,
		ParticipantType: p.Type,
		IsTyping:        isTyping,
	}

	env, err := event.Encode(event.TypeTyping, event.MaxVersion(event.TypeTyping), signal)
	if err != nil {
		logger.LogPublishError(event.TopicPresence, conversationID, err)
		return
	}
	raw, err := env.Bytes()
	if err != nil {
		logger.LogPublishError(event.TopicPresence, conversationID, err)
		return
	}

	if err := t.bus.Publish(ctx, event.TopicPresence, conversationID, raw); err != nil {
		logger.LogPublishError(event.TopicPresence, conversationID, err)
	}
}

// broadcastPresence announces an online transition, keyed by the
// participant. Advisory like typing: failures are logged and dropped.
func (t *Tracker) broadcastPresence(ctx context.Context, participantID string, online bool) {
	signal := event.PresenceSignal{
		ParticipantID: participantID,
		Online:        online,
	}

	env, err := event.Encode(event.TypePresence, event.MaxVersion(event.TypePresence), signal)
	if err != nil {
		logger.LogPublishError(event.TopicPresence, participantID, err)
		return
	}
	raw, err := env.Bytes()
	if err != nil {
		logger.LogPublishError(event.TopicPresence, participantID, err)
		return
	}

	if err := t.bus.Publish(ctx, event.TopicPresence, participantID, raw); err != nil {
		logger.LogPublishError(event.TopicPresence, participantID, err)
	}
}
