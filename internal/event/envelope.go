// Package event defines the versioned envelope wrapping every payload that
// crosses the bus boundary, for chat events and notifications alike.
package event

import (
	"encoding/json"

	"github.com/andriel300/tec-shop-sub006/pkg/errors"
)

// Envelope event types.
const (
	TypeNewMessage   = "NEW_MESSAGE"
	TypeMessageSeen  = "MESSAGE_SEEN"
	TypeTyping       = "TYPING"
	TypePresence     = "PRESENCE"
	TypeNotification = "NOTIFICATION"
)

// Bus topics produced by the core.
const (
	TopicChat          = "chat-events"
	TopicPresence      = "presence-events"
	TopicNotifications = "notification-events"
)

// maxVersions records the highest payload schema version each decoder
// understands. Versions are additive; bump only on schema evolution.
var maxVersions = map[string]int{
	TypeNewMessage:   1,
	TypeMessageSeen:  1,
	TypeTyping:       1,
	TypePresence:     1,
	TypeNotification: 1,
}

// MaxVersion returns the highest supported version for an event type,
// or 0 when the type is unknown.
func MaxVersion(eventType string) int {
	return maxVersions[eventType]
}

type Envelope struct {
	Type    string          `json:"type"`
	Version int             `json:"version"`
	Payload json.RawMessage `json:"payload"`
}

// Encode wraps payload in a typed, versioned envelope. It is pure
// construction; version support is only checked on decode.
func Encode(eventType string, version int, payload interface{}) (Envelope, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, errors.Internal("failed to encode event payload", err)
	}

	return Envelope{
		Type:    eventType,
		Version: version,
		Payload: raw,
	}, nil
}

// Decode unmarshals the envelope payload into out. It fails when the
// envelope carries a version newer than this decoder understands, so old
// consumers never misread payloads produced by newer schema revisions.
func Decode(env Envelope, out interface{}) error {
	max, ok := maxVersions[env.Type]
	if !ok {
		return errors.BadRequest("unknown envelope type "+env.Type, nil)
	}
	if env.Version > max {
		return errors.UnsupportedVersion(env.Type, env.Version, max)
	}

	if err := json.Unmarshal(env.Payload, out); err != nil {
		return errors.Internal("failed to decode event payload", err)
	}
	return nil
}

// Bytes renders the envelope for transport.
func (e Envelope) Bytes() ([]byte, error) {
	raw, err := json.Marshal(e)
	if err != nil {
		return nil, errors.Internal("failed to marshal envelope", err)
	}
	return raw, nil
}

// ParseEnvelope reads an envelope back from its wire form.
func ParseEnvelope(data []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Envelope{}, errors.BadRequest("malformed envelope", err)
	}
	return env, nil
}
