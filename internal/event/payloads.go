package event

import (
	"time"

	"github.com/andriel300/tec-shop-sub006/internal/domain/entity"
)

// SeenMarker is the MESSAGE_SEEN payload: one participant acknowledged
// everything the counterpart sent so far.
type SeenMarker struct {
	ConversationID  string                 `json:"conversation_id"`
	ParticipantID   string                 `json:"participant_id"`
	ParticipantType entity.ParticipantType `json:"participant_type"`
	SeenAt          time.Time              `json:"seen_at"`
}

// TypingSignal is the TYPING payload pushed to the live connection layer.
type TypingSignal struct {
	ConversationID  string                 `json:"conversation_id"`
	ParticipantID   string                 `json:"participant_id"`
	ParticipantType entity.ParticipantType `json:"participant_type"`
	IsTyping        bool                   `json:"is_typing"`
}

// PresenceSignal is the PRESENCE payload emitted on heartbeats.
type PresenceSignal struct {
	ParticipantID string `json:"participant_id"`
	Online        bool   `json:"online"`
}
