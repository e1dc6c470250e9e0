package entity

import "time"

// TypingState is ephemeral: it lives only in a TTL-backed store and is
// never persisted. ExpiresAt is checked on read, so expiry does not depend
// on background timers.
type TypingState struct {
	ConversationID  string          `json:"conversation_id"`
	ParticipantID   string          `json:"participant_id"`
	ParticipantType ParticipantType `json:"participant_type"`
	IsTyping        bool            `json:"is_typing"`
	ExpiresAt       time.Time       `json:"expires_at"`
}
