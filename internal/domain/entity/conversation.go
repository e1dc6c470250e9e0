package entity

import "time"

type Conversation struct {
	ID              string               `json:"id" firestore:"id"`
	PairKey         string               `json:"-" firestore:"pairKey"`
	ParticipantA    Participant          `json:"participant_a" firestore:"participantA"`
	ParticipantB    Participant          `json:"participant_b" firestore:"participantB"`
	ParticipantKeys []string             `json:"-" firestore:"participantKeys"`
	CreatedAt       time.Time            `json:"created_at" firestore:"createdAt"`
	UpdatedAt       time.Time            `json:"updated_at" firestore:"updatedAt"`
	LastMessage     string               `json:"last_message,omitempty" firestore:"lastMessage,omitempty"`
	LastMessageAt   time.Time            `json:"last_message_at" firestore:"lastMessageAt"`
	LastSequence    int64                `json:"-" firestore:"lastSequence"`
	UnreadCount     map[string]int       `json:"unread_count" firestore:"unreadCount"`
	LastSeenAt      map[string]time.Time `json:"last_seen_at,omitempty" firestore:"lastSeenAt,omitempty"`
}

func (c *Conversation) HasParticipant(p Participant) bool {
	return c.ParticipantA.Equal(p) || c.ParticipantB.Equal(p)
}

// Other returns the counterpart of p in the conversation. The second
// return value is false when p is not a participant at all.
func (c *Conversation) Other(p Participant) (Participant, bool) {
	switch {
	case c.ParticipantA.Equal(p):
		return c.ParticipantB, true
	case c.ParticipantB.Equal(p):
		return c.ParticipantA, true
	}
	return Participant{}, false
}
