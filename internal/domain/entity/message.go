package entity

import "time"

// MaxContentLength is the maximum message content length in characters.
const MaxContentLength = 5000

type Attachment struct {
	URL      string `json:"url" firestore:"url"`
	FileName string `json:"file_name,omitempty" firestore:"fileName,omitempty"`
}

// Message is immutable after creation. Sequence is a conversation-local
// monotonic counter assigned atomically at append time; readers order by
// (CreatedAt, Sequence) with Sequence as the authoritative tie-break.
type Message struct {
	ID             string          `json:"id" firestore:"id"`
	ConversationID string          `json:"conversation_id" firestore:"conversationId"`
	SenderID       string          `json:"sender_id" firestore:"senderId"`
	SenderType     ParticipantType `json:"sender_type" firestore:"senderType"`
	Content        string          `json:"content,omitempty" firestore:"content,omitempty"`
	Attachments    []Attachment    `json:"attachments,omitempty" firestore:"attachments,omitempty"`
	CreatedAt      time.Time       `json:"created_at" firestore:"createdAt"`
	Sequence       int64           `json:"sequence" firestore:"sequence"`
}

func (m *Message) Sender() Participant {
	return Participant{ID: m.SenderID, Type: m.SenderType}
}
