package repository

import (
	"context"
	"time"

	"github.com/andriel300/tec-shop-sub006/internal/domain/entity"
)

// ConversationRepository is the persistence boundary for conversations and
// their append-only message logs. Implementations must provide:
//
//   - insert-or-return-existing keyed on the unordered participant pair,
//   - atomic sequence allocation scoped per conversation, updated together
//     with the counterpart's unread counter in one serialization point,
//   - retrieval ordered by (createdAt, sequence).
type ConversationRepository interface {
	GetOrCreate(ctx context.Context, conversation *entity.Conversation) (*entity.Conversation, bool, error)
	GetByID(ctx context.Context, id string) (*entity.Conversation, error)
	ListByParticipant(ctx context.Context, p entity.Participant, limit, offset int) ([]*entity.Conversation, int64, error)

	// AppendMessage assigns the next conversation-local sequence, persists
	// the message, updates the conversation summary and increments the
	// other participant's unread counter, all atomically with respect to
	// concurrent appends and seen-marks on the same conversation.
	AppendMessage(ctx context.Context, message *entity.Message) (*entity.Message, error)

	// MarkSeen resets p's unread counter to zero and records the seen
	// time. The counterpart's counter is untouched.
	MarkSeen(ctx context.Context, conversationID string, p entity.Participant, at time.Time) error

	ListMessages(ctx context.Context, conversationID string, limit, offset int) ([]*entity.Message, int64, error)
}
