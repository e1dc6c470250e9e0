package repository

import (
	"context"
	"log"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/andriel300/tec-shop-sub006/internal/domain/entity"
	"github.com/andriel300/tec-shop-sub006/internal/domain/repository"
	"github.com/andriel300/tec-shop-sub006/pkg/errors"
)

type firestoreConversationRepository struct {
	client *firestore.Client
}

func NewFirestoreConversationRepository(client *firestore.Client) repository.ConversationRepository {
	return &firestoreConversationRepository{
		client: client,
	}
}

func (r *firestoreConversationRepository) conversations() *firestore.CollectionRef {
	return r.client.Collection("conversations")
}

func (r *firestoreConversationRepository) messages(conversationID string) *firestore.CollectionRef {
	return r.conversations().Doc(conversationID).Collection("messages")
}

// GetOrCreate keys the conversation document on the canonical pair key, so
// insert-or-return-existing is a single transactional get-then-create and
// two racing creators always converge on the same document.
func (r *firestoreConversationRepository) GetOrCreate(ctx context.Context, conversation *entity.Conversation) (*entity.Conversation, bool, error) {
	docRef := r.conversations().Doc(conversation.PairKey)

	var result entity.Conversation
	var created bool

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(docRef)
		if err == nil {
			created = false
			return doc.DataTo(&result)
		}
		if status.Code(err) != codes.NotFound {
			return err
		}

		now := time.Now()
		conversation.ID = docRef.ID
		conversation.CreatedAt = now
		conversation.UpdatedAt = now
		conversation.LastMessageAt = now
		if conversation.UnreadCount == nil {
			conversation.UnreadCount = make(map[string]int)
		}

		created = true
		result = *conversation
		return tx.Set(docRef, conversation)
	})
	if err != nil {
		return nil, false, errors.Internal("Failed to get or create conversation", err)
	}

	return &result, created, nil
}

func (r *firestoreConversationRepository) GetByID(ctx context.Context, id string) (*entity.Conversation, error) {
	doc, err := r.conversations().Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errors.NotFound("Conversation", nil)
		}
		return nil, errors.Internal("Failed to get conversation", err)
	}

	var conversation entity.Conversation
	if err := doc.DataTo(&conversation); err != nil {
		return nil, errors.Internal("Failed to parse conversation data", err)
	}

	return &conversation, nil
}

// AppendMessage runs the sequence allocation and the unread increment in
// one Firestore transaction, which is the per-conversation serialization
// point for concurrent appends and seen-marks.
func (r *firestoreConversationRepository) AppendMessage(ctx context.Context, message *entity.Message) (*entity.Message, error) {
	convRef := r.conversations().Doc(message.ConversationID)

	if message.ID == "" {
		message.ID = uuid.New().String()
	}
	if message.CreatedAt.IsZero() {
		message.CreatedAt = time.Now()
	}

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(convRef)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return errors.NotFound("Conversation", nil)
			}
			return err
		}

		var conversation entity.Conversation
		if err := doc.DataTo(&conversation); err != nil {
			return err
		}

		other, ok := conversation.Other(message.Sender())
		if !ok {
			return errors.Forbidden("sender is not a participant in this conversation", nil)
		}

		message.Sequence = conversation.LastSequence + 1

		msgRef := r.messages(message.ConversationID).Doc(message.ID)
		if err := tx.Set(msgRef, message); err != nil {
			return err
		}

		return tx.Update(convRef, []firestore.Update{
			{Path: "lastSequence", Value: message.Sequence},
			{Path: "lastMessage", Value: snippet(message)},
			{Path: "lastMessageAt", Value: message.CreatedAt},
			{Path: "updatedAt", Value: time.Now()},
			{FieldPath: firestore.FieldPath{"unreadCount", other.Key()}, Value: firestore.Increment(1)},
		})
	})
	if err != nil {
		if errors.Is(err, "NOT_FOUND") || errors.Is(err, "FORBIDDEN") {
			return nil, err
		}
		return nil, errors.Internal("Failed to append message", err)
	}

	return message, nil
}

func (r *firestoreConversationRepository) MarkSeen(ctx context.Context, conversationID string, p entity.Participant, at time.Time) error {
	convRef := r.conversations().Doc(conversationID)

	_, err := convRef.Update(ctx, []firestore.Update{
		{FieldPath: firestore.FieldPath{"unreadCount", p.Key()}, Value: 0},
		{FieldPath: firestore.FieldPath{"lastSeenAt", p.Key()}, Value: at},
		{Path: "updatedAt", Value: time.Now()},
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return errors.NotFound("Conversation", nil)
		}
		return errors.Internal("Failed to mark conversation as seen", err)
	}

	return nil
}

func (r *firestoreConversationRepository) ListByParticipant(ctx context.Context, p entity.Participant, limit, offset int) ([]*entity.Conversation, int64, error) {
	query := r.conversations().
		Where("participantKeys", "array-contains", p.Key()).
		OrderBy("lastMessageAt", firestore.Desc)

	allDocs, err := query.Documents(ctx).GetAll()
	if err != nil {
		log.Printf("Firestore error while fetching conversations for %s: %v", p.Key(), err)
		return nil, 0, errors.Internal("Failed to fetch conversations", err)
	}

	total := int64(len(allDocs))

	start := offset
	if start > len(allDocs) {
		start = len(allDocs)
	}
	end := len(allDocs)
	if limit > 0 && start+limit < end {
		end = start + limit
	}

	var conversations []*entity.Conversation
	for i := start; i < end; i++ {
		var conversation entity.Conversation
		if err := allDocs[i].DataTo(&conversation); err != nil {
			log.Printf("Error parsing conversation data for %s: %v", p.Key(), err)
			continue
		}
		conversations = append(conversations, &conversation)
	}

	return conversations, total, nil
}

func (r *firestoreConversationRepository) ListMessages(ctx context.Context, conversationID string, limit, offset int) ([]*entity.Message, int64, error) {
	if _, err := r.GetByID(ctx, conversationID); err != nil {
		return nil, 0, err
	}

	query := r.messages(conversationID).
		OrderBy("createdAt", firestore.Asc).
		OrderBy("sequence", firestore.Asc)

	countDocs, err := query.Documents(ctx).GetAll()
	if err != nil {
		log.Printf("Firestore error while counting messages for conversation %s: %v", conversationID, err)
		return nil, 0, errors.Internal("Failed to count messages", err)
	}
	total := int64(len(countDocs))

	if offset > 0 {
		query = query.Offset(offset)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}

	iter := query.Documents(ctx)
	messages := make([]*entity.Message, 0)

	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			log.Printf("Firestore error while iterating messages for conversation %s: %v", conversationID, err)
			return nil, 0, errors.Internal("Failed to iterate messages", err)
		}

		var message entity.Message
		if err := doc.DataTo(&message); err != nil {
			log.Printf("Error parsing message data for conversation %s: %v", conversationID, err)
			return nil, 0, errors.Internal("Failed to parse message data", err)
		}

		messages = append(messages, &message)
	}

	return messages, total, nil
}

// snippet is the denormalized conversation summary of a message.
func snippet(message *entity.Message) string {
	if message.Content != "" {
		return message.Content
	}
	if len(message.Attachments) > 0 {
		return "[attachment]"
	}
	return ""
}
