package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/andriel300/tec-shop-sub006/internal/domain/entity"
	"github.com/andriel300/tec-shop-sub006/internal/domain/repository"
	"github.com/andriel300/tec-shop-sub006/pkg/errors"
)

// memoryConversationRepository backs the development profile and the
// usecase tests. A single mutex serializes appends and seen-marks, which
// trivially satisfies the per-conversation atomicity contract.
type memoryConversationRepository struct {
	mu       sync.Mutex
	byID     map[string]*entity.Conversation
	byPair   map[string]string
	messages map[string][]*entity.Message
}

func NewMemoryConversationRepository() repository.ConversationRepository {
	return &memoryConversationRepository{
		byID:     make(map[string]*entity.Conversation),
		byPair:   make(map[string]string),
		messages: make(map[string][]*entity.Message),
	}
}

func (r *memoryConversationRepository) GetOrCreate(ctx context.Context, conversation *entity.Conversation) (*entity.Conversation, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if id, ok := r.byPair[conversation.PairKey]; ok {
		return cloneConversation(r.byID[id]), false, nil
	}

	now := time.Now()
	stored := cloneConversation(conversation)
	stored.ID = uuid.New().String()
	stored.CreatedAt = now
	stored.UpdatedAt = now
	stored.LastMessageAt = now
	if stored.UnreadCount == nil {
		stored.UnreadCount = make(map[string]int)
	}

	r.byID[stored.ID] = stored
	r.byPair[stored.PairKey] = stored.ID

	return cloneConversation(stored), true, nil
}

func (r *memoryConversationRepository) GetByID(ctx context.Context, id string) (*entity.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	conversation, ok := r.byID[id]
	if !ok {
		return nil, errors.NotFound("Conversation", nil)
	}
	return cloneConversation(conversation), nil
}

func (r *memoryConversationRepository) AppendMessage(ctx context.Context, message *entity.Message) (*entity.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	conversation, ok := r.byID[message.ConversationID]
	if !ok {
		return nil, errors.NotFound("Conversation", nil)
	}

	other, isParticipant := conversation.Other(message.Sender())
	if !isParticipant {
		return nil, errors.Forbidden("sender is not a participant in this conversation", nil)
	}

	stored := cloneMessage(message)
	if stored.ID == "" {
		stored.ID = uuid.New().String()
	}
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now()
	}

	conversation.LastSequence++
	stored.Sequence = conversation.LastSequence
	conversation.LastMessage = snippet(stored)
	conversation.LastMessageAt = stored.CreatedAt
	conversation.UpdatedAt = time.Now()
	conversation.UnreadCount[other.Key()]++

	r.messages[message.ConversationID] = append(r.messages[message.ConversationID], stored)

	return cloneMessage(stored), nil
}

func (r *memoryConversationRepository) MarkSeen(ctx context.Context, conversationID string, p entity.Participant, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	conversation, ok := r.byID[conversationID]
	if !ok {
		return errors.NotFound("Conversation", nil)
	}

	conversation.UnreadCount[p.Key()] = 0
	if conversation.LastSeenAt == nil {
		conversation.LastSeenAt = make(map[string]time.Time)
	}
	conversation.LastSeenAt[p.Key()] = at
	conversation.UpdatedAt = time.Now()
	return nil
}

func (r *memoryConversationRepository) ListByParticipant(ctx context.Context, p entity.Participant, limit, offset int) ([]*entity.Conversation, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var matched []*entity.Conversation
	for _, conversation := range r.byID {
		if conversation.HasParticipant(p) {
			matched = append(matched, conversation)
		}
	}

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].LastMessageAt.After(matched[j].LastMessageAt)
	})

	total := int64(len(matched))
	page := paginate(len(matched), limit, offset)

	result := make([]*entity.Conversation, 0, len(page))
	for _, i := range page {
		result = append(result, cloneConversation(matched[i]))
	}
	return result, total, nil
}

func (r *memoryConversationRepository) ListMessages(ctx context.Context, conversationID string, limit, offset int) ([]*entity.Message, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[conversationID]; !ok {
		return nil, 0, errors.NotFound("Conversation", nil)
	}

	all := append([]*entity.Message(nil), r.messages[conversationID]...)
	sort.Slice(all, func(i, j int) bool {
		if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].CreatedAt.Before(all[j].CreatedAt)
		}
		return all[i].Sequence < all[j].Sequence
	})

	total := int64(len(all))
	page := paginate(len(all), limit, offset)

	result := make([]*entity.Message, 0, len(page))
	for _, i := range page {
		result = append(result, cloneMessage(all[i]))
	}
	return result, total, nil
}

// paginate returns the index window [offset, offset+limit) clipped to n.
func paginate(n, limit, offset int) []int {
	if offset < 0 {
		offset = 0
	}
	if offset >= n {
		return nil
	}
	end := n
	if limit > 0 && offset+limit < n {
		end = offset + limit
	}
	indices := make([]int, 0, end-offset)
	for i := offset; i < end; i++ {
		indices = append(indices, i)
	}
	return indices
}

func cloneConversation(c *entity.Conversation) *entity.Conversation {
	out := *c
	out.ParticipantKeys = append([]string(nil), c.ParticipantKeys...)
	out.UnreadCount = make(map[string]int, len(c.UnreadCount))
	for k, v := range c.UnreadCount {
		out.UnreadCount[k] = v
	}
	if c.LastSeenAt != nil {
		out.LastSeenAt = make(map[string]time.Time, len(c.LastSeenAt))
		for k, v := range c.LastSeenAt {
			out.LastSeenAt[k] = v
		}
	}
	return &out
}

func cloneMessage(m *entity.Message) *entity.Message {
	out := *m
	out.Attachments = append([]entity.Attachment(nil), m.Attachments...)
	return &out
}
