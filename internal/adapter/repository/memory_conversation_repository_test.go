package repository

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andriel300/tec-shop-sub006/internal/domain/entity"
	"github.com/andriel300/tec-shop-sub006/pkg/errors"
)

func seedConversation(t *testing.T, repo *memoryConversationRepository, a, b entity.Participant) *entity.Conversation {
	t.Helper()

	conversation, created, err := repo.GetOrCreate(context.Background(), &entity.Conversation{
		PairKey:         entity.PairKey(a, b),
		ParticipantA:    a,
		ParticipantB:    b,
		ParticipantKeys: []string{a.Key(), b.Key()},
		UnreadCount:     make(map[string]int),
	})
	require.NoError(t, err)
	require.True(t, created)
	return conversation
}

func TestGetOrCreateIsIdempotent(t *testing.T) {
	repo := NewMemoryConversationRepository().(*memoryConversationRepository)
	buyer := entity.Participant{ID: "u1", Type: entity.ParticipantTypeUser}
	seller := entity.Participant{ID: "s1", Type: entity.ParticipantTypeSeller}

	first := seedConversation(t, repo, buyer, seller)

	// Same pair in the opposite order resolves to the same conversation.
	second, created, err := repo.GetOrCreate(context.Background(), &entity.Conversation{
		PairKey:         entity.PairKey(seller, buyer),
		ParticipantA:    seller,
		ParticipantB:    buyer,
		ParticipantKeys: []string{seller.Key(), buyer.Key()},
		UnreadCount:     make(map[string]int),
	})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)
}

func TestConcurrentAppendsGetContiguousSequences(t *testing.T) {
	repo := NewMemoryConversationRepository().(*memoryConversationRepository)
	buyer := entity.Participant{ID: "u1", Type: entity.ParticipantTypeUser}
	seller := entity.Participant{ID: "s1", Type: entity.ParticipantTypeSeller}
	conversation := seedConversation(t, repo, buyer, seller)

	const writers = 20
	var wg sync.WaitGroup
	wg.Add(writers)
	for i := 0; i < writers; i++ {
		go func(i int) {
			defer wg.Done()
			sender := buyer
			if i%2 == 0 {
				sender = seller
			}
			_, err := repo.AppendMessage(context.Background(), &entity.Message{
				ConversationID: conversation.ID,
				SenderID:       sender.ID,
				SenderType:     sender.Type,
				Content:        "hello",
			})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	messages, total, err := repo.ListMessages(context.Background(), conversation.ID, writers, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(writers), total)

	seen := make(map[int64]bool)
	for _, m := range messages {
		assert.False(t, seen[m.Sequence], "sequence %d assigned twice", m.Sequence)
		seen[m.Sequence] = true
		assert.GreaterOrEqual(t, m.Sequence, int64(1))
		assert.LessOrEqual(t, m.Sequence, int64(writers))
	}
}

func TestAppendIncrementsRecipientUnreadOnly(t *testing.T) {
	repo := NewMemoryConversationRepository().(*memoryConversationRepository)
	buyer := entity.Participant{ID: "u1", Type: entity.ParticipantTypeUser}
	seller := entity.Participant{ID: "s1", Type: entity.ParticipantTypeSeller}
	conversation := seedConversation(t, repo, buyer, seller)

	for i := 0; i < 3; i++ {
		_, err := repo.AppendMessage(context.Background(), &entity.Message{
			ConversationID: conversation.ID,
			SenderID:       buyer.ID,
			SenderType:     buyer.Type,
			Content:        "hi",
		})
		require.NoError(t, err)
	}

	got, err := repo.GetByID(context.Background(), conversation.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, got.UnreadCount[seller.Key()])
	assert.Equal(t, 0, got.UnreadCount[buyer.Key()])
}

func TestMarkSeenResetsOwnCounterOnly(t *testing.T) {
	repo := NewMemoryConversationRepository().(*memoryConversationRepository)
	buyer := entity.Participant{ID: "u1", Type: entity.ParticipantTypeUser}
	seller := entity.Participant{ID: "s1", Type: entity.ParticipantTypeSeller}
	conversation := seedConversation(t, repo, buyer, seller)

	for _, sender := range []entity.Participant{buyer, seller, buyer} {
		_, err := repo.AppendMessage(context.Background(), &entity.Message{
			ConversationID: conversation.ID,
			SenderID:       sender.ID,
			SenderType:     sender.Type,
			Content:        "hi",
		})
		require.NoError(t, err)
	}

	seenAt := time.Now()
	require.NoError(t, repo.MarkSeen(context.Background(), conversation.ID, seller, seenAt))

	got, err := repo.GetByID(context.Background(), conversation.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.UnreadCount[seller.Key()])
	assert.Equal(t, 1, got.UnreadCount[buyer.Key()])
	assert.WithinDuration(t, seenAt, got.LastSeenAt[seller.Key()], time.Second)
}

func TestAppendRejectsOutsideSender(t *testing.T) {
	repo := NewMemoryConversationRepository().(*memoryConversationRepository)
	buyer := entity.Participant{ID: "u1", Type: entity.ParticipantTypeUser}
	seller := entity.Participant{ID: "s1", Type: entity.ParticipantTypeSeller}
	conversation := seedConversation(t, repo, buyer, seller)

	_, err := repo.AppendMessage(context.Background(), &entity.Message{
		ConversationID: conversation.ID,
		SenderID:       "intruder",
		SenderType:     entity.ParticipantTypeUser,
		Content:        "hi",
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, "FORBIDDEN"))
}

func TestListByParticipantOrdersByActivity(t *testing.T) {
	repo := NewMemoryConversationRepository().(*memoryConversationRepository)
	buyer := entity.Participant{ID: "u1", Type: entity.ParticipantTypeUser}
	sellerA := entity.Participant{ID: "s1", Type: entity.ParticipantTypeSeller}
	sellerB := entity.Participant{ID: "s2", Type: entity.ParticipantTypeSeller}

	first := seedConversation(t, repo, buyer, sellerA)
	second := seedConversation(t, repo, buyer, sellerB)
	_ = second

	// A new message in the older conversation moves it to the front.
	_, err := repo.AppendMessage(context.Background(), &entity.Message{
		ConversationID: first.ID,
		SenderID:       sellerA.ID,
		SenderType:     sellerA.Type,
		Content:        "ping",
		CreatedAt:      time.Now().Add(time.Minute),
	})
	require.NoError(t, err)

	conversations, total, err := repo.ListByParticipant(context.Background(), buyer, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, conversations, 2)
	assert.Equal(t, first.ID, conversations[0].ID)
}

func TestListMessagesOutOfRangePage(t *testing.T) {
	repo := NewMemoryConversationRepository().(*memoryConversationRepository)
	buyer := entity.Participant{ID: "u1", Type: entity.ParticipantTypeUser}
	seller := entity.Participant{ID: "s1", Type: entity.ParticipantTypeSeller}
	conversation := seedConversation(t, repo, buyer, seller)

	for i := 0; i < 3; i++ {
		_, err := repo.AppendMessage(context.Background(), &entity.Message{
			ConversationID: conversation.ID,
			SenderID:       buyer.ID,
			SenderType:     buyer.Type,
			Content:        "hi",
		})
		require.NoError(t, err)
	}

	messages, total, err := repo.ListMessages(context.Background(), conversation.ID, 20, 19980)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Empty(t, messages)
}

func TestGetByIDUnknown(t *testing.T) {
	repo := NewMemoryConversationRepository().(*memoryConversationRepository)

	_, err := repo.GetByID(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, errors.Is(err, "NOT_FOUND"))
}
