package usecase

import (
	"context"
	"time"
	"unicode/utf8"

	"github.com/andriel300/tec-shop-sub006/internal/domain/entity"
	"github.com/andriel300/tec-shop-sub006/internal/domain/repository"
	"github.com/andriel300/tec-shop-sub006/internal/event"
	"github.com/andriel300/tec-shop-sub006/internal/infrastructure/eventbus"
	"github.com/andriel300/tec-shop-sub006/internal/infrastructure/metrics"
	"github.com/andriel300/tec-shop-sub006/internal/infrastructure/presence"
	"github.com/andriel300/tec-shop-sub006/pkg/errors"
	"github.com/andriel300/tec-shop-sub006/pkg/logger"
)

// ConversationUseCase owns the conversation and message lifecycle: ordered
// appends, unread accounting, participant authorization and pagination.
// Typing and online queries delegate to the presence tracker.
type ConversationUseCase struct {
	repo           repository.ConversationRepository
	bus            eventbus.Client
	presence       *presence.Tracker
	notifier       *NotificationUseCase
	publishTimeout time.Duration
}

func NewConversationUseCase(
	repo repository.ConversationRepository,
	bus eventbus.Client,
	tracker *presence.Tracker,
	notifier *NotificationUseCase,
	publishTimeout time.Duration,
) *ConversationUseCase {
	return &ConversationUseCase{
		repo:           repo,
		bus:            bus,
		presence:       tracker,
		notifier:       notifier,
		publishTimeout: publishTimeout,
	}
}

type CreateConversationInput struct {
	Initiator      entity.Participant
	Target         entity.Participant
	InitialMessage string
}

type SendMessageInput struct {
	ConversationID string
	Sender         entity.Participant
	Content        string
	Attachments    []entity.Attachment
}

// CreateConversation looks up the conversation for the unordered pair and
// returns it unchanged when it exists, ignoring InitialMessage. A new
// conversation gets the initial message appended when one is supplied.
func (uc *ConversationUseCase) CreateConversation(ctx context.Context, input CreateConversationInput) (*entity.Conversation, error) {
	if input.Initiator.Equal(input.Target) {
		return nil, errors.BadRequest("cannot create a conversation with yourself", nil)
	}
	if input.Initiator.ID == "" || input.Target.ID == "" {
		return nil, errors.BadRequest("both participants are required", nil)
	}

	conversation := &entity.Conversation{
		PairKey:         entity.PairKey(input.Initiator, input.Target),
		ParticipantA:    input.Initiator,
		ParticipantB:    input.Target,
		ParticipantKeys: []string{input.Initiator.Key(), input.Target.Key()},
		UnreadCount:     make(map[string]int),
	}

	conversation, created, err := uc.repo.GetOrCreate(ctx, conversation)
	if err != nil {
		return nil, err
	}

	if created && input.InitialMessage != "" {
		if _, err := uc.SendMessage(ctx, SendMessageInput{
			ConversationID: conversation.ID,
			Sender:         input.Initiator,
			Content:        input.InitialMessage,
		}); err != nil {
			return nil, err
		}

		conversation, err = uc.repo.GetByID(ctx, conversation.ID)
		if err != nil {
			return nil, err
		}
	}

	return conversation, nil
}

// SendMessage validates, persists and announces one message. Persistence
// must succeed before the event is published; a failed publish leaves the
// message persisted and is logged only.
func (uc *ConversationUseCase) SendMessage(ctx context.Context, input SendMessageInput) (*entity.Message, error) {
	if input.Content == "" && len(input.Attachments) == 0 {
		return nil, errors.BadRequest("message needs content or at least one attachment", nil)
	}
	if utf8.RuneCountInString(input.Content) > entity.MaxContentLength {
		return nil, errors.BadRequest("message content exceeds 5000 characters", nil)
	}

	conversation, err := uc.repo.GetByID(ctx, input.ConversationID)
	if err != nil {
		return nil, err
	}
	if !conversation.HasParticipant(input.Sender) {
		return nil, errors.Forbidden("sender is not a participant in this conversation", nil)
	}

	message := &entity.Message{
		ConversationID: input.ConversationID,
		SenderID:       input.Sender.ID,
		SenderType:     input.Sender.Type,
		Content:        input.Content,
		Attachments:    input.Attachments,
		CreatedAt:      time.Now(),
	}

	message, err = uc.repo.AppendMessage(ctx, message)
	if err != nil {
		return nil, err
	}
	metrics.MessagesTotal.Inc()

	uc.publishChatEvent(ctx, event.TypeNewMessage, input.ConversationID, message)
	uc.notifyRecipient(ctx, conversation, message)

	return message, nil
}

// notifyRecipient pushes a "new message" notification to the other
// participant. The message is already persisted, so notification failures
// are logged and never fail the send.
func (uc *ConversationUseCase) notifyRecipient(ctx context.Context, conversation *entity.Conversation, message *entity.Message) {
	if uc.notifier == nil {
		return
	}
	recipient, ok := conversation.Other(message.Sender())
	if !ok {
		return
	}

	preview := message.Content
	if preview == "" {
		preview = "[attachment]"
	}
	variables := map[string]string{
		"senderName": message.SenderID,
		"preview":    preview,
	}
	metadata := map[string]interface{}{
		"conversationId": conversation.ID,
		"messageId":      message.ID,
	}

	var err error
	if recipient.Type == entity.ParticipantTypeSeller {
		err = uc.notifier.NotifySeller(ctx, recipient.ID, "new_message", variables, metadata)
	} else {
		err = uc.notifier.NotifyCustomer(ctx, recipient.ID, "new_message", variables, metadata)
	}
	if err != nil {
		logger.LogPublishError(event.TopicNotifications, recipient.Key(), err)
	}
}

// MarkSeen resets the participant's unread counter and records the seen
// mark. The other participant's counter is unaffected.
func (uc *ConversationUseCase) MarkSeen(ctx context.Context, conversationID string, participant entity.Participant) error {
	conversation, err := uc.repo.GetByID(ctx, conversationID)
	if err != nil {
		return err
	}
	if !conversation.HasParticipant(participant) {
		return errors.Forbidden("participant is not part of this conversation", nil)
	}

	seenAt := time.Now()
	if err := uc.repo.MarkSeen(ctx, conversationID, participant, seenAt); err != nil {
		return err
	}

	uc.publishChatEvent(ctx, event.TypeMessageSeen, conversationID, event.SeenMarker{
		ConversationID:  conversationID,
		ParticipantID:   participant.ID,
		ParticipantType: participant.Type,
		SeenAt:          seenAt,
	})

	return nil
}

// ListConversations returns the participant's conversations ordered by
// most recent activity first.
func (uc *ConversationUseCase) ListConversations(ctx context.Context, participant entity.Participant, limit, offset int) ([]*entity.Conversation, int64, error) {
	return uc.repo.ListByParticipant(ctx, participant, limit, offset)
}

// GetMessages returns one page of messages in ascending (createdAt,
// sequence) order. Out-of-range pages yield an empty list, not an error.
func (uc *ConversationUseCase) GetMessages(ctx context.Context, conversationID string, participant entity.Participant, limit, offset int) ([]*entity.Message, int64, error) {
	conversation, err := uc.repo.GetByID(ctx, conversationID)
	if err != nil {
		return nil, 0, err
	}
	if !conversation.HasParticipant(participant) {
		return nil, 0, errors.Forbidden("participant is not part of this conversation", nil)
	}

	return uc.repo.ListMessages(ctx, conversationID, limit, offset)
}

// SetTyping forwards a typing signal to the presence tracker.
func (uc *ConversationUseCase) SetTyping(ctx context.Context, conversationID string, participant entity.Participant, isTyping bool) error {
	conversation, err := uc.repo.GetByID(ctx, conversationID)
	if err != nil {
		return err
	}
	if !conversation.HasParticipant(participant) {
		return errors.Forbidden("participant is not part of this conversation", nil)
	}

	metrics.TypingSignalsTotal.Inc()
	return uc.presence.SetTyping(ctx, conversationID, participant, isTyping)
}

// Heartbeat refreshes the participant's online window.
func (uc *ConversationUseCase) Heartbeat(ctx context.Context, participantID string) error {
	return uc.presence.Heartbeat(ctx, participantID)
}

// IsOnline reports whether the participant signaled within the TTL window.
func (uc *ConversationUseCase) IsOnline(ctx context.Context, participantID string) (bool, error) {
	return uc.presence.IsOnline(ctx, participantID)
}

// publishChatEvent announces a chat event keyed by conversation id. The
// message is already persisted at this point, so publish failures are
// logged and swallowed; the caller still gets the persisted result.
func (uc *ConversationUseCase) publishChatEvent(ctx context.Context, eventType, conversationID string, payload interface{}) {
	env, err := event.Encode(eventType, event.MaxVersion(eventType), payload)
	if err != nil {
		logger.LogPublishError(event.TopicChat, conversationID, err)
		metrics.ChatPublishFailures.Inc()
		return
	}
	raw, err := env.Bytes()
	if err != nil {
		logger.LogPublishError(event.TopicChat, conversationID, err)
		metrics.ChatPublishFailures.Inc()
		return
	}

	publishCtx := ctx
	if uc.publishTimeout > 0 {
		var cancel context.CancelFunc
		publishCtx, cancel = context.WithTimeout(ctx, uc.publishTimeout)
		defer cancel()
	}

	if err := uc.bus.Publish(publishCtx, event.TopicChat, conversationID, raw); err != nil {
		logger.LogPublishError(event.TopicChat, conversationID, err)
		metrics.ChatPublishFailures.Inc()
	}
}
