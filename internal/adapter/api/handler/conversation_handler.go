package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/andriel300/tec-shop-sub006/internal/adapter/api/middleware"
	"github.com/andriel300/tec-shop-sub006/internal/domain/entity"
	"github.com/andriel300/tec-shop-sub006/internal/usecase"
	"github.com/andriel300/tec-shop-sub006/pkg/errors"
	"github.com/andriel300/tec-shop-sub006/pkg/response"
	"github.com/andriel300/tec-shop-sub006/pkg/utils"
)

type ConversationHandler struct {
	conversations *usecase.ConversationUseCase
}

func NewConversationHandler(conversations *usecase.ConversationUseCase) *ConversationHandler {
	return &ConversationHandler{
		conversations: conversations,
	}
}

type createConversationRequest struct {
	TargetID       string `json:"target_id" validate:"required"`
	TargetType     string `json:"target_type" validate:"required,oneof=user seller"`
	InitialMessage string `json:"initial_message"`
}

type sendMessageRequest struct {
	Content     string              `json:"content" validate:"omitempty,max=5000"`
	Attachments []attachmentRequest `json:"attachments" validate:"dive"`
}

type attachmentRequest struct {
	URL      string `json:"url" validate:"required,url"`
	FileName string `json:"file_name"`
}

type typingRequest struct {
	IsTyping bool `json:"is_typing"`
}

// CreateConversation opens (or returns) the conversation between the
// caller and the target participant.
func (h *ConversationHandler) CreateConversation(c echo.Context) error {
	var req createConversationRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	caller, ok := middleware.CallerParticipant(c)
	if !ok {
		return response.Error(c, errors.Unauthorized("Authentication required", nil))
	}

	conversation, err := h.conversations.CreateConversation(c.Request().Context(), usecase.CreateConversationInput{
		Initiator:      caller,
		Target:         entity.Participant{ID: req.TargetID, Type: entity.ParticipantType(req.TargetType)},
		InitialMessage: req.InitialMessage,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, conversation)
}

// ListConversations returns the caller's conversations, most recent
// activity first.
func (h *ConversationHandler) ListConversations(c echo.Context) error {
	caller, ok := middleware.CallerParticipant(c)
	if !ok {
		return response.Error(c, errors.Unauthorized("Authentication required", nil))
	}

	params := utils.GetPaginationParams(c)

	conversations, total, err := h.conversations.ListConversations(c.Request().Context(), caller, params.PageSize, params.Offset)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Paginated(c, conversations, total, params.Page, params.PageSize)
}

// SendMessage appends a message to a conversation.
func (h *ConversationHandler) SendMessage(c echo.Context) error {
	var req sendMessageRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	caller, ok := middleware.CallerParticipant(c)
	if !ok {
		return response.Error(c, errors.Unauthorized("Authentication required", nil))
	}

	attachments := make([]entity.Attachment, 0, len(req.Attachments))
	for _, a := range req.Attachments {
		attachments = append(attachments, entity.Attachment{URL: a.URL, FileName: a.FileName})
	}

	message, err := h.conversations.SendMessage(c.Request().Context(), usecase.SendMessageInput{
		ConversationID: c.Param("id"),
		Sender:         caller,
		Content:        req.Content,
		Attachments:    attachments,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, message)
}

// GetMessages returns one page of a conversation's messages.
func (h *ConversationHandler) GetMessages(c echo.Context) error {
	caller, ok := middleware.CallerParticipant(c)
	if !ok {
		return response.Error(c, errors.Unauthorized("Authentication required", nil))
	}

	params := utils.GetPaginationParams(c)

	messages, total, err := h.conversations.GetMessages(c.Request().Context(), c.Param("id"), caller, params.PageSize, params.Offset)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Paginated(c, messages, total, params.Page, params.PageSize)
}

// MarkSeen acknowledges everything the counterpart sent so far.
func (h *ConversationHandler) MarkSeen(c echo.Context) error {
	caller, ok := middleware.CallerParticipant(c)
	if !ok {
		return response.Error(c, errors.Unauthorized("Authentication required", nil))
	}

	if err := h.conversations.MarkSeen(c.Request().Context(), c.Param("id"), caller); err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]string{"status": "seen"})
}

// SetTyping records a typing signal for the caller.
func (h *ConversationHandler) SetTyping(c echo.Context) error {
	var req typingRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}

	caller, ok := middleware.CallerParticipant(c)
	if !ok {
		return response.Error(c, errors.Unauthorized("Authentication required", nil))
	}

	if err := h.conversations.SetTyping(c.Request().Context(), c.Param("id"), caller, req.IsTyping); err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]bool{"is_typing": req.IsTyping})
}

// GetPresence reports whether a participant is online.
func (h *ConversationHandler) GetPresence(c echo.Context) error {
	online, err := h.conversations.IsOnline(c.Request().Context(), c.Param("participantId"))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]interface{}{
		"participant_id": c.Param("participantId"),
		"online":         online,
	})
}
