package handler

import (
	"context"
	"net/http"

	gorillaws "github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	apimiddleware "github.com/andriel300/tec-shop-sub006/internal/adapter/api/middleware"
	"github.com/andriel300/tec-shop-sub006/internal/domain/entity"
	"github.com/andriel300/tec-shop-sub006/internal/infrastructure/firebase"
	ws "github.com/andriel300/tec-shop-sub006/internal/infrastructure/websocket"
	"github.com/andriel300/tec-shop-sub006/internal/usecase"
	"github.com/andriel300/tec-shop-sub006/pkg/errors"
	"github.com/andriel300/tec-shop-sub006/pkg/logger"
)

type WebSocketHandler struct {
	wsManager     *ws.Manager
	authClient    *firebase.FirebaseAuthClient
	conversations *usecase.ConversationUseCase
}

var upgrader = gorillaws.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // TODO: restrict to the storefront origins before GA
	},
}

func NewWebSocketHandler(wsManager *ws.Manager, authClient *firebase.FirebaseAuthClient, conversations *usecase.ConversationUseCase) *WebSocketHandler {
	return &WebSocketHandler{
		wsManager:     wsManager,
		authClient:    authClient,
		conversations: conversations,
	}
}

// HandleWebSocket upgrades the connection and starts the read/write
// pumps. Browsers cannot set headers on websocket dials, so the token
// comes in as a query parameter.
func (h *WebSocketHandler) HandleWebSocket(c echo.Context) error {
	token := c.QueryParam("token")
	if token == "" {
		return errors.Unauthorized("Authentication token required", nil)
	}

	uid, claims, err := h.authClient.VerifyToken(c.Request().Context(), token)
	if err != nil {
		return errors.Unauthorized("Invalid or expired token", err)
	}
	participant := apimiddleware.ParticipantFromClaims(uid, claims)

	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return errors.Internal("Failed to upgrade connection", err)
	}

	client := &ws.Client{
		ParticipantKey: participant.Key(),
		Conn:           conn,
		Send:           make(chan []byte, 256),
	}

	h.wsManager.Register <- client

	go client.ReadPump(h.wsManager, h)
	go client.WritePump()

	return nil
}

// TypingSignal implements ws.Signaler: typing frames from the socket feed
// the presence tracker through the conversation engine's authorization.
func (h *WebSocketHandler) TypingSignal(ctx context.Context, conversationID, participantKey string, isTyping bool) {
	participant, ok := entity.ParseKey(participantKey)
	if !ok {
		return
	}
	if err := h.conversations.SetTyping(ctx, conversationID, participant, isTyping); err != nil {
		logger.Debug("Typing signal rejected: conversation=%s, participant=%s, error=%v", conversationID, participantKey, err)
	}
}

// HeartbeatSignal implements ws.Signaler.
func (h *WebSocketHandler) HeartbeatSignal(ctx context.Context, participantKey string) {
	participant, ok := entity.ParseKey(participantKey)
	if !ok {
		return
	}
	if err := h.conversations.Heartbeat(ctx, participant.ID); err != nil {
		logger.Debug("Heartbeat failed: participant=%s, error=%v", participantKey, err)
	}
}
