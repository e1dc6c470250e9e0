package router

import (
	"github.com/labstack/echo/v4"

	"github.com/andriel300/tec-shop-sub006/internal/adapter/api/handler"
	"github.com/andriel300/tec-shop-sub006/internal/adapter/api/middleware"
)

// SetupConversationRouter sets up all conversation routes (excluding WebSocket)
func SetupConversationRouter(e *echo.Echo, conversationHandler *handler.ConversationHandler, authMiddleware *middleware.AuthMiddleware) {
	group := e.Group("/v1/conversations")
	group.Use(authMiddleware.Authenticate)

	group.POST("", conversationHandler.CreateConversation)       // POST /v1/conversations
	group.GET("", conversationHandler.ListConversations)         // GET /v1/conversations
	group.PUT("/:id/seen", conversationHandler.MarkSeen)         // PUT /v1/conversations/:id/seen
	group.POST("/:id/messages", conversationHandler.SendMessage) // POST /v1/conversations/:id/messages
	group.GET("/:id/messages", conversationHandler.GetMessages)  // GET /v1/conversations/:id/messages
	group.POST("/:id/typing", conversationHandler.SetTyping)     // POST /v1/conversations/:id/typing

	presenceGroup := e.Group("/v1/presence")
	presenceGroup.Use(authMiddleware.Authenticate)
	presenceGroup.GET("/:participantId", conversationHandler.GetPresence) // GET /v1/presence/:participantId
}
