package router

import (
	"github.com/labstack/echo/v4"

	"github.com/andriel300/tec-shop-sub006/internal/adapter/api/handler"
	"github.com/andriel300/tec-shop-sub006/internal/adapter/api/middleware"
	"github.com/andriel300/tec-shop-sub006/internal/infrastructure/metrics"
)

func Setup(
	e *echo.Echo,
	conversationHandler *handler.ConversationHandler,
	wsHandler *handler.WebSocketHandler,
	healthHandler *handler.HealthHandler,
	authMiddleware *middleware.AuthMiddleware,
) {
	SetupConversationRouter(e, conversationHandler, authMiddleware)
	SetupWebSocketRouter(e, wsHandler)
	SetupHealthRouter(e, healthHandler)

	e.GET("/metrics", echo.WrapHandler(metrics.Handler()))
}
