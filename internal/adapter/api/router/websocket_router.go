package router

import (
	"github.com/labstack/echo/v4"

	"github.com/andriel300/tec-shop-sub006/internal/adapter/api/handler"
)

// SetupWebSocketRouter wires the live connection endpoint. Authentication
// happens inside the handler (token query parameter), not via middleware.
func SetupWebSocketRouter(e *echo.Echo, wsHandler *handler.WebSocketHandler) {
	e.GET("/v1/ws", wsHandler.HandleWebSocket)
}
