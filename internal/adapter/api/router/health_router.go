package router

import (
	"github.com/labstack/echo/v4"

	"github.com/andriel300/tec-shop-sub006/internal/adapter/api/handler"
)

func SetupHealthRouter(e *echo.Echo, healthHandler *handler.HealthHandler) {
	e.GET("/health", healthHandler.CheckHealth)
	e.GET("/bus-health", healthHandler.CheckBusHealth)
}
