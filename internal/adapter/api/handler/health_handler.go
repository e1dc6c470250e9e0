package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/andriel300/tec-shop-sub006/internal/infrastructure/eventbus"
)

type HealthHandler struct {
	bus eventbus.Client
}

func NewHealthHandler(bus eventbus.Client) *HealthHandler {
	return &HealthHandler{
		bus: bus,
	}
}

func (h *HealthHandler) CheckHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "Server is running",
		"time":   time.Now().Format(time.RFC3339),
	})
}

// CheckBusHealth reports the event bus connection state. A disconnected
// bus is not fatal (notifications degrade to drop-and-warn) but worth
// surfacing for operators.
func (h *HealthHandler) CheckBusHealth(c echo.Context) error {
	if !h.bus.IsConnected() {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{
			"status": "Event bus disconnected",
		})
	}

	return c.JSON(http.StatusOK, map[string]string{
		"status": "Event bus connected",
	})
}
