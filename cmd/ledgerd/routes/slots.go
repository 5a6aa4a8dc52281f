package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/lyzr/crewledger/cmd/ledgerd/container"
	"github.com/lyzr/crewledger/cmd/ledgerd/handlers"
)

// RegisterSlotRoutes registers overtime slot routes
func RegisterSlotRoutes(e *echo.Echo, c *container.Container) {
	slotHandler := handlers.NewSlotHandler(c)

	slots := e.Group("/api/v1/slots/:crew/:year/:month")
	{
		slots.GET("", slotHandler.GetSlots)
		slots.PUT("", slotHandler.PutSlots)
	}
}
