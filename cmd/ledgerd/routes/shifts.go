package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/lyzr/crewledger/cmd/ledgerd/container"
	"github.com/lyzr/crewledger/cmd/ledgerd/handlers"
)

// RegisterShiftRoutes registers rotation routes
func RegisterShiftRoutes(e *echo.Echo, c *container.Container) {
	shiftHandler := handlers.NewShiftHandler(c)

	e.GET("/api/v1/shifts/:crew/:year/:month", shiftHandler.GetShifts)
}
