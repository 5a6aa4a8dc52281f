package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/lyzr/crewledger/cmd/ledgerd/container"
	"github.com/lyzr/crewledger/cmd/ledgerd/handlers"
)

// RegisterFeedRoutes registers the live update feed
func RegisterFeedRoutes(e *echo.Echo, c *container.Container) {
	feedHandler := handlers.NewFeedHandler(c)

	e.GET("/api/v1/feed", feedHandler.Watch)
}
