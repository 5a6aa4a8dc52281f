package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/lyzr/crewledger/cmd/ledgerd/container"
	"github.com/lyzr/crewledger/cmd/ledgerd/handlers"
)

// RegisterLedgerRoutes registers month, ranking, rollover and membership routes
func RegisterLedgerRoutes(e *echo.Echo, c *container.Container) {
	ledgerHandler := handlers.NewLedgerHandler(c)
	memberHandler := handlers.NewMemberHandler(c)

	ledgers := e.Group("/api/v1/ledgers/:kind/:crew/:year")
	{
		ledgers.GET("/months/:month", ledgerHandler.GetMonth)
		ledgers.PUT("/months/:month", ledgerHandler.PutMonth)
		ledgers.PATCH("/months/:month", ledgerHandler.PatchMonth)
		ledgers.GET("/months/:month/form", ledgerHandler.GetEditForm)
		ledgers.GET("/months/:month/ranking", ledgerHandler.GetRanking)
		ledgers.POST("/rollover", ledgerHandler.Rollover)

		ledgers.POST("/members", memberHandler.AddMember)
		ledgers.DELETE("/members/:name", memberHandler.RemoveMember)
		ledgers.POST("/members/:name/rename", memberHandler.RenameMember)
		ledgers.POST("/members/:name/move", memberHandler.MoveMember)
		ledgers.PUT("/members/:name/starting-hours", memberHandler.SetStartingHours)
	}
}
