package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/lyzr/crewledger/cmd/ledgerd/container"
	"github.com/lyzr/crewledger/cmd/ledgerd/middleware"
	"github.com/lyzr/crewledger/cmd/ledgerd/service"
	"github.com/lyzr/crewledger/common/bootstrap"
	"github.com/lyzr/crewledger/common/ledger"
)

// SlotHandler handles the overtime coverage slots under each month
type SlotHandler struct {
	components    *bootstrap.Components
	ledgerService *service.LedgerService
}

// NewSlotHandler creates a new slot handler
func NewSlotHandler(c *container.Container) *SlotHandler {
	return &SlotHandler{
		components:    c.Components,
		ledgerService: c.LedgerService,
	}
}

// GetSlots returns one month of slots
// GET /api/v1/slots/:crew/:year/:month
func (h *SlotHandler) GetSlots(c echo.Context) error {
	crew, err := parseCrew(c)
	if err != nil {
		return respondError(c, h.components.Logger, err)
	}
	year, err := parseYear(c)
	if err != nil {
		return respondError(c, h.components.Logger, err)
	}
	month, err := parseMonth(c.Param("month"))
	if err != nil {
		return respondError(c, h.components.Logger, err)
	}

	slots, err := h.ledgerService.Slots(c.Request().Context(), crew, year, month)
	if err != nil {
		return respondError(c, h.components.Logger, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"crew":  crew,
		"year":  year,
		"month": month,
		"slots": slots,
	})
}

// PutSlots merges the given slots into the month
// PUT /api/v1/slots/:crew/:year/:month
func (h *SlotHandler) PutSlots(c echo.Context) error {
	crew, err := parseCrew(c)
	if err != nil {
		return respondError(c, h.components.Logger, err)
	}
	year, err := parseYear(c)
	if err != nil {
		return respondError(c, h.components.Logger, err)
	}
	month, err := parseMonth(c.Param("month"))
	if err != nil {
		return respondError(c, h.components.Logger, err)
	}

	var req struct {
		Slots ledger.Slots `json:"slots"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{"error": "invalid request body"})
	}

	slots, err := h.ledgerService.SaveSlots(c.Request().Context(), crew, year, month, req.Slots, middleware.GetActor(c))
	if err != nil {
		return respondError(c, h.components.Logger, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"crew":  crew,
		"year":  year,
		"month": month,
		"slots": slots,
	})
}
