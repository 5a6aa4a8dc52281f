package handlers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/lyzr/crewledger/cmd/ledgerd/container"
	"github.com/lyzr/crewledger/cmd/ledgerd/middleware"
	"github.com/lyzr/crewledger/cmd/ledgerd/service"
	"github.com/lyzr/crewledger/common/bootstrap"
	"github.com/lyzr/crewledger/common/ledger"
)

// MemberHandler handles crew membership changes. Each change applies from
// from_month through December.
type MemberHandler struct {
	components    *bootstrap.Components
	ledgerService *service.LedgerService
}

// NewMemberHandler creates a new member handler
func NewMemberHandler(c *container.Container) *MemberHandler {
	return &MemberHandler{
		components:    c.Components,
		ledgerService: c.LedgerService,
	}
}

// AddMember adds a crew member
// POST /api/v1/ledgers/:kind/:crew/:year/members
func (h *MemberHandler) AddMember(c echo.Context) error {
	var req struct {
		Name      string `json:"name"`
		FromMonth int    `json:"from_month"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{"error": "invalid request body"})
	}

	sc, err := h.context(c, req.FromMonth)
	if err != nil {
		return respondError(c, h.components.Logger, err)
	}
	if err := h.ledgerService.AddMember(c.Request().Context(), sc, req.Name, middleware.GetActor(c)); err != nil {
		return respondError(c, h.components.Logger, err)
	}

	return c.JSON(http.StatusCreated, map[string]interface{}{
		"partition":  sc.Key().String(),
		"name":       req.Name,
		"from_month": sc.Month,
	})
}

// RemoveMember removes a crew member
// DELETE /api/v1/ledgers/:kind/:crew/:year/members/:name?from_month=
func (h *MemberHandler) RemoveMember(c echo.Context) error {
	month, err := parseFromMonth(c.QueryParam("from_month"))
	if err != nil {
		return respondError(c, h.components.Logger, err)
	}
	sc, err := h.context(c, month)
	if err != nil {
		return respondError(c, h.components.Logger, err)
	}

	if err := h.ledgerService.RemoveMember(c.Request().Context(), sc, memberName(c), middleware.GetActor(c)); err != nil {
		return respondError(c, h.components.Logger, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// RenameMember renames a crew member
// POST /api/v1/ledgers/:kind/:crew/:year/members/:name/rename
func (h *MemberHandler) RenameMember(c echo.Context) error {
	var req struct {
		NewName   string `json:"new_name"`
		FromMonth int    `json:"from_month"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{"error": "invalid request body"})
	}

	sc, err := h.context(c, req.FromMonth)
	if err != nil {
		return respondError(c, h.components.Logger, err)
	}
	name := memberName(c)
	if err := h.ledgerService.RenameMember(c.Request().Context(), sc, name, req.NewName, middleware.GetActor(c)); err != nil {
		return respondError(c, h.components.Logger, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"partition":  sc.Key().String(),
		"name":       req.NewName,
		"old_name":   name,
		"from_month": sc.Month,
	})
}

// MoveMember moves a crew member to a 0-based position
// POST /api/v1/ledgers/:kind/:crew/:year/members/:name/move
func (h *MemberHandler) MoveMember(c echo.Context) error {
	var req struct {
		Position  *int `json:"position"`
		FromMonth int  `json:"from_month"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{"error": "invalid request body"})
	}
	if req.Position == nil {
		return respondError(c, h.components.Logger, &paramError{msg: "position is required"})
	}

	sc, err := h.context(c, req.FromMonth)
	if err != nil {
		return respondError(c, h.components.Logger, err)
	}
	name := memberName(c)
	if err := h.ledgerService.MoveMember(c.Request().Context(), sc, name, *req.Position, middleware.GetActor(c)); err != nil {
		return respondError(c, h.components.Logger, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"partition":  sc.Key().String(),
		"name":       name,
		"position":   *req.Position,
		"from_month": sc.Month,
	})
}

// SetStartingHours sets January starting balances on an overtime ledger
// PUT /api/v1/ledgers/:kind/:crew/:year/members/:name/starting-hours
func (h *MemberHandler) SetStartingHours(c echo.Context) error {
	var req struct {
		Working *int `json:"starting_working"`
		Asking  *int `json:"starting_asking"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{"error": "invalid request body"})
	}
	if req.Working == nil || req.Asking == nil {
		return respondError(c, h.components.Logger, &paramError{msg: "starting_working and starting_asking are required"})
	}

	key, err := parseKey(c)
	if err != nil {
		return respondError(c, h.components.Logger, err)
	}
	if key.Kind != ledger.Overtime {
		return respondError(c, h.components.Logger, ledger.ErrKindMismatch)
	}

	name := memberName(c)
	err = h.ledgerService.AdjustStartingHours(c.Request().Context(), key.Crew, key.Year, name, *req.Working, *req.Asking, middleware.GetActor(c))
	if err != nil {
		return respondError(c, h.components.Logger, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"partition":        key.String(),
		"name":             name,
		"starting_working": *req.Working,
		"starting_asking":  *req.Asking,
	})
}

// context builds the schedule context for a membership change; month 0
// means January
func (h *MemberHandler) context(c echo.Context, month int) (ledger.ScheduleContext, error) {
	key, err := parseKey(c)
	if err != nil {
		return ledger.ScheduleContext{}, err
	}
	if month == 0 {
		month = 1
	}
	if month < 1 || month > 12 {
		return ledger.ScheduleContext{}, &paramError{msg: "invalid from_month " + strconv.Itoa(month)}
	}
	return ledger.ScheduleContext{Crew: key.Crew, Month: month, Year: key.Year, Kind: key.Kind}, nil
}
