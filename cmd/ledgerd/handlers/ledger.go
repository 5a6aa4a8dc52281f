package handlers

import (
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/lyzr/crewledger/cmd/ledgerd/container"
	"github.com/lyzr/crewledger/cmd/ledgerd/middleware"
	"github.com/lyzr/crewledger/cmd/ledgerd/service"
	"github.com/lyzr/crewledger/common/bootstrap"
	"github.com/lyzr/crewledger/common/ledger"
)

// LedgerHandler handles HTTP requests for month sheets
type LedgerHandler struct {
	components    *bootstrap.Components
	ledgerService *service.LedgerService
}

// NewLedgerHandler creates a new ledger handler
func NewLedgerHandler(c *container.Container) *LedgerHandler {
	return &LedgerHandler{
		components:    c.Components,
		ledgerService: c.LedgerService,
	}
}

// GetMonth returns one month with running totals
// GET /api/v1/ledgers/:kind/:crew/:year/months/:month
func (h *LedgerHandler) GetMonth(c echo.Context) error {
	sc, err := parseContext(c)
	if err != nil {
		return respondError(c, h.components.Logger, err)
	}

	view, err := h.ledgerService.Month(c.Request().Context(), sc)
	if err != nil {
		return respondError(c, h.components.Logger, err)
	}
	return c.JSON(http.StatusOK, view)
}

// PutMonth saves raw day entries for the listed crew members
// PUT /api/v1/ledgers/:kind/:crew/:year/months/:month
func (h *LedgerHandler) PutMonth(c echo.Context) error {
	sc, err := parseContext(c)
	if err != nil {
		return respondError(c, h.components.Logger, err)
	}

	var req service.MonthEdit
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"error": "invalid request body",
		})
	}

	actor := middleware.GetActor(c)
	h.components.Logger.Info("saving month",
		"partition", sc.Key().String(),
		"month", sc.Month,
		"actor", actor,
		"members", len(req.Members))

	result, err := h.ledgerService.Save(c.Request().Context(), sc, req, actor)
	if err != nil {
		return respondError(c, h.components.Logger, err)
	}
	return c.JSON(http.StatusOK, result)
}

// PatchMonth applies an RFC 6902 patch to the month's edit form
// PATCH /api/v1/ledgers/:kind/:crew/:year/months/:month
func (h *LedgerHandler) PatchMonth(c echo.Context) error {
	sc, err := parseContext(c)
	if err != nil {
		return respondError(c, h.components.Logger, err)
	}

	body, err := io.ReadAll(c.Request().Body)
	if err != nil || len(body) == 0 {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"error": "patch operations are required",
		})
	}

	actor := middleware.GetActor(c)
	h.components.Logger.Info("patching month",
		"partition", sc.Key().String(),
		"month", sc.Month,
		"actor", actor)

	result, err := h.ledgerService.Patch(c.Request().Context(), sc, body, actor)
	if err != nil {
		return respondError(c, h.components.Logger, err)
	}
	return c.JSON(http.StatusOK, result)
}

// GetEditForm returns the month as the padded raw document PATCH applies to
// GET /api/v1/ledgers/:kind/:crew/:year/months/:month/form
func (h *LedgerHandler) GetEditForm(c echo.Context) error {
	sc, err := parseContext(c)
	if err != nil {
		return respondError(c, h.components.Logger, err)
	}

	form, err := h.ledgerService.EditForm(c.Request().Context(), sc)
	if err != nil {
		return respondError(c, h.components.Logger, err)
	}
	return c.JSON(http.StatusOK, form)
}

// GetRanking orders an overtime month by total asking or working hours
// GET /api/v1/ledgers/:kind/:crew/:year/months/:month/ranking?by=asking|working&filter=<cel>
func (h *LedgerHandler) GetRanking(c echo.Context) error {
	sc, err := parseContext(c)
	if err != nil {
		return respondError(c, h.components.Logger, err)
	}
	by, err := ledger.ParseRankBy(c.QueryParam("by"))
	if err != nil {
		return respondError(c, h.components.Logger, &paramError{msg: err.Error()})
	}

	standings, err := h.ledgerService.Ranking(c.Request().Context(), sc, by, c.QueryParam("filter"))
	if err != nil {
		return respondError(c, h.components.Logger, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"partition": sc.Key().String(),
		"month":     sc.Month,
		"by":        by,
		"standings": standings,
	})
}

// Rollover seeds the next year from this year's December
// POST /api/v1/ledgers/:kind/:crew/:year/rollover
func (h *LedgerHandler) Rollover(c echo.Context) error {
	key, err := parseKey(c)
	if err != nil {
		return respondError(c, h.components.Logger, err)
	}

	actor := middleware.GetActor(c)
	h.components.Logger.Info("rolling over year",
		"partition", key.String(),
		"actor", actor)

	january, err := h.ledgerService.Rollover(c.Request().Context(), key.Crew, key.Year, key.Kind, actor)
	if err != nil {
		return respondError(c, h.components.Logger, err)
	}
	return c.JSON(http.StatusCreated, january)
}
