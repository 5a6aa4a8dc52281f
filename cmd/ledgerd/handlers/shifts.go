package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/lyzr/crewledger/cmd/ledgerd/container"
	"github.com/lyzr/crewledger/common/bootstrap"
	"github.com/lyzr/crewledger/common/rotation"
)

// ShiftHandler serves the crew rotation
type ShiftHandler struct {
	components *bootstrap.Components
}

// NewShiftHandler creates a new shift handler
func NewShiftHandler(c *container.Container) *ShiftHandler {
	return &ShiftHandler{components: c.Components}
}

// GetShifts returns one shift label per day of the month; "" is a day off
// GET /api/v1/shifts/:crew/:year/:month
func (h *ShiftHandler) GetShifts(c echo.Context) error {
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

	labels, err := rotation.MonthlyShiftLabels(crew, year, month)
	if err != nil {
		return respondError(c, h.components.Logger, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"crew":   crew,
		"year":   year,
		"month":  month,
		"shifts": labels,
	})
}
