package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/lyzr/crewledger/cmd/ledgerd/service"
	"github.com/lyzr/crewledger/common/ledger"
	"github.com/lyzr/crewledger/common/lock"
	"github.com/lyzr/crewledger/common/logger"
	"github.com/lyzr/crewledger/common/rotation"
)

// paramError rejects a malformed path, query or body parameter
type paramError struct {
	msg string
}

func (e *paramError) Error() string { return e.msg }

// respondError maps domain errors to HTTP responses
func respondError(c echo.Context, log *logger.Logger, err error) error {
	var (
		invalid     *ledger.InvalidInputError
		badCrew     *rotation.InvalidCrewError
		badParam    *paramError
		badPatch    *service.PatchError
		badFilter   *service.FilterError
		persistence *ledger.PersistenceError
	)

	switch {
	case errors.As(err, &invalid):
		body := map[string]interface{}{"error": invalid.Error()}
		if invalid.Member != "" {
			body["member"] = invalid.Member
		}
		if invalid.Field != "" {
			body["field"] = invalid.Field
		}
		if invalid.Day > 0 {
			body["day"] = invalid.Day
		}
		return c.JSON(http.StatusUnprocessableEntity, body)

	case errors.As(err, &badCrew), errors.As(err, &badParam), errors.As(err, &badPatch), errors.As(err, &badFilter):
		return c.JSON(http.StatusBadRequest, map[string]interface{}{"error": err.Error()})

	case errors.Is(err, ledger.ErrKindMismatch):
		return c.JSON(http.StatusBadRequest, map[string]interface{}{"error": err.Error()})

	case errors.Is(err, ledger.ErrMemberNotFound), errors.Is(err, ledger.ErrPartitionNotFound):
		return c.JSON(http.StatusNotFound, map[string]interface{}{"error": err.Error()})

	case errors.Is(err, ledger.ErrMemberExists):
		return c.JSON(http.StatusConflict, map[string]interface{}{"error": err.Error()})

	case errors.Is(err, lock.ErrPartitionLockTimeout):
		log.Warn("partition busy", "path", c.Path(), "error", err)
		return c.JSON(http.StatusConflict, map[string]interface{}{"error": "ledger is being saved by someone else, try again"})

	case errors.As(err, &persistence):
		log.Error("ledger persistence failed", "op", persistence.Op, "partition", persistence.Key, "error", err)
		return c.JSON(http.StatusInternalServerError, map[string]interface{}{"error": "failed to " + persistence.Op + " ledger"})

	default:
		log.Error("request failed", "path", c.Path(), "error", err)
		return c.JSON(http.StatusInternalServerError, map[string]interface{}{"error": "internal error"})
	}
}
