package handlers

import (
	"github.com/labstack/echo/v4"

	"github.com/lyzr/crewledger/cmd/ledgerd/container"
	"github.com/lyzr/crewledger/cmd/ledgerd/feed"
	"github.com/lyzr/crewledger/common/bootstrap"
	"github.com/lyzr/crewledger/common/partition"
)

// FeedHandler streams ledger save notifications over WebSocket
type FeedHandler struct {
	components *bootstrap.Components
	hub        *feed.Hub
}

// NewFeedHandler creates a new feed handler
func NewFeedHandler(c *container.Container) *FeedHandler {
	return &FeedHandler{
		components: c.Components,
		hub:        c.Feed,
	}
}

// Watch upgrades to a WebSocket that receives a ledger.saved event each time
// the partition (or any partition, if none is given) is written
// GET /api/v1/feed?partition=OT_A_2024
func (h *FeedHandler) Watch(c echo.Context) error {
	p := c.QueryParam("partition")
	if p != "" && p != feed.AllPartitions {
		if err := partition.ValidateName(p); err != nil {
			return respondError(c, h.components.Logger, &paramError{msg: err.Error()})
		}
	}

	if err := h.hub.ServeWS(c.Response(), c.Request(), p); err != nil {
		h.components.Logger.Warn("feed upgrade failed", "partition", p, "error", err)
	}
	return nil
}
