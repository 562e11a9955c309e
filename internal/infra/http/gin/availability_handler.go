package ginserver

import (
	"net/http"
	"time"

	gin "github.com/gin-gonic/gin"

	"rentable/internal/app/commands"
	"rentable/internal/app/dto"
	availabilityapp "rentable/internal/app/handlers/availability"
	"rentable/internal/app/queries"
	domainrental "rentable/internal/domain/rental"
	"rentable/internal/domain/shared/interval"
)

type AvailabilityHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
}

func (h AvailabilityHandler) FreeIntervals(c *gin.Context) {
	q := availabilityapp.FreeIntervalsQuery{ItemID: c.Param("id"), Now: time.Now().UTC()}
	result, err := queries.Ask[availabilityapp.FreeIntervalsQuery, dto.FreeIntervals](c.Request.Context(), h.Queries, q)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type updateBlockedRequest struct {
	Action string            `json:"action"`
	Edits  []dto.IntervalDTO `json:"edits"`
}

func (h AvailabilityHandler) UpdateBlocked(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	var req updateBlockedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"code": "invalid_request", "message": err.Error()}})
		return
	}
	edits := make([]interval.Interval, len(req.Edits))
	for i, e := range req.Edits {
		edits[i] = interval.Interval{Start: e.Start, End: e.End}
	}
	cmd := availabilityapp.UpdateBlockedDatesCommand{
		ItemID:  c.Param("id"),
		OwnerID: actor,
		Edits:   edits,
		Action:  domainrental.BlockedAction(req.Action),
	}
	result, err := commands.Dispatch[availabilityapp.UpdateBlockedDatesCommand, *availabilityapp.UpdateBlockedDatesResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

var _ AvailabilityHTTP = AvailabilityHandler{}
