package ginserver

import (
	"encoding/csv"
	"net/http"
	"strconv"
	"time"

	gin "github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"rentable/internal/app/commands"
	"rentable/internal/app/dto"
	rentalapp "rentable/internal/app/handlers/rental"
	"rentable/internal/app/queries"
)

type RentalHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
}

type requestRentalRequest struct {
	StartDate     time.Time `json:"start_date"`
	DurationUnits int       `json:"duration_units"`
}

func (h RentalHandler) Request(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	var req requestRentalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"code": "invalid_request", "message": err.Error()}})
		return
	}
	cmd := rentalapp.RequestRentalCommand{
		CommandID:       generateCommandID(),
		ItemID:          c.Param("id"),
		RenterID:        actor,
		StartDate:       req.StartDate,
		DurationUnits:   req.DurationUnits,
		IdempotencyKeyV: c.GetHeader("Idempotency-Key"),
	}
	result, err := commands.Dispatch[rentalapp.RequestRentalCommand, *rentalapp.RequestRentalResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		writeError(c, err)
		return
	}
	status := http.StatusCreated
	if result.AlreadyRequested {
		status = http.StatusOK
	}
	c.JSON(status, result)
}

type decideRentalRequest struct {
	Decision        string `json:"decision"`
	RejectionReason string `json:"rejection_reason"`
	DepositAmount   int64  `json:"deposit_amount"`
}

func (h RentalHandler) Decide(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	var req decideRentalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"code": "invalid_request", "message": err.Error()}})
		return
	}
	cmd := rentalapp.DecideRentalCommand{
		RentalID:        c.Param("id"),
		OwnerID:         actor,
		Decision:        rentalapp.Decision(req.Decision),
		RejectionReason: req.RejectionReason,
		DepositAmount:   req.DepositAmount,
	}
	result, err := commands.Dispatch[rentalapp.DecideRentalCommand, *rentalapp.DecideRentalResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h RentalHandler) Terminate(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	cmd := rentalapp.TerminateRentalCommand{RentalID: c.Param("id"), RenterID: actor}
	result, err := commands.Dispatch[rentalapp.TerminateRentalCommand, *rentalapp.TerminateRentalResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h RentalHandler) Get(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	q := rentalapp.GetRentalQuery{RentalID: c.Param("id"), ActorID: actor}
	view, err := queries.Ask[rentalapp.GetRentalQuery, dto.RentalView](c.Request.Context(), h.Queries, q)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h RentalHandler) Delete(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	cmd := rentalapp.DeleteRentalCommand{RentalID: c.Param("id"), OwnerID: actor}
	if _, err := commands.Dispatch[rentalapp.DeleteRentalCommand, *rentalapp.DeleteRentalResult](c.Request.Context(), h.Commands, cmd); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Export streams the item's rental history as CSV.
func (h RentalHandler) Export(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	q := rentalapp.ExportRentalsQuery{ItemID: c.Param("id"), OwnerID: actor}
	rows, err := queries.Ask[rentalapp.ExportRentalsQuery, []dto.RentalExportRow](c.Request.Context(), h.Queries, q)
	if err != nil {
		writeError(c, err)
		return
	}
	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", `attachment; filename="rentals.csv"`)
	w := csv.NewWriter(c.Writer)
	_ = w.Write([]string{"renter_name", "renter_email", "start_date", "end_date", "status", "platform_fee", "expires_at", "created_at"})
	for _, row := range rows {
		expires := ""
		if !row.ExpiresAt.IsZero() {
			expires = row.ExpiresAt.Format(time.RFC3339)
		}
		_ = w.Write([]string{
			row.RenterName,
			row.RenterEmail,
			row.StartDate.Format(time.RFC3339),
			row.EndDate.Format(time.RFC3339),
			row.Status,
			strconv.FormatInt(row.PlatformFee, 10),
			expires,
			row.CreatedAt.Format(time.RFC3339),
		})
	}
	w.Flush()
}

func generateCommandID() string {
	return uuid.NewString()
}

var _ RentalHTTP = RentalHandler{}
