package ginserver

import (
	"errors"
	"net/http"

	gin "github.com/gin-gonic/gin"

	rentalhandlers "rentable/internal/app/handlers/rental"
	"rentable/internal/domain/identity"
	domainrental "rentable/internal/domain/rental"
	"rentable/internal/domain/shared/interval"
	mongostore "rentable/internal/infra/db/mongo"
	"rentable/internal/infra/storage/memory"
)

// writeError maps sentinel errors to stable machine codes and HTTP statuses.
// Unmapped errors are hidden behind a generic 500 so internals never leak.
func writeError(c *gin.Context, err error) {
	code, status := classify(err)
	body := gin.H{"code": code, "message": err.Error()}
	if status == http.StatusInternalServerError {
		body["message"] = "internal error"
	}
	c.JSON(status, gin.H{"error": body})
}

func classify(err error) (string, int) {
	switch {
	case errors.Is(err, domainrental.ErrItemNotFound),
		errors.Is(err, domainrental.ErrRentalNotFound),
		errors.Is(err, identity.ErrNotFound):
		return "not_found", http.StatusNotFound
	case errors.Is(err, domainrental.ErrForbidden):
		return "forbidden", http.StatusForbidden
	case errors.Is(err, domainrental.ErrSlotUnavailable):
		return "slot_unavailable", http.StatusConflict
	case errors.Is(err, domainrental.ErrRentalStarted):
		return "already_started", http.StatusConflict
	case errors.Is(err, identity.ErrInsufficientFunds):
		return "insufficient_funds", http.StatusPaymentRequired
	case errors.Is(err, domainrental.ErrInvalidState):
		return "invalid_state", http.StatusConflict
	case errors.Is(err, memory.ErrVersionConflict),
		errors.Is(err, mongostore.ErrConcurrentUpdate):
		return "version_conflict", http.StatusConflict
	case errors.Is(err, domainrental.ErrInvalidAction),
		errors.Is(err, domainrental.ErrUnknownCadence),
		errors.Is(err, domainrental.ErrInvalidBlockedEdit),
		errors.Is(err, interval.ErrInvalidInterval):
		return "invalid_argument", http.StatusBadRequest
	case errors.Is(err, rentalhandlers.ErrInvalidRequest),
		errors.Is(err, domainrental.ErrSelfRental):
		return "invalid_request", http.StatusBadRequest
	default:
		return "internal", http.StatusInternalServerError
	}
}
