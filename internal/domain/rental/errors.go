package rental

import "errors"

var (
	ErrItemNotFound    = errors.New("rental: item not found")
	ErrRentalNotFound  = errors.New("rental: not found")
	ErrSelfRental      = errors.New("rental: owner cannot rent own item")
	ErrForbidden       = errors.New("rental: actor is not allowed to perform this action")
	ErrSlotUnavailable = errors.New("rental: item is unavailable for the requested period")
	ErrRentalStarted   = errors.New("rental: cannot decide after the rental start date")
	ErrInvalidState    = errors.New("rental: invalid state transition")
	ErrInvalidAction   = errors.New("rental: unknown action")
	ErrUnknownCadence  = errors.New("rental: unknown cadence")
)
