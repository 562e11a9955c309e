package rental

import (
	"context"
	"time"

	"rentable/internal/domain/shared/events"
	"rentable/internal/domain/shared/interval"
	"rentable/internal/domain/shared/money"
)

type ItemID string

// Item is a rentable asset. It is the single source of truth for blocking
// and booking intervals; the workflow mutates them only through the methods
// below and persists the whole aggregate with a version check.
type Item struct {
	ID                    ItemID
	OwnerID               string
	Name                  string
	Cadence               Cadence
	PreReservationDeposit money.Money
	DeclaredAvailability  []interval.Interval
	BlockedRanges         []interval.Interval
	ConfirmedBookings     []interval.Interval
	CreatedAt             time.Time
	UpdatedAt             time.Time
	Version               int64
	events.EventRecorder
}

type ItemRepository interface {
	ByID(ctx context.Context, id ItemID) (*Item, error)
	Save(ctx context.Context, item *Item) error
}

// CanReserve reports whether the window conflicts with neither a confirmed
// booking nor an owner block.
func (i *Item) CanReserve(w interval.Interval) bool {
	for _, booked := range i.ConfirmedBookings {
		if booked.Overlaps(w) {
			return false
		}
	}
	for _, blocked := range i.BlockedRanges {
		if blocked.Overlaps(w) {
			return false
		}
	}
	return true
}

// Reserve appends the window to the confirmed set after re-checking the
// overlap predicate against confirmed bookings. This is the authoritative
// second check at approval time.
func (i *Item) Reserve(w interval.Interval, rentalID string, now time.Time) error {
	for _, booked := range i.ConfirmedBookings {
		if booked.Overlaps(w) {
			return ErrSlotUnavailable
		}
	}
	i.ConfirmedBookings = append(i.ConfirmedBookings, w)
	i.UpdatedAt = now.UTC()
	i.Record(ItemWindowReserved{ItemID: i.ID, RentalID: rentalID, Window: w, At: i.UpdatedAt})
	return nil
}

// Release removes the exact-match window from the confirmed set. Releasing a
// window that is already gone is a no-op, so termination stays idempotent.
func (i *Item) Release(w interval.Interval, rentalID string, now time.Time) {
	for idx, booked := range i.ConfirmedBookings {
		if booked.Equal(w) {
			i.ConfirmedBookings = append(i.ConfirmedBookings[:idx], i.ConfirmedBookings[idx+1:]...)
			i.UpdatedAt = now.UTC()
			i.Record(ItemWindowReleased{ItemID: i.ID, RentalID: rentalID, Window: w, At: i.UpdatedAt})
			return
		}
	}
}

// SetBlockedRanges replaces the owner-controlled blocked set.
func (i *Item) SetBlockedRanges(next []interval.Interval, now time.Time) {
	i.BlockedRanges = next
	i.UpdatedAt = now.UTC()
	i.Record(ItemBlockedRangesUpdated{ItemID: i.ID, Count: len(next), At: i.UpdatedAt})
}
