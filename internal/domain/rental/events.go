package rental

import (
	"time"

	"rentable/internal/domain/shared/interval"
)

type RentalRequested struct {
	RentalID RentalID
	ItemID   ItemID
	RenterID string
	OwnerID  string
	Window   interval.Interval
	At       time.Time
}

func (e RentalRequested) EventName() string     { return "rental.requested" }
func (e RentalRequested) AggregateID() string   { return string(e.RentalID) }
func (e RentalRequested) OccurredAt() time.Time { return e.At }

type RentalApproved struct {
	RentalID  RentalID
	ItemID    ItemID
	RenterID  string
	Window    interval.Interval
	ExpiresAt time.Time
	At        time.Time
}

func (e RentalApproved) EventName() string     { return "rental.approved" }
func (e RentalApproved) AggregateID() string   { return string(e.RentalID) }
func (e RentalApproved) OccurredAt() time.Time { return e.At }

type RentalRejected struct {
	RentalID RentalID
	RenterID string
	Reason   string
	At       time.Time
}

func (e RentalRejected) EventName() string     { return "rental.rejected" }
func (e RentalRejected) AggregateID() string   { return string(e.RentalID) }
func (e RentalRejected) OccurredAt() time.Time { return e.At }

type RentalActivated struct {
	RentalID RentalID
	At       time.Time
}

func (e RentalActivated) EventName() string     { return "rental.activated" }
func (e RentalActivated) AggregateID() string   { return string(e.RentalID) }
func (e RentalActivated) OccurredAt() time.Time { return e.At }

type RentalTerminated struct {
	RentalID RentalID
	ItemID   ItemID
	RenterID string
	OwnerID  string
	At       time.Time
}

func (e RentalTerminated) EventName() string     { return "rental.terminated" }
func (e RentalTerminated) AggregateID() string   { return string(e.RentalID) }
func (e RentalTerminated) OccurredAt() time.Time { return e.At }

type RentalExpired struct {
	RentalID RentalID
	At       time.Time
}

func (e RentalExpired) EventName() string     { return "rental.expired" }
func (e RentalExpired) AggregateID() string   { return string(e.RentalID) }
func (e RentalExpired) OccurredAt() time.Time { return e.At }

type ItemWindowReserved struct {
	ItemID   ItemID
	RentalID string
	Window   interval.Interval
	At       time.Time
}

func (e ItemWindowReserved) EventName() string     { return "item.window_reserved" }
func (e ItemWindowReserved) AggregateID() string   { return string(e.ItemID) }
func (e ItemWindowReserved) OccurredAt() time.Time { return e.At }

type ItemWindowReleased struct {
	ItemID   ItemID
	RentalID string
	Window   interval.Interval
	At       time.Time
}

func (e ItemWindowReleased) EventName() string     { return "item.window_released" }
func (e ItemWindowReleased) AggregateID() string   { return string(e.ItemID) }
func (e ItemWindowReleased) OccurredAt() time.Time { return e.At }

type ItemBlockedRangesUpdated struct {
	ItemID ItemID
	Count  int
	At     time.Time
}

func (e ItemBlockedRangesUpdated) EventName() string     { return "item.blocked_ranges_updated" }
func (e ItemBlockedRangesUpdated) AggregateID() string   { return string(e.ItemID) }
func (e ItemBlockedRangesUpdated) OccurredAt() time.Time { return e.At }
