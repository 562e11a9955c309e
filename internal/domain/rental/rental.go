package rental

import (
	"context"
	"errors"
	"time"

	"rentable/internal/domain/shared/events"
	"rentable/internal/domain/shared/interval"
	"rentable/internal/domain/shared/money"
)

type RentalID string

type Status string

const (
	StatusPendingApproval Status = "PENDING_APPROVAL"
	StatusApproved        Status = "APPROVED"
	StatusRejected        Status = "REJECTED"
	StatusActive          Status = "ACTIVE"
	StatusTerminated      Status = "TERMINATED"
	StatusExpired         Status = "EXPIRED"
)

// retentionAfterEnd is how long a closed rental record is kept before the
// scheduled hard delete.
const retentionAfterEnd = 6 // months

// Rental is a single booking request/contract moving through the approval
// state machine. OwnerID is denormalized from the item at creation time.
type Rental struct {
	ID              RentalID
	ItemID          ItemID
	RenterID        string
	OwnerID         string
	Window          interval.Interval
	Status          Status
	Deposit         money.Money
	PlatformFee     money.Money
	RejectionReason string
	ExpiresAt       time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
	Version         int64
	events.EventRecorder
}

type Repository interface {
	ByID(ctx context.Context, id RentalID) (*Rental, error)
	PendingByItemAndRenter(ctx context.Context, itemID ItemID, renterID string) (*Rental, error)
	ListByItem(ctx context.Context, itemID ItemID) ([]*Rental, error)
	ListApprovedStartingBy(ctx context.Context, now time.Time) ([]*Rental, error)
	Save(ctx context.Context, r *Rental) error
	Delete(ctx context.Context, id RentalID) error
}

type CreateParams struct {
	ID          RentalID
	ItemID      ItemID
	RenterID    string
	OwnerID     string
	Window      interval.Interval
	PlatformFee money.Money
	Now         time.Time
}

func NewRental(params CreateParams) (*Rental, error) {
	if params.RenterID == "" {
		return nil, errors.New("rental: renter id required")
	}
	if params.RenterID == params.OwnerID {
		return nil, ErrSelfRental
	}
	if err := params.Window.Validate(); err != nil {
		return nil, err
	}
	now := params.Now.UTC()
	r := &Rental{
		ID:          params.ID,
		ItemID:      params.ItemID,
		RenterID:    params.RenterID,
		OwnerID:     params.OwnerID,
		Window:      params.Window,
		Status:      StatusPendingApproval,
		PlatformFee: params.PlatformFee,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	r.Record(RentalRequested{RentalID: r.ID, ItemID: r.ItemID, RenterID: r.RenterID, OwnerID: r.OwnerID, Window: r.Window, At: now})
	return r, nil
}

// Approve moves a pending rental to Approved and stamps the retention
// deadline used by the scheduled cleanup.
func (r *Rental) Approve(deposit money.Money, now time.Time) error {
	if r.Status != StatusPendingApproval {
		return ErrInvalidState
	}
	r.Status = StatusApproved
	r.Deposit = deposit
	r.ExpiresAt = r.Window.End.AddDate(0, retentionAfterEnd, 0)
	r.UpdatedAt = now.UTC()
	r.Record(RentalApproved{RentalID: r.ID, ItemID: r.ItemID, RenterID: r.RenterID, Window: r.Window, ExpiresAt: r.ExpiresAt, At: r.UpdatedAt})
	return nil
}

// Reject is terminal; the record stays as history until deleted.
func (r *Rental) Reject(reason string, now time.Time) error {
	if r.Status != StatusPendingApproval {
		return ErrInvalidState
	}
	r.Status = StatusRejected
	r.RejectionReason = reason
	r.UpdatedAt = now.UTC()
	r.Record(RentalRejected{RentalID: r.ID, RenterID: r.RenterID, Reason: reason, At: r.UpdatedAt})
	return nil
}

// Activate marks an approved rental whose window has begun. Time-driven, not
// caller-driven.
func (r *Rental) Activate(now time.Time) error {
	if r.Status != StatusApproved {
		return ErrInvalidState
	}
	if now.Before(r.Window.Start) {
		return ErrInvalidState
	}
	r.Status = StatusActive
	r.UpdatedAt = now.UTC()
	r.Record(RentalActivated{RentalID: r.ID, At: r.UpdatedAt})
	return nil
}

// Terminate ends an active rental early, recording the actual end time.
func (r *Rental) Terminate(now time.Time) error {
	if r.Status != StatusActive {
		return ErrInvalidState
	}
	now = now.UTC()
	r.Status = StatusTerminated
	r.Window.End = now
	r.UpdatedAt = now
	r.Record(RentalTerminated{RentalID: r.ID, ItemID: r.ItemID, RenterID: r.RenterID, OwnerID: r.OwnerID, At: now})
	return nil
}
