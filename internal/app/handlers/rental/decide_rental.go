package rental

import (
	"context"
	"log/slog"
	"time"

	"rentable/internal/app/commands"
	"rentable/internal/app/outbox"
	"rentable/internal/app/policies"
	"rentable/internal/app/schedule"
	"rentable/internal/app/uow"
	domainidentity "rentable/internal/domain/identity"
	domainrental "rentable/internal/domain/rental"
	"rentable/internal/domain/shared/money"
)

const decideRentalKey = "rental.decide"

// TaskKindExpireRental is the deferred-action kind that hard-deletes an
// approved rental once its retention deadline passes.
const TaskKindExpireRental = "rental.expire"

type Decision string

const (
	DecisionApprove Decision = "approve"
	DecisionReject  Decision = "reject"
)

type DecideRentalCommand struct {
	RentalID        string
	OwnerID         string
	Decision        Decision
	RejectionReason string
	// DepositAmount, when positive, overrides the item's pre-reservation
	// deposit for this approval.
	DepositAmount int64
}

func (c DecideRentalCommand) Key() string { return decideRentalKey }

type DecideRentalResult struct {
	RentalID string `json:"rental_id"`
	Status   string `json:"status"`
}

type DecideRentalHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Notifier   policies.Notifier
	Scheduler  schedule.Scheduler
	Currency   string
	Logger     *slog.Logger
	Clock      func() time.Time
}

func (h *DecideRentalHandler) Handle(ctx context.Context, cmd DecideRentalCommand) (*DecideRentalResult, error) {
	if cmd.Decision != DecisionApprove && cmd.Decision != DecisionReject {
		return nil, domainrental.ErrInvalidAction
	}

	unit, ctx, cleanup, err := beginUnit(ctx, h.UoWFactory)
	if err != nil {
		return nil, err
	}
	committed := false
	if cleanup != nil {
		defer func() {
			if !committed {
				cleanup()
			}
		}()
	}

	request, err := unit.Rentals().ByID(ctx, domainrental.RentalID(cmd.RentalID))
	if err != nil {
		return nil, err
	}
	if request.OwnerID != cmd.OwnerID {
		return nil, domainrental.ErrForbidden
	}
	now := h.now()
	if !now.Before(request.Window.Start) {
		return nil, domainrental.ErrRentalStarted
	}

	if cmd.Decision == DecisionReject {
		if err := request.Reject(cmd.RejectionReason, now); err != nil {
			return nil, err
		}
		if err := h.persist(ctx, unit, request, nil, nil); err != nil {
			return nil, err
		}
		if cleanup != nil {
			if err := unit.Commit(ctx); err != nil {
				return nil, err
			}
			committed = true
		}
		h.notifyRenter(ctx, request, "rental.rejected", map[string]any{
			"rental_id": cmd.RentalID,
			"reason":    cmd.RejectionReason,
		})
		return &DecideRentalResult{RentalID: cmd.RentalID, Status: string(request.Status)}, nil
	}

	item, err := unit.Items().ByID(ctx, request.ItemID)
	if err != nil {
		return nil, err
	}

	// Authoritative re-check: the slot may have been taken by another
	// approval since the request was validated.
	if err := item.Reserve(request.Window, string(request.ID), now); err != nil {
		return nil, err
	}

	// The item's pre-reservation deposit is the charge unless the owner
	// overrides the amount on the decision itself.
	deposit := item.PreReservationDeposit
	if cmd.DepositAmount > 0 {
		deposit, err = money.New(cmd.DepositAmount, h.currency())
		if err != nil {
			return nil, err
		}
	}
	if deposit.Currency == "" {
		deposit.Currency = h.currency()
	}
	var renter *domainidentity.User
	if deposit.Amount > 0 {
		renter, err = unit.Users().ByID(ctx, domainidentity.UserID(request.RenterID))
		if err != nil {
			return nil, err
		}
		if err := renter.Debit(deposit); err != nil {
			return nil, err
		}
	}

	if err := request.Approve(deposit, now); err != nil {
		return nil, err
	}
	if err := h.persist(ctx, unit, request, item, renter); err != nil {
		return nil, err
	}
	if cleanup != nil {
		if err := unit.Commit(ctx); err != nil {
			return nil, err
		}
		committed = true
	}

	// Cleanup scheduling is best-effort: the approval stands even if the
	// deferred delete cannot be recorded right now.
	if h.Scheduler != nil {
		if err := h.Scheduler.Schedule(ctx, TaskKindExpireRental, cmd.RentalID, request.ExpiresAt); err != nil && h.Logger != nil {
			h.Logger.Warn("expiry scheduling failed", "rental_id", cmd.RentalID, "run_at", request.ExpiresAt, "error", err)
		}
	}

	h.notifyRenter(ctx, request, "rental.approved", map[string]any{
		"rental_id":  cmd.RentalID,
		"item_id":    string(request.ItemID),
		"expires_at": request.ExpiresAt,
	})
	return &DecideRentalResult{RentalID: cmd.RentalID, Status: string(request.Status)}, nil
}

// persist saves the touched aggregates and drains their events into the
// outbox. Nil aggregates are skipped.
func (h *DecideRentalHandler) persist(ctx context.Context, unit uow.UnitOfWork, request *domainrental.Rental, item *domainrental.Item, renter *domainidentity.User) error {
	if item != nil {
		if err := unit.Items().Save(ctx, item); err != nil {
			return err
		}
	}
	if renter != nil {
		if err := unit.Users().Save(ctx, renter); err != nil {
			return err
		}
	}
	if err := unit.Rentals().Save(ctx, request); err != nil {
		return err
	}
	pending := request.PendingEvents()
	request.ClearEvents()
	if item != nil {
		pending = append(pending, item.PendingEvents()...)
		item.ClearEvents()
	}
	return outbox.RecordDomainEvents(ctx, h.Outbox, h.encoder(), pending)
}

func (h *DecideRentalHandler) encoder() outbox.EventEncoder {
	if h.Encoder != nil {
		return h.Encoder
	}
	return outbox.JSONEventEncoder{}
}

func (h *DecideRentalHandler) currency() string {
	if h.Currency != "" {
		return h.Currency
	}
	return "USD"
}

func (h *DecideRentalHandler) now() time.Time {
	if h.Clock != nil {
		return h.Clock().UTC()
	}
	return time.Now().UTC()
}

func (h *DecideRentalHandler) notifyRenter(ctx context.Context, r *domainrental.Rental, event string, payload any) {
	notify(ctx, h.Notifier, h.Logger, r.RenterID, event, payload)
}

var _ commands.Handler[DecideRentalCommand, *DecideRentalResult] = (*DecideRentalHandler)(nil)
