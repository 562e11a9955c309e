package rental

import (
	"context"
	"log/slog"
	"time"

	"rentable/internal/app/commands"
	"rentable/internal/app/outbox"
	"rentable/internal/app/policies"
	"rentable/internal/app/uow"
	domainrental "rentable/internal/domain/rental"
)

const terminateRentalKey = "rental.terminate"

type TerminateRentalCommand struct {
	RentalID string
	RenterID string
}

func (c TerminateRentalCommand) Key() string { return terminateRentalKey }

type TerminateRentalResult struct {
	RentalID string    `json:"rental_id"`
	Status   string    `json:"status"`
	EndedAt  time.Time `json:"ended_at"`
}

type TerminateRentalHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Notifier   policies.Notifier
	Logger     *slog.Logger
	Clock      func() time.Time
}

func (h *TerminateRentalHandler) Handle(ctx context.Context, cmd TerminateRentalCommand) (*TerminateRentalResult, error) {
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
	if request.RenterID != cmd.RenterID {
		return nil, domainrental.ErrForbidden
	}

	// The confirmed window must be released by its original bounds; Terminate
	// rewrites the end date to the actual early end.
	reserved := request.Window

	now := h.now()
	if err := request.Terminate(now); err != nil {
		return nil, err
	}

	item, err := unit.Items().ByID(ctx, request.ItemID)
	if err != nil {
		return nil, err
	}
	item.Release(reserved, string(request.ID), now)

	if err := unit.Items().Save(ctx, item); err != nil {
		return nil, err
	}
	if err := unit.Rentals().Save(ctx, request); err != nil {
		return nil, err
	}

	pending := append(request.PendingEvents(), item.PendingEvents()...)
	request.ClearEvents()
	item.ClearEvents()
	if err := outbox.RecordDomainEvents(ctx, h.Outbox, h.encoder(), pending); err != nil {
		return nil, err
	}

	if cleanup != nil {
		if err := unit.Commit(ctx); err != nil {
			return nil, err
		}
		committed = true
	}

	payload := map[string]any{
		"rental_id": cmd.RentalID,
		"item_id":   string(request.ItemID),
		"ended_at":  now,
	}
	notify(ctx, h.Notifier, h.Logger, request.RenterID, "rental.terminated", payload)
	notify(ctx, h.Notifier, h.Logger, request.OwnerID, "rental.terminated", payload)

	return &TerminateRentalResult{RentalID: cmd.RentalID, Status: string(request.Status), EndedAt: now}, nil
}

func (h *TerminateRentalHandler) encoder() outbox.EventEncoder {
	if h.Encoder != nil {
		return h.Encoder
	}
	return outbox.JSONEventEncoder{}
}

func (h *TerminateRentalHandler) now() time.Time {
	if h.Clock != nil {
		return h.Clock().UTC()
	}
	return time.Now().UTC()
}

var _ commands.Handler[TerminateRentalCommand, *TerminateRentalResult] = (*TerminateRentalHandler)(nil)
