package rental

import (
	"context"
	"log/slog"
	"time"

	"rentable/internal/app/commands"
	"rentable/internal/app/outbox"
	"rentable/internal/app/uow"
)

const activateRentalsKey = "rental.activate_due"

// ActivateDueRentalsCommand is a periodic sweep that moves approved rentals
// whose window has begun into the active state. Time-driven, no caller.
type ActivateDueRentalsCommand struct {
	Now time.Time
}

func (c ActivateDueRentalsCommand) Key() string { return activateRentalsKey }

type ActivateDueRentalsResult struct {
	Activated int `json:"activated"`
}

type ActivateDueRentalsHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Logger     *slog.Logger
}

func (h *ActivateDueRentalsHandler) Handle(ctx context.Context, cmd ActivateDueRentalsCommand) (*ActivateDueRentalsResult, error) {
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

	now := cmd.Now
	if now.IsZero() {
		now = time.Now()
	}
	now = now.UTC()

	due, err := unit.Rentals().ListApprovedStartingBy(ctx, now)
	if err != nil {
		return nil, err
	}

	activated := 0
	for _, request := range due {
		if err := request.Activate(now); err != nil {
			continue
		}
		if err := unit.Rentals().Save(ctx, request); err != nil {
			return nil, err
		}
		pending := request.PendingEvents()
		request.ClearEvents()
		if err := outbox.RecordDomainEvents(ctx, h.Outbox, h.encoder(), pending); err != nil {
			return nil, err
		}
		activated++
	}

	if cleanup != nil {
		if err := unit.Commit(ctx); err != nil {
			return nil, err
		}
		committed = true
	}
	if activated > 0 && h.Logger != nil {
		h.Logger.Info("due rentals activated", "count", activated)
	}
	return &ActivateDueRentalsResult{Activated: activated}, nil
}

func (h *ActivateDueRentalsHandler) encoder() outbox.EventEncoder {
	if h.Encoder != nil {
		return h.Encoder
	}
	return outbox.JSONEventEncoder{}
}

var _ commands.Handler[ActivateDueRentalsCommand, *ActivateDueRentalsResult] = (*ActivateDueRentalsHandler)(nil)
