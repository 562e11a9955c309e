package rental

import (
	"context"
	"errors"
	"log/slog"

	"rentable/internal/app/commands"
	"rentable/internal/app/uow"
	domainrental "rentable/internal/domain/rental"
)

const expireRentalKey = "rental.expire"

// ExpireRentalCommand is dispatched by the deferred-task runner, not by a
// caller. It permanently deletes the rental record: history cleanup, not a
// business-state transition.
type ExpireRentalCommand struct {
	RentalID string
}

func (c ExpireRentalCommand) Key() string { return expireRentalKey }

type ExpireRentalResult struct {
	RentalID string `json:"rental_id"`
	Deleted  bool   `json:"deleted"`
}

type ExpireRentalHandler struct {
	UoWFactory uow.UoWFactory
	Logger     *slog.Logger
}

func (h *ExpireRentalHandler) Handle(ctx context.Context, cmd ExpireRentalCommand) (*ExpireRentalResult, error) {
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

	id := domainrental.RentalID(cmd.RentalID)
	if _, err := unit.Rentals().ByID(ctx, id); err != nil {
		// Deleting an already-deleted rental is a no-op, keeping the task
		// runner free to retry.
		if errors.Is(err, domainrental.ErrRentalNotFound) {
			return &ExpireRentalResult{RentalID: cmd.RentalID}, nil
		}
		return nil, err
	}
	if err := unit.Rentals().Delete(ctx, id); err != nil {
		return nil, err
	}

	if cleanup != nil {
		if err := unit.Commit(ctx); err != nil {
			return nil, err
		}
		committed = true
	}
	if h.Logger != nil {
		h.Logger.Info("expired rental record removed", "rental_id", cmd.RentalID)
	}
	return &ExpireRentalResult{RentalID: cmd.RentalID, Deleted: true}, nil
}

var _ commands.Handler[ExpireRentalCommand, *ExpireRentalResult] = (*ExpireRentalHandler)(nil)
