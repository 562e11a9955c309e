package rental

import (
	"context"

	"rentable/internal/app/commands"
	"rentable/internal/app/uow"
	domainrental "rentable/internal/domain/rental"
)

const deleteRentalKey = "rental.delete"

// DeleteRentalCommand removes a closed rental record on the owner's request.
// It never touches the item's inventory.
type DeleteRentalCommand struct {
	RentalID string
	OwnerID  string
}

func (c DeleteRentalCommand) Key() string { return deleteRentalKey }

type DeleteRentalResult struct {
	RentalID string `json:"rental_id"`
}

type DeleteRentalHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *DeleteRentalHandler) Handle(ctx context.Context, cmd DeleteRentalCommand) (*DeleteRentalResult, error) {
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
	item, err := unit.Items().ByID(ctx, request.ItemID)
	if err != nil {
		return nil, err
	}
	if item.OwnerID != cmd.OwnerID {
		return nil, domainrental.ErrForbidden
	}
	if err := unit.Rentals().Delete(ctx, request.ID); err != nil {
		return nil, err
	}

	if cleanup != nil {
		if err := unit.Commit(ctx); err != nil {
			return nil, err
		}
		committed = true
	}
	return &DeleteRentalResult{RentalID: cmd.RentalID}, nil
}

var _ commands.Handler[DeleteRentalCommand, *DeleteRentalResult] = (*DeleteRentalHandler)(nil)
