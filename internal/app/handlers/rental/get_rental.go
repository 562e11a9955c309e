package rental

import (
	"context"

	"rentable/internal/app/dto"
	"rentable/internal/app/handlers/support"
	"rentable/internal/app/queries"
	"rentable/internal/app/uow"
	domainrental "rentable/internal/domain/rental"
)

const getRentalKey = "rental.get"

// GetRentalQuery returns a single rental. Visible to its renter and the
// item's owner only.
type GetRentalQuery struct {
	RentalID string
	ActorID  string
}

func (q GetRentalQuery) Key() string { return getRentalKey }

type GetRentalHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *GetRentalHandler) Handle(ctx context.Context, q GetRentalQuery) (dto.RentalView, error) {
	unit, ctx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.RentalView{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	record, err := unit.Rentals().ByID(ctx, domainrental.RentalID(q.RentalID))
	if err != nil {
		return dto.RentalView{}, err
	}
	if record.RenterID != q.ActorID && record.OwnerID != q.ActorID {
		return dto.RentalView{}, domainrental.ErrForbidden
	}
	return dto.MapRental(record), nil
}

var _ queries.Handler[GetRentalQuery, dto.RentalView] = (*GetRentalHandler)(nil)
