package rental

import (
	"context"
	"errors"

	"rentable/internal/app/dto"
	"rentable/internal/app/handlers/support"
	"rentable/internal/app/queries"
	"rentable/internal/app/uow"
	domainidentity "rentable/internal/domain/identity"
	domainrental "rentable/internal/domain/rental"
)

const exportRentalsKey = "rental.export"

// ExportRentalsQuery projects an item's rental history into flat rows for
// external reporting tooling. Owner-only.
type ExportRentalsQuery struct {
	ItemID  string
	OwnerID string
}

func (q ExportRentalsQuery) Key() string { return exportRentalsKey }

type ExportRentalsHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *ExportRentalsHandler) Handle(ctx context.Context, q ExportRentalsQuery) ([]dto.RentalExportRow, error) {
	unit, ctx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return nil, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	item, err := unit.Items().ByID(ctx, domainrental.ItemID(q.ItemID))
	if err != nil {
		return nil, err
	}
	if item.OwnerID != q.OwnerID {
		return nil, domainrental.ErrForbidden
	}

	records, err := unit.Rentals().ListByItem(ctx, item.ID)
	if err != nil {
		return nil, err
	}

	rows := make([]dto.RentalExportRow, 0, len(records))
	for _, record := range records {
		var renter *domainidentity.User
		renter, err = unit.Users().ByID(ctx, domainidentity.UserID(record.RenterID))
		if err != nil && !errors.Is(err, domainidentity.ErrNotFound) {
			return nil, err
		}
		rows = append(rows, dto.MapExportRow(record, renter))
	}
	return rows, nil
}

var _ queries.Handler[ExportRentalsQuery, []dto.RentalExportRow] = (*ExportRentalsHandler)(nil)
