package availability

import (
	"context"
	"time"

	"rentable/internal/app/dto"
	"rentable/internal/app/handlers/support"
	"rentable/internal/app/queries"
	"rentable/internal/app/uow"
	domainrental "rentable/internal/domain/rental"
)

const freeIntervalsKey = "availability.free_intervals"

type FreeIntervalsQuery struct {
	ItemID string
	Now    time.Time
}

func (q FreeIntervalsQuery) Key() string { return freeIntervalsKey }

type FreeIntervalsHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *FreeIntervalsHandler) Handle(ctx context.Context, q FreeIntervalsQuery) (dto.FreeIntervals, error) {
	unit, ctx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.FreeIntervals{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	item, err := unit.Items().ByID(ctx, domainrental.ItemID(q.ItemID))
	if err != nil {
		return dto.FreeIntervals{}, err
	}

	now := q.Now
	if now.IsZero() {
		now = time.Now()
	}
	free := domainrental.FreeIntervals(item, now)
	return dto.FreeIntervals{
		ItemID: q.ItemID,
		Count:  len(free),
		Items:  dto.MapIntervals(free),
	}, nil
}

var _ queries.Handler[FreeIntervalsQuery, dto.FreeIntervals] = (*FreeIntervalsHandler)(nil)
