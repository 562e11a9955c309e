package availability

import (
	"context"
	"time"

	"rentable/internal/app/commands"
	"rentable/internal/app/dto"
	"rentable/internal/app/outbox"
	"rentable/internal/app/uow"
	domainrental "rentable/internal/domain/rental"
	"rentable/internal/domain/shared/interval"
)

const updateBlockedKey = "availability.update_blocked"

type UpdateBlockedDatesCommand struct {
	ItemID  string
	OwnerID string
	Edits   []interval.Interval
	Action  domainrental.BlockedAction
}

func (c UpdateBlockedDatesCommand) Key() string { return updateBlockedKey }

type UpdateBlockedDatesResult struct {
	Blocked dto.BlockedRanges `json:"blocked"`
	Changed bool              `json:"changed"`
}

type UpdateBlockedDatesHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Clock      func() time.Time
}

func (h *UpdateBlockedDatesHandler) Handle(ctx context.Context, cmd UpdateBlockedDatesCommand) (*UpdateBlockedDatesResult, error) {
	unit, ok := uow.FromContext(ctx)
	managed := false
	committed := false
	if !ok {
		if h.UoWFactory == nil {
			return nil, uow.ErrUnitOfWorkMissing
		}
		var err error
		unit, err = h.UoWFactory.Begin(ctx, uow.TxOptions{})
		if err != nil {
			return nil, err
		}
		ctx = uow.ContextWithUnitOfWork(ctx, unit)
		managed = true
		defer func() {
			if !committed {
				_ = unit.Rollback(ctx)
			}
		}()
	}

	item, err := unit.Items().ByID(ctx, domainrental.ItemID(cmd.ItemID))
	if err != nil {
		return nil, err
	}
	if item.OwnerID != cmd.OwnerID {
		return nil, domainrental.ErrForbidden
	}

	next, err := domainrental.ApplyBlockedEdits(item.BlockedRanges, cmd.Edits, cmd.Action)
	if err != nil {
		return nil, err
	}

	// No-op edits skip the write entirely.
	if domainrental.BlockedSetsEqual(item.BlockedRanges, next) {
		return &UpdateBlockedDatesResult{
			Blocked: dto.BlockedRanges{ItemID: cmd.ItemID, Items: dto.MapIntervals(next)},
		}, nil
	}

	now := time.Now()
	if h.Clock != nil {
		now = h.Clock()
	}
	item.SetBlockedRanges(next, now)
	if err := unit.Items().Save(ctx, item); err != nil {
		return nil, err
	}

	pending := item.PendingEvents()
	item.ClearEvents()
	if err := outbox.RecordDomainEvents(ctx, h.Outbox, h.encoder(), pending); err != nil {
		return nil, err
	}

	if managed {
		if err := unit.Commit(ctx); err != nil {
			return nil, err
		}
		committed = true
	}

	return &UpdateBlockedDatesResult{
		Blocked: dto.BlockedRanges{ItemID: cmd.ItemID, Items: dto.MapIntervals(next)},
		Changed: true,
	}, nil
}

func (h *UpdateBlockedDatesHandler) encoder() outbox.EventEncoder {
	if h.Encoder != nil {
		return h.Encoder
	}
	return outbox.JSONEventEncoder{}
}

var _ commands.Handler[UpdateBlockedDatesCommand, *UpdateBlockedDatesResult] = (*UpdateBlockedDatesHandler)(nil)
