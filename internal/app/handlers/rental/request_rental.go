package rental

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"rentable/internal/app/commands"
	"rentable/internal/app/middleware"
	"rentable/internal/app/outbox"
	"rentable/internal/app/policies"
	"rentable/internal/app/uow"
	domainrental "rentable/internal/domain/rental"
	"rentable/internal/domain/shared/interval"
	"rentable/internal/domain/shared/money"
)

const requestRentalKey = "rental.request"

// platformFeeAmount is the flat fee recorded on every rental request.
const platformFeeAmount = 1

type RequestRentalCommand struct {
	CommandID       string
	ItemID          string
	RenterID        string
	StartDate       time.Time
	DurationUnits   int
	IdempotencyKeyV string
}

func (c RequestRentalCommand) Key() string { return requestRentalKey }

func (c RequestRentalCommand) IdempotencyKey() string { return c.IdempotencyKeyV }

func (c RequestRentalCommand) ResultPrototype() any { return &RequestRentalResult{} }

type RequestRentalResult struct {
	RentalID         string `json:"rental_id"`
	AlreadyRequested bool   `json:"already_requested"`
}

type RequestRentalHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Notifier   policies.Notifier
	Currency   string
	Logger     *slog.Logger
	Clock      func() time.Time
}

var ErrInvalidRequest = errors.New("rental: start date and a positive duration are required")

func (h *RequestRentalHandler) Handle(ctx context.Context, cmd RequestRentalCommand) (*RequestRentalResult, error) {
	if cmd.StartDate.IsZero() || cmd.DurationUnits <= 0 {
		return nil, ErrInvalidRequest
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

	item, err := unit.Items().ByID(ctx, domainrental.ItemID(cmd.ItemID))
	if err != nil {
		return nil, err
	}
	if item.OwnerID == cmd.RenterID {
		return nil, domainrental.ErrSelfRental
	}

	// A second request while one is pending is resolved by returning the
	// existing record and reminding the owner, not by raising an error.
	if existing, err := unit.Rentals().PendingByItemAndRenter(ctx, item.ID, cmd.RenterID); err == nil && existing != nil {
		h.notify(ctx, item.OwnerID, "rental.request_reminder", map[string]any{
			"rental_id": string(existing.ID),
			"item_id":   string(item.ID),
			"renter_id": cmd.RenterID,
		})
		return &RequestRentalResult{RentalID: string(existing.ID), AlreadyRequested: true}, nil
	} else if err != nil && !errors.Is(err, domainrental.ErrRentalNotFound) {
		return nil, err
	}

	end, err := item.Cadence.EndDateFor(cmd.DurationUnits, cmd.StartDate)
	if err != nil {
		return nil, err
	}
	window, err := interval.New(cmd.StartDate, end)
	if err != nil {
		return nil, err
	}
	if !item.CanReserve(window) {
		return nil, domainrental.ErrSlotUnavailable
	}

	now := h.now()
	request, err := domainrental.NewRental(domainrental.CreateParams{
		ID:          domainrental.RentalID(cmd.CommandID),
		ItemID:      item.ID,
		RenterID:    cmd.RenterID,
		OwnerID:     item.OwnerID,
		Window:      window,
		PlatformFee: money.Must(platformFeeAmount, h.currency()),
		Now:         now,
	})
	if err != nil {
		return nil, err
	}

	if err := unit.Rentals().Save(ctx, request); err != nil {
		return nil, err
	}

	pending := request.PendingEvents()
	request.ClearEvents()
	if err := outbox.RecordDomainEvents(ctx, h.Outbox, h.encoder(), pending); err != nil {
		return nil, err
	}

	if cleanup != nil {
		if err := unit.Commit(ctx); err != nil {
			return nil, err
		}
		committed = true
	}

	h.notify(ctx, item.OwnerID, "rental.requested", map[string]any{
		"rental_id": string(request.ID),
		"item_id":   string(item.ID),
		"renter_id": cmd.RenterID,
		"start":     window.Start,
		"end":       window.End,
	})

	return &RequestRentalResult{RentalID: string(request.ID)}, nil
}

func (h *RequestRentalHandler) encoder() outbox.EventEncoder {
	if h.Encoder != nil {
		return h.Encoder
	}
	return outbox.JSONEventEncoder{}
}

func (h *RequestRentalHandler) currency() string {
	if h.Currency != "" {
		return h.Currency
	}
	return "USD"
}

func (h *RequestRentalHandler) now() time.Time {
	if h.Clock != nil {
		return h.Clock().UTC()
	}
	return time.Now().UTC()
}

func (h *RequestRentalHandler) notify(ctx context.Context, to, event string, payload any) {
	notify(ctx, h.Notifier, h.Logger, to, event, payload)
}

var _ commands.Handler[RequestRentalCommand, *RequestRentalResult] = (*RequestRentalHandler)(nil)
var _ middleware.IdempotentCommand = (*RequestRentalCommand)(nil)
