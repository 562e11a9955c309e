package rental

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rentable/internal/app/schedule"
	"rentable/internal/domain/identity"
	domainrental "rentable/internal/domain/rental"
	"rentable/internal/domain/shared/interval"
	"rentable/internal/domain/shared/money"
	"rentable/internal/infra/storage/memory"
)

var anchor = time.Date(2025, time.March, 1, 10, 0, 0, 0, time.UTC)

type sentNote struct {
	To    string
	Event string
}

type stubNotifier struct {
	sent []sentNote
}

func (s *stubNotifier) Send(ctx context.Context, to string, event string, payload any) error {
	s.sent = append(s.sent, sentNote{To: to, Event: event})
	return nil
}

func (s *stubNotifier) events() []string {
	out := make([]string, len(s.sent))
	for i, n := range s.sent {
		out[i] = n.Event
	}
	return out
}

type testEnv struct {
	items   *memory.ItemRepository
	rentals *memory.RentalRepository
	users   *memory.UserRepository
	factory memory.Factory
	outbox  *memory.Outbox
	tasks   *memory.TaskStore
	notes   *stubNotifier
	clock   time.Time
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	e := &testEnv{
		items:   memory.NewItemRepository(),
		rentals: memory.NewRentalRepository(),
		users:   memory.NewUserRepository(),
		outbox:  memory.NewOutbox(),
		tasks:   memory.NewTaskStore(),
		notes:   &stubNotifier{},
		clock:   anchor,
	}
	e.factory = memory.Factory{ItemsRepo: e.items, RentalsRepo: e.rentals, UsersRepo: e.users}

	ctx := context.Background()
	require.NoError(t, e.users.Save(ctx, &identity.User{
		ID:      "owner-1",
		Name:    "Olga Ownerova",
		Email:   "olga@example.com",
		Balance: money.Must(0, "USD"),
	}))
	require.NoError(t, e.users.Save(ctx, &identity.User{
		ID:      "renter-1",
		Name:    "Rita Renter",
		Email:   "rita@example.com",
		Balance: money.Must(100, "USD"),
	}))
	require.NoError(t, e.items.Save(ctx, &domainrental.Item{
		ID:                    "item-1",
		OwnerID:               "owner-1",
		Name:                  "Workshop space",
		Cadence:               domainrental.CadenceMonthly,
		PreReservationDeposit: money.Must(40, "USD"),
		CreatedAt:             anchor,
		UpdatedAt:             anchor,
	}))
	return e
}

func (e *testEnv) now() time.Time { return e.clock }

func (e *testEnv) requestHandler() *RequestRentalHandler {
	return &RequestRentalHandler{UoWFactory: e.factory, Outbox: e.outbox, Notifier: e.notes, Clock: e.now}
}

func (e *testEnv) decideHandler() *DecideRentalHandler {
	return &DecideRentalHandler{
		UoWFactory: e.factory,
		Outbox:     e.outbox,
		Notifier:   e.notes,
		Scheduler:  schedule.StoreScheduler{Store: e.tasks},
		Clock:      e.now,
	}
}

func (e *testEnv) terminateHandler() *TerminateRentalHandler {
	return &TerminateRentalHandler{UoWFactory: e.factory, Outbox: e.outbox, Notifier: e.notes, Clock: e.now}
}

func (e *testEnv) request(t *testing.T, id string, renterID string, start time.Time, units int) *RequestRentalResult {
	t.Helper()
	result, err := e.requestHandler().Handle(context.Background(), RequestRentalCommand{
		CommandID:     id,
		ItemID:        "item-1",
		RenterID:      renterID,
		StartDate:     start,
		DurationUnits: units,
	})
	require.NoError(t, err)
	return result
}

func TestRequestRentalCreatesPendingRecord(t *testing.T) {
	e := newTestEnv(t)
	start := anchor.AddDate(0, 1, 0)

	result := e.request(t, "rent-1", "renter-1", start, 2)

	assert.Equal(t, "rent-1", result.RentalID)
	assert.False(t, result.AlreadyRequested)

	stored, err := e.rentals.ByID(context.Background(), "rent-1")
	require.NoError(t, err)
	assert.Equal(t, domainrental.StatusPendingApproval, stored.Status)
	assert.Equal(t, start, stored.Window.Start)
	assert.Equal(t, start.AddDate(0, 2, 0), stored.Window.End)
	assert.Equal(t, int64(1), stored.PlatformFee.Amount)
	assert.Equal(t, []sentNote{{To: "owner-1", Event: "rental.requested"}}, e.notes.sent)
}

func TestRequestRentalRejectsOwnSelfBooking(t *testing.T) {
	e := newTestEnv(t)

	_, err := e.requestHandler().Handle(context.Background(), RequestRentalCommand{
		CommandID:     "rent-1",
		ItemID:        "item-1",
		RenterID:      "owner-1",
		StartDate:     anchor.AddDate(0, 1, 0),
		DurationUnits: 1,
	})
	require.ErrorIs(t, err, domainrental.ErrSelfRental)
}

func TestRequestRentalValidatesInput(t *testing.T) {
	e := newTestEnv(t)

	_, err := e.requestHandler().Handle(context.Background(), RequestRentalCommand{
		CommandID: "rent-1",
		ItemID:    "item-1",
		RenterID:  "renter-1",
		StartDate: anchor.AddDate(0, 1, 0),
	})
	require.ErrorIs(t, err, ErrInvalidRequest)
}

func TestRequestRentalDuplicatePendingReturnsExisting(t *testing.T) {
	e := newTestEnv(t)
	start := anchor.AddDate(0, 1, 0)
	e.request(t, "rent-1", "renter-1", start, 1)

	result := e.request(t, "rent-2", "renter-1", start.AddDate(0, 3, 0), 1)

	assert.Equal(t, "rent-1", result.RentalID)
	assert.True(t, result.AlreadyRequested)
	assert.Contains(t, e.notes.events(), "rental.request_reminder")

	_, err := e.rentals.ByID(context.Background(), "rent-2")
	assert.ErrorIs(t, err, domainrental.ErrRentalNotFound)
}

func TestRequestRentalRefusesBlockedWindow(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	start := anchor.AddDate(0, 1, 0)

	item, err := e.items.ByID(ctx, "item-1")
	require.NoError(t, err)
	item.BlockedRanges = []interval.Interval{{Start: start, End: start.AddDate(0, 1, 0)}}
	require.NoError(t, e.items.Save(ctx, item))

	_, err = e.requestHandler().Handle(ctx, RequestRentalCommand{
		CommandID:     "rent-1",
		ItemID:        "item-1",
		RenterID:      "renter-1",
		StartDate:     start,
		DurationUnits: 1,
	})
	require.ErrorIs(t, err, domainrental.ErrSlotUnavailable)
}

func TestDecideRentalGuards(t *testing.T) {
	e := newTestEnv(t)
	start := anchor.AddDate(0, 1, 0)
	e.request(t, "rent-1", "renter-1", start, 1)

	_, err := e.decideHandler().Handle(context.Background(), DecideRentalCommand{
		RentalID: "rent-1", OwnerID: "owner-1", Decision: "maybe",
	})
	require.ErrorIs(t, err, domainrental.ErrInvalidAction)

	_, err = e.decideHandler().Handle(context.Background(), DecideRentalCommand{
		RentalID: "rent-1", OwnerID: "intruder", Decision: DecisionApprove,
	})
	require.ErrorIs(t, err, domainrental.ErrForbidden)

	e.clock = start
	_, err = e.decideHandler().Handle(context.Background(), DecideRentalCommand{
		RentalID: "rent-1", OwnerID: "owner-1", Decision: DecisionApprove,
	})
	require.ErrorIs(t, err, domainrental.ErrRentalStarted)
}

func TestDecideRentalReject(t *testing.T) {
	e := newTestEnv(t)
	start := anchor.AddDate(0, 1, 0)
	e.request(t, "rent-1", "renter-1", start, 1)

	result, err := e.decideHandler().Handle(context.Background(), DecideRentalCommand{
		RentalID:        "rent-1",
		OwnerID:         "owner-1",
		Decision:        DecisionReject,
		RejectionReason: "maintenance window",
	})
	require.NoError(t, err)
	assert.Equal(t, string(domainrental.StatusRejected), result.Status)

	stored, err := e.rentals.ByID(context.Background(), "rent-1")
	require.NoError(t, err)
	assert.Equal(t, "maintenance window", stored.RejectionReason)
	assert.Contains(t, e.notes.events(), "rental.rejected")
}

func TestDecideRentalApproveReservesDebitsAndSchedules(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	start := anchor.AddDate(0, 1, 0)
	e.request(t, "rent-1", "renter-1", start, 1)

	result, err := e.decideHandler().Handle(ctx, DecideRentalCommand{
		RentalID:      "rent-1",
		OwnerID:       "owner-1",
		Decision:      DecisionApprove,
		DepositAmount: 25,
	})
	require.NoError(t, err)
	assert.Equal(t, string(domainrental.StatusApproved), result.Status)

	stored, err := e.rentals.ByID(ctx, "rent-1")
	require.NoError(t, err)
	assert.Equal(t, stored.Window.End.AddDate(0, 6, 0), stored.ExpiresAt)
	assert.Equal(t, int64(25), stored.Deposit.Amount)

	item, err := e.items.ByID(ctx, "item-1")
	require.NoError(t, err)
	require.Len(t, item.ConfirmedBookings, 1)
	assert.True(t, item.ConfirmedBookings[0].Equal(stored.Window))

	renter, err := e.users.ByID(ctx, "renter-1")
	require.NoError(t, err)
	assert.Equal(t, int64(75), renter.Balance.Amount)

	due, err := e.tasks.Due(ctx, stored.ExpiresAt, 10)
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, TaskKindExpireRental, due[0].Kind)
	assert.Equal(t, "rent-1", due[0].SubjectID)
	assert.Equal(t, stored.ExpiresAt, due[0].RunAt)

	assert.Contains(t, e.notes.events(), "rental.approved")
}

func TestDecideRentalApproveDefaultsToItemDeposit(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	start := anchor.AddDate(0, 1, 0)
	e.request(t, "rent-1", "renter-1", start, 1)

	_, err := e.decideHandler().Handle(ctx, DecideRentalCommand{
		RentalID: "rent-1", OwnerID: "owner-1", Decision: DecisionApprove,
	})
	require.NoError(t, err)

	stored, err := e.rentals.ByID(ctx, "rent-1")
	require.NoError(t, err)
	assert.Equal(t, int64(40), stored.Deposit.Amount)
	assert.Equal(t, "USD", stored.Deposit.Currency)

	renter, err := e.users.ByID(ctx, "renter-1")
	require.NoError(t, err)
	assert.Equal(t, int64(60), renter.Balance.Amount)
}

func TestDecideRentalApproveInsufficientFundsLeavesStateUntouched(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	start := anchor.AddDate(0, 1, 0)
	e.request(t, "rent-1", "renter-1", start, 1)

	_, err := e.decideHandler().Handle(ctx, DecideRentalCommand{
		RentalID:      "rent-1",
		OwnerID:       "owner-1",
		Decision:      DecisionApprove,
		DepositAmount: 500,
	})
	require.ErrorIs(t, err, identity.ErrInsufficientFunds)

	stored, err := e.rentals.ByID(ctx, "rent-1")
	require.NoError(t, err)
	assert.Equal(t, domainrental.StatusPendingApproval, stored.Status)

	item, err := e.items.ByID(ctx, "item-1")
	require.NoError(t, err)
	assert.Empty(t, item.ConfirmedBookings)

	renter, err := e.users.ByID(ctx, "renter-1")
	require.NoError(t, err)
	assert.Equal(t, int64(100), renter.Balance.Amount)
}

func TestDecideRentalSecondApprovalLosesTheSlot(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	require.NoError(t, e.users.Save(ctx, &identity.User{
		ID: "renter-2", Name: "Boris Backup", Email: "boris@example.com", Balance: money.Must(100, "USD"),
	}))
	start := anchor.AddDate(0, 1, 0)
	e.request(t, "rent-1", "renter-1", start, 1)
	e.request(t, "rent-2", "renter-2", start, 1)

	_, err := e.decideHandler().Handle(ctx, DecideRentalCommand{
		RentalID: "rent-1", OwnerID: "owner-1", Decision: DecisionApprove,
	})
	require.NoError(t, err)

	_, err = e.decideHandler().Handle(ctx, DecideRentalCommand{
		RentalID: "rent-2", OwnerID: "owner-1", Decision: DecisionApprove,
	})
	require.ErrorIs(t, err, domainrental.ErrSlotUnavailable)
}

func TestTerminateRentalRequiresActiveState(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	start := anchor.AddDate(0, 1, 0)
	e.request(t, "rent-1", "renter-1", start, 1)
	_, err := e.decideHandler().Handle(ctx, DecideRentalCommand{
		RentalID: "rent-1", OwnerID: "owner-1", Decision: DecisionApprove,
	})
	require.NoError(t, err)

	_, err = e.terminateHandler().Handle(ctx, TerminateRentalCommand{RentalID: "rent-1", RenterID: "renter-1"})
	require.ErrorIs(t, err, domainrental.ErrInvalidState)
}

func TestTerminateRentalReleasesOriginalWindow(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	start := anchor.AddDate(0, 1, 0)
	e.request(t, "rent-1", "renter-1", start, 1)
	_, err := e.decideHandler().Handle(ctx, DecideRentalCommand{
		RentalID: "rent-1", OwnerID: "owner-1", Decision: DecisionApprove,
	})
	require.NoError(t, err)

	activate := &ActivateDueRentalsHandler{UoWFactory: e.factory, Outbox: e.outbox}
	sweep, err := activate.Handle(ctx, ActivateDueRentalsCommand{Now: start})
	require.NoError(t, err)
	assert.Equal(t, 1, sweep.Activated)

	e.clock = start.AddDate(0, 0, 10)
	_, err = e.terminateHandler().Handle(ctx, TerminateRentalCommand{RentalID: "rent-1", RenterID: "owner-1"})
	require.ErrorIs(t, err, domainrental.ErrForbidden)

	result, err := e.terminateHandler().Handle(ctx, TerminateRentalCommand{RentalID: "rent-1", RenterID: "renter-1"})
	require.NoError(t, err)
	assert.Equal(t, string(domainrental.StatusTerminated), result.Status)
	assert.Equal(t, e.clock, result.EndedAt)

	stored, err := e.rentals.ByID(ctx, "rent-1")
	require.NoError(t, err)
	assert.Equal(t, e.clock, stored.Window.End)

	item, err := e.items.ByID(ctx, "item-1")
	require.NoError(t, err)
	assert.Empty(t, item.ConfirmedBookings)

	events := e.notes.events()
	assert.Equal(t, "rental.terminated", events[len(events)-1])
	assert.Equal(t, "rental.terminated", events[len(events)-2])
}

func TestExpireRentalDeletesAndStaysIdempotent(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	e.request(t, "rent-1", "renter-1", anchor.AddDate(0, 1, 0), 1)

	h := &ExpireRentalHandler{UoWFactory: e.factory}
	result, err := h.Handle(ctx, ExpireRentalCommand{RentalID: "rent-1"})
	require.NoError(t, err)
	assert.True(t, result.Deleted)

	_, err = e.rentals.ByID(ctx, "rent-1")
	require.ErrorIs(t, err, domainrental.ErrRentalNotFound)

	result, err = h.Handle(ctx, ExpireRentalCommand{RentalID: "rent-1"})
	require.NoError(t, err)
	assert.False(t, result.Deleted)
}

func TestDeleteRentalOwnerOnly(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	e.request(t, "rent-1", "renter-1", anchor.AddDate(0, 1, 0), 1)

	h := &DeleteRentalHandler{UoWFactory: e.factory}
	_, err := h.Handle(ctx, DeleteRentalCommand{RentalID: "rent-1", OwnerID: "renter-1"})
	require.ErrorIs(t, err, domainrental.ErrForbidden)

	_, err = h.Handle(ctx, DeleteRentalCommand{RentalID: "rent-1", OwnerID: "owner-1"})
	require.NoError(t, err)

	_, err = e.rentals.ByID(ctx, "rent-1")
	require.ErrorIs(t, err, domainrental.ErrRentalNotFound)
}

func TestExportRentalsProjectsRenterDetails(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	e.request(t, "rent-1", "renter-1", anchor.AddDate(0, 1, 0), 1)

	h := &ExportRentalsHandler{UoWFactory: e.factory}
	_, err := h.Handle(ctx, ExportRentalsQuery{ItemID: "item-1", OwnerID: "renter-1"})
	require.ErrorIs(t, err, domainrental.ErrForbidden)

	rows, err := h.Handle(ctx, ExportRentalsQuery{ItemID: "item-1", OwnerID: "owner-1"})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Rita Renter", rows[0].RenterName)
	assert.Equal(t, "rita@example.com", rows[0].RenterEmail)
	assert.Equal(t, string(domainrental.StatusPendingApproval), rows[0].Status)
	assert.Equal(t, int64(1), rows[0].PlatformFee)
}

func TestGetRentalVisibleToParticipantsOnly(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	e.request(t, "rent-1", "renter-1", anchor.AddDate(0, 1, 0), 1)

	h := &GetRentalHandler{UoWFactory: e.factory}

	_, err := h.Handle(ctx, GetRentalQuery{RentalID: "rent-1", ActorID: "stranger"})
	require.ErrorIs(t, err, domainrental.ErrForbidden)

	view, err := h.Handle(ctx, GetRentalQuery{RentalID: "rent-1", ActorID: "renter-1"})
	require.NoError(t, err)
	assert.Equal(t, "rent-1", view.ID)
	assert.Equal(t, "item-1", view.ItemID)
	assert.Equal(t, string(domainrental.StatusPendingApproval), view.Status)

	_, err = h.Handle(ctx, GetRentalQuery{RentalID: "rent-1", ActorID: "owner-1"})
	require.NoError(t, err)
}
