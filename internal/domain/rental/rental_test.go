package rental

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rentable/internal/domain/shared/interval"
	"rentable/internal/domain/shared/money"
)

func pendingRental(t *testing.T) *Rental {
	t.Helper()
	window := interval.Interval{Start: anchor.AddDate(0, 1, 0), End: anchor.AddDate(0, 2, 0)}
	r, err := NewRental(CreateParams{
		ID:          "rent-1",
		ItemID:      "item-1",
		RenterID:    "renter-1",
		OwnerID:     "owner-1",
		Window:      window,
		PlatformFee: money.Must(1, "USD"),
		Now:         anchor,
	})
	require.NoError(t, err)
	return r
}

func TestNewRentalRejectsSelfBooking(t *testing.T) {
	_, err := NewRental(CreateParams{
		ID:       "rent-1",
		ItemID:   "item-1",
		RenterID: "owner-1",
		OwnerID:  "owner-1",
		Window:   interval.Interval{Start: anchor, End: anchor.AddDate(0, 1, 0)},
		Now:      anchor,
	})
	require.ErrorIs(t, err, ErrSelfRental)
}

func TestApproveStampsRetentionDeadline(t *testing.T) {
	r := pendingRental(t)
	deposit := money.Must(50, "USD")

	require.NoError(t, r.Approve(deposit, anchor.AddDate(0, 0, 1)))
	assert.Equal(t, StatusApproved, r.Status)
	assert.Equal(t, deposit, r.Deposit)
	assert.Equal(t, r.Window.End.AddDate(0, 6, 0), r.ExpiresAt)

	// Approval is not repeatable.
	require.ErrorIs(t, r.Approve(deposit, anchor), ErrInvalidState)
}

func TestRejectIsTerminal(t *testing.T) {
	r := pendingRental(t)
	require.NoError(t, r.Reject("double booked", anchor))
	assert.Equal(t, StatusRejected, r.Status)
	assert.Equal(t, "double booked", r.RejectionReason)

	require.ErrorIs(t, r.Approve(money.Money{}, anchor), ErrInvalidState)
	require.ErrorIs(t, r.Reject("again", anchor), ErrInvalidState)
}

func TestActivateRequiresWindowStart(t *testing.T) {
	r := pendingRental(t)
	require.NoError(t, r.Approve(money.Money{}, anchor))

	require.ErrorIs(t, r.Activate(r.Window.Start.Add(-time.Hour)), ErrInvalidState)
	require.NoError(t, r.Activate(r.Window.Start))
	assert.Equal(t, StatusActive, r.Status)
}

func TestTerminateOnlyFromActive(t *testing.T) {
	r := pendingRental(t)
	require.NoError(t, r.Approve(money.Money{}, anchor))

	// Approved but not yet active cannot be terminated.
	require.ErrorIs(t, r.Terminate(anchor), ErrInvalidState)

	require.NoError(t, r.Activate(r.Window.Start))
	endedAt := r.Window.Start.AddDate(0, 0, 3)
	require.NoError(t, r.Terminate(endedAt))
	assert.Equal(t, StatusTerminated, r.Status)
	assert.Equal(t, endedAt, r.Window.End)

	require.ErrorIs(t, r.Terminate(endedAt), ErrInvalidState)
}

func TestStateMachineRecordsEvents(t *testing.T) {
	r := pendingRental(t)
	require.NoError(t, r.Approve(money.Money{}, anchor))
	require.NoError(t, r.Activate(r.Window.Start))
	require.NoError(t, r.Terminate(r.Window.Start.AddDate(0, 0, 1)))

	names := make([]string, 0, 4)
	for _, ev := range r.PendingEvents() {
		names = append(names, ev.EventName())
	}
	assert.Equal(t, []string{"rental.requested", "rental.approved", "rental.activated", "rental.terminated"}, names)
}

func TestItemReserveAndRelease(t *testing.T) {
	item := &Item{ID: "item-1", OwnerID: "owner-1", Cadence: CadenceDaily}
	w := interval.Interval{Start: anchor, End: anchor.AddDate(0, 0, 3)}

	require.NoError(t, item.Reserve(w, "rent-1", anchor))
	require.ErrorIs(t, item.Reserve(interval.Interval{Start: anchor.AddDate(0, 0, 2), End: anchor.AddDate(0, 0, 5)}, "rent-2", anchor), ErrSlotUnavailable)

	// Touching windows are fine.
	adjacent := interval.Interval{Start: w.End, End: w.End.AddDate(0, 0, 2)}
	require.NoError(t, item.Reserve(adjacent, "rent-3", anchor))

	item.Release(w, "rent-1", anchor)
	assert.Len(t, item.ConfirmedBookings, 1)

	// Releasing again is a no-op.
	item.Release(w, "rent-1", anchor)
	assert.Len(t, item.ConfirmedBookings, 1)
}

func TestItemCanReserveConsidersBlocks(t *testing.T) {
	item := &Item{ID: "item-1", Cadence: CadenceDaily}
	item.BlockedRanges = []interval.Interval{{Start: anchor, End: anchor.AddDate(0, 0, 2)}}

	assert.False(t, item.CanReserve(interval.Interval{Start: anchor.AddDate(0, 0, 1), End: anchor.AddDate(0, 0, 3)}))
	assert.True(t, item.CanReserve(interval.Interval{Start: anchor.AddDate(0, 0, 2), End: anchor.AddDate(0, 0, 4)}))
}
