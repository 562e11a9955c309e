package availability

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainrental "rentable/internal/domain/rental"
	"rentable/internal/domain/shared/interval"
	"rentable/internal/infra/storage/memory"
)

var anchor = time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)

func seedItem(t *testing.T, items *memory.ItemRepository, item *domainrental.Item) {
	t.Helper()
	require.NoError(t, items.Save(context.Background(), item))
}

func newFactory(items *memory.ItemRepository) memory.Factory {
	return memory.Factory{
		ItemsRepo:   items,
		RentalsRepo: memory.NewRentalRepository(),
		UsersRepo:   memory.NewUserRepository(),
	}
}

func TestFreeIntervalsUsesDeclaredAvailability(t *testing.T) {
	items := memory.NewItemRepository()
	declared := []interval.Interval{
		{Start: anchor.AddDate(0, 1, 0), End: anchor.AddDate(0, 2, 0)},
		{Start: anchor.AddDate(0, 3, 0), End: anchor.AddDate(0, 4, 0)},
	}
	seedItem(t, items, &domainrental.Item{
		ID:                   "item-1",
		OwnerID:              "owner-1",
		Cadence:              domainrental.CadenceHalfYear,
		DeclaredAvailability: declared,
	})

	h := &FreeIntervalsHandler{UoWFactory: newFactory(items)}
	result, err := h.Handle(context.Background(), FreeIntervalsQuery{ItemID: "item-1", Now: anchor})
	require.NoError(t, err)
	assert.Equal(t, "item-1", result.ItemID)
	require.Equal(t, 2, result.Count)
	assert.Equal(t, declared[0].Start, result.Items[0].Start)
	assert.Equal(t, declared[1].End, result.Items[1].End)
}

func TestFreeIntervalsFiltersBookedSlots(t *testing.T) {
	items := memory.NewItemRepository()
	booked := interval.Interval{Start: anchor.AddDate(0, 0, 3), End: anchor.AddDate(0, 0, 4)}
	seedItem(t, items, &domainrental.Item{
		ID:                "item-1",
		OwnerID:           "owner-1",
		Cadence:           domainrental.CadenceDaily,
		ConfirmedBookings: []interval.Interval{booked},
	})

	h := &FreeIntervalsHandler{UoWFactory: newFactory(items)}
	result, err := h.Handle(context.Background(), FreeIntervalsQuery{ItemID: "item-1", Now: anchor})
	require.NoError(t, err)
	for _, slot := range result.Items {
		assert.False(t, booked.Overlaps(interval.Interval{Start: slot.Start, End: slot.End}),
			"booked slot leaked into the free set: %v", slot)
	}
}

func TestFreeIntervalsUnknownItem(t *testing.T) {
	h := &FreeIntervalsHandler{UoWFactory: newFactory(memory.NewItemRepository())}
	_, err := h.Handle(context.Background(), FreeIntervalsQuery{ItemID: "ghost", Now: anchor})
	require.ErrorIs(t, err, domainrental.ErrItemNotFound)
}

func TestUpdateBlockedDatesAddAndRemove(t *testing.T) {
	items := memory.NewItemRepository()
	seedItem(t, items, &domainrental.Item{
		ID:      "item-1",
		OwnerID: "owner-1",
		Cadence: domainrental.CadenceDaily,
	})
	block := interval.Interval{Start: anchor.AddDate(0, 0, 5), End: anchor.AddDate(0, 0, 6)}

	h := &UpdateBlockedDatesHandler{UoWFactory: newFactory(items), Outbox: memory.NewOutbox()}
	ctx := context.Background()

	result, err := h.Handle(ctx, UpdateBlockedDatesCommand{
		ItemID:  "item-1",
		OwnerID: "owner-1",
		Edits:   []interval.Interval{block},
		Action:  domainrental.BlockedAdd,
	})
	require.NoError(t, err)
	assert.True(t, result.Changed)
	require.Len(t, result.Blocked.Items, 1)

	stored, err := items.ByID(ctx, "item-1")
	require.NoError(t, err)
	require.Len(t, stored.BlockedRanges, 1)
	assert.True(t, stored.BlockedRanges[0].Equal(block))

	result, err = h.Handle(ctx, UpdateBlockedDatesCommand{
		ItemID:  "item-1",
		OwnerID: "owner-1",
		Edits:   []interval.Interval{block},
		Action:  domainrental.BlockedRemove,
	})
	require.NoError(t, err)
	assert.True(t, result.Changed)
	assert.Empty(t, result.Blocked.Items)
}

func TestUpdateBlockedDatesNoOpSkipsWrite(t *testing.T) {
	items := memory.NewItemRepository()
	block := interval.Interval{Start: anchor.AddDate(0, 0, 5), End: anchor.AddDate(0, 0, 6)}
	seedItem(t, items, &domainrental.Item{
		ID:            "item-1",
		OwnerID:       "owner-1",
		Cadence:       domainrental.CadenceDaily,
		BlockedRanges: []interval.Interval{block},
	})
	ctx := context.Background()
	before, err := items.ByID(ctx, "item-1")
	require.NoError(t, err)

	h := &UpdateBlockedDatesHandler{UoWFactory: newFactory(items), Outbox: memory.NewOutbox()}
	result, err := h.Handle(ctx, UpdateBlockedDatesCommand{
		ItemID:  "item-1",
		OwnerID: "owner-1",
		Edits:   []interval.Interval{block},
		Action:  domainrental.BlockedAdd,
	})
	require.NoError(t, err)
	assert.False(t, result.Changed)

	after, err := items.ByID(ctx, "item-1")
	require.NoError(t, err)
	assert.Equal(t, before.Version, after.Version)
}

func TestUpdateBlockedDatesGuards(t *testing.T) {
	items := memory.NewItemRepository()
	seedItem(t, items, &domainrental.Item{
		ID:      "item-1",
		OwnerID: "owner-1",
		Cadence: domainrental.CadenceDaily,
	})
	h := &UpdateBlockedDatesHandler{UoWFactory: newFactory(items), Outbox: memory.NewOutbox()}
	ctx := context.Background()
	block := interval.Interval{Start: anchor, End: anchor.AddDate(0, 0, 1)}

	_, err := h.Handle(ctx, UpdateBlockedDatesCommand{
		ItemID:  "item-1",
		OwnerID: "someone-else",
		Edits:   []interval.Interval{block},
		Action:  domainrental.BlockedAdd,
	})
	require.ErrorIs(t, err, domainrental.ErrForbidden)

	_, err = h.Handle(ctx, UpdateBlockedDatesCommand{
		ItemID:  "item-1",
		OwnerID: "owner-1",
		Edits:   []interval.Interval{{Start: anchor.AddDate(0, 0, 1), End: anchor}},
		Action:  domainrental.BlockedAdd,
	})
	require.ErrorIs(t, err, domainrental.ErrInvalidBlockedEdit)

	_, err = h.Handle(ctx, UpdateBlockedDatesCommand{
		ItemID:  "item-1",
		OwnerID: "owner-1",
		Edits:   []interval.Interval{block},
		Action:  "merge",
	})
	require.ErrorIs(t, err, domainrental.ErrInvalidAction)
}
