package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainrental "rentable/internal/domain/rental"
	"rentable/internal/domain/shared/interval"
)

var anchor = time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)

func TestItemRepositorySaveDetectsStaleVersion(t *testing.T) {
	ctx := context.Background()
	repo := NewItemRepository()
	require.NoError(t, repo.Save(ctx, &domainrental.Item{ID: "item-1", OwnerID: "o"}))

	first, err := repo.ByID(ctx, "item-1")
	require.NoError(t, err)
	second, err := repo.ByID(ctx, "item-1")
	require.NoError(t, err)

	require.NoError(t, repo.Save(ctx, first))
	err = repo.Save(ctx, second)
	require.ErrorIs(t, err, ErrVersionConflict)
}

func TestItemRepositoryReadsAreIsolated(t *testing.T) {
	ctx := context.Background()
	repo := NewItemRepository()
	require.NoError(t, repo.Save(ctx, &domainrental.Item{ID: "item-1", OwnerID: "o"}))

	loaded, err := repo.ByID(ctx, "item-1")
	require.NoError(t, err)
	loaded.ConfirmedBookings = append(loaded.ConfirmedBookings, interval.Interval{Start: anchor, End: anchor.AddDate(0, 1, 0)})

	fresh, err := repo.ByID(ctx, "item-1")
	require.NoError(t, err)
	assert.Empty(t, fresh.ConfirmedBookings, "mutating an unsaved read must not leak into the store")
}

func TestRentalRepositoryQueries(t *testing.T) {
	ctx := context.Background()
	repo := NewRentalRepository()
	window := interval.Interval{Start: anchor.AddDate(0, 1, 0), End: anchor.AddDate(0, 2, 0)}

	require.NoError(t, repo.Save(ctx, &domainrental.Rental{
		ID: "r1", ItemID: "item-1", RenterID: "a",
		Status: domainrental.StatusPendingApproval, Window: window, CreatedAt: anchor,
	}))
	require.NoError(t, repo.Save(ctx, &domainrental.Rental{
		ID: "r2", ItemID: "item-1", RenterID: "b",
		Status: domainrental.StatusApproved, Window: window, CreatedAt: anchor.Add(time.Hour),
	}))

	pending, err := repo.PendingByItemAndRenter(ctx, "item-1", "a")
	require.NoError(t, err)
	assert.Equal(t, domainrental.RentalID("r1"), pending.ID)

	_, err = repo.PendingByItemAndRenter(ctx, "item-1", "b")
	require.ErrorIs(t, err, domainrental.ErrRentalNotFound)

	byItem, err := repo.ListByItem(ctx, "item-1")
	require.NoError(t, err)
	require.Len(t, byItem, 2)
	assert.Equal(t, domainrental.RentalID("r1"), byItem[0].ID, "ordered by creation time")

	due, err := repo.ListApprovedStartingBy(ctx, window.Start)
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, domainrental.RentalID("r2"), due[0].ID)

	none, err := repo.ListApprovedStartingBy(ctx, window.Start.Add(-time.Second))
	require.NoError(t, err)
	assert.Empty(t, none)

	require.NoError(t, repo.Delete(ctx, "r1"))
	_, err = repo.ByID(ctx, "r1")
	require.ErrorIs(t, err, domainrental.ErrRentalNotFound)
}
