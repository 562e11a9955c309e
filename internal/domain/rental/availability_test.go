package rental

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rentable/internal/domain/shared/interval"
)

func dailyItem(t *testing.T) *Item {
	t.Helper()
	return &Item{ID: "item-1", OwnerID: "owner-1", Cadence: CadenceDaily}
}

func TestFreeIntervalsSynthesizesDailySlices(t *testing.T) {
	item := dailyItem(t)
	free := FreeIntervals(item, anchor)

	// 3 calendar months of one-day slices: Jan 31 + Feb 28 + Mar 31.
	require.Len(t, free, 90)
	assert.Equal(t, anchor, free[0].Start)
	assert.Equal(t, time.Date(2025, time.March, 31, 0, 0, 0, 0, time.UTC), free[89].Start)
	for i, iv := range free {
		assert.Equal(t, 24*time.Hour, iv.Duration(), "slice %d", i)
		if i > 0 {
			assert.Equal(t, free[i-1].End, iv.Start, "slice %d must be consecutive", i)
			assert.False(t, free[i-1].Overlaps(iv))
		}
	}
}

func TestFreeIntervalsFiltersBookingsAndBlocks(t *testing.T) {
	item := dailyItem(t)
	item.ConfirmedBookings = []interval.Interval{
		{Start: anchor.AddDate(0, 0, 2), End: anchor.AddDate(0, 0, 4)},
	}
	item.BlockedRanges = []interval.Interval{
		{Start: anchor.AddDate(0, 0, 10), End: anchor.AddDate(0, 0, 11)},
	}

	free := FreeIntervals(item, anchor)
	require.Len(t, free, 87)
	for _, iv := range free {
		for _, busy := range append(item.ConfirmedBookings, item.BlockedRanges...) {
			assert.False(t, iv.Overlaps(busy), "free interval %v overlaps %v", iv, busy)
		}
	}
}

func TestFreeIntervalsHonorsDeclaredAvailability(t *testing.T) {
	item := dailyItem(t)
	declared := []interval.Interval{
		{Start: anchor.AddDate(0, 0, 5), End: anchor.AddDate(0, 0, 6)},
		{Start: anchor.AddDate(0, 0, 1), End: anchor.AddDate(0, 0, 2)},
	}
	item.DeclaredAvailability = declared

	free := FreeIntervals(item, anchor)
	// Caller-facing order follows the declared sequence, not chronology.
	require.Equal(t, declared, free)
}

func TestFreeIntervalsCapsAtHorizon(t *testing.T) {
	item := dailyItem(t)
	horizon := CadenceDaily.MaxHorizon(anchor)
	item.DeclaredAvailability = []interval.Interval{
		{Start: horizon.AddDate(0, 0, 1), End: horizon.AddDate(0, 0, 2)},
		{Start: anchor, End: anchor.AddDate(0, 0, 1)},
	}

	free := FreeIntervals(item, anchor)
	require.Len(t, free, 1)
	assert.Equal(t, anchor, free[0].Start)
}

func TestFreeIntervalsNoGeneratorCadences(t *testing.T) {
	item := dailyItem(t)
	item.Cadence = CadenceHalfYear

	// Without declared availability these cadences have nothing to offer.
	assert.Empty(t, FreeIntervals(item, anchor))

	item.DeclaredAvailability = []interval.Interval{
		{Start: anchor.AddDate(0, 1, 0), End: anchor.AddDate(0, 7, 0)},
	}
	assert.Len(t, FreeIntervals(item, anchor), 1)
}
