package rental

import (
	"sort"
	"time"

	"rentable/internal/domain/shared/interval"
)

// FreeIntervals computes the currently bookable intervals of an item: the
// declared (or synthesized) availability minus anything overlapping a
// confirmed booking or an owner block, capped at the cadence horizon.
// Output order follows the declared/synthesized sequence.
func FreeIntervals(item *Item, now time.Time) []interval.Interval {
	now = now.UTC()
	horizon := item.Cadence.MaxHorizon(now)

	candidates := item.DeclaredAvailability
	if len(candidates) == 0 {
		candidates = defaultAvailability(item.Cadence, now, horizon)
	}

	unavailable := make([]interval.Interval, 0, len(item.ConfirmedBookings)+len(item.BlockedRanges))
	unavailable = append(unavailable, item.ConfirmedBookings...)
	unavailable = append(unavailable, item.BlockedRanges...)
	// Sorted for reporting convenience; the overlap filter does not need it.
	sort.Slice(unavailable, func(i, j int) bool {
		return unavailable[i].Start.Before(unavailable[j].Start)
	})

	free := make([]interval.Interval, 0, len(candidates))
	for _, candidate := range candidates {
		if !candidate.WithinHorizon(horizon) {
			continue
		}
		if overlapsAny(candidate, unavailable) {
			continue
		}
		free = append(free, candidate)
	}
	return free
}

// defaultAvailability slices [now, horizon] into bookable units. Cadences
// without a default slice yield nothing rather than failing.
func defaultAvailability(cadence Cadence, now, horizon time.Time) []interval.Interval {
	step, ok := cadence.DefaultSlice()
	if !ok {
		return nil
	}
	var slices []interval.Interval
	for start := now; ; {
		end := step(start)
		if end.After(horizon) {
			break
		}
		slices = append(slices, interval.Interval{Start: start, End: end})
		start = end
	}
	return slices
}

func overlapsAny(candidate interval.Interval, set []interval.Interval) bool {
	for _, iv := range set {
		if candidate.Overlaps(iv) {
			return true
		}
	}
	return false
}
