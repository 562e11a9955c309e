package rental

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rentable/internal/domain/shared/interval"
)

func blockOn(day int) interval.Interval {
	start := time.Date(2025, time.March, day, 0, 0, 0, 0, time.UTC)
	return interval.Interval{Start: start, End: start.AddDate(0, 0, 1)}
}

func TestApplyBlockedEditsAddDeduplicates(t *testing.T) {
	existing := []interval.Interval{blockOn(1)}
	edits := []interval.Interval{blockOn(1), blockOn(2), blockOn(2)}

	next, err := ApplyBlockedEdits(existing, edits, BlockedAdd)
	require.NoError(t, err)
	assert.Equal(t, []interval.Interval{blockOn(1), blockOn(2)}, next)

	// Applying the same edit list again changes nothing.
	again, err := ApplyBlockedEdits(next, edits, BlockedAdd)
	require.NoError(t, err)
	assert.Equal(t, next, again)

	// Input set is untouched.
	assert.Len(t, existing, 1)
}

func TestApplyBlockedEditsAddKeepsOverlappingBounds(t *testing.T) {
	wide := interval.Interval{Start: blockOn(1).Start, End: blockOn(5).End}
	next, err := ApplyBlockedEdits([]interval.Interval{wide}, []interval.Interval{blockOn(2)}, BlockedAdd)
	require.NoError(t, err)
	// Overlap coalescing is not performed; both entries survive.
	assert.Len(t, next, 2)
}

func TestApplyBlockedEditsAddRejectsMalformedBatch(t *testing.T) {
	edits := []interval.Interval{blockOn(1), {Start: blockOn(2).Start}}
	_, err := ApplyBlockedEdits(nil, edits, BlockedAdd)
	require.ErrorIs(t, err, ErrInvalidBlockedEdit)
}

func TestApplyBlockedEditsRemoveExactMatchOnly(t *testing.T) {
	existing := []interval.Interval{blockOn(1), blockOn(2), blockOn(3)}

	next, err := ApplyBlockedEdits(existing, []interval.Interval{blockOn(2)}, BlockedRemove)
	require.NoError(t, err)
	assert.Equal(t, []interval.Interval{blockOn(1), blockOn(3)}, next)

	// A partially overlapping request removes nothing.
	partial := interval.Interval{Start: blockOn(1).Start.Add(6 * time.Hour), End: blockOn(1).End}
	next, err = ApplyBlockedEdits(existing, []interval.Interval{partial}, BlockedRemove)
	require.NoError(t, err)
	assert.Equal(t, existing, next)
}

func TestApplyBlockedEditsUnknownAction(t *testing.T) {
	_, err := ApplyBlockedEdits(nil, nil, BlockedAction("merge"))
	require.ErrorIs(t, err, ErrInvalidAction)
}

func TestBlockedSetsEqual(t *testing.T) {
	assert.True(t, BlockedSetsEqual([]interval.Interval{blockOn(1)}, []interval.Interval{blockOn(1)}))
	assert.False(t, BlockedSetsEqual([]interval.Interval{blockOn(1)}, []interval.Interval{blockOn(2)}))
	assert.False(t, BlockedSetsEqual(nil, []interval.Interval{blockOn(1)}))
}
