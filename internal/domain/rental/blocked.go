package rental

import (
	"errors"

	"rentable/internal/domain/shared/interval"
)

// BlockedAction selects how a batch of blocked-date edits is applied.
type BlockedAction string

const (
	BlockedAdd    BlockedAction = "add"
	BlockedRemove BlockedAction = "remove"
)

var ErrInvalidBlockedEdit = errors.New("rental: blocked date must have valid start and end")

// ApplyBlockedEdits returns the blocked set after applying edits. The input
// set is never mutated.
//
// Add rejects the whole batch if any edit is malformed, then unions and
// deduplicates by exact (start, end) bounds. Overlapping but non-identical
// intervals are kept as-is: coalescing is intentionally not performed.
// Remove drops exact matches only; a partial overlap leaves the block alone.
func ApplyBlockedEdits(existing []interval.Interval, edits []interval.Interval, action BlockedAction) ([]interval.Interval, error) {
	switch action {
	case BlockedAdd:
		for _, edit := range edits {
			if edit.Validate() != nil {
				return nil, ErrInvalidBlockedEdit
			}
		}
		next := make([]interval.Interval, 0, len(existing)+len(edits))
		for _, block := range existing {
			if !containsExact(next, block) {
				next = append(next, block)
			}
		}
		for _, edit := range edits {
			if !containsExact(next, edit) {
				next = append(next, edit)
			}
		}
		return next, nil
	case BlockedRemove:
		next := make([]interval.Interval, 0, len(existing))
		for _, block := range existing {
			if !containsExact(edits, block) {
				next = append(next, block)
			}
		}
		return next, nil
	}
	return nil, ErrInvalidAction
}

// BlockedSetsEqual lets callers skip a persistence round-trip for no-op edits.
func BlockedSetsEqual(a, b []interval.Interval) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}

func containsExact(set []interval.Interval, iv interval.Interval) bool {
	for _, candidate := range set {
		if candidate.Equal(iv) {
			return true
		}
	}
	return false
}
