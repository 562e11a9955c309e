package memory

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	domainevents "rentable/internal/domain/shared/events"
	domainrental "rentable/internal/domain/rental"
	"rentable/internal/domain/shared/interval"
)

// ErrVersionConflict signals a lost compare-and-set race on save.
var ErrVersionConflict = errors.New("memory: concurrent update detected")

// ItemRepository keeps item aggregates in memory. Reads return deep copies so
// a handler never mutates the store before its unit of work commits; writes
// use a version compare-and-set to serialize per-item mutations.
type ItemRepository struct {
	mu    sync.RWMutex
	items map[domainrental.ItemID]*domainrental.Item
}

func NewItemRepository() *ItemRepository {
	return &ItemRepository{items: make(map[domainrental.ItemID]*domainrental.Item)}
}

func (r *ItemRepository) ByID(ctx context.Context, id domainrental.ItemID) (*domainrental.Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	item, ok := r.items[id]
	if !ok {
		return nil, domainrental.ErrItemNotFound
	}
	return cloneItem(item), nil
}

func (r *ItemRepository) Save(ctx context.Context, item *domainrental.Item) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if stored, ok := r.items[item.ID]; ok && stored.Version != item.Version {
		return ErrVersionConflict
	}
	item.Version++
	r.items[item.ID] = cloneItem(item)
	return nil
}

// RentalRepository stores rental aggregates in memory.
type RentalRepository struct {
	mu    sync.RWMutex
	items map[domainrental.RentalID]*domainrental.Rental
}

func NewRentalRepository() *RentalRepository {
	return &RentalRepository{items: make(map[domainrental.RentalID]*domainrental.Rental)}
}

func (r *RentalRepository) ByID(ctx context.Context, id domainrental.RentalID) (*domainrental.Rental, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.items[id]
	if !ok {
		return nil, domainrental.ErrRentalNotFound
	}
	return cloneRental(rec), nil
}

func (r *RentalRepository) PendingByItemAndRenter(ctx context.Context, itemID domainrental.ItemID, renterID string) (*domainrental.Rental, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, rec := range r.items {
		if rec.ItemID == itemID && rec.RenterID == renterID && rec.Status == domainrental.StatusPendingApproval {
			return cloneRental(rec), nil
		}
	}
	return nil, domainrental.ErrRentalNotFound
}

func (r *RentalRepository) ListByItem(ctx context.Context, itemID domainrental.ItemID) ([]*domainrental.Rental, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*domainrental.Rental
	for _, rec := range r.items {
		if rec.ItemID == itemID {
			out = append(out, cloneRental(rec))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *RentalRepository) ListApprovedStartingBy(ctx context.Context, now time.Time) ([]*domainrental.Rental, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*domainrental.Rental
	for _, rec := range r.items {
		if rec.Status == domainrental.StatusApproved && !rec.Window.Start.After(now) {
			out = append(out, cloneRental(rec))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Window.Start.Before(out[j].Window.Start) })
	return out, nil
}

func (r *RentalRepository) Save(ctx context.Context, rec *domainrental.Rental) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if stored, ok := r.items[rec.ID]; ok && stored.Version != rec.Version {
		return ErrVersionConflict
	}
	rec.Version++
	r.items[rec.ID] = cloneRental(rec)
	return nil
}

func (r *RentalRepository) Delete(ctx context.Context, id domainrental.RentalID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.items, id)
	return nil
}

func cloneItem(src *domainrental.Item) *domainrental.Item {
	dst := *src
	dst.EventRecorder = domainevents.EventRecorder{}
	dst.DeclaredAvailability = cloneIntervals(src.DeclaredAvailability)
	dst.BlockedRanges = cloneIntervals(src.BlockedRanges)
	dst.ConfirmedBookings = cloneIntervals(src.ConfirmedBookings)
	return &dst
}

func cloneRental(src *domainrental.Rental) *domainrental.Rental {
	dst := *src
	dst.EventRecorder = domainevents.EventRecorder{}
	return &dst
}

func cloneIntervals(src []interval.Interval) []interval.Interval {
	if src == nil {
		return nil
	}
	out := make([]interval.Interval, len(src))
	copy(out, src)
	return out
}
