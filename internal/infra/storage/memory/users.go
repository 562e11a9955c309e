package memory

import (
	"context"
	"sync"

	"rentable/internal/domain/identity"
)

// UserRepository keeps user records in memory with the same copy-on-read and
// version compare-and-set discipline as the aggregate repositories.
type UserRepository struct {
	mu    sync.RWMutex
	users map[identity.UserID]*identity.User
}

func NewUserRepository() *UserRepository {
	return &UserRepository{users: make(map[identity.UserID]*identity.User)}
}

func (r *UserRepository) ByID(ctx context.Context, id identity.UserID) (*identity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	user, ok := r.users[id]
	if !ok {
		return nil, identity.ErrNotFound
	}
	clone := *user
	return &clone, nil
}

func (r *UserRepository) Save(ctx context.Context, user *identity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if stored, ok := r.users[user.ID]; ok && stored.Version != user.Version {
		return ErrVersionConflict
	}
	user.Version++
	clone := *user
	r.users[user.ID] = &clone
	return nil
}
