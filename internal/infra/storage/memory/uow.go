package memory

import (
	"context"
	"errors"

	"rentable/internal/app/uow"
	"rentable/internal/domain/identity"
	domainrental "rentable/internal/domain/rental"
)

// Factory wires in-memory repositories into a unit-of-work boundary.
type Factory struct {
	ItemsRepo   domainrental.ItemRepository
	RentalsRepo domainrental.Repository
	UsersRepo   identity.Repository
}

// ErrFactoryMisconfigured indicates missing repositories.
var ErrFactoryMisconfigured = errors.New("memory: unit of work factory misconfigured")

// Begin starts a lightweight transaction boundary. No isolation is provided but
// the abstraction matches the application ports.
func (f Factory) Begin(ctx context.Context, opts uow.TxOptions) (uow.UnitOfWork, error) {
	if f.ItemsRepo == nil || f.RentalsRepo == nil || f.UsersRepo == nil {
		return nil, ErrFactoryMisconfigured
	}
	return &Unit{
		items:   f.ItemsRepo,
		rentals: f.RentalsRepo,
		users:   f.UsersRepo,
	}, nil
}

// Unit is a lightweight uow.UnitOfWork backed by in-memory stores. Commit
// and Rollback are no-ops: every Save applies immediately, so a version
// conflict partway through a multi-aggregate write leaves the earlier saves
// in place. Handlers run all precondition checks before the first Save,
// which keeps guard failures clean; true multi-write atomicity needs the
// mongo factory's session transactions.
type Unit struct {
	items   domainrental.ItemRepository
	rentals domainrental.Repository
	users   identity.Repository
}

func (u *Unit) Items() domainrental.ItemRepository {
	return u.items
}

func (u *Unit) Rentals() domainrental.Repository {
	return u.rentals
}

func (u *Unit) Users() identity.Repository {
	return u.users
}

func (u *Unit) Commit(ctx context.Context) error {
	return nil
}

func (u *Unit) Rollback(ctx context.Context) error {
	return nil
}
