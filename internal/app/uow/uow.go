package uow

import (
	"context"

	domainidentity "rentable/internal/domain/identity"
	domainrental "rentable/internal/domain/rental"
)

// UnitOfWork coordinates repositories inside a transaction boundary.
type UnitOfWork interface {
	Items() domainrental.ItemRepository
	Rentals() domainrental.Repository
	Users() domainidentity.Repository

	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// UoWFactory starts unit of work instances.
type UoWFactory interface {
	Begin(ctx context.Context, opts TxOptions) (UnitOfWork, error)
}

// TxOptions configure transaction boundaries.
type TxOptions struct {
	ReadOnly bool
}
