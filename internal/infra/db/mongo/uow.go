package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"rentable/internal/app/uow"
	"rentable/internal/domain/identity"
	domainrental "rentable/internal/domain/rental"
)

// Factory wires Mongo transactions into the generic UnitOfWork interface.
type Factory struct {
	DB *mongo.Database

	ItemsRepo   domainrental.ItemRepository
	RentalsRepo domainrental.Repository
	UsersRepo   identity.Repository
}

var ErrUnitOfWorkNotConfigured = errors.New("mongo: unit of work factory missing database")

// Begin starts a MongoDB session/transaction.
func (f Factory) Begin(ctx context.Context, opts uow.TxOptions) (uow.UnitOfWork, error) {
	if f.DB == nil {
		return nil, ErrUnitOfWorkNotConfigured
	}
	session, err := f.DB.Client().StartSession()
	if err != nil {
		return nil, err
	}
	txnOpts := options.Transaction().SetReadConcern(f.DB.ReadConcern()).SetWriteConcern(f.DB.WriteConcern())
	if err := session.StartTransaction(txnOpts); err != nil {
		session.EndSession(ctx)
		return nil, err
	}
	return &Unit{
		db:      f.DB,
		session: session,
		items:   f.ItemsRepo,
		rentals: f.RentalsRepo,
		users:   f.UsersRepo,
	}, nil
}

type Unit struct {
	db      *mongo.Database
	session mongo.Session

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
	defer u.session.EndSession(ctx)
	return u.session.CommitTransaction(ctx)
}

func (u *Unit) Rollback(ctx context.Context) error {
	defer u.session.EndSession(ctx)
	return u.session.AbortTransaction(ctx)
}

// InjectContext ensures Mongo session is available in context for downstream repos.
func (u *Unit) InjectContext(ctx context.Context) context.Context {
	return mongo.NewSessionContext(ctx, u.session)
}
