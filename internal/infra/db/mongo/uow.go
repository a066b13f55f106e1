package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"rentmob/internal/app/uow"
	"rentmob/internal/domain/catalog"
	domainrental "rentmob/internal/domain/rental"
	"rentmob/internal/domain/wishlist"
)

var ErrUnitOfWorkNotConfigured = errors.New("mongo: unit of work factory missing database")

// Factory wires Mongo transactions into the generic UnitOfWork interface.
// The catalog and wishlist repositories may still be memory-backed while
// only the rental aggregate lives in Mongo.
type Factory struct {
	DB *mongo.Database

	CatalogRepo  catalog.Repository
	RentalRepo   domainrental.Repository
	WishlistRepo wishlist.Repository
}

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
		session:  session,
		catalog:  f.CatalogRepo,
		rentals:  f.RentalRepo,
		wishlist: f.WishlistRepo,
	}, nil
}

type Unit struct {
	session mongo.Session

	catalog  catalog.Repository
	rentals  domainrental.Repository
	wishlist wishlist.Repository
}

func (u *Unit) Catalog() catalog.Repository      { return u.catalog }
func (u *Unit) Rentals() domainrental.Repository { return u.rentals }
func (u *Unit) Wishlist() wishlist.Repository    { return u.wishlist }

func (u *Unit) Commit(ctx context.Context) error {
	defer u.session.EndSession(ctx)
	return u.session.CommitTransaction(ctx)
}

func (u *Unit) Rollback(ctx context.Context) error {
	defer u.session.EndSession(ctx)
	return u.session.AbortTransaction(ctx)
}

// InjectContext makes the Mongo session available to downstream repos.
func (u *Unit) InjectContext(ctx context.Context) context.Context {
	return mongo.NewSessionContext(ctx, u.session)
}

var _ uow.UoWFactory = Factory{}
