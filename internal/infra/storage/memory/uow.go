package memory

import (
	"context"

	"rentmob/internal/app/uow"
	"rentmob/internal/domain/catalog"
	"rentmob/internal/domain/rental"
	"rentmob/internal/domain/wishlist"
)

// Factory hands out units of work over a shared set of in-memory
// repositories. Writes apply immediately; Commit and Rollback only mark
// the unit settled so the middleware contract holds.
type Factory struct {
	catalog  *CatalogRepository
	rentals  *RentalRepository
	wishlist *WishlistRepository
}

func NewFactory() *Factory {
	return NewFactoryWith(NewCatalogRepository(), NewRentalRepository(), NewWishlistRepository())
}

// NewFactoryWith shares repositories with other factories, e.g. a Mongo
// unit of work that keeps reference data in memory.
func NewFactoryWith(cat *CatalogRepository, rentals *RentalRepository, wish *WishlistRepository) *Factory {
	return &Factory{catalog: cat, rentals: rentals, wishlist: wish}
}

// Catalog exposes the backing repository for fixture loading.
func (f *Factory) Catalog() *CatalogRepository { return f.catalog }

func (f *Factory) Rentals() *RentalRepository { return f.rentals }

func (f *Factory) Begin(_ context.Context, _ uow.TxOptions) (uow.UnitOfWork, error) {
	return &unit{factory: f}, nil
}

type unit struct {
	factory *Factory
	done    bool
}

func (u *unit) Catalog() catalog.Repository   { return u.factory.catalog }
func (u *unit) Rentals() rental.Repository    { return u.factory.rentals }
func (u *unit) Wishlist() wishlist.Repository { return u.factory.wishlist }

func (u *unit) Commit(context.Context) error {
	u.done = true
	return nil
}

func (u *unit) Rollback(context.Context) error {
	u.done = true
	return nil
}

var _ uow.UoWFactory = (*Factory)(nil)
