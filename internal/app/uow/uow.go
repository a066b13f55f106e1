package uow

import (
	"context"

	"rentmob/internal/domain/catalog"
	"rentmob/internal/domain/rental"
	"rentmob/internal/domain/wishlist"
)

// UnitOfWork coordinates repositories inside a transaction boundary.
type UnitOfWork interface {
	Catalog() catalog.Repository
	Rentals() rental.Repository
	Wishlist() wishlist.Repository

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
