package uow

import (
	"context"
	"errors"
)

var ErrUnitOfWorkMissing = errors.New("uow: unit of work missing from context")

// unitKey is unexported so only the transaction middleware can seed a
// context; handlers can read the unit but never swap it.
type unitKey struct{}

// ContextWithUnitOfWork attaches the unit the transaction middleware
// opened for the current dispatch. Checkout and wishlist handlers pick
// it up through FromContext instead of opening their own.
func ContextWithUnitOfWork(ctx context.Context, unit UnitOfWork) context.Context {
	return context.WithValue(ctx, unitKey{}, unit)
}

// FromContext reports the ambient unit of work, if the caller runs
// inside a transaction boundary. Query handlers fall back to a
// read-only unit when it is absent.
func FromContext(ctx context.Context) (UnitOfWork, bool) {
	unit, ok := ctx.Value(unitKey{}).(UnitOfWork)
	return unit, ok
}
