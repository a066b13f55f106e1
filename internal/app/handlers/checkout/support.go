package checkout

import (
	"context"
	"errors"

	"rentmob/internal/app/uow"
	"rentmob/internal/domain/catalog"
	"rentmob/internal/domain/shared/daterange"
)

var errUnitOfWorkRequired = errors.New("checkout: unit of work required")

// beginIfUnmanaged reuses a unit of work already placed in the context by
// the transaction middleware, or starts one the handler must settle itself.
func beginIfUnmanaged(ctx context.Context, factory uow.UoWFactory) (uow.UnitOfWork, bool, error) {
	if unit, ok := uow.FromContext(ctx); ok {
		return unit, false, nil
	}
	if factory == nil {
		return nil, false, errUnitOfWorkRequired
	}
	unit, err := factory.Begin(ctx, uow.TxOptions{})
	if err != nil {
		return nil, false, err
	}
	return unit, true, nil
}

// stockAvailable scans stored rentals for the car and reports whether any
// still-live reservation overlaps the requested period.
func stockAvailable(ctx context.Context, unit uow.UnitOfWork, carID catalog.CarID, period daterange.Period) (bool, error) {
	existing, err := unit.Rentals().ListByCar(ctx, carID)
	if err != nil {
		return false, err
	}
	for _, r := range existing {
		if r.Blocks(period) {
			return false, nil
		}
	}
	return true, nil
}
