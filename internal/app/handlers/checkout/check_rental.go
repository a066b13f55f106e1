package checkout

import (
	"context"
	"errors"

	"rentmob/internal/app/dto"
	"rentmob/internal/app/queries"
	"rentmob/internal/app/uow"
	domainrental "rentmob/internal/domain/rental"
)

const checkRentalKey = "checkout.check_rental"

// CheckRentalQuery reports whether a rental record exists for an order.
// The reconciliation flow asks it before deciding to recreate a record
// from the snapshot.
type CheckRentalQuery struct {
	OrderID string
}

func (q CheckRentalQuery) Key() string { return checkRentalKey }

type CheckRentalHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *CheckRentalHandler) Handle(ctx context.Context, q CheckRentalQuery) (dto.RentalCheckResult, error) {
	unit, ok := uow.FromContext(ctx)
	if !ok {
		if h.UoWFactory == nil {
			return dto.RentalCheckResult{}, uow.ErrUnitOfWorkMissing
		}
		var err error
		unit, err = h.UoWFactory.Begin(ctx, uow.TxOptions{ReadOnly: true})
		if err != nil {
			return dto.RentalCheckResult{}, err
		}
		ctx = uow.ContextWithUnitOfWork(ctx, unit)
		defer unit.Rollback(ctx)
	}

	rec, err := unit.Rentals().ByOrderID(ctx, domainrental.OrderID(q.OrderID))
	if errors.Is(err, domainrental.ErrRentalNotFound) {
		return dto.RentalCheckResult{Exists: false}, nil
	}
	if err != nil {
		return dto.RentalCheckResult{}, err
	}
	return dto.RentalCheckResult{
		Exists: true,
		Rental: &dto.RentalRecord{BookingCode: rec.BookingCode},
	}, nil
}

var _ queries.Handler[CheckRentalQuery, dto.RentalCheckResult] = (*CheckRentalHandler)(nil)
