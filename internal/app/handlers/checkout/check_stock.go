package checkout

import (
	"context"
	"time"

	"rentmob/internal/app/dto"
	"rentmob/internal/app/queries"
	"rentmob/internal/app/uow"
	"rentmob/internal/domain/catalog"
	"rentmob/internal/domain/shared/daterange"
)

const checkStockKey = "checkout.check_stock"

// CheckStockQuery answers whether a car is free for the requested period
// without opening a payment session.
type CheckStockQuery struct {
	CarID     string
	StartDate time.Time
	EndDate   time.Time
}

func (q CheckStockQuery) Key() string { return checkStockKey }

type CheckStockHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *CheckStockHandler) Handle(ctx context.Context, q CheckStockQuery) (dto.StockCheckResult, error) {
	unit, ok := uow.FromContext(ctx)
	if !ok {
		if h.UoWFactory == nil {
			return dto.StockCheckResult{}, uow.ErrUnitOfWorkMissing
		}
		var err error
		unit, err = h.UoWFactory.Begin(ctx, uow.TxOptions{ReadOnly: true})
		if err != nil {
			return dto.StockCheckResult{}, err
		}
		ctx = uow.ContextWithUnitOfWork(ctx, unit)
		defer unit.Rollback(ctx)
	}

	end := daterange.EnsureMinimum(q.StartDate, q.EndDate)
	period, err := daterange.New(q.StartDate, end)
	if err != nil {
		return dto.StockCheckResult{}, err
	}
	if _, err := unit.Catalog().CarByID(ctx, catalog.CarID(q.CarID)); err != nil {
		return dto.StockCheckResult{}, err
	}

	available, err := stockAvailable(ctx, unit, catalog.CarID(q.CarID), period)
	if err != nil {
		return dto.StockCheckResult{}, err
	}
	result := dto.StockCheckResult{Available: available}
	if !available {
		result.Message = ErrCarUnavailable.Error()
	}
	return result, nil
}

var _ queries.Handler[CheckStockQuery, dto.StockCheckResult] = (*CheckStockHandler)(nil)
