package wishlist

import (
	"context"
	"errors"
	"time"

	"rentmob/internal/app/commands"
	"rentmob/internal/app/dto"
	"rentmob/internal/app/queries"
	"rentmob/internal/app/uow"
	"rentmob/internal/domain/catalog"
	domainwishlist "rentmob/internal/domain/wishlist"
)

// ToggleCommand adds the car to the customer's wishlist, or removes it if
// already saved. Mirrors the single heart button the clients render.
type ToggleCommand struct {
	CustomerID string
	CarID      string
}

func (c ToggleCommand) Key() string { return "wishlist.toggle" }

type ToggleResult struct {
	Saved bool `json:"saved"`
}

type ListQuery struct {
	CustomerID string
}

func (q ListQuery) Key() string { return "wishlist.list" }

type Handler struct {
	UoWFactory uow.UoWFactory
	Now        func() time.Time
}

func (h *Handler) Toggle(ctx context.Context, cmd ToggleCommand) (*ToggleResult, error) {
	unit, ok := uow.FromContext(ctx)
	managed := false
	if !ok {
		if h.UoWFactory == nil {
			return nil, uow.ErrUnitOfWorkMissing
		}
		var err error
		unit, err = h.UoWFactory.Begin(ctx, uow.TxOptions{})
		if err != nil {
			return nil, err
		}
		managed = true
	}
	committed := false
	if managed {
		defer func() {
			if !committed {
				_ = unit.Rollback(ctx)
			}
		}()
	}

	carID := catalog.CarID(cmd.CarID)
	if _, err := unit.Catalog().CarByID(ctx, carID); err != nil {
		return nil, err
	}

	saved := true
	err := unit.Wishlist().Add(ctx, domainwishlist.Entry{
		CustomerID: cmd.CustomerID,
		CarID:      carID,
		AddedAt:    h.now(),
	})
	if errors.Is(err, domainwishlist.ErrAlreadyWishlisted) {
		if err := unit.Wishlist().Remove(ctx, cmd.CustomerID, carID); err != nil {
			return nil, err
		}
		saved = false
	} else if err != nil {
		return nil, err
	}

	if managed {
		if err := unit.Commit(ctx); err != nil {
			return nil, err
		}
		committed = true
	}
	return &ToggleResult{Saved: saved}, nil
}

func (h *Handler) List(ctx context.Context, q ListQuery) ([]dto.CarDetail, error) {
	unit, ok := uow.FromContext(ctx)
	if !ok {
		if h.UoWFactory == nil {
			return nil, uow.ErrUnitOfWorkMissing
		}
		var err error
		unit, err = h.UoWFactory.Begin(ctx, uow.TxOptions{ReadOnly: true})
		if err != nil {
			return nil, err
		}
		defer unit.Rollback(ctx)
	}

	entries, err := unit.Wishlist().ListByCustomer(ctx, q.CustomerID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.CarDetail, 0, len(entries))
	for _, e := range entries {
		car, err := unit.Catalog().CarByID(ctx, e.CarID)
		if errors.Is(err, catalog.ErrCarNotFound) {
			// Cars can leave the fleet while wishlisted; skip silently.
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, dto.CarDetail{
			ID:        string(car.ID),
			CityID:    string(car.CityID),
			Brand:     car.Brand,
			Model:     car.Model,
			Year:      car.Year,
			Type:      car.Type,
			Capacity:  car.Capacity,
			FuelType:  car.FuelType,
			DailyRate: car.DailyRate.Amount,
			PhotoURL:  car.PhotoURL,
		})
	}
	return out, nil
}

func (h *Handler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now().UTC()
}

// Register wires the wishlist operations onto both buses.
func Register(cmdBus *commands.InMemoryBus, queryBus *queries.InMemoryBus, h *Handler) {
	commands.RegisterHandler(cmdBus, ToggleCommand{}.Key(), commands.HandlerFunc[ToggleCommand, *ToggleResult](h.Toggle))
	queries.RegisterHandler(queryBus, ListQuery{}.Key(), queries.HandlerFunc[ListQuery, []dto.CarDetail](h.List))
}
