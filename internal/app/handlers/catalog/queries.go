package catalog

import (
	"context"
	"time"

	"rentmob/internal/app/dto"
	"rentmob/internal/app/queries"
	"rentmob/internal/app/uow"
	domaincatalog "rentmob/internal/domain/catalog"
	domainrental "rentmob/internal/domain/rental"
)

// GetCarQuery fetches one car for the booking form.
type GetCarQuery struct {
	CarID string
}

func (q GetCarQuery) Key() string { return "catalog.get_car" }

type ListCarsQuery struct {
	CityID string
}

func (q ListCarsQuery) Key() string { return "catalog.list_cars" }

type ListCitiesQuery struct{}

func (q ListCitiesQuery) Key() string { return "catalog.list_cities" }

type ListDeliveryMethodsQuery struct{}

func (q ListDeliveryMethodsQuery) Key() string { return "catalog.list_delivery_methods" }

type ListRentalOptionsQuery struct{}

func (q ListRentalOptionsQuery) Key() string { return "catalog.list_rental_options" }

// PickupSlotsQuery lists the selectable pickup times for a date. Slots
// already in the past are dropped when the date is today.
type PickupSlotsQuery struct {
	Date     time.Time
	Interval time.Duration
}

func (q PickupSlotsQuery) Key() string { return "catalog.pickup_slots" }

// Handler serves all catalog reads over one repository view.
type Handler struct {
	UoWFactory uow.UoWFactory
	Now        func() time.Time
}

func (h *Handler) view(ctx context.Context) (domaincatalog.Repository, func(), error) {
	if unit, ok := uow.FromContext(ctx); ok {
		return unit.Catalog(), func() {}, nil
	}
	if h.UoWFactory == nil {
		return nil, nil, uow.ErrUnitOfWorkMissing
	}
	unit, err := h.UoWFactory.Begin(ctx, uow.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, nil, err
	}
	return unit.Catalog(), func() { _ = unit.Rollback(ctx) }, nil
}

func (h *Handler) GetCar(ctx context.Context, q GetCarQuery) (dto.CarDetail, error) {
	repo, done, err := h.view(ctx)
	if err != nil {
		return dto.CarDetail{}, err
	}
	defer done()
	car, err := repo.CarByID(ctx, domaincatalog.CarID(q.CarID))
	if err != nil {
		return dto.CarDetail{}, err
	}
	return carDetail(car), nil
}

func (h *Handler) ListCars(ctx context.Context, q ListCarsQuery) ([]dto.CarDetail, error) {
	repo, done, err := h.view(ctx)
	if err != nil {
		return nil, err
	}
	defer done()
	cars, err := repo.ListCars(ctx, domaincatalog.CityID(q.CityID))
	if err != nil {
		return nil, err
	}
	out := make([]dto.CarDetail, 0, len(cars))
	for _, car := range cars {
		out = append(out, carDetail(car))
	}
	return out, nil
}

func (h *Handler) ListCities(ctx context.Context, _ ListCitiesQuery) ([]dto.CityView, error) {
	repo, done, err := h.view(ctx)
	if err != nil {
		return nil, err
	}
	defer done()
	cities, err := repo.ListCities(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.CityView, 0, len(cities))
	for _, c := range cities {
		out = append(out, dto.CityView{ID: string(c.ID), Name: c.Name})
	}
	return out, nil
}

func (h *Handler) ListDeliveryMethods(ctx context.Context, _ ListDeliveryMethodsQuery) ([]dto.DeliveryMethodView, error) {
	repo, done, err := h.view(ctx)
	if err != nil {
		return nil, err
	}
	defer done()
	methods, err := repo.ListDeliveryMethods(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.DeliveryMethodView, 0, len(methods))
	for _, m := range methods {
		out = append(out, dto.DeliveryMethodView{ID: string(m.ID), Name: m.Name, Fee: m.Fee.Amount})
	}
	return out, nil
}

func (h *Handler) ListRentalOptions(ctx context.Context, _ ListRentalOptionsQuery) ([]dto.RentalOptionView, error) {
	repo, done, err := h.view(ctx)
	if err != nil {
		return nil, err
	}
	defer done()
	options, err := repo.ListRentalOptions(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.RentalOptionView, 0, len(options))
	for _, o := range options {
		out = append(out, dto.RentalOptionView{
			ID:          string(o.ID),
			Name:        o.Name,
			FeePerDay:   o.FeePerDay.Amount,
			Description: o.Description,
		})
	}
	return out, nil
}

// PickupSlots needs no repository; the operational window is policy, not
// data.
func (h *Handler) PickupSlots(_ context.Context, q PickupSlotsQuery) ([]dto.TimeSlotView, error) {
	now := time.Now().UTC()
	if h.Now != nil {
		now = h.Now()
	}
	var out []dto.TimeSlotView
	for slot := range domainrental.Slots(q.Date, q.Interval, now) {
		out = append(out, dto.TimeSlotView{Label: slot.String(), Wire: slot.Wire()})
	}
	return out, nil
}

func carDetail(car *domaincatalog.Car) dto.CarDetail {
	return dto.CarDetail{
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
	}
}

// Register wires every catalog query onto the bus.
func Register(bus *queries.InMemoryBus, h *Handler) {
	queries.RegisterHandler(bus, GetCarQuery{}.Key(), queries.HandlerFunc[GetCarQuery, dto.CarDetail](h.GetCar))
	queries.RegisterHandler(bus, ListCarsQuery{}.Key(), queries.HandlerFunc[ListCarsQuery, []dto.CarDetail](h.ListCars))
	queries.RegisterHandler(bus, ListCitiesQuery{}.Key(), queries.HandlerFunc[ListCitiesQuery, []dto.CityView](h.ListCities))
	queries.RegisterHandler(bus, ListDeliveryMethodsQuery{}.Key(), queries.HandlerFunc[ListDeliveryMethodsQuery, []dto.DeliveryMethodView](h.ListDeliveryMethods))
	queries.RegisterHandler(bus, ListRentalOptionsQuery{}.Key(), queries.HandlerFunc[ListRentalOptionsQuery, []dto.RentalOptionView](h.ListRentalOptions))
	queries.RegisterHandler(bus, PickupSlotsQuery{}.Key(), queries.HandlerFunc[PickupSlotsQuery, []dto.TimeSlotView](h.PickupSlots))
}
