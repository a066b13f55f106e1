package memory

import (
	"context"
	"sort"
	"sync"

	"rentmob/internal/domain/catalog"
)

// CatalogRepository keeps the reference data in process. It backs local
// development and the test suites; production wiring swaps in Mongo.
type CatalogRepository struct {
	mu        sync.RWMutex
	cars      map[catalog.CarID]catalog.Car
	cities    map[catalog.CityID]catalog.City
	methods   map[catalog.DeliveryMethodID]catalog.DeliveryMethod
	options   map[catalog.RentalOptionID]catalog.RentalOption
	cityOrder []catalog.CityID
}

func NewCatalogRepository() *CatalogRepository {
	return &CatalogRepository{
		cars:    make(map[catalog.CarID]catalog.Car),
		cities:  make(map[catalog.CityID]catalog.City),
		methods: make(map[catalog.DeliveryMethodID]catalog.DeliveryMethod),
		options: make(map[catalog.RentalOptionID]catalog.RentalOption),
	}
}

func (r *CatalogRepository) CarByID(_ context.Context, id catalog.CarID) (*catalog.Car, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	car, ok := r.cars[id]
	if !ok {
		return nil, catalog.ErrCarNotFound
	}
	return &car, nil
}

func (r *CatalogRepository) SaveCar(_ context.Context, car *catalog.Car) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cars[car.ID] = *car
	return nil
}

func (r *CatalogRepository) ListCars(_ context.Context, city catalog.CityID) ([]*catalog.Car, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*catalog.Car, 0, len(r.cars))
	for _, car := range r.cars {
		if city != "" && car.CityID != city {
			continue
		}
		c := car
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *CatalogRepository) AddCity(city catalog.City) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.cities[city.ID]; !ok {
		r.cityOrder = append(r.cityOrder, city.ID)
	}
	r.cities[city.ID] = city
}

func (r *CatalogRepository) ListCities(_ context.Context) ([]catalog.City, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]catalog.City, 0, len(r.cityOrder))
	for _, id := range r.cityOrder {
		out = append(out, r.cities[id])
	}
	return out, nil
}

func (r *CatalogRepository) AddDeliveryMethod(m catalog.DeliveryMethod) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.methods[m.ID] = m
}

func (r *CatalogRepository) ListDeliveryMethods(_ context.Context) ([]catalog.DeliveryMethod, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]catalog.DeliveryMethod, 0, len(r.methods))
	for _, m := range r.methods {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *CatalogRepository) DeliveryMethodByID(_ context.Context, id catalog.DeliveryMethodID) (catalog.DeliveryMethod, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.methods[id]
	if !ok {
		return catalog.DeliveryMethod{}, catalog.ErrDeliveryMethodNotFound
	}
	return m, nil
}

func (r *CatalogRepository) AddRentalOption(o catalog.RentalOption) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.options[o.ID] = o
}

func (r *CatalogRepository) ListRentalOptions(_ context.Context) ([]catalog.RentalOption, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]catalog.RentalOption, 0, len(r.options))
	for _, o := range r.options {
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *CatalogRepository) RentalOptionByID(_ context.Context, id catalog.RentalOptionID) (catalog.RentalOption, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	o, ok := r.options[id]
	if !ok {
		return catalog.RentalOption{}, catalog.ErrRentalOptionNotFound
	}
	return o, nil
}

var _ catalog.Repository = (*CatalogRepository)(nil)
