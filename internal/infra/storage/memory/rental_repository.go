package memory

import (
	"context"
	"errors"
	"sort"
	"sync"

	"rentmob/internal/domain/catalog"
	"rentmob/internal/domain/rental"
)

// ErrVersionConflict signals a lost update: another writer saved the
// rental since this copy was loaded.
var ErrVersionConflict = errors.New("memory: rental version conflict")

type RentalRepository struct {
	mu      sync.RWMutex
	byOrder map[rental.OrderID]rental.Rental
}

func NewRentalRepository() *RentalRepository {
	return &RentalRepository{byOrder: make(map[rental.OrderID]rental.Rental)}
}

func (r *RentalRepository) ByOrderID(_ context.Context, id rental.OrderID) (*rental.Rental, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.byOrder[id]
	if !ok {
		return nil, rental.ErrRentalNotFound
	}
	out := rec
	out.ClearEvents()
	return &out, nil
}

func (r *RentalRepository) Save(_ context.Context, rec *rental.Rental) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, exists := r.byOrder[rec.OrderID]
	if exists && stored.Version != rec.Version {
		return ErrVersionConflict
	}
	rec.Version++
	snapshot := *rec
	snapshot.ClearEvents()
	r.byOrder[rec.OrderID] = snapshot
	return nil
}

func (r *RentalRepository) ListByCar(_ context.Context, carID catalog.CarID) ([]*rental.Rental, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*rental.Rental
	for _, rec := range r.byOrder {
		if rec.CarID != carID {
			continue
		}
		c := rec
		c.ClearEvents()
		out = append(out, &c)
	}
	sortByCreation(out)
	return out, nil
}

func (r *RentalRepository) ListByCustomer(_ context.Context, customerID string) ([]*rental.Rental, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*rental.Rental
	for _, rec := range r.byOrder {
		if rec.CustomerID != customerID {
			continue
		}
		c := rec
		c.ClearEvents()
		out = append(out, &c)
	}
	sortByCreation(out)
	return out, nil
}

func sortByCreation(recs []*rental.Rental) {
	sort.Slice(recs, func(i, j int) bool {
		if recs[i].CreatedAt.Equal(recs[j].CreatedAt) {
			return recs[i].OrderID < recs[j].OrderID
		}
		return recs[i].CreatedAt.Before(recs[j].CreatedAt)
	})
}

var _ rental.Repository = (*RentalRepository)(nil)
