package memory

import (
	"context"
	"sort"
	"sync"

	"rentmob/internal/domain/catalog"
	"rentmob/internal/domain/wishlist"
)

type WishlistRepository struct {
	mu      sync.RWMutex
	entries map[string]map[catalog.CarID]wishlist.Entry
}

func NewWishlistRepository() *WishlistRepository {
	return &WishlistRepository{entries: make(map[string]map[catalog.CarID]wishlist.Entry)}
}

func (r *WishlistRepository) Add(_ context.Context, e wishlist.Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	byCar, ok := r.entries[e.CustomerID]
	if !ok {
		byCar = make(map[catalog.CarID]wishlist.Entry)
		r.entries[e.CustomerID] = byCar
	}
	if _, dup := byCar[e.CarID]; dup {
		return wishlist.ErrAlreadyWishlisted
	}
	byCar[e.CarID] = e
	return nil
}

func (r *WishlistRepository) Remove(_ context.Context, customerID string, carID catalog.CarID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if byCar, ok := r.entries[customerID]; ok {
		delete(byCar, carID)
	}
	return nil
}

func (r *WishlistRepository) ListByCustomer(_ context.Context, customerID string) ([]wishlist.Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	byCar := r.entries[customerID]
	out := make([]wishlist.Entry, 0, len(byCar))
	for _, e := range byCar {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AddedAt.Before(out[j].AddedAt) })
	return out, nil
}

func (r *WishlistRepository) Contains(_ context.Context, customerID string, carID catalog.CarID) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	byCar, ok := r.entries[customerID]
	if !ok {
		return false, nil
	}
	_, found := byCar[carID]
	return found, nil
}

var _ wishlist.Repository = (*WishlistRepository)(nil)
