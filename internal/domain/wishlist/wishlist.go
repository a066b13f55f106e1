package wishlist

import (
	"context"
	"errors"
	"time"

	"rentmob/internal/domain/catalog"
)

var ErrAlreadyWishlisted = errors.New("wishlist: car already saved")

// Entry links a customer to a saved car.
type Entry struct {
	CustomerID string
	CarID      catalog.CarID
	AddedAt    time.Time
}

type Repository interface {
	Add(ctx context.Context, e Entry) error
	Remove(ctx context.Context, customerID string, carID catalog.CarID) error
	ListByCustomer(ctx context.Context, customerID string) ([]Entry, error)
	Contains(ctx context.Context, customerID string, carID catalog.CarID) (bool, error)
}
