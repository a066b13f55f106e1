package catalog

import (
	"context"
	"errors"

	"rentmob/internal/domain/shared/money"
)

var (
	ErrCarNotFound            = errors.New("catalog: car not found")
	ErrCityNotFound           = errors.New("catalog: city not found")
	ErrDeliveryMethodNotFound = errors.New("catalog: delivery method not found")
	ErrRentalOptionNotFound   = errors.New("catalog: rental option not found")
)

type CarID string

type CityID string

type DeliveryMethodID string

type RentalOptionID string

// Car is the read-only listing customers browse and book.
type Car struct {
	ID        CarID
	CityID    CityID
	Brand     string
	Model     string
	Year      int
	Type      string
	Capacity  int
	FuelType  string
	DailyRate money.Money
	PhotoURL  string
}

type City struct {
	ID   CityID
	Name string
}

// DeliveryMethod is either self pickup at the rental location or paid
// delivery to an address; the fee is flat per rental.
type DeliveryMethod struct {
	ID   DeliveryMethodID
	Name string
	Fee  money.Money
}

// RequiresAddress reports whether a delivery address must accompany the
// method. Only paid delivery carries a non-zero fee in the catalog.
func (m DeliveryMethod) RequiresAddress() bool {
	return !m.Fee.IsZero()
}

// RentalOption is an add-on service such as "with driver", charged per day.
type RentalOption struct {
	ID          RentalOptionID
	Name        string
	FeePerDay   money.Money
	Description string
}

// Repository exposes the reference data the booking form consumes.
// Catalog entries are immutable during a session except for photo updates.
type Repository interface {
	CarByID(ctx context.Context, id CarID) (*Car, error)
	SaveCar(ctx context.Context, car *Car) error
	ListCars(ctx context.Context, city CityID) ([]*Car, error)
	ListCities(ctx context.Context) ([]City, error)
	ListDeliveryMethods(ctx context.Context) ([]DeliveryMethod, error)
	DeliveryMethodByID(ctx context.Context, id DeliveryMethodID) (DeliveryMethod, error)
	ListRentalOptions(ctx context.Context) ([]RentalOption, error)
	RentalOptionByID(ctx context.Context, id RentalOptionID) (RentalOption, error)
}
