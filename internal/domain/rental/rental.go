package rental

import (
	"context"
	"errors"
	"time"

	"rentmob/internal/domain/catalog"
	"rentmob/internal/domain/shared/daterange"
	"rentmob/internal/domain/shared/events"
	"rentmob/internal/domain/shared/money"
)

var (
	ErrRentalNotFound  = errors.New("rental: not found")
	ErrInvalidState    = errors.New("rental: invalid state transition")
	ErrCustomerMissing = errors.New("rental: customer id required")
	ErrOrderIDMissing  = errors.New("rental: order id required")
)

type RentalID string

type OrderID string

type State string

const (
	// StateAwaitingPayment marks a rental whose gateway checkout session
	// exists but whose payment outcome is still unknown.
	StateAwaitingPayment State = "AWAITING_PAYMENT"
	StateConfirmed       State = "CONFIRMED"
	StatePaymentFailed   State = "PAYMENT_FAILED"
)

// Rental is the server-side record of one booking attempt. It is created
// when the payment token request succeeds and terminates in CONFIRMED or
// PAYMENT_FAILED; a retry is always a brand-new rental.
type Rental struct {
	ID              RentalID
	OrderID         OrderID
	CustomerID      string
	CarID           catalog.CarID
	CityID          catalog.CityID
	Period          daterange.Period
	StartTime       Clock
	DeliveryID      catalog.DeliveryMethodID
	OptionID        catalog.RentalOptionID
	DeliveryAddress string
	TotalCost       money.Money
	PaymentURL      string
	BookingCode     string
	State           State
	CreatedAt       time.Time
	UpdatedAt       time.Time
	Version         int64
	events.Recorder
}

type CreateParams struct {
	ID              RentalID
	OrderID         OrderID
	CustomerID      string
	CarID           catalog.CarID
	CityID          catalog.CityID
	Period          daterange.Period
	StartTime       Clock
	DeliveryID      catalog.DeliveryMethodID
	OptionID        catalog.RentalOptionID
	DeliveryAddress string
	TotalCost       money.Money
	PaymentURL      string
	CreatedAt       time.Time
}

func NewRental(params CreateParams) (*Rental, error) {
	if params.CustomerID == "" {
		return nil, ErrCustomerMissing
	}
	if params.OrderID == "" {
		return nil, ErrOrderIDMissing
	}
	if err := params.Period.Validate(); err != nil {
		return nil, err
	}
	now := params.CreatedAt.UTC()
	r := &Rental{
		ID:              params.ID,
		OrderID:         params.OrderID,
		CustomerID:      params.CustomerID,
		CarID:           params.CarID,
		CityID:          params.CityID,
		Period:          params.Period,
		StartTime:       params.StartTime,
		DeliveryID:      params.DeliveryID,
		OptionID:        params.OptionID,
		DeliveryAddress: params.DeliveryAddress,
		TotalCost:       params.TotalCost,
		PaymentURL:      params.PaymentURL,
		State:           StateAwaitingPayment,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	r.Record(RentalRequested{
		OrderID: r.OrderID,
		CarID:   r.CarID,
		Period:  r.Period,
		Total:   r.TotalCost,
		At:      now,
	})
	return r, nil
}

// ConfirmPayment moves the rental to CONFIRMED and assigns the booking
// code the customer uses at pickup.
func (r *Rental) ConfirmPayment(bookingCode string, now time.Time) error {
	if r.State != StateAwaitingPayment {
		return ErrInvalidState
	}
	if bookingCode == "" {
		return errors.New("rental: booking code required")
	}
	r.BookingCode = bookingCode
	r.State = StateConfirmed
	r.UpdatedAt = now.UTC()
	r.Record(PaymentSucceeded{OrderID: r.OrderID, At: r.UpdatedAt})
	r.Record(RentalConfirmed{OrderID: r.OrderID, BookingCode: bookingCode, At: r.UpdatedAt})
	return nil
}

// FailPayment records a terminal gateway failure.
func (r *Rental) FailPayment(reason string, now time.Time) error {
	if r.State != StateAwaitingPayment {
		return ErrInvalidState
	}
	r.State = StatePaymentFailed
	r.UpdatedAt = now.UTC()
	r.Record(PaymentFailed{OrderID: r.OrderID, Reason: reason, At: r.UpdatedAt})
	return nil
}

// Blocks reports whether this rental makes the car unavailable for the
// candidate period. Failed payments release the stock.
func (r *Rental) Blocks(period daterange.Period) bool {
	if r.State == StatePaymentFailed {
		return false
	}
	return r.Period.Overlaps(period)
}

type Repository interface {
	ByOrderID(ctx context.Context, id OrderID) (*Rental, error)
	Save(ctx context.Context, r *Rental) error
	ListByCar(ctx context.Context, carID catalog.CarID) ([]*Rental, error)
	ListByCustomer(ctx context.Context, customerID string) ([]*Rental, error)
}
