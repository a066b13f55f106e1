package rental

import (
	"time"

	"rentmob/internal/domain/catalog"
	"rentmob/internal/domain/shared/daterange"
	"rentmob/internal/domain/shared/money"
)

type RentalRequested struct {
	OrderID OrderID
	CarID   catalog.CarID
	Period  daterange.Period
	Total   money.Money
	At      time.Time
}

func (e RentalRequested) EventName() string     { return "rental.requested" }
func (e RentalRequested) AggregateID() string   { return string(e.OrderID) }
func (e RentalRequested) OccurredAt() time.Time { return e.At }

type PaymentSucceeded struct {
	OrderID OrderID
	At      time.Time
}

func (e PaymentSucceeded) EventName() string     { return "rental.payment_succeeded" }
func (e PaymentSucceeded) AggregateID() string   { return string(e.OrderID) }
func (e PaymentSucceeded) OccurredAt() time.Time { return e.At }

type PaymentFailed struct {
	OrderID OrderID
	Reason  string
	At      time.Time
}

func (e PaymentFailed) EventName() string     { return "rental.payment_failed" }
func (e PaymentFailed) AggregateID() string   { return string(e.OrderID) }
func (e PaymentFailed) OccurredAt() time.Time { return e.At }

type RentalConfirmed struct {
	OrderID     OrderID
	BookingCode string
	At          time.Time
}

func (e RentalConfirmed) EventName() string     { return "rental.confirmed" }
func (e RentalConfirmed) AggregateID() string   { return string(e.OrderID) }
func (e RentalConfirmed) OccurredAt() time.Time { return e.At }
