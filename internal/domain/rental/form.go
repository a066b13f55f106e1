package rental

import (
	"fmt"
	"strings"
	"time"

	"rentmob/internal/domain/catalog"
	"rentmob/internal/domain/pricing"
	"rentmob/internal/domain/shared/daterange"
)

// FormState is the booking form as the customer edits it. It is immutable:
// every mutation goes through a With* transition returning the next state
// with the total cost already recomputed, so TotalCost can never go stale.
type FormState struct {
	CarID           catalog.CarID
	CityID          catalog.CityID
	Period          daterange.Period
	StartTime       *Clock
	Delivery        catalog.DeliveryMethod
	Option          catalog.RentalOption
	DeliveryAddress string
	Cost            pricing.CostBreakdown
}

// NewFormState seeds the form from the chosen car and requested dates,
// stretching the range to the one-day minimum.
func NewFormState(car *catalog.Car, city catalog.CityID, start, end time.Time) (FormState, error) {
	if car == nil {
		return FormState{}, catalog.ErrCarNotFound
	}
	end = daterange.EnsureMinimum(start, end)
	period, err := daterange.New(start, end)
	if err != nil {
		return FormState{}, err
	}
	f := FormState{
		CarID:  car.ID,
		CityID: city,
		Period: period,
	}
	f.Cost = pricing.CostBreakdown{
		Days:      period.Days(),
		DailyRate: car.DailyRate,
	}
	if err := f.Cost.RecalculateTotal(); err != nil {
		return FormState{}, err
	}
	return f, nil
}

// WithPeriod replaces the rental dates. The end date is re-validated
// against the minimum whenever either endpoint changes.
func (f FormState) WithPeriod(start, end time.Time) (FormState, error) {
	end = daterange.EnsureMinimum(start, end)
	period, err := daterange.New(start, end)
	if err != nil {
		return FormState{}, err
	}
	f.Period = period
	if err := f.reprice(); err != nil {
		return FormState{}, err
	}
	return f, nil
}

// WithStartTime selects the pickup slot, enforcing the operational window
// and the no-past-slot rule for same-day rentals.
func (f FormState) WithStartTime(c Clock, now time.Time) (FormState, error) {
	if !IsTimeValid(c, f.Period.Start, now) {
		return FormState{}, ErrInvalidPickupTime
	}
	f.StartTime = &c
	return f, nil
}

// WithDelivery selects the delivery method and folds its fee into the total.
func (f FormState) WithDelivery(m catalog.DeliveryMethod) (FormState, error) {
	f.Delivery = m
	if !m.RequiresAddress() {
		f.DeliveryAddress = ""
	}
	if err := f.reprice(); err != nil {
		return FormState{}, err
	}
	return f, nil
}

// WithOption selects the rental add-on and folds its per-day fee in.
func (f FormState) WithOption(o catalog.RentalOption) (FormState, error) {
	f.Option = o
	if err := f.reprice(); err != nil {
		return FormState{}, err
	}
	return f, nil
}

// WithAddress sets the delivery address; it has no cost impact.
func (f FormState) WithAddress(addr string) FormState {
	f.DeliveryAddress = addr
	return f
}

func (f *FormState) reprice() error {
	cost, err := pricing.Quote(f.Period, f.Cost.DailyRate, f.Option.FeePerDay, f.Delivery.Fee)
	if err != nil {
		return err
	}
	f.Cost = cost
	return nil
}

// FormErrors flags the required fields that block submission.
type FormErrors struct {
	DeliveryMethod  bool `json:"delivery_method"`
	RentalOption    bool `json:"rental_option"`
	DeliveryAddress bool `json:"delivery_address"`
}

func (e FormErrors) Valid() bool {
	return !e.DeliveryMethod && !e.RentalOption && !e.DeliveryAddress
}

// Validate checks the required selections. The address is mandatory only
// when the chosen method delivers to the customer.
func (f FormState) Validate() FormErrors {
	var errs FormErrors
	if f.Delivery.ID == "" {
		errs.DeliveryMethod = true
	}
	if f.Option.ID == "" {
		errs.RentalOption = true
	}
	if f.Delivery.ID != "" && f.Delivery.RequiresAddress() && strings.TrimSpace(f.DeliveryAddress) == "" {
		errs.DeliveryAddress = true
	}
	return errs
}

// ValidationError carries the per-field flags back to the HTTP boundary.
type ValidationError struct {
	Fields FormErrors
}

func (e *ValidationError) Error() string {
	missing := make([]string, 0, 3)
	if e.Fields.DeliveryMethod {
		missing = append(missing, "delivery method")
	}
	if e.Fields.RentalOption {
		missing = append(missing, "rental option")
	}
	if e.Fields.DeliveryAddress {
		missing = append(missing, "delivery address")
	}
	return fmt.Sprintf("rental: form incomplete: %s", strings.Join(missing, ", "))
}
