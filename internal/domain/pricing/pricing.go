package pricing

import (
	"errors"

	"rentmob/internal/domain/shared/daterange"
	"rentmob/internal/domain/shared/money"
)

var (
	ErrInvalidInput      = errors.New("pricing: invalid numeric input")
	ErrNegativeComponent = errors.New("pricing: fee components cannot be negative")
	ErrCurrencyUnset     = errors.New("pricing: currency must be defined")
)

// CostBreakdown itemises a rental quote. Total is always derived from the
// other fields, never set directly.
type CostBreakdown struct {
	Days            int
	DailyRate       money.Money
	OptionFeePerDay money.Money
	DeliveryFee     money.Money
	Total           money.Money
}

func (c *CostBreakdown) Validate() error {
	if c.DailyRate.Currency == "" {
		return ErrCurrencyUnset
	}
	if c.Days <= 0 {
		return ErrInvalidInput
	}
	if c.DailyRate.IsNegative() {
		return ErrInvalidInput
	}
	if c.OptionFeePerDay.IsNegative() || c.DeliveryFee.IsNegative() {
		return ErrNegativeComponent
	}
	return nil
}

// RecalculateTotal recomputes Total as
// dailyRate*days + optionFeePerDay*days + deliveryFee.
func (c *CostBreakdown) RecalculateTotal() error {
	if err := c.Validate(); err != nil {
		return err
	}
	total := c.DailyRate.Multiply(int64(c.Days))
	if !c.OptionFeePerDay.IsZero() {
		sum, err := total.Add(c.OptionFeePerDay.Multiply(int64(c.Days)))
		if err != nil {
			return err
		}
		total = sum
	}
	if !c.DeliveryFee.IsZero() {
		sum, err := total.Add(c.DeliveryFee)
		if err != nil {
			return err
		}
		total = sum
	}
	c.Total = total
	return nil
}

// Quote prices a rental period: day count comes from the period (minimum
// one day), fees default to zero when the form has not selected them yet.
func Quote(period daterange.Period, dailyRate, optionFeePerDay, deliveryFee money.Money) (CostBreakdown, error) {
	if err := period.Validate(); err != nil {
		return CostBreakdown{}, err
	}
	breakdown := CostBreakdown{
		Days:            period.Days(),
		DailyRate:       dailyRate,
		OptionFeePerDay: normalize(optionFeePerDay, dailyRate.Currency),
		DeliveryFee:     normalize(deliveryFee, dailyRate.Currency),
	}
	if err := breakdown.RecalculateTotal(); err != nil {
		return CostBreakdown{}, err
	}
	return breakdown, nil
}

// normalize lets callers pass a zero-valued Money for "no fee selected".
func normalize(m money.Money, currency string) money.Money {
	if m.Currency == "" {
		return money.Money{Amount: m.Amount, Currency: currency}
	}
	return m
}
