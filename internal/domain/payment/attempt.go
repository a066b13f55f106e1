package payment

import (
	"errors"
	"time"
)

var ErrAttemptSettled = errors.New("payment: attempt already settled")

type Status string

const (
	StatusPending Status = "PENDING"
	StatusSuccess Status = "SUCCESS"
	StatusFailure Status = "FAILURE"
)

// Attempt tracks one hosted-checkout session from token issuance to the
// classified redirect. Success and Failure are terminal; a retry always
// starts a new attempt with a new order id.
type Attempt struct {
	OrderID    string
	PaymentURL string
	Status     Status
	OpenedAt   time.Time
	SettledAt  time.Time
}

func NewAttempt(orderID, paymentURL string, now time.Time) Attempt {
	return Attempt{
		OrderID:    orderID,
		PaymentURL: paymentURL,
		Status:     StatusPending,
		OpenedAt:   now.UTC(),
	}
}

// Settle applies a classified outcome. Indeterminate outcomes leave the
// attempt untouched; a settled attempt rejects further transitions so
// duplicate navigation events cannot fire twice.
func (a *Attempt) Settle(outcome Outcome, now time.Time) error {
	if outcome == OutcomeIndeterminate {
		return nil
	}
	if a.Status != StatusPending {
		return ErrAttemptSettled
	}
	switch outcome {
	case OutcomeSuccess:
		a.Status = StatusSuccess
	case OutcomeFailure:
		a.Status = StatusFailure
	}
	a.SettledAt = now.UTC()
	return nil
}
