package checkout

import "errors"

var (
	// ErrCarUnavailable means an overlapping reservation holds the stock
	// for the requested period; the customer must change dates or car.
	ErrCarUnavailable = errors.New("checkout: car is not available for the selected period")

	// ErrTokenRequest wraps gateway failures while opening the hosted
	// checkout session.
	ErrTokenRequest = errors.New("checkout: payment session could not be created")

	// ErrReconciliationFailed means the payment looks settled but the
	// rental record could not be confirmed even after a follow-up
	// existence check. Money may have moved without a confirmed order,
	// so callers surface a distinct contact-support outcome.
	ErrReconciliationFailed = errors.New("checkout: payment succeeded but the order could not be confirmed")
)
