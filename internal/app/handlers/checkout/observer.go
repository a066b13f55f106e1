package checkout

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"rentmob/internal/app/commands"
	"rentmob/internal/domain/payment"
)

// RedirectEvent is one navigation observed while the customer sits on
// the hosted checkout page.
type RedirectEvent struct {
	OrderID  string
	URL      string
	Snapshot *RentalSnapshot
}

// RedirectObserver turns redirect URLs into settlement commands. It is
// the only component that interprets gateway URLs; everything downstream
// works with explicit outcomes. One payment.Attempt is tracked per
// order, so the duplicate navigation events the hosted page fires on
// its way out settle nothing twice.
type RedirectObserver struct {
	Bus    commands.Bus
	Logger *slog.Logger
	Now    func() time.Time

	mu       sync.Mutex
	attempts map[string]*payment.Attempt
}

// Observe classifies the URL and dispatches the matching settlement
// command. Indeterminate URLs are ignored: the next navigation event
// simply runs the classifier again. A decisive URL settles the order's
// attempt first; once settled, later redirects are dropped.
func (o *RedirectObserver) Observe(ctx context.Context, ev RedirectEvent) (payment.Outcome, error) {
	outcome := payment.Classify(ev.URL)
	if outcome == payment.OutcomeIndeterminate {
		if o.Logger != nil {
			o.Logger.DebugContext(ctx, "redirect carried no verdict", "order_id", ev.OrderID)
		}
		return outcome, nil
	}

	if err := o.settle(ev, outcome); err != nil {
		if errors.Is(err, payment.ErrAttemptSettled) {
			if o.Logger != nil {
				o.Logger.DebugContext(ctx, "attempt already settled, dropping redirect", "order_id", ev.OrderID)
			}
			return outcome, nil
		}
		return outcome, err
	}

	switch outcome {
	case payment.OutcomeSuccess:
		_, err := commands.Dispatch[ConfirmPaymentCommand, *ConfirmPaymentResult](ctx, o.Bus, ConfirmPaymentCommand{
			OrderID:  ev.OrderID,
			Snapshot: ev.Snapshot,
		})
		if err != nil {
			return outcome, err
		}
	case payment.OutcomeFailure:
		_, err := commands.Dispatch[FailPaymentCommand, *FailPaymentResult](ctx, o.Bus, FailPaymentCommand{
			OrderID: ev.OrderID,
			Reason:  "gateway redirect reported failure",
		})
		if err != nil {
			return outcome, err
		}
	}
	return outcome, nil
}

// settle records the outcome on the order's attempt, creating the
// attempt the first time the order is seen. ErrAttemptSettled marks a
// duplicate: the settlement command for this attempt already went out.
func (o *RedirectObserver) settle(ev RedirectEvent, outcome payment.Outcome) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.attempts == nil {
		o.attempts = make(map[string]*payment.Attempt)
	}
	att, ok := o.attempts[ev.OrderID]
	if !ok {
		a := payment.NewAttempt(ev.OrderID, attemptURL(ev), o.now())
		att = &a
		o.attempts[ev.OrderID] = att
	}
	return att.Settle(outcome, o.now())
}

func attemptURL(ev RedirectEvent) string {
	if ev.Snapshot != nil && ev.Snapshot.PaymentURL != "" {
		return ev.Snapshot.PaymentURL
	}
	return ev.URL
}

func (o *RedirectObserver) now() time.Time {
	if o.Now != nil {
		return o.Now()
	}
	return time.Now().UTC()
}
