package checkout

import (
	"context"
	"time"

	"rentmob/internal/app/commands"
	"rentmob/internal/app/middleware"
	"rentmob/internal/app/outbox"
	"rentmob/internal/app/uow"
	domainrental "rentmob/internal/domain/rental"
)

const failPaymentKey = "checkout.fail_payment"

// FailPaymentCommand records a terminal gateway failure for an order.
// The rental stops blocking stock and any retry is a brand-new booking.
type FailPaymentCommand struct {
	OrderID string
	Reason  string
}

func (c FailPaymentCommand) Key() string { return failPaymentKey }

func (c FailPaymentCommand) IdempotencyKey() string {
	if c.OrderID == "" {
		return ""
	}
	return failPaymentKey + ":" + c.OrderID
}

func (c FailPaymentCommand) ResultPrototype() any { return &FailPaymentResult{} }

type FailPaymentResult struct {
	OrderID string `json:"order_id"`
	Status  string `json:"status"`
}

type FailPaymentHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Now        func() time.Time
}

func (h *FailPaymentHandler) Handle(ctx context.Context, cmd FailPaymentCommand) (*FailPaymentResult, error) {
	if cmd.OrderID == "" {
		return nil, domainrental.ErrOrderIDMissing
	}

	unit, managed, err := beginIfUnmanaged(ctx, h.UoWFactory)
	if err != nil {
		return nil, err
	}
	committed := false
	if managed {
		ctx = uow.ContextWithUnitOfWork(ctx, unit)
		defer func() {
			if !committed {
				_ = unit.Rollback(ctx)
			}
		}()
	}

	rec, err := unit.Rentals().ByOrderID(ctx, domainrental.OrderID(cmd.OrderID))
	if err != nil {
		return nil, err
	}
	if rec.State != domainrental.StatePaymentFailed {
		if err := rec.FailPayment(cmd.Reason, h.now()); err != nil {
			return nil, err
		}
		if err := unit.Rentals().Save(ctx, rec); err != nil {
			return nil, err
		}
		pending := rec.PendingEvents()
		rec.ClearEvents()
		encoder := h.Encoder
		if encoder == nil {
			encoder = outbox.JSONEventEncoder{}
		}
		if err := outbox.RecordDomainEvents(ctx, h.Outbox, encoder, pending); err != nil {
			return nil, err
		}
	}

	if managed {
		if err := unit.Commit(ctx); err != nil {
			return nil, err
		}
		committed = true
	}
	return &FailPaymentResult{OrderID: cmd.OrderID, Status: string(rec.State)}, nil
}

func (h *FailPaymentHandler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now().UTC()
}

var _ commands.Handler[FailPaymentCommand, *FailPaymentResult] = (*FailPaymentHandler)(nil)
var _ middleware.IdempotentCommand = FailPaymentCommand{}
