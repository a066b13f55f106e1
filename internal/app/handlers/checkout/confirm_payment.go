package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"rentmob/internal/app/commands"
	"rentmob/internal/app/middleware"
	"rentmob/internal/app/outbox"
	"rentmob/internal/app/uow"
	"rentmob/internal/domain/catalog"
	domainrental "rentmob/internal/domain/rental"
	"rentmob/internal/domain/shared/daterange"
	"rentmob/internal/domain/shared/money"
)

const confirmPaymentKey = "checkout.confirm_payment"

// RentalSnapshot carries the submitted booking data alongside a payment
// confirmation, so a rental lost between token issue and settlement can
// still be recreated in its terminal state.
type RentalSnapshot struct {
	RentalID        string
	CustomerID      string
	CarID           string
	CityID          string
	StartDate       time.Time
	EndDate         time.Time
	StartTime       domainrental.Clock
	DeliveryID      string
	RentalOptionID  string
	DeliveryAddress string
	TotalCost       int64
	PaymentURL      string
}

// ConfirmPaymentCommand settles a successful payment against its rental.
// It is idempotent by order id: the hosted checkout page can redirect
// several times in quick succession and the rental is confirmed once.
type ConfirmPaymentCommand struct {
	OrderID  string
	Snapshot *RentalSnapshot
}

func (c ConfirmPaymentCommand) Key() string { return confirmPaymentKey }

func (c ConfirmPaymentCommand) IdempotencyKey() string {
	if c.OrderID == "" {
		return ""
	}
	return confirmPaymentKey + ":" + c.OrderID
}

func (c ConfirmPaymentCommand) ResultPrototype() any { return &ConfirmPaymentResult{} }

type ConfirmPaymentResult struct {
	OrderID     string `json:"order_id"`
	BookingCode string `json:"kode_penyewaan"`
	Status      string `json:"status"`
}

type ConfirmPaymentHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Now        func() time.Time
}

func (h *ConfirmPaymentHandler) Handle(ctx context.Context, cmd ConfirmPaymentCommand) (*ConfirmPaymentResult, error) {
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

	result, err := h.reconcile(ctx, unit, cmd)
	if err != nil {
		return nil, err
	}

	if managed {
		if err := unit.Commit(ctx); err != nil {
			return nil, err
		}
		committed = true
	}
	return result, nil
}

// reconcile confirms an existing rental, or rebuilds one from the
// snapshot when the record never made it to storage. A write failure gets
// one follow-up existence check before the flow gives up: the payment has
// settled, so "contact support" beats silently losing the booking.
func (h *ConfirmPaymentHandler) reconcile(ctx context.Context, unit uow.UnitOfWork, cmd ConfirmPaymentCommand) (*ConfirmPaymentResult, error) {
	orderID := domainrental.OrderID(cmd.OrderID)

	rec, err := unit.Rentals().ByOrderID(ctx, orderID)
	switch {
	case err == nil:
		return h.confirmExisting(ctx, unit, rec)
	case errors.Is(err, domainrental.ErrRentalNotFound):
	default:
		return nil, err
	}

	if cmd.Snapshot == nil {
		return nil, fmt.Errorf("%w: order %s has no stored rental and no snapshot", ErrReconciliationFailed, cmd.OrderID)
	}

	rec, err = h.rentalFromSnapshot(orderID, cmd.Snapshot)
	if err != nil {
		return nil, err
	}
	if err := rec.ConfirmPayment(h.newBookingCode(), h.now()); err != nil {
		return nil, err
	}
	if saveErr := unit.Rentals().Save(ctx, rec); saveErr != nil {
		// A concurrent confirmation may have beaten this one to the write.
		again, err := unit.Rentals().ByOrderID(ctx, orderID)
		if err == nil {
			return h.confirmExisting(ctx, unit, again)
		}
		return nil, fmt.Errorf("%w: %v", ErrReconciliationFailed, saveErr)
	}
	if err := h.recordEvents(ctx, rec); err != nil {
		return nil, err
	}
	return confirmResult(rec), nil
}

func (h *ConfirmPaymentHandler) confirmExisting(ctx context.Context, unit uow.UnitOfWork, rec *domainrental.Rental) (*ConfirmPaymentResult, error) {
	switch rec.State {
	case domainrental.StateConfirmed:
		return confirmResult(rec), nil
	case domainrental.StateAwaitingPayment:
	default:
		return nil, fmt.Errorf("%w: order %s is %s", ErrReconciliationFailed, rec.OrderID, rec.State)
	}
	if err := rec.ConfirmPayment(h.newBookingCode(), h.now()); err != nil {
		return nil, err
	}
	if err := unit.Rentals().Save(ctx, rec); err != nil {
		again, fetchErr := unit.Rentals().ByOrderID(ctx, rec.OrderID)
		if fetchErr == nil && again.State == domainrental.StateConfirmed {
			return confirmResult(again), nil
		}
		return nil, fmt.Errorf("%w: %v", ErrReconciliationFailed, err)
	}
	if err := h.recordEvents(ctx, rec); err != nil {
		return nil, err
	}
	return confirmResult(rec), nil
}

func (h *ConfirmPaymentHandler) rentalFromSnapshot(orderID domainrental.OrderID, snap *RentalSnapshot) (*domainrental.Rental, error) {
	end := daterange.EnsureMinimum(snap.StartDate, snap.EndDate)
	period, err := daterange.New(snap.StartDate, end)
	if err != nil {
		return nil, err
	}
	id := snap.RentalID
	if id == "" {
		id = uuid.NewString()
	}
	return domainrental.NewRental(domainrental.CreateParams{
		ID:              domainrental.RentalID(id),
		OrderID:         orderID,
		CustomerID:      snap.CustomerID,
		CarID:           catalog.CarID(snap.CarID),
		CityID:          catalog.CityID(snap.CityID),
		Period:          period,
		StartTime:       snap.StartTime,
		DeliveryID:      catalog.DeliveryMethodID(snap.DeliveryID),
		OptionID:        catalog.RentalOptionID(snap.RentalOptionID),
		DeliveryAddress: snap.DeliveryAddress,
		TotalCost:       money.IDR(snap.TotalCost),
		PaymentURL:      snap.PaymentURL,
		CreatedAt:       h.now(),
	})
}

func (h *ConfirmPaymentHandler) recordEvents(ctx context.Context, rec *domainrental.Rental) error {
	pending := rec.PendingEvents()
	rec.ClearEvents()
	encoder := h.Encoder
	if encoder == nil {
		encoder = outbox.JSONEventEncoder{}
	}
	return outbox.RecordDomainEvents(ctx, h.Outbox, encoder, pending)
}

func (h *ConfirmPaymentHandler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now().UTC()
}

func (h *ConfirmPaymentHandler) newBookingCode() string {
	short := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))[:8]
	return "RENT-" + short
}

func confirmResult(rec *domainrental.Rental) *ConfirmPaymentResult {
	return &ConfirmPaymentResult{
		OrderID:     string(rec.OrderID),
		BookingCode: rec.BookingCode,
		Status:      string(rec.State),
	}
}

var _ commands.Handler[ConfirmPaymentCommand, *ConfirmPaymentResult] = (*ConfirmPaymentHandler)(nil)
var _ middleware.IdempotentCommand = ConfirmPaymentCommand{}
