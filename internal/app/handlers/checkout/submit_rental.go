package checkout

import (
	"context"
	"fmt"
	"time"

	"rentmob/internal/app/commands"
	"rentmob/internal/app/middleware"
	"rentmob/internal/app/outbox"
	"rentmob/internal/app/policies"
	"rentmob/internal/app/uow"
	"rentmob/internal/domain/catalog"
	domainrental "rentmob/internal/domain/rental"
)

const submitRentalKey = "checkout.submit"

// SubmitRentalCommand runs one submission attempt end to end: form
// validation, stock check, gateway token request, and persisting the
// rental in AWAITING_PAYMENT. The availability check strictly precedes
// the token request and neither is retried automatically.
type SubmitRentalCommand struct {
	CommandID       string
	CustomerID      string
	CarID           string
	CityID          string
	StartDate       time.Time
	EndDate         time.Time
	StartTime       domainrental.Clock
	DeliveryID      string
	RentalOptionID  string
	DeliveryAddress string
}

func (c SubmitRentalCommand) Key() string { return submitRentalKey }

// GateKey limits each customer to one in-flight submission, replacing the
// ad hoc submit-button flag of older clients.
func (c SubmitRentalCommand) GateKey() string { return c.CustomerID }

type SubmitRentalResult struct {
	OrderID    string `json:"order_id"`
	PaymentURL string `json:"redirect_url"`
	TotalCost  int64  `json:"total_biaya"`
}

type SubmitRentalHandler struct {
	UoWFactory uow.UoWFactory
	Gateway    policies.PaymentGateway
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Now        func() time.Time
	NewOrderID func() string
}

func (h *SubmitRentalHandler) Handle(ctx context.Context, cmd SubmitRentalCommand) (*SubmitRentalResult, error) {
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

	now := h.now()
	form, err := h.buildForm(ctx, unit, cmd, now)
	if err != nil {
		return nil, err
	}
	if errs := form.Validate(); !errs.Valid() {
		return nil, &domainrental.ValidationError{Fields: errs}
	}
	if err := form.Period.ValidateStart(now); err != nil {
		return nil, err
	}

	available, err := stockAvailable(ctx, unit, form.CarID, form.Period)
	if err != nil {
		return nil, err
	}
	if !available {
		return nil, ErrCarUnavailable
	}

	car, err := unit.Catalog().CarByID(ctx, form.CarID)
	if err != nil {
		return nil, err
	}
	orderID := h.newOrderID()
	session, err := h.Gateway.CreateTransaction(ctx, policies.TransactionRequest{
		OrderID:     orderID,
		GrossAmount: form.Cost.Total.Amount,
		CustomerID:  cmd.CustomerID,
		ItemName:    fmt.Sprintf("%s %s", car.Brand, car.Model),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTokenRequest, err)
	}

	var startTime domainrental.Clock
	if form.StartTime != nil {
		startTime = *form.StartTime
	}
	rec, err := domainrental.NewRental(domainrental.CreateParams{
		ID:              domainrental.RentalID(cmd.CommandID),
		OrderID:         domainrental.OrderID(session.OrderID),
		CustomerID:      cmd.CustomerID,
		CarID:           form.CarID,
		CityID:          form.CityID,
		Period:          form.Period,
		StartTime:       startTime,
		DeliveryID:      form.Delivery.ID,
		OptionID:        form.Option.ID,
		DeliveryAddress: form.DeliveryAddress,
		TotalCost:       form.Cost.Total,
		PaymentURL:      session.RedirectURL,
		CreatedAt:       now,
	})
	if err != nil {
		return nil, err
	}
	if err := unit.Rentals().Save(ctx, rec); err != nil {
		return nil, err
	}

	pending := rec.PendingEvents()
	rec.ClearEvents()
	if err := outbox.RecordDomainEvents(ctx, h.Outbox, h.encoder(), pending); err != nil {
		return nil, err
	}

	if managed {
		if err := unit.Commit(ctx); err != nil {
			return nil, err
		}
		committed = true
	}

	return &SubmitRentalResult{
		OrderID:    session.OrderID,
		PaymentURL: session.RedirectURL,
		TotalCost:  form.Cost.Total.Amount,
	}, nil
}

// buildForm replays the submitted selections through the form transitions
// so the total is recomputed server-side, never trusted from the client.
func (h *SubmitRentalHandler) buildForm(ctx context.Context, unit uow.UnitOfWork, cmd SubmitRentalCommand, now time.Time) (domainrental.FormState, error) {
	var zero domainrental.FormState
	car, err := unit.Catalog().CarByID(ctx, catalog.CarID(cmd.CarID))
	if err != nil {
		return zero, err
	}
	form, err := domainrental.NewFormState(car, catalog.CityID(cmd.CityID), cmd.StartDate, cmd.EndDate)
	if err != nil {
		return zero, err
	}
	if cmd.DeliveryID != "" {
		method, err := unit.Catalog().DeliveryMethodByID(ctx, catalog.DeliveryMethodID(cmd.DeliveryID))
		if err != nil {
			return zero, err
		}
		form, err = form.WithDelivery(method)
		if err != nil {
			return zero, err
		}
	}
	if cmd.RentalOptionID != "" {
		option, err := unit.Catalog().RentalOptionByID(ctx, catalog.RentalOptionID(cmd.RentalOptionID))
		if err != nil {
			return zero, err
		}
		form, err = form.WithOption(option)
		if err != nil {
			return zero, err
		}
	}
	if cmd.DeliveryAddress != "" {
		form = form.WithAddress(cmd.DeliveryAddress)
	}
	if cmd.StartTime != (domainrental.Clock{}) {
		form, err = form.WithStartTime(cmd.StartTime, now)
		if err != nil {
			return zero, err
		}
	}
	return form, nil
}

func (h *SubmitRentalHandler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now().UTC()
}

func (h *SubmitRentalHandler) newOrderID() string {
	if h.NewOrderID != nil {
		return h.NewOrderID()
	}
	return fmt.Sprintf("ord-%d", time.Now().UnixNano())
}

func (h *SubmitRentalHandler) encoder() outbox.EventEncoder {
	if h.Encoder != nil {
		return h.Encoder
	}
	return outbox.JSONEventEncoder{}
}

var _ commands.Handler[SubmitRentalCommand, *SubmitRentalResult] = (*SubmitRentalHandler)(nil)
var _ middleware.GatedCommand = SubmitRentalCommand{}
