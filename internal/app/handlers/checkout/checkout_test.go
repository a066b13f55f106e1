package checkout_test

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"rentmob/internal/app/commands"
	"rentmob/internal/app/handlers/checkout"
	"rentmob/internal/app/middleware"
	"rentmob/internal/app/policies"
	"rentmob/internal/domain/catalog"
	"rentmob/internal/domain/payment"
	domainrental "rentmob/internal/domain/rental"
	"rentmob/internal/domain/shared/money"
	"rentmob/internal/infra/storage/memory"
)

type countingGateway struct {
	calls atomic.Int64
	err   error
}

func (g *countingGateway) CreateTransaction(_ context.Context, req policies.TransactionRequest) (policies.CheckoutSession, error) {
	g.calls.Add(1)
	if g.err != nil {
		return policies.CheckoutSession{}, g.err
	}
	return policies.CheckoutSession{
		OrderID:     req.OrderID,
		RedirectURL: "https://pay.example.test/redirect/" + req.OrderID,
	}, nil
}

type env struct {
	factory  *memory.Factory
	gateway  *countingGateway
	bus      commands.Bus
	observer *checkout.RedirectObserver
	now      time.Time
}

func newEnv(t *testing.T) *env {
	t.Helper()

	factory := memory.NewFactory()
	cat := factory.Catalog()
	cat.AddCity(catalog.City{ID: "city-1", Name: "Yogyakarta"})
	if err := cat.SaveCar(context.Background(), &catalog.Car{
		ID:        "car-1",
		CityID:    "city-1",
		Brand:     "Toyota",
		Model:     "Avanza",
		Year:      2022,
		DailyRate: money.IDR(350000),
	}); err != nil {
		t.Fatalf("seed car: %v", err)
	}
	cat.AddDeliveryMethod(catalog.DeliveryMethod{ID: "dm-pickup", Name: "Ambil di lokasi"})
	cat.AddDeliveryMethod(catalog.DeliveryMethod{ID: "dm-deliver", Name: "Diantar", Fee: money.IDR(50000)})
	cat.AddRentalOption(catalog.RentalOption{ID: "opt-self", Name: "Lepas kunci"})
	cat.AddRentalOption(catalog.RentalOption{ID: "opt-driver", Name: "Dengan sopir", FeePerDay: money.IDR(150000)})

	gateway := &countingGateway{}
	box := memory.NewOutbox()
	now := time.Date(2026, time.March, 9, 10, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }

	orderSeq := new(atomic.Int64)
	submit := &checkout.SubmitRentalHandler{
		Gateway: gateway,
		Outbox:  box,
		Now:     clock,
		NewOrderID: func() string {
			return fmt.Sprintf("ord-%03d", orderSeq.Add(1))
		},
	}
	confirm := &checkout.ConfirmPaymentHandler{Outbox: box, Now: clock}
	fail := &checkout.FailPaymentHandler{Outbox: box, Now: clock}

	base := commands.NewInMemoryBus()
	commands.RegisterHandler(base, checkout.SubmitRentalCommand{}.Key(), submit)
	commands.RegisterHandler(base, checkout.ConfirmPaymentCommand{}.Key(), confirm)
	commands.RegisterHandler(base, checkout.FailPaymentCommand{}.Key(), fail)

	bus := middleware.ChainCommands(base,
		middleware.SingleFlight(),
		middleware.Idempotency(memory.NewIdempotencyStore(), nil,
			checkout.ErrReconciliationFailed,
			domainrental.ErrRentalNotFound,
		),
		middleware.Transaction(factory, nil),
		middleware.OutboxFlush(box),
	)

	return &env{
		factory:  factory,
		gateway:  gateway,
		bus:      bus,
		observer: &checkout.RedirectObserver{Bus: bus, Now: clock},
		now:      now,
	}
}

func (e *env) submitCommand() checkout.SubmitRentalCommand {
	return checkout.SubmitRentalCommand{
		CommandID:      "cmd-1",
		CustomerID:     "cust-1",
		CarID:          "car-1",
		CityID:         "city-1",
		StartDate:      e.now.AddDate(0, 0, 2),
		EndDate:        e.now.AddDate(0, 0, 4),
		StartTime:      domainrental.Clock{Hour: 9, Minute: 30},
		DeliveryID:     "dm-pickup",
		RentalOptionID: "opt-self",
	}
}

func TestSubmitRentalCreatesAwaitingPayment(t *testing.T) {
	e := newEnv(t)

	res, err := commands.Dispatch[checkout.SubmitRentalCommand, *checkout.SubmitRentalResult](context.Background(), e.bus, e.submitCommand())
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if res.OrderID == "" || res.PaymentURL == "" {
		t.Fatalf("missing session data: %+v", res)
	}
	if res.TotalCost != 2*350000 {
		t.Fatalf("total = %d, want %d", res.TotalCost, 2*350000)
	}

	rec, err := e.factory.Rentals().ByOrderID(context.Background(), domainrental.OrderID(res.OrderID))
	if err != nil {
		t.Fatalf("stored rental: %v", err)
	}
	if rec.State != domainrental.StateAwaitingPayment {
		t.Fatalf("state = %s, want %s", rec.State, domainrental.StateAwaitingPayment)
	}
}

func TestSubmitRentalUnavailableCarSkipsGateway(t *testing.T) {
	e := newEnv(t)

	if _, err := commands.Dispatch[checkout.SubmitRentalCommand, *checkout.SubmitRentalResult](context.Background(), e.bus, e.submitCommand()); err != nil {
		t.Fatalf("first submit: %v", err)
	}
	callsAfterFirst := e.gateway.calls.Load()

	second := e.submitCommand()
	second.CommandID = "cmd-2"
	second.CustomerID = "cust-2"
	second.StartDate = e.now.AddDate(0, 0, 3)
	second.EndDate = e.now.AddDate(0, 0, 5)
	_, err := commands.Dispatch[checkout.SubmitRentalCommand, *checkout.SubmitRentalResult](context.Background(), e.bus, second)
	if !errors.Is(err, checkout.ErrCarUnavailable) {
		t.Fatalf("err = %v, want ErrCarUnavailable", err)
	}
	if got := e.gateway.calls.Load(); got != callsAfterFirst {
		t.Fatalf("gateway called %d times for unavailable car, want %d", got, callsAfterFirst)
	}
}

func TestSubmitRentalValidationFailureSkipsGateway(t *testing.T) {
	e := newEnv(t)

	cmd := e.submitCommand()
	cmd.DeliveryID = "dm-deliver"
	cmd.DeliveryAddress = ""
	_, err := commands.Dispatch[checkout.SubmitRentalCommand, *checkout.SubmitRentalResult](context.Background(), e.bus, cmd)

	var verr *domainrental.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("err = %v, want validation error", err)
	}
	if !verr.Fields.DeliveryAddress {
		t.Fatalf("expected address flagged, got %+v", verr.Fields)
	}
	if got := e.gateway.calls.Load(); got != 0 {
		t.Fatalf("gateway called %d times on invalid form, want 0", got)
	}
}

func TestSubmitRentalGatewayErrorWrapped(t *testing.T) {
	e := newEnv(t)
	e.gateway.err = errors.New("upstream 503")

	_, err := commands.Dispatch[checkout.SubmitRentalCommand, *checkout.SubmitRentalResult](context.Background(), e.bus, e.submitCommand())
	if !errors.Is(err, checkout.ErrTokenRequest) {
		t.Fatalf("err = %v, want ErrTokenRequest", err)
	}
}

func TestRepeatedSuccessRedirectConfirmsOnce(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	res, err := commands.Dispatch[checkout.SubmitRentalCommand, *checkout.SubmitRentalResult](ctx, e.bus, e.submitCommand())
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	url := res.PaymentURL + "?transaction_status=capture&status_code=200"
	var code string
	for i := 0; i < 3; i++ {
		outcome, err := e.observer.Observe(ctx, checkout.RedirectEvent{OrderID: res.OrderID, URL: url})
		if err != nil {
			t.Fatalf("observe #%d: %v", i+1, err)
		}
		if outcome != payment.OutcomeSuccess {
			t.Fatalf("outcome = %v, want success", outcome)
		}
		rec, err := e.factory.Rentals().ByOrderID(ctx, domainrental.OrderID(res.OrderID))
		if err != nil {
			t.Fatalf("fetch after observe #%d: %v", i+1, err)
		}
		if code == "" {
			code = rec.BookingCode
		} else if rec.BookingCode != code {
			t.Fatalf("booking code changed across redirects: %s then %s", code, rec.BookingCode)
		}
	}

	rec, err := e.factory.Rentals().ByOrderID(ctx, domainrental.OrderID(res.OrderID))
	if err != nil {
		t.Fatalf("final fetch: %v", err)
	}
	if rec.State != domainrental.StateConfirmed {
		t.Fatalf("state = %s, want %s", rec.State, domainrental.StateConfirmed)
	}
	if rec.BookingCode == "" {
		t.Fatal("confirmed rental missing booking code")
	}
}

func TestIndeterminateRedirectLeavesRentalPending(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	res, err := commands.Dispatch[checkout.SubmitRentalCommand, *checkout.SubmitRentalResult](ctx, e.bus, e.submitCommand())
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	outcome, err := e.observer.Observe(ctx, checkout.RedirectEvent{OrderID: res.OrderID, URL: res.PaymentURL + "?foo=bar"})
	if err != nil {
		t.Fatalf("observe: %v", err)
	}
	if outcome != payment.OutcomeIndeterminate {
		t.Fatalf("outcome = %v, want indeterminate", outcome)
	}

	rec, err := e.factory.Rentals().ByOrderID(ctx, domainrental.OrderID(res.OrderID))
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if rec.State != domainrental.StateAwaitingPayment {
		t.Fatalf("state = %s, want %s", rec.State, domainrental.StateAwaitingPayment)
	}
}

func TestFailedPaymentReleasesStock(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	res, err := commands.Dispatch[checkout.SubmitRentalCommand, *checkout.SubmitRentalResult](ctx, e.bus, e.submitCommand())
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	outcome, err := e.observer.Observe(ctx, checkout.RedirectEvent{OrderID: res.OrderID, URL: res.PaymentURL + "?transaction_status=deny"})
	if err != nil {
		t.Fatalf("observe: %v", err)
	}
	if outcome != payment.OutcomeFailure {
		t.Fatalf("outcome = %v, want failure", outcome)
	}

	retry := e.submitCommand()
	retry.CommandID = "cmd-retry"
	if _, err := commands.Dispatch[checkout.SubmitRentalCommand, *checkout.SubmitRentalResult](ctx, e.bus, retry); err != nil {
		t.Fatalf("retry after failed payment: %v", err)
	}
}

func TestConfirmRebuildsLostRentalFromSnapshot(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	snap := &checkout.RentalSnapshot{
		CustomerID: "cust-9",
		CarID:      "car-1",
		CityID:     "city-1",
		StartDate:  e.now.AddDate(0, 0, 2),
		EndDate:    e.now.AddDate(0, 0, 4),
		StartTime:  domainrental.Clock{Hour: 9, Minute: 30},
		DeliveryID: "dm-pickup",
		TotalCost:  700000,
	}
	res, err := commands.Dispatch[checkout.ConfirmPaymentCommand, *checkout.ConfirmPaymentResult](ctx, e.bus, checkout.ConfirmPaymentCommand{
		OrderID:  "ord-lost",
		Snapshot: snap,
	})
	if err != nil {
		t.Fatalf("confirm from snapshot: %v", err)
	}
	if res.BookingCode == "" {
		t.Fatal("missing booking code")
	}

	rec, err := e.factory.Rentals().ByOrderID(ctx, "ord-lost")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if rec.State != domainrental.StateConfirmed {
		t.Fatalf("state = %s, want %s", rec.State, domainrental.StateConfirmed)
	}
}

type recordingBus struct {
	cmds []commands.Command
}

func (b *recordingBus) Dispatch(_ context.Context, cmd commands.Command) (any, error) {
	b.cmds = append(b.cmds, cmd)
	switch cmd.(type) {
	case checkout.ConfirmPaymentCommand:
		return &checkout.ConfirmPaymentResult{}, nil
	case checkout.FailPaymentCommand:
		return &checkout.FailPaymentResult{}, nil
	}
	return nil, nil
}

func TestObserverDispatchesOneSettlementPerAttempt(t *testing.T) {
	bus := &recordingBus{}
	obs := &checkout.RedirectObserver{Bus: bus}
	ctx := context.Background()

	success := "https://pay.example.test/finish?transaction_status=capture"
	for i := 0; i < 3; i++ {
		outcome, err := obs.Observe(ctx, checkout.RedirectEvent{OrderID: "ord-1", URL: success})
		if err != nil {
			t.Fatalf("observe #%d: %v", i+1, err)
		}
		if outcome != payment.OutcomeSuccess {
			t.Fatalf("observe #%d: outcome = %v, want success", i+1, outcome)
		}
	}
	// A contradictory redirect for the settled attempt is dropped too.
	if _, err := obs.Observe(ctx, checkout.RedirectEvent{OrderID: "ord-1", URL: "https://pay.example.test/finish?transaction_status=deny"}); err != nil {
		t.Fatalf("late failure redirect: %v", err)
	}
	if len(bus.cmds) != 1 {
		t.Fatalf("dispatched %d settlement commands, want 1", len(bus.cmds))
	}
	if _, ok := bus.cmds[0].(checkout.ConfirmPaymentCommand); !ok {
		t.Fatalf("dispatched %T, want ConfirmPaymentCommand", bus.cmds[0])
	}

	// A different order settles on its own attempt.
	if _, err := obs.Observe(ctx, checkout.RedirectEvent{OrderID: "ord-2", URL: "https://pay.example.test/finish?transaction_status=deny"}); err != nil {
		t.Fatalf("second order: %v", err)
	}
	if len(bus.cmds) != 2 {
		t.Fatalf("dispatched %d settlement commands, want 2", len(bus.cmds))
	}
	if _, ok := bus.cmds[1].(checkout.FailPaymentCommand); !ok {
		t.Fatalf("dispatched %T, want FailPaymentCommand", bus.cmds[1])
	}
}

func TestObserverIndeterminateKeepsAttemptOpen(t *testing.T) {
	bus := &recordingBus{}
	obs := &checkout.RedirectObserver{Bus: bus}
	ctx := context.Background()

	if _, err := obs.Observe(ctx, checkout.RedirectEvent{OrderID: "ord-1", URL: "https://pay.example.test/3ds-challenge"}); err != nil {
		t.Fatalf("indeterminate observe: %v", err)
	}
	if len(bus.cmds) != 0 {
		t.Fatalf("indeterminate redirect dispatched %d commands", len(bus.cmds))
	}

	outcome, err := obs.Observe(ctx, checkout.RedirectEvent{OrderID: "ord-1", URL: "https://pay.example.test/finish?transaction_status=capture"})
	if err != nil {
		t.Fatalf("decisive observe: %v", err)
	}
	if outcome != payment.OutcomeSuccess || len(bus.cmds) != 1 {
		t.Fatalf("outcome = %v with %d commands, want success and 1", outcome, len(bus.cmds))
	}
}

func TestConfirmUnknownOrderWithoutSnapshotFails(t *testing.T) {
	e := newEnv(t)

	_, err := commands.Dispatch[checkout.ConfirmPaymentCommand, *checkout.ConfirmPaymentResult](context.Background(), e.bus, checkout.ConfirmPaymentCommand{OrderID: "ord-ghost"})
	if !errors.Is(err, checkout.ErrReconciliationFailed) {
		t.Fatalf("err = %v, want ErrReconciliationFailed", err)
	}

	// The replayed failure keeps the sentinel, so the handler above it
	// can still map it to the contact-support response.
	_, err = commands.Dispatch[checkout.ConfirmPaymentCommand, *checkout.ConfirmPaymentResult](context.Background(), e.bus, checkout.ConfirmPaymentCommand{OrderID: "ord-ghost"})
	if !errors.Is(err, checkout.ErrReconciliationFailed) {
		t.Fatalf("replayed err = %v, want ErrReconciliationFailed", err)
	}
}

func TestCheckStockReflectsReservations(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	handler := &checkout.CheckStockHandler{UoWFactory: e.factory}

	res, err := handler.Handle(ctx, checkout.CheckStockQuery{
		CarID:     "car-1",
		StartDate: e.now.AddDate(0, 0, 2),
		EndDate:   e.now.AddDate(0, 0, 4),
	})
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if !res.Available {
		t.Fatalf("expected available, got %+v", res)
	}

	if _, err := commands.Dispatch[checkout.SubmitRentalCommand, *checkout.SubmitRentalResult](ctx, e.bus, e.submitCommand()); err != nil {
		t.Fatalf("submit: %v", err)
	}

	res, err = handler.Handle(ctx, checkout.CheckStockQuery{
		CarID:     "car-1",
		StartDate: e.now.AddDate(0, 0, 3),
		EndDate:   e.now.AddDate(0, 0, 5),
	})
	if err != nil {
		t.Fatalf("check overlapping: %v", err)
	}
	if res.Available {
		t.Fatal("expected overlap to block availability")
	}
}
