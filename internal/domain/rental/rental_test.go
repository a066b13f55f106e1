package rental

import (
	"testing"
	"time"

	"rentmob/internal/domain/shared/daterange"
	"rentmob/internal/domain/shared/money"
)

func newTestRental(t *testing.T) *Rental {
	t.Helper()
	period, err := daterange.New(day(10), day(13))
	if err != nil {
		t.Fatalf("period: %v", err)
	}
	r, err := NewRental(CreateParams{
		ID:         "rent-1",
		OrderID:    "ord-1",
		CustomerID: "cust-1",
		CarID:      "car-1",
		CityID:     "city-1",
		Period:     period,
		StartTime:  Clock{9, 0},
		DeliveryID: "dm-pickup",
		OptionID:   "opt-driver",
		TotalCost:  money.IDR(500000),
		PaymentURL: "https://pay.example/session",
		CreatedAt:  time.Date(2024, 1, 5, 8, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("NewRental: %v", err)
	}
	return r
}

func TestNewRentalStartsAwaitingPayment(t *testing.T) {
	r := newTestRental(t)
	if r.State != StateAwaitingPayment {
		t.Fatalf("state = %s", r.State)
	}
	evs := r.PendingEvents()
	if len(evs) != 1 || evs[0].EventName() != "rental.requested" {
		t.Fatalf("events = %v", evs)
	}
}

func TestNewRentalRequiresIdentity(t *testing.T) {
	period, _ := daterange.New(day(10), day(12))
	if _, err := NewRental(CreateParams{OrderID: "ord", Period: period}); err != ErrCustomerMissing {
		t.Fatalf("expected ErrCustomerMissing, got %v", err)
	}
	if _, err := NewRental(CreateParams{CustomerID: "c", Period: period}); err != ErrOrderIDMissing {
		t.Fatalf("expected ErrOrderIDMissing, got %v", err)
	}
}

func TestConfirmPayment(t *testing.T) {
	r := newTestRental(t)
	r.ClearEvents()
	now := time.Date(2024, 1, 5, 9, 0, 0, 0, time.UTC)
	if err := r.ConfirmPayment("RENT-A1B2C3", now); err != nil {
		t.Fatalf("ConfirmPayment: %v", err)
	}
	if r.State != StateConfirmed || r.BookingCode != "RENT-A1B2C3" {
		t.Fatalf("state = %s code = %s", r.State, r.BookingCode)
	}
	evs := r.PendingEvents()
	if len(evs) != 2 {
		t.Fatalf("expected payment + confirmation events, got %v", evs)
	}
	// Terminal: confirming twice is a state error.
	if err := r.ConfirmPayment("RENT-OTHER", now); err != ErrInvalidState {
		t.Fatalf("expected ErrInvalidState, got %v", err)
	}
}

func TestFailPaymentIsTerminal(t *testing.T) {
	r := newTestRental(t)
	now := time.Now()
	if err := r.FailPayment("gateway deny", now); err != nil {
		t.Fatalf("FailPayment: %v", err)
	}
	if r.State != StatePaymentFailed {
		t.Fatalf("state = %s", r.State)
	}
	if err := r.ConfirmPayment("RENT-X", now); err != ErrInvalidState {
		t.Fatalf("expected ErrInvalidState after failure, got %v", err)
	}
}

func TestBlocks(t *testing.T) {
	r := newTestRental(t)
	overlapping, _ := daterange.New(day(12), day(14))
	disjoint, _ := daterange.New(day(13), day(15))
	if !r.Blocks(overlapping) {
		t.Fatal("awaiting-payment rental must hold the stock")
	}
	if r.Blocks(disjoint) {
		t.Fatal("adjacent period must not be blocked")
	}
	_ = r.FailPayment("deny", time.Now())
	if r.Blocks(overlapping) {
		t.Fatal("failed rental must release the stock")
	}
}
