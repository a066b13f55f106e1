package rental

import (
	"testing"
	"time"

	"rentmob/internal/domain/catalog"
	"rentmob/internal/domain/shared/money"
)

func testCar() *catalog.Car {
	return &catalog.Car{
		ID:        "car-1",
		CityID:    "city-1",
		Brand:     "Toyota",
		Model:     "Avanza",
		DailyRate: money.IDR(150000),
	}
}

func selfPickup() catalog.DeliveryMethod {
	return catalog.DeliveryMethod{ID: "dm-pickup", Name: "Self pickup", Fee: money.IDR(0)}
}

func homeDelivery() catalog.DeliveryMethod {
	return catalog.DeliveryMethod{ID: "dm-delivery", Name: "Delivery", Fee: money.IDR(20000)}
}

func withDriver() catalog.RentalOption {
	return catalog.RentalOption{ID: "opt-driver", Name: "With driver", FeePerDay: money.IDR(10000)}
}

func day(d int) time.Time {
	return time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC)
}

func TestNewFormStateStretchesSameDayRange(t *testing.T) {
	f, err := NewFormState(testCar(), "city-1", day(10), day(10))
	if err != nil {
		t.Fatalf("NewFormState: %v", err)
	}
	if !f.Period.End.Equal(day(11)) {
		t.Fatalf("end = %v, want %v", f.Period.End, day(11))
	}
	if f.Cost.Total.Amount != 150000 {
		t.Fatalf("total = %d, want 150000", f.Cost.Total.Amount)
	}
}

func TestFormRepricesOnEveryTransition(t *testing.T) {
	f, err := NewFormState(testCar(), "city-1", day(10), day(13))
	if err != nil {
		t.Fatalf("NewFormState: %v", err)
	}
	if f.Cost.Total.Amount != 450000 {
		t.Fatalf("base total = %d, want 450000", f.Cost.Total.Amount)
	}

	f, err = f.WithOption(withDriver())
	if err != nil {
		t.Fatalf("WithOption: %v", err)
	}
	if f.Cost.Total.Amount != 480000 {
		t.Fatalf("total with option = %d, want 480000", f.Cost.Total.Amount)
	}

	f, err = f.WithDelivery(homeDelivery())
	if err != nil {
		t.Fatalf("WithDelivery: %v", err)
	}
	if f.Cost.Total.Amount != 500000 {
		t.Fatalf("total with delivery = %d, want 500000", f.Cost.Total.Amount)
	}

	// Shrinking the range below one day floors at one chargeable day.
	f, err = f.WithPeriod(day(10), day(10))
	if err != nil {
		t.Fatalf("WithPeriod: %v", err)
	}
	if f.Cost.Days != 1 {
		t.Fatalf("days = %d, want 1", f.Cost.Days)
	}
	if f.Cost.Total.Amount != 180000 {
		t.Fatalf("one-day total = %d, want 180000", f.Cost.Total.Amount)
	}
}

func TestWithStartTimeRejectsPastSlot(t *testing.T) {
	now := time.Date(2024, 1, 10, 14, 0, 0, 0, time.UTC)
	f, err := NewFormState(testCar(), "city-1", day(10), day(12))
	if err != nil {
		t.Fatalf("NewFormState: %v", err)
	}
	if _, err := f.WithStartTime(Clock{13, 0}, now); err != ErrInvalidPickupTime {
		t.Fatalf("expected ErrInvalidPickupTime, got %v", err)
	}
	f, err = f.WithStartTime(Clock{15, 0}, now)
	if err != nil {
		t.Fatalf("WithStartTime: %v", err)
	}
	if f.StartTime == nil || *f.StartTime != (Clock{15, 0}) {
		t.Fatalf("start time = %v", f.StartTime)
	}
}

func TestValidate(t *testing.T) {
	base, err := NewFormState(testCar(), "city-1", day(10), day(12))
	if err != nil {
		t.Fatalf("NewFormState: %v", err)
	}

	t.Run("everything unset", func(t *testing.T) {
		errs := base.Validate()
		if !errs.DeliveryMethod || !errs.RentalOption {
			t.Fatalf("errs = %+v, want method and option flagged", errs)
		}
		if errs.Valid() {
			t.Fatal("Valid() must be false")
		}
	})

	t.Run("delivery without address", func(t *testing.T) {
		f, err := base.WithDelivery(homeDelivery())
		if err != nil {
			t.Fatalf("WithDelivery: %v", err)
		}
		f, err = f.WithOption(withDriver())
		if err != nil {
			t.Fatalf("WithOption: %v", err)
		}
		errs := f.Validate()
		if !errs.DeliveryAddress {
			t.Fatalf("errs = %+v, want address flagged", errs)
		}
		// Whitespace-only addresses do not count.
		errs = f.WithAddress("   ").Validate()
		if !errs.DeliveryAddress {
			t.Fatal("whitespace address accepted")
		}
		errs = f.WithAddress("Jl. Sudirman 12").Validate()
		if !errs.Valid() {
			t.Fatalf("errs = %+v, want valid", errs)
		}
	})

	t.Run("self pickup needs no address", func(t *testing.T) {
		f, err := base.WithDelivery(selfPickup())
		if err != nil {
			t.Fatalf("WithDelivery: %v", err)
		}
		f, err = f.WithOption(withDriver())
		if err != nil {
			t.Fatalf("WithOption: %v", err)
		}
		if errs := f.Validate(); !errs.Valid() {
			t.Fatalf("errs = %+v, want valid", errs)
		}
	})
}
