package pricing

import (
	"testing"
	"time"

	"rentmob/internal/domain/shared/daterange"
	"rentmob/internal/domain/shared/money"
)

func period(t *testing.T, startDay, endDay int) daterange.Period {
	t.Helper()
	p, err := daterange.New(
		time.Date(2024, 1, startDay, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 1, endDay, 0, 0, 0, 0, time.UTC),
	)
	if err != nil {
		t.Fatalf("period: %v", err)
	}
	return p
}

func TestQuoteMinimumOneDay(t *testing.T) {
	// Same-day range still bills one full day after EnsureMinimum pushed
	// the end out; quoting the raw same-day period also floors at one.
	p := daterange.Period{
		Start: time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC),
	}
	got, err := Quote(p, money.IDR(100000), money.Money{}, money.Money{})
	if err != nil {
		t.Fatalf("Quote: %v", err)
	}
	if got.Days != 1 {
		t.Fatalf("Days = %d, want 1", got.Days)
	}
	if got.Total.Amount != 100000 {
		t.Fatalf("Total = %d, want 100000", got.Total.Amount)
	}
}

func TestQuoteComposesFees(t *testing.T) {
	// 3 days at 150000 + 10000/day option + 20000 delivery = 500000.
	got, err := Quote(period(t, 10, 13), money.IDR(150000), money.IDR(10000), money.IDR(20000))
	if err != nil {
		t.Fatalf("Quote: %v", err)
	}
	if got.Days != 3 {
		t.Fatalf("Days = %d, want 3", got.Days)
	}
	if got.Total.Amount != 500000 {
		t.Fatalf("Total = %d, want 500000", got.Total.Amount)
	}
}

func TestQuoteDaysAlwaysPositive(t *testing.T) {
	for span := 0; span <= 10; span++ {
		got, err := Quote(period(t, 10, 10+span), money.IDR(50000), money.Money{}, money.Money{})
		if err != nil {
			t.Fatalf("Quote span %d: %v", span, err)
		}
		if got.Days < 1 {
			t.Fatalf("Days = %d for span %d, want >= 1", got.Days, span)
		}
		if got.Total.IsNegative() {
			t.Fatalf("negative total for span %d", span)
		}
	}
}

func TestQuoteRejectsNegativeInputs(t *testing.T) {
	cases := []struct {
		name     string
		daily    money.Money
		option   money.Money
		delivery money.Money
	}{
		{"negative daily rate", money.IDR(-1), money.Money{}, money.Money{}},
		{"negative option fee", money.IDR(100000), money.IDR(-500), money.Money{}},
		{"negative delivery fee", money.IDR(100000), money.Money{}, money.IDR(-500)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Quote(period(t, 10, 12), tc.daily, tc.option, tc.delivery); err == nil {
				t.Fatal("expected error, got nil")
			}
		})
	}
}

func TestRecalculateTotalRequiresDays(t *testing.T) {
	b := CostBreakdown{Days: 0, DailyRate: money.IDR(100000)}
	if err := b.RecalculateTotal(); err != ErrInvalidInput {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}
