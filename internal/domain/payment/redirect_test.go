package payment

import (
	"testing"
	"time"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		name string
		url  string
		want Outcome
	}{
		{"capture on success path", "https://x/success?transaction_status=capture", OutcomeSuccess},
		{"settlement status", "https://x/redirect?payment_status=success", OutcomeSuccess},
		{"status code 200", "https://x/finish?status_code=200&order_id=ord-1", OutcomeSuccess},
		{"paid marker", "https://x/finish?payment_status=paid", OutcomeSuccess},
		{"credit card type", "https://x/finish?payment_type=credit_card", OutcomeSuccess},
		{"deny", "https://x/pay?transaction_status=deny", OutcomeFailure},
		{"cancel", "https://x/pay?transaction_status=cancel", OutcomeFailure},
		{"status code 201", "https://x/finish?status_code=201", OutcomeFailure},
		{"failed path", "https://x/failed?order_id=ord-1", OutcomeFailure},
		{"unrelated query", "https://x/pay?foo=bar", OutcomeIndeterminate},
		{"empty", "", OutcomeIndeterminate},
		{"mixed case", "https://x/pay?TRANSACTION_STATUS=Capture", OutcomeSuccess},
		// Ambiguous URLs resolve to failure so a broken redirect can
		// never confirm an unpaid order.
		{"both markers", "https://x/success?transaction_status=deny", OutcomeFailure},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Classify(tc.url); got != tc.want {
				t.Fatalf("Classify(%q) = %v, want %v", tc.url, got, tc.want)
			}
		})
	}
}

func TestAttemptSettleOnce(t *testing.T) {
	now := time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)
	a := NewAttempt("ord-1", "https://pay.example/session", now)
	if a.Status != StatusPending {
		t.Fatalf("status = %s", a.Status)
	}

	// Indeterminate leaves the attempt open.
	if err := a.Settle(OutcomeIndeterminate, now); err != nil {
		t.Fatalf("Settle(indeterminate): %v", err)
	}
	if a.Status != StatusPending {
		t.Fatalf("status after indeterminate = %s", a.Status)
	}

	if err := a.Settle(OutcomeSuccess, now); err != nil {
		t.Fatalf("Settle(success): %v", err)
	}
	if a.Status != StatusSuccess {
		t.Fatalf("status = %s", a.Status)
	}
	// Duplicate navigation events must not flip or re-fire the outcome.
	if err := a.Settle(OutcomeFailure, now); err != ErrAttemptSettled {
		t.Fatalf("expected ErrAttemptSettled, got %v", err)
	}
}
