package rental

import (
	"testing"
	"time"
)

func TestIsTimeValidWindowBounds(t *testing.T) {
	// A future date so only the window applies.
	date := time.Date(2030, 6, 1, 0, 0, 0, 0, time.UTC)
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	cases := []struct {
		name string
		c    Clock
		want bool
	}{
		{"midnight", Clock{0, 0}, false},
		{"just before opening", Clock{4, 0}, false},
		{"opening edge", Clock{4, 30}, true},
		{"midday", Clock{13, 0}, true},
		{"closing edge", Clock{23, 30}, true},
		{"after closing", Clock{23, 45}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsTimeValid(tc.c, date, now); got != tc.want {
				t.Fatalf("IsTimeValid(%v) = %v, want %v", tc.c, got, tc.want)
			}
		})
	}
}

func TestIsTimeValidSameDay(t *testing.T) {
	now := time.Date(2024, 1, 10, 10, 0, 0, 0, time.UTC)
	today := now
	if IsTimeValid(Clock{9, 30}, today, now) {
		t.Fatal("past slot accepted for same-day rental")
	}
	if IsTimeValid(Clock{10, 0}, today, now) {
		t.Fatal("current-minute slot accepted; must be strictly in the future")
	}
	if !IsTimeValid(Clock{10, 30}, today, now) {
		t.Fatal("future slot rejected for same-day rental")
	}
	// The same clock times are fine on a later date.
	tomorrow := now.Add(24 * time.Hour)
	if !IsTimeValid(Clock{9, 30}, tomorrow, now) {
		t.Fatal("morning slot rejected for a future date")
	}
}

func TestSlotsEnumeration(t *testing.T) {
	date := time.Date(2030, 6, 1, 0, 0, 0, 0, time.UTC)
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	var got []Clock
	for c := range Slots(date, 30*time.Minute, now) {
		got = append(got, c)
	}
	// 04:30 .. 23:30 at 30m spacing = 39 slots.
	if len(got) != 39 {
		t.Fatalf("slot count = %d, want 39", len(got))
	}
	if got[0] != (Clock{4, 30}) {
		t.Fatalf("first slot = %v, want 04:30", got[0])
	}
	if got[len(got)-1] != (Clock{23, 30}) {
		t.Fatalf("last slot = %v, want 23:30", got[len(got)-1])
	}

	// The sequence is restartable: a second pass yields the same slots.
	var second []Clock
	for c := range Slots(date, 30*time.Minute, now) {
		second = append(second, c)
	}
	if len(second) != len(got) {
		t.Fatalf("second pass yielded %d slots, want %d", len(second), len(got))
	}
}

func TestSlotsSameDayFiltersPast(t *testing.T) {
	now := time.Date(2024, 1, 10, 22, 45, 0, 0, time.UTC)
	var got []Clock
	for c := range Slots(now, 30*time.Minute, now) {
		got = append(got, c)
	}
	// Only 23:00 and 23:30 remain late in the evening.
	if len(got) != 2 || got[0] != (Clock{23, 0}) || got[1] != (Clock{23, 30}) {
		t.Fatalf("slots = %v, want [23:00 23:30]", got)
	}
}

func TestClockWire(t *testing.T) {
	if got := (Clock{9, 5}).Wire(); got != "09:05:00" {
		t.Fatalf("Wire() = %q", got)
	}
}
