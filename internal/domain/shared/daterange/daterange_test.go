package daterange

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestNewRejectsReversedPeriod(t *testing.T) {
	if _, err := New(date(2024, 1, 12), date(2024, 1, 10)); err != ErrInvalidPeriod {
		t.Fatalf("expected ErrInvalidPeriod, got %v", err)
	}
}

func TestDays(t *testing.T) {
	cases := []struct {
		name  string
		start time.Time
		end   time.Time
		want  int
	}{
		{"same day charges one", date(2024, 1, 10), date(2024, 1, 10), 1},
		{"exact day", date(2024, 1, 10), date(2024, 1, 11), 1},
		{"three days", date(2024, 1, 10), date(2024, 1, 13), 3},
		{"partial day rounds up", date(2024, 1, 10), date(2024, 1, 11).Add(6 * time.Hour), 2},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := Period{Start: tc.start, End: tc.end}
			if got := p.Days(); got != tc.want {
				t.Fatalf("Days() = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestDaysNeverBelowOne(t *testing.T) {
	start := date(2024, 3, 5)
	for hours := 0; hours <= 96; hours += 7 {
		p := Period{Start: start, End: start.Add(time.Duration(hours) * time.Hour)}
		if p.Days() < 1 {
			t.Fatalf("Days() = %d for %dh span, want >= 1", p.Days(), hours)
		}
	}
}

func TestEnsureMinimum(t *testing.T) {
	d := date(2024, 1, 10)
	if got := EnsureMinimum(d, d); !got.Equal(d.Add(24 * time.Hour)) {
		t.Fatalf("EnsureMinimum(d, d) = %v, want %v", got, d.Add(24*time.Hour))
	}
	end := date(2024, 1, 14)
	if got := EnsureMinimum(d, end); !got.Equal(end) {
		t.Fatalf("EnsureMinimum left valid end changed: %v", got)
	}
	// End inside the first day gets pushed to start+1d as well.
	short := d.Add(5 * time.Hour)
	if got := EnsureMinimum(d, short); !got.Equal(d.Add(24 * time.Hour)) {
		t.Fatalf("EnsureMinimum(d, d+5h) = %v", got)
	}
}

func TestValidateStart(t *testing.T) {
	now := time.Date(2024, 1, 10, 15, 30, 0, 0, time.UTC)
	past := Period{Start: date(2024, 1, 9), End: date(2024, 1, 11)}
	if err := past.ValidateStart(now); err != ErrStartInPast {
		t.Fatalf("expected ErrStartInPast, got %v", err)
	}
	// Same calendar day is allowed even when the clock has moved on.
	today := Period{Start: date(2024, 1, 10), End: date(2024, 1, 11)}
	if err := today.ValidateStart(now); err != nil {
		t.Fatalf("same-day start rejected: %v", err)
	}
}

func TestOverlaps(t *testing.T) {
	a := Period{Start: date(2024, 1, 10), End: date(2024, 1, 13)}
	cases := []struct {
		name  string
		other Period
		want  bool
	}{
		{"disjoint after", Period{Start: date(2024, 1, 14), End: date(2024, 1, 16)}, false},
		{"adjacent", Period{Start: date(2024, 1, 13), End: date(2024, 1, 15)}, false},
		{"straddles end", Period{Start: date(2024, 1, 12), End: date(2024, 1, 15)}, true},
		{"contained", Period{Start: date(2024, 1, 11), End: date(2024, 1, 12)}, true},
		{"covers", Period{Start: date(2024, 1, 9), End: date(2024, 1, 14)}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := a.Overlaps(tc.other); got != tc.want {
				t.Fatalf("Overlaps = %v, want %v", got, tc.want)
			}
		})
	}
}
