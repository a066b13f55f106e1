package daterange

import (
	"errors"
	"time"
)

var (
	ErrInvalidPeriod = errors.New("daterange: end must not precede start")
	ErrStartInPast   = errors.New("daterange: start date is in the past")
)

// MinimumRental is the shortest period a car can be reserved for.
const MinimumRental = 24 * time.Hour

// Period represents a half-open rental interval [Start, End).
type Period struct {
	Start time.Time
	End   time.Time
}

// New builds a period, normalising both ends to UTC.
func New(start, end time.Time) (Period, error) {
	p := Period{Start: start.UTC(), End: end.UTC()}
	if err := p.Validate(); err != nil {
		return Period{}, err
	}
	return p, nil
}

func (p Period) Validate() error {
	if p.Start.IsZero() || p.End.IsZero() {
		return ErrInvalidPeriod
	}
	if p.End.Before(p.Start) {
		return ErrInvalidPeriod
	}
	return nil
}

// ValidateStart rejects periods beginning before today's calendar date.
func (p Period) ValidateStart(now time.Time) error {
	today := truncateToDate(now)
	if truncateToDate(p.Start).Before(today) {
		return ErrStartInPast
	}
	return nil
}

// Days counts chargeable rental days: the ceiling of the elapsed duration
// with a floor of one, so a same-day range still bills a full day.
func (p Period) Days() int {
	d := p.End.Sub(p.Start)
	days := int(d / MinimumRental)
	if d%MinimumRental != 0 {
		days++
	}
	if days < 1 {
		days = 1
	}
	return days
}

// EnsureMinimum returns the end date pushed out to start+1day when the
// period is shorter than one day, or end unchanged otherwise. Callers run
// it whenever either endpoint is edited.
func EnsureMinimum(start, end time.Time) time.Time {
	if end.Sub(start) < MinimumRental {
		return start.Add(MinimumRental)
	}
	return end
}

// Overlaps reports whether two periods share at least one instant.
func (p Period) Overlaps(other Period) bool {
	return p.Start.Before(other.End) && other.Start.Before(p.End)
}

// ContainsDate reports whether t falls inside [Start, End).
func (p Period) ContainsDate(t time.Time) bool {
	t = t.UTC()
	return !t.Before(p.Start) && t.Before(p.End)
}

func truncateToDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
