package rental

import (
	"errors"
	"fmt"
	"iter"
	"time"
)

// Pickup desks operate 04:30 through 23:30 inclusive.
const (
	openingMinute = 4*60 + 30
	closingMinute = 23*60 + 30

	// DefaultSlotInterval spaces the selectable pickup slots.
	DefaultSlotInterval = 30 * time.Minute
)

var ErrInvalidPickupTime = errors.New("rental: pickup time outside the operational window")

// Clock is a time of day without a date.
type Clock struct {
	Hour   int
	Minute int
}

func (c Clock) minuteOfDay() int {
	return c.Hour*60 + c.Minute
}

// Wire renders the zero-padded 24-hour wire form, e.g. "09:30:00".
func (c Clock) Wire() string {
	return fmt.Sprintf("%02d:%02d:00", c.Hour, c.Minute)
}

func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}

// IsTimeValid reports whether candidate is selectable for the given pickup
// date. Slots outside the operational window are never valid; when the date
// is today, slots at or before the current time are rejected too.
func IsTimeValid(candidate Clock, selectedDate, now time.Time) bool {
	m := candidate.minuteOfDay()
	if m < openingMinute || m > closingMinute {
		return false
	}
	if sameCalendarDay(selectedDate, now) {
		if m <= now.Hour()*60+now.Minute() {
			return false
		}
	}
	return true
}

// Slots enumerates every valid pickup slot for the date at the given
// interval across the 24-hour day. The sequence is lazy, finite and can be
// ranged over more than once.
func Slots(selectedDate time.Time, interval time.Duration, now time.Time) iter.Seq[Clock] {
	if interval <= 0 {
		interval = DefaultSlotInterval
	}
	step := int(interval / time.Minute)
	if step <= 0 {
		step = 1
	}
	return func(yield func(Clock) bool) {
		for m := 0; m < 24*60; m += step {
			c := Clock{Hour: m / 60, Minute: m % 60}
			if !IsTimeValid(c, selectedDate, now) {
				continue
			}
			if !yield(c) {
				return
			}
		}
	}
}

func sameCalendarDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
