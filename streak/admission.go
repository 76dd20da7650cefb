package streak

import (
	"errors"
	"fmt"
	"time"
)

// Admission failures. The DB uniqueness constraint stays
// authoritative: a conflict on insert maps to ErrAlreadyCheckedIn no
// matter what the advisory check here concluded.
var (
	ErrAlreadyCheckedIn = errors.New("already checked in today")
	ErrOutsideWindow    = errors.New("outside check-in window")
	ErrInvalidTimeRange = errors.New("check-in window must be at least one hour")
)

// Clock is a wall-clock time of day in minutes since midnight.
type Clock int

// ParseClock parses "HH:mm".
func ParseClock(s string) (Clock, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, fmt.Errorf("invalid time %q: %w", s, err)
	}
	return Clock(t.Hour()*60 + t.Minute()), nil
}

// String renders the clock as "HH:mm".
func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", int(c)/60, int(c)%60)
}

// Window is the daily interval during which check-ins are admitted,
// half-open [Start, End). Both ends are interpreted on the same
// nominal day: ranges crossing midnight are not supported, and a pair
// that would wrap fails validation rather than being reinterpreted.
type Window struct {
	Start Clock
	End   Clock
}

// ParseWindow parses and validates a "HH:mm".."HH:mm" pair.
func ParseWindow(start, end string) (Window, error) {
	s, err := ParseClock(start)
	if err != nil {
		return Window{}, err
	}
	e, err := ParseClock(end)
	if err != nil {
		return Window{}, err
	}
	w := Window{Start: s, End: e}
	if err := w.Validate(); err != nil {
		return Window{}, err
	}
	return w, nil
}

// Validate enforces the minimum one-hour span.
func (w Window) Validate() error {
	if w.End-w.Start < 60 {
		return ErrInvalidTimeRange
	}
	return nil
}

// Contains reports whether the wall-clock time is within [Start, End).
func (w Window) Contains(c Clock) bool {
	return c >= w.Start && c < w.End
}

// CheckAdmission decides whether a check-in at instant now is
// accepted. The already-checked-in test runs before the window test.
// This is advisory on the request path; the unique index decides races.
func CheckAdmission(now time.Time, loc *time.Location, w Window, have DaySet) error {
	today := ToLocalDay(now, loc)
	if have.Highlighted(today) {
		return ErrAlreadyCheckedIn
	}
	local := now.In(loc)
	if !w.Contains(Clock(local.Hour()*60 + local.Minute())) {
		return ErrOutsideWindow
	}
	return nil
}
