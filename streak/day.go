package streak

import (
	"fmt"
	"time"
)

// DayFormat is the canonical wire encoding of a local calendar day.
const DayFormat = "2006-01-02"

// Day is a calendar date in some user's timezone. It carries no zone
// itself: the zone is applied once, at normalization time, and the
// same zone must be used for every Day that ends up in one set.
type Day struct {
	Year  int
	Month time.Month
	Dayn  int
}

// ToLocalDay converts an instant to the calendar day it falls on in
// loc. The conversion is true zone-aware wall-clock conversion, never
// a fixed offset, so instants near local midnight and across DST
// transitions land on the correct side of the boundary.
func ToLocalDay(instant time.Time, loc *time.Location) Day {
	t := instant.In(loc)
	return Day{Year: t.Year(), Month: t.Month(), Dayn: t.Day()}
}

// ParseDay parses a "2006-01-02" string into a Day.
func ParseDay(s string) (Day, error) {
	t, err := time.Parse(DayFormat, s)
	if err != nil {
		return Day{}, fmt.Errorf("invalid day %q: %w", s, err)
	}
	return Day{Year: t.Year(), Month: t.Month(), Dayn: t.Day()}, nil
}

// String renders the day as "2006-01-02".
func (d Day) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Dayn)
}

// IsZero reports whether d is the zero Day.
func (d Day) IsZero() bool {
	return d.Year == 0 && d.Month == 0 && d.Dayn == 0
}

// AddDays returns the day n civil days after d (n may be negative).
// Civil arithmetic in UTC keeps the result independent of any zone.
func (d Day) AddDays(n int) Day {
	t := time.Date(d.Year, d.Month, d.Dayn, 0, 0, 0, 0, time.UTC).AddDate(0, 0, n)
	return Day{Year: t.Year(), Month: t.Month(), Dayn: t.Day()}
}

// Next returns the following calendar day.
func (d Day) Next() Day { return d.AddDays(1) }

// Prev returns the preceding calendar day.
func (d Day) Prev() Day { return d.AddDays(-1) }

// DaysSince returns the number of civil days from other to d
// (positive when d is later).
func (d Day) DaysSince(other Day) int {
	a := time.Date(d.Year, d.Month, d.Dayn, 0, 0, 0, 0, time.UTC)
	b := time.Date(other.Year, other.Month, other.Dayn, 0, 0, 0, 0, time.UTC)
	return int(a.Sub(b).Hours() / 24)
}

// Before reports whether d is strictly earlier than other.
func (d Day) Before(other Day) bool {
	if d.Year != other.Year {
		return d.Year < other.Year
	}
	if d.Month != other.Month {
		return d.Month < other.Month
	}
	return d.Dayn < other.Dayn
}
