package streak

// DaySet answers membership queries for calendar highlighting. The
// set and every candidate day must be normalized with the same
// timezone; building the set in one zone and querying in another
// silently shifts highlights by a day, so callers thread the zone
// explicitly through both paths.
type DaySet map[Day]struct{}

// NewDaySet builds a set from a slice of days, dropping duplicates.
func NewDaySet(days []Day) DaySet {
	s := make(DaySet, len(days))
	for _, d := range days {
		s[d] = struct{}{}
	}
	return s
}

// Add inserts a day into the set.
func (s DaySet) Add(d Day) { s[d] = struct{}{} }

// Highlighted reports whether the given day has a check-in.
func (s DaySet) Highlighted(d Day) bool {
	_, ok := s[d]
	return ok
}

// Days returns the members as a slice, unordered.
func (s DaySet) Days() []Day {
	out := make([]Day, 0, len(s))
	for d := range s {
		out = append(out, d)
	}
	return out
}
