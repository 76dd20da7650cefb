package streak

import "sort"

// Info aggregates a user's check-in history. All fields are
// recomputed from the full day set on every call; nothing here is
// persisted independently.
type Info struct {
	Current int `json:"current_streak"`
	Longest int `json:"longest_streak"`
	Total   int `json:"total_checkins"`
}

// Compute derives streak statistics from a user's check-in days.
//
// The uniqueness constraint guarantees at most one check-in per day,
// but duplicates are tolerated here anyway. The current streak is the
// trailing run ending at today or at today-1: a streak from yesterday
// still counts until today fully elapses without a check-in. A most
// recent day older than today-1 means the current streak is 0.
func Compute(days []Day, today Day) Info {
	uniq := dedupSorted(days)
	if len(uniq) == 0 {
		return Info{}
	}

	longest, run := 1, 1
	for i := 1; i < len(uniq); i++ {
		if uniq[i].DaysSince(uniq[i-1]) == 1 {
			run++
			if run > longest {
				longest = run
			}
		} else {
			run = 1
		}
	}

	current := 0
	last := uniq[len(uniq)-1]
	if gap := today.DaysSince(last); gap == 0 || gap == 1 {
		current = 1
		for i := len(uniq) - 2; i >= 0; i-- {
			if uniq[i+1].DaysSince(uniq[i]) != 1 {
				break
			}
			current++
		}
	}

	return Info{Current: current, Longest: longest, Total: len(uniq)}
}

func dedupSorted(days []Day) []Day {
	if len(days) == 0 {
		return nil
	}
	sorted := make([]Day, len(days))
	copy(sorted, days)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Before(sorted[j]) })

	uniq := sorted[:1]
	for _, d := range sorted[1:] {
		if d != uniq[len(uniq)-1] {
			uniq = append(uniq, d)
		}
	}
	return uniq
}
