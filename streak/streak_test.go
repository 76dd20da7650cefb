package streak

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func day(s string) Day {
	d, err := ParseDay(s)
	if err != nil {
		panic(err)
	}
	return d
}

func daysBack(today Day, offsets ...int) []Day {
	out := make([]Day, 0, len(offsets))
	for _, n := range offsets {
		out = append(out, today.AddDays(-n))
	}
	return out
}

func TestComputeEmpty(t *testing.T) {
	assert.Equal(t, Info{}, Compute(nil, day("2025-06-10")))
	assert.Equal(t, Info{}, Compute([]Day{}, day("2025-06-10")))
}

func TestComputeConsecutiveRunEndingToday(t *testing.T) {
	today := day("2025-06-10")
	info := Compute(daysBack(today, 2, 1, 0), today)
	assert.Equal(t, Info{Current: 3, Longest: 3, Total: 3}, info)
}

func TestComputeGraceDay(t *testing.T) {
	// Checked in yesterday but not yet today: streak still current.
	today := day("2025-06-10")
	info := Compute(daysBack(today, 1), today)
	assert.Equal(t, Info{Current: 1, Longest: 1, Total: 1}, info)
}

func TestComputeGapTooLarge(t *testing.T) {
	today := day("2025-06-10")
	info := Compute(daysBack(today, 3), today)
	assert.Equal(t, 0, info.Current)
	assert.Equal(t, 1, info.Longest)
	assert.Equal(t, 1, info.Total)
}

func TestComputeTwoRuns(t *testing.T) {
	// Runs of length 3 (D-10..D-8) and 5 (D-4..D) ending today.
	today := day("2025-06-10")
	days := daysBack(today, 10, 9, 8, 4, 3, 2, 1, 0)
	info := Compute(days, today)
	assert.Equal(t, 5, info.Current)
	assert.Equal(t, 5, info.Longest)
	assert.Equal(t, 8, info.Total)
}

func TestComputeStaleLongRun(t *testing.T) {
	// Longest run is in the past; trailing run broken by a gap.
	today := day("2025-06-10")
	days := daysBack(today, 9, 8, 7, 6, 1, 0)
	info := Compute(days, today)
	assert.Equal(t, 2, info.Current)
	assert.Equal(t, 4, info.Longest)
}

func TestComputeDeduplicates(t *testing.T) {
	today := day("2025-06-10")
	days := append(daysBack(today, 1, 0), daysBack(today, 1, 0, 0)...)
	info := Compute(days, today)
	assert.Equal(t, 2, info.Total)
	assert.Equal(t, 2, info.Current)
}

func TestComputeUnsortedInput(t *testing.T) {
	today := day("2025-06-10")
	days := daysBack(today, 0, 4, 2, 1, 3)
	info := Compute(days, today)
	assert.Equal(t, Info{Current: 5, Longest: 5, Total: 5}, info)
}

func TestComputeTotalMatchesUniqueCount(t *testing.T) {
	today := day("2025-06-10")
	days := daysBack(today, 30, 20, 10, 0, 0, 20)
	assert.Equal(t, 4, Compute(days, today).Total)
}

func TestComputeAcrossMonthBoundary(t *testing.T) {
	today := day("2025-03-02")
	days := []Day{day("2025-02-27"), day("2025-02-28"), day("2025-03-01"), day("2025-03-02")}
	info := Compute(days, today)
	assert.Equal(t, Info{Current: 4, Longest: 4, Total: 4}, info)
}
