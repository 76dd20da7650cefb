package streak

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToLocalDayMidnightBoundary(t *testing.T) {
	sh, err := time.LoadLocation("Asia/Shanghai")
	require.NoError(t, err)

	// 15:58 UTC is 23:58 in Shanghai; 16:02 UTC is already the next day.
	before := time.Date(2025, 6, 9, 15, 58, 0, 0, time.UTC)
	after := time.Date(2025, 6, 9, 16, 2, 0, 0, time.UTC)

	assert.Equal(t, day("2025-06-09"), ToLocalDay(before, sh))
	assert.Equal(t, day("2025-06-10"), ToLocalDay(after, sh))
}

func TestToLocalDayNegativeOffset(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	// 03:00 UTC is still the previous evening in New York.
	instant := time.Date(2025, 6, 10, 3, 0, 0, 0, time.UTC)
	assert.Equal(t, day("2025-06-09"), ToLocalDay(instant, ny))
}

func TestToLocalDayDSTTransition(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	// US spring-forward 2025-03-09: offset changes EST(-5) -> EDT(-4)
	// at 07:00 UTC. A fixed-offset approximation gets one of these
	// wrong.
	justBefore := time.Date(2025, 3, 9, 4, 30, 0, 0, time.UTC) // 23:30 EST Mar 8
	justAfter := time.Date(2025, 3, 9, 8, 30, 0, 0, time.UTC)  // 04:30 EDT Mar 9

	assert.Equal(t, day("2025-03-08"), ToLocalDay(justBefore, ny))
	assert.Equal(t, day("2025-03-09"), ToLocalDay(justAfter, ny))
}

func TestToLocalDayIdempotent(t *testing.T) {
	sh, err := time.LoadLocation("Asia/Shanghai")
	require.NoError(t, err)

	d := ToLocalDay(time.Date(2025, 6, 9, 16, 2, 0, 0, time.UTC), sh)
	midnight := time.Date(d.Year, d.Month, d.Dayn, 0, 0, 0, 0, sh)
	assert.Equal(t, d, ToLocalDay(midnight, sh))
}

func TestParseDayRoundTrip(t *testing.T) {
	d, err := ParseDay("2025-01-31")
	require.NoError(t, err)
	assert.Equal(t, "2025-01-31", d.String())

	_, err = ParseDay("2025-13-01")
	assert.Error(t, err)
	_, err = ParseDay("not-a-day")
	assert.Error(t, err)
}

func TestDayArithmetic(t *testing.T) {
	d := day("2025-03-01")
	assert.Equal(t, day("2025-02-28"), d.Prev())
	assert.Equal(t, day("2025-03-02"), d.Next())
	assert.Equal(t, day("2024-02-29"), day("2024-03-01").Prev()) // leap year
	assert.Equal(t, 31, day("2025-02-01").DaysSince(day("2025-01-01")))
	assert.Equal(t, -1, d.DaysSince(d.Next()))
	assert.True(t, d.Before(d.Next()))
	assert.False(t, d.Before(d))
}
