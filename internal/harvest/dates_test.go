package harvest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatDate(t *testing.T) {
	d := time.Date(2024, time.March, 5, 23, 59, 0, 0, time.UTC)

	assert.Equal(t, "05/03/2024", FormatDate(d))
	assert.Equal(t, FormatDate(d), FormatDate(d))

	parsed, err := time.Parse(DateLayout, FormatDate(d))
	require.NoError(t, err)
	assert.Equal(t, d.Year(), parsed.Year())
	assert.Equal(t, d.Month(), parsed.Month())
	assert.Equal(t, d.Day(), parsed.Day())
}

func TestDateRangeIsContiguousAndInclusive(t *testing.T) {
	loc, err := time.LoadLocation("Asia/Kolkata")
	if err != nil {
		loc = time.UTC
	}
	end := time.Date(2024, time.March, 31, 10, 15, 0, 0, loc)

	for _, months := range []int{0, 1, 3, 12} {
		dates := DateRange(end, months)

		require.Len(t, dates, DaysPerMonth*months+1)
		assert.Equal(t, FormatDate(end.AddDate(0, 0, -DaysPerMonth*months)), FormatDate(dates[0]))
		assert.Equal(t, FormatDate(end), FormatDate(dates[len(dates)-1]))

		seen := map[string]bool{}
		for i, d := range dates {
			key := FormatDate(d)
			assert.False(t, seen[key], "duplicate date %s", key)
			seen[key] = true
			if i > 0 {
				prev := dates[i-1]
				assert.Equal(t, FormatDate(prev.AddDate(0, 0, 1)), key)
			}
		}
	}
}

func TestDateRangeAcrossDSTKeepsCalendarDays(t *testing.T) {
	loc, err := time.LoadLocation("Europe/Berlin")
	if err != nil {
		t.Skip("tzdata not available")
	}
	end := time.Date(2024, time.April, 2, 0, 30, 0, 0, loc)

	dates := DateRange(end, 1)
	for i := 1; i < len(dates); i++ {
		assert.Equal(t, FormatDate(dates[i-1].AddDate(0, 0, 1)), FormatDate(dates[i]))
	}
	assert.Equal(t, "02/04/2024", FormatDate(dates[len(dates)-1]))
}

func TestDateRangeNegativeMonths(t *testing.T) {
	end := time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC)
	dates := DateRange(end, -2)
	require.Len(t, dates, 1)
	assert.True(t, dates[0].Equal(end))
}

func TestEnumerateDatesEndsToday(t *testing.T) {
	dates := EnumerateDates(3)
	require.Len(t, dates, 91)
	assert.Equal(t, FormatDate(time.Now()), FormatDate(dates[len(dates)-1]))
}

func TestFixedDelay(t *testing.T) {
	start := time.Now()
	require.NoError(t, FixedDelay(20*time.Millisecond).Wait(context.Background()))
	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	start = time.Now()
	assert.ErrorIs(t, FixedDelay(time.Hour).Wait(ctx), context.Canceled)
	assert.Less(t, time.Since(start), time.Second)
}

func TestNoDelay(t *testing.T) {
	assert.NoError(t, NoDelay{}.Wait(context.Background()))
}
