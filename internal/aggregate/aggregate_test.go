package aggregate_test

import (
	"testing"
	"time"

	"washtrack-backend/internal/aggregate"
	"washtrack-backend/internal/domain"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestTrendWindow_CoversTrailingMonths(t *testing.T) {
	now := time.Date(2026, time.March, 15, 10, 30, 0, 0, time.UTC)

	start, end := aggregate.TrendWindow(now, 6)

	assert.Equal(t, time.Date(2025, time.October, 1, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2026, time.April, 1, 0, 0, 0, 0, time.UTC), end)
}

func TestTrendWindow_HalfOpen_ExcludesNextMonth(t *testing.T) {
	// An entry at the very last instant of the current month belongs to the
	// window; the first instant of the next month does not.
	now := time.Date(2026, time.January, 31, 23, 59, 59, 0, time.UTC)

	start, end := aggregate.TrendWindow(now, 1)

	assert.True(t, now.After(start) || now.Equal(start))
	assert.True(t, now.Before(end))
	assert.False(t, end.Before(time.Date(2026, time.February, 1, 0, 0, 0, 0, time.UTC)))
}

func TestFillMonthly_ZeroFillsMissingMonths(t *testing.T) {
	now := time.Date(2026, time.June, 20, 0, 0, 0, 0, time.UTC)
	rows := []aggregate.MonthlySum{
		{Year: 2026, Month: time.February, Income: d("1000"), Expense: d("400")},
		{Year: 2026, Month: time.May, Income: d("250"), Expense: d("0")},
	}

	buckets := aggregate.FillMonthly(now, 6, rows)

	require.Len(t, buckets, 6)
	assert.Equal(t, "Jan 2026", buckets[0].Label)
	assert.Equal(t, "Jun 2026", buckets[5].Label)

	assert.True(t, buckets[0].Income.IsZero())
	assert.True(t, buckets[1].Income.Equal(d("1000")))
	assert.True(t, buckets[1].Expense.Equal(d("400")))
	assert.True(t, buckets[4].Income.Equal(d("250")))
	assert.True(t, buckets[5].Income.IsZero())
	assert.True(t, buckets[5].Expense.IsZero())
}

func TestFillMonthly_BucketSumsMatchTotal(t *testing.T) {
	// First-of-month and last-of-month entries land in the same bucket, so
	// the bucket series must add up to the overall total.
	now := time.Date(2026, time.April, 10, 0, 0, 0, 0, time.UTC)
	rows := []aggregate.MonthlySum{
		{Year: 2026, Month: time.January, Income: d("100.50")},
		{Year: 2026, Month: time.February, Income: d("200")},
		{Year: 2026, Month: time.March, Income: d("0.50")},
		{Year: 2026, Month: time.April, Income: d("99")},
	}

	buckets := aggregate.FillMonthly(now, 6, rows)

	total := decimal.Zero
	for _, b := range buckets {
		total = total.Add(b.Income)
	}
	assert.True(t, total.Equal(d("400")), "got %s", total)
}

func TestTally_StableZeros(t *testing.T) {
	counts := aggregate.Tally(
		[]domain.AttendanceStatus{domain.AttendancePresent, domain.AttendancePresent, domain.AttendanceLate},
		domain.AttendancePresent, domain.AttendanceLate, domain.AttendanceAbsent,
	)

	assert.Equal(t, 2, counts[domain.AttendancePresent])
	assert.Equal(t, 1, counts[domain.AttendanceLate])
	count, ok := counts[domain.AttendanceAbsent]
	assert.True(t, ok, "absent must be present with a zero count")
	assert.Equal(t, 0, count)
}

func TestWorkedHours(t *testing.T) {
	day := time.Date(2026, time.March, 2, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		in, out  time.Time
		hours    float64
		overtime float64
	}{
		{
			name:     "regular shift",
			in:       day.Add(9 * time.Hour),
			out:      day.Add(17 * time.Hour),
			hours:    8,
			overtime: 0,
		},
		{
			name:     "with overtime",
			in:       day.Add(9 * time.Hour),
			out:      day.Add(18*time.Hour + 30*time.Minute),
			hours:    9.5,
			overtime: 1.5,
		},
		{
			name:     "short day",
			in:       day.Add(10 * time.Hour),
			out:      day.Add(14*time.Hour + 15*time.Minute),
			hours:    4.25,
			overtime: 0,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			hours, overtime, err := aggregate.WorkedHours(tc.in, tc.out)
			require.NoError(t, err)
			assert.Equal(t, tc.hours, hours)
			assert.Equal(t, tc.overtime, overtime)
		})
	}
}

func TestWorkedHours_RejectsInvertedPair(t *testing.T) {
	day := time.Date(2026, time.March, 2, 0, 0, 0, 0, time.UTC)

	_, _, err := aggregate.WorkedHours(day.Add(17*time.Hour), day.Add(9*time.Hour))
	assert.ErrorIs(t, err, aggregate.ErrCheckOutBeforeCheckIn)

	_, _, err = aggregate.WorkedHours(day.Add(9*time.Hour), day.Add(9*time.Hour))
	assert.ErrorIs(t, err, aggregate.ErrCheckOutBeforeCheckIn, "equal timestamps are rejected too")
}

func TestCurrentMonthPayroll(t *testing.T) {
	now := time.Date(2026, time.May, 12, 0, 0, 0, 0, time.UTC)
	records := []domain.PayrollRecord{
		{Month: 5, Year: 2026, TotalPay: d("3200")},
		{Month: 5, Year: 2026, TotalPay: d("2800.50")},
		{Month: 4, Year: 2026, TotalPay: d("9999")},
		{Month: 5, Year: 2025, TotalPay: d("1111")},
	}

	total := aggregate.CurrentMonthPayroll(records, now)

	assert.True(t, total.Equal(d("6000.50")), "got %s", total)
}
