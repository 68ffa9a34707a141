// Package aggregate holds the arithmetic behind the dashboard metrics:
// monthly trend buckets, status tallies, attendance hour derivation and
// payroll month filtering. Everything here is pure so the rollup rules can
// be tested without a database.
package aggregate

import (
	"errors"
	"math"
	"time"

	"washtrack-backend/internal/domain"

	"github.com/shopspring/decimal"
)

// ErrCheckOutBeforeCheckIn rejects attendance rows whose checkout does not
// come after the checkin instead of deriving negative hours.
var ErrCheckOutBeforeCheckIn = errors.New("check-out must be after check-in")

// MonthlySum is one month's income/expense totals as returned by the ledger
// repository (months with no rows are absent).
type MonthlySum struct {
	Year    int
	Month   time.Month
	Income  decimal.Decimal
	Expense decimal.Decimal
}

// MonthBucket is one point of the trend series exposed to dashboards.
type MonthBucket struct {
	Label   string          `json:"month"`
	Income  decimal.Decimal `json:"income"`
	Expense decimal.Decimal `json:"expense"`
}

// MonthStart truncates t to the first instant of its calendar month in UTC.
func MonthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// TrendWindow returns the half-open interval [start, end) covering the n
// trailing calendar months up to and including the month of now.
func TrendWindow(now time.Time, n int) (time.Time, time.Time) {
	end := MonthStart(now).AddDate(0, 1, 0)
	start := end.AddDate(0, -n, 0)
	return start, end
}

// FillMonthly expands sparse per-month sums into exactly n buckets, oldest
// first, with zero sums for months that had no rows.
func FillMonthly(now time.Time, n int, rows []MonthlySum) []MonthBucket {
	byMonth := make(map[string]MonthlySum, len(rows))
	for _, r := range rows {
		byMonth[monthKey(r.Year, r.Month)] = r
	}

	buckets := make([]MonthBucket, 0, n)
	cursor := MonthStart(now).AddDate(0, -(n - 1), 0)
	for i := 0; i < n; i++ {
		b := MonthBucket{
			Label:   cursor.Format("Jan 2006"),
			Income:  decimal.Zero,
			Expense: decimal.Zero,
		}
		if r, ok := byMonth[monthKey(cursor.Year(), cursor.Month())]; ok {
			b.Income = r.Income
			b.Expense = r.Expense
		}
		buckets = append(buckets, b)
		cursor = cursor.AddDate(0, 1, 0)
	}
	return buckets
}

func monthKey(year int, month time.Month) string {
	return time.Date(year, month, 1, 0, 0, 0, 0, time.UTC).Format("2006-01")
}

// Tally counts values per status, emitting a stable zero for every status in
// all even when no row matches it.
func Tally[T comparable](values []T, all ...T) map[T]int {
	out := make(map[T]int, len(all))
	for _, s := range all {
		out[s] = 0
	}
	for _, v := range values {
		out[v]++
	}
	return out
}

const regularShiftHours = 8

// WorkedHours derives hours worked and overtime from a check-in/check-out
// pair. Hours are rounded to 2 decimals; overtime is whatever exceeds the
// regular shift. A check-out at or before check-in is an error, never a
// silent negative.
func WorkedHours(checkIn, checkOut time.Time) (hours, overtime float64, err error) {
	if !checkOut.After(checkIn) {
		return 0, 0, ErrCheckOutBeforeCheckIn
	}
	hours = round2(checkOut.Sub(checkIn).Hours())
	overtime = round2(math.Max(hours-regularShiftHours, 0))
	return hours, overtime, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// CurrentMonthPayroll sums total pay over the records whose (month, year)
// equals the calendar month of now.
func CurrentMonthPayroll(records []domain.PayrollRecord, now time.Time) decimal.Decimal {
	total := decimal.Zero
	for _, r := range records {
		if r.Month == int(now.Month()) && r.Year == now.Year() {
			total = total.Add(r.TotalPay)
		}
	}
	return total
}
