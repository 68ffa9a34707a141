package handler

import (
	"net/http"
	"time"

	"washtrack-backend/internal/aggregate"
	"washtrack-backend/internal/domain"
	"washtrack-backend/internal/repository"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

const trendMonths = 6

type DashboardHandler struct {
	Branches      repository.BranchRepository
	Ledger        repository.LedgerRepository
	Employees     repository.EmployeeRepository
	Attendance    repository.AttendanceRepository
	Tickets       repository.TicketRepository
	Notifications repository.NotificationRepository
	Payroll       repository.PayrollRepository
}

func (h DashboardHandler) RegisterAdminRoutes(r chi.Router) {
	r.Get("/dashboard", h.adminSummary)
}

func (h DashboardHandler) RegisterBranchRoutes(r chi.Router) {
	r.Get("/dashboard", h.branchSummary)
}

// adminSummary aggregates across all branches. The reads are independent, so
// they run concurrently and join before shaping the response.
func (h DashboardHandler) adminSummary(w http.ResponseWriter, r *http.Request) {
	now := time.Now().UTC()
	trendFrom, trendTo := aggregate.TrendWindow(now, trendMonths)
	monthFrom := aggregate.MonthStart(now)
	monthTo := monthFrom.AddDate(0, 1, 0)

	var (
		activeBranches int64
		employeeCounts map[domain.EmployeeStatus]int
		openTickets    int64
		monthIncome    decimal.Decimal
		monthExpense   decimal.Decimal
		monthlySums    []aggregate.MonthlySum
	)

	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() (err error) {
		activeBranches, err = h.Branches.CountActive(ctx)
		return err
	})
	g.Go(func() (err error) {
		employeeCounts, err = h.Employees.CountByStatus(ctx, nil)
		return err
	})
	g.Go(func() (err error) {
		openTickets, err = h.Tickets.CountOpen(ctx, nil)
		return err
	})
	g.Go(func() (err error) {
		monthIncome, err = h.Ledger.SumRange(ctx, nil, domain.LedgerIncome, monthFrom, monthTo)
		return err
	})
	g.Go(func() (err error) {
		monthExpense, err = h.Ledger.SumRange(ctx, nil, domain.LedgerExpense, monthFrom, monthTo)
		return err
	})
	g.Go(func() (err error) {
		monthlySums, err = h.Ledger.MonthlySums(ctx, nil, trendFrom, trendTo)
		return err
	})
	if err := g.Wait(); err != nil {
		writeServerError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"activeBranches":  activeBranches,
		"activeEmployees": employeeCounts[domain.EmployeeActive],
		"openTickets":     openTickets,
		"monthIncome":     monthIncome,
		"monthExpense":    monthExpense,
		"trend":           aggregate.FillMonthly(now, trendMonths, monthlySums),
	})
}

// branchSummary is the branch admin's view of its own numbers.
func (h DashboardHandler) branchSummary(w http.ResponseWriter, r *http.Request) {
	p := principal(w, r)
	if p == nil {
		return
	}
	branchID, err := resolveBranchID(r, p)
	if err != nil {
		writeError(w, http.StatusBadRequest, "branchId is required")
		return
	}

	now := time.Now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	tomorrow := today.AddDate(0, 0, 1)
	monthFrom := aggregate.MonthStart(now)
	monthTo := monthFrom.AddDate(0, 1, 0)
	_ = monthTo

	var (
		todayIncome      decimal.Decimal
		todayExpense     decimal.Decimal
		attendanceCounts map[domain.AttendanceStatus]int
		employeeCounts   map[domain.EmployeeStatus]int
		openTickets      int64
		unread           int64
		payrollTotal     decimal.Decimal
	)

	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() (err error) {
		todayIncome, err = h.Ledger.SumRange(ctx, &branchID, domain.LedgerIncome, today, tomorrow)
		return err
	})
	g.Go(func() (err error) {
		todayExpense, err = h.Ledger.SumRange(ctx, &branchID, domain.LedgerExpense, today, tomorrow)
		return err
	})
	g.Go(func() (err error) {
		attendanceCounts, err = h.Attendance.CountByStatus(ctx, branchID, today, tomorrow)
		return err
	})
	g.Go(func() (err error) {
		employeeCounts, err = h.Employees.CountByStatus(ctx, &branchID)
		return err
	})
	g.Go(func() (err error) {
		openTickets, err = h.Tickets.CountOpen(ctx, &branchID)
		return err
	})
	g.Go(func() (err error) {
		unread, err = h.Notifications.CountUnread(ctx, branchID)
		return err
	})
	g.Go(func() error {
		records, err := h.Payroll.ListMonth(ctx, branchID, int(now.Month()), now.Year())
		if err != nil {
			return err
		}
		payrollTotal = aggregate.CurrentMonthPayroll(records, now)
		return nil
	})
	if err := g.Wait(); err != nil {
		writeServerError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"todayIncome":  todayIncome,
		"todayExpense": todayExpense,
		"attendance": map[string]int{
			"present": attendanceCounts[domain.AttendancePresent],
			"late":    attendanceCounts[domain.AttendanceLate],
			"absent":  attendanceCounts[domain.AttendanceAbsent],
		},
		"employees": map[string]int{
			"active":   employeeCounts[domain.EmployeeActive],
			"resigned": employeeCounts[domain.EmployeeResigned],
		},
		"openTickets":         openTickets,
		"unreadNotifications": unread,
		"monthPayroll":        payrollTotal,
	})
}
