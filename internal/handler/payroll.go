package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"washtrack-backend/internal/repository"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

type PayrollHandler struct {
	Repo repository.PayrollRepository
}

func (h PayrollHandler) RegisterRoutes(r chi.Router) {
	r.Get("/payroll", h.list)
	r.Post("/payroll", h.create)
	r.Get("/payroll/summary", h.summary)
}

func (h PayrollHandler) list(w http.ResponseWriter, r *http.Request) {
	p := principal(w, r)
	if p == nil {
		return
	}
	branchID, err := resolveBranchID(r, p)
	if err != nil {
		writeError(w, http.StatusBadRequest, "branchId is required")
		return
	}
	month, year := monthYearOrNow(r)

	items, err := h.Repo.ListMonth(r.Context(), branchID, month, year)
	if err != nil {
		writeServerError(w, err)
		return
	}
	resp := make([]map[string]any, 0, len(items))
	for _, rec := range items {
		resp = append(resp, map[string]any{
			"id":         rec.ID,
			"branchId":   rec.BranchID,
			"employeeId": rec.EmployeeID,
			"month":      rec.Month,
			"year":       rec.Year,
			"baseSalary": rec.BaseSalary,
			"overtime":   rec.Overtime,
			"deductions": rec.Deductions,
			"totalPay":   rec.TotalPay,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h PayrollHandler) create(w http.ResponseWriter, r *http.Request) {
	p := principal(w, r)
	if p == nil {
		return
	}
	branchID, err := resolveBranchID(r, p)
	if err != nil {
		writeError(w, http.StatusBadRequest, "branchId is required")
		return
	}

	var req struct {
		EmployeeID int64           `json:"employeeId"`
		Month      int             `json:"month"`
		Year       int             `json:"year"`
		BaseSalary json.RawMessage `json:"baseSalary"`
		Overtime   json.RawMessage `json:"overtime"`
		Deductions json.RawMessage `json:"deductions"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if req.EmployeeID == 0 || req.Month < 1 || req.Month > 12 || req.Year == 0 {
		writeError(w, http.StatusBadRequest, "employeeId, month and year are required")
		return
	}
	base, err := amountOrZero(req.BaseSalary)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	overtime, err := amountOrZero(req.Overtime)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	deductions, err := amountOrZero(req.Deductions)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	rec, err := h.Repo.Create(r.Context(), repository.CreatePayrollInput{
		BranchID:   branchID,
		EmployeeID: req.EmployeeID,
		Month:      req.Month,
		Year:       req.Year,
		BaseSalary: base,
		Overtime:   overtime,
		Deductions: deductions,
		TotalPay:   base.Add(overtime).Sub(deductions),
	})
	if err != nil {
		if repository.IsDuplicate(err) {
			writeError(w, http.StatusBadRequest, "payroll already recorded for this month")
			return
		}
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "employee not found")
			return
		}
		writeServerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"id":         rec.ID,
		"branchId":   rec.BranchID,
		"employeeId": rec.EmployeeID,
		"month":      rec.Month,
		"year":       rec.Year,
		"totalPay":   rec.TotalPay,
	})
}

// summary totals pay for the requested (or current) calendar month.
func (h PayrollHandler) summary(w http.ResponseWriter, r *http.Request) {
	p := principal(w, r)
	if p == nil {
		return
	}
	branchID, err := resolveBranchID(r, p)
	if err != nil {
		writeError(w, http.StatusBadRequest, "branchId is required")
		return
	}
	month, year := monthYearOrNow(r)

	total, err := h.Repo.SumMonth(r.Context(), branchID, month, year)
	if err != nil {
		writeServerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"month": month,
		"year":  year,
		"total": total,
	})
}

func amountOrZero(raw json.RawMessage) (decimal.Decimal, error) {
	if len(raw) == 0 {
		return decimal.Zero, nil
	}
	return parseAmount(raw)
}

func monthYearOrNow(r *http.Request) (int, int) {
	now := time.Now().UTC()
	month, year := int(now.Month()), now.Year()
	if m, err := parseIDQuery(r, "month"); err == nil && m >= 1 && m <= 12 {
		month = int(m)
	}
	if y, err := parseIDQuery(r, "year"); err == nil && y > 0 {
		year = int(y)
	}
	return month, year
}
