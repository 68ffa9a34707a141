package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"washtrack-backend/internal/domain"
	"washtrack-backend/internal/repository"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

type EmployeeHandler struct {
	Repo repository.EmployeeRepository
}

func (h EmployeeHandler) RegisterRoutes(r chi.Router) {
	r.Get("/employees", h.list)
	r.Post("/employees", h.create)
	r.Patch("/employees", h.update)
}

func (h EmployeeHandler) list(w http.ResponseWriter, r *http.Request) {
	p := principal(w, r)
	if p == nil {
		return
	}
	branchID, err := resolveBranchID(r, p)
	if err != nil {
		writeError(w, http.StatusBadRequest, "branchId is required")
		return
	}
	items, err := h.Repo.List(r.Context(), branchID)
	if err != nil {
		writeServerError(w, err)
		return
	}
	resp := make([]map[string]any, 0, len(items))
	for _, e := range items {
		resp = append(resp, employeeResponse(&e))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h EmployeeHandler) create(w http.ResponseWriter, r *http.Request) {
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
		Name      string          `json:"name"`
		Phone     string          `json:"phone"`
		Position  string          `json:"position"`
		Salary    json.RawMessage `json:"salary"`
		StartDate string          `json:"startDate"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	salary := decimal.Zero
	if len(req.Salary) > 0 {
		salary, err = parseAmount(req.Salary)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}
	startDate := time.Now().UTC()
	if req.StartDate != "" {
		startDate, err = time.Parse(dateLayout, req.StartDate)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid startDate")
			return
		}
	}

	e, err := h.Repo.Create(r.Context(), repository.CreateEmployeeInput{
		BranchID:  branchID,
		Name:      req.Name,
		Phone:     req.Phone,
		Position:  req.Position,
		Salary:    salary,
		StartDate: startDate,
	})
	if err != nil {
		writeServerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, employeeResponse(e))
}

func (h EmployeeHandler) update(w http.ResponseWriter, r *http.Request) {
	p := principal(w, r)
	if p == nil {
		return
	}
	branchID, err := resolveBranchID(r, p)
	if err != nil {
		writeError(w, http.StatusBadRequest, "branchId is required")
		return
	}
	id, err := parseIDQuery(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "id is required")
		return
	}

	var req struct {
		Name     *string         `json:"name"`
		Phone    *string         `json:"phone"`
		Position *string         `json:"position"`
		Status   *string         `json:"status"`
		Salary   json.RawMessage `json:"salary"`
		EndDate  *string         `json:"endDate"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}

	in := repository.UpdateEmployeeInput{
		Name:     req.Name,
		Phone:    req.Phone,
		Position: req.Position,
	}
	if req.Status != nil {
		status := domain.EmployeeStatus(*req.Status)
		if status != domain.EmployeeActive && status != domain.EmployeeResigned {
			writeError(w, http.StatusBadRequest, "status must be ACTIVE or RESIGNED")
			return
		}
		in.Status = &status
	}
	if len(req.Salary) > 0 {
		salary, err := parseAmount(req.Salary)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		in.Salary = &salary
	}
	if req.EndDate != nil {
		endDate, err := time.Parse(dateLayout, *req.EndDate)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid endDate")
			return
		}
		in.EndDate = &endDate
	}

	e, err := h.Repo.Update(r.Context(), id, branchID, in)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "employee not found")
			return
		}
		writeServerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, employeeResponse(e))
}

func employeeResponse(e *domain.Employee) map[string]any {
	resp := map[string]any{
		"id":        e.ID,
		"branchId":  e.BranchID,
		"name":      e.Name,
		"phone":     e.Phone,
		"position":  e.Position,
		"status":    string(e.Status),
		"salary":    e.Salary,
		"startDate": e.StartDate.Format(dateLayout),
	}
	if e.EndDate != nil {
		resp["endDate"] = e.EndDate.Format(dateLayout)
	}
	return resp
}
