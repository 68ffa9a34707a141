package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"washtrack-backend/internal/domain"
	"washtrack-backend/internal/repository"
	"github.com/go-chi/chi/v5"
)

const leaveListLimit = 50

type LeaveHandler struct {
	Repo repository.LeaveRepository
}

func (h LeaveHandler) RegisterRoutes(r chi.Router) {
	r.Get("/leave", h.list)
	r.Post("/leave", h.create)
	r.Patch("/leave", h.decide)
}

func (h LeaveHandler) list(w http.ResponseWriter, r *http.Request) {
	p := principal(w, r)
	if p == nil {
		return
	}
	branchID, err := resolveBranchID(r, p)
	if err != nil {
		writeError(w, http.StatusBadRequest, "branchId is required")
		return
	}
	items, err := h.Repo.List(r.Context(), branchID, leaveListLimit)
	if err != nil {
		writeServerError(w, err)
		return
	}
	resp := make([]map[string]any, 0, len(items))
	for _, lr := range items {
		resp = append(resp, leaveResponse(&lr))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h LeaveHandler) create(w http.ResponseWriter, r *http.Request) {
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
		EmployeeID int64  `json:"employeeId"`
		Type       string `json:"type"`
		StartDate  string `json:"startDate"`
		EndDate    string `json:"endDate"`
		Reason     string `json:"reason"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if req.EmployeeID == 0 || req.Type == "" || req.StartDate == "" || req.EndDate == "" {
		writeError(w, http.StatusBadRequest, "employeeId, type, startDate and endDate are required")
		return
	}
	start, err := time.Parse(dateLayout, req.StartDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid startDate")
		return
	}
	end, err := time.Parse(dateLayout, req.EndDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid endDate")
		return
	}
	if start.After(end) {
		writeError(w, http.StatusBadRequest, "startDate must be before endDate")
		return
	}

	lr, err := h.Repo.Create(r.Context(), repository.CreateLeaveInput{
		BranchID:   branchID,
		EmployeeID: req.EmployeeID,
		Type:       req.Type,
		StartDate:  start,
		EndDate:    end,
		Reason:     req.Reason,
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "employee not found")
			return
		}
		writeServerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, leaveResponse(lr))
}

// decide approves or rejects a pending request; the approver comes from the
// session, never the body.
func (h LeaveHandler) decide(w http.ResponseWriter, r *http.Request) {
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
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	status := domain.LeaveStatus(req.Status)
	if status != domain.LeaveApproved && status != domain.LeaveRejected {
		writeError(w, http.StatusBadRequest, "status must be APPROVED or REJECTED")
		return
	}

	lr, err := h.Repo.Decide(r.Context(), id, branchID, status, p.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "pending leave request not found")
			return
		}
		writeServerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, leaveResponse(lr))
}

func leaveResponse(lr *domain.LeaveRequest) map[string]any {
	resp := map[string]any{
		"id":         lr.ID,
		"branchId":   lr.BranchID,
		"employeeId": lr.EmployeeID,
		"type":       lr.Type,
		"startDate":  lr.StartDate.Format(dateLayout),
		"endDate":    lr.EndDate.Format(dateLayout),
		"reason":     lr.Reason,
		"status":     string(lr.Status),
	}
	if lr.ApproverID != nil {
		resp["approverId"] = *lr.ApproverID
	}
	if lr.DecidedAt != nil {
		resp["decidedAt"] = lr.DecidedAt.Format(time.RFC3339)
	}
	return resp
}
