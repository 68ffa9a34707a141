package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"washtrack-backend/internal/aggregate"
	"washtrack-backend/internal/domain"
	"washtrack-backend/internal/repository"
	"github.com/go-chi/chi/v5"
)

const attendanceListLimit = 100

type AttendanceHandler struct {
	Repo repository.AttendanceRepository
}

func (h AttendanceHandler) RegisterRoutes(r chi.Router) {
	r.Get("/attendance", h.list)
	r.Post("/attendance", h.record)
	r.Patch("/attendance", h.record)
	r.Get("/attendance/summary", h.summary)
}

func (h AttendanceHandler) list(w http.ResponseWriter, r *http.Request) {
	p := principal(w, r)
	if p == nil {
		return
	}
	branchID, err := resolveBranchID(r, p)
	if err != nil {
		writeError(w, http.StatusBadRequest, "branchId is required")
		return
	}
	from, to, err := rangeOrCurrentMonth(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date range")
		return
	}

	items, err := h.Repo.ListRange(r.Context(), branchID, from, to, attendanceListLimit)
	if err != nil {
		writeServerError(w, err)
		return
	}
	resp := make([]map[string]any, 0, len(items))
	for _, a := range items {
		resp = append(resp, attendanceResponse(&a))
	}
	writeJSON(w, http.StatusOK, resp)
}

// record creates or updates the attendance row for an employee/day pair and
// validates the check-in/check-out ordering up front.
func (h AttendanceHandler) record(w http.ResponseWriter, r *http.Request) {
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
		EmployeeID int64   `json:"employeeId"`
		Date       string  `json:"date"`
		CheckIn    *string `json:"checkIn"`
		CheckOut   *string `json:"checkOut"`
		Status     string  `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if req.EmployeeID == 0 {
		writeError(w, http.StatusBadRequest, "employeeId is required")
		return
	}
	date := time.Now().UTC()
	if req.Date != "" {
		date, err = time.Parse(dateLayout, req.Date)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid date")
			return
		}
	}
	status := domain.AttendanceStatus(req.Status)
	switch status {
	case domain.AttendancePresent, domain.AttendanceLate, domain.AttendanceAbsent:
	case "":
		status = domain.AttendancePresent
	default:
		writeError(w, http.StatusBadRequest, "invalid status")
		return
	}

	checkIn, err := parseClock(date, req.CheckIn)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid checkIn")
		return
	}
	checkOut, err := parseClock(date, req.CheckOut)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid checkOut")
		return
	}
	if checkIn != nil && checkOut != nil {
		if _, _, err := aggregate.WorkedHours(*checkIn, *checkOut); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	record, err := h.Repo.Upsert(r.Context(), repository.UpsertAttendanceInput{
		BranchID:   branchID,
		EmployeeID: req.EmployeeID,
		Date:       date,
		CheckIn:    checkIn,
		CheckOut:   checkOut,
		Status:     status,
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "employee not found")
			return
		}
		writeServerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, attendanceResponse(record))
}

func (h AttendanceHandler) summary(w http.ResponseWriter, r *http.Request) {
	p := principal(w, r)
	if p == nil {
		return
	}
	branchID, err := resolveBranchID(r, p)
	if err != nil {
		writeError(w, http.StatusBadRequest, "branchId is required")
		return
	}
	from, to, err := rangeOrCurrentMonth(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date range")
		return
	}

	counts, err := h.Repo.CountByStatus(r.Context(), branchID, from, to)
	if err != nil {
		writeServerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{
		"present": counts[domain.AttendancePresent],
		"late":    counts[domain.AttendanceLate],
		"absent":  counts[domain.AttendanceAbsent],
	})
}

// attendanceResponse derives worked and overtime hours at read time; rows
// with an inverted or incomplete pair report zero hours.
func attendanceResponse(a *domain.AttendanceRecord) map[string]any {
	hours, overtime := 0.0, 0.0
	if a.CheckIn != nil && a.CheckOut != nil {
		if hw, ot, err := aggregate.WorkedHours(*a.CheckIn, *a.CheckOut); err == nil {
			hours, overtime = hw, ot
		}
	}
	resp := map[string]any{
		"id":            a.ID,
		"branchId":      a.BranchID,
		"employeeId":    a.EmployeeID,
		"employeeName":  a.EmployeeName,
		"date":          a.Date.Format(dateLayout),
		"status":        string(a.Status),
		"hoursWorked":   hours,
		"overtimeHours": overtime,
	}
	if a.CheckIn != nil {
		resp["checkIn"] = a.CheckIn.Format(time.RFC3339)
	}
	if a.CheckOut != nil {
		resp["checkOut"] = a.CheckOut.Format(time.RFC3339)
	}
	return resp
}

// parseClock reads "15:04" (interpreted on the record's date, UTC) or a full
// RFC3339 timestamp.
func parseClock(date time.Time, raw *string) (*time.Time, error) {
	if raw == nil || *raw == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, *raw); err == nil {
		return &t, nil
	}
	clock, err := time.Parse("15:04", *raw)
	if err != nil {
		return nil, err
	}
	t := time.Date(date.Year(), date.Month(), date.Day(), clock.Hour(), clock.Minute(), 0, 0, time.UTC)
	return &t, nil
}

func rangeOrCurrentMonth(r *http.Request) (time.Time, time.Time, error) {
	from, err := parseDateQuery(r, "startDate")
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	to, err := parseDateQuery(r, "endDate")
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	now := time.Now().UTC()
	if from == nil {
		start := aggregate.MonthStart(now)
		from = &start
	}
	if to == nil {
		end := aggregate.MonthStart(now).AddDate(0, 1, 0)
		to = &end
	} else {
		// inclusive endDate from the client; the query window is half-open
		end := to.AddDate(0, 0, 1)
		to = &end
	}
	if from.After(*to) {
		return time.Time{}, time.Time{}, errors.New("startDate must be before endDate")
	}
	return *from, *to, nil
}
