package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"washtrack-backend/internal/domain"
	"washtrack-backend/internal/repository"
	"github.com/go-chi/chi/v5"
)

const ticketListLimit = 50

type TicketHandler struct {
	Repo repository.TicketRepository
}

func (h TicketHandler) RegisterBranchRoutes(r chi.Router) {
	r.Get("/service", h.list(false))
	r.Post("/service", h.create)
	r.Get("/service/{id}", h.get(false))
	r.Patch("/service/{id}", h.setStatus(false))
	r.Post("/service/{id}/comments", h.addComment(false))
}

// Admin routes see tickets from every branch.
func (h TicketHandler) RegisterAdminRoutes(r chi.Router) {
	r.Get("/service", h.list(true))
	r.Get("/service/{id}", h.get(true))
	r.Patch("/service/{id}", h.setStatus(true))
	r.Post("/service/{id}/comments", h.addComment(true))
}

// scope resolves which branches a request may touch: admins get the global
// view (nil), everyone else is pinned to their effective branch.
func (h TicketHandler) scope(w http.ResponseWriter, r *http.Request, global bool) (*int64, bool) {
	p := principal(w, r)
	if p == nil {
		return nil, false
	}
	if global {
		return nil, true
	}
	branchID, err := resolveBranchID(r, p)
	if err != nil {
		writeError(w, http.StatusBadRequest, "branchId is required")
		return nil, false
	}
	return &branchID, true
}

func (h TicketHandler) list(global bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		branchID, ok := h.scope(w, r, global)
		if !ok {
			return
		}
		items, err := h.Repo.List(r.Context(), branchID, ticketListLimit)
		if err != nil {
			writeServerError(w, err)
			return
		}
		resp := make([]map[string]any, 0, len(items))
		for _, t := range items {
			resp = append(resp, ticketResponse(&t))
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func (h TicketHandler) create(w http.ResponseWriter, r *http.Request) {
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
		Title    string `json:"title"`
		Detail   string `json:"detail"`
		Priority string `json:"priority"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if req.Title == "" {
		writeError(w, http.StatusBadRequest, "title is required")
		return
	}
	if req.Priority == "" {
		req.Priority = "normal"
	}

	t, err := h.Repo.Create(r.Context(), repository.CreateTicketInput{
		BranchID:   branchID,
		Title:      req.Title,
		Detail:     req.Detail,
		Priority:   req.Priority,
		ReportedBy: &p.UserID,
	})
	if err != nil {
		writeServerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ticketResponse(t))
}

func (h TicketHandler) get(global bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		branchID, ok := h.scope(w, r, global)
		if !ok {
			return
		}
		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid ticket id")
			return
		}
		t, err := h.Repo.Get(r.Context(), id, branchID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				writeError(w, http.StatusNotFound, "ticket not found")
				return
			}
			writeServerError(w, err)
			return
		}
		resp := ticketResponse(t)
		comments := make([]map[string]any, 0, len(t.Comments))
		for _, c := range t.Comments {
			comments = append(comments, map[string]any{
				"id":        c.ID,
				"author":    c.Author,
				"body":      c.Body,
				"createdAt": c.CreatedAt.Format(time.RFC3339),
			})
		}
		resp["comments"] = comments
		writeJSON(w, http.StatusOK, resp)
	}
}

func (h TicketHandler) setStatus(global bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		branchID, ok := h.scope(w, r, global)
		if !ok {
			return
		}
		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid ticket id")
			return
		}

		var req struct {
			Status string `json:"status"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid payload")
			return
		}
		status := domain.TicketStatus(req.Status)
		switch status {
		case domain.TicketOpen, domain.TicketInProgress, domain.TicketFixed, domain.TicketClosed:
		default:
			writeError(w, http.StatusBadRequest, "invalid status")
			return
		}

		t, err := h.Repo.SetStatus(r.Context(), id, branchID, status)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				writeError(w, http.StatusNotFound, "ticket not found")
				return
			}
			writeServerError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, ticketResponse(t))
	}
}

func (h TicketHandler) addComment(global bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		branchID, ok := h.scope(w, r, global)
		if !ok {
			return
		}
		p := principal(w, r)
		if p == nil {
			return
		}
		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid ticket id")
			return
		}

		var req struct {
			Body string `json:"body"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid payload")
			return
		}
		if req.Body == "" {
			writeError(w, http.StatusBadRequest, "body is required")
			return
		}

		// scope check before writing: the ticket must be visible to this
		// principal
		if _, err := h.Repo.Get(r.Context(), id, branchID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				writeError(w, http.StatusNotFound, "ticket not found")
				return
			}
			writeServerError(w, err)
			return
		}

		c, err := h.Repo.AddComment(r.Context(), id, &p.UserID, p.Name, req.Body)
		if err != nil {
			writeServerError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"id":        c.ID,
			"ticketId":  c.TicketID,
			"author":    c.Author,
			"body":      c.Body,
			"createdAt": c.CreatedAt.Format(time.RFC3339),
		})
	}
}

func ticketResponse(t *domain.ServiceTicket) map[string]any {
	resp := map[string]any{
		"id":        t.ID,
		"branchId":  t.BranchID,
		"title":     t.Title,
		"detail":    t.Detail,
		"priority":  t.Priority,
		"status":    string(t.Status),
		"resolved":  t.Status.IsResolved(),
		"createdAt": t.CreatedAt.Format(time.RFC3339),
	}
	if t.ResolvedAt != nil {
		resp["resolvedAt"] = t.ResolvedAt.Format(time.RFC3339)
	}
	return resp
}
