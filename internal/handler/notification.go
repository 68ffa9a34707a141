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

const notificationListLimit = 50

type NotificationHandler struct {
	Repo repository.NotificationRepository
}

func (h NotificationHandler) RegisterBranchRoutes(r chi.Router) {
	r.Get("/notifications", h.list)
	r.Patch("/notifications/{id}/read", h.markRead)
}

func (h NotificationHandler) RegisterAdminRoutes(r chi.Router) {
	r.Post("/notifications", h.send)
}

func (h NotificationHandler) list(w http.ResponseWriter, r *http.Request) {
	p := principal(w, r)
	if p == nil {
		return
	}
	branchID, err := resolveBranchID(r, p)
	if err != nil {
		writeError(w, http.StatusBadRequest, "branchId is required")
		return
	}

	items, err := h.Repo.List(r.Context(), branchID, notificationListLimit)
	if err != nil {
		writeServerError(w, err)
		return
	}
	unread, err := h.Repo.CountUnread(r.Context(), branchID)
	if err != nil {
		writeServerError(w, err)
		return
	}

	resp := make([]map[string]any, 0, len(items))
	for _, n := range items {
		resp = append(resp, map[string]any{
			"id":        n.ID,
			"branchId":  n.BranchID,
			"title":     n.Title,
			"message":   n.Message,
			"type":      string(n.Type),
			"isRead":    n.IsRead,
			"createdAt": n.CreatedAt.Format(time.RFC3339),
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"notifications": resp,
		"unreadCount":   unread,
	})
}

func (h NotificationHandler) markRead(w http.ResponseWriter, r *http.Request) {
	p := principal(w, r)
	if p == nil {
		return
	}
	branchID, err := resolveBranchID(r, p)
	if err != nil {
		writeError(w, http.StatusBadRequest, "branchId is required")
		return
	}
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid notification id")
		return
	}

	if err := h.Repo.MarkRead(r.Context(), id, branchID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "notification not found")
			return
		}
		writeServerError(w, err)
		return
	}
	writeSuccess(w)
}

// send delivers a notification to a single branch, or to every active branch
// when branchId is the literal "ALL".
func (h NotificationHandler) send(w http.ResponseWriter, r *http.Request) {
	var req struct {
		BranchID json.RawMessage `json:"branchId"`
		Title    string          `json:"title"`
		Message  string          `json:"message"`
		Type     string          `json:"type"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if req.Title == "" || req.Message == "" {
		writeError(w, http.StatusBadRequest, "title and message are required")
		return
	}
	typ := domain.NotificationType(req.Type)
	switch typ {
	case domain.NotificationInfo, domain.NotificationWarning, domain.NotificationError:
	case "":
		typ = domain.NotificationInfo
	default:
		writeError(w, http.StatusBadRequest, "invalid type")
		return
	}

	if isBroadcastTarget(req.BranchID) {
		count, err := h.Repo.Broadcast(r.Context(), req.Title, req.Message, typ)
		if err != nil {
			writeServerError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "count": count})
		return
	}

	branchID, err := parseFlexibleID(req.BranchID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "branchId must be a branch id or ALL")
		return
	}
	if _, err := h.Repo.Create(r.Context(), repository.CreateNotificationInput{
		BranchID: branchID,
		Title:    req.Title,
		Message:  req.Message,
		Type:     typ,
	}); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "branch not found")
			return
		}
		writeServerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "count": int64(1)})
}

func isBroadcastTarget(raw json.RawMessage) bool {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return false
	}
	return s == "ALL"
}
