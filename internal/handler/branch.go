package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"washtrack-backend/internal/domain"
	"washtrack-backend/internal/repository"
	"github.com/go-chi/chi/v5"
)

type BranchHandler struct {
	Repo repository.BranchRepository
}

func (h BranchHandler) RegisterPublicRoutes(r chi.Router) {
	r.Get("/branches", h.list)
	r.Get("/branches/{slug}", h.getBySlug)
}

func (h BranchHandler) RegisterAdminRoutes(r chi.Router) {
	r.Get("/branches", h.adminList)
	r.Post("/branches", h.create)
	r.Patch("/branches/{id}", h.update)
	r.Delete("/branches/{id}", h.deactivate)
}

func (h BranchHandler) list(w http.ResponseWriter, r *http.Request) {
	items, err := h.Repo.List(r.Context(), true)
	if err != nil {
		writeServerError(w, err)
		return
	}
	resp := make([]map[string]any, 0, len(items))
	for _, b := range items {
		resp = append(resp, map[string]any{
			"id":       b.ID,
			"name":     b.Name,
			"slug":     b.Slug,
			"isActive": b.IsActive,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h BranchHandler) getBySlug(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	b, err := h.Repo.GetBySlug(r.Context(), slug)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "branch not found")
			return
		}
		writeServerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, branchResponse(b))
}

func (h BranchHandler) adminList(w http.ResponseWriter, r *http.Request) {
	items, err := h.Repo.List(r.Context(), false)
	if err != nil {
		writeServerError(w, err)
		return
	}
	resp := make([]map[string]any, 0, len(items))
	for _, b := range items {
		resp = append(resp, branchResponse(&b))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h BranchHandler) create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Slug    string `json:"slug"`
		Name    string `json:"name"`
		Address string `json:"address"`
		Phone   string `json:"phone"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	req.Slug = strings.TrimSpace(strings.ToLower(req.Slug))
	if req.Slug == "" || req.Name == "" {
		writeError(w, http.StatusBadRequest, "slug and name are required")
		return
	}

	b, err := h.Repo.Create(r.Context(), repository.CreateBranchInput{
		Slug:    req.Slug,
		Name:    req.Name,
		Address: req.Address,
		Phone:   req.Phone,
	})
	if err != nil {
		if repository.IsDuplicate(err) {
			writeError(w, http.StatusBadRequest, "slug already in use")
			return
		}
		writeServerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, branchResponse(b))
}

func (h BranchHandler) update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid branch id")
		return
	}
	var req struct {
		Name     *string `json:"name"`
		Address  *string `json:"address"`
		Phone    *string `json:"phone"`
		IsActive *bool   `json:"isActive"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}

	b, err := h.Repo.Update(r.Context(), id, repository.UpdateBranchInput{
		Name:     req.Name,
		Address:  req.Address,
		Phone:    req.Phone,
		IsActive: req.IsActive,
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "branch not found")
			return
		}
		writeServerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, branchResponse(b))
}

// deactivate flips the active flag instead of deleting; branch rows own too
// much downstream data to cascade.
func (h BranchHandler) deactivate(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid branch id")
		return
	}
	inactive := false
	if _, err := h.Repo.Update(r.Context(), id, repository.UpdateBranchInput{IsActive: &inactive}); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "branch not found")
			return
		}
		writeServerError(w, err)
		return
	}
	writeSuccess(w)
}

func branchResponse(b *domain.Branch) map[string]any {
	return map[string]any{
		"id":       b.ID,
		"name":     b.Name,
		"slug":     b.Slug,
		"address":  b.Address,
		"phone":    b.Phone,
		"isActive": b.IsActive,
	}
}
