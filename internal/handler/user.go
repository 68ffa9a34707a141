package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"washtrack-backend/internal/domain"
	"washtrack-backend/internal/repository"
	"github.com/go-chi/chi/v5"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 8

// UserHandler manages admin accounts. Only super admins reach these
// routes; branch admins are created here and scoped to one branch.
type UserHandler struct {
	Users    repository.UserRepository
	Branches repository.BranchRepository
}

func (h UserHandler) RegisterRoutes(r chi.Router) {
	r.Get("/users", h.list)
	r.Post("/users", h.create)
}

func (h UserHandler) list(w http.ResponseWriter, r *http.Request) {
	items, err := h.Users.List(r.Context())
	if err != nil {
		writeServerError(w, err)
		return
	}
	resp := make([]map[string]any, 0, len(items))
	for _, u := range items {
		resp = append(resp, userResponse(&u))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h UserHandler) create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
		Role     string `json:"role"`
		BranchID *int64 `json:"branchId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if req.Name == "" || req.Email == "" {
		writeError(w, http.StatusBadRequest, "name and email are required")
		return
	}
	if len(req.Password) < minPasswordLength {
		writeError(w, http.StatusBadRequest, "password must be at least 8 characters")
		return
	}
	role := domain.Role(req.Role)
	if role != domain.RoleSuperAdmin && role != domain.RoleBranchAdmin {
		writeError(w, http.StatusBadRequest, "role must be super_admin or branch_admin")
		return
	}

	var branchID *int64
	if role == domain.RoleBranchAdmin {
		if req.BranchID == nil {
			writeError(w, http.StatusBadRequest, "branchId is required for branch_admin")
			return
		}
		if _, err := h.Branches.GetByID(r.Context(), *req.BranchID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				writeError(w, http.StatusNotFound, "branch not found")
				return
			}
			writeServerError(w, err)
			return
		}
		branchID = req.BranchID
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		writeServerError(w, err)
		return
	}

	u, err := h.Users.Create(r.Context(), repository.CreateUserInput{
		BranchID:     branchID,
		Name:         req.Name,
		Email:        req.Email,
		Role:         role,
		PasswordHash: string(hash),
	})
	if err != nil {
		if repository.IsDuplicate(err) {
			writeError(w, http.StatusBadRequest, "email already registered")
			return
		}
		writeServerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, userResponse(u))
}

func userResponse(u *domain.AdminUser) map[string]any {
	resp := map[string]any{
		"id":        u.ID,
		"name":      u.Name,
		"email":     u.Email,
		"role":      string(u.Role),
		"createdAt": u.CreatedAt.Format(time.RFC3339),
	}
	if u.BranchID != nil {
		resp["branchId"] = *u.BranchID
	}
	return resp
}
