package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"washtrack-backend/internal/config"
	"washtrack-backend/internal/service"
	"github.com/go-chi/chi/v5"
)

type AuthHandler struct {
	Config  config.Config
	Service service.AuthService
}

func (h AuthHandler) RegisterRoutes(r chi.Router) {
	r.Post("/auth/login", h.login)
	r.Post("/auth/logout", h.logout)
}

func (h AuthHandler) RegisterSessionRoutes(r chi.Router) {
	r.Get("/auth/me", h.me)
}

func (h AuthHandler) login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "email and password are required")
		return
	}

	result, err := h.Service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			writeError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		writeServerError(w, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     h.Config.CookieName,
		Value:    result.Token,
		Path:     "/",
		Expires:  result.ExpiresAt,
		HttpOnly: true,
		Secure:   h.Config.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, principalResponse(result.Principal))
}

func (h AuthHandler) logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.Config.CookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.Config.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
	writeSuccess(w)
}

func (h AuthHandler) me(w http.ResponseWriter, r *http.Request) {
	p := principal(w, r)
	if p == nil {
		return
	}
	writeJSON(w, http.StatusOK, principalResponse(*p))
}

func principalResponse(p service.Principal) map[string]any {
	resp := map[string]any{
		"id":    p.UserID,
		"name":  p.Name,
		"email": p.Email,
		"role":  string(p.Role),
	}
	if p.BranchID != nil {
		resp["branchId"] = *p.BranchID
		resp["branchSlug"] = p.BranchSlug
		resp["branchName"] = p.BranchName
	}
	return resp
}
