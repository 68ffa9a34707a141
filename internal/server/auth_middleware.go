package server

import (
	"net/http"
	"strings"

	"washtrack-backend/internal/domain"
	"washtrack-backend/internal/server/authctx"
	"washtrack-backend/internal/service"
)

// SessionMiddleware decodes the session credential from the request cookie
// (or an Authorization bearer header) and sets the principal in context.
// Decoding fails silently: requests without a valid session pass through
// with no principal and the guards decide the response.
func SessionMiddleware(cookieName, secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenStr := ""
			if c, err := r.Cookie(cookieName); err == nil {
				tokenStr = c.Value
			} else if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
				tokenStr = strings.TrimPrefix(auth, "Bearer ")
			}
			if tokenStr == "" {
				next.ServeHTTP(w, r)
				return
			}
			p, err := service.VerifySession(tokenStr, secret)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(authctx.WithPrincipal(r.Context(), *p)))
		})
	}
}

// RequireAuth passes any authenticated principal.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if authctx.FromContext(r.Context()) == nil {
			writeUnauthorized(w)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAdmin passes only the super admin role.
func RequireAdmin(next http.Handler) http.Handler {
	return requireRole(next, domain.RoleSuperAdmin)
}

// RequireBranch passes only branch-scoped admins.
func RequireBranch(next http.Handler) http.Handler {
	return requireRole(next, domain.RoleBranchAdmin)
}

func requireRole(next http.Handler, roles ...domain.Role) http.Handler {
	allowed := make(map[domain.Role]struct{}, len(roles))
	for _, role := range roles {
		allowed[role] = struct{}{}
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p := authctx.FromContext(r.Context())
		if p == nil {
			writeUnauthorized(w)
			return
		}
		if _, ok := allowed[p.Role]; !ok {
			writeUnauthorized(w)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeUnauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"Unauthorized"}`))
}
