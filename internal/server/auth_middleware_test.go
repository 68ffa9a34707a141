package server_test

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"washtrack-backend/internal/server"
	"washtrack-backend/internal/server/authctx"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func signSession(t *testing.T, role string, branchID *int64) string {
	t.Helper()
	claims := jwt.MapClaims{
		"sub":        "42",
		"name":       "Tester",
		"email":      "tester@example.com",
		"role":       role,
		"token_type": "session",
		"exp":        time.Now().Add(time.Hour).Unix(),
		"iat":        time.Now().Unix(),
	}
	if branchID != nil {
		claims["branch_id"] = strconv.FormatInt(*branchID, 10)
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return token
}

// protected builds the middleware chain the router uses and counts how many
// requests actually reach the inner handler.
func protected(guard func(http.Handler) http.Handler, calls *int) http.Handler {
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*calls++
		w.WriteHeader(http.StatusOK)
	})
	return server.SessionMiddleware("wt_session", testSecret)(guard(inner))
}

func TestRequireAuth_NoCredential(t *testing.T) {
	calls := 0
	h := protected(server.RequireAuth, &calls)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/branch/income", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error":"Unauthorized"}`, rec.Body.String())
	assert.Equal(t, 0, calls, "handler must not run without a credential")
}

func TestRequireAuth_GarbageToken(t *testing.T) {
	calls := 0
	h := protected(server.RequireAuth, &calls)

	req := httptest.NewRequest(http.MethodGet, "/branch/income", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, 0, calls)
}

func TestRequireAuth_WrongSecret(t *testing.T) {
	calls := 0
	h := protected(server.RequireAuth, &calls)

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":        "42",
		"role":       "super_admin",
		"token_type": "session",
		"exp":        time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte("other-secret"))
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/branch/income", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, 0, calls)
}

func TestRequireAuth_ValidCookie(t *testing.T) {
	calls := 0
	h := protected(server.RequireAuth, &calls)

	branchID := int64(3)
	req := httptest.NewRequest(http.MethodGet, "/branch/income", nil)
	req.AddCookie(&http.Cookie{Name: "wt_session", Value: signSession(t, "branch_admin", &branchID)})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, calls)
}

func TestRequireAuth_ValidBearer(t *testing.T) {
	calls := 0
	h := protected(server.RequireAuth, &calls)

	req := httptest.NewRequest(http.MethodGet, "/branch/income", nil)
	req.Header.Set("Authorization", "Bearer "+signSession(t, "super_admin", nil))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, calls)
}

func TestRequireAdmin_RejectsBranchAdmin(t *testing.T) {
	calls := 0
	h := protected(server.RequireAdmin, &calls)

	branchID := int64(3)
	req := httptest.NewRequest(http.MethodGet, "/admin/dashboard", nil)
	req.AddCookie(&http.Cookie{Name: "wt_session", Value: signSession(t, "branch_admin", &branchID)})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error":"Unauthorized"}`, rec.Body.String())
	assert.Equal(t, 0, calls, "branch credential must not reach admin handlers")
}

func TestRequireAdmin_PassesSuperAdmin(t *testing.T) {
	calls := 0
	h := protected(server.RequireAdmin, &calls)

	req := httptest.NewRequest(http.MethodGet, "/admin/dashboard", nil)
	req.AddCookie(&http.Cookie{Name: "wt_session", Value: signSession(t, "super_admin", nil)})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, calls)
}

func TestSessionMiddleware_SetsPrincipal(t *testing.T) {
	branchID := int64(9)
	var got *int64
	var role string
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p := authctx.FromContext(r.Context())
		require.NotNil(t, p)
		got = p.BranchID
		role = string(p.Role)
	})
	h := server.SessionMiddleware("wt_session", testSecret)(inner)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "wt_session", Value: signSession(t, "branch_admin", &branchID)})
	h.ServeHTTP(httptest.NewRecorder(), req)

	require.NotNil(t, got)
	assert.Equal(t, branchID, *got)
	assert.Equal(t, "branch_admin", role)
}

func TestSessionMiddleware_UnknownRoleRejected(t *testing.T) {
	calls := 0
	h := protected(server.RequireAuth, &calls)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "wt_session", Value: signSession(t, "intern", nil)})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, 0, calls)
}
