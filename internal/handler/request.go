package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"washtrack-backend/internal/domain"
	"washtrack-backend/internal/server/authctx"
	"washtrack-backend/internal/service"
)

const dateLayout = "2006-01-02"

var errBranchScope = errors.New("branchId is required")

// resolveBranchID derives the effective branch for a request. Branch admins
// always act on their own branch; a client-supplied branchId is ignored for
// them so a branch credential cannot touch another branch's rows. Super
// admins must name the branch explicitly.
func resolveBranchID(r *http.Request, p *service.Principal) (int64, error) {
	if p == nil {
		return 0, errBranchScope
	}
	if p.Role == domain.RoleBranchAdmin {
		if p.BranchID == nil {
			return 0, errBranchScope
		}
		return *p.BranchID, nil
	}
	if raw := r.URL.Query().Get("branchId"); raw != "" {
		return strconv.ParseInt(raw, 10, 64)
	}
	return 0, errBranchScope
}

// principal returns the verified principal or writes a 401. The guards run
// first, so a nil principal here means a wiring mistake rather than a
// missing credential, but the response is the same either way.
func principal(w http.ResponseWriter, r *http.Request) *service.Principal {
	p := authctx.FromContext(r.Context())
	if p == nil {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
	}
	return p
}

func parseDateQuery(r *http.Request, key string) (*time.Time, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func parseIDQuery(r *http.Request, key string) (int64, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return 0, errors.New(key + " is required")
	}
	return strconv.ParseInt(raw, 10, 64)
}

func parseID(raw string) (int64, error) {
	return strconv.ParseInt(raw, 10, 64)
}

// parseFlexibleID accepts an id serialized either as a JSON number or as a
// quoted string, which different admin clients send interchangeably.
func parseFlexibleID(raw json.RawMessage) (int64, error) {
	var n int64
	if err := json.Unmarshal(raw, &n); err == nil {
		return n, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, errors.New("invalid id")
	}
	return strconv.ParseInt(s, 10, 64)
}
