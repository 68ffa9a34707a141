package handler

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"washtrack-backend/internal/domain"
	"washtrack-backend/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveBranchID_BranchAdminUsesOwnScope(t *testing.T) {
	own := int64(4)
	p := &service.Principal{Role: domain.RoleBranchAdmin, BranchID: &own}

	// A branch credential that names another branch still lands on its own.
	r := httptest.NewRequest("GET", "/branch/income?branchId=999", nil)
	id, err := resolveBranchID(r, p)

	require.NoError(t, err)
	assert.Equal(t, own, id)
}

func TestResolveBranchID_BranchAdminWithoutScope(t *testing.T) {
	p := &service.Principal{Role: domain.RoleBranchAdmin}

	_, err := resolveBranchID(httptest.NewRequest("GET", "/branch/income", nil), p)

	assert.Error(t, err)
}

func TestResolveBranchID_SuperAdminNamesBranch(t *testing.T) {
	p := &service.Principal{Role: domain.RoleSuperAdmin}

	id, err := resolveBranchID(httptest.NewRequest("GET", "/branch/income?branchId=7", nil), p)
	require.NoError(t, err)
	assert.Equal(t, int64(7), id)

	_, err = resolveBranchID(httptest.NewRequest("GET", "/branch/income", nil), p)
	assert.Error(t, err, "super admin must name a branch explicitly")
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    string
		wantErr bool
	}{
		{name: "json number", raw: `125000.50`, want: "125000.5"},
		{name: "quoted number", raw: `"99.90"`, want: "99.9"},
		{name: "integer", raw: `40`, want: "40"},
		{name: "zero", raw: `0`, want: "0"},
		{name: "negative rejected", raw: `-1`, wantErr: true},
		{name: "non-numeric rejected", raw: `"abc"`, wantErr: true},
		{name: "missing rejected", raw: ``, wantErr: true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := parseAmount(json.RawMessage(tc.raw))
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got.String())
		})
	}
}

func TestParseFlexibleID(t *testing.T) {
	id, err := parseFlexibleID(json.RawMessage(`12`))
	require.NoError(t, err)
	assert.Equal(t, int64(12), id)

	id, err = parseFlexibleID(json.RawMessage(`"34"`))
	require.NoError(t, err)
	assert.Equal(t, int64(34), id)

	_, err = parseFlexibleID(json.RawMessage(`"ALL"`))
	assert.Error(t, err)
}
