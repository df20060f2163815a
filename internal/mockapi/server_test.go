package mockapi_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jrsteele09/baysawarr-web/internal/mockapi"
	"github.com/stretchr/testify/require"
)

func do(t *testing.T, h http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestMockAPI_LoginStatuses(t *testing.T) {
	api := mockapi.New(mockapi.Options{})
	require.NoError(t, api.Seed())

	tests := []struct {
		name   string
		body   map[string]string
		status int
	}{
		{"success", map[string]string{"email": mockapi.DemoMemberEmail, "password": mockapi.DemoMemberPassword}, http.StatusOK},
		{"wrong password", map[string]string{"email": mockapi.DemoMemberEmail, "password": "wrong"}, http.StatusUnauthorized},
		{"unknown account", map[string]string{"email": "nobody@example.com", "password": "x"}, http.StatusNotFound},
		{"missing fields", map[string]string{"email": ""}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, api, http.MethodPost, "/api/auth/login", "", tt.body)
			require.Equal(t, tt.status, rec.Code)
		})
	}
}

func TestMockAPI_TokenExpiry(t *testing.T) {
	api := mockapi.New(mockapi.Options{})
	require.NoError(t, api.Seed())
	member := api.Users()[0]

	valid, err := api.IssueToken(member.ID, time.Minute)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, do(t, api, http.MethodGet, "/api/auth/me", valid, nil).Code)

	expired, err := api.IssueToken(member.ID, -time.Minute)
	require.NoError(t, err)
	require.Equal(t, http.StatusUnauthorized, do(t, api, http.MethodGet, "/api/auth/me", expired, nil).Code)

	require.NoError(t, api.RevokeToken(valid))
	require.Equal(t, http.StatusUnauthorized, do(t, api, http.MethodGet, "/api/auth/me", valid, nil).Code)
}

func TestMockAPI_AdminRoutesRequireAdmin(t *testing.T) {
	api := mockapi.New(mockapi.Options{})
	require.NoError(t, api.Seed())

	var memberID string
	for _, u := range api.Users() {
		if u.Email == mockapi.DemoMemberEmail {
			memberID = u.ID
		}
	}
	token, err := api.IssueToken(memberID, time.Minute)
	require.NoError(t, err)

	require.Equal(t, http.StatusUnauthorized, do(t, api, http.MethodGet, "/api/admin/stats", "", nil).Code)
	require.Equal(t, http.StatusForbidden, do(t, api, http.MethodGet, "/api/admin/stats", token, nil).Code)
	require.Equal(t, http.StatusOK, do(t, api, http.MethodGet, "/api/products", "", nil).Code)
}
