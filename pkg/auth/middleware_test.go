package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serve(h http.HandlerFunc, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	w := httptest.NewRecorder()
	h(w, req)
	return w
}

func TestAuthenticate(t *testing.T) {
	m := NewTokenManager(Config{Secret: "s"})
	token, _, err := m.GenerateToken(Claims{UserID: 4, Username: "desk"})
	require.NoError(t, err)

	var seen *Claims
	h := m.Authenticate(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = ClaimsFromContext(r.Context())
	})

	assert.Equal(t, http.StatusUnauthorized, serve(h, "").Code)
	assert.Equal(t, http.StatusUnauthorized, serve(h, "Token abc").Code)
	assert.Equal(t, http.StatusUnauthorized, serve(h, "Bearer garbage").Code)

	assert.Equal(t, http.StatusOK, serve(h, "Bearer "+token).Code)
	require.NotNil(t, seen)
	assert.Equal(t, "desk", seen.Username)
}

func TestRequirePermission(t *testing.T) {
	m := NewTokenManager(Config{Secret: "s"})
	h := m.RequirePermission("work_orders:delete", func(w http.ResponseWriter, r *http.Request) {})

	plain, _, err := m.GenerateToken(Claims{UserID: 1, Permissions: []string{"work_orders:create"}})
	require.NoError(t, err)
	allowed, _, err := m.GenerateToken(Claims{UserID: 2, Permissions: []string{"work_orders:delete"}})
	require.NoError(t, err)
	admin, _, err := m.GenerateToken(Claims{UserID: 3, IsAdmin: true})
	require.NoError(t, err)

	assert.Equal(t, http.StatusForbidden, serve(h, "Bearer "+plain).Code)
	assert.Equal(t, http.StatusOK, serve(h, "Bearer "+allowed).Code)
	assert.Equal(t, http.StatusOK, serve(h, "Bearer "+admin).Code)
}
