package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/tair/repair-manager/pkg/response"
)

type contextKey string

const claimsKey contextKey = "claims"

// ClaimsFromContext returns the claims stored by Authenticate.
func ClaimsFromContext(ctx context.Context) (*Claims, bool) {
	c, ok := ctx.Value(claimsKey).(*Claims)
	return c, ok
}

func ContextWithClaims(ctx context.Context, c *Claims) context.Context {
	return context.WithValue(ctx, claimsKey, c)
}

// Authenticate requires a valid Bearer token.
func (m *TokenManager) Authenticate(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			unauthorized(w, "Authorization header required")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			unauthorized(w, "Invalid authorization header format")
			return
		}

		claims, err := m.ValidateToken(strings.TrimSpace(parts[1]))
		if err != nil {
			unauthorized(w, "Invalid token")
			return
		}

		next.ServeHTTP(w, r.WithContext(ContextWithClaims(r.Context(), claims)))
	}
}

// RequirePermission authenticates the caller and checks that it holds p.
func (m *TokenManager) RequirePermission(p string, next http.HandlerFunc) http.HandlerFunc {
	return m.Authenticate(func(w http.ResponseWriter, r *http.Request) {
		claims, _ := ClaimsFromContext(r.Context())
		if claims == nil || !claims.HasPermission(p) {
			response.JSON(w, http.StatusForbidden, response.Response{
				Success: false,
				Error:   "permission required: " + p,
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAdmin authenticates the caller and checks the admin flag.
func (m *TokenManager) RequireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return m.Authenticate(func(w http.ResponseWriter, r *http.Request) {
		claims, _ := ClaimsFromContext(r.Context())
		if claims == nil || !claims.IsAdmin {
			response.JSON(w, http.StatusForbidden, response.Response{
				Success: false,
				Error:   "Admin access required",
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func unauthorized(w http.ResponseWriter, message string) {
	response.JSON(w, http.StatusUnauthorized, response.Response{Success: false, Error: message})
}
