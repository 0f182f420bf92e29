package server

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/tair/repair-manager/pkg/auth"
	"github.com/tair/repair-manager/pkg/logger"
)

type pingRoutes struct{}

func (pingRoutes) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/api/ping", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(logger.RequestIDFromContext(r.Context())))
	}).Methods(http.MethodGet)
	r.HandleFunc("/api/panic", func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}).Methods(http.MethodGet)
}

func newTestRouter(checker *HealthChecker) http.Handler {
	return NewRouter(MiddlewareConfig{TimeoutDuration: time.Second}, checker, prometheus.NewRegistry(), pingRoutes{})
}

func TestRequestIDIsPropagated(t *testing.T) {
	h := newTestRouter(nil)

	req := httptest.NewRequest(http.MethodGet, "/api/ping", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "abc-123", w.Body.String())
	assert.Equal(t, "abc-123", w.Header().Get("X-Request-ID"))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))

	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/ping", nil))
	assert.NotEmpty(t, w.Body.String())
}

func TestRecoveryMiddleware(t *testing.T) {
	w := httptest.NewRecorder()
	newTestRouter(nil).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/panic", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "internal server error")
}

func TestMetricsEndpoint(t *testing.T) {
	w := httptest.NewRecorder()
	newTestRouter(nil).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestHealthStatus(t *testing.T) {
	ok := func(context.Context) error { return nil }
	down := func(context.Context) error { return errors.New("down") }

	tests := []struct {
		name     string
		critical bool
		check    CheckFunc
		want     string
		code     int
	}{
		{"all healthy", true, ok, StatusHealthy, http.StatusOK},
		{"optional dependency down", false, down, StatusDegraded, http.StatusOK},
		{"critical dependency down", true, down, StatusUnhealthy, http.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checker := NewHealthChecker("repair-manager", time.Second)
			checker.Add("database", true, ok)
			checker.Add("dependency", tt.critical, tt.check)

			report := checker.Check(context.Background())
			assert.Equal(t, tt.want, report.Status)
			require.Len(t, report.Dependencies, 2)
			assert.Equal(t, "database", report.Dependencies[0].Name)

			w := httptest.NewRecorder()
			newTestRouter(checker).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
			assert.Equal(t, tt.code, w.Code)
		})
	}
}

func TestAuthInterceptor(t *testing.T) {
	tokens := auth.NewTokenManager(auth.Config{Secret: "grpc-secret", TTL: time.Hour})
	interceptor := AuthInterceptor(tokens)
	info := &grpc.UnaryServerInfo{FullMethod: "/repair.v1.WorkOrders/Get"}

	var seen *auth.Claims
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		seen, _ = auth.ClaimsFromContext(ctx)
		return "ok", nil
	}

	_, err := interceptor(context.Background(), nil, info, handler)
	assert.Equal(t, codes.Unauthenticated, status.Code(err))

	token, _, err := tokens.GenerateToken(auth.Claims{UserID: 7, Username: "tech"})
	require.NoError(t, err)
	ctx := metadata.NewIncomingContext(context.Background(), metadata.Pairs("authorization", "Bearer "+token))

	resp, err := interceptor(ctx, nil, info, handler)
	require.NoError(t, err)
	assert.Equal(t, "ok", resp)
	require.NotNil(t, seen)
	assert.Equal(t, uint(7), seen.UserID)
}
