package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLimiterWithoutRedisPassesThrough(t *testing.T) {
	calls := 0
	h := New(nil, "login", 1, time.Minute).Middleware(func(w http.ResponseWriter, r *http.Request) { calls++ })

	for i := 0; i < 3; i++ {
		h(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/api/auth/login", nil))
	}
	assert.Equal(t, 3, calls)

	var nilLimiter *Limiter
	nilLimiter.Middleware(func(w http.ResponseWriter, r *http.Request) { calls++ })(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, 4, calls)
}

func TestClientIP(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "10.0.0.9:5123"
	assert.Equal(t, "10.0.0.9", ClientIP(r))

	r.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	assert.Equal(t, "203.0.113.7", ClientIP(r))
}
