package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRateLimiterFixedWindow(t *testing.T) {
	limiter := NewRateLimiter()

	assert.True(t, limiter.Allow("key", 2, time.Minute))
	assert.True(t, limiter.Allow("key", 2, time.Minute))
	assert.False(t, limiter.Allow("key", 2, time.Minute))

	// other keys have their own window
	assert.True(t, limiter.Allow("other", 2, time.Minute))
}

func TestRateLimiterWindowExpiry(t *testing.T) {
	limiter := NewRateLimiter()

	assert.True(t, limiter.Allow("key", 1, time.Millisecond))
	assert.False(t, limiter.Allow("key", 1, time.Millisecond))
	time.Sleep(5 * time.Millisecond)
	assert.True(t, limiter.Allow("key", 1, time.Millisecond))
}

func TestRateLimitMiddleware(t *testing.T) {
	limiter := NewRateLimiter()
	handler := RateLimit(limiter, ClientIP, 1, time.Minute)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	first := httptest.NewRecorder()
	handler.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, first.Code)

	second := httptest.NewRecorder()
	handler.ServeHTTP(second, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
}

func TestRedisLimiterFailsOpenWithoutClient(t *testing.T) {
	var limiter *RedisLimiter
	assert.Nil(t, NewRedisLimiter(nil))
	assert.True(t, limiter.Allow("key", 1, time.Minute))
	assert.Nil(t, limiter.WithBudget(time.Second))
}

func TestClientIPPrefersForwardedHeader(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.1:1234"
	assert.Equal(t, "10.0.0.1", ClientIP(req))

	req.Header.Set("X-Forwarded-For", "203.0.113.7")
	assert.Equal(t, "203.0.113.7", ClientIP(req))
}
