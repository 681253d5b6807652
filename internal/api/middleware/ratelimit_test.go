package middleware_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ridecast/ridecast/internal/api/middleware"
	"github.com/ridecast/ridecast/internal/api/models"
)

func rateLimitedHandler(limit int) http.Handler {
	cfg := middleware.RateLimitConfig{
		RequestLimit: limit,
		WindowLength: time.Minute,
	}
	return middleware.RateLimitByIP(cfg)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
}

func doRequest(handler http.Handler, path, remoteAddr string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, http.NoBody)
	req.RemoteAddr = remoteAddr
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestRateLimitByIP_AllowsWithinLimit(t *testing.T) {
	handler := rateLimitedHandler(5)

	for i := 0; i < 5; i++ {
		rec := doRequest(handler, "/v1/history", "192.0.2.10:52341")
		assert.Equal(t, http.StatusOK, rec.Code, "request %d should pass", i+1)
	}
}

func TestRateLimitByIP_BlocksOverLimit(t *testing.T) {
	handler := rateLimitedHandler(3)

	for i := 0; i < 3; i++ {
		rec := doRequest(handler, "/v1/routes:analyze", "198.51.100.7:52341")
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec := doRequest(handler, "/v1/routes:analyze", "198.51.100.7:52341")

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))
}

func TestRateLimitByIP_TracksClientsSeparately(t *testing.T) {
	handler := rateLimitedHandler(2)

	for i := 0; i < 2; i++ {
		rec := doRequest(handler, "/v1/history", "203.0.113.5:40000")
		require.Equal(t, http.StatusOK, rec.Code)
	}

	assert.Equal(t, http.StatusTooManyRequests, doRequest(handler, "/v1/history", "203.0.113.5:40000").Code)
	assert.Equal(t, http.StatusOK, doRequest(handler, "/v1/history", "203.0.113.6:40000").Code)
}

func TestRateLimitByIP_ProblemResponse(t *testing.T) {
	handler := middleware.RequestID(rateLimitedHandler(1))

	require.Equal(t, http.StatusOK, doRequest(handler, "/v1/run/conditions", "192.0.2.99:40000").Code)

	rec := doRequest(handler, "/v1/run/conditions", "192.0.2.99:40000")

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))

	var problem models.Problem
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
	assert.Equal(t, http.StatusTooManyRequests, problem.Status)
	assert.Equal(t, "/v1/run/conditions", problem.Instance)
	assert.Contains(t, problem.Type, "too-many-requests")
	assert.NotEmpty(t, problem.TraceID)
}

func TestDefaultRateLimitConfigs(t *testing.T) {
	assert.Equal(t, 10, middleware.AdminRateLimit.RequestLimit)
	assert.Equal(t, 30, middleware.ExpensiveRateLimit.RequestLimit)
	assert.Equal(t, 100, middleware.StandardRateLimit.RequestLimit)

	for _, cfg := range []middleware.RateLimitConfig{
		middleware.AdminRateLimit,
		middleware.ExpensiveRateLimit,
		middleware.StandardRateLimit,
	} {
		assert.Equal(t, time.Minute, cfg.WindowLength)
	}
}
