package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/httprate"

	"github.com/ridecast/ridecast/internal/api/models"
)

// RateLimitConfig sets the request budget for a window.
type RateLimitConfig struct {
	RequestLimit int
	WindowLength time.Duration
}

var (
	// AdminRateLimit covers the flag administration endpoints.
	AdminRateLimit = RateLimitConfig{
		RequestLimit: 10,
		WindowLength: time.Minute,
	}

	// ExpensiveRateLimit covers endpoints that fan out to the geocoding
	// and forecast providers.
	ExpensiveRateLimit = RateLimitConfig{
		RequestLimit: 30,
		WindowLength: time.Minute,
	}

	// StandardRateLimit covers everything else.
	StandardRateLimit = RateLimitConfig{
		RequestLimit: 100,
		WindowLength: time.Minute,
	}
)

// RateLimitByIP limits requests per client IP. The RealIP middleware
// must run first so proxied clients are keyed by their original address.
func RateLimitByIP(cfg RateLimitConfig) func(http.Handler) http.Handler {
	return httprate.Limit(
		cfg.RequestLimit,
		cfg.WindowLength,
		httprate.WithKeyFuncs(httprate.KeyByRealIP),
		httprate.WithLimitHandler(rateLimitExceededHandler),
	)
}

func rateLimitExceededHandler(w http.ResponseWriter, r *http.Request) {
	traceID := GetRequestID(r.Context())

	problem := models.NewTooManyRequests(traceID, "Rate limit exceeded. Please try again later.")
	problem.Instance = r.URL.Path

	// httprate does not expose the window reset time, so advertise the
	// full window as the retry interval.
	w.Header().Set("Retry-After", strconv.Itoa(60))

	problem.Write(w)
}
