package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ridecast/ridecast/internal/api/middleware"
)

func metricsHandler(t *testing.T, inner http.HandlerFunc) http.Handler {
	t.Helper()

	metrics, err := middleware.NewMetrics()
	require.NoError(t, err)
	return metrics.Middleware()(inner)
}

func TestNewMetrics(t *testing.T) {
	metrics, err := middleware.NewMetrics()
	require.NoError(t, err)
	assert.NotNil(t, metrics)
}

func TestMetrics_Middleware(t *testing.T) {
	tests := []struct {
		name   string
		method string
		status int
		body   string
	}{
		{"success", http.MethodGet, http.StatusOK, `{"status":"OK"}`},
		{"client error", http.MethodPost, http.StatusBadRequest, `{"error":"bad request"}`},
		{"server error", http.MethodPost, http.StatusInternalServerError, "error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := metricsHandler(t, func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, httptest.NewRequest(tt.method, "/v1/routes:analyze", http.NoBody))

			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.body, rec.Body.String())
		})
	}
}

func TestMetrics_Middleware_ImplicitStatus(t *testing.T) {
	handler := metricsHandler(t, func(w http.ResponseWriter, _ *http.Request) {
		// Writing without WriteHeader defaults to 200.
		_, _ = w.Write([]byte("response"))
	})

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/ops/health", http.NoBody))

	assert.Equal(t, http.StatusOK, rec.Code)
}
