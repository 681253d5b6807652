package middleware

import (
	"net/http"
	"strings"

	"github.com/ridecast/ridecast/internal/api/models"
)

// ContentTypeJSON defaults the response Content-Type to application/json.
// Handlers that set their own type (problem+json for errors) win.
func ContentTypeJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if w.Header().Get("Content-Type") == "" {
			w.Header().Set("Content-Type", "application/json")
		}
		next.ServeHTTP(w, r)
	})
}

// RequireJSON rejects POST, PUT, and PATCH requests that declare a
// non-JSON Content-Type with a 415 problem response. Requests without a
// Content-Type header pass through.
func RequireJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost, http.MethodPut, http.MethodPatch:
			contentType := r.Header.Get("Content-Type")
			if contentType != "" && !strings.HasPrefix(contentType, "application/json") {
				problem := models.NewProblem(
					models.ProblemTypeValidation,
					"Unsupported media type",
					http.StatusUnsupportedMediaType,
					GetRequestID(r.Context()),
				).WithDetail("Content-Type must be application/json").WithInstance(r.URL.Path)
				problem.Write(w)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}
