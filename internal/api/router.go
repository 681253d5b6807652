// Package api provides the HTTP API for RideCast.
package api

import (
	"context"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/ridecast/ridecast/internal/api/handler"
	"github.com/ridecast/ridecast/internal/api/middleware"
	"github.com/ridecast/ridecast/internal/featureflags"
	"github.com/ridecast/ridecast/internal/history"
	"github.com/ridecast/ridecast/internal/passage"
	"github.com/ridecast/ridecast/internal/provider/resilience"
	"github.com/ridecast/ridecast/internal/weather"
)

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	Version            string
	BuildTime          string
	Logger             zerolog.Logger
	ServiceName        string
	Metrics            *middleware.Metrics
	Builder            *passage.Builder
	ForecastService    *weather.Service
	HistoryService     *history.Service
	FeatureFlagService *featureflags.Service

	// ProviderRegistry surfaces upstream circuit breaker health on
	// /v1/ops/health; optional.
	ProviderRegistry *resilience.Registry

	// Readiness is probed by /v1/ops/ready; optional.
	Readiness func(context.Context) error
}

// NewRouter creates a new chi router with all API routes configured.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	// Set default service name if not provided
	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "ridecast-api"
	}

	// Global middleware - order matters
	r.Use(middleware.RequestID)            // Generate/propagate request ID first
	r.Use(middleware.Tracing(serviceName)) // Distributed tracing
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware()) // HTTP metrics
	}
	r.Use(middleware.Logger(cfg.Logger))   // Structured logging
	r.Use(middleware.Recovery(cfg.Logger)) // Panic recovery
	r.Use(chimiddleware.RealIP)            // Real IP extraction
	r.Use(middleware.RequireJSON)          // Reject non-JSON request bodies
	r.Use(middleware.ContentTypeJSON)      // JSON content type

	// Initialize handlers
	opsHandler := handler.NewOpsHandler(cfg.Version, cfg.BuildTime, cfg.ProviderRegistry, cfg.Readiness)
	routeHandler := handler.NewRouteHandler(cfg.Builder, cfg.HistoryService, cfg.FeatureFlagService, cfg.Logger)
	departureHandler := handler.NewDepartureHandler(cfg.ForecastService, cfg.FeatureFlagService, cfg.Logger)
	runHandler := handler.NewRunHandler(cfg.ForecastService, cfg.FeatureFlagService, cfg.Logger)
	nutritionHandler := handler.NewNutritionHandler(cfg.FeatureFlagService, cfg.Logger)
	historyHandler := handler.NewHistoryHandler(cfg.HistoryService, cfg.FeatureFlagService, cfg.Logger)
	featureFlagsHandler := handler.NewFeatureFlagsHandler(cfg.FeatureFlagService)

	// Create rate limit middleware for different endpoint categories
	adminRateLimit := middleware.RateLimitByIP(middleware.AdminRateLimit)         // 10 req/min
	expensiveRateLimit := middleware.RateLimitByIP(middleware.ExpensiveRateLimit) // 30 req/min
	standardRateLimit := middleware.RateLimitByIP(middleware.StandardRateLimit)   // 100 req/min

	// API v1 routes
	r.Route("/v1", func(r chi.Router) {
		// Ops endpoints (public)
		r.Route("/ops", func(r chi.Router) {
			r.Get("/health", opsHandler.HealthCheck)
			r.Get("/ready", opsHandler.ReadinessCheck)
		})

		// Route analysis fans out to geocoding and forecast providers -
		// strict rate limiting
		r.With(expensiveRateLimit).Post("/routes:analyze", routeHandler.AnalyzeRoute)

		// Planning endpoints - standard rate limiting
		r.With(standardRateLimit).Post("/departures:best", departureHandler.BestDeparture)
		r.With(standardRateLimit).Post("/runs:conditions", runHandler.RunConditions)
		r.With(standardRateLimit).Post("/nutrition:plan", nutritionHandler.PlanNutrition)

		// Saved-route history
		r.Route("/history", func(r chi.Router) {
			r.Use(standardRateLimit)
			r.Get("/", historyHandler.ListRoutes)
			r.Post("/", historyHandler.SaveRoute)
			r.Delete("/", historyHandler.ClearRoutes)
			r.Route("/{routeID}", func(r chi.Router) {
				r.Get("/", historyHandler.GetRoute)
				r.Delete("/", historyHandler.DeleteRoute)
			})
		})

		// Admin endpoints - for internal operations
		r.Route("/admin", func(r chi.Router) {
			r.Use(adminRateLimit)

			// Feature flags management
			r.Route("/feature-flags", func(r chi.Router) {
				r.Get("/", featureFlagsHandler.ListFeatureFlags)
				r.Put("/", featureFlagsHandler.UpsertFeatureFlags)
				r.Post("/invalidate", featureFlagsHandler.InvalidateCache)
			})
		})
	})

	return r
}
