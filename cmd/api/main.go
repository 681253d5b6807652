// Package main provides the entrypoint for the RideCast API server.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/ridecast/ridecast/internal/api"
	"github.com/ridecast/ridecast/internal/api/middleware"
	"github.com/ridecast/ridecast/internal/database"
	"github.com/ridecast/ridecast/internal/featureflags"
	"github.com/ridecast/ridecast/internal/geocode/nominatim"
	"github.com/ridecast/ridecast/internal/history"
	"github.com/ridecast/ridecast/internal/pacing"
	"github.com/ridecast/ridecast/internal/passage"
	"github.com/ridecast/ridecast/internal/provider/resilience"
	"github.com/ridecast/ridecast/internal/telemetry"
	"github.com/ridecast/ridecast/internal/weather"
	"github.com/ridecast/ridecast/internal/weather/openmeteo"
)

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	const serviceName = "ridecast-api"

	// Setup structured logging
	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("version", Version).
		Logger()

	log.Info().
		Str("build_time", BuildTime).
		Msg("starting RideCast API")

	// Get configuration from environment
	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}

	otlpEndpoint := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")
	if otlpEndpoint == "" {
		otlpEndpoint = "localhost:4317"
	}

	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "development"
	}

	// Initialize OpenTelemetry
	ctx := context.Background()
	telemetryEnabled := os.Getenv("OTEL_ENABLED") == "true"

	tp, err := telemetry.Init(ctx, telemetry.Config{
		ServiceName:    serviceName,
		ServiceVersion: Version,
		Environment:    env,
		OTLPEndpoint:   otlpEndpoint,
		Enabled:        telemetryEnabled,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize telemetry")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := tp.Shutdown(shutdownCtx); shutdownErr != nil {
			log.Error().Err(shutdownErr).Msg("failed to shutdown telemetry")
		}
	}()

	if telemetryEnabled {
		log.Info().
			Str("otlp_endpoint", otlpEndpoint).
			Msg("OpenTelemetry initialized")
	}

	// Initialize metrics
	metrics, err := middleware.NewMetrics()
	if err != nil {
		log.Error().Err(err).Msg("failed to initialize metrics")
		os.Exit(1) //nolint:gocritic // intentional exit, telemetry cleanup is best-effort
	}

	// Connect to database. Without one the API still serves, holding history
	// and feature flags in memory.
	var pool *pgxpool.Pool
	var historyRepo history.Repository = history.NewMemoryRepository()
	var flagRepo featureflags.Repository = featureflags.NewInMemoryRepository()

	if os.Getenv("DB_DISABLED") != "true" {
		dbConfig := database.ConfigFromEnv()
		pool, err = database.Connect(ctx, dbConfig)
		if err != nil {
			log.Warn().Err(err).Msg("database unavailable, falling back to in-memory storage")
		} else {
			defer pool.Close()
			historyRepo = history.NewPostgresRepository(pool)
			flagRepo = featureflags.NewPostgresRepository(pool)
			log.Info().
				Str("host", dbConfig.Host).
				Int("port", dbConfig.Port).
				Str("database", dbConfig.Database).
				Msg("database connected")
		}
	}

	// Upstream provider clients, registered so /v1/ops/health can report
	// circuit breaker state per provider.
	geocodeHTTPConfig := resilience.DefaultClientConfig(nominatim.ProviderName)
	geocodeHTTPConfig.Registry = resilience.GlobalRegistry
	geocodeHTTPConfig.Gate = pacing.NewGate(pacing.GeocodeInterval)
	resolver := nominatim.NewClient(nominatim.ClientConfig{
		UserAgent:  os.Getenv("NOMINATIM_USER_AGENT"),
		HTTPClient: resilience.NewClient(geocodeHTTPConfig),
		Logger:     log,
	})

	forecastHTTPConfig := resilience.DefaultClientConfig(openmeteo.ProviderName)
	forecastHTTPConfig.Registry = resilience.GlobalRegistry
	forecastHTTPConfig.Gate = pacing.NewGate(pacing.ForecastInterval)
	provider := openmeteo.NewClient(openmeteo.ClientConfig{
		HTTPClient: resilience.NewClient(forecastHTTPConfig),
		Logger:     log,
	})

	providerMetrics, err := telemetry.NewProviderMetrics()
	if err != nil {
		log.Error().Err(err).Msg("failed to initialize provider metrics")
		os.Exit(1)
	}

	forecastService := weather.NewService(weather.ServiceConfig{
		Provider: provider,
		Resolver: resolver,
		Logger:   log,
		Metrics:  providerMetrics,
	})
	log.Info().Str("provider", provider.Name()).Msg("forecast service initialized")

	builder := passage.NewBuilder(passage.BuilderConfig{
		Resolver: resolver,
		Forecast: forecastService,
		Logger:   log,
	})

	historyService := history.NewService(history.ServiceConfig{
		Repository: historyRepo,
		Logger:     log,
	})
	log.Info().Msg("history service initialized")

	ffService := featureflags.NewService(featureflags.ServiceConfig{
		Repository: flagRepo,
		Logger:     log,
		CacheTTL:   1 * time.Minute,
	})
	log.Info().Msg("feature flags service initialized")

	// Create router with configuration
	router := api.NewRouter(api.RouterConfig{
		Version:            Version,
		BuildTime:          BuildTime,
		Logger:             log,
		ServiceName:        serviceName,
		Metrics:            metrics,
		Builder:            builder,
		ForecastService:    forecastService,
		HistoryService:     historyService,
		FeatureFlagService: ffService,
		ProviderRegistry:   resilience.GlobalRegistry,
		Readiness: func(ctx context.Context) error {
			if pool == nil {
				return nil
			}
			return pool.Ping(ctx)
		},
	})

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second, // route analysis paces upstream calls
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info().
			Str("addr", server.Addr).
			Msg("server listening")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
		os.Exit(1)
	}

	log.Info().Msg("server stopped")
}
