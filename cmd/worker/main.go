// Package main provides the entrypoint for the RideCast background worker.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/ridecast/ridecast/internal/database"
	"github.com/ridecast/ridecast/internal/geocode/nominatim"
	"github.com/ridecast/ridecast/internal/history"
	"github.com/ridecast/ridecast/internal/pacing"
	"github.com/ridecast/ridecast/internal/passage"
	"github.com/ridecast/ridecast/internal/provider/resilience"
	"github.com/ridecast/ridecast/internal/weather"
	"github.com/ridecast/ridecast/internal/weather/openmeteo"
	"github.com/ridecast/ridecast/internal/worker"
)

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	const serviceName = "ridecast-worker"

	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("version", Version).
		Logger()

	log.Info().
		Str("build_time", BuildTime).
		Msg("starting RideCast worker")

	// Worker also exposes a health endpoint for Cloud Run
	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}

	projectID := os.Getenv("PUBSUB_PROJECT_ID")
	subscription := os.Getenv("PUBSUB_SUBSCRIPTION")
	if subscription == "" {
		subscription = "ridecast-worker-jobs"
	}
	if projectID == "" {
		log.Fatal().Msg("PUBSUB_PROJECT_ID is required")
	}

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Database backs saved-route refreshes; the worker is pointless
	// without it.
	dbConfig := database.ConfigFromEnv()
	pool, err := database.Connect(ctx, dbConfig)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	log.Info().
		Str("host", dbConfig.Host).
		Str("database", dbConfig.Database).
		Msg("database connected")

	// Upstream provider clients
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

	forecastService := weather.NewService(weather.ServiceConfig{
		Provider: provider,
		Resolver: resolver,
		Logger:   log,
	})

	builder := passage.NewBuilder(passage.BuilderConfig{
		Resolver: resolver,
		Forecast: forecastService,
		Logger:   log,
	})

	historyService := history.NewService(history.ServiceConfig{
		Repository: history.NewPostgresRepository(pool),
		Logger:     log,
	})

	refreshJob := worker.NewRefreshJob(worker.RefreshJobConfig{
		Config:         worker.DefaultRefreshConfig(),
		Logger:         log,
		Builder:        builder,
		HistoryService: historyService,
		WeatherService: forecastService,
	})

	pubsubHandler, err := worker.NewPubSubHandler(ctx, worker.PubSubConfig{
		ProjectID:        projectID,
		SubscriptionName: subscription,
		RefreshJob:       refreshJob,
		Logger:           log,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create pubsub handler")
	}
	defer func() {
		if closeErr := pubsubHandler.Close(); closeErr != nil {
			log.Error().Err(closeErr).Msg("failed to close pubsub client")
		}
	}()

	// Create HTTP server for health checks
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, `{"status":"healthy","version":"%s"}`, Version)
	})

	server := &http.Server{
		Addr:         ":" + port,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	// Start health check server
	go func() {
		log.Info().Str("addr", server.Addr).Msg("health check server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("health server error")
		}
	}()

	// Start processing messages
	go func() {
		if err := pubsubHandler.Start(ctx); err != nil && ctx.Err() == nil {
			log.Fatal().Err(err).Msg("pubsub handler stopped")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down worker")
	cancel()

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("health server forced to shutdown")
	}

	log.Info().Msg("worker stopped")
}
