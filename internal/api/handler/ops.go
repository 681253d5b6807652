// Package handler provides HTTP handlers for the RideCast API.
package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/ridecast/ridecast/internal/api/models"
	"github.com/ridecast/ridecast/internal/api/response"
	"github.com/ridecast/ridecast/internal/provider/resilience"
)

// OpsHandler handles operational endpoints.
type OpsHandler struct {
	version   string
	buildTime string
	registry  *resilience.Registry
	readiness func(context.Context) error
}

// NewOpsHandler creates a new OpsHandler. The registry and readiness check
// are optional; when the readiness check is nil the service is considered
// ready as soon as it serves traffic.
func NewOpsHandler(version, buildTime string, registry *resilience.Registry, readiness func(context.Context) error) *OpsHandler {
	return &OpsHandler{
		version:   version,
		buildTime: buildTime,
		registry:  registry,
		readiness: readiness,
	}
}

// HealthCheck handles GET /v1/ops/health - liveness check. An open circuit
// on an upstream provider degrades the reported status without failing it,
// since cached forecasts and saved routes still work.
func (h *OpsHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	health := models.Health{
		Status: models.HealthStatusOK,
		Time:   models.Timestamp(time.Now()),
		Details: map[string]interface{}{
			"version":   h.version,
			"buildTime": h.buildTime,
		},
	}

	if h.registry != nil && h.registry.ProviderCount() > 0 {
		providers := make(map[string]string)
		for _, p := range h.registry.GetAllHealth() {
			switch {
			case p.IsUnhealthy():
				providers[p.Name] = "unhealthy"
				health.Status = models.HealthStatusDegraded
			case p.IsDegraded():
				providers[p.Name] = "degraded"
				if health.Status == models.HealthStatusOK {
					health.Status = models.HealthStatusDegraded
				}
			default:
				providers[p.Name] = "healthy"
			}
		}
		health.Details["providers"] = providers
	}

	response.JSON(w, r, http.StatusOK, health)
}

// ReadinessCheck handles GET /v1/ops/ready - readiness check.
func (h *OpsHandler) ReadinessCheck(w http.ResponseWriter, r *http.Request) {
	health := models.Health{
		Status: models.HealthStatusOK,
		Time:   models.Timestamp(time.Now()),
	}

	if h.readiness != nil {
		if err := h.readiness(r.Context()); err != nil {
			health.Status = models.HealthStatusFail
			health.Details = map[string]interface{}{"error": err.Error()}
			response.JSON(w, r, http.StatusServiceUnavailable, health)
			return
		}
	}

	response.JSON(w, r, http.StatusOK, health)
}
